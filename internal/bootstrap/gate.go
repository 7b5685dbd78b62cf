// Package bootstrap implements the once-per-process gate that decides, on the
// very first command the process routes, whether the persistent stores are
// wiped clean or preserved.
//
// The rule: if the first command of the process lifetime is anything other
// than "restart" (case-insensitive), every persistent table (orders, users,
// products) is dropped and recreated before that command proceeds, and the
// caller is notified out-of-band. A first command of "restart" resumes with
// whatever data is on disk. Either way the gate arms exactly once and every
// later command passes through untouched.
package bootstrap

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/jcmexdev/order-orchestrator/internal/store"
)

// ResumeCommand is the one command name that preserves existing data when it
// is the first command the process observes.
const ResumeCommand = "restart"

// Gate is the process-wide Uninitialized → Armed state machine. The zero
// value is not usable; construct with NewGate.
//
// The transition must be applied at most once even when N first requests race
// in: the armed flag gives later requests a lock-free fast path, and the
// mutex serialises the contenders so exactly one of them performs the wipe
// and none proceeds before it finishes.
type Gate struct {
	mu     sync.Mutex
	armed  atomic.Bool
	stores store.Wiper
}

func NewGate(stores store.Wiper) *Gate {
	return &Gate{stores: stores}
}

// Armed reports whether the first-command transition has already happened.
func (g *Gate) Armed() bool {
	return g.armed.Load()
}

// Observe consumes one command observation. On the process's first command it
// arms the gate and, unless the command is ResumeCommand, drops and recreates
// all persistent stores; wiped reports whether that happened. Every later
// call is a no-op.
//
// The gate arms even when the wipe fails: the transition is once-only by
// contract, and the error is surfaced to the first caller instead of being
// retried on the next request.
func (g *Gate) Observe(ctx context.Context, command string) (wiped bool, err error) {
	if g.armed.Load() {
		return false, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.armed.Load() {
		return false, nil
	}
	defer g.armed.Store(true)

	if strings.EqualFold(command, ResumeCommand) {
		slog.InfoContext(ctx, "first command is a resume, keeping persistent stores")
		return false, nil
	}

	slog.InfoContext(ctx, "first command observed, wiping persistent stores", "command", command)
	if err := g.stores.DropAll(ctx); err != nil {
		return false, err
	}
	if err := g.stores.Init(ctx); err != nil {
		return false, err
	}
	return true, nil
}
