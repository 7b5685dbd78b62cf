// Package middlewares holds the chi middlewares specific to this service.
package middlewares

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/jcmexdev/order-orchestrator/internal/bootstrap"
)

// HeaderBootstrap is the side-channel notification header. It carries the
// value "restarted" on exactly one response per process lifetime: the first
// command's response, when that command triggered the store wipe. It is
// independent of the command's own status and body.
const HeaderBootstrap = "X-Bootstrap"

// BootstrapGate routes every inbound request through the first-command gate.
// Until the gate arms, the request body is peeked for its command field (GET
// requests and non-JSON bodies count as an unnamed command) so the gate can
// tell the resume command apart from everything else; the body is restored
// before the request continues downstream. Once armed, requests pass through
// on the gate's lock-free fast path.
func BootstrapGate(gate *bootstrap.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if gate.Armed() {
				next.ServeHTTP(w, r)
				return
			}

			wiped, err := gate.Observe(r.Context(), peekCommand(r))
			if err != nil {
				slog.ErrorContext(r.Context(), "bootstrap wipe failed", "error", err)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "bootstrap_failed"})
				return
			}
			if wiped {
				w.Header().Set(HeaderBootstrap, "restarted")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// peekCommand reads the body to extract the command discriminator, then puts
// the bytes back so downstream handlers and proxies see the original body.
func peekCommand(r *http.Request) string {
	if r.Body == nil || r.Body == http.NoBody {
		return ""
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return ""
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	var probe struct {
		Command string `json:"command"`
	}
	_ = json.Unmarshal(body, &probe)
	return probe.Command
}
