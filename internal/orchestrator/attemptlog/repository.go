package attemptlog

import "context"

// Repository is the port for persisting attempt log entries. The orchestrator
// depends on this abstraction, not on SQLite directly, so tests can use an
// in-memory recorder and a deployment without a log can pass nil.
type Repository interface {
	// Save appends one entry. The log is append-only; there is no upsert.
	Save(ctx context.Context, entry *Entry) error
}
