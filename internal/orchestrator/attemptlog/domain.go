// Package attemptlog defines the domain types for the placement-attempt log.
//
// Every order placement runs as a short pipeline of named steps. The attempt
// log is a durable, append-only trail of the transitions each attempt goes
// through: one STARTED row with the request payload, one row per completed
// step, and a terminal ACCEPTED/REJECTED/FAILED row. Because the protocol
// deliberately carries no compensation, the log is the only place where the
// intermediate decisions (observed availability, the reserve decision, the
// inventory-update result) remain visible after the fact.
package attemptlog

import "time"

// Status is the lifecycle state of a placement attempt at the time a log
// entry is written.
type Status string

const (
	StatusStarted  Status = "STARTED"
	StatusStepDone Status = "STEP_DONE"
	StatusAccepted Status = "ACCEPTED"
	StatusRejected Status = "REJECTED"
	StatusFailed   Status = "FAILED"
)

// Entry is a single row in the placement_events table: a point-in-time
// snapshot of one attempt's progress.
type Entry struct {
	// AttemptID identifies one PlaceOrder execution. It is generated per
	// call (not per order) because rejected attempts may never get an
	// order ID, and accepted retries get distinct attempts on purpose.
	AttemptID string

	// Status is the lifecycle state this row records.
	Status Status

	// CurrentStep names the step that just executed or failed,
	// e.g. "Inventory_Check_Step".
	CurrentStep string

	// Payload is the JSON-serialised request, written once on STARTED.
	Payload string

	// Detail carries step-specific context: the observed availability,
	// the rejection reason, or an error string on FAILED rows.
	Detail string

	// TraceID / SpanID are the W3C identifiers of the OpenTelemetry span
	// active when the row was written, so a row can be joined with the
	// distributed trace that produced it.
	TraceID string
	SpanID  string

	// UpdatedAt is the wall-clock time of this entry.
	UpdatedAt time.Time
}
