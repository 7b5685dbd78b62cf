package attemptlog

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// TraceInfo holds the OTel identifiers extracted from a context.
// Both fields are empty when no span is recording (e.g. in unit tests).
type TraceInfo struct {
	TraceID string
	SpanID  string
}

// ExtractTraceInfo reads the active OpenTelemetry span from ctx and returns
// its trace and span IDs as lowercase hex strings. The otelhttp handler
// registered on the router creates the server span, so every entry written
// during request handling lines up with the inbound trace.
func ExtractTraceInfo(ctx context.Context) TraceInfo {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return TraceInfo{}
	}
	return TraceInfo{
		TraceID: sc.TraceID().String(),
		SpanID:  sc.SpanID().String(),
	}
}

// NewEntry builds an Entry stamped with the current time and the trace info
// extracted from ctx.
func NewEntry(ctx context.Context, attemptID string, status Status, step, payload, detail string) *Entry {
	ti := ExtractTraceInfo(ctx)
	return &Entry{
		AttemptID:   attemptID,
		Status:      status,
		CurrentStep: step,
		Payload:     payload,
		Detail:      detail,
		TraceID:     ti.TraceID,
		SpanID:      ti.SpanID,
		UpdatedAt:   time.Now().UTC(),
	}
}
