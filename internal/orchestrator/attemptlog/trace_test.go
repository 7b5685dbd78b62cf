package attemptlog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewEntryWithoutActiveSpan(t *testing.T) {
	entry := NewEntry(context.Background(), "attempt-1", StatusStarted, "Validate_Request_Step", `{"product_id":7}`, "")

	assert.Equal(t, "attempt-1", entry.AttemptID)
	assert.Equal(t, StatusStarted, entry.Status)
	assert.Equal(t, "Validate_Request_Step", entry.CurrentStep)
	assert.Empty(t, entry.TraceID, "no recording span means no trace id")
	assert.Empty(t, entry.SpanID)
	assert.WithinDuration(t, time.Now().UTC(), entry.UpdatedAt, time.Second)
}
