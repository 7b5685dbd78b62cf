// Package clients holds the thin HTTP clients the orchestrator uses to talk
// to the user and product services. Both services answer entity lookups with
// plain status codes (200 = exists), which keeps these clients deliberately
// boolean-shaped: transport failures are logged and collapse into the
// negative answer rather than bubbling up as errors.
package clients

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// Identity checks user existence against the user service.
type Identity struct {
	base   string
	client *http.Client
}

// NewIdentity builds a client for the user service at baseURL (no trailing
// slash). A zero timeout means no client-side deadline, matching the original
// behavior; a timeout, when set, is treated like any other call failure.
func NewIdentity(baseURL string, timeout time.Duration) *Identity {
	return &Identity{base: baseURL, client: newHTTPClient(timeout)}
}

// Exists reports whether the user service answers 200 for the user. It fails
// closed: any transport error reads as "does not exist".
func (c *Identity) Exists(ctx context.Context, userID int) bool {
	url := fmt.Sprintf("%s/user/%d", c.base, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	res, err := c.client.Do(req)
	if err != nil {
		slog.WarnContext(ctx, "user existence check failed", "user_id", userID, "error", err)
		return false
	}
	defer drain(res.Body)
	return res.StatusCode == http.StatusOK
}

// drain consumes and closes a response body so the underlying connection can
// be reused by the transport.
func drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
