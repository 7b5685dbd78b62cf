package httpx

import (
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
)

// NewProxy builds the passthrough handler for the user and product services.
// Paths are forwarded untouched (/user/3 stays /user/3), matching how the
// services route. Proxy-level failures answer 502 so they are distinguishable
// from the collaborator's own 4xx/5xx responses.
func NewProxy(target *url.URL) http.Handler {
	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		slog.ErrorContext(r.Context(), "proxy request failed",
			"target", target.Host, "path", r.URL.Path, "error", err)
		w.WriteHeader(http.StatusBadGateway)
	}
	return proxy
}
