package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jcmexdev/order-orchestrator/internal/bootstrap"
	"github.com/jcmexdev/order-orchestrator/internal/httpx/middlewares"
)

// NewRouter wires the command router. Throttle is the bounded worker pool:
// maxWorkers requests run concurrently, the rest queue. The bootstrap gate
// sits after it so every routed command, order or passthrough, can be the
// process's first.
func NewRouter(handler *Handler, gate *bootstrap.Gate, userProxy, productProxy http.Handler, maxWorkers int) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Throttle(maxWorkers))
	r.Use(middlewares.BootstrapGate(gate))

	r.Post("/order", handler.Command)
	r.Get("/order/{id}", handler.GetOrderByID)

	r.Handle("/user", userProxy)
	r.Handle("/user/*", userProxy)
	r.Handle("/product", productProxy)
	r.Handle("/product/*", productProxy)

	return r
}
