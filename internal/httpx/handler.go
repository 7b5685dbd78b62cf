package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/order-orchestrator/internal/orchestrator"
	"github.com/jcmexdev/order-orchestrator/internal/pkg/cache"
	"github.com/jcmexdev/order-orchestrator/internal/store"
)

// orderCacheTTL bounds cached order rows. Orders are insert-only, so cached
// entries cannot go stale; the TTL just caps memory.
const orderCacheTTL = 5 * time.Minute

// OrderPlacer is the handler's view of the orchestrator.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, req orchestrator.PlaceOrderRequest) orchestrator.Result
}

// Handler serves the order endpoints.
type Handler struct {
	saga   OrderPlacer
	orders store.Orders
	cache  cache.Cache // nil-safe: lookups go straight to the store when nil
}

func NewHandler(saga OrderPlacer, orders store.Orders, c cache.Cache) *Handler {
	return &Handler{saga: saga, orders: orders, cache: c}
}

// Command dispatches a POST /order body on its command field.
func (h *Handler) Command(w http.ResponseWriter, r *http.Request) {
	var cmd Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	switch cmd.Command {
	case CommandPlaceOrder:
		h.placeOrder(w, r, cmd)
	default:
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid Request")
	}
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request, cmd Command) {
	res := h.saga.PlaceOrder(r.Context(), orchestrator.PlaceOrderRequest{
		ProductID: cmd.ProductID,
		UserID:    cmd.UserID,
		Quantity:  cmd.Quantity,
	})

	switch res.Outcome {
	case orchestrator.OutcomeAccepted:
		writeJSON(w, http.StatusOK, mapOrder(res.Order))
	case orchestrator.OutcomeInvalidRequest:
		writeError(w, http.StatusBadRequest, "invalid_request", res.Message)
	case orchestrator.OutcomeQuantityExceeded:
		writeError(w, http.StatusBadRequest, "quantity_exceeded", res.Message)
	case orchestrator.OutcomeInventoryUpdateFailed:
		writeError(w, http.StatusBadRequest, "inventory_update_failed", res.Message)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", res.Message)
	}
}

// GetOrderByID serves GET /order/{id} from the cache when possible, falling
// back to the ledger.
func (h *Handler) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_order_id", "")
		return
	}

	var key string
	if h.cache != nil {
		key = h.cache.GenerateKey("order", strconv.FormatInt(id, 10))
		if cached, err := h.cache.Get(r.Context(), key); err == nil && cached != "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(cached))
			return
		}
	}

	order, err := h.orders.Get(r.Context(), id)
	if errors.Is(err, store.ErrOrderNotFound) {
		writeError(w, http.StatusNotFound, "order_not_found", "")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "order lookup failed", "order_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	resp := mapOrder(order)
	if h.cache != nil {
		if body, err := json.Marshal(resp); err == nil {
			if err := h.cache.Set(r.Context(), key, body, orderCacheTTL); err != nil {
				slog.WarnContext(r.Context(), "order cache write failed", "order_id", id, "error", err)
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func mapOrder(o *store.Order) OrderResponse {
	return OrderResponse{
		ID:        o.ID,
		ProductID: o.ProductID,
		UserID:    o.UserID,
		Quantity:  o.Quantity,
		Status:    o.Status,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
