package httpx

import "github.com/jcmexdev/order-orchestrator/internal/store"

// Command is the envelope of every POST /order body. The command field
// discriminates; place-order fields are pointers so "absent" is
// distinguishable from a zero value.
type Command struct {
	Command   string `json:"command"`
	ProductID *int   `json:"product_id"`
	UserID    *int   `json:"user_id"`
	Quantity  *int   `json:"quantity"`
}

// CommandPlaceOrder is the only command the order endpoint itself executes.
// Anything else, including the bootstrap control commands after the gate has
// consumed them, is an invalid request.
const CommandPlaceOrder = "place order"

// OrderResponse is the accepted-order body: the ledger row as the caller
// observes it.
type OrderResponse struct {
	ID        int64        `json:"id"`
	ProductID int          `json:"product_id"`
	UserID    int          `json:"user_id"`
	Quantity  int          `json:"quantity"`
	Status    store.Status `json:"status"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
