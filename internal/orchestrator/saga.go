// Package orchestrator implements the order-placement protocol: a synchronous
// saga across the identity service, the inventory service, and the order
// ledger, with no shared transaction and no compensation.
//
// The protocol is check-then-act by design. The availability check and the
// quantity mutation are two unserialized round trips, so two concurrent
// placements for the same product can both pass the check against the same
// pre-decrement quantity. That lost-update window is part of the observed
// contract and is not papered over here; a correctness-first variant would
// route mutations per product through a conditional update instead.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jcmexdev/order-orchestrator/internal/orchestrator/attemptlog"
	"github.com/jcmexdev/order-orchestrator/internal/store"
)

// DefaultUserID is assumed when a placement request carries no user_id.
const DefaultUserID = 1

// Step names recorded in the attempt log.
const (
	stepValidate       = "Validate_Request_Step"
	stepIdentityCheck  = "Identity_Check_Step"
	stepInventoryCheck = "Inventory_Check_Step"
	stepReserve        = "Reserve_Quantity_Step"
	stepRecordOrder    = "Record_Order_Step"
)

// IdentityClient answers user-existence checks against the user service.
// Implementations fail closed: a transport error reads as "does not exist".
type IdentityClient interface {
	Exists(ctx context.Context, userID int) bool
}

// InventoryClient is the product-service surface the saga needs.
type InventoryClient interface {
	Exists(ctx context.Context, productID int) bool

	// GetQuantity returns the available quantity, or -1 when the lookup
	// fails for any reason.
	GetQuantity(ctx context.Context, productID int) int

	// SetQuantity overwrites the product's available quantity and reports
	// whether the mutation was accepted.
	SetQuantity(ctx context.Context, productID, quantity int) bool
}

// Outcome classifies how a placement attempt ended, independent of transport.
type Outcome int

const (
	OutcomeAccepted Outcome = iota
	OutcomeInvalidRequest
	OutcomeQuantityExceeded
	OutcomeInventoryUpdateFailed
	OutcomeInternalError
)

// Caller-facing messages, matching the wording the services have always used.
const (
	MsgMissingFields   = "Invalid Request: Missing required fields."
	MsgUnknownEntity   = "Invalid Request: User/Product ID does not exist."
	MsgExceeded        = "Exceeded quantity limit."
	MsgUpdateFailed    = "Failed to update product quantity. Command refused."
	MsgInternalFailure = "Internal Server Error"
)

// PlaceOrderRequest is the saga input. Pointer fields distinguish "absent"
// from a legitimate zero: product_id and quantity are required, user_id
// defaults to DefaultUserID.
type PlaceOrderRequest struct {
	ProductID *int `json:"product_id"`
	UserID    *int `json:"user_id,omitempty"`
	Quantity  *int `json:"quantity"`
}

// Result is what a placement attempt reports back. Order is non-nil whenever
// a ledger row was written, including rejected attempts, whose row records
// the rejection status.
type Result struct {
	Outcome Outcome
	Order   *store.Order
	Message string
}

// Saga runs the placement protocol. One Saga value serves all requests; it
// holds no per-attempt state.
type Saga struct {
	identity  IdentityClient
	inventory InventoryClient
	orders    store.Orders
	log       attemptlog.Repository // nil-safe: skipped when nil
}

func New(identity IdentityClient, inventory InventoryClient, orders store.Orders, log attemptlog.Repository) *Saga {
	return &Saga{
		identity:  identity,
		inventory: inventory,
		orders:    orders,
		log:       log,
	}
}

// PlaceOrder executes the protocol sequentially on the calling goroutine:
//
//  1. validate required fields (nothing is persisted on failure)
//  2. check the user exists
//  3. check the product exists and read its available quantity
//  4. reject unknown user/product, recording an "Invalid Request" row
//  5. reject quantity > available, recording an "Exceeded quantity limit" row
//  6. write the decremented quantity back to the inventory service
//  7. record a "Success" row before the mutation result is inspected
//  8. report InventoryUpdateFailed if step 6 was refused, Accepted otherwise
//
// Exactly one ledger row is written per call that passes validation. The call
// is not idempotent: replaying an accepted request decrements inventory again
// and appends another row.
func (s *Saga) PlaceOrder(ctx context.Context, req PlaceOrderRequest) Result {
	attemptID := uuid.NewString()

	if req.ProductID == nil || req.Quantity == nil {
		s.record(ctx, attemptID, attemptlog.StatusRejected, stepValidate, "", MsgMissingFields)
		return Result{Outcome: OutcomeInvalidRequest, Message: MsgMissingFields}
	}

	productID := *req.ProductID
	quantity := *req.Quantity
	userID := DefaultUserID
	if req.UserID != nil {
		userID = *req.UserID
	}

	s.record(ctx, attemptID, attemptlog.StatusStarted, stepValidate, marshalPayload(productID, userID, quantity), "")
	slog.InfoContext(ctx, "placing order",
		"attempt_id", attemptID,
		"product_id", productID,
		"user_id", userID,
		"quantity", quantity,
	)

	userExists := s.identity.Exists(ctx, userID)
	s.record(ctx, attemptID, attemptlog.StatusStepDone, stepIdentityCheck, "", fmt.Sprintf("user_exists=%t", userExists))

	productExists := s.inventory.Exists(ctx, productID)
	available := s.inventory.GetQuantity(ctx, productID)
	s.record(ctx, attemptID, attemptlog.StatusStepDone, stepInventoryCheck, "",
		fmt.Sprintf("product_exists=%t available=%d", productExists, available))

	if !userExists || !productExists {
		return s.reject(ctx, attemptID, productID, userID, quantity,
			store.StatusInvalidRequest, OutcomeInvalidRequest, MsgUnknownEntity)
	}

	// A failed quantity lookup arrives here as -1 and is rejected as
	// "insufficient", not surfaced as a distinct error. Known quirk of the
	// protocol, kept as observed.
	if available < quantity {
		return s.reject(ctx, attemptID, productID, userID, quantity,
			store.StatusExceeded, OutcomeQuantityExceeded, MsgExceeded)
	}

	updated := s.inventory.SetQuantity(ctx, productID, available-quantity)
	s.record(ctx, attemptID, attemptlog.StatusStepDone, stepReserve, "",
		fmt.Sprintf("new_quantity=%d updated=%t", available-quantity, updated))

	// The ledger row is written as "Success" before the mutation result is
	// acted on. A refused update therefore leaves a "Success" row behind
	// while the caller sees a failure; the ledger and the inventory can
	// disagree and nothing reconciles them.
	order, err := s.orders.Insert(ctx, productID, userID, quantity, store.StatusSuccess)
	if err != nil {
		return s.fail(ctx, attemptID, err)
	}

	if !updated {
		s.record(ctx, attemptID, attemptlog.StatusRejected, stepReserve, "", MsgUpdateFailed)
		slog.WarnContext(ctx, "inventory update refused after order was recorded",
			"attempt_id", attemptID, "order_id", order.ID, "product_id", productID)
		return Result{Outcome: OutcomeInventoryUpdateFailed, Order: order, Message: MsgUpdateFailed}
	}

	s.record(ctx, attemptID, attemptlog.StatusAccepted, stepRecordOrder, "", fmt.Sprintf("order_id=%d", order.ID))
	slog.InfoContext(ctx, "order placed", "attempt_id", attemptID, "order_id", order.ID)
	return Result{Outcome: OutcomeAccepted, Order: order}
}

// reject records a rejection row in the ledger and closes out the attempt.
// A store failure while recording the rejection escalates to an internal error.
func (s *Saga) reject(ctx context.Context, attemptID string, productID, userID, quantity int,
	status store.Status, outcome Outcome, msg string) Result {

	order, err := s.orders.Insert(ctx, productID, userID, quantity, status)
	if err != nil {
		return s.fail(ctx, attemptID, err)
	}
	s.record(ctx, attemptID, attemptlog.StatusRejected, stepRecordOrder, "", msg)
	return Result{Outcome: outcome, Order: order, Message: msg}
}

// fail is the top-level catch for unexpected errors: log, record, surface a
// generic internal failure. No partial work is rolled back.
func (s *Saga) fail(ctx context.Context, attemptID string, err error) Result {
	slog.ErrorContext(ctx, "order placement failed", "attempt_id", attemptID, "error", err)
	s.record(ctx, attemptID, attemptlog.StatusFailed, stepRecordOrder, "", err.Error())
	return Result{Outcome: OutcomeInternalError, Message: MsgInternalFailure}
}

// record appends an attempt-log entry. Log failures are logged and swallowed:
// the log must never change the protocol's outcome.
func (s *Saga) record(ctx context.Context, attemptID string, status attemptlog.Status, step, payload, detail string) {
	if s.log == nil {
		return
	}
	entry := attemptlog.NewEntry(ctx, attemptID, status, step, payload, detail)
	if err := s.log.Save(ctx, entry); err != nil {
		slog.WarnContext(ctx, "attempt log write failed", "attempt_id", attemptID, "error", err)
	}
}

func marshalPayload(productID, userID, quantity int) string {
	b, err := json.Marshal(map[string]int{
		"product_id": productID,
		"user_id":    userID,
		"quantity":   quantity,
	})
	if err != nil {
		return ""
	}
	return string(b)
}
