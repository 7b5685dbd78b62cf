package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/order-orchestrator/internal/orchestrator/attemptlog"
	"github.com/jcmexdev/order-orchestrator/internal/store"
)

type fakeIdentity struct {
	exists bool
	calls  int
}

func (f *fakeIdentity) Exists(ctx context.Context, userID int) bool {
	f.calls++
	return f.exists
}

// fakeInventory applies accepted SetQuantity calls to its own stock so
// replay tests observe real decrements.
type fakeInventory struct {
	exists   bool
	quantity int
	setOK    bool
	setCalls []int
}

func (f *fakeInventory) Exists(ctx context.Context, productID int) bool { return f.exists }

func (f *fakeInventory) GetQuantity(ctx context.Context, productID int) int { return f.quantity }

func (f *fakeInventory) SetQuantity(ctx context.Context, productID, quantity int) bool {
	f.setCalls = append(f.setCalls, quantity)
	if f.setOK {
		f.quantity = quantity
	}
	return f.setOK
}

type memOrders struct {
	mu         sync.Mutex
	rows       []store.Order
	failInsert bool
}

func (m *memOrders) Insert(ctx context.Context, productID, userID, quantity int, status store.Status) (*store.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failInsert {
		return nil, errors.New("insert order: no rows affected")
	}
	o := store.Order{
		ID:        int64(len(m.rows) + 1),
		ProductID: productID,
		UserID:    userID,
		Quantity:  quantity,
		Status:    status,
	}
	m.rows = append(m.rows, o)
	return &o, nil
}

func (m *memOrders) Get(ctx context.Context, id int64) (*store.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id {
			return &m.rows[i], nil
		}
	}
	return nil, store.ErrOrderNotFound
}

type memLog struct {
	mu      sync.Mutex
	entries []attemptlog.Entry
}

func (m *memLog) Save(ctx context.Context, entry *attemptlog.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *entry)
	return nil
}

func intp(v int) *int { return &v }

func placeRequest(productID, quantity int) PlaceOrderRequest {
	return PlaceOrderRequest{ProductID: intp(productID), Quantity: intp(quantity)}
}

func TestPlaceOrder_Success(t *testing.T) {
	identity := &fakeIdentity{exists: true}
	inventory := &fakeInventory{exists: true, quantity: 10, setOK: true}
	orders := &memOrders{}
	log := &memLog{}
	saga := New(identity, inventory, orders, log)

	req := placeRequest(7, 3)
	req.UserID = intp(1)
	res := saga.PlaceOrder(context.Background(), req)

	require.Equal(t, OutcomeAccepted, res.Outcome)
	require.NotNil(t, res.Order)
	assert.Equal(t, int64(1), res.Order.ID)
	assert.Equal(t, 7, res.Order.ProductID)
	assert.Equal(t, 1, res.Order.UserID)
	assert.Equal(t, 3, res.Order.Quantity)
	assert.Equal(t, store.StatusSuccess, res.Order.Status)

	require.Len(t, orders.rows, 1)
	require.Len(t, inventory.setCalls, 1)
	assert.Equal(t, 7, inventory.setCalls[0], "quantity decreases by exactly the requested amount")
	assert.Equal(t, 7, inventory.quantity)

	require.NotEmpty(t, log.entries)
	assert.Equal(t, attemptlog.StatusStarted, log.entries[0].Status)
	assert.Equal(t, attemptlog.StatusAccepted, log.entries[len(log.entries)-1].Status)
}

func TestPlaceOrder_MissingRequiredFields(t *testing.T) {
	cases := []struct {
		name string
		req  PlaceOrderRequest
	}{
		{"missing product_id", PlaceOrderRequest{Quantity: intp(3)}},
		{"missing quantity", PlaceOrderRequest{ProductID: intp(7)}},
		{"missing both", PlaceOrderRequest{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			identity := &fakeIdentity{exists: true}
			inventory := &fakeInventory{exists: true, quantity: 10, setOK: true}
			orders := &memOrders{}
			saga := New(identity, inventory, orders, nil)

			res := saga.PlaceOrder(context.Background(), tc.req)

			assert.Equal(t, OutcomeInvalidRequest, res.Outcome)
			assert.Equal(t, MsgMissingFields, res.Message)
			assert.Nil(t, res.Order)
			assert.Empty(t, orders.rows, "validation failures must not persist anything")
			assert.Zero(t, identity.calls, "no collaborator calls before validation passes")
		})
	}
}

func TestPlaceOrder_UserDoesNotExist(t *testing.T) {
	identity := &fakeIdentity{exists: false}
	inventory := &fakeInventory{exists: true, quantity: 10, setOK: true}
	orders := &memOrders{}
	saga := New(identity, inventory, orders, nil)

	res := saga.PlaceOrder(context.Background(), placeRequest(7, 3))

	assert.Equal(t, OutcomeInvalidRequest, res.Outcome)
	assert.Equal(t, MsgUnknownEntity, res.Message)
	require.Len(t, orders.rows, 1)
	assert.Equal(t, store.StatusInvalidRequest, orders.rows[0].Status)
	assert.Empty(t, inventory.setCalls, "inventory must not be mutated")
}

func TestPlaceOrder_ProductDoesNotExist(t *testing.T) {
	identity := &fakeIdentity{exists: true}
	inventory := &fakeInventory{exists: false, quantity: -1, setOK: true}
	orders := &memOrders{}
	saga := New(identity, inventory, orders, nil)

	res := saga.PlaceOrder(context.Background(), placeRequest(7, 3))

	assert.Equal(t, OutcomeInvalidRequest, res.Outcome)
	require.Len(t, orders.rows, 1)
	assert.Equal(t, store.StatusInvalidRequest, orders.rows[0].Status)
	assert.Empty(t, inventory.setCalls)
}

func TestPlaceOrder_QuantityExceeded(t *testing.T) {
	identity := &fakeIdentity{exists: true}
	inventory := &fakeInventory{exists: true, quantity: 10, setOK: true}
	orders := &memOrders{}
	saga := New(identity, inventory, orders, nil)

	res := saga.PlaceOrder(context.Background(), placeRequest(7, 50))

	assert.Equal(t, OutcomeQuantityExceeded, res.Outcome)
	assert.Equal(t, MsgExceeded, res.Message)
	require.Len(t, orders.rows, 1)
	assert.Equal(t, store.StatusExceeded, orders.rows[0].Status)
	assert.Empty(t, inventory.setCalls, "inventory unchanged on rejection")
	assert.Equal(t, 10, inventory.quantity)
}

// A failed quantity lookup comes back as -1 and falls into the exceeded
// branch rather than surfacing as a distinct error.
func TestPlaceOrder_QuantityLookupFailureRejectsAsExceeded(t *testing.T) {
	identity := &fakeIdentity{exists: true}
	inventory := &fakeInventory{exists: true, quantity: -1, setOK: true}
	orders := &memOrders{}
	saga := New(identity, inventory, orders, nil)

	res := saga.PlaceOrder(context.Background(), placeRequest(7, 1))

	assert.Equal(t, OutcomeQuantityExceeded, res.Outcome)
	require.Len(t, orders.rows, 1)
	assert.Equal(t, store.StatusExceeded, orders.rows[0].Status)
	assert.Empty(t, inventory.setCalls)
}

// The ledger row is written as "Success" before the mutation result is acted
// on, so a refused inventory update still leaves a Success row behind while
// the caller sees a failure.
func TestPlaceOrder_InventoryUpdateRefused(t *testing.T) {
	identity := &fakeIdentity{exists: true}
	inventory := &fakeInventory{exists: true, quantity: 10, setOK: false}
	orders := &memOrders{}
	saga := New(identity, inventory, orders, nil)

	res := saga.PlaceOrder(context.Background(), placeRequest(7, 3))

	assert.Equal(t, OutcomeInventoryUpdateFailed, res.Outcome)
	assert.Equal(t, MsgUpdateFailed, res.Message)
	require.NotNil(t, res.Order)
	require.Len(t, orders.rows, 1)
	assert.Equal(t, store.StatusSuccess, orders.rows[0].Status)
}

func TestPlaceOrder_DefaultUserID(t *testing.T) {
	identity := &fakeIdentity{exists: true}
	inventory := &fakeInventory{exists: true, quantity: 10, setOK: true}
	orders := &memOrders{}
	saga := New(identity, inventory, orders, nil)

	res := saga.PlaceOrder(context.Background(), placeRequest(7, 3))

	require.Equal(t, OutcomeAccepted, res.Outcome)
	assert.Equal(t, DefaultUserID, res.Order.UserID)
}

// Replaying an accepted request is not idempotent: a second row is appended
// and inventory is decremented again.
func TestPlaceOrder_NotIdempotent(t *testing.T) {
	identity := &fakeIdentity{exists: true}
	inventory := &fakeInventory{exists: true, quantity: 10, setOK: true}
	orders := &memOrders{}
	saga := New(identity, inventory, orders, nil)

	first := saga.PlaceOrder(context.Background(), placeRequest(7, 3))
	second := saga.PlaceOrder(context.Background(), placeRequest(7, 3))

	require.Equal(t, OutcomeAccepted, first.Outcome)
	require.Equal(t, OutcomeAccepted, second.Outcome)
	assert.NotEqual(t, first.Order.ID, second.Order.ID)
	assert.Len(t, orders.rows, 2)
	assert.Equal(t, []int{7, 4}, inventory.setCalls)
	assert.Equal(t, 4, inventory.quantity)
}

func TestPlaceOrder_StoreFailureIsInternalError(t *testing.T) {
	identity := &fakeIdentity{exists: true}
	inventory := &fakeInventory{exists: true, quantity: 10, setOK: true}
	orders := &memOrders{failInsert: true}
	log := &memLog{}
	saga := New(identity, inventory, orders, log)

	res := saga.PlaceOrder(context.Background(), placeRequest(7, 3))

	assert.Equal(t, OutcomeInternalError, res.Outcome)
	assert.Equal(t, MsgInternalFailure, res.Message)
	assert.Nil(t, res.Order)
	// The inventory mutation already happened; nothing rolls it back.
	assert.Equal(t, []int{7}, inventory.setCalls)
	assert.Equal(t, attemptlog.StatusFailed, log.entries[len(log.entries)-1].Status)
}

func TestPlaceOrder_StoreFailureOnRejectionRow(t *testing.T) {
	identity := &fakeIdentity{exists: false}
	inventory := &fakeInventory{exists: true, quantity: 10, setOK: true}
	orders := &memOrders{failInsert: true}
	saga := New(identity, inventory, orders, nil)

	res := saga.PlaceOrder(context.Background(), placeRequest(7, 3))

	assert.Equal(t, OutcomeInternalError, res.Outcome)
}
