// Package store defines the order ledger entities and the persistence ports
// the orchestrator and the bootstrap gate depend on. Implementations live in
// subpackages (sqlite) so they can be swapped for in-memory fakes in tests.
package store

import (
	"context"
	"errors"
)

// Status is the outcome tag recorded on every placement attempt that reaches
// the persistence step. The strings are part of the wire contract and of the
// stored data, so they are spelled exactly as callers observe them.
type Status string

const (
	StatusSuccess        Status = "Success"
	StatusInvalidRequest Status = "Invalid Request"
	StatusExceeded       Status = "Exceeded quantity limit"
)

// Order is one row of the order ledger. Rows are insert-only: the status
// field is the sole record of how the placement attempt ended, and historical
// rows are never updated or deleted.
type Order struct {
	ID        int64  `json:"id"`
	ProductID int    `json:"product_id"`
	UserID    int    `json:"user_id"`
	Quantity  int    `json:"quantity"`
	Status    Status `json:"status"`
}

// ErrOrderNotFound is returned by Get when no row matches the requested ID.
var ErrOrderNotFound = errors.New("order not found")

// Orders is the order-ledger port. The ID of an inserted order is assigned by
// the store (monotonically unique autoincrement).
type Orders interface {
	// Insert appends one order row and returns it with the generated ID.
	// It fails if the insert affects zero rows or yields no generated ID.
	Insert(ctx context.Context, productID, userID, quantity int, status Status) (*Order, error)

	// Get returns the order with the given ID, or ErrOrderNotFound.
	Get(ctx context.Context, id int64) (*Order, error)
}

// Wiper is the bootstrap-gate port: drop and recreate every persistent table
// (orders, users, products). Only the gate calls these, and only once per
// process lifetime.
type Wiper interface {
	DropAll(ctx context.Context) error
	Init(ctx context.Context) error
}
