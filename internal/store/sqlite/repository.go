// Package sqlite implements the order ledger, the bootstrap wipe, and the
// placement-attempt log on a single SQLite database.
//
// The services of this system share one database file (info.db), which is why
// the wipe DDL for the users and products tables lives here alongside the
// orders table: the bootstrap gate must be able to drop and recreate all
// three in one place. WAL mode is enabled on Open so readers never block the
// writer; order rows are written on the request path while the lookup
// endpoint may be reading.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jcmexdev/order-orchestrator/internal/orchestrator/attemptlog"
	"github.com/jcmexdev/order-orchestrator/internal/store"

	// Register the pure-Go SQLite driver. modernc.org/sqlite avoids CGO,
	// which keeps cross-compilation and Alpine images painless.
	_ "modernc.org/sqlite"
)

// schema is the DDL applied on Open and on every bootstrap Init. Idempotent
// via IF NOT EXISTS. The orders/users/products shapes match what the three
// services have always stored in the shared file.
const schema = `
CREATE TABLE IF NOT EXISTS orders (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    product_id  INTEGER NOT NULL,
    user_id     INTEGER NOT NULL,
    quantity    INTEGER NOT NULL,
    status      TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
    id        INTEGER PRIMARY KEY,
    username  TEXT,
    email     TEXT,
    password  TEXT
);

CREATE TABLE IF NOT EXISTS products (
    id           INTEGER PRIMARY KEY,
    name         TEXT,
    description  TEXT,
    price        REAL,
    quantity     INTEGER
);

-- Append-only trail of placement-attempt transitions. One row per step
-- transition, not one per attempt; MAX(updated_at) per attempt_id gives the
-- terminal state.
CREATE TABLE IF NOT EXISTS placement_events (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    attempt_id    TEXT NOT NULL,
    status        TEXT NOT NULL,
    current_step  TEXT NOT NULL DEFAULT '',
    payload       TEXT,
    detail        TEXT NOT NULL DEFAULT '',
    trace_id      TEXT NOT NULL DEFAULT '',
    span_id       TEXT NOT NULL DEFAULT '',
    updated_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_placement_events_attempt
    ON placement_events(attempt_id, updated_at);
`

// Repository is the SQLite implementation of store.Orders, store.Wiper and
// attemptlog.Repository.
type Repository struct {
	db *sql.DB
}

var (
	_ store.Orders          = (*Repository)(nil)
	_ store.Wiper           = (*Repository)(nil)
	_ attemptlog.Repository = (*Repository)(nil)
)

// Open opens (or creates) the database at path and applies the schema.
// busy_timeout makes concurrent writers wait for the lock instead of failing.
func Open(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	// Driver name is "sqlite" for modernc, not "sqlite3".
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	r := &Repository{db: db}
	if err := r.Init(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

// Close releases the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Insert appends one order row and returns it with the generated ID. Matching
// the ledger contract, it errors when the insert affects zero rows or yields
// no generated key.
func (r *Repository) Insert(ctx context.Context, productID, userID, quantity int, status store.Status) (*store.Order, error) {
	const q = `INSERT INTO orders (product_id, user_id, quantity, status) VALUES (?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, q, productID, userID, quantity, string(status))
	if err != nil {
		return nil, fmt.Errorf("sqlite: insert order: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: insert order: %w", err)
	}
	if affected == 0 {
		return nil, errors.New("sqlite: insert order: no rows affected")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("sqlite: insert order: no generated id: %w", err)
	}

	return &store.Order{
		ID:        id,
		ProductID: productID,
		UserID:    userID,
		Quantity:  quantity,
		Status:    status,
	}, nil
}

// Get returns the order with the given ID, or store.ErrOrderNotFound.
func (r *Repository) Get(ctx context.Context, id int64) (*store.Order, error) {
	const q = `SELECT id, product_id, user_id, quantity, status FROM orders WHERE id = ?`

	var o store.Order
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&o.ID, &o.ProductID, &o.UserID, &o.Quantity, &o.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get order %d: %w", id, err)
	}
	return &o, nil
}

// DropAll drops every persistent table. Bootstrap-gate only.
func (r *Repository) DropAll(ctx context.Context) error {
	for _, table := range []string{"orders", "users", "products", "placement_events"} {
		if _, err := r.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return fmt.Errorf("sqlite: drop %s: %w", table, err)
		}
	}
	return nil
}

// Init (re)applies the schema. Idempotent.
func (r *Repository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return nil
}

// Save appends one placement-attempt log entry.
func (r *Repository) Save(ctx context.Context, entry *attemptlog.Entry) error {
	const q = `
		INSERT INTO placement_events
			(attempt_id, status, current_step, payload, detail, trace_id, span_id, updated_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		entry.AttemptID,
		string(entry.Status),
		entry.CurrentStep,
		nullableString(entry.Payload),
		entry.Detail,
		entry.TraceID,
		entry.SpanID,
		entry.UpdatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save placement event for %q: %w", entry.AttemptID, err)
	}
	return nil
}

// LastEvent returns the most recent log entry for an attempt: the attempt's
// terminal state once the pipeline has finished.
func (r *Repository) LastEvent(ctx context.Context, attemptID string) (*attemptlog.Entry, error) {
	const q = `
		SELECT attempt_id, status, current_step, COALESCE(payload,''), detail,
		       trace_id, span_id, updated_at
		FROM   placement_events
		WHERE  attempt_id = ?
		ORDER  BY updated_at DESC, id DESC
		LIMIT  1`

	var entry attemptlog.Entry
	var updatedAt string
	err := r.db.QueryRowContext(ctx, q, attemptID).Scan(
		&entry.AttemptID,
		&entry.Status,
		&entry.CurrentStep,
		&entry.Payload,
		&entry.Detail,
		&entry.TraceID,
		&entry.SpanID,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sqlite: attempt %q not found", attemptID)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: last event for %q: %w", attemptID, err)
	}

	entry.UpdatedAt, err = parseRFC3339(updatedAt)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// nullableString maps "" to NULL so non-STARTED rows keep a clean payload column.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
