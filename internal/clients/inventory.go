package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Inventory talks to the product service: existence and quantity lookups plus
// the quantity overwrite used by the reservation step.
type Inventory struct {
	base   string
	client *http.Client
}

func NewInventory(baseURL string, timeout time.Duration) *Inventory {
	return &Inventory{base: baseURL, client: newHTTPClient(timeout)}
}

// Exists reports whether the product service answers 200 for the product.
func (c *Inventory) Exists(ctx context.Context, productID int) bool {
	res, err := c.get(ctx, productID)
	if err != nil {
		slog.WarnContext(ctx, "product existence check failed", "product_id", productID, "error", err)
		return false
	}
	defer drain(res.Body)
	return res.StatusCode == http.StatusOK
}

// GetQuantity returns the product's available quantity, or -1 when the lookup
// fails in any way (transport error, non-200, undecodable body). Callers
// treat -1 as "not available"; it is never a legitimate quantity.
func (c *Inventory) GetQuantity(ctx context.Context, productID int) int {
	res, err := c.get(ctx, productID)
	if err != nil {
		slog.WarnContext(ctx, "product quantity lookup failed", "product_id", productID, "error", err)
		return -1
	}
	defer drain(res.Body)
	if res.StatusCode != http.StatusOK {
		return -1
	}

	var payload struct {
		Quantity *int `json:"quantity"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil || payload.Quantity == nil {
		slog.WarnContext(ctx, "product quantity response undecodable", "product_id", productID, "error", err)
		return -1
	}
	return *payload.Quantity
}

// SetQuantity overwrites the product's quantity via the product service's
// update command and reports whether the service accepted it (HTTP 200).
func (c *Inventory) SetQuantity(ctx context.Context, productID, quantity int) bool {
	body, err := json.Marshal(map[string]any{
		"command":  "update",
		"id":       productID,
		"quantity": quantity,
	})
	if err != nil {
		return false
	}

	url := fmt.Sprintf("%s/product/%d", c.base, productID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		slog.WarnContext(ctx, "product quantity update failed", "product_id", productID, "error", err)
		return false
	}
	defer drain(res.Body)
	return res.StatusCode == http.StatusOK
}

func (c *Inventory) get(ctx context.Context, productID int) (*http.Response, error) {
	url := fmt.Sprintf("%s/product/%d", c.base, productID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.client.Do(req)
}
