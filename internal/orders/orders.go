// Package orders looks up customer orders for the order-query flow.
package orders

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("order not found")

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
	StatusReturned   Status = "returned"
)

type Item struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type Order struct {
	OrderNumber       string
	Status            Status
	CustomerEmail     string
	Items             []Item
	Total             float64
	TrackingNumber    string
	OrderedAt         time.Time
	EstimatedDelivery *time.Time
}

// Lookup resolves an order by its canonical order number
// (ORD-XXXX-XXXX). Implementations return ErrNotFound for unknown
// numbers.
type Lookup interface {
	Lookup(ctx context.Context, orderNumber string) (Order, error)
}
