package orders

import (
	"context"
	"strings"
	"sync"
)

// MemoryLookup is an in-memory Lookup used in tests and when the
// gateway runs without a database.
type MemoryLookup struct {
	mu     sync.RWMutex
	orders map[string]Order
}

func NewMemoryLookup(seed []Order) *MemoryLookup {
	l := &MemoryLookup{orders: make(map[string]Order, len(seed))}
	for _, order := range seed {
		l.orders[strings.ToUpper(strings.TrimSpace(order.OrderNumber))] = order
	}
	return l
}

func (l *MemoryLookup) Lookup(_ context.Context, orderNumber string) (Order, error) {
	key := strings.ToUpper(strings.TrimSpace(orderNumber))

	l.mu.RLock()
	defer l.mu.RUnlock()
	order, ok := l.orders[key]
	if !ok {
		return Order{}, ErrNotFound
	}
	return order, nil
}
