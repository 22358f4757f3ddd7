package orders

import "time"

// SampleOrders is the demo dataset loaded when the gateway starts with
// an empty orders table.
func SampleOrders(now time.Time) []Order {
	inThree := now.Add(3 * 24 * time.Hour)
	return []Order{
		{
			OrderNumber:   "ORD-2024-001",
			Status:        StatusShipped,
			CustomerEmail: "john.doe@example.com",
			Items: []Item{
				{Name: "Wireless Headphones", Quantity: 1, Price: 99.99},
				{Name: "Phone Case", Quantity: 2, Price: 19.99},
			},
			Total:             160.67,
			TrackingNumber:    "TRK123456789",
			OrderedAt:         now.Add(-5 * 24 * time.Hour),
			EstimatedDelivery: &inThree,
		},
		{
			OrderNumber:   "ORD-2024-002",
			Status:        StatusDelivered,
			CustomerEmail: "jane.smith@example.com",
			Items: []Item{
				{Name: "Laptop Stand", Quantity: 1, Price: 49.99},
				{Name: "USB Cable", Quantity: 1, Price: 9.99},
				{Name: "Mouse Pad", Quantity: 1, Price: 12.99},
			},
			Total:          89.99,
			TrackingNumber: "TRK987654321",
			OrderedAt:      now.Add(-15 * 24 * time.Hour),
		},
		{
			OrderNumber:   "ORD-2024-003",
			Status:        StatusProcessing,
			CustomerEmail: "bob.wilson@example.com",
			Items: []Item{
				{Name: "Bluetooth Speaker", Quantity: 1, Price: 79.99},
			},
			Total:     93.89,
			OrderedAt: now.Add(-2 * 24 * time.Hour),
		},
		{
			OrderNumber:   "ORD-2024-004",
			Status:        StatusPending,
			CustomerEmail: "john.doe@example.com",
			Items: []Item{
				{Name: "Webcam", Quantity: 1, Price: 59.99},
			},
			Total:     71.29,
			OrderedAt: now.Add(-6 * time.Hour),
		},
	}
}
