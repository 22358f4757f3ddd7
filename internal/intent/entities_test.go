package intent

import "testing"

func TestExtractOrderNumberAndEmail(t *testing.T) {
	e := NewExtractor()

	entities := e.Extract("my order ORD-2024-001 never arrived, reach me at john@example.com")

	var order, email *Entity
	for i := range entities {
		switch entities[i].Type {
		case EntityOrderNumber:
			order = &entities[i]
		case EntityEmail:
			email = &entities[i]
		}
	}

	if order == nil {
		t.Fatalf("expected order_number entity, got %+v", entities)
	}
	if order.Value != "ORD-2024-001" {
		t.Fatalf("expected ORD-2024-001, got %q", order.Value)
	}
	if order.Confidence < 0.9 {
		t.Fatalf("expected context-boosted confidence, got %f", order.Confidence)
	}
	if email == nil || email.Value != "john@example.com" {
		t.Fatalf("expected email entity, got %+v", entities)
	}
}

func TestExtractCanonicalizesOrderNumbers(t *testing.T) {
	e := NewExtractor()

	cases := []struct {
		in   string
		want string
	}{
		{"ord 2024 001", "ORD-2024-001"},
		{"ORD-2024-0015", "ORD-2024-0015"},
		{"ORD20240015", "ORD-20240015"},
	}

	for _, tc := range cases {
		entities := e.Extract(tc.in)
		if len(entities) == 0 {
			t.Fatalf("extract %q: expected an entity", tc.in)
		}
		if entities[0].Type != EntityOrderNumber {
			t.Fatalf("extract %q: expected order_number, got %s", tc.in, entities[0].Type)
		}
		if entities[0].Value != tc.want {
			t.Fatalf("extract %q: expected %q, got %q", tc.in, tc.want, entities[0].Value)
		}
	}
}

func TestExtractDeduplicates(t *testing.T) {
	e := NewExtractor()

	entities := e.Extract("order ORD-2024-001 yes ORD-2024-001 again")
	count := 0
	for _, entity := range entities {
		if entity.Type == EntityOrderNumber {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected one deduplicated order entity, got %d", count)
	}
}

func TestFindOrderNumbersAndEmails(t *testing.T) {
	orders := FindOrderNumbers("first ORD-1111-222 then ord 3333 444")
	if len(orders) != 2 {
		t.Fatalf("expected two order numbers, got %v", orders)
	}
	if orders[0] != "ORD-1111-222" || orders[1] != "ORD-3333-444" {
		t.Fatalf("unexpected order numbers: %v", orders)
	}

	emails := FindEmails("contact a@b.co or c@d.io")
	if len(emails) != 2 {
		t.Fatalf("expected two emails, got %v", emails)
	}
}

func TestExtractAmountAndTracking(t *testing.T) {
	e := NewExtractor()

	entities := e.Extract("I paid $49.99 and the tracking is 1ZABCDEFG123456789")
	var foundAmount, foundTracking bool
	for _, entity := range entities {
		if entity.Type == EntityAmount {
			foundAmount = true
		}
		if entity.Type == EntityTrackingNumber {
			foundTracking = true
		}
	}
	if !foundAmount {
		t.Fatalf("expected amount entity, got %+v", entities)
	}
	if !foundTracking {
		t.Fatalf("expected tracking entity, got %+v", entities)
	}
}
