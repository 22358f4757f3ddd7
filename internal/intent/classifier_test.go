package intent

import (
	"context"
	"testing"
)

func TestClassifyPriorityOrder(t *testing.T) {
	c := NewKeywordClassifier()

	cases := []struct {
		query string
		want  Intent
	}{
		{"I want to speak to a manager", IntentEscalationRequest},
		{"please create a support ticket for this", IntentTicketRequest},
		{"I want to return my order", IntentOrderReturn},
		{"where is my refund", IntentOrderRefund},
		{"what is the order status of ORD-2024-001", IntentOrderStatus},
		{"show my order details for order number 123", IntentOrderInquiry},
		{"I received wrong product", IntentComplaint},
		{"the item arrived broken and damaged", IntentComplaint},
		{"I can't log in to my account", IntentAccountIssue},
		{"how much does shipping cost to canada", IntentBillingPayment},
		{"what is your return policy?", IntentFAQ},
		{"hello there", IntentGeneralChat},
	}

	for _, tc := range cases {
		result, err := c.Classify(context.Background(), tc.query, nil)
		if err != nil {
			t.Fatalf("classify %q: %v", tc.query, err)
		}
		if result.Intent != tc.want {
			t.Fatalf("classify %q: expected %s, got %s", tc.query, tc.want, result.Intent)
		}
		if result.Confidence <= 0 || result.Confidence > 1 {
			t.Fatalf("classify %q: confidence out of range: %f", tc.query, result.Confidence)
		}
	}
}

func TestClassifyDefaultsToFAQ(t *testing.T) {
	c := NewKeywordClassifier()

	result, err := c.Classify(context.Background(), "xyzzy plugh", nil)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if result.Intent != IntentFAQ {
		t.Fatalf("expected default faq intent, got %s", result.Intent)
	}
	if result.Confidence != defaultConfidence {
		t.Fatalf("expected default confidence %f, got %f", defaultConfidence, result.Confidence)
	}
}

func TestEscalationBeatsOrderBeatsFAQ(t *testing.T) {
	c := NewKeywordClassifier()

	// A query carrying both escalation and order signals must classify as
	// escalation, and order must beat plain FAQ phrasing.
	result, _ := c.Classify(context.Background(), "I need a manager, my order is missing", nil)
	if !IsEscalationIntent(result.Intent) {
		t.Fatalf("expected escalation-class intent, got %s", result.Intent)
	}

	result, _ = c.Classify(context.Background(), "can you tell me the order status please", nil)
	if !IsOrderIntent(result.Intent) {
		t.Fatalf("expected order-class intent, got %s", result.Intent)
	}
}
