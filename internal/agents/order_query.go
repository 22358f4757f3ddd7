package agents

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"supportstack.local/projects/support-gateway/internal/intent"
	"supportstack.local/projects/support-gateway/internal/orders"
	"supportstack.local/projects/support-gateway/internal/session"
)

// OrderQueryAgent resolves order-status questions. It asks for the order
// number when it cannot find one, but does not pin the session; each turn
// stands alone.
type OrderQueryAgent struct {
	logger *log.Logger
	lookup orders.Lookup
}

func NewOrderQueryAgent(logger *log.Logger, lookup orders.Lookup) *OrderQueryAgent {
	return &OrderQueryAgent{logger: logger, lookup: lookup}
}

func (a *OrderQueryAgent) ID() session.AgentID {
	return session.AgentOrderQuery
}

func (a *OrderQueryAgent) Handle(ctx context.Context, turn Turn) (Response, error) {
	orderNumber := orderNumberFromTurn(turn)
	if orderNumber == "" {
		return Response{
			Text: "I can look that up for you. Could you share your order number? " +
				"It looks like ORD-1234-5678 and is in your confirmation email.",
		}, nil
	}

	order, err := a.lookup.Lookup(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			return Response{
				Text: fmt.Sprintf("I couldn't find an order with the number %s. "+
					"Please double-check the number from your confirmation email and try again.", orderNumber),
			}, nil
		}
		a.logger.Printf("order lookup failed session_id=%s order=%s err=%v", turn.Session.SessionID, orderNumber, err)
		return Response{}, fmt.Errorf("%w: order lookup: %v", ErrCollaboratorUnavailable, err)
	}

	return Response{Text: renderOrder(order)}, nil
}

func orderNumberFromTurn(turn Turn) string {
	for _, entity := range turn.Entities {
		if entity.Type == intent.EntityOrderNumber {
			return entity.Value
		}
	}
	if found := intent.FindOrderNumbers(turn.Utterance); len(found) > 0 {
		return found[0]
	}
	// Most recent mention wins.
	for i := len(turn.History) - 1; i >= 0; i-- {
		if turn.History[i].Role != session.RoleUser {
			continue
		}
		if found := intent.FindOrderNumbers(turn.History[i].Content); len(found) > 0 {
			return found[0]
		}
	}
	return ""
}

func renderOrder(order orders.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Here's what I found for order %s:\n", order.OrderNumber)
	fmt.Fprintf(&b, "Status: %s\n", order.Status)
	if len(order.Items) > 0 {
		b.WriteString("Items:\n")
		for _, item := range order.Items {
			fmt.Fprintf(&b, "  - %s x%d ($%.2f)\n", item.Name, item.Quantity, item.Price)
		}
	}
	fmt.Fprintf(&b, "Total: $%.2f\n", order.Total)
	if order.TrackingNumber != "" {
		fmt.Fprintf(&b, "Tracking number: %s\n", order.TrackingNumber)
	}
	if order.EstimatedDelivery != nil {
		fmt.Fprintf(&b, "Estimated delivery: %s\n", order.EstimatedDelivery.Format("Mon, Jan 2 2006"))
	}
	return strings.TrimRight(b.String(), "\n")
}
