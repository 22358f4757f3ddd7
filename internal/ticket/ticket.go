// Package ticket models support tickets raised by the escalation flow.
package ticket

import (
	"strings"
	"time"
)

type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
	StatusReopened   Status = "reopened"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

type Ticket struct {
	TicketID    string    `json:"ticket_id"`
	SessionID   string    `json:"session_id,omitempty"`
	Reason      string    `json:"reason"`
	Description string    `json:"description,omitempty"`
	Email       string    `json:"email"`
	OrderNumber string    `json:"order_number,omitempty"`
	Priority    Priority  `json:"priority"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DisplayOrderNumber renders the order reference for user-facing text.
func (t Ticket) DisplayOrderNumber() string {
	if t.OrderNumber == "" {
		return "No related order"
	}
	return t.OrderNumber
}

// placeholderOrderNumber is the example number shown in prompts. Users
// paste it back verbatim often enough that it must never be stored as a
// real reference.
const placeholderOrderNumber = "ORD-1234-5678"

var noOrderPhrases = map[string]struct{}{
	"no order":         {},
	"n/a":              {},
	"not_found":        {},
	"not found":        {},
	"none":             {},
	"no related order": {},
	"no order number":  {},
}

// NormalizeOrderNumber maps placeholder and decline inputs to the empty
// string so a ticket is stored without an order reference instead of
// with a bogus one.
func NormalizeOrderNumber(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if strings.EqualFold(trimmed, placeholderOrderNumber) {
		return ""
	}
	if _, declined := noOrderPhrases[strings.ToLower(trimmed)]; declined {
		return ""
	}
	return trimmed
}

var urgentTerms = []string{"critical", "emergency", "asap", "immediately", "urgent"}

var highTerms = []string{"broken", "damaged", "defective", "angry", "frustrated"}

// DerivePriority inspects conversation text and picks a priority tier.
func DerivePriority(text string) Priority {
	lower := strings.ToLower(text)
	for _, term := range urgentTerms {
		if strings.Contains(lower, term) {
			return PriorityUrgent
		}
	}
	for _, term := range highTerms {
		if strings.Contains(lower, term) {
			return PriorityHigh
		}
	}
	return PriorityMedium
}
