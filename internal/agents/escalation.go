package agents

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"supportstack.local/projects/support-gateway/internal/intent"
	"supportstack.local/projects/support-gateway/internal/session"
	"supportstack.local/projects/support-gateway/internal/ticket"
)

// DefaultHistoryWindow is how many recent turns the collector re-scans
// for details on each invocation.
const DefaultHistoryWindow = 10

// EscalationAgent collects ticket details across turns and files the
// ticket once the required fields are present. While a session is pinned
// to this agent, every utterance lands here regardless of content.
type EscalationAgent struct {
	logger        *log.Logger
	tickets       ticket.Store
	historyWindow int
}

func NewEscalationAgent(logger *log.Logger, tickets ticket.Store, historyWindow int) *EscalationAgent {
	if historyWindow <= 0 {
		historyWindow = DefaultHistoryWindow
	}
	return &EscalationAgent{logger: logger, tickets: tickets, historyWindow: historyWindow}
}

func (a *EscalationAgent) ID() session.AgentID {
	return session.AgentEscalation
}

func (a *EscalationAgent) Handle(ctx context.Context, turn Turn) (Response, error) {
	scan := mergeDetails(turn.Session, turn.Utterance, turn.History, a.historyWindow)

	applyDetails := func(r *session.Record) {
		r.SetDetail(session.DetailReason, scan.Reason)
		r.SetDetail(session.DetailEmail, scan.Email)
		r.SetDetail(session.DetailOrderNumber, scan.OrderNumber)
		if scan.OrderDeclined {
			r.SetDetail(session.DetailOrderDeclined, "true")
		}
	}

	prompt := func(text, pending string) Response {
		return Response{
			Text: text,
			Mutate: func(r *session.Record) error {
				applyDetails(r)
				r.CurrentAgent = session.AgentEscalation
				r.PendingAction = pending
				return nil
			},
		}
	}

	if scan.Reason == "" {
		return prompt(
			"I'd like to get this to our support team. Could you briefly describe the issue you're having?",
			session.PendingAwaitingReason,
		), nil
	}
	if scan.Email == "" {
		return prompt(
			"I need your email address to create a support ticket. Please provide it so our team can follow up with you.",
			session.PendingAwaitingEmail,
		), nil
	}
	if scan.OrderNumber == "" && !scan.OrderDeclined {
		return prompt(
			"Is there an order number related to this issue? It looks like ORD-1234-5678. If not, just say 'no order'.",
			session.PendingAwaitingOrderNumber,
		), nil
	}

	finalize := func(t ticket.Ticket) Response {
		return Response{
			Text:   ticketConfirmation(t),
			Ticket: &t,
			Mutate: func(r *session.Record) error {
				applyDetails(r)
				r.SetDetail(session.DetailPriority, string(t.Priority))
				r.CurrentAgent = session.AgentNone
				r.PendingAction = ""
				r.Closed = true
				return nil
			},
		}
	}

	// A session files at most one ticket. If an earlier attempt created it
	// but the session write afterwards failed, the retried turn must reuse
	// the filed ticket instead of creating a second one.
	existing, err := a.tickets.BySession(ctx, turn.Session.SessionID)
	if err == nil {
		a.logger.Printf("ticket already filed session_id=%s ticket_id=%s", turn.Session.SessionID, existing.TicketID)
		return finalize(existing), nil
	}
	if !errors.Is(err, ticket.ErrNotFound) {
		a.logger.Printf("ticket lookup failed session_id=%s err=%v", turn.Session.SessionID, err)
		return Response{}, fmt.Errorf("%w: %v", ErrTicketCreation, err)
	}

	created, err := a.tickets.Create(ctx, ticket.Ticket{
		SessionID:   turn.Session.SessionID,
		Reason:      scan.Reason,
		Description: buildTicketDescription(scan, turn.History, a.historyWindow),
		Email:       scan.Email,
		OrderNumber: scan.OrderNumber,
		Priority:    derivePriorityFromConversation(scan.Reason, turn.History, a.historyWindow),
	})
	if err != nil {
		// Session stays pinned and collecting so the next turn retries.
		a.logger.Printf("ticket creation failed session_id=%s err=%v", turn.Session.SessionID, err)
		return Response{}, fmt.Errorf("%w: %v", ErrTicketCreation, err)
	}

	return finalize(created), nil
}

// FirstMissingPendingAction names the next collector field missing from
// the record. The router sets it when pinning a session so the first
// escalation turn already knows what it is waiting for.
func FirstMissingPendingAction(rec session.Record) string {
	if rec.Detail(session.DetailReason) == "" {
		return session.PendingAwaitingReason
	}
	if rec.Detail(session.DetailEmail) == "" {
		return session.PendingAwaitingEmail
	}
	if rec.Detail(session.DetailOrderNumber) == "" && rec.Detail(session.DetailOrderDeclined) != "true" {
		return session.PendingAwaitingOrderNumber
	}
	return ""
}

// detailScan is the result of one extraction pass. Empty fields mean
// "still unknown"; OrderDeclined means the user explicitly skipped the
// optional order number.
type detailScan struct {
	Reason        string
	Email         string
	OrderNumber   string
	OrderDeclined bool
}

// mergeDetails re-derives the collected details from scratch on every
// turn. Precedence: current utterance beats the history scan, which
// beats previously stored values. A source that finds nothing leaves the
// lower-precedence value standing.
func mergeDetails(rec session.Record, utterance string, history []session.Turn, window int) detailScan {
	scan := detailScan{
		Reason:        rec.Detail(session.DetailReason),
		Email:         rec.Detail(session.DetailEmail),
		OrderNumber:   rec.Detail(session.DetailOrderNumber),
		OrderDeclined: rec.Detail(session.DetailOrderDeclined) == "true",
	}

	// History scan, oldest first so that later turns overwrite earlier
	// ones within the window.
	recent := history
	if window > 0 && len(recent) > window {
		recent = recent[len(recent)-window:]
	}
	for _, turn := range recent {
		if turn.Role != session.RoleUser {
			continue
		}
		if emails := intent.FindEmails(turn.Content); len(emails) > 0 {
			scan.Email = emails[0]
		}
		for _, candidate := range intent.FindOrderNumbers(turn.Content) {
			if normalized := ticket.NormalizeOrderNumber(candidate); normalized != "" {
				scan.OrderNumber = normalized
			}
		}
		if scan.Reason == "" && looksLikeComplaint(turn.Content) {
			scan.Reason = strings.TrimSpace(turn.Content)
		}
	}

	// Current utterance wins over everything.
	pending := rec.PendingAction
	trimmed := strings.TrimSpace(utterance)

	if emails := intent.FindEmails(trimmed); len(emails) > 0 {
		scan.Email = emails[0]
	}
	for _, candidate := range intent.FindOrderNumbers(trimmed) {
		normalized := ticket.NormalizeOrderNumber(candidate)
		if normalized != "" {
			scan.OrderNumber = normalized
			scan.OrderDeclined = false
		} else if pending == session.PendingAwaitingOrderNumber {
			// Placeholder supplied when asked: treat as "no order".
			scan.OrderDeclined = true
		}
	}

	switch {
	case pending == session.PendingAwaitingReason && trimmed != "":
		scan.Reason = trimmed
	case looksLikeComplaint(trimmed) && pending != session.PendingAwaitingOrderNumber && pending != session.PendingAwaitingEmail:
		scan.Reason = trimmed
	}

	if pending == session.PendingAwaitingOrderNumber && scan.OrderNumber == "" && isOrderDecline(trimmed) {
		scan.OrderDeclined = true
	}

	return scan
}

var complaintKeywords = []string{
	"wrong", "broken", "damaged", "defective", "faulty", "not working",
	"doesn't work", "never arrived", "missing", "late", "lost",
	"disappointed", "frustrated", "angry", "terrible", "awful",
	"poor quality", "refund", "complaint", "problem", "issue",
	"received the wrong", "bad experience",
}

func looksLikeComplaint(text string) bool {
	lower := strings.ToLower(text)
	for _, keyword := range complaintKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

var declineReplies = map[string]struct{}{
	"no":           {},
	"nope":         {},
	"skip":         {},
	"no thanks":    {},
	"no thank you": {},
}

func isOrderDecline(text string) bool {
	if text == "" {
		return false
	}
	if ticket.NormalizeOrderNumber(text) == "" {
		return true
	}
	lower := strings.ToLower(strings.TrimRight(text, ".!"))
	if _, ok := declineReplies[lower]; ok {
		return true
	}
	return strings.Contains(lower, "don't have") || strings.Contains(lower, "do not have")
}

func derivePriorityFromConversation(reason string, history []session.Turn, window int) ticket.Priority {
	var b strings.Builder
	b.WriteString(reason)
	recent := history
	if window > 0 && len(recent) > window {
		recent = recent[len(recent)-window:]
	}
	for _, turn := range recent {
		if turn.Role == session.RoleUser {
			b.WriteString(" ")
			b.WriteString(turn.Content)
		}
	}
	return ticket.DerivePriority(b.String())
}

func buildTicketDescription(scan detailScan, history []session.Turn, window int) string {
	var b strings.Builder
	b.WriteString("=== CUSTOMER ISSUE ===\n")
	b.WriteString(scan.Reason)
	b.WriteString("\n\n=== CONTACT INFORMATION ===\n")
	fmt.Fprintf(&b, "Email: %s\n", scan.Email)
	orderDisplay := scan.OrderNumber
	if orderDisplay == "" {
		orderDisplay = "No related order"
	}
	fmt.Fprintf(&b, "Order Number: %s\n", orderDisplay)

	recent := history
	if window > 0 && len(recent) > window {
		recent = recent[len(recent)-window:]
	}
	if len(recent) > 0 {
		b.WriteString("\n=== CONVERSATION CONTEXT ===\n")
		for _, turn := range recent {
			fmt.Fprintf(&b, "%s: %s\n", strings.ToUpper(string(turn.Role)), turn.Content)
		}
	}
	return b.String()
}

func ticketConfirmation(t ticket.Ticket) string {
	var b strings.Builder
	b.WriteString("Your support ticket has been created. Our team will reach out to you shortly.\n\n")
	fmt.Fprintf(&b, "Ticket ID: %s\n", t.TicketID)
	fmt.Fprintf(&b, "Priority: %s\n", t.Priority)
	fmt.Fprintf(&b, "Contact email: %s\n", t.Email)
	fmt.Fprintf(&b, "Order: %s", t.DisplayOrderNumber())
	return b.String()
}
