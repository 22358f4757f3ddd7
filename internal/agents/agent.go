// Package agents implements the specialized conversation handlers the
// router dispatches turns to: FAQ answers, order lookups, and the
// escalation detail collector.
package agents

import (
	"context"
	"errors"

	"supportstack.local/projects/support-gateway/internal/intent"
	"supportstack.local/projects/support-gateway/internal/retrieval"
	"supportstack.local/projects/support-gateway/internal/session"
	"supportstack.local/projects/support-gateway/internal/ticket"
)

var (
	// ErrCollaboratorUnavailable marks a failed call to a downstream
	// service (retrieval, order lookup). The turn fails but session
	// state is left untouched.
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")

	// ErrTicketCreation marks a ticket store write failure after detail
	// collection completed. The session stays in collection so the user
	// can retry.
	ErrTicketCreation = errors.New("ticket creation failed")
)

// Turn is one user utterance plus the routing context the agent needs.
type Turn struct {
	Session    session.Record
	Utterance  string
	Intent     intent.Intent
	Confidence float64
	Entities   []intent.Entity
	History    []session.Turn
}

// Response is an agent's answer. Mutate, when non-nil, is applied to the
// session record inside the store's atomic update; agents never write
// session state directly.
type Response struct {
	Text               string
	Mutate             func(*session.Record) error
	Ticket             *ticket.Ticket
	ShouldCreateTicket bool
	Sources            []retrieval.Snippet
}

type Agent interface {
	ID() session.AgentID
	Handle(ctx context.Context, turn Turn) (Response, error)
}
