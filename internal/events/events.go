// Package events defines the lifecycle envelope published for every
// conversation turn and ticket.
package events

import (
	"time"

	"supportstack.local/projects/support-gateway/internal/ids"
)

type Type string

const (
	TypeSessionStarted Type = "session.started"
	TypeTurnStarted    Type = "turn.started"
	TypeTurnCompleted  Type = "turn.completed"
	TypeTurnFailed     Type = "turn.failed"
	TypeTicketCreated  Type = "ticket.created"
)

type Envelope struct {
	EventID    string         `json:"event_id"`
	Type       Type           `json:"type"`
	SessionID  string         `json:"session_id"`
	TurnID     string         `json:"turn_id,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload,omitempty"`
}

func New(eventType Type, sessionID, turnID string, payload map[string]any) Envelope {
	return Envelope{
		EventID:    ids.New(),
		Type:       eventType,
		SessionID:  sessionID,
		TurnID:     turnID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}
