// Package gateway routes conversation turns: it classifies each user
// message, hands it to the right specialized agent, and persists the
// session transition atomically.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"supportstack.local/projects/support-gateway/internal/agents"
	"supportstack.local/projects/support-gateway/internal/dispatch"
	"supportstack.local/projects/support-gateway/internal/events"
	"supportstack.local/projects/support-gateway/internal/intent"
	"supportstack.local/projects/support-gateway/internal/retrieval"
	"supportstack.local/projects/support-gateway/internal/session"
	"supportstack.local/projects/support-gateway/internal/ticket"
)

const (
	welcomeMessage   = "Welcome! I'm your customer support assistant. How can I help you today?"
	historyTurnLimit = 50
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session closed")
	ErrEmptyMessage    = errors.New("empty message")

	// Re-exported so callers handle turn failures without importing the
	// agents package.
	ErrCollaboratorUnavailable = agents.ErrCollaboratorUnavailable
	ErrTicketCreation          = agents.ErrTicketCreation
	ErrQueueFull               = session.ErrSessionQueueFull
)

// Classifier labels a user utterance with an intent and a confidence.
type Classifier interface {
	Classify(ctx context.Context, utterance string, labels []string) (intent.Result, error)
}

// Topic is one browsable knowledge-base category.
type Topic struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DefaultTopics mirrors the knowledge-base categories the FAQ corpus
// covers.
var DefaultTopics = []Topic{
	{ID: "shipping", Name: "Shipping & Delivery"},
	{ID: "returns", Name: "Returns & Refunds"},
	{ID: "billing", Name: "Billing & Payment"},
	{ID: "account", Name: "Account Management"},
	{ID: "products", Name: "Products & Inventory"},
	{ID: "orders", Name: "Orders & Tracking"},
	{ID: "promotions", Name: "Promotions & Discounts"},
	{ID: "support", Name: "Customer Service"},
	{ID: "privacy", Name: "Privacy & Security"},
	{ID: "technical", Name: "Technical Issues"},
}

// Config wires the service's collaborators. Logger, Store, Classifier and
// the three agents are required; the rest default.
type Config struct {
	Logger     *log.Logger
	Store      session.Store
	Classifier Classifier
	Extractor  *intent.Extractor
	FAQ        agents.Agent
	OrderQuery agents.Agent
	Escalation agents.Agent
	Dispatcher *dispatch.Dispatcher
	Topics     []Topic
	QueueSize  int
}

type Service struct {
	logger     *log.Logger
	store      session.Store
	scheduler  *session.Scheduler
	classifier Classifier
	extractor  *intent.Extractor
	faq        agents.Agent
	orderQuery agents.Agent
	escalation agents.Agent
	dispatcher *dispatch.Dispatcher
	topics     []Topic
}

func NewService(cfg Config) *Service {
	extractor := cfg.Extractor
	if extractor == nil {
		extractor = intent.NewExtractor()
	}
	topics := cfg.Topics
	if len(topics) == 0 {
		topics = DefaultTopics
	}
	return &Service{
		logger:     cfg.Logger,
		store:      cfg.Store,
		scheduler:  session.NewScheduler(cfg.Logger, cfg.QueueSize),
		classifier: cfg.Classifier,
		extractor:  extractor,
		faq:        cfg.FAQ,
		orderQuery: cfg.OrderQuery,
		escalation: cfg.Escalation,
		dispatcher: cfg.Dispatcher,
		topics:     topics,
	}
}

// Result is the outcome of one processed turn, shaped for the HTTP layer.
type Result struct {
	SessionID          string              `json:"session_id"`
	Response           string              `json:"response"`
	Intent             intent.Intent       `json:"intent"`
	IntentConfidence   float64             `json:"intent_confidence"`
	Entities           []intent.Entity     `json:"entities,omitempty"`
	CurrentAgent       session.AgentID     `json:"current_agent,omitempty"`
	PendingAction      string              `json:"pending_action,omitempty"`
	CollectedDetails   map[string]string   `json:"collected_details,omitempty"`
	ShouldCreateTicket bool                `json:"should_create_ticket"`
	ConversationClosed bool                `json:"conversation_closed"`
	Ticket             *ticket.Ticket      `json:"ticket,omitempty"`
	Sources            []retrieval.Snippet `json:"sources,omitempty"`
}

// StartConversation creates a fresh session and returns it with the
// welcome text.
func (s *Service) StartConversation(ctx context.Context) (session.Record, string, error) {
	rec, err := s.store.Create(ctx)
	if err != nil {
		return session.Record{}, "", fmt.Errorf("create session: %w", err)
	}
	s.logger.Printf("session started session_id=%s", rec.SessionID)
	s.dispatch(ctx, events.New(events.TypeSessionStarted, rec.SessionID, "", nil))
	return rec, welcomeMessage, nil
}

// ProcessTurn runs one user message through the classification and agent
// pipeline. Turns for the same session execute serially; turns for
// different sessions run concurrently.
func (s *Service) ProcessTurn(ctx context.Context, sessionID, message string) (Result, error) {
	if strings.TrimSpace(message) == "" {
		return Result{}, ErrEmptyMessage
	}

	var result Result
	err := s.scheduler.Run(ctx, sessionID, func(ctx context.Context) error {
		var err error
		result, err = s.handleTurn(ctx, sessionID, message, false)
		return err
	})
	return result, err
}

// Escalate forces the session to the escalation agent regardless of what
// the classifier would say about userQuery.
func (s *Service) Escalate(ctx context.Context, sessionID, userQuery string) (Result, error) {
	if strings.TrimSpace(userQuery) == "" {
		userQuery = "I need to speak with support."
	}

	var result Result
	err := s.scheduler.Run(ctx, sessionID, func(ctx context.Context) error {
		var err error
		result, err = s.handleTurn(ctx, sessionID, userQuery, true)
		return err
	})
	return result, err
}

// Decline releases a session pinned to the escalation agent without
// filing a ticket. Collected details stay on the record; the session
// remains open for normal routing.
func (s *Service) Decline(ctx context.Context, sessionID string) (session.Record, error) {
	var rec session.Record
	err := s.scheduler.Run(ctx, sessionID, func(ctx context.Context) error {
		updated, err := s.store.Update(ctx, sessionID, func(r *session.Record) error {
			if r.Closed {
				return ErrSessionClosed
			}
			r.CurrentAgent = session.AgentNone
			r.PendingAction = ""
			return nil
		})
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				return ErrSessionNotFound
			}
			return err
		}
		rec = updated
		s.logger.Printf("escalation declined session_id=%s", sessionID)
		return nil
	})
	return rec, err
}

// History returns the session's turns oldest-first. A zero limit returns
// everything.
func (s *Service) History(ctx context.Context, sessionID string, limit int) ([]session.Turn, error) {
	turns, err := s.store.Turns(ctx, sessionID, limit)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return turns, nil
}

func (s *Service) Topics() []Topic {
	out := make([]Topic, len(s.topics))
	copy(out, s.topics)
	return out
}

func (s *Service) Close() {
	// The scheduler's workers exit with the process; nothing to stop.
}

func (s *Service) handleTurn(ctx context.Context, sessionID, message string, forceEscalation bool) (Result, error) {
	rec, err := s.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return Result{}, ErrSessionNotFound
		}
		return Result{}, fmt.Errorf("load session: %w", err)
	}
	if rec.Closed {
		return Result{}, ErrSessionClosed
	}

	entities := s.extractor.Extract(message)

	classified, agent := s.route(ctx, rec, message, forceEscalation)

	history, err := s.store.Turns(ctx, sessionID, historyTurnLimit)
	if err != nil {
		return Result{}, fmt.Errorf("load history: %w", err)
	}

	// Pin locally before invoking so the collector sees what it is
	// waiting for; persistence happens through the agent's mutation.
	invokedSession := rec
	if agent.ID() == session.AgentEscalation && rec.CurrentAgent != session.AgentEscalation {
		invokedSession.CurrentAgent = session.AgentEscalation
		invokedSession.PendingAction = agents.FirstMissingPendingAction(rec)
	}

	s.dispatch(ctx, events.New(events.TypeTurnStarted, sessionID, "", map[string]any{
		"intent":     string(classified.Intent),
		"confidence": classified.Confidence,
		"agent":      string(agent.ID()),
	}))

	resp, err := agent.Handle(ctx, agents.Turn{
		Session:    invokedSession,
		Utterance:  message,
		Intent:     classified.Intent,
		Confidence: classified.Confidence,
		Entities:   entities,
		History:    history,
	})
	if err != nil {
		s.logger.Printf("turn failed session_id=%s agent=%s err=%v", sessionID, agent.ID(), err)
		s.dispatch(ctx, events.New(events.TypeTurnFailed, sessionID, "", map[string]any{
			"agent": string(agent.ID()),
			"error": err.Error(),
		}))
		return Result{}, err
	}

	mutate := resp.Mutate
	if mutate == nil {
		mutate = func(*session.Record) error { return nil }
	}
	// One store write for the whole turn: the user turn, the session
	// mutation, and the assistant turn land together or not at all.
	updated, turns, err := s.store.ApplyTurn(ctx, sessionID, mutate,
		session.Turn{
			Role:       session.RoleUser,
			Content:    message,
			Intent:     string(classified.Intent),
			Confidence: classified.Confidence,
			Entities:   entities,
			AgentID:    agent.ID(),
		},
		session.Turn{
			Role:    session.RoleAssistant,
			Content: resp.Text,
			AgentID: agent.ID(),
		})
	if err != nil {
		return Result{}, fmt.Errorf("persist turn: %w", err)
	}
	userTurn := turns[0]

	if resp.Ticket != nil {
		s.logger.Printf("ticket created session_id=%s ticket_id=%s priority=%s", sessionID, resp.Ticket.TicketID, resp.Ticket.Priority)
		s.dispatch(ctx, events.New(events.TypeTicketCreated, sessionID, userTurn.TurnID, map[string]any{
			"ticket_id": resp.Ticket.TicketID,
			"priority":  string(resp.Ticket.Priority),
		}))
	}
	s.dispatch(ctx, events.New(events.TypeTurnCompleted, sessionID, userTurn.TurnID, map[string]any{
		"agent": string(agent.ID()),
	}))
	s.logger.Printf("turn complete session_id=%s turn_id=%s agent=%s intent=%s", sessionID, userTurn.TurnID, agent.ID(), classified.Intent)

	return Result{
		SessionID:          sessionID,
		Response:           resp.Text,
		Intent:             classified.Intent,
		IntentConfidence:   classified.Confidence,
		Entities:           entities,
		CurrentAgent:       updated.CurrentAgent,
		PendingAction:      updated.PendingAction,
		CollectedDetails:   updated.CollectedDetails,
		ShouldCreateTicket: resp.ShouldCreateTicket,
		ConversationClosed: updated.Closed,
		Ticket:             resp.Ticket,
		Sources:            resp.Sources,
	}, nil
}

// route decides which agent handles the turn. A session pinned to the
// escalation agent bypasses classification entirely so the collector
// keeps control until the ticket is filed or the user declines.
func (s *Service) route(ctx context.Context, rec session.Record, message string, forceEscalation bool) (intent.Result, agents.Agent) {
	if rec.CurrentAgent == session.AgentEscalation {
		return intent.Result{Intent: intent.IntentEscalationRequest, Confidence: 1.0}, s.escalation
	}
	if forceEscalation {
		return intent.Result{Intent: intent.IntentEscalationRequest, Confidence: 1.0}, s.escalation
	}

	classified, err := s.classifier.Classify(ctx, message, nil)
	if err != nil {
		s.logger.Printf("classification failed session_id=%s err=%v", rec.SessionID, err)
		return intent.Result{Intent: intent.IntentFAQ, Confidence: 0}, s.faq
	}

	switch {
	case intent.IsOrderIntent(classified.Intent):
		return classified, s.orderQuery
	case intent.IsEscalationIntent(classified.Intent):
		return classified, s.escalation
	default:
		return classified, s.faq
	}
}

func (s *Service) dispatch(ctx context.Context, event events.Envelope) {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Dispatch(ctx, event)
}
