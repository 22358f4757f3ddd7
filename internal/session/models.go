package session

import (
	"time"

	"supportstack.local/projects/support-gateway/internal/intent"
)

// AgentID tags which specialized agent a session is pinned to. The empty
// value means the session routes normally through the classifier.
type AgentID string

const (
	AgentNone        AgentID = ""
	AgentFAQ         AgentID = "faq_agent"
	AgentOrderQuery  AgentID = "order_query_agent"
	AgentEscalation  AgentID = "escalation_agent"
	AgentOrderReturn AgentID = "order_return_agent"
)

func (a AgentID) Valid() bool {
	switch a {
	case AgentNone, AgentFAQ, AgentOrderQuery, AgentEscalation, AgentOrderReturn:
		return true
	default:
		return false
	}
}

// Detail keys collected during escalation. DetailOrderDeclined marks the
// optional order number as explicitly skipped by the user.
const (
	DetailReason        = "reason"
	DetailEmail         = "email"
	DetailOrderNumber   = "order_number"
	DetailPriority      = "priority"
	DetailOrderDeclined = "order_number_declined"
)

// Pending actions name the next escalation field the user is asked for.
const (
	PendingAwaitingReason      = "awaiting_reason"
	PendingAwaitingEmail       = "awaiting_email"
	PendingAwaitingOrderNumber = "awaiting_order_number"
)

type Record struct {
	SessionID        string            `json:"session_id"`
	CurrentAgent     AgentID           `json:"current_agent,omitempty"`
	PendingAction    string            `json:"pending_action,omitempty"`
	CollectedDetails map[string]string `json:"collected_details,omitempty"`
	Closed           bool              `json:"closed"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
	LastActiveAt     time.Time         `json:"last_active_at"`
}

// Detail returns a collected detail value, "" when absent.
func (r Record) Detail(key string) string {
	return r.CollectedDetails[key]
}

// SetDetail stores a non-empty detail value. Empty values are ignored so a
// scan that finds nothing can never erase a previously collected field.
func (r *Record) SetDetail(key, value string) {
	if value == "" {
		return
	}
	if r.CollectedDetails == nil {
		r.CollectedDetails = make(map[string]string)
	}
	r.CollectedDetails[key] = value
}

func (r Record) clone() Record {
	out := r
	if r.CollectedDetails != nil {
		out.CollectedDetails = make(map[string]string, len(r.CollectedDetails))
		for k, v := range r.CollectedDetails {
			out.CollectedDetails[k] = v
		}
	}
	return out
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Turn struct {
	TurnID     string          `json:"turn_id"`
	SessionID  string          `json:"session_id"`
	Sequence   int64           `json:"sequence"`
	Role       Role            `json:"role"`
	Content    string          `json:"content"`
	Intent     string          `json:"intent,omitempty"`
	Confidence float64         `json:"confidence,omitempty"`
	Entities   []intent.Entity `json:"entities,omitempty"`
	AgentID    AgentID         `json:"agent_id,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}
