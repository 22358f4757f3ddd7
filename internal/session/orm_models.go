package session

import (
	"encoding/json"
	"fmt"
	"time"
)

type sessionRow struct {
	SessionID        string    `gorm:"primaryKey;size:64"`
	CurrentAgent     string    `gorm:"size:64"`
	PendingAction    string    `gorm:"size:191"`
	CollectedDetails string    `gorm:"type:text"`
	Closed           bool      `gorm:"not null"`
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
	LastActiveAt     time.Time `gorm:"not null;index"`
}

func (sessionRow) TableName() string {
	return "sessions"
}

func (r sessionRow) toRecord() (Record, error) {
	rec := Record{
		SessionID:     r.SessionID,
		CurrentAgent:  AgentID(r.CurrentAgent),
		PendingAction: r.PendingAction,
		Closed:        r.Closed,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		LastActiveAt:  r.LastActiveAt,
	}
	if r.CollectedDetails != "" {
		if err := json.Unmarshal([]byte(r.CollectedDetails), &rec.CollectedDetails); err != nil {
			return Record{}, fmt.Errorf("decode collected details: %w", err)
		}
	}
	if rec.CollectedDetails == nil {
		rec.CollectedDetails = make(map[string]string)
	}
	return rec, nil
}

func sessionRowFromRecord(rec Record) (sessionRow, error) {
	row := sessionRow{
		SessionID:     rec.SessionID,
		CurrentAgent:  string(rec.CurrentAgent),
		PendingAction: rec.PendingAction,
		Closed:        rec.Closed,
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
		LastActiveAt:  rec.LastActiveAt,
	}
	if len(rec.CollectedDetails) > 0 {
		encoded, err := json.Marshal(rec.CollectedDetails)
		if err != nil {
			return sessionRow{}, fmt.Errorf("encode collected details: %w", err)
		}
		row.CollectedDetails = string(encoded)
	}
	return row, nil
}

type turnRow struct {
	TurnID     string    `gorm:"primaryKey;size:64"`
	SessionID  string    `gorm:"size:64;uniqueIndex:idx_turns_session_sequence,priority:1"`
	Sequence   int64     `gorm:"not null;uniqueIndex:idx_turns_session_sequence,priority:2"`
	Role       string    `gorm:"size:16;not null"`
	Content    string    `gorm:"type:text;not null"`
	Intent     string    `gorm:"size:64"`
	Confidence float64   `gorm:""`
	Entities   string    `gorm:"type:text"`
	AgentID    string    `gorm:"size:64"`
	CreatedAt  time.Time `gorm:"not null"`
}

func (turnRow) TableName() string {
	return "turns"
}

func (r turnRow) toTurn() (Turn, error) {
	turn := Turn{
		TurnID:     r.TurnID,
		SessionID:  r.SessionID,
		Sequence:   r.Sequence,
		Role:       Role(r.Role),
		Content:    r.Content,
		Intent:     r.Intent,
		Confidence: r.Confidence,
		AgentID:    AgentID(r.AgentID),
		CreatedAt:  r.CreatedAt,
	}
	if r.Entities != "" {
		if err := json.Unmarshal([]byte(r.Entities), &turn.Entities); err != nil {
			return Turn{}, fmt.Errorf("decode turn entities: %w", err)
		}
	}
	return turn, nil
}

func turnRowFromTurn(turn Turn) (turnRow, error) {
	row := turnRow{
		TurnID:     turn.TurnID,
		SessionID:  turn.SessionID,
		Sequence:   turn.Sequence,
		Role:       string(turn.Role),
		Content:    turn.Content,
		Intent:     turn.Intent,
		Confidence: turn.Confidence,
		AgentID:    string(turn.AgentID),
		CreatedAt:  turn.CreatedAt,
	}
	if len(turn.Entities) > 0 {
		encoded, err := json.Marshal(turn.Entities)
		if err != nil {
			return turnRow{}, fmt.Errorf("encode turn entities: %w", err)
		}
		row.Entities = string(encoded)
	}
	return row, nil
}
