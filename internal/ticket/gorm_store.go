package ticket

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	dbpkg "supportstack.local/projects/support-gateway/internal/db"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(driver, dsn string) (*GormStore, error) {
	gormDB, err := dbpkg.OpenGorm(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open ticket store: %w", err)
	}

	store := &GormStore{db: gormDB}
	if err := store.db.AutoMigrate(&ticketRow{}); err != nil {
		return nil, fmt.Errorf("migrate tickets: %w", err)
	}
	return store, nil
}

type ticketRow struct {
	TicketID    string    `gorm:"primaryKey;size:16"`
	SessionID   string    `gorm:"size:64;index"`
	Reason      string    `gorm:"size:191;not null"`
	Description string    `gorm:"type:text"`
	Email       string    `gorm:"size:191;not null"`
	OrderNumber string    `gorm:"size:32"`
	Priority    string    `gorm:"size:16;not null"`
	Status      string    `gorm:"size:16;not null"`
	CreatedAt   time.Time `gorm:"not null;index"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (ticketRow) TableName() string {
	return "tickets"
}

func (r ticketRow) toTicket() Ticket {
	return Ticket{
		TicketID:    r.TicketID,
		SessionID:   r.SessionID,
		Reason:      r.Reason,
		Description: r.Description,
		Email:       r.Email,
		OrderNumber: r.OrderNumber,
		Priority:    Priority(r.Priority),
		Status:      Status(r.Status),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func ticketRowFromTicket(t Ticket) ticketRow {
	return ticketRow{
		TicketID:    t.TicketID,
		SessionID:   t.SessionID,
		Reason:      t.Reason,
		Description: t.Description,
		Email:       t.Email,
		OrderNumber: t.OrderNumber,
		Priority:    string(t.Priority),
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (s *GormStore) Create(ctx context.Context, t Ticket) (Ticket, error) {
	prepared, err := prepare(t, time.Now().UTC())
	if err != nil {
		return Ticket{}, err
	}

	row := ticketRowFromTicket(prepared)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return Ticket{}, fmt.Errorf("create ticket: %w", err)
	}
	return prepared, nil
}

func (s *GormStore) Get(ctx context.Context, ticketID string) (Ticket, error) {
	var row ticketRow
	err := s.db.WithContext(ctx).
		Where("ticket_id = ?", ticketID).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Ticket{}, ErrNotFound
		}
		return Ticket{}, fmt.Errorf("get ticket: %w", err)
	}
	return row.toTicket(), nil
}

func (s *GormStore) BySession(ctx context.Context, sessionID string) (Ticket, error) {
	var row ticketRow
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Ticket{}, ErrNotFound
		}
		return Ticket{}, fmt.Errorf("ticket by session: %w", err)
	}
	return row.toTicket(), nil
}

func (s *GormStore) List(ctx context.Context, limit int) ([]Ticket, error) {
	query := s.db.WithContext(ctx).
		Model(&ticketRow{}).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []ticketRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	out := make([]Ticket, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toTicket())
	}
	return out, nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	return sqlDB.Close()
}
