package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
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
		return nil, fmt.Errorf("open orders store: %w", err)
	}

	store := &GormStore{db: gormDB}
	if err := store.db.AutoMigrate(&orderRow{}); err != nil {
		return nil, fmt.Errorf("migrate orders: %w", err)
	}
	return store, nil
}

type orderRow struct {
	OrderNumber       string     `gorm:"primaryKey;size:32"`
	Status            string     `gorm:"size:32;not null"`
	CustomerEmail     string     `gorm:"size:191;index"`
	Items             string     `gorm:"type:text"`
	Total             float64    `gorm:""`
	TrackingNumber    string     `gorm:"size:64"`
	OrderedAt         time.Time  `gorm:"not null"`
	EstimatedDelivery *time.Time `gorm:""`
}

func (orderRow) TableName() string {
	return "orders"
}

func (r orderRow) toOrder() (Order, error) {
	order := Order{
		OrderNumber:       r.OrderNumber,
		Status:            Status(r.Status),
		CustomerEmail:     r.CustomerEmail,
		Total:             r.Total,
		TrackingNumber:    r.TrackingNumber,
		OrderedAt:         r.OrderedAt,
		EstimatedDelivery: r.EstimatedDelivery,
	}
	if r.Items != "" {
		if err := json.Unmarshal([]byte(r.Items), &order.Items); err != nil {
			return Order{}, fmt.Errorf("decode order items: %w", err)
		}
	}
	return order, nil
}

func orderRowFromOrder(order Order) (orderRow, error) {
	row := orderRow{
		OrderNumber:       strings.ToUpper(strings.TrimSpace(order.OrderNumber)),
		Status:            string(order.Status),
		CustomerEmail:     order.CustomerEmail,
		Total:             order.Total,
		TrackingNumber:    order.TrackingNumber,
		OrderedAt:         order.OrderedAt,
		EstimatedDelivery: order.EstimatedDelivery,
	}
	if len(order.Items) > 0 {
		encoded, err := json.Marshal(order.Items)
		if err != nil {
			return orderRow{}, fmt.Errorf("encode order items: %w", err)
		}
		row.Items = string(encoded)
	}
	return row, nil
}

func (s *GormStore) Lookup(ctx context.Context, orderNumber string) (Order, error) {
	orderNumber = strings.ToUpper(strings.TrimSpace(orderNumber))
	if orderNumber == "" {
		return Order{}, fmt.Errorf("order_number is required")
	}

	var row orderRow
	err := s.db.WithContext(ctx).
		Where("order_number = ?", orderNumber).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Order{}, ErrNotFound
		}
		return Order{}, fmt.Errorf("lookup order: %w", err)
	}
	return row.toOrder()
}

// Seed inserts or replaces the given orders. Used at startup to load
// demo data and by tests.
func (s *GormStore) Seed(ctx context.Context, seed []Order) error {
	for _, order := range seed {
		row, err := orderRowFromOrder(order)
		if err != nil {
			return err
		}
		if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
			return fmt.Errorf("seed order %s: %w", row.OrderNumber, err)
		}
	}
	return nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	return sqlDB.Close()
}
