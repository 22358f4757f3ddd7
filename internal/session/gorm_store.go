package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	dbpkg "supportstack.local/projects/support-gateway/internal/db"
	"supportstack.local/projects/support-gateway/internal/ids"
)

type GormStore struct {
	db    *gorm.DB
	locks *keyedMutex
}

func NewGormStore(driver, dsn string) (*GormStore, error) {
	gormDB, err := dbpkg.OpenGorm(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open gorm store: %w", err)
	}

	store := &GormStore{db: gormDB, locks: newKeyedMutex()}
	if err := store.migrate(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *GormStore) migrate() error {
	return s.db.AutoMigrate(&sessionRow{}, &turnRow{})
}

func (s *GormStore) Create(ctx context.Context) (Record, error) {
	rec := newRecord(time.Now().UTC())
	row, err := sessionRowFromRecord(rec)
	if err != nil {
		return Record{}, err
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return Record{}, fmt.Errorf("create session: %w", err)
	}
	return rec, nil
}

func (s *GormStore) Get(ctx context.Context, sessionID string) (Record, error) {
	if err := validateSessionID(sessionID); err != nil {
		return Record{}, err
	}

	var row sessionRow
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("get session: %w", err)
	}
	return row.toRecord()
}

func (s *GormStore) Update(ctx context.Context, sessionID string, mutate func(*Record) error) (Record, error) {
	if err := validateSessionID(sessionID); err != nil {
		return Record{}, err
	}

	lock := s.locks.lock(sessionID)
	defer lock.Unlock()

	var out Record
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row sessionRow
		err := tx.Where("session_id = ?", sessionID).Take(&row).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("get session: %w", err)
		}

		rec, err := row.toRecord()
		if err != nil {
			return err
		}
		if err := mutate(&rec); err != nil {
			return err
		}
		now := time.Now().UTC()
		rec.UpdatedAt = now
		rec.LastActiveAt = now

		updated, err := sessionRowFromRecord(rec)
		if err != nil {
			return err
		}
		if err := tx.Save(&updated).Error; err != nil {
			return fmt.Errorf("update session: %w", err)
		}
		out = rec
		return nil
	})
	if err != nil {
		return Record{}, err
	}
	return out, nil
}

func (s *GormStore) AppendTurn(ctx context.Context, turn Turn) (Turn, error) {
	if err := validateSessionID(turn.SessionID); err != nil {
		return Turn{}, err
	}

	var out Turn
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&sessionRow{}).
			Where("session_id = ?", turn.SessionID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("session lookup: %w", err)
		}
		if count == 0 {
			return ErrNotFound
		}

		var maxSeq int64
		if err := tx.Model(&turnRow{}).
			Where("session_id = ?", turn.SessionID).
			Select("COALESCE(MAX(sequence), 0)").
			Scan(&maxSeq).Error; err != nil {
			return fmt.Errorf("sequence lookup: %w", err)
		}

		turn.TurnID = ids.New()
		turn.Sequence = maxSeq + 1
		if turn.CreatedAt.IsZero() {
			turn.CreatedAt = time.Now().UTC()
		}

		row, err := turnRowFromTurn(turn)
		if err != nil {
			return err
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("create turn: %w", err)
		}
		out = turn
		return nil
	})
	if err != nil {
		return Turn{}, err
	}
	return out, nil
}

func (s *GormStore) ApplyTurn(ctx context.Context, sessionID string, mutate func(*Record) error, userTurn, assistantTurn Turn) (Record, []Turn, error) {
	if err := validateSessionID(sessionID); err != nil {
		return Record{}, nil, err
	}

	lock := s.locks.lock(sessionID)
	defer lock.Unlock()

	var outRec Record
	var outTurns []Turn
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row sessionRow
		err := tx.Where("session_id = ?", sessionID).Take(&row).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("get session: %w", err)
		}

		rec, err := row.toRecord()
		if err != nil {
			return err
		}
		if err := mutate(&rec); err != nil {
			return err
		}
		now := time.Now().UTC()
		rec.UpdatedAt = now
		rec.LastActiveAt = now

		updated, err := sessionRowFromRecord(rec)
		if err != nil {
			return err
		}
		if err := tx.Save(&updated).Error; err != nil {
			return fmt.Errorf("update session: %w", err)
		}

		var maxSeq int64
		if err := tx.Model(&turnRow{}).
			Where("session_id = ?", sessionID).
			Select("COALESCE(MAX(sequence), 0)").
			Scan(&maxSeq).Error; err != nil {
			return fmt.Errorf("sequence lookup: %w", err)
		}

		turns := []Turn{userTurn, assistantTurn}
		for i := range turns {
			turns[i].SessionID = sessionID
			turns[i].TurnID = ids.New()
			turns[i].Sequence = maxSeq + int64(i) + 1
			if turns[i].CreatedAt.IsZero() {
				turns[i].CreatedAt = now
			}
			turnRowValue, err := turnRowFromTurn(turns[i])
			if err != nil {
				return err
			}
			if err := tx.Create(&turnRowValue).Error; err != nil {
				return fmt.Errorf("create turn: %w", err)
			}
		}

		outRec = rec
		outTurns = turns
		return nil
	})
	if err != nil {
		return Record{}, nil, err
	}
	return outRec, outTurns, nil
}

func (s *GormStore) Turns(ctx context.Context, sessionID string, limit int) ([]Turn, error) {
	if err := validateSessionID(sessionID); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&sessionRow{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("session lookup: %w", err)
	}
	if count == 0 {
		return nil, ErrNotFound
	}

	query := s.db.WithContext(ctx).
		Model(&turnRow{}).
		Where("session_id = ?", sessionID).
		Order("sequence DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []turnRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("get turns: %w", err)
	}
	// rows come back newest-first; callers expect chronological order.
	out := make([]Turn, len(rows))
	for i, row := range rows {
		turn, err := row.toTurn()
		if err != nil {
			return nil, err
		}
		out[len(rows)-1-i] = turn
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
