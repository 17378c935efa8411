package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"resin_go/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage is the SQLite journal of processed ticks.
type Storage struct {
	db *gorm.DB
}

// NewStorage opens (or creates) the SQLite database at dbPath.
func NewStorage(dbPath string) (*Storage, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create DB directory: %w", err)
		}
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := migrate(db); err != nil {
		return nil, err
	}

	return &Storage{db: db}, nil
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&domain.TickRecord{}, &domain.FillRecord{}, &domain.AppConfig{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ======================================================================================
// Tick Journal
// ======================================================================================

// RecordTick stores the tick, its fills and the outgoing trader data atomically.
func (s *Storage) RecordTick(ctx context.Context, rec *domain.TickRecord, fills []domain.FillRecord, traderData string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(rec).Error; err != nil {
			return fmt.Errorf("save tick %d: %w", rec.Seq, err)
		}
		if len(fills) > 0 {
			if err := tx.Create(&fills).Error; err != nil {
				return fmt.Errorf("save fills of tick %d: %w", rec.Seq, err)
			}
		}
		kv := domain.AppConfig{Key: domain.TraderDataKey, Value: traderData, UpdatedAt: time.Now()}
		return tx.Save(&kv).Error
	})
}

// GetTick retrieves a tick by sequence number
func (s *Storage) GetTick(seq uint64) (*domain.TickRecord, error) {
	var rec domain.TickRecord
	res := s.db.Where("seq = ?", seq).Limit(1).Find(&rec)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil // Not found is not an error
	}
	return &rec, nil
}

// RecentTicks returns up to limit ticks, newest first.
func (s *Storage) RecentTicks(limit int) ([]domain.TickRecord, error) {
	var recs []domain.TickRecord
	err := s.db.Order("seq desc").Limit(limit).Find(&recs).Error
	return recs, err
}

// FillsBySymbol returns every fill of symbol in execution order.
func (s *Storage) FillsBySymbol(symbol string) ([]domain.FillRecord, error) {
	var fills []domain.FillRecord
	err := s.db.Where("symbol = ?", symbol).Order("id").Find(&fills).Error
	return fills, err
}

// LastSeq returns the highest recorded sequence number, zero when empty.
func (s *Storage) LastSeq() (uint64, error) {
	var rec domain.TickRecord
	err := s.db.Order("seq desc").Limit(1).Find(&rec).Error
	return rec.Seq, err
}

// ======================================================================================
// Key-Value Operations
// ======================================================================================

// SaveValue saves a key-value pair
func (s *Storage) SaveValue(key, value string) error {
	kv := domain.AppConfig{
		Key:   key,
		Value: value,
	}
	return s.db.Save(&kv).Error
}

// LoadValue loads a value by key. A missing key returns "" and false.
func (s *Storage) LoadValue(key string) (string, bool, error) {
	var kv domain.AppConfig
	res := s.db.Where("key = ?", key).Limit(1).Find(&kv)
	if res.Error != nil {
		return "", false, res.Error
	}
	if res.RowsAffected == 0 {
		return "", false, nil
	}
	return kv.Value, true, nil
}

// TraderData returns the persisted opaque trader data string.
func (s *Storage) TraderData() (string, error) {
	v, _, err := s.LoadValue(domain.TraderDataKey)
	return v, err
}
