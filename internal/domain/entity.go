package domain

import (
	"time"
)

// TickRecord is the persisted telemetry line of one processed tick.
type TickRecord struct {
	Seq       uint64    `gorm:"primaryKey" json:"seq"`
	Timestamp int64     `gorm:"index" json:"timestamp"`
	Line      string    `json:"line"`
	Orders    int       `json:"orders"`
	CreatedAt time.Time `json:"created_at"`
}

// FillRecord is a persisted paper fill.
type FillRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Seq       uint64    `gorm:"index" json:"seq"`
	Symbol    string    `gorm:"index" json:"symbol"`
	Price     int64     `json:"price"`
	Quantity  int64     `json:"quantity"`
	Timestamp int64     `json:"timestamp"`
	CreatedAt time.Time `json:"created_at"`
}

// AppConfig represents persisted key-value state (Key-Value)
type AppConfig struct {
	Key       string    `gorm:"primaryKey" json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TraderDataKey is the AppConfig key holding the opaque trader data string.
const TraderDataKey = "trader_data"
