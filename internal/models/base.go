package models

import (
	"time"
)

// Base contains common columns for ledger tables. IDs are auto-incrementing so
// they give a deterministic tie-break for same-day transactions.
type Base struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
