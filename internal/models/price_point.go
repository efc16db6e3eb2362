package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PricePoint represents a daily close for a symbol.
// This is immutable time-series data: no Base embed, no soft deletes.
type PricePoint struct {
	ID     string              `gorm:"type:uuid;primaryKey" json:"id"`
	Symbol string              `gorm:"not null;uniqueIndex:idx_price_points_symbol_date" json:"symbol"`
	Date   time.Time           `gorm:"not null;uniqueIndex:idx_price_points_symbol_date" json:"date"`
	Close  decimal.Decimal     `gorm:"type:decimal(20,8);not null" json:"close"`
	Open   decimal.NullDecimal `gorm:"type:decimal(20,8)" json:"open"`
	High   decimal.NullDecimal `gorm:"type:decimal(20,8)" json:"high"`
	Low    decimal.NullDecimal `gorm:"type:decimal(20,8)" json:"low"`
	Volume *int64              `json:"volume,omitempty"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (p *PricePoint) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		p.ID = id.String()
	}
	return nil
}
