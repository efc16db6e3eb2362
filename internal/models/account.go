package models

// Account represents a brokerage or cash account holding transactions
type Account struct {
	Base
	Name        string `gorm:"not null" json:"name"`
	Broker      string `json:"broker,omitempty"`
	Currency    string `gorm:"not null;default:'USD'" json:"currency"`
	Description string `json:"description"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`

	// Relationships
	Transactions []Transaction `gorm:"foreignKey:AccountID" json:"transactions,omitempty"`
}
