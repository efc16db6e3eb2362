// Package models defines the gorm storage models for accounts, transactions
// and daily prices.
package models

// All returns every model managed by AutoMigrate, in dependency order.
func All() []interface{} {
	return []interface{}{
		&Account{},
		&Transaction{},
		&PricePoint{},
	}
}
