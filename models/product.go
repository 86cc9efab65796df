package models

import (
	"github.com/shopspring/decimal"
)

// Product represents a sellable item in the catalog.
// Stock carries a DB-level check so no committed write can leave it negative.
type Product struct {
	ID          uint            `gorm:"primaryKey"`
	Slug        string          `gorm:"uniqueIndex;not null"`
	Name        string          `gorm:"not null"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Stock       int             `gorm:"not null;check:stock >= 0"`
	Active      bool            `gorm:"not null;default:true"`
	CategoryID  uint            `gorm:"not null"`
	Category    Category        `gorm:"foreignKey:CategoryID"`
}

func (p *Product) TableName() string {
	return "products"
}
