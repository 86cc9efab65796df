package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is the per-user basket. The unique index on UserID enforces one cart
// per user. Lines is an association set, not ownership: order lines keep
// existing after they leave the cart (checkout clears the whole set, leaving
// purchase history reachable only through the orders query).
type Cart struct {
	ID        uint        `gorm:"primaryKey"`
	UserID    string      `gorm:"uniqueIndex;not null"`
	Lines     []OrderLine `gorm:"many2many:cart_lines"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Cart) TableName() string {
	return "carts"
}

// TotalPrice sums quantity x price over every line still associated with the
// cart, pending or not. Computed on each call, never stored.
func (c *Cart) TotalPrice() decimal.Decimal {
	return LinesTotal(c.Lines)
}
