package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLine is a single (user, product, quantity) row. While Ordered is false
// it is a cart item; once Ordered flips it becomes an immutable purchase record.
//
// The partial unique index is what makes repeated add-to-cart calls merge into
// one pending row instead of racing into duplicates: at most one un-ordered
// line may exist per (user, product).
type OrderLine struct {
	ID        uint       `gorm:"primaryKey"`
	UserID    string     `gorm:"not null;index:idx_pending_line,unique,where:ordered = false"`
	ProductID uint       `gorm:"not null;index:idx_pending_line,unique,where:ordered = false"`
	Product   Product    `gorm:"foreignKey:ProductID"`
	Quantity  int        `gorm:"not null;check:quantity >= 1"`
	Ordered   bool       `gorm:"not null;default:false"`
	OrderedAt *time.Time
}

func (l *OrderLine) TableName() string {
	return "order_lines"
}

// TotalPrice is quantity x unit price. Requires Product to be loaded.
func (l *OrderLine) TotalPrice() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// LinesTotal sums the line totals of the given order lines.
func LinesTotal(lines []OrderLine) decimal.Decimal {
	total := decimal.Zero
	for i := range lines {
		total = total.Add(lines[i].TotalPrice())
	}
	return total
}
