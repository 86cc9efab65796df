package models

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrdersRepository struct {
	db *gorm.DB
}

// InsufficientStockError rejects a checkout that would drive a product's
// stock below zero. The whole checkout rolls back when it is returned.
type InsufficientStockError struct {
	ProductSlug string
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}

func NewOrdersRepository(db *gorm.DB) *OrdersRepository {
	return &OrdersRepository{
		db: db,
	}
}

// Checkout finalizes every pending line in the user's cart: stock is
// decremented, lines are stamped as ordered, and the cart's association set
// is cleared in full. Runs in a single transaction so a failure on any line
// leaves stock and lines exactly as they were. A user without a cart is a
// no-op, not an error.
func (r *OrdersRepository) Checkout(userID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		// Lock the cart row first: checkouts for the same user serialize
		// here, so the loser re-reads the pending set after the winner's
		// commit and finds nothing left to finalize.
		var cart Cart
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).First(&cart).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		var pending []OrderLine
		if err := tx.Where("user_id = ? AND ordered = ?", userID, false).
			Order("id").
			Find(&pending).Error; err != nil {
			return err
		}

		now := time.Now()
		for i := range pending {
			line := &pending[i]

			// Row lock so concurrent checkouts of the same product cannot
			// interleave their read-decrement-write.
			var product Product
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&product, line.ProductID).Error; err != nil {
				return err
			}

			if product.Stock < line.Quantity {
				return &InsufficientStockError{
					ProductSlug: product.Slug,
					ProductName: product.Name,
					Requested:   line.Quantity,
					Available:   product.Stock,
				}
			}

			product.Stock -= line.Quantity
			if err := tx.Save(&product).Error; err != nil {
				return err
			}

			line.Ordered = true
			line.OrderedAt = &now
			if err := tx.Save(line).Error; err != nil {
				return err
			}
		}

		// The whole association set goes, not just the lines finalized above.
		// Purchase history stays reachable through ListOrders only.
		return tx.Model(&cart).Association("Lines").Clear()
	})
}

// ListOrders returns the user's finalized lines, oldest purchase first.
func (r *OrdersRepository) ListOrders(userID string) ([]OrderLine, error) {
	var lines []OrderLine
	if err := r.db.
		Preload("Product").
		Where("user_id = ? AND ordered = ?", userID, true).
		Order("ordered_at, id").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}
