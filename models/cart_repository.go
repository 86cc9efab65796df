package models

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepository struct {
	db *gorm.DB
}

// ErrCartNotFound is returned when a user has no cart yet.
var ErrCartNotFound = errors.New("cart not found")

// addToCartRetries bounds how often a lost get-or-create race is retried
// before the conflict is surfaced to the caller.
const addToCartRetries = 3

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{
		db: db,
	}
}

// GetOrCreate returns the user's cart, creating an empty one if needed.
// The boolean reports whether a new cart was created. Safe under concurrent
// calls for the same user: the unique index on user_id makes the loser of a
// create race fall back to fetching the winner's row.
func (r *CartRepository) GetOrCreate(userID string) (*Cart, bool, error) {
	var cart Cart
	err := r.db.Where("user_id = ?", userID).First(&cart).Error
	if err == nil {
		return &cart, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	cart = Cart{UserID: userID}
	if err := r.db.Create(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race, another request created it first.
			if err := r.db.Where("user_id = ?", userID).First(&cart).Error; err != nil {
				return nil, false, err
			}
			return &cart, false, nil
		}
		return nil, false, err
	}
	return &cart, true, nil
}

// AddToCart adds one unit of the product to the user's cart. A pending line
// for the same product is incremented instead of duplicated; the first add
// also creates the cart and the cart-line association as needed.
//
// Two requests racing to create the first pending line collide on the partial
// unique index; the loser retries and lands on the increment path.
func (r *CartRepository) AddToCart(userID, productSlug string) (*OrderLine, error) {
	var lastErr error
	for attempt := 0; attempt < addToCartRetries; attempt++ {
		line, err := r.addToCartOnce(userID, productSlug)
		if err == nil {
			return line, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("add to cart kept conflicting: %w", lastErr)
}

func (r *CartRepository) addToCartOnce(userID, productSlug string) (*OrderLine, error) {
	var line OrderLine
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var product Product
		if err := tx.Where("slug = ? AND active = ?", productSlug, true).
			First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		// Lock the cart row so mutations of the same cart serialize; a
		// double-clicked add waits here instead of racing the increment.
		var cart Cart
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).First(&cart).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			cart = Cart{UserID: userID}
			if err := tx.Create(&cart).Error; err != nil {
				return err
			}
		}

		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND product_id = ? AND ordered = ?", userID, product.ID, false).
			First(&line).Error
		if err == nil {
			line.Quantity++
			return tx.Save(&line).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		line = OrderLine{
			UserID:    userID,
			ProductID: product.ID,
			Quantity:  1,
		}
		if err := tx.Create(&line).Error; err != nil {
			return err
		}
		return tx.Model(&cart).Association("Lines").Append(&line)
	})
	if err != nil {
		return nil, err
	}

	// Reload with the product for response rendering.
	if err := r.db.Preload("Product").First(&line, line.ID).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

// GetCart returns the user's cart with every associated line and its product
// loaded, ready for total computation.
func (r *CartRepository) GetCart(userID string) (*Cart, error) {
	var cart Cart
	if err := r.db.
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("order_lines.id") }).
		Preload("Lines.Product").
		Where("user_id = ?", userID).
		First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}
	return &cart, nil
}

// ListPending returns the user's not-yet-ordered lines.
func (r *CartRepository) ListPending(userID string) ([]OrderLine, error) {
	var lines []OrderLine
	if err := r.db.
		Preload("Product").
		Where("user_id = ? AND ordered = ?", userID, false).
		Order("id").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

// ClearPending deletes all pending lines for the user and detaches them from
// the cart. Finalized lines are untouched. No cart is a no-op.
func (r *CartRepository) ClearPending(userID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		// Same cart-row lock as the add and checkout paths.
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
			Find(&pending).Error; err != nil {
			return err
		}
		if len(pending) == 0 {
			return nil
		}

		if err := tx.Model(&cart).Association("Lines").Delete(pending); err != nil {
			return err
		}
		return tx.Delete(&pending).Error
	})
}
