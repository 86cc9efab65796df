package models

import (
	"errors"

	"gorm.io/gorm"
)

type CategoriesRepository struct {
	db *gorm.DB
}

// ErrCategoryNotFound is returned when a category is not found.
var ErrCategoryNotFound = errors.New("category not found")

func NewCategoriesRepository(db *gorm.DB) *CategoriesRepository {
	return &CategoriesRepository{
		db: db,
	}
}

func (r *CategoriesRepository) GetAllCategories() ([]Category, error) {
	var categories []Category
	if err := r.db.Order("slug").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoriesRepository) GetBySlug(slug string) (*Category, error) {
	var category Category
	if err := r.db.Where("slug = ?", slug).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (r *CategoriesRepository) CreateCategory(category *Category) error {
	return r.db.Create(category).Error
}

// RenameCategory updates the display name. Slugs are immutable once created.
func (r *CategoriesRepository) RenameCategory(slug, name string) (*Category, error) {
	category, err := r.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	category.Name = name
	if err := r.db.Save(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}
