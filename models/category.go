package models

// Category groups products for browsing.
// The slug is the URL-safe identifier used by the category page.
type Category struct {
	ID   uint   `gorm:"primaryKey"`
	Slug string `gorm:"uniqueIndex;not null"`
	Name string `gorm:"not null"`
}

func (c *Category) TableName() string {
	return "categories"
}
