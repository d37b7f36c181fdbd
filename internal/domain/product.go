package domain

import (
	"fmt"  // URL formatting
	"time" // Timestamps

	"github.com/gosimple/slug" // Slug generation
	"gorm.io/gorm"             // GORM hooks
)

// Category Model
type Category struct {
	ID   uint   `gorm:"primaryKey"`                    // Primary key
	Name string `gorm:"size:200;not null;index"`       // Category name
	Slug string `gorm:"size:200;not null;uniqueIndex"` // Unique slug
}

// BeforeCreate derives the slug from the name when left empty
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.Slug == "" {
		c.Slug = slug.Make(c.Name)
	}
	return nil
}

// AbsoluteURL returns the category listing path
func (c Category) AbsoluteURL() string {
	return "/shop/category/" + c.Slug + "/"
}

// Product Model
type Product struct {
	ID          uint      `gorm:"primaryKey"`                  // Primary key
	CategoryID  uint      `gorm:"not null;index"`              // Category foreign key
	Category    Category  `gorm:"foreignKey:CategoryID"`       // Category relation
	UserID      *uint     `gorm:"index"`                       // Seller, if any
	Name        string    `gorm:"size:200;not null;index"`     // Product name
	Slug        string    `gorm:"size:200;not null;index"`     // URL slug
	Image       string    `gorm:"size:255"`                    // Image path relative to the media root
	Description string    `gorm:"type:text"`                   // Description
	Price       float64   `gorm:"type:decimal(10,2);not null"` // Unit price
	Available   bool      `gorm:"not null;index"`              // Listed in the shop
	Created     time.Time `gorm:"autoCreateTime"`              // Creation time
	Updated     time.Time `gorm:"autoUpdateTime"`              // Last update
}

// BeforeCreate derives the slug from the name when left empty
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.Slug == "" {
		p.Slug = slug.Make(p.Name)
	}
	return nil
}

// AbsoluteURL returns the product detail path
func (p Product) AbsoluteURL() string {
	return fmt.Sprintf("/shop/product/%d/%s/", p.ID, p.Slug)
}
