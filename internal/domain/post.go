package domain

import (
	"fmt"  // URL formatting
	"time" // Publish timestamps

	"github.com/gosimple/slug" // Slug generation
	"gorm.io/gorm"             // GORM hooks and scopes
)

// Post statuses
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Post Model
type Post struct {
	ID       uint      `gorm:"primaryKey"`                           // Primary key
	Title    string    `gorm:"size:250;not null"`                    // Post title
	Slug     string    `gorm:"size:250;not null;index"`              // URL slug, unique per publish date
	AuthorID uint      `gorm:"not null;index"`                       // Author foreign key
	Author   User      `gorm:"foreignKey:AuthorID"`                  // Author relation
	Body     string    `gorm:"type:text"`                            // Post body
	Publish  time.Time `gorm:"not null;index"`                       // Publication time
	Created  time.Time `gorm:"autoCreateTime"`                       // Creation time
	Updated  time.Time `gorm:"autoUpdateTime"`                       // Last update
	Status   string    `gorm:"size:10;not null;default:draft;index"` // draft or published
}

// BeforeCreate fills the slug, publish date and status when left empty
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.Slug == "" {
		p.Slug = slug.Make(p.Title) // Derive slug from the title
	}
	if p.Publish.IsZero() {
		p.Publish = time.Now() // Publish now by default
	}
	p.Publish = p.Publish.UTC() // Day lookups are done in UTC
	if p.Status == "" {
		p.Status = StatusDraft // New posts start as drafts
	}
	return nil
}

// AbsoluteURL returns the canonical detail path of the post
func (p Post) AbsoluteURL() string {
	pub := p.Publish.UTC()
	return fmt.Sprintf("/blog/%d/%d/%d/%s/", pub.Year(), int(pub.Month()), pub.Day(), p.Slug)
}

// Published is a scope restricting a query to published posts
func Published(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", StatusPublished)
}
