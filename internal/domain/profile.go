package domain

import (
	"strings"
	"time"
)

// Profile types accepted at signup.
const (
	ProfileBuyer  = "buyer"
	ProfileSeller = "seller"
)

// Profile Model
type Profile struct {
	ID          uint       `gorm:"primaryKey"`           // Primary key
	UserID      uint       `gorm:"uniqueIndex;not null"` // Owning user, one profile per user
	ProfileType string     `gorm:"size:20;not null"`     // buyer or seller
	Picture     string     `gorm:"size:255"`             // Path relative to the media root
	BirthDate   *time.Time                               // Optional birth date
}

// PictureURL resolves the picture path against the media prefix.
func (p Profile) PictureURL(mediaURL string) string {
	if p.Picture == "" {
		return ""
	}
	return strings.TrimSuffix(mediaURL, "/") + "/" + strings.TrimPrefix(p.Picture, "/")
}
