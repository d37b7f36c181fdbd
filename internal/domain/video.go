package domain

import "time"

// Video Model, shown on the home feed
type Video struct {
	ID      uint      `gorm:"primaryKey"`        // Primary key
	UserID  uint      `gorm:"not null;index"`    // Uploader
	User    User      `gorm:"foreignKey:UserID"` // Uploader relation
	Title   string    `gorm:"size:200;not null"` // Title
	URL     string    `gorm:"size:500;not null"` // Source URL
	Created time.Time `gorm:"autoCreateTime"`    // Creation time
}
