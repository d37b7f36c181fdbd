package domain

import "time"

// Target types recorded on activities.
const (
	TargetUser    = "user"
	TargetPost    = "post"
	TargetProduct = "product"
)

// Activity is a logged social event such as "X is following Y".
type Activity struct {
	ID         uint      `gorm:"primaryKey"`
	UserID     uint      `gorm:"not null;index"`
	User       User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
	Verb       string    `gorm:"size:255;not null"`
	TargetType string    `gorm:"size:30"`
	TargetID   *uint     `gorm:"index"`
	Created    time.Time `gorm:"autoCreateTime;index"`
	Target     string    `gorm:"-"` // display name of the target, filled after loading
}
