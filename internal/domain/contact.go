package domain

import "time"

// Contact is a directed follow edge. The composite primary key keeps
// (user_from, user_to) unique.
type Contact struct {
	UserFromID uint      `gorm:"primaryKey"`
	UserToID   uint      `gorm:"primaryKey;index"`
	Created    time.Time `gorm:"autoCreateTime;index"`
	UserFrom   User      `gorm:"foreignKey:UserFromID;constraint:OnDelete:CASCADE;"`
	UserTo     User      `gorm:"foreignKey:UserToID;constraint:OnDelete:CASCADE;"`
}
