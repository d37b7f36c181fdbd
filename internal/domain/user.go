package domain

import (
	"time" // Timestamps

	"golang.org/x/crypto/bcrypt" // Password hashing
)

// User Model
type User struct {
	ID          uint       `gorm:"primaryKey"`                    // Primary key
	Username    string     `gorm:"size:150;uniqueIndex;not null"` // Unique username
	Email       string     `gorm:"size:254"`                      // Email address
	FirstName   string     `gorm:"size:150"`                      // First name
	LastName    string     `gorm:"size:150"`                      // Last name
	Password    string     `gorm:"not null" json:"-"`             // Hashed password, never serialized
	IsActive    bool       `gorm:"not null"`                      // Inactive users cannot log in
	IsSuperuser bool       `gorm:"not null"`                      // Superusers reach the admin API
	DateJoined  time.Time  `gorm:"autoCreateTime"`                // Signup time
	LastLogin   *time.Time                                        // Last successful login
	Profile     Profile    `gorm:"constraint:OnDelete:CASCADE;"`  // One-to-one relationship with Profile
}

// SetPassword hashes raw and stores the hash on the user
func (u *User) SetPassword(raw string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

// CheckPassword reports whether raw matches the stored hash
func (u *User) CheckPassword(raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(raw)) == nil
}

// FullName joins first and last name, falling back to the username
func (u User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	}
	return u.Username
}
