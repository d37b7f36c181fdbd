package db

import (
	"context" // Request scoped context
	"fmt"     // Error wrapping

	"github.com/obutuz/Miley/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// CreateSuperuser creates an active superuser together with a buyer profile
func CreateSuperuser(ctx context.Context, gdb *gorm.DB, username, email, password string) (*domain.User, error) {
	user := domain.User{Username: username, Email: email, IsActive: true, IsSuperuser: true}
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}
	err := gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Profile").Create(&user).Error; err != nil {
			return err // Duplicate username or DB failure
		}
		user.Profile = domain.Profile{UserID: user.ID, ProfileType: domain.ProfileBuyer}
		return tx.Create(&user.Profile).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create superuser %q: %w", username, err)
	}
	return &user, nil
}
