package api

import (
	"context" // Request context
	"time"    // Duplicate window

	"github.com/obutuz/Miley/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// activityWindow suppresses repeats of the same action
const activityWindow = time.Minute

// createActivity records an action unless the same one was logged within
// the last minute. It reports whether a row was inserted.
func createActivity(ctx context.Context, db *gorm.DB, userID uint, verb, targetType string, targetID *uint) (bool, error) {
	var similar int64 // Matching recent actions
	query := db.WithContext(ctx).Model(&domain.Activity{}).
		Where("user_id = ? AND verb = ? AND created >= ?", userID, verb, time.Now().Add(-activityWindow))
	if targetID != nil {
		query = query.Where("target_type = ? AND target_id = ?", targetType, *targetID)
	}
	if err := query.Count(&similar).Error; err != nil {
		return false, err
	}
	if similar > 0 {
		return false, nil // Already logged
	}
	activity := domain.Activity{UserID: userID, Verb: verb, TargetType: targetType, TargetID: targetID}
	if err := db.WithContext(ctx).Create(&activity).Error; err != nil {
		return false, err
	}
	return true, nil
}

// resolveTargets fills the display name of each activity target
func resolveTargets(ctx context.Context, db *gorm.DB, activities []domain.Activity) error {
	var userIDs []uint
	for _, a := range activities {
		if a.TargetType == domain.TargetUser && a.TargetID != nil {
			userIDs = append(userIDs, *a.TargetID)
		}
	}
	if len(userIDs) == 0 {
		return nil
	}
	var users []domain.User
	if err := db.WithContext(ctx).Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		return err
	}
	names := make(map[uint]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Username
	}
	for i := range activities {
		a := &activities[i]
		if a.TargetType == domain.TargetUser && a.TargetID != nil {
			a.Target = names[*a.TargetID]
		}
	}
	return nil
}
