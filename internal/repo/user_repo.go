// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the User model,
// including the two conditional state transitions of the onboarding flow.
//
// The completion flip is the concurrency-critical operation of the whole
// system: many racing requests can observe "all questions answered" at the
// same time, possibly from independent processes, so no in-process lock can
// arbitrate. The single conditional UPDATE below is the sole arbiter: the
// one request whose UPDATE matches a row wins; everyone else sees
// RowsAffected == 0 and treats the transition as already done.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sharoon-shahzad/go-diabetes-backend/internal/domain"
)

// GetUser fetches a user by ID, or ErrNotFound.
func GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new user with default onboarding state (incomplete,
// draft, no timestamps).
func CreateUser(ctx context.Context, db *gorm.DB, email, fullName string) (*domain.User, error) {
	u := &domain.User{
		ID:         uuid.NewString(),
		Email:      email,
		FullName:   fullName,
		DataStatus: domain.DataStatusDraft,
		CreatedAt:  time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// MarkOnboardingCompleted attempts the one-time Incomplete→Completed
// transition for userID as a single atomic conditional update: the
// "still incomplete" precondition and the mutation (flag, completion
// timestamp, draft status, editing-window expiry) are one UPDATE statement.
//
// Returns:
//   - won == true:  this call performed the transition.
//   - won == false: another request already completed it; a normal outcome,
//     not an error.
//   - err != nil:   a genuine persistence fault, distinct from losing the race.
func MarkOnboardingCompleted(ctx context.Context, db *gorm.DB, userID string, now time.Time, editingWindow time.Duration) (won bool, err error) {
	expires := now.Add(editingWindow)
	res := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ? AND onboarding_completed = ?", userID, false).
		Updates(map[string]any{
			"onboarding_completed":    true,
			"onboarding_completed_at": now,
			"data_status":             domain.DataStatusDraft,
			"data_editing_expires_at": expires,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// MarkDataSubmitted flips the data status draft→submitted, guarded by the
// precondition that onboarding is completed and the status is still draft.
// Same contract as MarkOnboardingCompleted: won reports whether this call
// performed the flip.
func MarkDataSubmitted(ctx context.Context, db *gorm.DB, userID string) (won bool, err error) {
	res := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ? AND onboarding_completed = ? AND data_status = ?",
			userID, true, domain.DataStatusDraft).
		Update("data_status", domain.DataStatusSubmitted)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
