// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the notification claim used to keep
// completion-report dispatch at-most-once.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sharoon-shahzad/go-diabetes-backend/internal/domain"
)

// ErrDuplicate indicates that a notification of this kind has already been
// claimed for the user, so the caller must not send.
var ErrDuplicate = errors.New("duplicate")

// ClaimNotification inserts the (user, kind) claim row and returns it, or
// ErrDuplicate when the claim already exists. The unique index makes the
// insert itself the check-and-set: there is no separate read that a second
// request could interleave with.
func ClaimNotification(ctx context.Context, db *gorm.DB, userID, kind, recipient string) (*domain.NotificationLog, error) {
	rec := &domain.NotificationLog{
		ID:        uuid.NewString(),
		UserID:    userID,
		Kind:      kind,
		Recipient: recipient,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec, nil
}

// HasNotification reports whether a claim of the given kind already exists
// for the user.
func HasNotification(ctx context.Context, db *gorm.DB, userID, kind string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.NotificationLog{}).
		Where("user_id = ? AND kind = ?", userID, kind).
		Count(&count).Error
	return count > 0, err
}
