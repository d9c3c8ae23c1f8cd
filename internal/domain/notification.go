// Package domain defines the core persistence models for the application.
// This file holds the notification ledger used to keep side-effect dispatch
// at-most-once across racing requests and process restarts.
package domain

import "time"

// NotificationLog records that a notification of a given kind has been (or is
// being) sent to a user. The unique index on (user_id, kind) makes the INSERT
// itself the idempotency check: whichever request inserts first owns the
// send; everyone else hits the unique constraint and walks away.
type NotificationLog struct {
	ID        string    `gorm:"type:char(36);primaryKey"`
	UserID    string    `gorm:"type:char(36);not null;uniqueIndex:ux_notification_user_kind,priority:1"`
	Kind      string    `gorm:"type:varchar(64);not null;uniqueIndex:ux_notification_user_kind,priority:2"`
	Recipient string    `gorm:"type:varchar(255);not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// TableName implements the GORM tabler interface.
func (NotificationLog) TableName() string { return "notification_log" }

// NotificationKindOnboardingComplete is the completion-report email sent once
// per user when they finish answering every question for a disease.
const NotificationKindOnboardingComplete = "onboarding_complete"
