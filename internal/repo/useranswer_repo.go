// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the UserAnswer
// model: the append-only, soft-deletable record of what a user answered per
// question.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sharoon-shahzad/go-diabetes-backend/internal/domain"
)

// UpsertUserAnswer records userID's answer to questionID. Any previously
// active row for the pair is soft-deleted and a fresh row inserted, both in
// one transaction, so history is preserved and at most one row per
// (user, question) stays active.
func UpsertUserAnswer(ctx context.Context, db *gorm.DB, userID, questionID, answerID string) (*domain.UserAnswer, error) {
	ua := &domain.UserAnswer{
		ID:         uuid.NewString(),
		UserID:     userID,
		QuestionID: questionID,
		AnswerID:   answerID,
		CreatedAt:  time.Now().UTC(),
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Soft-deletes every active row for the pair (normally 0 or 1).
		if err := tx.Where("user_id = ? AND question_id = ?", userID, questionID).
			Delete(&domain.UserAnswer{}).Error; err != nil {
			return err
		}
		return tx.Create(ua).Error
	})
	if err != nil {
		return nil, err
	}
	return ua, nil
}

// ListActiveUserAnswers returns the user's active answers with Question,
// Question.Symptom and Answer preloaded, ordered by creation time ascending.
func ListActiveUserAnswers(ctx context.Context, db *gorm.DB, userID string) ([]domain.UserAnswer, error) {
	var out []domain.UserAnswer
	err := db.WithContext(ctx).
		Preload("Question").
		Preload("Question.Symptom").
		Preload("Answer").
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// ListActiveUserAnswersPage returns a page of the user's active answers with
// the same preloads and ordering as ListActiveUserAnswers.
func ListActiveUserAnswersPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.UserAnswer, error) {
	var out []domain.UserAnswer
	err := db.WithContext(ctx).
		Preload("Question").
		Preload("Question.Symptom").
		Preload("Answer").
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountUserAnswers returns the total number of active answers for userID
// (pagination support).
func CountUserAnswers(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.UserAnswer{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// CountDistinctAnswered counts how many distinct questions out of questionIDs
// the user has an active answer for. This is the "answered" side of the
// completion check.
func CountDistinctAnswered(ctx context.Context, db *gorm.DB, userID string, questionIDs []string) (int64, error) {
	if len(questionIDs) == 0 {
		return 0, nil
	}
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.UserAnswer{}).
		Distinct("question_id").
		Where("user_id = ? AND question_id IN ?", userID, questionIDs).
		Count(&total).Error
	return total, err
}

// UserAnswersStats returns aggregate metadata for a user's active answers:
// the total number of rows and the maximum UpdatedAt timestamp among them.
// Used for conditional responses (ETag generation) in the HTTP layer.
//
// Return values:
//   - count:        total active answers for userID
//   - maxUpdatedAt: pointer to the greatest UpdatedAt, or nil if no rows
//   - err:          database error, if any
func UserAnswersStats(ctx context.Context, db *gorm.DB, userID string) (count int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.UserAnswer{}).Where("user_id = ?", userID)

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}
