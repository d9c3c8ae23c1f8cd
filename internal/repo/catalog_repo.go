// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides read-side repository functions for the
// symptom catalog (diseases, symptoms, questions) and the deduplicated
// answer values.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a record is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//
// Soft deletion: all models use gorm.DeletedAt, so GORM's default scope
// already excludes soft-deleted rows from every query below. Counts over
// "active" rows therefore need no extra predicate.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sharoon-shahzad/go-diabetes-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for consistency across the service
// layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// GetDisease fetches a disease by ID, or ErrNotFound.
func GetDisease(ctx context.Context, db *gorm.DB, id string) (*domain.Disease, error) {
	var d domain.Disease
	if err := db.WithContext(ctx).Where("id = ?", id).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// GetDiseaseByName fetches a disease by display name, or ErrNotFound.
func GetDiseaseByName(ctx context.Context, db *gorm.DB, name string) (*domain.Disease, error) {
	var d domain.Disease
	if err := db.WithContext(ctx).Where("name = ?", name).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// ListActiveSymptoms returns the active symptoms of a disease, ordered by name.
func ListActiveSymptoms(ctx context.Context, db *gorm.DB, diseaseID string) ([]domain.Symptom, error) {
	var out []domain.Symptom
	err := db.WithContext(ctx).
		Where("disease_id = ?", diseaseID).
		Order("name asc").
		Find(&out).Error
	return out, err
}

// ListActiveQuestions returns the active questions under the given symptoms,
// ordered deterministically (created_at ASC, id ASC) so clients render them
// in a stable order.
func ListActiveQuestions(ctx context.Context, db *gorm.DB, symptomIDs []string) ([]domain.Question, error) {
	if len(symptomIDs) == 0 {
		return []domain.Question{}, nil
	}
	var out []domain.Question
	err := db.WithContext(ctx).
		Where("symptom_id IN ?", symptomIDs).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// ActiveQuestionIDs returns the IDs of all active questions of a disease,
// resolved through its active symptoms.
func ActiveQuestionIDs(ctx context.Context, db *gorm.DB, diseaseID string) ([]string, error) {
	var ids []string
	err := db.WithContext(ctx).
		Model(&domain.Question{}).
		Where("symptom_id IN (?)",
			db.WithContext(ctx).Model(&domain.Symptom{}).Select("id").Where("disease_id = ?", diseaseID),
		).
		Pluck("id", &ids).Error
	return ids, err
}

// CountActiveQuestions counts the active questions of a disease: active
// symptoms are located first, then their active questions are counted.
func CountActiveQuestions(ctx context.Context, db *gorm.DB, diseaseID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Question{}).
		Where("symptom_id IN (?)",
			db.WithContext(ctx).Model(&domain.Symptom{}).Select("id").Where("disease_id = ?", diseaseID),
		).
		Count(&total).Error
	return total, err
}

// GetQuestion fetches an active question by ID with its symptom preloaded,
// or ErrNotFound.
func GetQuestion(ctx context.Context, db *gorm.DB, id string) (*domain.Question, error) {
	var q domain.Question
	err := db.WithContext(ctx).
		Preload("Symptom").
		Where("id = ?", id).
		First(&q).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// DiseaseForQuestion resolves the disease a question belongs to by walking
// question → symptom → disease.
func DiseaseForQuestion(ctx context.Context, db *gorm.DB, questionID string) (*domain.Disease, error) {
	q, err := GetQuestion(ctx, db, questionID)
	if err != nil {
		return nil, err
	}
	return GetDisease(ctx, db, q.Symptom.DiseaseID)
}

// GetOrCreateAnswer returns the Answer row for the exact (trimmed) text,
// creating it when absent. Concurrent creators of the same text race on the
// unique index; the loser re-reads the winner's row.
func GetOrCreateAnswer(ctx context.Context, db *gorm.DB, text string) (*domain.Answer, error) {
	text = strings.TrimSpace(text)

	var a domain.Answer
	err := db.WithContext(ctx).Where("text = ?", text).First(&a).Error
	if err == nil {
		return &a, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	a = domain.Answer{
		ID:        uuid.NewString(),
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(&a).Error; err != nil {
		if isUniqueViolation(err) {
			// Lost the create race; the row exists now.
			var again domain.Answer
			if gerr := db.WithContext(ctx).Where("text = ?", text).First(&again).Error; gerr == nil {
				return &again, nil
			}
		}
		return nil, err
	}
	return &a, nil
}

// isUniqueViolation reports whether err is a unique-constraint failure.
// glebarez/sqlite often returns plain-text errors for UNIQUE violations, so
// the string is inspected as a fallback to gorm.ErrDuplicatedKey.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique") ||
		strings.Contains(low, "duplicate key value")
}
