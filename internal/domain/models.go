// Package domain defines the persistence models for the symptom catalog
// (diseases, symptoms, questions, answers), the per-user answer records, and
// the user's onboarding state. These types are mapped with GORM and form the
// core data layer of the application.
package domain

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Question input kinds. The set mirrors what the catalog seeder and the
// mobile client understand; the DB constraint keeps rows inside it.
const (
	QuestionKindRadio    = "radio"
	QuestionKindCheckbox = "checkbox"
	QuestionKindNumber   = "number"
	QuestionKindText     = "text"
	QuestionKindDropdown = "dropdown"
	QuestionKindTextarea = "textarea"
	QuestionKindDate     = "date"
	QuestionKindRange    = "range"
)

// User data-status values for the post-completion editing window.
const (
	DataStatusDraft     = "draft"
	DataStatusSubmitted = "submitted"
)

// Disease is the root of the catalog hierarchy. Symptoms hang off a disease,
// questions hang off symptoms.
type Disease struct {
	ID          string         `json:"id"          gorm:"type:char(36);primaryKey"`
	Name        string         `json:"name"        gorm:"type:varchar(255);not null;uniqueIndex"`
	Description string         `json:"description" gorm:"type:text"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-"           gorm:"index"`
}

// TableName returns the database table name for Disease.
func (Disease) TableName() string { return "diseases" }

// Symptom is a named symptom group under a disease (e.g. "Polyuria").
// Soft-deleted symptoms drop out of question counts and feature mapping.
type Symptom struct {
	ID          string         `json:"id"          gorm:"type:char(36);primaryKey"`
	DiseaseID   string         `json:"disease_id"  gorm:"type:char(36);not null;index:idx_disease_symptoms"`
	Name        string         `json:"name"        gorm:"type:varchar(255);not null"`
	Description string         `json:"description" gorm:"type:text"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-"           gorm:"index"`

	Disease Disease `json:"-" gorm:"foreignKey:DiseaseID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Symptom.
func (Symptom) TableName() string { return "symptoms" }

// Question is one prompt shown to the user during onboarding.
//
// Fields:
//   - Text: the free-text prompt.
//   - Kind: input kind from the closed set above (radio, number, ...).
//   - Options: ordered allowed option strings for choice kinds, stored as a
//     JSON array column; empty for free inputs.
//   - SymptomID: the symptom this question asks about; drives feature mapping.
//   - DeletedAt: soft-delete marker; retired questions stay for history but
//     leave the active counts.
type Question struct {
	ID        string         `json:"id"         gorm:"type:char(36);primaryKey"`
	SymptomID string         `json:"symptom_id" gorm:"type:char(36);not null;index:idx_symptom_questions"`
	Text      string         `json:"text"       gorm:"type:text;not null"`
	Kind      string         `json:"kind"       gorm:"type:varchar(16);not null;check:kind IN ('radio','checkbox','number','text','dropdown','textarea','date','range')"`
	Options   datatypes.JSON `json:"options,omitempty" gorm:"type:json"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"          gorm:"index"`

	Symptom Symptom `json:"symptom,omitempty" gorm:"foreignKey:SymptomID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Question.
func (Question) TableName() string { return "questions" }

// Answer is a deduplicated literal answer value. Looking up-or-creating by
// exact text match is the canonical way to obtain an Answer identity, so the
// text column carries a unique index.
type Answer struct {
	ID        string         `json:"id"   gorm:"type:char(36);primaryKey"`
	Text      string         `json:"text" gorm:"type:varchar(512);not null;uniqueIndex:ux_answer_text"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"    gorm:"index"`
}

// TableName returns the database table name for Answer.
func (Answer) TableName() string { return "answers" }

// UserAnswer links a user to the answer they gave for one question at one
// point in time. At most one row per (user, question) is active; re-answering
// soft-deletes the previous row and inserts a fresh one, so history is kept
// rather than overwritten.
type UserAnswer struct {
	ID         string         `json:"id"          gorm:"type:char(36);primaryKey"`
	UserID     string         `json:"user_id"     gorm:"type:char(36);not null;index:idx_user_answers,priority:1"`
	QuestionID string         `json:"question_id" gorm:"type:char(36);not null;index:idx_user_answers,priority:2"`
	AnswerID   string         `json:"answer_id"   gorm:"type:char(36);not null"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-"           gorm:"index"`

	Question Question `json:"question,omitempty" gorm:"foreignKey:QuestionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Answer   Answer   `json:"answer,omitempty"   gorm:"foreignKey:AnswerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for UserAnswer.
func (UserAnswer) TableName() string { return "users_answers" }

// User carries the onboarding state machine alongside basic identity.
//
// Invariants:
//   - OnboardingCompleted flips false→true exactly once, and only through
//     repo.MarkOnboardingCompleted (a single conditional UPDATE).
//   - DataStatus moves draft→submitted either by explicit submit or lazily
//     when a read notices DataEditingExpiresAt has passed.
type User struct {
	ID                    string         `json:"id"       gorm:"type:char(36);primaryKey"`
	Email                 string         `json:"email"    gorm:"type:varchar(255);not null;uniqueIndex"`
	FullName              string         `json:"full_name" gorm:"type:varchar(255);not null"`
	OnboardingCompleted   bool           `json:"onboardingCompleted" gorm:"not null;default:false"`
	OnboardingCompletedAt *time.Time     `json:"onboardingCompletedAt,omitempty"`
	DataStatus            string         `json:"diseaseDataStatus" gorm:"type:varchar(16);not null;default:'draft';check:data_status IN ('draft','submitted')"`
	DataEditingExpiresAt  *time.Time     `json:"diseaseDataEditingExpiresAt,omitempty"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
	DeletedAt             gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }
