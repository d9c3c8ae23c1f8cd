// Package services – OnboardingService
//
// This file implements the onboarding-state read and the independent
// draft→submitted transition. Submission happens either explicitly (a user
// action, valid only while Completed+draft inside the editing window) or
// lazily: the first read that notices the window has lapsed while the
// status is still draft applies the same conditional update. Both paths go
// through repo.MarkDataSubmitted, so racing reads cannot double-apply it.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/sharoon-shahzad/go-diabetes-backend/internal/domain"
	"github.com/sharoon-shahzad/go-diabetes-backend/internal/repo"
)

// OnboardingService exposes the user's onboarding state.
type OnboardingService struct {
	DB *gorm.DB

	// now is a clock seam for tests; nil means time.Now.
	now func() time.Time
}

// OnboardingStatus is the HTTP-facing view of a user's onboarding state.
type OnboardingStatus struct {
	OnboardingCompleted   bool       `json:"onboardingCompleted"`
	OnboardingCompletedAt *time.Time `json:"onboardingCompletedAt,omitempty"`
	DataStatus            string     `json:"diseaseDataStatus"`
	DataEditingExpiresAt  *time.Time `json:"diseaseDataEditingExpiresAt,omitempty"`
}

// Status returns the user's onboarding state, applying the lazy expiry
// transition when the editing window has passed while still in draft.
func (s *OnboardingService) Status(ctx context.Context, userID string) (*OnboardingStatus, error) {
	user, err := repo.GetUser(ctx, s.DB, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if s.expiredDraft(user) {
		if _, err := repo.MarkDataSubmitted(ctx, s.DB, userID); err != nil {
			return nil, err
		}
		// Either this read applied the flip or a concurrent one did;
		// the visible state is "submitted" both ways.
		user.DataStatus = domain.DataStatusSubmitted
	}

	return &OnboardingStatus{
		OnboardingCompleted:   user.OnboardingCompleted,
		OnboardingCompletedAt: user.OnboardingCompletedAt,
		DataStatus:            user.DataStatus,
		DataEditingExpiresAt:  user.DataEditingExpiresAt,
	}, nil
}

// Submit applies the explicit draft→submitted action.
//
// Rejections:
//   - ErrOnboardingIncomplete when onboarding has not completed.
//   - ErrEditingWindowExpired when the window lapsed first (the lazy path
//     owns the flip in that case).
//   - ErrAlreadySubmitted when the status already left draft.
func (s *OnboardingService) Submit(ctx context.Context, userID string) error {
	user, err := repo.GetUser(ctx, s.DB, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if !user.OnboardingCompleted {
		return ErrOnboardingIncomplete
	}
	if user.DataStatus != domain.DataStatusDraft {
		return ErrAlreadySubmitted
	}
	if s.expiredDraft(user) {
		// Apply the lazy flip before rejecting so state stays consistent.
		if _, err := repo.MarkDataSubmitted(ctx, s.DB, userID); err != nil {
			return err
		}
		return ErrEditingWindowExpired
	}

	won, err := repo.MarkDataSubmitted(ctx, s.DB, userID)
	if err != nil {
		return err
	}
	if !won {
		// A concurrent submit or expiry beat this request to the flip.
		return ErrAlreadySubmitted
	}
	return nil
}

// expiredDraft reports whether the user sits in an expired editing window.
func (s *OnboardingService) expiredDraft(user *domain.User) bool {
	if !user.OnboardingCompleted || user.DataStatus != domain.DataStatusDraft {
		return false
	}
	if user.DataEditingExpiresAt == nil {
		return false
	}
	return s.clock().After(*user.DataEditingExpiresAt)
}

func (s *OnboardingService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now().UTC()
}

// NewOnboardingService constructs an OnboardingService.
func NewOnboardingService(db *gorm.DB) *OnboardingService {
	return &OnboardingService{DB: db}
}
