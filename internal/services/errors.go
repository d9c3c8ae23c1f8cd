// Package services defines the business logic for answer submission, the
// onboarding completion guard, and risk assessment. This file centralizes
// common service-level error values so that they can be consistently
// returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer;
// translation into user-facing messages or HTTP status codes should be
// performed at the handler layer.
package services

import "errors"

var (
	// ErrQuestionNotFound indicates the submitted question does not exist
	// or has been retired from the catalog.
	ErrQuestionNotFound = errors.New("question not found")

	// ErrUserNotFound indicates the acting user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrDiseaseNotFound indicates the requested disease does not exist.
	ErrDiseaseNotFound = errors.New("disease not found")

	// ErrEmptyAnswer is returned when an answer submission carries no text.
	ErrEmptyAnswer = errors.New("answer is empty")

	// ErrAnswerTooLong is returned when an answer exceeds the maximum
	// configured length limit.
	ErrAnswerTooLong = errors.New("answer too long")

	// ErrOnboardingIncomplete is returned when an action requires completed
	// onboarding (e.g. submitting the data set) before it has happened.
	ErrOnboardingIncomplete = errors.New("onboarding not completed")

	// ErrAlreadySubmitted is returned when the data set is no longer in
	// draft and cannot be submitted again.
	ErrAlreadySubmitted = errors.New("data already submitted")

	// ErrEditingWindowExpired is returned when an explicit submit arrives
	// after the editing window has lapsed (the lazy expiry check has either
	// run or will run on the next read).
	ErrEditingWindowExpired = errors.New("editing window expired")

	// ErrAssessmentUnavailable wraps scoring-invocation failures: the
	// feature vector was computed but no risk result could be produced.
	ErrAssessmentUnavailable = errors.New("assessment unavailable")
)
