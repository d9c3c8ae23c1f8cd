// Package services – AssessmentService
//
// This file implements the read-side risk assessment flow: load the user's
// active answers with their catalog joins, derive the feature vector, and
// invoke the external scoring computation. The path is idempotent and
// side-effect-free; it never touches the completion guard and may be called
// repeatedly.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/sharoon-shahzad/go-diabetes-backend/internal/assessment"
	"github.com/sharoon-shahzad/go-diabetes-backend/internal/repo"
	"github.com/sharoon-shahzad/go-diabetes-backend/internal/scoring"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ScoreInvoker abstracts the scoring subprocess so the service can be tested
// without spawning processes.
type ScoreInvoker interface {
	// Assess sends the feature vector to the scoring computation and
	// returns its parsed JSON result.
	Assess(ctx context.Context, features assessment.FeatureVector) (scoring.Result, error)
}

// Assessment is the outcome of one assessment request. Features is always
// populated; Result is nil when scoring failed (err reports why).
type Assessment struct {
	Features assessment.FeatureVector `json:"features"`
	Result   scoring.Result           `json:"result,omitempty"`
}

// AssessmentService wires the answer store, the feature mapper, and the
// scoring invoker into the assessment read path.
type AssessmentService struct {
	DB      *gorm.DB
	Invoker ScoreInvoker
}

// Assess computes the user's current feature vector and scores it.
//
// On scoring failure the returned Assessment still carries the computed
// features so callers can surface them alongside the
// ErrAssessmentUnavailable error; the wrapped invoker error is preserved
// for logging.
func (s *AssessmentService) Assess(ctx context.Context, userID string) (*Assessment, error) {
	tr := otel.Tracer("services/AssessmentService")
	ctx, span := tr.Start(ctx, "Assess",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	answers, err := repo.ListActiveUserAnswers(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("answers.count", len(answers)))

	out := &Assessment{Features: assessment.MapFeatures(answers)}

	result, err := s.Invoker.Assess(ctx, out.Features)
	if err != nil {
		return out, joinAssessmentErr(err)
	}
	out.Result = result
	return out, nil
}

// joinAssessmentErr wraps an invoker failure so callers can match the
// sentinel with errors.Is while keeping the typed cause for diagnostics.
func joinAssessmentErr(cause error) error {
	return &assessmentError{cause: cause}
}

type assessmentError struct {
	cause error
}

func (e *assessmentError) Error() string { return ErrAssessmentUnavailable.Error() + ": " + e.cause.Error() }

// Is matches ErrAssessmentUnavailable.
func (e *assessmentError) Is(target error) bool { return target == ErrAssessmentUnavailable }

// Unwrap exposes the typed invoker error (LaunchError, ProcessError, ...).
func (e *assessmentError) Unwrap() error { return e.cause }
