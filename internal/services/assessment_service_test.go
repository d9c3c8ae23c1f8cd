package services

import (
	"context"
	"errors"
	"testing"

	"github.com/sharoon-shahzad/go-diabetes-backend/internal/assessment"
	"github.com/sharoon-shahzad/go-diabetes-backend/internal/repo"
	"github.com/sharoon-shahzad/go-diabetes-backend/internal/scoring"
)

// stubInvoker returns a canned result or error and records the features it
// was handed.
type stubInvoker struct {
	result   scoring.Result
	err      error
	features assessment.FeatureVector
}

func (s *stubInvoker) Assess(_ context.Context, features assessment.FeatureVector) (scoring.Result, error) {
	s.features = features
	return s.result, s.err
}

func TestAssess_Success(t *testing.T) {
	db, d := newTestDB(t)
	ctx := context.Background()
	u := newTestUser(t, db)

	answers := &AnswerService{DB: db, Mailer: &recordingMailer{}}
	ids, err := repo.ActiveQuestionIDs(ctx, db, d.ID)
	if err != nil || len(ids) == 0 {
		t.Fatalf("question IDs: %v", err)
	}
	for _, qID := range ids {
		q, err := repo.GetQuestion(ctx, db, qID)
		if err != nil {
			t.Fatalf("GetQuestion: %v", err)
		}
		text := "Yes"
		if q.Text == "What is your age?" {
			text = "52"
		}
		if _, err := answers.Submit(ctx, u.ID, qID, text); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}

	inv := &stubInvoker{result: scoring.Result{"prediction": "Positive", "probability": 0.91}}
	svc := &AssessmentService{DB: db, Invoker: inv}

	out, err := svc.Assess(ctx, u.ID)
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}
	if len(out.Features) != 16 {
		t.Fatalf("features = %d keys, want 16", len(out.Features))
	}
	if out.Features["Age"] != 52 {
		t.Fatalf("Age = %v, want 52", out.Features["Age"])
	}
	if out.Features["Polyuria"] != 1 {
		t.Fatalf("Polyuria = %v, want 1", out.Features["Polyuria"])
	}
	if got := out.Result["prediction"]; got != "Positive" {
		t.Fatalf("prediction = %v, want Positive", got)
	}
	// The invoker saw the same vector the caller got back.
	if inv.features["Age"] != out.Features["Age"] {
		t.Fatalf("invoker saw Age=%v, caller got %v", inv.features["Age"], out.Features["Age"])
	}
}

func TestAssess_NoAnswersYieldsZeroVector(t *testing.T) {
	db, _ := newTestDB(t)
	u := newTestUser(t, db)

	inv := &stubInvoker{result: scoring.Result{"prediction": "Negative"}}
	svc := &AssessmentService{DB: db, Invoker: inv}

	out, err := svc.Assess(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}
	for key, v := range out.Features {
		if v != 0 {
			t.Fatalf("feature %q = %v, want 0 with no answers", key, v)
		}
	}
}

func TestAssess_InvokerFailureCarriesFeatures(t *testing.T) {
	db, _ := newTestDB(t)
	u := newTestUser(t, db)

	cause := &scoring.ProcessError{ExitCode: 1, Stderr: "ValueError: bad input"}
	svc := &AssessmentService{DB: db, Invoker: &stubInvoker{err: cause}}

	out, err := svc.Assess(context.Background(), u.ID)
	if !errors.Is(err, ErrAssessmentUnavailable) {
		t.Fatalf("err = %v, want ErrAssessmentUnavailable", err)
	}
	if out == nil || len(out.Features) != 16 {
		t.Fatalf("failed assessment must still carry the feature vector: %+v", out)
	}
	var pe *scoring.ProcessError
	if !errors.As(err, &pe) {
		t.Fatalf("typed cause lost: %v", err)
	}
	if pe.ExitCode != 1 {
		t.Fatalf("ExitCode = %d, want 1", pe.ExitCode)
	}
}
