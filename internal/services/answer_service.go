// Package services – AnswerService
//
// This file implements AnswerService, the application-level component that
// owns answer submission and the onboarding completion guard. It validates
// input, persists the UserAnswer (soft-deleting any prior answer to the same
// question), recomputes the answered/total counts for the question's
// disease, and, when the set just became complete, attempts the one-time
// completion transition.
//
// Concurrency: the final answers of a questionnaire are routinely submitted
// by racing requests (double taps, retries, parallel devices), and instances
// of this process may run side by side, so no in-process lock can arbitrate
// the transition. The only synchronization point is the conditional UPDATE
// in repo.MarkOnboardingCompleted; this service treats RowsAffected==0 as
// the normal "someone else completed it" outcome.
//
// The completion report is dispatched on a background goroutine after the
// transition is won. Dispatch re-verifies its right to send through the
// notification claim (a unique INSERT), so even if two processes somehow
// both believed they won, only one send can happen. Dispatch failures are
// logged and counted, never retried and never surfaced to the submitter.
package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/sharoon-shahzad/go-diabetes-backend/internal/domain"
	"github.com/sharoon-shahzad/go-diabetes-backend/internal/notify"
	"github.com/sharoon-shahzad/go-diabetes-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DefaultEditingWindow is how long submitted answers stay editable after
// completion before they are auto-submitted.
const DefaultEditingWindow = 7 * 24 * time.Hour

// dispatchTimeout bounds the background notification dispatch, which runs
// detached from any request context.
const dispatchTimeout = 30 * time.Second

// AnswerService coordinates answer persistence and the completion guard.
type AnswerService struct {
	DB     *gorm.DB
	Mailer notify.Mailer

	// EditingWindow is the post-completion editing duration; zero means
	// DefaultEditingWindow.
	EditingWindow time.Duration

	// MaxAnswerRunes caps stored answer text by rune length (0 = no cap).
	MaxAnswerRunes int

	// OnDispatched, when set, is called after the background notification
	// dispatch finishes, with nil on a successful or skipped send. Test seam.
	OnDispatched func(error)
}

// SubmitResult reports what a submission did.
type SubmitResult struct {
	// UserAnswer is the freshly stored active answer row.
	UserAnswer *domain.UserAnswer
	// Answered and Total are the completion counts for the question's
	// disease after this submission.
	Answered int64
	Total    int64
	// CompletedNow is true only for the single request that won the
	// completion transition.
	CompletedNow bool
}

// Submit records userID's answer to questionID and runs the completion check.
//
// The returned error is nil as soon as the answer is durably stored and the
// transition attempt (if any) has resolved; notification assembly and
// dispatch happen asynchronously and cannot fail this call.
func (s *AnswerService) Submit(ctx context.Context, userID, questionID, answerText string) (*SubmitResult, error) {
	tr := otel.Tracer("services/AnswerService")
	ctx, span := tr.Start(ctx, "Submit",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.String("question.id", questionID),
		),
	)
	defer span.End()

	answerText = strings.TrimSpace(answerText)
	if answerText == "" {
		return nil, ErrEmptyAnswer
	}
	if s.MaxAnswerRunes > 0 && utf8.RuneCountInString(answerText) > s.MaxAnswerRunes {
		return nil, ErrAnswerTooLong
	}

	question, err := repo.GetQuestion(ctx, s.DB, questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}

	user, err := repo.GetUser(ctx, s.DB, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	answer, err := repo.GetOrCreateAnswer(ctx, s.DB, answerText)
	if err != nil {
		return nil, err
	}

	ua, err := repo.UpsertUserAnswer(ctx, s.DB, userID, questionID, answer.ID)
	if err != nil {
		return nil, err
	}

	res := &SubmitResult{UserAnswer: ua}

	disease, err := repo.GetDisease(ctx, s.DB, question.Symptom.DiseaseID)
	if err != nil {
		// The answer is stored; a broken catalog link only disables the
		// completion check for this request.
		log.Error().Err(err).Str("question_id", questionID).Msg("resolve disease for completion check")
		return res, nil
	}

	questionIDs, err := repo.ActiveQuestionIDs(ctx, s.DB, disease.ID)
	if err != nil {
		log.Error().Err(err).Str("disease_id", disease.ID).Msg("load question set for completion check")
		return res, nil
	}
	res.Total = int64(len(questionIDs))

	res.Answered, err = repo.CountDistinctAnswered(ctx, s.DB, userID, questionIDs)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("count answered questions")
		return res, nil
	}

	if res.Total == 0 || res.Answered < res.Total {
		return res, nil
	}

	won, err := repo.MarkOnboardingCompleted(ctx, s.DB, userID, time.Now().UTC(), s.editingWindow())
	if err != nil {
		// A genuine persistence fault, distinct from losing the race.
		completionAttempts.WithLabelValues("error").Inc()
		log.Error().Err(err).Str("user_id", userID).Msg("completion transition failed")
		return res, nil
	}
	if !won {
		// Another request already completed this user. Expected, not ours to act on.
		completionAttempts.WithLabelValues("lost").Inc()
		return res, nil
	}

	completionAttempts.WithLabelValues("won").Inc()
	res.CompletedNow = true
	span.SetAttributes(attribute.Bool("onboarding.completed_now", true))

	go s.dispatchCompletionReport(user, disease)

	return res, nil
}

// ListPage returns a page of the user's active answers and the total count.
func (s *AnswerService) ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.UserAnswer, int64, error) {
	total, err := repo.CountUserAnswers(ctx, s.DB, userID)
	if err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * pageSize
	items, err := repo.ListActiveUserAnswersPage(ctx, s.DB, userID, offset, pageSize)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// editingWindow returns the configured window or the default.
func (s *AnswerService) editingWindow() time.Duration {
	if s.EditingWindow > 0 {
		return s.EditingWindow
	}
	return DefaultEditingWindow
}

// dispatchCompletionReport assembles and sends the completion report for the
// transition winner. It runs detached from the submitting request: by the
// time it executes, the HTTP response may already be on the wire.
//
// The notification claim is consulted immediately before sending; losing it
// is a legitimate no-op, not an error. Send failures are logged and counted
// but never retried.
func (s *AnswerService) dispatchCompletionReport(user *domain.User, disease *domain.Disease) {
	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()

	err := s.sendCompletionReport(ctx, user, disease)
	if err != nil {
		notifications.WithLabelValues("failed").Inc()
		log.Error().Err(err).
			Str("user_id", user.ID).
			Str("disease", disease.Name).
			Msg("completion report dispatch failed")
	}
	if s.OnDispatched != nil {
		s.OnDispatched(err)
	}
}

// sendCompletionReport claims the notification, groups the user's answers by
// symptom, and hands the report to the mailer.
func (s *AnswerService) sendCompletionReport(ctx context.Context, user *domain.User, disease *domain.Disease) error {
	if _, err := repo.ClaimNotification(ctx, s.DB, user.ID, domain.NotificationKindOnboardingComplete, user.Email); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			notifications.WithLabelValues("skipped").Inc()
			log.Debug().Str("user_id", user.ID).Msg("completion report already claimed")
			return nil
		}
		return err
	}

	answers, err := repo.ListActiveUserAnswers(ctx, s.DB, user.ID)
	if err != nil {
		return err
	}

	grouped := GroupAnswersBySymptom(answers)
	if err := s.Mailer.SendCompletionReport(ctx, user.Email, user.FullName, disease.Name, grouped); err != nil {
		return err
	}

	notifications.WithLabelValues("sent").Inc()
	log.Info().
		Str("user_id", user.ID).
		Str("disease", disease.Name).
		Int("symptom_groups", len(grouped)).
		Msg("completion report sent")
	return nil
}

// GroupAnswersBySymptom arranges active answers into the report shape: a
// mapping from symptom display name to the ordered question/answer pairs
// under it. Input order (creation time) is preserved within each group.
func GroupAnswersBySymptom(answers []domain.UserAnswer) map[string][]notify.QA {
	grouped := make(map[string][]notify.QA)
	for _, ua := range answers {
		name := ua.Question.Symptom.Name
		grouped[name] = append(grouped[name], notify.QA{
			Question: ua.Question.Text,
			Answer:   ua.Answer.Text,
		})
	}
	return grouped
}
