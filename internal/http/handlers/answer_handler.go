// Answer HTTP handlers.
//
// This file exposes REST endpoints for answer submission and retrieval:
//   - POST /answers   (submit or replace an answer to a question)
//   - GET  /answers   (list the caller's active answers, paginated, ETag support)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses (including conditional responses).
// Completion side effects (the one-time onboarding transition and the report
// e-mail) live entirely in the service layer; the handler only reflects the
// outcome in the response body.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sharoon-shahzad/go-diabetes-backend/internal/domain"
	"github.com/sharoon-shahzad/go-diabetes-backend/internal/repo"
	"github.com/sharoon-shahzad/go-diabetes-backend/internal/services"
	"github.com/sharoon-shahzad/go-diabetes-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// AnswerService defines answer submission and listing consumed by HTTP
// handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type AnswerService interface {
	// Submit stores userID's answer to questionID and runs the completion check.
	Submit(ctx context.Context, userID, questionID, answerText string) (*services.SubmitResult, error)
	// ListPage returns a page of the user's active answers and the total count.
	ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.UserAnswer, int64, error)
}

// AssessmentService produces the risk assessment for a user's answers.
type AssessmentService interface {
	// Assess maps the user's answers to features and invokes the scorer.
	Assess(ctx context.Context, userID string) (*services.Assessment, error)
}

// OnboardingService exposes the user's onboarding and data-set state.
type OnboardingService interface {
	// Status returns the current onboarding state, applying lazy expiry.
	Status(ctx context.Context, userID string) (*services.OnboardingStatus, error)
	// Submit applies the explicit draft-to-submitted transition.
	Submit(ctx context.Context, userID string) error
}

// CatalogService serves the read-only symptom/question catalog.
type CatalogService interface {
	// Questions returns a disease's active symptoms with their questions.
	Questions(ctx context.Context, diseaseID string) ([]services.SymptomQuestions, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for answers, assessment, onboarding, and
// the catalog. It depends on abstract service interfaces to keep transport
// concerns separate from business logic.
type Handlers struct {
	answerSvc     AnswerService
	assessmentSvc AssessmentService
	onboardingSvc OnboardingService
	catalogSvc    CatalogService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(answerSvc AnswerService, assessmentSvc AssessmentService, onboardingSvc OnboardingService, catalogSvc CatalogService) *Handlers {
	return &Handlers{
		answerSvc:     answerSvc,
		assessmentSvc: assessmentSvc,
		onboardingSvc: onboardingSvc,
		catalogSvc:    catalogSvc,
	}
}

// userID extracts the authenticated user id from Gin context (set by upstream
// middleware). If absent, it falls back to "X-User-ID" header (tests use it),
// and finally to "demo-user". It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "demo-user"
}

//
// DTOs
//

// SubmitAnswerRequest is the JSON payload for answering a question.
type SubmitAnswerRequest struct {
	// QuestionID identifies the catalog question being answered.
	QuestionID string `json:"question_id" binding:"required" example:"141add05-4415-4938-b5a1-17e0d3171aff"`
	// Answer is the literal answer text (option label or free text).
	Answer string `json:"answer" binding:"required,min=1" example:"Yes"`
}

// SubmitAnswerResponse reports the stored answer and the completion counts
// after this submission.
type SubmitAnswerResponse struct {
	UserAnswer *domain.UserAnswer `json:"user_answer"`
	// Answered and Total are the distinct-answered and active-question counts
	// for the question's disease.
	Answered int64 `json:"answered"`
	Total    int64 `json:"total"`
	// CompletedNow is true only on the request that completed onboarding.
	CompletedNow bool `json:"completedNow"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListAnswersResponse wraps a page of the user's answers and pagination
// information.
type ListAnswersResponse struct {
	Answers    []domain.UserAnswer `json:"answers"`
	Pagination Pagination          `json:"pagination"`
}

//
// Helpers
//

// clampPagination reads the page and page_size query params, bounded to the
// shared pagination limits.
func clampPagination(c *gin.Context) (page, pageSize int) {
	return utils.ClampPage(c.Query("page"), c.Query("page_size"))
}

//
// Handlers
//

// SubmitAnswer godoc
// @ID          submitAnswer
// @Summary     Answer a question
// @Description Stores the caller's answer to a catalog question, replacing any
// @Description previous answer to the same question. When the submission makes
// @Description the question set complete, the response carries completedNow=true.
// @Tags        Answers
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  true  "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.SubmitAnswerRequest  true  "Answer payload"
//
// @Success     200  {object}  handlers.SubmitAnswerResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Question or user not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /answers [post]
func (h *Handlers) SubmitAnswer(c *gin.Context) {
	var req SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "question_id and answer required")
		return
	}
	if _, err := uuid.Parse(req.QuestionID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "question_id must be a UUID")
		return
	}

	res, err := h.answerSvc.Submit(c.Request.Context(), userID(c), req.QuestionID, req.Answer)
	if err != nil {
		switch err {
		case services.ErrEmptyAnswer:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "answer required")
		case services.ErrAnswerTooLong:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "answer too long")
		case services.ErrQuestionNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "question not found")
		case services.ErrUserNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeAnswerFailed, err.Error())
		}
		return
	}

	ok(c, http.StatusOK, SubmitAnswerResponse{
		UserAnswer:   res.UserAnswer,
		Answered:     res.Answered,
		Total:        res.Total,
		CompletedNow: res.CompletedNow,
	})
}

// ListAnswers godoc
// @ID          listAnswers
// @Summary     List own answers (paginated)
// @Description Returns a page of the caller's active answers with question and
// @Description answer text preloaded. Supports weak ETag via If-None-Match and
// @Description may return 304.
// @Tags        Answers
// @Produce     json
//
// @Param       X-User-ID      header  string  true  "User ID (demo header)"       example(user123)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
// @Param       page           query   int     false "Page number"                  minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"               minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListAnswersResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /answers [get]
func (h *Handlers) ListAnswers(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	var db *gorm.DB
	if svc, ok := h.answerSvc.(*services.AnswerService); ok {
		db = svc.DB
	}
	if db != nil {
		count, maxTS, err := repo.UserAnswersStats(ctx, db, uid)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"answers:%s:%d:%d"`, uid, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, total, err := h.answerSvc.ListPage(ctx, uid, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListAnswersResponse{
		Answers: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}
