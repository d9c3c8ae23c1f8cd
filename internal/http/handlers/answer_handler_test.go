package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sharoon-shahzad/go-diabetes-backend/internal/domain"
	"github.com/sharoon-shahzad/go-diabetes-backend/internal/services"
)

//
// Fakes
//

type fakeAnswerSvc struct {
	submitRes *services.SubmitResult
	submitErr error
	items     []domain.UserAnswer
	total     int64
	listErr   error

	gotUserID, gotQuestionID, gotAnswer string
}

func (f *fakeAnswerSvc) Submit(_ context.Context, userID, questionID, answerText string) (*services.SubmitResult, error) {
	f.gotUserID, f.gotQuestionID, f.gotAnswer = userID, questionID, answerText
	return f.submitRes, f.submitErr
}

func (f *fakeAnswerSvc) ListPage(_ context.Context, _ string, _, _ int) ([]domain.UserAnswer, int64, error) {
	return f.items, f.total, f.listErr
}

type fakeAssessmentSvc struct {
	out *services.Assessment
	err error
}

func (f *fakeAssessmentSvc) Assess(context.Context, string) (*services.Assessment, error) {
	return f.out, f.err
}

type fakeOnboardingSvc struct {
	status    *services.OnboardingStatus
	statusErr error
	submitErr error
}

func (f *fakeOnboardingSvc) Status(context.Context, string) (*services.OnboardingStatus, error) {
	return f.status, f.statusErr
}

func (f *fakeOnboardingSvc) Submit(context.Context, string) error { return f.submitErr }

type fakeCatalogSvc struct {
	groups []services.SymptomQuestions
	err    error
}

func (f *fakeCatalogSvc) Questions(context.Context, string) ([]services.SymptomQuestions, error) {
	return f.groups, f.err
}

func newTestRouter(h *Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/answers", h.SubmitAnswer)
	r.GET("/answers", h.ListAnswers)
	r.GET("/assessment", h.GetAssessment)
	r.GET("/onboarding/status", h.OnboardingStatus)
	r.POST("/onboarding/submit", h.SubmitOnboarding)
	r.GET("/catalog/diseases/:id/questions", h.ListDiseaseQuestions)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "user-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

//
// SubmitAnswer
//

func TestSubmitAnswer_OK(t *testing.T) {
	qID := uuid.NewString()
	svc := &fakeAnswerSvc{submitRes: &services.SubmitResult{
		UserAnswer: &domain.UserAnswer{ID: uuid.NewString(), QuestionID: qID},
		Answered:   5,
		Total:      16,
	}}
	r := newTestRouter(New(svc, nil, nil, nil))

	w := doJSON(t, r, http.MethodPost, "/answers", `{"question_id":"`+qID+`","answer":"Yes"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp SubmitAnswerResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Answered != 5 || resp.Total != 16 || resp.CompletedNow {
		t.Fatalf("unexpected body: %+v", resp)
	}
	if svc.gotUserID != "user-1" || svc.gotQuestionID != qID || svc.gotAnswer != "Yes" {
		t.Fatalf("service saw (%q, %q, %q)", svc.gotUserID, svc.gotQuestionID, svc.gotAnswer)
	}
}

func TestSubmitAnswer_BadRequests(t *testing.T) {
	r := newTestRouter(New(&fakeAnswerSvc{}, nil, nil, nil))

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"missing fields", `{}`},
		{"non-uuid question", `{"question_id":"abc","answer":"Yes"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/answers", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %s)", w.Code, w.Body.String())
			}
			var er ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if er.Code != ErrCodeBadRequest {
				t.Fatalf("code = %q, want %q", er.Code, ErrCodeBadRequest)
			}
		})
	}
}

func TestSubmitAnswer_ServiceErrors(t *testing.T) {
	qID := uuid.NewString()
	cases := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"empty answer", services.ErrEmptyAnswer, http.StatusBadRequest},
		{"too long", services.ErrAnswerTooLong, http.StatusBadRequest},
		{"question missing", services.ErrQuestionNotFound, http.StatusNotFound},
		{"user missing", services.ErrUserNotFound, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(New(&fakeAnswerSvc{submitErr: tc.err}, nil, nil, nil))
			w := doJSON(t, r, http.MethodPost, "/answers", `{"question_id":"`+qID+`","answer":"x"}`)
			if w.Code != tc.wantCode {
				t.Fatalf("status = %d, want %d", w.Code, tc.wantCode)
			}
		})
	}
}

//
// ListAnswers
//

func TestListAnswers_Pagination(t *testing.T) {
	items := []domain.UserAnswer{{ID: uuid.NewString()}, {ID: uuid.NewString()}}
	svc := &fakeAnswerSvc{items: items, total: 5}
	r := newTestRouter(New(svc, nil, nil, nil))

	w := doJSON(t, r, http.MethodGet, "/answers?page=2&page_size=2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp ListAnswersResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Answers) != 2 {
		t.Fatalf("answers = %d, want 2", len(resp.Answers))
	}
	p := resp.Pagination
	if p.Page != 2 || p.PageSize != 2 || p.Total != 5 || p.TotalPages != 3 || !p.HasNext {
		t.Fatalf("pagination = %+v", p)
	}
}

func TestClampPagination(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		query        string
		wantPage     int
		wantPageSize int
	}{
		{"", 1, 20},
		{"?page=0&page_size=0", 1, 1},
		{"?page=3&page_size=500", 3, 100},
		{"?page=abc&page_size=xyz", 1, 20},
	}
	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/answers"+tc.query, nil)
		page, pageSize := clampPagination(c)
		if page != tc.wantPage || pageSize != tc.wantPageSize {
			t.Errorf("clampPagination(%q) = (%d, %d), want (%d, %d)",
				tc.query, page, pageSize, tc.wantPage, tc.wantPageSize)
		}
	}
}

//
// Assessment
//

func TestGetAssessment_OK(t *testing.T) {
	out := &services.Assessment{
		Features: map[string]float64{"Age": 52, "Polyuria": 1},
		Result:   map[string]any{"prediction": "Positive"},
	}
	r := newTestRouter(New(nil, &fakeAssessmentSvc{out: out}, nil, nil))

	w := doJSON(t, r, http.MethodGet, "/assessment", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp AssessmentResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Features["Age"] != 52 {
		t.Fatalf("Age = %v", resp.Features["Age"])
	}
	if resp.Result["prediction"] != "Positive" {
		t.Fatalf("prediction = %v", resp.Result["prediction"])
	}
}

func TestGetAssessment_Unavailable(t *testing.T) {
	out := &services.Assessment{Features: map[string]float64{"Age": 40}}
	svc := &fakeAssessmentSvc{out: out, err: services.ErrAssessmentUnavailable}
	r := newTestRouter(New(nil, svc, nil, nil))

	w := doJSON(t, r, http.MethodGet, "/assessment", "")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["code"] != ErrCodeAssessmentUnavailable {
		t.Fatalf("code = %v", body["code"])
	}
	feats, _ := body["features"].(map[string]any)
	if feats["Age"] != float64(40) {
		t.Fatalf("features missing from degraded response: %v", body)
	}
}

//
// Onboarding
//

func TestOnboardingStatus_OK(t *testing.T) {
	at := time.Now().UTC()
	st := &services.OnboardingStatus{
		OnboardingCompleted:   true,
		OnboardingCompletedAt: &at,
		DataStatus:            domain.DataStatusDraft,
	}
	r := newTestRouter(New(nil, nil, &fakeOnboardingSvc{status: st}, nil))

	w := doJSON(t, r, http.MethodGet, "/onboarding/status", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp services.OnboardingStatus
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.OnboardingCompleted || resp.DataStatus != domain.DataStatusDraft {
		t.Fatalf("body = %+v", resp)
	}
}

func TestSubmitOnboarding_Statuses(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"success", nil, http.StatusNoContent, ""},
		{"user missing", services.ErrUserNotFound, http.StatusNotFound, ErrCodeNotFound},
		{"incomplete", services.ErrOnboardingIncomplete, http.StatusConflict, ErrCodeOnboardingIncomplete},
		{"already submitted", services.ErrAlreadySubmitted, http.StatusConflict, ErrCodeAlreadySubmitted},
		{"window expired", services.ErrEditingWindowExpired, http.StatusConflict, ErrCodeEditingWindowExpired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(New(nil, nil, &fakeOnboardingSvc{submitErr: tc.err}, nil))
			w := doJSON(t, r, http.MethodPost, "/onboarding/submit", "")
			if w.Code != tc.wantCode {
				t.Fatalf("status = %d, want %d", w.Code, tc.wantCode)
			}
			if tc.wantBody != "" {
				var er ErrorResponse
				if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
					t.Fatalf("unmarshal: %v", err)
				}
				if er.Code != tc.wantBody {
					t.Fatalf("code = %q, want %q", er.Code, tc.wantBody)
				}
			}
		})
	}
}

//
// Catalog
//

func TestListDiseaseQuestions(t *testing.T) {
	groups := []services.SymptomQuestions{
		{
			Symptom:   domain.Symptom{ID: uuid.NewString(), Name: "Vision Changes"},
			Questions: []domain.Question{{ID: uuid.NewString(), Text: "Do you experience blurred vision?"}},
		},
	}
	r := newTestRouter(New(nil, nil, nil, &fakeCatalogSvc{groups: groups}))

	w := doJSON(t, r, http.MethodGet, "/catalog/diseases/"+uuid.NewString()+"/questions", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp DiseaseQuestionsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Symptoms) != 1 || resp.Symptoms[0].Symptom.Name != "Vision Changes" {
		t.Fatalf("body = %+v", resp)
	}
}

func TestListDiseaseQuestions_Errors(t *testing.T) {
	t.Run("bad id", func(t *testing.T) {
		r := newTestRouter(New(nil, nil, nil, &fakeCatalogSvc{}))
		w := doJSON(t, r, http.MethodGet, "/catalog/diseases/not-a-uuid/questions", "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
	})
	t.Run("not found", func(t *testing.T) {
		r := newTestRouter(New(nil, nil, nil, &fakeCatalogSvc{err: services.ErrDiseaseNotFound}))
		w := doJSON(t, r, http.MethodGet, "/catalog/diseases/"+uuid.NewString()+"/questions", "")
		if w.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", w.Code)
		}
	})
}

//
// userID helper
//

func TestUserID_Fallbacks(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if got := userID(c); got != "demo-user" {
		t.Fatalf("default = %q, want demo-user", got)
	}

	c.Request.Header.Set("X-User-ID", " header-user ")
	if got := userID(c); got != "header-user" {
		t.Fatalf("header = %q, want header-user", got)
	}

	c.Set("userID", "ctx-user")
	if got := userID(c); got != "ctx-user" {
		t.Fatalf("context = %q, want ctx-user", got)
	}
}
