// Assessment HTTP handler.
//
// Exposes GET /assessment: maps the caller's stored answers to the model's
// feature vector and returns the scorer's verdict. Read-only and idempotent;
// a scoring outage degrades to 502 with the computed features still included
// so clients can show what would have been scored.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sharoon-shahzad/go-diabetes-backend/internal/http/middleware"
	"github.com/sharoon-shahzad/go-diabetes-backend/internal/services"
)

// AssessmentResponse is the JSON envelope for an assessment result. Result
// holds the scorer's raw JSON object and is omitted when scoring failed.
type AssessmentResponse struct {
	Features map[string]float64 `json:"features"`
	Result   map[string]any     `json:"result,omitempty"`
}

// GetAssessment godoc
// @ID          getAssessment
// @Summary     Assess diabetes risk from stored answers
// @Description Derives the model feature vector from the caller's active answers
// @Description and runs the scoring model. Unanswered features default to 0, so
// @Description the endpoint works at any point during onboarding.
// @Tags        Assessment
// @Produce     json
//
// @Param       X-User-ID  header  string  true  "User ID (demo header)"  example(user123)
//
// @Success     200  {object}  handlers.AssessmentResponse
// @Failure     502  {object}  handlers.ErrorResponse  "Scoring unavailable"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /assessment [get]
func (h *Handlers) GetAssessment(c *gin.Context) {
	out, err := h.assessmentSvc.Assess(c.Request.Context(), userID(c))
	if err != nil {
		if errors.Is(err, services.ErrAssessmentUnavailable) {
			lg := middleware.LoggerFrom(c)
			lg.Error().Err(err).Msg("scoring invocation failed")
			// Features were computed; hand them back with the failure so the
			// client is not left empty-handed.
			resp := gin.H{
				"code":    ErrCodeAssessmentUnavailable,
				"message": "risk scoring is temporarily unavailable",
			}
			if out != nil {
				resp["features"] = out.Features
			}
			if reqID := c.Writer.Header().Get("X-Request-ID"); reqID != "" {
				resp["request_id"] = reqID
			}
			c.AbortWithStatusJSON(http.StatusBadGateway, resp)
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	ok(c, http.StatusOK, AssessmentResponse{Features: out.Features, Result: out.Result})
}
