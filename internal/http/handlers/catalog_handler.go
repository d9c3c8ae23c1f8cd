// Catalog HTTP handler.
//
// Exposes the read side of the symptom catalog that the client walks during
// onboarding: GET /catalog/diseases/{id}/questions returns the disease's
// active symptom categories with their questions, in presentation order.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sharoon-shahzad/go-diabetes-backend/internal/services"
)

// DiseaseQuestionsResponse wraps the per-symptom question groups for one
// disease.
type DiseaseQuestionsResponse struct {
	Symptoms []services.SymptomQuestions `json:"symptoms"`
}

// ListDiseaseQuestions godoc
// @ID          listDiseaseQuestions
// @Summary     List a disease's questions grouped by symptom
// @Description Returns the active symptoms of a disease, each with its active
// @Description questions, in the order the client should present them.
// @Tags        Catalog
// @Produce     json
//
// @Param       id  path  string  true  "Disease ID (UUID)"  format(uuid)
//
// @Success     200  {object}  handlers.DiseaseQuestionsResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Disease not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /catalog/diseases/{id}/questions [get]
func (h *Handlers) ListDiseaseQuestions(c *gin.Context) {
	diseaseID := c.Param("id")
	if _, err := uuid.Parse(diseaseID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "disease id must be a UUID")
		return
	}

	groups, err := h.catalogSvc.Questions(c.Request.Context(), diseaseID)
	if err != nil {
		switch err {
		case services.ErrDiseaseNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "disease not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, DiseaseQuestionsResponse{Symptoms: groups})
}
