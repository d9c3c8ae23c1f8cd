// Onboarding HTTP handlers.
//
// This file exposes the onboarding state machine over REST:
//   - GET  /onboarding/status   (read state; applies the lazy expiry check)
//   - POST /onboarding/submit   (explicitly lock the data set)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sharoon-shahzad/go-diabetes-backend/internal/services"
)

// OnboardingStatus godoc
// @ID          onboardingStatus
// @Summary     Get onboarding status
// @Description Returns whether onboarding is complete, the data-set status
// @Description (draft or submitted), and when the editing window closes. A read
// @Description past the window while still in draft locks the data set.
// @Tags        Onboarding
// @Produce     json
//
// @Param       X-User-ID  header  string  true  "User ID (demo header)"  example(user123)
//
// @Success     200  {object}  services.OnboardingStatus
// @Failure     404  {object}  handlers.ErrorResponse  "User not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /onboarding/status [get]
func (h *Handlers) OnboardingStatus(c *gin.Context) {
	st, err := h.onboardingSvc.Status(c.Request.Context(), userID(c))
	if err != nil {
		switch err {
		case services.ErrUserNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, st)
}

// SubmitOnboarding godoc
// @ID          submitOnboarding
// @Summary     Submit the completed data set
// @Description Locks the caller's answers by moving the data set from draft to
// @Description submitted. Valid only after onboarding completion, while still
// @Description in draft, and before the editing window closes.
// @Tags        Onboarding
// @Produce     json
//
// @Param       X-User-ID  header  string  true  "User ID (demo header)"  example(user123)
//
// @Success     204  {string} string "No Content"
// @Failure     404  {object} handlers.ErrorResponse "User not found"
// @Failure     409  {object} handlers.ErrorResponse "Wrong state for submit"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /onboarding/submit [post]
func (h *Handlers) SubmitOnboarding(c *gin.Context) {
	err := h.onboardingSvc.Submit(c.Request.Context(), userID(c))
	if err != nil {
		switch err {
		case services.ErrUserNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
		case services.ErrOnboardingIncomplete:
			fail(c, http.StatusConflict, ErrCodeOnboardingIncomplete, "onboarding not completed")
		case services.ErrAlreadySubmitted:
			fail(c, http.StatusConflict, ErrCodeAlreadySubmitted, "data already submitted")
		case services.ErrEditingWindowExpired:
			fail(c, http.StatusConflict, ErrCodeEditingWindowExpired, "editing window expired")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	noContent(c)
}
