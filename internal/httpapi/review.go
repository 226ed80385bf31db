package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"attendtrack/internal/apperr"
	"attendtrack/internal/review"
)

func (h *Handler) submitReview(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var req review.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.NewValidation(apperr.FieldError{Field: "body", Message: "malformed JSON"}))
		return
	}
	if req.StudentID == "" {
		req.StudentID = actor.ID
	}
	// Students dispute their own records only; admins may file on behalf.
	if !actor.IsAdmin() && req.StudentID != actor.ID {
		respondError(c, apperr.NewAuthorization("Access denied. You can only submit reviews for your own attendance."))
		return
	}

	created, err := h.rev.Submit(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, created, "Review request submitted successfully")
}

func (h *Handler) pendingReviews(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	if !actor.IsAdmin() {
		respondError(c, apperr.NewAuthorization(msgAdminRequired))
		return
	}

	reqs, err := h.rev.ListPending(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, reqs, "")
}

func (h *Handler) decideReview(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	if !actor.IsAdmin() {
		respondError(c, apperr.NewAuthorization(msgAdminRequired))
		return
	}

	var req review.DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.NewValidation(apperr.FieldError{Field: "body", Message: "malformed JSON"}))
		return
	}

	decided, err := h.rev.Decide(c.Request.Context(), c.Param("requestId"), req, actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, decided, "Review request "+decided.Status)
}
