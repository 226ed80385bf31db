package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"attendtrack/internal/apperr"
	"attendtrack/internal/auth"
	"attendtrack/internal/users"
)

func (h *Handler) login(c *gin.Context) {
	var body struct {
		Identifier string `json:"identifier"`
		Password   string `json:"password"`
		Role       string `json:"role"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, apperr.NewValidation(apperr.FieldError{Field: "body", Message: "malformed JSON"}))
		return
	}

	var fields []apperr.FieldError
	if body.Identifier == "" {
		fields = append(fields, apperr.FieldError{Field: "identifier", Message: "this field is required"})
	}
	if body.Password == "" {
		fields = append(fields, apperr.FieldError{Field: "password", Message: "this field is required"})
	}
	if len(fields) > 0 {
		respondError(c, apperr.NewValidation(fields...))
		return
	}
	if body.Role == "" {
		body.Role = users.RoleStudent
	}

	user, err := h.users.Authenticate(c.Request.Context(), body.Identifier, body.Role, body.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials"})
			return
		}
		respondError(c, err)
		return
	}

	tokens, err := auth.Issue(user.ID, user.Role, h.jwt.Issuer, h.jwt.SigningKey, h.jwt.AccessTTL, h.jwt.RefreshTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "token issue failed"})
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"accessToken":  tokens.AccessToken,
		"refreshToken": tokens.RefreshToken,
		"expiresAt":    tokens.AccessExp.Unix(),
		"user":         user,
	}, "")
}
