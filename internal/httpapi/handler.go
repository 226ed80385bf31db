// Package httpapi exposes the attendance and review services over JSON REST.
// Handlers validate input shape, enforce role gating, and map the error
// taxonomy onto HTTP statuses; business rules live in the services.
package httpapi

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"attendtrack/internal/attendance"
	"attendtrack/internal/auth"
	"attendtrack/internal/review"
	"attendtrack/internal/users"
)

// Authenticator verifies credentials for the login endpoint.
type Authenticator interface {
	Authenticate(ctx context.Context, identifier, role, password string) (*users.User, error)
}

// JWTConfig holds token-issuing parameters.
type JWTConfig struct {
	Issuer     string
	SigningKey string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Handler wires the services into gin routes.
type Handler struct {
	att   *attendance.Service
	rev   *review.Service
	users Authenticator
	jwt   JWTConfig
}

// New creates a handler.
func New(att *attendance.Service, rev *review.Service, authn Authenticator, jwt JWTConfig) *Handler {
	return &Handler{att: att, rev: rev, users: authn, jwt: jwt}
}

// Register mounts all routes on the engine.
func (h *Handler) Register(r *gin.Engine) {
	r.POST("/v1/auth/login", h.login)

	v1 := r.Group("/v1", auth.UserAuth(h.jwt.SigningKey, h.jwt.Issuer))
	v1.POST("/attendance/record", h.recordAttendance)
	v1.POST("/attendance/bulk-record", h.bulkRecordAttendance)
	v1.GET("/attendance/student/:studentId", h.attendanceByStudent)
	v1.GET("/attendance/date/:date", h.attendanceByDate)
	v1.GET("/attendance/stats/:studentId", h.attendanceStats)
	v1.PUT("/attendance/:attendanceId", h.updateAttendanceStatus)

	v1.POST("/reviews", h.submitReview)
	v1.GET("/reviews/pending", h.pendingReviews)
	v1.PUT("/reviews/:requestId", h.decideReview)
}
