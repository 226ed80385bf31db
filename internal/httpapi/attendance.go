package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"attendtrack/internal/apperr"
	"attendtrack/internal/attendance"
	"attendtrack/internal/auth"
)

const (
	msgAdminRequired  = "Access denied. Admin privileges required."
	msgOwnRecordsOnly = "Access denied. You can only view your own attendance."
)

func actorOrAbort(c *gin.Context) (auth.Actor, bool) {
	actor, ok := auth.ActorFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "authentication required"})
	}
	return actor, ok
}

func (h *Handler) recordAttendance(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var req attendance.RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.NewValidation(apperr.FieldError{Field: "body", Message: "malformed JSON"}))
		return
	}

	rec, err := h.att.Record(c.Request.Context(), req, actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, rec, "Attendance recorded successfully")
}

func (h *Handler) bulkRecordAttendance(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	if !actor.IsAdmin() {
		respondError(c, apperr.NewAuthorization(msgAdminRequired))
		return
	}

	var body struct {
		AttendanceRecords []attendance.RecordRequest `json:"attendanceRecords"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, apperr.NewValidation(apperr.FieldError{Field: "attendanceRecords", Message: "must be an array of records"}))
		return
	}

	recs, err := h.att.RecordBulk(c.Request.Context(), body.AttendanceRecords, actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, recs, "Attendance records created successfully")
}

func (h *Handler) attendanceByStudent(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	studentID := c.Param("studentId")
	if !actor.IsAdmin() && actor.ID != studentID {
		respondError(c, apperr.NewAuthorization(msgOwnRecordsOnly))
		return
	}

	from, to, err := dateRange(c)
	if err != nil {
		respondError(c, err)
		return
	}

	recs, err := h.att.ByStudent(c.Request.Context(), studentID, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, recs, "")
}

func (h *Handler) attendanceByDate(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	if !actor.IsAdmin() {
		respondError(c, apperr.NewAuthorization(msgAdminRequired))
		return
	}

	recs, err := h.att.ByDate(c.Request.Context(), c.Param("date"), c.Query("department"), c.Query("course"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, recs, "")
}

func (h *Handler) attendanceStats(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	studentID := c.Param("studentId")
	if !actor.IsAdmin() && actor.ID != studentID {
		respondError(c, apperr.NewAuthorization("Access denied. You can only view your own statistics."))
		return
	}

	from, to, err := dateRange(c)
	if err != nil {
		respondError(c, err)
		return
	}

	stats, err := h.att.Stats(c.Request.Context(), studentID, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, stats, "")
}

func (h *Handler) updateAttendanceStatus(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	if !actor.IsAdmin() {
		respondError(c, apperr.NewAuthorization(msgAdminRequired))
		return
	}

	var body struct {
		Status  string `json:"status"`
		Remarks string `json:"remarks"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, apperr.NewValidation(apperr.FieldError{Field: "body", Message: "malformed JSON"}))
		return
	}

	if err := h.att.UpdateStatus(c.Request.Context(), c.Param("attendanceId"), body.Status, body.Remarks); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, nil, "Attendance status updated successfully")
}

// dateRange reads optional inclusive startDate/endDate query bounds,
// rejecting anything that is not a calendar date.
func dateRange(c *gin.Context) (string, string, error) {
	var fields []apperr.FieldError
	from := c.Query("startDate")
	to := c.Query("endDate")
	if from != "" {
		if _, err := time.Parse("2006-01-02", from); err != nil {
			fields = append(fields, apperr.FieldError{Field: "startDate", Message: "must be an ISO-8601 calendar date"})
		}
	}
	if to != "" {
		if _, err := time.Parse("2006-01-02", to); err != nil {
			fields = append(fields, apperr.FieldError{Field: "endDate", Message: "must be an ISO-8601 calendar date"})
		}
	}
	if len(fields) > 0 {
		return "", "", apperr.NewValidation(fields...)
	}
	return from, to, nil
}
