package attendance

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"attendtrack/internal/apperr"
)

// Store is the persistence contract the service talks to.
type Store interface {
	Insert(ctx context.Context, rec Record) (Record, error)
	InsertBatch(ctx context.Context, recs []Record) ([]Record, error)
	Get(ctx context.Context, id string) (Record, error)
	ListByStudent(ctx context.Context, studentID, from, to string) ([]Record, error)
	ListByDate(ctx context.Context, date, department, courseID string) ([]Record, error)
	UpdateStatus(ctx context.Context, id string, status Status, remarks string) error
}

// RecordRequest is the input for recording a single attendance event.
type RecordRequest struct {
	StudentID   string `json:"studentId" validate:"required"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Status      string `json:"status" validate:"required,oneof=Present Absent Late Excused"`
	CourseID    string `json:"courseId" validate:"omitempty"`
	ScheduleID  string `json:"scheduleId" validate:"omitempty"`
	Department  string `json:"department" validate:"omitempty"`
	ArrivalTime string `json:"arrivalTime" validate:"omitempty,hhmm"`
	Method      string `json:"method" validate:"omitempty"`
}

var arrivalTimeRe = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report errors under JSON field names instead of Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return arrivalTimeRe.MatchString(fl.Field().String())
	})
	return v
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "datetime":
		return "must be an ISO-8601 calendar date"
	case "oneof":
		return "invalid status"
	case "hhmm":
		return "must be HH:MM in 24-hour form"
	}
	return "invalid value"
}

func validateRequest(req RecordRequest, prefix string) []apperr.FieldError {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return []apperr.FieldError{{Field: prefix, Message: err.Error()}}
	}
	out := make([]apperr.FieldError, 0, len(ves))
	for _, fe := range ves {
		out = append(out, apperr.FieldError{Field: prefix + fe.Field(), Message: fieldMessage(fe)})
	}
	return out
}

// Service translates request-shaped input into store operations and computes
// derived statistics.
type Service struct {
	store Store
}

// NewService creates a service backed by a store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Record validates and persists one attendance event on behalf of the acting
// user. Method defaults to manual when the request carries none.
func (s *Service) Record(ctx context.Context, req RecordRequest, recordedBy string) (Record, error) {
	if fields := validateRequest(req, ""); len(fields) > 0 {
		return Record{}, apperr.NewValidation(fields...)
	}
	return s.store.Insert(ctx, toRecord(req, recordedBy, req.Method))
}

// RecordBulk validates every element before any write; a single invalid
// element means nothing is written. All records share recordedBy and the
// bulk_manual method tag.
func (s *Service) RecordBulk(ctx context.Context, reqs []RecordRequest, recordedBy string) ([]Record, error) {
	if len(reqs) == 0 {
		return nil, apperr.NewValidation(apperr.FieldError{
			Field: "attendanceRecords", Message: "at least one record is required",
		})
	}
	var fields []apperr.FieldError
	for i, req := range reqs {
		fields = append(fields, validateRequest(req, fmt.Sprintf("attendanceRecords[%d].", i))...)
	}
	if len(fields) > 0 {
		return nil, apperr.NewValidation(fields...)
	}

	recs := make([]Record, len(reqs))
	for i, req := range reqs {
		recs[i] = toRecord(req, recordedBy, MethodBulkManual)
	}
	return s.store.InsertBatch(ctx, recs)
}

// ByID returns a single record, surfacing NotFoundError for unknown ids.
func (s *Service) ByID(ctx context.Context, id string) (Record, error) {
	return s.store.Get(ctx, id)
}

// ByStudent returns a student's records within an optional inclusive date
// range. Empty bounds return the full history.
func (s *Service) ByStudent(ctx context.Context, studentID, from, to string) ([]Record, error) {
	return s.store.ListByStudent(ctx, studentID, from, to)
}

// ByDate returns records for an exact date; empty-string filters mean no
// filter.
func (s *Service) ByDate(ctx context.Context, date, department, courseID string) ([]Record, error) {
	return s.store.ListByDate(ctx, date, department, courseID)
}

// UpdateStatus changes the status and remarks of an existing record.
func (s *Service) UpdateStatus(ctx context.Context, id, status, remarks string) error {
	if !ValidStatus(status) {
		return apperr.NewValidation(apperr.FieldError{Field: "status", Message: "invalid status"})
	}
	return s.store.UpdateStatus(ctx, id, Status(status), remarks)
}

// Stats aggregates a student's records in range. Late and excused count
// toward the percentage as if present; that is the domain rule, not a display
// artifact. Status matching here is case-insensitive, and records with an
// unknown status contribute to total but to no bucket.
func (s *Service) Stats(ctx context.Context, studentID, from, to string) (Stats, error) {
	recs, err := s.store.ListByStudent(ctx, studentID, from, to)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{Total: len(recs)}
	for _, rec := range recs {
		switch strings.ToLower(string(rec.Status)) {
		case "present":
			stats.Present++
		case "absent":
			stats.Absent++
		case "late":
			stats.Late++
		case "excused":
			stats.Excused++
		}
	}
	if stats.Total > 0 {
		attended := stats.Present + stats.Late + stats.Excused
		stats.AttendancePercentage = int(math.Round(float64(attended) / float64(stats.Total) * 100))
	}
	return stats, nil
}

func toRecord(req RecordRequest, recordedBy, method string) Record {
	if method == "" {
		method = MethodManual
	}
	return Record{
		StudentID:   req.StudentID,
		Date:        req.Date,
		Status:      Status(req.Status),
		CourseID:    req.CourseID,
		ScheduleID:  req.ScheduleID,
		Department:  req.Department,
		ArrivalTime: req.ArrivalTime,
		Method:      method,
		RecordedBy:  recordedBy,
	}
}
