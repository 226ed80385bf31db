package review

import (
	"context"

	"attendtrack/internal/apperr"
	"attendtrack/internal/attendance"
)

// Store is the persistence contract the workflow talks to.
type Store interface {
	Insert(ctx context.Context, req Request) (Request, error)
	Get(ctx context.Context, id string) (Request, error)
	ListPending(ctx context.Context) ([]Request, error)
	TransitionFromPending(ctx context.Context, id, decision, adminRemarks, decidedBy string) (Request, error)
}

// Records is the workflow's view of the attendance service: resolving the
// disputed record and writing a resolution back to it.
type Records interface {
	ByID(ctx context.Context, id string) (attendance.Record, error)
	UpdateStatus(ctx context.Context, id, status, remarks string) error
}

// Comments are free text; anything longer than this is rejected at
// submission.
const maxCommentsLen = 2000

// SubmitRequest is the input for opening a dispute.
type SubmitRequest struct {
	AttendanceID  string `json:"attendanceId"`
	StudentID     string `json:"studentId"`
	Date          string `json:"date"`
	CurrentStatus string `json:"currentStatus"`
	Reason        string `json:"reason"`
	Comments      string `json:"comments"`
}

// DecideRequest is the admin resolution of a pending dispute. NewStatus is
// only consulted on approval and defaults to Present, the common case for
// "present but not detected" disputes.
type DecideRequest struct {
	Decision  string `json:"decision"`
	NewStatus string `json:"newStatus"`
	Remarks   string `json:"remarks"`
}

// Service runs the dispute state machine: pending, then exactly one approve
// or reject.
type Service struct {
	store   Store
	records Records
}

// NewService creates a workflow over a store and the attendance records.
func NewService(store Store, records Records) *Service {
	return &Service{store: store, records: records}
}

// Submit opens a pending request. The referenced attendance record must
// exist; a dangling reference is NotFoundError, not a stored dispute.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (Request, error) {
	var fields []apperr.FieldError
	if req.AttendanceID == "" {
		fields = append(fields, apperr.FieldError{Field: "attendanceId", Message: "this field is required"})
	}
	if req.StudentID == "" {
		fields = append(fields, apperr.FieldError{Field: "studentId", Message: "this field is required"})
	}
	if req.Date == "" {
		fields = append(fields, apperr.FieldError{Field: "date", Message: "this field is required"})
	}
	if !validReason(req.Reason) {
		fields = append(fields, apperr.FieldError{Field: "reason", Message: "invalid reason"})
	}
	if len(req.Comments) > maxCommentsLen {
		fields = append(fields, apperr.FieldError{Field: "comments", Message: "must be at most 2000 characters"})
	}
	if len(fields) > 0 {
		return Request{}, apperr.NewValidation(fields...)
	}

	if _, err := s.records.ByID(ctx, req.AttendanceID); err != nil {
		return Request{}, err
	}

	return s.store.Insert(ctx, Request{
		AttendanceID:  req.AttendanceID,
		StudentID:     req.StudentID,
		Date:          req.Date,
		CurrentStatus: req.CurrentStatus,
		Reason:        req.Reason,
		Comments:      req.Comments,
	})
}

// ListPending returns open requests for the admin review queue.
func (s *Service) ListPending(ctx context.Context) ([]Request, error) {
	return s.store.ListPending(ctx)
}

// Decide resolves a pending request. The transition out of pending is a
// compare-and-swap; a concurrent decider loses with ConflictError. On
// approval the underlying attendance record's status and remarks are updated
// so the authoritative record reflects the resolution; on rejection it is
// untouched.
func (s *Service) Decide(ctx context.Context, id string, req DecideRequest, decidedBy string) (Request, error) {
	if req.Decision != StatusApproved && req.Decision != StatusRejected {
		return Request{}, apperr.NewValidation(apperr.FieldError{
			Field: "decision", Message: "must be approved or rejected",
		})
	}
	newStatus := req.NewStatus
	if req.Decision == StatusApproved {
		if newStatus == "" {
			newStatus = string(attendance.StatusPresent)
		}
		if !attendance.ValidStatus(newStatus) {
			return Request{}, apperr.NewValidation(apperr.FieldError{
				Field: "newStatus", Message: "invalid status",
			})
		}
		// Re-verify the referenced record before leaving pending, so an
		// approval can never land without its write-back target. Records are
		// never deleted by this subsystem, so the check cannot go stale
		// between here and UpdateStatus.
		current, err := s.store.Get(ctx, id)
		if err != nil {
			return Request{}, err
		}
		if _, err := s.records.ByID(ctx, current.AttendanceID); err != nil {
			return Request{}, err
		}
	}

	decided, err := s.store.TransitionFromPending(ctx, id, req.Decision, req.Remarks, decidedBy)
	if err != nil {
		return Request{}, err
	}

	if decided.Status == StatusApproved {
		if err := s.records.UpdateStatus(ctx, decided.AttendanceID, newStatus, req.Remarks); err != nil {
			return decided, err
		}
	}
	return decided, nil
}

func validReason(reason string) bool {
	for _, r := range Reasons {
		if r == reason {
			return true
		}
	}
	return false
}
