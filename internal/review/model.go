// Package review implements the student-dispute workflow over recorded
// attendance: a student opens a pending request against one of their records,
// and an admin resolves it with a single approve or reject decision.
package review

import "time"

// Request statuses. Pending is the initial state; approved and rejected are
// terminal and never reopened by this subsystem.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Reasons a student can give when disputing a recorded status.
var Reasons = []string{
	"I was present but not detected",
	"Medical issue",
	"Face not detected",
	"Other",
}

// Request is a student-initiated dispute of a recorded attendance status. It
// holds a non-owning reference to the disputed record plus a snapshot of that
// record's status at request time.
type Request struct {
	ID            string    `bson:"_id" json:"id"`
	AttendanceID  string    `bson:"attendanceId" json:"attendanceId"`
	StudentID     string    `bson:"studentId" json:"studentId"`
	Date          string    `bson:"date" json:"date"`
	CurrentStatus string    `bson:"currentStatus" json:"currentStatus"`
	Reason        string    `bson:"reason" json:"reason"`
	Comments      string    `bson:"comments,omitempty" json:"comments,omitempty"`
	RequestDate   time.Time `bson:"requestDate" json:"requestDate"`
	Status        string    `bson:"status" json:"status"`
	AdminRemarks  string    `bson:"adminRemarks,omitempty" json:"adminRemarks,omitempty"`
	DecidedBy     string    `bson:"decidedBy,omitempty" json:"decidedBy,omitempty"`
	DecidedAt     time.Time `bson:"decidedAt,omitempty" json:"decidedAt,omitempty"`
}
