package attendance

import "time"

// Status is the canonical attendance-status vocabulary. The write boundary
// accepts exactly these four values, case-sensitively.
type Status string

const (
	StatusPresent Status = "Present"
	StatusAbsent  Status = "Absent"
	StatusLate    Status = "Late"
	StatusExcused Status = "Excused"
)

// ValidStatus reports whether s is one of the four canonical values.
func ValidStatus(s string) bool {
	switch Status(s) {
	case StatusPresent, StatusAbsent, StatusLate, StatusExcused:
		return true
	}
	return false
}

// Method provenance tags for manually entered records. Device-sourced records
// carry a device-specific method string instead.
const (
	MethodManual     = "manual"
	MethodBulkManual = "bulk_manual"
)

// Record is one persisted attendance event. Ids are opaque and generated at
// creation; timestamp and createdAt are set once server-side and never
// mutated, updatedAt changes on every mutating update.
type Record struct {
	ID          string    `bson:"_id" json:"id"`
	StudentID   string    `bson:"studentId" json:"studentId"`
	Date        string    `bson:"date" json:"date"`
	Status      Status    `bson:"status" json:"status"`
	CourseID    string    `bson:"courseId,omitempty" json:"courseId,omitempty"`
	ScheduleID  string    `bson:"scheduleId,omitempty" json:"scheduleId,omitempty"`
	Department  string    `bson:"department,omitempty" json:"department,omitempty"`
	ArrivalTime string    `bson:"arrivalTime,omitempty" json:"arrivalTime,omitempty"`
	Method      string    `bson:"method" json:"method"`
	RecordedBy  string    `bson:"recordedBy" json:"recordedBy"`
	Remarks     string    `bson:"remarks,omitempty" json:"remarks,omitempty"`
	Timestamp   time.Time `bson:"timestamp" json:"timestamp"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// Stats aggregates a student's records over a date range. Records whose
// status matches none of the four canonical values (compared
// case-insensitively) count toward Total but no bucket.
type Stats struct {
	Total                int `json:"total"`
	Present              int `json:"present"`
	Absent               int `json:"absent"`
	Late                 int `json:"late"`
	Excused              int `json:"excused"`
	AttendancePercentage int `json:"attendancePercentage"`
}
