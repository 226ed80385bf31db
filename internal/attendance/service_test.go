package attendance

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendtrack/internal/apperr"
)

// fakeStore keeps records in memory and mimics the adapter's id stamping.
type fakeStore struct {
	records []Record
	nextID  int
}

func (f *fakeStore) stamp(rec *Record) {
	f.nextID++
	if rec.ID == "" {
		rec.ID = fmt.Sprintf("rec-%d", f.nextID)
	}
	now := time.Now().UTC()
	rec.Timestamp = now
	rec.CreatedAt = now
}

func (f *fakeStore) Insert(_ context.Context, rec Record) (Record, error) {
	f.stamp(&rec)
	f.records = append(f.records, rec)
	return rec, nil
}

func (f *fakeStore) InsertBatch(_ context.Context, recs []Record) ([]Record, error) {
	for i := range recs {
		f.stamp(&recs[i])
	}
	f.records = append(f.records, recs...)
	return recs, nil
}

func (f *fakeStore) Get(_ context.Context, id string) (Record, error) {
	for _, rec := range f.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return Record{}, apperr.NewNotFound("attendance record", id)
}

func (f *fakeStore) ListByStudent(_ context.Context, studentID, from, to string) ([]Record, error) {
	var out []Record
	for _, rec := range f.records {
		if rec.StudentID != studentID {
			continue
		}
		if from != "" && rec.Date < from {
			continue
		}
		if to != "" && rec.Date > to {
			continue
		}
		out = append(out, rec)
	}
	// most recent date first, matching the document store's sort
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (f *fakeStore) ListByDate(_ context.Context, date, department, courseID string) ([]Record, error) {
	var out []Record
	for _, rec := range f.records {
		if rec.Date != date {
			continue
		}
		if department != "" && rec.Department != department {
			continue
		}
		if courseID != "" && rec.CourseID != courseID {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, id string, status Status, remarks string) error {
	for i := range f.records {
		if f.records[i].ID == id {
			f.records[i].Status = status
			f.records[i].Remarks = remarks
			f.records[i].UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return apperr.NewNotFound("attendance record", id)
}

func validFields(t *testing.T, err error) []apperr.FieldError {
	t.Helper()
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	return ve.Fields
}

func fieldNames(fields []apperr.FieldError) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Field
	}
	return names
}

func TestRecordStatusRoundTrip(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)

	for _, status := range []string{"Present", "Absent", "Late", "Excused"} {
		rec, err := svc.Record(context.Background(), RecordRequest{
			StudentID: "S1",
			Date:      "2024-03-10",
			Status:    status,
		}, "admin-1")
		require.NoError(t, err)
		assert.Equal(t, Status(status), rec.Status)
		assert.NotEmpty(t, rec.ID)
	}

	got, err := svc.ByStudent(context.Background(), "S1", "", "")
	require.NoError(t, err)
	require.Len(t, got, 4)
}

func TestByStudentMostRecentFirst(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)

	// inserted out of order on purpose
	for _, d := range []string{"2024-03-10", "2024-03-14", "2024-03-12"} {
		_, err := svc.Record(context.Background(), RecordRequest{
			StudentID: "S1", Date: d, Status: "Present",
		}, "admin-1")
		require.NoError(t, err)
	}

	got, err := svc.ByStudent(context.Background(), "S1", "", "")
	require.NoError(t, err)
	require.Len(t, got, 3)
	dates := []string{got[0].Date, got[1].Date, got[2].Date}
	assert.Equal(t, []string{"2024-03-14", "2024-03-12", "2024-03-10"}, dates)
}

func TestRecordStampsActorAndMethod(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)

	rec, err := svc.Record(context.Background(), RecordRequest{
		StudentID: "S1",
		Date:      "2024-03-10",
		Status:    "Present",
	}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, "admin-1", rec.RecordedBy)
	assert.Equal(t, MethodManual, rec.Method)

	rec, err = svc.Record(context.Background(), RecordRequest{
		StudentID: "S2",
		Date:      "2024-03-10",
		Status:    "Present",
		Method:    "device:cam-07",
	}, "cam-07")
	require.NoError(t, err)
	assert.Equal(t, "device:cam-07", rec.Method)
}

func TestRecordValidation(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)

	tests := []struct {
		name  string
		req   RecordRequest
		field string
	}{
		{"missing student", RecordRequest{Date: "2024-03-10", Status: "Present"}, "studentId"},
		{"missing date", RecordRequest{StudentID: "S1", Status: "Present"}, "date"},
		{"bad date", RecordRequest{StudentID: "S1", Date: "10/03/2024", Status: "Present"}, "date"},
		{"missing status", RecordRequest{StudentID: "S1", Date: "2024-03-10"}, "status"},
		{"unknown status", RecordRequest{StudentID: "S1", Date: "2024-03-10", Status: "Sick"}, "status"},
		{"lowercase status rejected", RecordRequest{StudentID: "S1", Date: "2024-03-10", Status: "present"}, "status"},
		{"bad arrival time", RecordRequest{StudentID: "S1", Date: "2024-03-10", Status: "Present", ArrivalTime: "24:00"}, "arrivalTime"},
		{"partial arrival time", RecordRequest{StudentID: "S1", Date: "2024-03-10", Status: "Present", ArrivalTime: "9:5"}, "arrivalTime"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Record(context.Background(), tt.req, "admin-1")
			fields := validFields(t, err)
			assert.Contains(t, fieldNames(fields), tt.field)
		})
	}
	assert.Empty(t, store.records, "validation failures must not write")
}

func TestRecordArrivalTimeAccepted(t *testing.T) {
	svc := NewService(&fakeStore{})

	for _, at := range []string{"9:05", "09:05", "0:00", "23:59"} {
		_, err := svc.Record(context.Background(), RecordRequest{
			StudentID:   "S1",
			Date:        "2024-03-10",
			Status:      "Late",
			ArrivalTime: at,
		}, "admin-1")
		assert.NoError(t, err, "arrival time %q", at)
	}
}

func TestRecordBulk(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)

	reqs := []RecordRequest{
		{StudentID: "S1", Date: "2024-03-10", Status: "Present"},
		{StudentID: "S2", Date: "2024-03-10", Status: "Absent"},
		{StudentID: "S3", Date: "2024-03-10", Status: "Late"},
	}
	recs, err := svc.RecordBulk(context.Background(), reqs, "admin-1")
	require.NoError(t, err)
	require.Len(t, recs, 3)

	seen := map[string]bool{}
	for i, rec := range recs {
		assert.Equal(t, reqs[i].StudentID, rec.StudentID, "output order must match input order")
		assert.Equal(t, MethodBulkManual, rec.Method)
		assert.Equal(t, "admin-1", rec.RecordedBy)
		assert.False(t, seen[rec.ID], "ids must be distinct")
		seen[rec.ID] = true
	}
}

func TestRecordBulkFailFast(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)

	_, err := svc.RecordBulk(context.Background(), []RecordRequest{
		{StudentID: "S1", Date: "2024-03-10", Status: "Present"},
		{StudentID: "S2", Date: "2024-03-10", Status: "Attending"},
	}, "admin-1")
	fields := validFields(t, err)
	assert.Contains(t, fieldNames(fields), "attendanceRecords[1].status")
	assert.Empty(t, store.records, "no partial batch on validation failure")
}

func TestRecordBulkEmpty(t *testing.T) {
	svc := NewService(&fakeStore{})
	_, err := svc.RecordBulk(context.Background(), nil, "admin-1")
	assert.True(t, apperr.IsValidation(err))
}

func TestStatsSingleRecord(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)

	_, err := svc.Record(context.Background(), RecordRequest{
		StudentID: "S1", Date: "2024-03-10", Status: "Present",
	}, "admin-1")
	require.NoError(t, err)

	stats, err := svc.Stats(context.Background(), "S1", "2024-03-01", "2024-03-31")
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 1, Present: 1, AttendancePercentage: 100}, stats)
}

func TestStatsOneOfEach(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)

	for _, status := range []string{"Present", "Absent", "Late", "Excused"} {
		_, err := svc.Record(context.Background(), RecordRequest{
			StudentID: "S1", Date: "2024-03-10", Status: status,
		}, "admin-1")
		require.NoError(t, err)
	}

	stats, err := svc.Stats(context.Background(), "S1", "", "")
	require.NoError(t, err)
	assert.Equal(t, Stats{
		Total: 4, Present: 1, Absent: 1, Late: 1, Excused: 1,
		AttendancePercentage: 75,
	}, stats)
}

func TestStatsEmptyHistory(t *testing.T) {
	svc := NewService(&fakeStore{})
	stats, err := svc.Stats(context.Background(), "nobody", "", "")
	require.NoError(t, err)
	assert.Equal(t, Stats{}, stats)
}

func TestStatsCaseInsensitiveBuckets(t *testing.T) {
	// Stored statuses bucket case-insensitively even though the write
	// boundary only accepts canonical casing. Unknown statuses count toward
	// total but no bucket.
	store := &fakeStore{records: []Record{
		{ID: "a", StudentID: "S1", Date: "2024-03-10", Status: "PRESENT"},
		{ID: "b", StudentID: "S1", Date: "2024-03-11", Status: "late"},
		{ID: "c", StudentID: "S1", Date: "2024-03-12", Status: "on-leave"},
	}}
	svc := NewService(store)

	stats, err := svc.Stats(context.Background(), "S1", "", "")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Present)
	assert.Equal(t, 1, stats.Late)
	assert.Equal(t, 0, stats.Absent)
	assert.Equal(t, 0, stats.Excused)
	// 2 attended of 3 total
	assert.Equal(t, 67, stats.AttendancePercentage)
}

func TestStatsRounding(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)

	// 3 attended of 8: 37.5 rounds half away from zero to 38.
	statuses := []string{"Present", "Late", "Excused", "Absent", "Absent", "Absent", "Absent", "Absent"}
	for i, status := range statuses {
		_, err := svc.Record(context.Background(), RecordRequest{
			StudentID: "S1", Date: fmt.Sprintf("2024-03-%02d", i+1), Status: status,
		}, "admin-1")
		require.NoError(t, err)
	}

	stats, err := svc.Stats(context.Background(), "S1", "", "")
	require.NoError(t, err)
	assert.Equal(t, 38, stats.AttendancePercentage)
}

func TestStatsDateRange(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)

	for _, d := range []string{"2024-02-28", "2024-03-10", "2024-04-01"} {
		_, err := svc.Record(context.Background(), RecordRequest{
			StudentID: "S1", Date: d, Status: "Present",
		}, "admin-1")
		require.NoError(t, err)
	}

	stats, err := svc.Stats(context.Background(), "S1", "2024-03-01", "2024-03-31")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
}

func TestUpdateStatus(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)

	rec, err := svc.Record(context.Background(), RecordRequest{
		StudentID: "S1", Date: "2024-03-10", Status: "Absent",
	}, "admin-1")
	require.NoError(t, err)
	other, err := svc.Record(context.Background(), RecordRequest{
		StudentID: "S2", Date: "2024-03-10", Status: "Present",
	}, "admin-1")
	require.NoError(t, err)

	require.NoError(t, svc.UpdateStatus(context.Background(), rec.ID, "Present", "reviewed"))
	assert.Equal(t, StatusPresent, store.records[0].Status)
	assert.Equal(t, "reviewed", store.records[0].Remarks)
	// other record untouched
	assert.Equal(t, other.Status, store.records[1].Status)
	assert.Empty(t, store.records[1].Remarks)
}

func TestUpdateStatusInvalid(t *testing.T) {
	svc := NewService(&fakeStore{})
	err := svc.UpdateStatus(context.Background(), "rec-1", "Tardy", "")
	assert.True(t, apperr.IsValidation(err))
}

func TestUpdateStatusUnknownID(t *testing.T) {
	svc := NewService(&fakeStore{})
	err := svc.UpdateStatus(context.Background(), "missing", "Present", "")
	assert.True(t, apperr.IsNotFound(err))
}

func TestByDateFilters(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)

	seed := []RecordRequest{
		{StudentID: "S1", Date: "2024-03-10", Status: "Present", Department: "HNDIT", CourseID: "C1"},
		{StudentID: "S2", Date: "2024-03-10", Status: "Absent", Department: "HNDA", CourseID: "C1"},
		{StudentID: "S3", Date: "2024-03-11", Status: "Present", Department: "HNDIT", CourseID: "C2"},
	}
	for _, req := range seed {
		_, err := svc.Record(context.Background(), req, "admin-1")
		require.NoError(t, err)
	}

	recs, err := svc.ByDate(context.Background(), "2024-03-10", "", "")
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	recs, err = svc.ByDate(context.Background(), "2024-03-10", "HNDIT", "")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "S1", recs[0].StudentID)

	recs, err = svc.ByDate(context.Background(), "2024-03-10", "", "C1")
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}
