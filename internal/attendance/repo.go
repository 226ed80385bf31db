package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"attendtrack/internal/apperr"
	"attendtrack/internal/store"
)

const collectionName = "attendance"

// Repo persists attendance records in the document store.
type Repo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewRepo creates a repo over the attendance collection.
func NewRepo(m *store.Mongo) *Repo {
	return &Repo{client: m.Client, coll: m.DB.Collection(collectionName)}
}

// Insert writes one record, stamping id and creation instants server-side.
func (r *Repo) Insert(ctx context.Context, rec Record) (Record, error) {
	stamp(&rec)
	if _, err := r.coll.InsertOne(ctx, rec); err != nil {
		return Record{}, apperr.NewStorage("attendance insert", err)
	}
	return rec, nil
}

// InsertBatch writes all records as a single all-or-nothing unit. Ids are
// pre-generated so the caller can correlate input order to output order.
// Requires a replica-set deployment for the multi-document transaction.
func (r *Repo) InsertBatch(ctx context.Context, recs []Record) ([]Record, error) {
	if len(recs) == 0 {
		return nil, nil
	}
	docs := make([]interface{}, len(recs))
	for i := range recs {
		stamp(&recs[i])
		docs[i] = recs[i]
	}

	session, err := r.client.StartSession()
	if err != nil {
		return nil, apperr.NewStorage("attendance bulk insert", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return r.coll.InsertMany(sc, docs)
	})
	if err != nil {
		return nil, apperr.NewStorage("attendance bulk insert", err)
	}
	return recs, nil
}

// Get returns a single record by id.
func (r *Repo) Get(ctx context.Context, id string) (Record, error) {
	var rec Record
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Record{}, apperr.NewNotFound("attendance record", id)
	}
	if err != nil {
		return Record{}, apperr.NewStorage("attendance fetch", err)
	}
	return rec, nil
}

// ListByStudent returns a student's records, optionally bounded by an
// inclusive date range, most recent date first. Empty bounds mean unbounded.
func (r *Repo) ListByStudent(ctx context.Context, studentID, from, to string) ([]Record, error) {
	filter := bson.M{"studentId": studentID}
	dateRange := bson.M{}
	if from != "" {
		dateRange["$gte"] = from
	}
	if to != "" {
		dateRange["$lte"] = to
	}
	if len(dateRange) > 0 {
		filter["date"] = dateRange
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, apperr.NewStorage("attendance query by student", err)
	}
	var out []Record
	if err := cursor.All(ctx, &out); err != nil {
		return nil, apperr.NewStorage("attendance query by student", err)
	}
	return out, nil
}

// ListByDate returns all records for an exact date, optionally narrowed by
// department and/or course.
func (r *Repo) ListByDate(ctx context.Context, date, department, courseID string) ([]Record, error) {
	filter := bson.M{"date": date}
	if department != "" {
		filter["department"] = department
	}
	if courseID != "" {
		filter["courseId"] = courseID
	}

	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, apperr.NewStorage("attendance query by date", err)
	}
	var out []Record
	if err := cursor.All(ctx, &out); err != nil {
		return nil, apperr.NewStorage("attendance query by date", err)
	}
	return out, nil
}

// UpdateStatus mutates status, remarks and updatedAt on an existing record.
func (r *Repo) UpdateStatus(ctx context.Context, id string, status Status, remarks string) error {
	res, err := r.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"status":    status,
		"remarks":   remarks,
		"updatedAt": time.Now().UTC(),
	}})
	if err != nil {
		return apperr.NewStorage("attendance status update", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NewNotFound("attendance record", id)
	}
	return nil
}

func stamp(rec *Record) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	rec.Timestamp = now
	rec.CreatedAt = now
}
