package review

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

const collectionName = "attendance_reviews"

// Repo persists review requests in the document store.
type Repo struct {
	coll *mongo.Collection
}

// NewRepo creates a repo over the review collection.
func NewRepo(m *store.Mongo) *Repo {
	return &Repo{coll: m.DB.Collection(collectionName)}
}

// Insert writes a new pending request, stamping id and request date.
func (r *Repo) Insert(ctx context.Context, req Request) (Request, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	req.RequestDate = time.Now().UTC()
	req.Status = StatusPending
	if _, err := r.coll.InsertOne(ctx, req); err != nil {
		return Request{}, apperr.NewStorage("review insert", err)
	}
	return req, nil
}

// Get returns a single request by id.
func (r *Repo) Get(ctx context.Context, id string) (Request, error) {
	var req Request
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&req)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Request{}, apperr.NewNotFound("review request", id)
	}
	if err != nil {
		return Request{}, apperr.NewStorage("review fetch", err)
	}
	return req, nil
}

// ListPending returns open requests, newest first.
func (r *Repo) ListPending(ctx context.Context) ([]Request, error) {
	opts := options.Find().SetSort(bson.D{{Key: "requestDate", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"status": StatusPending}, opts)
	if err != nil {
		return nil, apperr.NewStorage("review pending list", err)
	}
	var out []Request
	if err := cursor.All(ctx, &out); err != nil {
		return nil, apperr.NewStorage("review pending list", err)
	}
	return out, nil
}

// TransitionFromPending atomically moves a request out of pending. The filter
// matches on the stored status, so of two concurrent deciders exactly one
// finds the document and wins; the other gets ConflictError.
func (r *Repo) TransitionFromPending(ctx context.Context, id, decision, adminRemarks, decidedBy string) (Request, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var req Request
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": StatusPending},
		bson.M{"$set": bson.M{
			"status":       decision,
			"adminRemarks": adminRemarks,
			"decidedBy":    decidedBy,
			"decidedAt":    time.Now().UTC(),
		}},
		opts,
	).Decode(&req)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Either already decided or never existed; look again to tell which.
		if _, getErr := r.Get(ctx, id); getErr != nil {
			return Request{}, getErr
		}
		return Request{}, apperr.NewConflict("review request already decided")
	}
	if err != nil {
		return Request{}, apperr.NewStorage("review decision", err)
	}
	return req, nil
}
