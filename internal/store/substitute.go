package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"martshift/internal/model"
)

type SubstituteStore struct {
	client    *mongo.Client
	requests  *mongo.Collection
	schedules *mongo.Collection
}

func NewSubstituteStore(ctx context.Context, db *MongoDB) (*SubstituteStore, error) {
	requests := db.Collection("substitute_requests")

	if _, err := requests.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "open_for_recruiting", Value: 1}}},
		{Keys: bson.D{{Key: "requester", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "schedule", Value: 1}}},
	}); err != nil {
		return nil, fmt.Errorf("create substitute request indexes: %w", err)
	}

	return &SubstituteStore{
		client:    db.Client(),
		requests:  requests,
		schedules: db.Collection("schedules"),
	}, nil
}

// Create inserts a new substitute request and sets the ID on the struct.
func (s *SubstituteStore) Create(ctx context.Context, req *model.SubstituteRequest) error {
	req.CreatedAt = time.Now()
	req.UpdatedAt = time.Now()
	res, err := s.requests.InsertOne(ctx, req)
	if err != nil {
		return err
	}
	req.ID = res.InsertedID.(bson.ObjectID)
	return nil
}

// GetByID returns the request with the given ID, or nil if not found.
func (s *SubstituteStore) GetByID(ctx context.Context, id bson.ObjectID) (*model.SubstituteRequest, error) {
	var req model.SubstituteRequest
	err := s.requests.FindOne(ctx, bson.M{"_id": id}).Decode(&req)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find substitute request: %w", err)
	}
	return &req, nil
}

// Open marks a pending request as open for recruiting. Returns false when
// no pending request matched the ID.
func (s *SubstituteStore) Open(ctx context.Context, id bson.ObjectID) (bool, error) {
	res, err := s.requests.UpdateOne(ctx,
		bson.M{"_id": id, "status": model.SubStatusPending},
		bson.M{"$set": bson.M{"open_for_recruiting": true, "updated_at": time.Now()}},
	)
	if err != nil {
		return false, fmt.Errorf("open substitute request: %w", err)
	}
	return res.MatchedCount == 1, nil
}

// Accept moves an open pending request to accepted and records the
// substitute, in one conditional update. Returns the updated request, or
// nil when no open pending request matched, so a concurrent second accept
// loses cleanly.
func (s *SubstituteStore) Accept(ctx context.Context, id, substitute bson.ObjectID) (*model.SubstituteRequest, error) {
	var req model.SubstituteRequest
	err := s.requests.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": model.SubStatusPending, "open_for_recruiting": true},
		bson.M{"$set": bson.M{
			"status":     model.SubStatusAccepted,
			"substitute": substitute,
			"updated_at": time.Now(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&req)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("accept substitute request: %w", err)
	}
	return &req, nil
}

// Reject moves a pending request to rejected. Returns false when no
// pending request matched the ID.
func (s *SubstituteStore) Reject(ctx context.Context, id bson.ObjectID) (bool, error) {
	res, err := s.requests.UpdateOne(ctx,
		bson.M{"_id": id, "status": model.SubStatusPending},
		bson.M{"$set": bson.M{"status": model.SubStatusRejected, "updated_at": time.Now()}},
	)
	if err != nil {
		return false, fmt.Errorf("reject substitute request: %w", err)
	}
	return res.MatchedCount == 1, nil
}

// Finalize approves an accepted request and reassigns the referenced
// schedule to the substitute. Both writes run in one transaction; either
// both apply or neither does. A request not in the accepted state yields a
// *model.InvalidTransitionError.
func (s *SubstituteStore) Finalize(ctx context.Context, id bson.ObjectID) (*model.SubstituteRequest, error) {
	sess, err := s.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	result, err := sess.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		var req model.SubstituteRequest
		err := s.requests.FindOne(ctx, bson.M{"_id": id}).Decode(&req)
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("find substitute request: %w", err)
		}

		next, err := req.Status.Transition(model.SubStatusApproved)
		if err != nil {
			return nil, err
		}
		req.Status = next
		req.UpdatedAt = time.Now()

		if _, err := s.requests.ReplaceOne(ctx, bson.M{"_id": req.ID}, &req); err != nil {
			return nil, fmt.Errorf("update substitute request: %w", err)
		}
		if _, err := s.schedules.UpdateOne(ctx,
			bson.M{"_id": req.Schedule},
			bson.M{"$set": bson.M{"staff": *req.Substitute, "updated_at": time.Now()}},
		); err != nil {
			return nil, fmt.Errorf("reassign schedule: %w", err)
		}
		return &req, nil
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}
	return result.(*model.SubstituteRequest), nil
}

// List returns requests matching the filter, newest first.
func (s *SubstituteStore) List(ctx context.Context, filter bson.M) ([]*model.SubstituteRequest, error) {
	cursor, err := s.requests.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find substitute requests: %w", err)
	}
	var results []*model.SubstituteRequest
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("decode substitute requests: %w", err)
	}
	return results, nil
}
