package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"martshift/internal/model"
)

// ErrOverlap is returned when a candidate shift conflicts with an existing
// shift for the same staff member and date.
var ErrOverlap = errors.New("shift overlaps an existing schedule")

type ScheduleStore struct {
	client    *mongo.Client
	schedules *mongo.Collection
}

func NewScheduleStore(ctx context.Context, db *MongoDB) (*ScheduleStore, error) {
	schedules := db.Collection("schedules")

	if _, err := schedules.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "staff", Value: 1}, {Key: "date", Value: 1}}},
		{Keys: bson.D{{Key: "date", Value: 1}}},
	}); err != nil {
		return nil, fmt.Errorf("create schedule indexes: %w", err)
	}

	return &ScheduleStore{client: db.Client(), schedules: schedules}, nil
}

// CreateIfNoOverlap inserts the shift unless it overlaps an existing shift
// for the same staff member on the same date. The read, the conflict check
// and the insert run in one transaction so two concurrent submissions for
// the same staff/date cannot both pass the check.
func (s *ScheduleStore) CreateIfNoOverlap(ctx context.Context, schedule *model.Schedule) error {
	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		cursor, err := s.schedules.Find(ctx, bson.M{
			"staff":  schedule.Staff,
			"date":   schedule.Date,
			"status": bson.M{"$ne": model.ScheduleStatusCancelled},
		})
		if err != nil {
			return nil, fmt.Errorf("find schedules: %w", err)
		}
		var existing []*model.Schedule
		if err := cursor.All(ctx, &existing); err != nil {
			return nil, fmt.Errorf("decode schedules: %w", err)
		}

		for _, e := range existing {
			if model.Overlaps(schedule.Date, schedule.StartTime, schedule.EndTime,
				e.Date, e.StartTime, e.EndTime) {
				return nil, ErrOverlap
			}
		}

		schedule.CreatedAt = time.Now()
		schedule.UpdatedAt = time.Now()
		res, err := s.schedules.InsertOne(ctx, schedule)
		if err != nil {
			return nil, err
		}
		schedule.ID = res.InsertedID.(bson.ObjectID)
		return nil, nil
	})
	return err
}

// GetByID returns the schedule with the given ID, or nil if not found.
func (s *ScheduleStore) GetByID(ctx context.Context, id bson.ObjectID) (*model.Schedule, error) {
	var schedule model.Schedule
	err := s.schedules.FindOne(ctx, bson.M{"_id": id}).Decode(&schedule)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find schedule: %w", err)
	}
	return &schedule, nil
}

// ListRange returns all shifts with dates in [from, to], joined with the
// owning user's name.
func (s *ScheduleStore) ListRange(ctx context.Context, from, to string) ([]*model.ScheduleWithStaff, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"date": bson.M{"$gte": from, "$lte": to}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "staff",
			"foreignField": "_id",
			"as":           "staff_doc",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$staff_doc", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$project", Value: bson.M{
			"staff":      1,
			"staff_name": "$staff_doc.username",
			"date":       1,
			"start_time": 1,
			"end_time":   1,
			"status":     1,
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "date", Value: 1}, {Key: "start_time", Value: 1}}}},
	}

	cursor, err := s.schedules.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate schedules: %w", err)
	}
	var results []*model.ScheduleWithStaff
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("decode schedules: %w", err)
	}
	return results, nil
}

// SetStatus moves a schedule from "scheduled" to the given status. Returns
// false when the schedule was not found in the "scheduled" state, so a
// completed or cancelled shift cannot be transitioned again.
func (s *ScheduleStore) SetStatus(ctx context.Context, id bson.ObjectID, status model.ScheduleStatus) (bool, error) {
	res, err := s.schedules.UpdateOne(ctx,
		bson.M{"_id": id, "status": model.ScheduleStatusScheduled},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}},
	)
	if err != nil {
		return false, fmt.Errorf("update schedule status: %w", err)
	}
	return res.MatchedCount == 1, nil
}
