package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"martshift/internal/apperr"
	"martshift/internal/model"
	"martshift/internal/store"
)

type ScheduleService struct {
	schedules ScheduleStore
}

func NewScheduleService(schedules ScheduleStore) *ScheduleService {
	return &ScheduleService{schedules: schedules}
}

// Create adds a shift for a staff member. Administrator only. The insert is
// rejected when the shift would overlap an existing one for the same staff
// member and date.
func (s *ScheduleService) Create(ctx context.Context, ident model.Identity, staffID, date, startTime, endTime string) (*model.Schedule, error) {
	if !ident.IsOwner() {
		return nil, apperr.Permission("error.auth.owner_only")
	}
	if staffID == "" || date == "" || startTime == "" || endTime == "" {
		return nil, apperr.Validation("error.schedule.missing_fields")
	}

	staff, err := bson.ObjectIDFromHex(staffID)
	if err != nil {
		return nil, apperr.Validation("error.schedule.missing_fields")
	}
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return nil, apperr.Validation("error.schedule.bad_date")
	}
	if !validClock(startTime) || !validClock(endTime) {
		return nil, apperr.Validation("error.schedule.bad_time")
	}

	schedule := &model.Schedule{
		Staff:     staff,
		Date:      date,
		StartTime: startTime,
		EndTime:   endTime,
		Status:    model.ScheduleStatusScheduled,
	}
	if err := s.schedules.CreateIfNoOverlap(ctx, schedule); err != nil {
		if errors.Is(err, store.ErrOverlap) {
			return nil, apperr.Validation("error.schedule.overlap")
		}
		return nil, fmt.Errorf("create schedule: %w", err)
	}
	return schedule, nil
}

// Week returns the shifts of the calendar week containing the given date
// (today when empty), with staff names populated.
func (s *ScheduleService) Week(ctx context.Context, date string) ([]*model.ScheduleWithStaff, error) {
	anchor := time.Now()
	if date != "" {
		parsed, err := time.Parse(time.DateOnly, date)
		if err != nil {
			return nil, apperr.Validation("error.schedule.bad_date")
		}
		anchor = parsed
	}

	from, to := weekBounds(anchor)
	schedules, err := s.schedules.ListRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return schedules, nil
}

// SetStatus completes or cancels a scheduled shift. Administrator only.
// Shifts are never deleted; cancellation is the only way to retire one.
func (s *ScheduleService) SetStatus(ctx context.Context, ident model.Identity, id string, status model.ScheduleStatus) (*model.Schedule, error) {
	if !ident.IsOwner() {
		return nil, apperr.Permission("error.auth.owner_only")
	}
	if status != model.ScheduleStatusCompleted && status != model.ScheduleStatusCancelled {
		return nil, apperr.Validation("error.schedule.bad_status")
	}

	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.NotFound("error.schedule.not_found")
	}

	ok, err := s.schedules.SetStatus(ctx, oid, status)
	if err != nil {
		return nil, fmt.Errorf("set schedule status: %w", err)
	}
	if !ok {
		schedule, err := s.schedules.GetByID(ctx, oid)
		if err != nil {
			return nil, fmt.Errorf("get schedule: %w", err)
		}
		if schedule == nil {
			return nil, apperr.NotFound("error.schedule.not_found")
		}
		return nil, apperr.Conflict("error.schedule.bad_status")
	}

	schedule, err := s.schedules.GetByID(ctx, oid)
	if err != nil {
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	return schedule, nil
}

func validClock(v string) bool {
	_, err := time.Parse("15:04", v)
	return err == nil
}

// weekBounds returns the Sunday and Saturday of the week containing t, as
// YYYY-MM-DD strings.
func weekBounds(t time.Time) (string, string) {
	start := t.AddDate(0, 0, -int(t.Weekday()))
	end := start.AddDate(0, 0, 6)
	return start.Format(time.DateOnly), end.Format(time.DateOnly)
}
