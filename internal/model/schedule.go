package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type ScheduleStatus string

const (
	ScheduleStatusScheduled ScheduleStatus = "scheduled"
	ScheduleStatusCompleted ScheduleStatus = "completed"
	ScheduleStatusCancelled ScheduleStatus = "cancelled"
)

// Schedule is one work shift for one staff member on one date. Shifts are
// never deleted, only status-transitioned; ownership changes only through
// an approved substitute request.
type Schedule struct {
	ID        bson.ObjectID  `bson:"_id,omitempty" json:"id"`
	Staff     bson.ObjectID  `bson:"staff" json:"staffId"`
	Date      string         `bson:"date" json:"date"`           // YYYY-MM-DD
	StartTime string         `bson:"start_time" json:"startTime"` // HH:MM
	EndTime   string         `bson:"end_time" json:"endTime"`     // HH:MM
	Status    ScheduleStatus `bson:"status" json:"status"`
	CreatedAt time.Time      `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time      `bson:"updated_at" json:"updated_at"`
}

// ScheduleWithStaff is a Schedule joined with the owning user's name, for
// the weekly rota view.
type ScheduleWithStaff struct {
	ID        bson.ObjectID  `bson:"_id" json:"id"`
	StaffID   bson.ObjectID  `bson:"staff" json:"staffId"`
	StaffName string         `bson:"staff_name" json:"staffName"`
	Date      string         `bson:"date" json:"date"`
	StartTime string         `bson:"start_time" json:"startTime"`
	EndTime   string         `bson:"end_time" json:"endTime"`
	Status    ScheduleStatus `bson:"status" json:"status"`
}

// Overlaps reports whether two shift intervals conflict. Each interval is
// anchored to its stated date; an end at or before the start means the
// shift runs past midnight into the following day. Intervals are half-open,
// so a shift ending exactly when another begins does not conflict.
//
// Callers compare candidates against existing shifts on the same calendar
// date only. An overnight shift's spill into the next date is therefore not
// checked against that next date's entries; this is a known scope limit.
func Overlaps(date1, start1, end1, date2, start2, end2 string) bool {
	s1, e1, ok := shiftInterval(date1, start1, end1)
	if !ok {
		return false
	}
	s2, e2, ok := shiftInterval(date2, start2, end2)
	if !ok {
		return false
	}
	return s1.Before(e2) && s2.Before(e1)
}

func shiftInterval(date, start, end string) (time.Time, time.Time, bool) {
	s, err := time.ParseInLocation("2006-01-02 15:04", date+" "+start, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	e, err := time.ParseInLocation("2006-01-02 15:04", date+" "+end, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	if !e.After(s) {
		e = e.AddDate(0, 0, 1) // overnight shift
	}
	return s, e, true
}
