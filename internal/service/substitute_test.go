package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"martshift/internal/apperr"
	"martshift/internal/model"
)

func staffIdentity(name string) model.Identity {
	return model.Identity{UserID: bson.NewObjectID(), Username: name, Role: model.RoleStaff}
}

func ownerIdentity() model.Identity {
	return model.Identity{UserID: bson.NewObjectID(), Username: "boss", Role: model.RoleOwner}
}

func seedShift(t *testing.T, schedules *fakeScheduleStore, staff bson.ObjectID, date, start, end string) *model.Schedule {
	t.Helper()
	schedule := &model.Schedule{
		Staff:     staff,
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Status:    model.ScheduleStatusScheduled,
	}
	require.NoError(t, schedules.CreateIfNoOverlap(context.Background(), schedule))
	return schedule
}

func TestRequestRequiresReason(t *testing.T) {
	schedules := newFakeScheduleStore()
	svc := NewSubstituteService(newFakeSubStore(schedules), schedules)
	staffA := staffIdentity("alice")
	shift := seedShift(t, schedules, staffA.UserID, "2024-06-01", "09:00", "17:00")

	_, err := svc.Request(context.Background(), staffA, shift.ID.Hex(), "   ")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestRequestRequiresShiftOwnership(t *testing.T) {
	schedules := newFakeScheduleStore()
	svc := NewSubstituteService(newFakeSubStore(schedules), schedules)
	staffA := staffIdentity("alice")
	staffB := staffIdentity("bob")
	shift := seedShift(t, schedules, staffA.UserID, "2024-06-01", "09:00", "17:00")

	_, err := svc.Request(context.Background(), staffB, shift.ID.Hex(), "sick")
	assert.Equal(t, apperr.KindPermission, apperr.KindOf(err))
}

func TestRequestUnknownSchedule(t *testing.T) {
	schedules := newFakeScheduleStore()
	svc := NewSubstituteService(newFakeSubStore(schedules), schedules)

	_, err := svc.Request(context.Background(), staffIdentity("alice"), bson.NewObjectID().Hex(), "sick")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestAcceptRequiresOpenRecruiting(t *testing.T) {
	ctx := context.Background()
	schedules := newFakeScheduleStore()
	subs := newFakeSubStore(schedules)
	svc := NewSubstituteService(subs, schedules)
	staffA := staffIdentity("alice")
	staffB := staffIdentity("bob")
	shift := seedShift(t, schedules, staffA.UserID, "2024-06-01", "09:00", "17:00")

	req, err := svc.Request(ctx, staffA, shift.ID.Hex(), "sick")
	require.NoError(t, err)

	// Not yet authorized by the administrator.
	_, err = svc.Accept(ctx, staffB, req.ID.Hex())
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestAcceptRejectsRequester(t *testing.T) {
	ctx := context.Background()
	schedules := newFakeScheduleStore()
	subs := newFakeSubStore(schedules)
	svc := NewSubstituteService(subs, schedules)
	staffA := staffIdentity("alice")
	shift := seedShift(t, schedules, staffA.UserID, "2024-06-01", "09:00", "17:00")

	req, err := svc.Request(ctx, staffA, shift.ID.Hex(), "sick")
	require.NoError(t, err)
	_, err = svc.OpenRecruiting(ctx, ownerIdentity(), req.ID.Hex())
	require.NoError(t, err)

	_, err = svc.Accept(ctx, staffA, req.ID.Hex())
	assert.Equal(t, apperr.KindPermission, apperr.KindOf(err))
}

func TestDoubleAcceptConflicts(t *testing.T) {
	ctx := context.Background()
	schedules := newFakeScheduleStore()
	subs := newFakeSubStore(schedules)
	svc := NewSubstituteService(subs, schedules)
	staffA := staffIdentity("alice")
	staffB := staffIdentity("bob")
	staffC := staffIdentity("carol")
	shift := seedShift(t, schedules, staffA.UserID, "2024-06-01", "09:00", "17:00")

	req, err := svc.Request(ctx, staffA, shift.ID.Hex(), "sick")
	require.NoError(t, err)
	_, err = svc.OpenRecruiting(ctx, ownerIdentity(), req.ID.Hex())
	require.NoError(t, err)

	accepted, err := svc.Accept(ctx, staffB, req.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, model.SubStatusAccepted, accepted.Status)
	require.NotNil(t, accepted.Substitute)
	assert.Equal(t, staffB.UserID, *accepted.Substitute)

	_, err = svc.Accept(ctx, staffC, req.ID.Hex())
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestFinalizeRequiresAcceptedState(t *testing.T) {
	ctx := context.Background()
	schedules := newFakeScheduleStore()
	subs := newFakeSubStore(schedules)
	svc := NewSubstituteService(subs, schedules)
	staffA := staffIdentity("alice")
	owner := ownerIdentity()
	shift := seedShift(t, schedules, staffA.UserID, "2024-06-01", "09:00", "17:00")

	req, err := svc.Request(ctx, staffA, shift.ID.Hex(), "sick")
	require.NoError(t, err)

	_, err = svc.Finalize(ctx, owner, req.ID.Hex())
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestFinalizeRequiresOwnerRole(t *testing.T) {
	schedules := newFakeScheduleStore()
	svc := NewSubstituteService(newFakeSubStore(schedules), schedules)

	_, err := svc.Finalize(context.Background(), staffIdentity("bob"), bson.NewObjectID().Hex())
	assert.Equal(t, apperr.KindPermission, apperr.KindOf(err))
}

func TestRejectPendingRequest(t *testing.T) {
	ctx := context.Background()
	schedules := newFakeScheduleStore()
	subs := newFakeSubStore(schedules)
	svc := NewSubstituteService(subs, schedules)
	staffA := staffIdentity("alice")
	owner := ownerIdentity()
	shift := seedShift(t, schedules, staffA.UserID, "2024-06-01", "09:00", "17:00")

	req, err := svc.Request(ctx, staffA, shift.ID.Hex(), "sick")
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, owner, req.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, model.SubStatusRejected, rejected.Status)

	// A rejected request is terminal.
	_, err = svc.Reject(ctx, owner, req.ID.Hex())
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestWorkflowEndToEnd(t *testing.T) {
	ctx := context.Background()
	schedules := newFakeScheduleStore()
	subs := newFakeSubStore(schedules)
	svc := NewSubstituteService(subs, schedules)

	staffA := staffIdentity("alice")
	staffB := staffIdentity("bob")
	owner := ownerIdentity()
	shift := seedShift(t, schedules, staffA.UserID, "2024-06-01", "09:00", "17:00")

	req, err := svc.Request(ctx, staffA, shift.ID.Hex(), "sick")
	require.NoError(t, err)
	assert.Equal(t, model.SubStatusPending, req.Status)
	assert.False(t, req.OpenForRecruiting)
	assert.Nil(t, req.Substitute)

	opened, err := svc.OpenRecruiting(ctx, owner, req.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, model.SubStatusPending, opened.Status)
	assert.True(t, opened.OpenForRecruiting)

	accepted, err := svc.Accept(ctx, staffB, req.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, model.SubStatusAccepted, accepted.Status)
	require.NotNil(t, accepted.Substitute)
	assert.Equal(t, staffB.UserID, *accepted.Substitute)

	approved, err := svc.Finalize(ctx, owner, req.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, model.SubStatusApproved, approved.Status)

	reassigned, err := schedules.GetByID(ctx, shift.ID)
	require.NoError(t, err)
	assert.Equal(t, staffB.UserID, reassigned.Staff, "shift owner must equal the substitute after approval")
}

func TestOwnerListingSplitsByStatus(t *testing.T) {
	ctx := context.Background()
	schedules := newFakeScheduleStore()
	subs := newFakeSubStore(schedules)
	svc := NewSubstituteService(subs, schedules)
	staffA := staffIdentity("alice")
	staffB := staffIdentity("bob")
	owner := ownerIdentity()

	shift1 := seedShift(t, schedules, staffA.UserID, "2024-06-01", "09:00", "17:00")
	shift2 := seedShift(t, schedules, staffA.UserID, "2024-06-02", "09:00", "17:00")

	pending, err := svc.Request(ctx, staffA, shift1.ID.Hex(), "sick")
	require.NoError(t, err)

	done, err := svc.Request(ctx, staffA, shift2.ID.Hex(), "family visit")
	require.NoError(t, err)
	_, err = svc.OpenRecruiting(ctx, owner, done.ID.Hex())
	require.NoError(t, err)
	_, err = svc.Accept(ctx, staffB, done.ID.Hex())
	require.NoError(t, err)
	_, err = svc.Finalize(ctx, owner, done.ID.Hex())
	require.NoError(t, err)

	listing, err := svc.ListForOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, listing.Recruiting, 1)
	assert.Equal(t, pending.ID, listing.Recruiting[0].ID)
	require.Len(t, listing.Approved, 1)
	assert.Equal(t, done.ID, listing.Approved[0].ID)

	_, err = svc.ListForOwner(ctx, staffA)
	assert.Equal(t, apperr.KindPermission, apperr.KindOf(err))
}

func TestListOpenExcludesOwnAndClosedRequests(t *testing.T) {
	ctx := context.Background()
	schedules := newFakeScheduleStore()
	subs := newFakeSubStore(schedules)
	svc := NewSubstituteService(subs, schedules)
	staffA := staffIdentity("alice")
	staffB := staffIdentity("bob")
	owner := ownerIdentity()

	shift1 := seedShift(t, schedules, staffA.UserID, "2024-06-01", "09:00", "17:00")
	shift2 := seedShift(t, schedules, staffB.UserID, "2024-06-01", "09:00", "17:00")

	reqA, err := svc.Request(ctx, staffA, shift1.ID.Hex(), "sick")
	require.NoError(t, err)
	_, err = svc.OpenRecruiting(ctx, owner, reqA.ID.Hex())
	require.NoError(t, err)

	// B's own request stays closed; it must not show up anywhere.
	_, err = svc.Request(ctx, staffB, shift2.ID.Hex(), "appointment")
	require.NoError(t, err)

	open, err := svc.ListOpen(ctx, staffB)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, reqA.ID, open[0].ID)

	// The requester does not see their own request in the open list.
	open, err = svc.ListOpen(ctx, staffA)
	require.NoError(t, err)
	assert.Empty(t, open)
}
