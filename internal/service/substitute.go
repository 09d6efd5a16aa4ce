package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"

	"martshift/internal/apperr"
	"martshift/internal/model"
)

type SubstituteService struct {
	subs      SubstituteStore
	schedules ScheduleStore
}

func NewSubstituteService(subs SubstituteStore, schedules ScheduleStore) *SubstituteService {
	return &SubstituteService{subs: subs, schedules: schedules}
}

// Request opens the workflow: the shift's current owner asks for a
// substitute. The request starts pending and closed for recruiting until
// an administrator authorizes it.
func (s *SubstituteService) Request(ctx context.Context, ident model.Identity, scheduleID, reason string) (*model.SubstituteRequest, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, apperr.Validation("error.sub.reason_required")
	}

	oid, err := bson.ObjectIDFromHex(scheduleID)
	if err != nil {
		return nil, apperr.NotFound("error.schedule.not_found")
	}
	schedule, err := s.schedules.GetByID(ctx, oid)
	if err != nil {
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	if schedule == nil {
		return nil, apperr.NotFound("error.schedule.not_found")
	}
	if schedule.Staff != ident.UserID {
		return nil, apperr.Permission("error.sub.not_shift_owner")
	}

	req := &model.SubstituteRequest{
		Schedule:  schedule.ID,
		Requester: ident.UserID,
		Reason:    reason,
		Status:    model.SubStatusPending,
	}
	if err := s.subs.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("create substitute request: %w", err)
	}
	return req, nil
}

// OpenRecruiting authorizes recruiting for a pending request, making it
// visible and acceptable to other staff. Administrator only. This does not
// advance the workflow status.
func (s *SubstituteService) OpenRecruiting(ctx context.Context, ident model.Identity, requestID string) (*model.SubstituteRequest, error) {
	if !ident.IsOwner() {
		return nil, apperr.Permission("error.auth.owner_only")
	}

	oid, err := bson.ObjectIDFromHex(requestID)
	if err != nil {
		return nil, apperr.NotFound("error.sub.not_found")
	}

	ok, err := s.subs.Open(ctx, oid)
	if err != nil {
		return nil, fmt.Errorf("open request: %w", err)
	}
	if !ok {
		return nil, s.missingOrWrongState(ctx, oid, "error.sub.not_pending")
	}
	return s.subs.GetByID(ctx, oid)
}

// Accept records the caller as the substitute for an open pending request.
// The requester cannot accept their own request, and a request already
// accepted or resolved conflicts.
func (s *SubstituteService) Accept(ctx context.Context, ident model.Identity, requestID string) (*model.SubstituteRequest, error) {
	oid, err := bson.ObjectIDFromHex(requestID)
	if err != nil {
		return nil, apperr.NotFound("error.sub.not_found")
	}

	req, err := s.subs.GetByID(ctx, oid)
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	if req == nil {
		return nil, apperr.NotFound("error.sub.not_found")
	}
	if req.Requester == ident.UserID {
		return nil, apperr.Permission("error.sub.self_accept")
	}

	accepted, err := s.subs.Accept(ctx, oid, ident.UserID)
	if err != nil {
		return nil, fmt.Errorf("accept request: %w", err)
	}
	if accepted == nil {
		// The conditional update missed: resolved, already accepted, or
		// not yet opened. Re-read to report which.
		req, err = s.subs.GetByID(ctx, oid)
		if err != nil {
			return nil, fmt.Errorf("get request: %w", err)
		}
		if req == nil {
			return nil, apperr.NotFound("error.sub.not_found")
		}
		if req.Status != model.SubStatusPending {
			return nil, apperr.Conflict("error.sub.already_accepted")
		}
		return nil, apperr.Conflict("error.sub.not_open")
	}
	return accepted, nil
}

// Reject declines recruiting for a pending request. Administrator only.
func (s *SubstituteService) Reject(ctx context.Context, ident model.Identity, requestID string) (*model.SubstituteRequest, error) {
	if !ident.IsOwner() {
		return nil, apperr.Permission("error.auth.owner_only")
	}

	oid, err := bson.ObjectIDFromHex(requestID)
	if err != nil {
		return nil, apperr.NotFound("error.sub.not_found")
	}

	ok, err := s.subs.Reject(ctx, oid)
	if err != nil {
		return nil, fmt.Errorf("reject request: %w", err)
	}
	if !ok {
		return nil, s.missingOrWrongState(ctx, oid, "error.sub.not_pending")
	}
	return s.subs.GetByID(ctx, oid)
}

// Finalize approves an accepted request and reassigns the shift to the
// substitute, atomically. Administrator only.
func (s *SubstituteService) Finalize(ctx context.Context, ident model.Identity, requestID string) (*model.SubstituteRequest, error) {
	if !ident.IsOwner() {
		return nil, apperr.Permission("error.auth.owner_only")
	}

	oid, err := bson.ObjectIDFromHex(requestID)
	if err != nil {
		return nil, apperr.NotFound("error.sub.not_found")
	}

	req, err := s.subs.Finalize(ctx, oid)
	var invalid *model.InvalidTransitionError
	if errors.As(err, &invalid) {
		return nil, apperr.Wrap(apperr.KindConflict, "error.sub.not_accepted", err)
	}
	if err != nil {
		return nil, fmt.Errorf("finalize request: %w", err)
	}
	if req == nil {
		return nil, apperr.NotFound("error.sub.not_found")
	}
	return req, nil
}

// OwnerListing is the administrator's split view of the workflow.
type OwnerListing struct {
	Recruiting []*model.SubstituteRequest `json:"recruiting"`
	Approved   []*model.SubstituteRequest `json:"approved"`
}

// ListForOwner returns in-flight requests (pending or accepted) separately
// from approved ones. Administrator only.
func (s *SubstituteService) ListForOwner(ctx context.Context, ident model.Identity) (*OwnerListing, error) {
	if !ident.IsOwner() {
		return nil, apperr.Permission("error.auth.owner_only")
	}

	recruiting, err := s.subs.List(ctx, bson.M{
		"status": bson.M{"$in": bson.A{model.SubStatusPending, model.SubStatusAccepted}},
	})
	if err != nil {
		return nil, fmt.Errorf("list recruiting requests: %w", err)
	}
	approved, err := s.subs.List(ctx, bson.M{"status": model.SubStatusApproved})
	if err != nil {
		return nil, fmt.Errorf("list approved requests: %w", err)
	}
	return &OwnerListing{Recruiting: recruiting, Approved: approved}, nil
}

// ListOpen returns requests the caller could accept: open for recruiting,
// still pending, and raised by someone else.
func (s *SubstituteService) ListOpen(ctx context.Context, ident model.Identity) ([]*model.SubstituteRequest, error) {
	return s.subs.List(ctx, bson.M{
		"status":              model.SubStatusPending,
		"open_for_recruiting": true,
		"requester":           bson.M{"$ne": ident.UserID},
	})
}

// ListMine returns the caller's own requests, newest first.
func (s *SubstituteService) ListMine(ctx context.Context, ident model.Identity) ([]*model.SubstituteRequest, error) {
	return s.subs.List(ctx, bson.M{"requester": ident.UserID})
}

func (s *SubstituteService) missingOrWrongState(ctx context.Context, id bson.ObjectID, wrongStateID string) error {
	req, err := s.subs.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get request: %w", err)
	}
	if req == nil {
		return apperr.NotFound("error.sub.not_found")
	}
	return apperr.Conflict(wrongStateID)
}
