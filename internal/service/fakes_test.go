package service

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"martshift/internal/model"
	"martshift/internal/store"
)

// In-memory store fakes. They mirror the conditional-update semantics of
// the mongo-backed stores so workflow races are observable in tests.

type fakeScheduleStore struct {
	schedules map[bson.ObjectID]*model.Schedule
}

func newFakeScheduleStore() *fakeScheduleStore {
	return &fakeScheduleStore{schedules: make(map[bson.ObjectID]*model.Schedule)}
}

func (f *fakeScheduleStore) CreateIfNoOverlap(_ context.Context, schedule *model.Schedule) error {
	for _, e := range f.schedules {
		if e.Staff != schedule.Staff || e.Date != schedule.Date || e.Status == model.ScheduleStatusCancelled {
			continue
		}
		if model.Overlaps(schedule.Date, schedule.StartTime, schedule.EndTime,
			e.Date, e.StartTime, e.EndTime) {
			return store.ErrOverlap
		}
	}
	schedule.ID = bson.NewObjectID()
	schedule.CreatedAt = time.Now()
	schedule.UpdatedAt = time.Now()
	f.schedules[schedule.ID] = schedule
	return nil
}

func (f *fakeScheduleStore) GetByID(_ context.Context, id bson.ObjectID) (*model.Schedule, error) {
	s, ok := f.schedules[id]
	if !ok {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (f *fakeScheduleStore) ListRange(_ context.Context, from, to string) ([]*model.ScheduleWithStaff, error) {
	var out []*model.ScheduleWithStaff
	for _, s := range f.schedules {
		if s.Date < from || s.Date > to {
			continue
		}
		out = append(out, &model.ScheduleWithStaff{
			ID:        s.ID,
			StaffID:   s.Staff,
			Date:      s.Date,
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
			Status:    s.Status,
		})
	}
	return out, nil
}

func (f *fakeScheduleStore) SetStatus(_ context.Context, id bson.ObjectID, status model.ScheduleStatus) (bool, error) {
	s, ok := f.schedules[id]
	if !ok || s.Status != model.ScheduleStatusScheduled {
		return false, nil
	}
	s.Status = status
	return true, nil
}

type fakeSubStore struct {
	requests  map[bson.ObjectID]*model.SubstituteRequest
	schedules *fakeScheduleStore
}

func newFakeSubStore(schedules *fakeScheduleStore) *fakeSubStore {
	return &fakeSubStore{
		requests:  make(map[bson.ObjectID]*model.SubstituteRequest),
		schedules: schedules,
	}
}

func (f *fakeSubStore) Create(_ context.Context, req *model.SubstituteRequest) error {
	req.ID = bson.NewObjectID()
	req.CreatedAt = time.Now()
	req.UpdatedAt = time.Now()
	copied := *req
	f.requests[req.ID] = &copied
	return nil
}

func (f *fakeSubStore) GetByID(_ context.Context, id bson.ObjectID) (*model.SubstituteRequest, error) {
	r, ok := f.requests[id]
	if !ok {
		return nil, nil
	}
	copied := *r
	return &copied, nil
}

func (f *fakeSubStore) Open(_ context.Context, id bson.ObjectID) (bool, error) {
	r, ok := f.requests[id]
	if !ok || r.Status != model.SubStatusPending {
		return false, nil
	}
	r.OpenForRecruiting = true
	return true, nil
}

func (f *fakeSubStore) Accept(_ context.Context, id, substitute bson.ObjectID) (*model.SubstituteRequest, error) {
	r, ok := f.requests[id]
	if !ok || r.Status != model.SubStatusPending || !r.OpenForRecruiting {
		return nil, nil
	}
	r.Status = model.SubStatusAccepted
	r.Substitute = &substitute
	copied := *r
	return &copied, nil
}

func (f *fakeSubStore) Reject(_ context.Context, id bson.ObjectID) (bool, error) {
	r, ok := f.requests[id]
	if !ok || r.Status != model.SubStatusPending {
		return false, nil
	}
	r.Status = model.SubStatusRejected
	return true, nil
}

func (f *fakeSubStore) Finalize(_ context.Context, id bson.ObjectID) (*model.SubstituteRequest, error) {
	r, ok := f.requests[id]
	if !ok {
		return nil, nil
	}
	next, err := r.Status.Transition(model.SubStatusApproved)
	if err != nil {
		return nil, err
	}
	r.Status = next
	if s, ok := f.schedules.schedules[r.Schedule]; ok {
		s.Staff = *r.Substitute
	}
	copied := *r
	return &copied, nil
}

func (f *fakeSubStore) List(_ context.Context, filter bson.M) ([]*model.SubstituteRequest, error) {
	var out []*model.SubstituteRequest
	for _, r := range f.requests {
		if matchSubFilter(r, filter) {
			copied := *r
			out = append(out, &copied)
		}
	}
	return out, nil
}

// matchSubFilter interprets the filter shapes the substitute service
// actually builds.
func matchSubFilter(r *model.SubstituteRequest, filter bson.M) bool {
	for key, cond := range filter {
		switch key {
		case "status":
			switch v := cond.(type) {
			case model.SubStatus:
				if r.Status != v {
					return false
				}
			case bson.M:
				in, _ := v["$in"].(bson.A)
				found := false
				for _, s := range in {
					if r.Status == s.(model.SubStatus) {
						found = true
						break
					}
				}
				if !found {
					return false
				}
			}
		case "open_for_recruiting":
			if r.OpenForRecruiting != cond.(bool) {
				return false
			}
		case "requester":
			switch v := cond.(type) {
			case bson.ObjectID:
				if r.Requester != v {
					return false
				}
			case bson.M:
				if ne, ok := v["$ne"].(bson.ObjectID); ok && r.Requester == ne {
					return false
				}
			}
		}
	}
	return true
}

type fakeProductStore struct {
	products map[bson.ObjectID]*model.Product
}

func newFakeProductStore() *fakeProductStore {
	return &fakeProductStore{products: make(map[bson.ObjectID]*model.Product)}
}

func (f *fakeProductStore) Create(_ context.Context, product *model.Product) error {
	product.ID = bson.NewObjectID()
	product.CreatedAt = time.Now()
	product.UpdatedAt = time.Now()
	copied := *product
	f.products[product.ID] = &copied
	return nil
}

func (f *fakeProductStore) Search(_ context.Context, query, category string) ([]*model.Product, error) {
	var out []*model.Product
	for _, p := range f.products {
		if p.Name == "" {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		if query != "" && !containsFold(p.Name, query) {
			continue
		}
		copied := *p
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeProductStore) AdjustStock(_ context.Context, id bson.ObjectID, delta int64, expiry *time.Time) (*model.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, nil
	}
	p.Stock += delta
	if expiry != nil {
		p.ExpiryDate = expiry
	}
	copied := *p
	return &copied, nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

type fakeUserStore struct {
	users    map[bson.ObjectID]*model.User
	sessions map[string]*model.Session
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users:    make(map[bson.ObjectID]*model.User),
		sessions: make(map[string]*model.Session),
	}
}

func (f *fakeUserStore) CreateUser(_ context.Context, user *model.User) error {
	user.ID = bson.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserStore) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) GetUserByID(_ context.Context, id bson.ObjectID) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserStore) CreateSession(_ context.Context, session *model.Session) error {
	session.ID = bson.NewObjectID()
	session.CreatedAt = time.Now()
	copied := *session
	f.sessions[session.Token] = &copied
	return nil
}

func (f *fakeUserStore) GetSessionByToken(_ context.Context, token string) (*model.Session, error) {
	s, ok := f.sessions[token]
	if !ok || s.ExpiresAt.Before(time.Now()) {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}
