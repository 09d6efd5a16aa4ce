package service

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"martshift/internal/model"
)

// Store interfaces match the concrete mongo-backed stores so services can
// be exercised with in-memory fakes in tests.

type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id bson.ObjectID) (*model.User, error)
	CreateSession(ctx context.Context, session *model.Session) error
	GetSessionByToken(ctx context.Context, token string) (*model.Session, error)
}

type ScheduleStore interface {
	CreateIfNoOverlap(ctx context.Context, schedule *model.Schedule) error
	GetByID(ctx context.Context, id bson.ObjectID) (*model.Schedule, error)
	ListRange(ctx context.Context, from, to string) ([]*model.ScheduleWithStaff, error)
	SetStatus(ctx context.Context, id bson.ObjectID, status model.ScheduleStatus) (bool, error)
}

type SubstituteStore interface {
	Create(ctx context.Context, req *model.SubstituteRequest) error
	GetByID(ctx context.Context, id bson.ObjectID) (*model.SubstituteRequest, error)
	Open(ctx context.Context, id bson.ObjectID) (bool, error)
	Accept(ctx context.Context, id, substitute bson.ObjectID) (*model.SubstituteRequest, error)
	Reject(ctx context.Context, id bson.ObjectID) (bool, error)
	Finalize(ctx context.Context, id bson.ObjectID) (*model.SubstituteRequest, error)
	List(ctx context.Context, filter bson.M) ([]*model.SubstituteRequest, error)
}

type ProductStore interface {
	Create(ctx context.Context, product *model.Product) error
	Search(ctx context.Context, query, category string) ([]*model.Product, error)
	AdjustStock(ctx context.Context, id bson.ObjectID, delta int64, expiry *time.Time) (*model.Product, error)
}
