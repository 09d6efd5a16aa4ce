package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Role string

const (
	RoleStaff Role = "staff"
	RoleOwner Role = "owner" // store administrator
)

type User struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Username  string        `bson:"username" json:"username"`
	Email     string        `bson:"email" json:"email"`
	Password  string        `bson:"password" json:"-"` // bcrypt hash
	Role      Role          `bson:"role" json:"role"`
	CreatedAt time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at" json:"updated_at"`
}

// Session is an opaque bearer token issued at login. Expired sessions are
// reaped by a TTL index on expires_at.
type Session struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"-"`
	Token     string        `bson:"token" json:"token"`
	UserID    bson.ObjectID `bson:"user_id" json:"-"`
	ExpiresAt time.Time     `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time     `bson:"created_at" json:"-"`
}

// Identity is the verified caller, resolved by the auth middleware and
// passed explicitly into every service operation.
type Identity struct {
	UserID   bson.ObjectID
	Username string
	Role     Role
}

func (id Identity) IsOwner() bool {
	return id.Role == RoleOwner
}
