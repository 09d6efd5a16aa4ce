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

type UserStore struct {
	users    *mongo.Collection
	sessions *mongo.Collection
}

func NewUserStore(ctx context.Context, db *MongoDB) (*UserStore, error) {
	users := db.Collection("users")
	sessions := db.Collection("sessions")

	if _, err := users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}); err != nil {
		return nil, fmt.Errorf("create user indexes: %w", err)
	}

	if _, err := sessions.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			// TTL index; Mongo reaps expired sessions on its own.
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}); err != nil {
		return nil, fmt.Errorf("create session indexes: %w", err)
	}

	return &UserStore{users: users, sessions: sessions}, nil
}

// CreateUser inserts a new user and sets the ID on the struct.
func (s *UserStore) CreateUser(ctx context.Context, user *model.User) error {
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	res, err := s.users.InsertOne(ctx, user)
	if err != nil {
		return err
	}
	user.ID = res.InsertedID.(bson.ObjectID)
	return nil
}

// GetUserByUsername returns the user with the given username, or nil if
// not found.
func (s *UserStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := s.users.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// GetUserByEmail returns the user with the given email, or nil if not found.
func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// GetUserByID returns the user with the given ID, or nil if not found.
func (s *UserStore) GetUserByID(ctx context.Context, id bson.ObjectID) (*model.User, error) {
	var user model.User
	err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// CreateSession stores a new login session.
func (s *UserStore) CreateSession(ctx context.Context, session *model.Session) error {
	session.CreatedAt = time.Now()
	res, err := s.sessions.InsertOne(ctx, session)
	if err != nil {
		return err
	}
	session.ID = res.InsertedID.(bson.ObjectID)
	return nil
}

// GetSessionByToken returns the unexpired session for the token, or nil.
// The TTL reaper runs on a coarse interval, so expiry is checked here too.
func (s *UserStore) GetSessionByToken(ctx context.Context, token string) (*model.Session, error) {
	var session model.Session
	err := s.sessions.FindOne(ctx, bson.M{
		"token":      token,
		"expires_at": bson.M{"$gt": time.Now()},
	}).Decode(&session)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	return &session, nil
}
