package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"martshift/internal/apperr"
	"martshift/internal/model"
)

type AuthService struct {
	store      UserStore
	sessionTTL time.Duration
}

func NewAuthService(store UserStore, sessionTTL time.Duration) *AuthService {
	return &AuthService{store: store, sessionTTL: sessionTTL}
}

// Register creates a new account. Role defaults to staff.
func (s *AuthService) Register(ctx context.Context, username, email, password string, role model.Role) (*model.User, error) {
	if username == "" || email == "" || password == "" {
		return nil, apperr.Validation("error.auth.missing_fields")
	}
	if role == "" {
		role = model.RoleStaff
	}
	if role != model.RoleStaff && role != model.RoleOwner {
		return nil, apperr.Validation("error.bad_request")
	}

	existing, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if existing != nil {
		return nil, apperr.Validation("error.auth.username_taken")
	}

	existing, err = s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing != nil {
		return nil, apperr.Validation("error.auth.email_taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username: username,
		Email:    email,
		Password: string(hash),
		Role:     role,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		// Unique indexes on username/email backstop the racy pre-checks.
		return nil, apperr.Wrap(apperr.KindValidation, "error.auth.username_taken", err)
	}
	return user, nil
}

// Login verifies the credentials and issues a new session token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *model.User, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return "", nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return "", nil, apperr.Validation("error.auth.no_such_user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, apperr.Validation("error.auth.wrong_password")
	}

	session := &model.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.sessionTTL),
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return "", nil, fmt.Errorf("create session: %w", err)
	}
	return session.Token, user, nil
}

// Authenticate resolves a bearer token to the caller's identity.
func (s *AuthService) Authenticate(ctx context.Context, token string) (model.Identity, error) {
	if token == "" {
		return model.Identity{}, apperr.Unauthorized("error.auth.token_missing")
	}

	session, err := s.store.GetSessionByToken(ctx, token)
	if err != nil {
		return model.Identity{}, fmt.Errorf("find session: %w", err)
	}
	if session == nil {
		return model.Identity{}, apperr.Unauthorized("error.auth.token_invalid")
	}

	user, err := s.store.GetUserByID(ctx, session.UserID)
	if err != nil {
		return model.Identity{}, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return model.Identity{}, apperr.Unauthorized("error.auth.token_invalid")
	}

	return model.Identity{UserID: user.ID, Username: user.Username, Role: user.Role}, nil
}
