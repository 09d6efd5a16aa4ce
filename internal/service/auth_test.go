package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martshift/internal/apperr"
	"martshift/internal/model"
)

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(newFakeUserStore(), time.Hour)

	user, err := svc.Register(ctx, "alice", "alice@example.com", "secret", "")
	require.NoError(t, err)
	assert.Equal(t, model.RoleStaff, user.Role, "role defaults to staff")
	assert.NotEqual(t, "secret", user.Password, "password must be stored hashed")

	token, loggedIn, err := svc.Login(ctx, "alice", "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, loggedIn.ID)

	ident, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, ident.UserID)
	assert.Equal(t, "alice", ident.Username)
	assert.Equal(t, model.RoleStaff, ident.Role)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(newFakeUserStore(), time.Hour)

	_, err := svc.Register(ctx, "", "a@example.com", "secret", "")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.Register(ctx, "alice", "a@example.com", "secret", "superuser")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestRegisterDuplicates(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(newFakeUserStore(), time.Hour)

	_, err := svc.Register(ctx, "alice", "alice@example.com", "secret", "")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "other@example.com", "secret", "")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.Register(ctx, "bob", "alice@example.com", "secret", "")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestLoginFailures(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(newFakeUserStore(), time.Hour)

	_, _, err := svc.Login(ctx, "nobody", "secret")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.Register(ctx, "alice", "alice@example.com", "secret", "")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "alice", "wrong")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore()
	svc := NewAuthService(store, time.Hour)

	_, err := svc.Authenticate(ctx, "")
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))

	_, err = svc.Authenticate(ctx, "no-such-token")
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestAuthenticateRejectsExpiredSession(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore()
	svc := NewAuthService(store, -time.Minute) // sessions expire immediately

	_, err := svc.Register(ctx, "alice", "alice@example.com", "secret", "")
	require.NoError(t, err)
	token, _, err := svc.Login(ctx, "alice", "secret")
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, token)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}
