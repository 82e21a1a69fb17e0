package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spacebook/internal/domain"
	"spacebook/internal/pkg/apperror"
	"spacebook/internal/pkg/jwt"
	"spacebook/internal/testutil"
)

func TestLogin(t *testing.T) {
	store := testutil.NewStore(t)
	users := store.Repos().Users
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	u := &domain.User{Email: "Ada@Example.com", PasswordHash: hash, Role: domain.RoleManager}
	require.NoError(t, users.Create(context.Background(), u))

	jwtSvc := jwt.New("test-secret", time.Hour)
	svc := NewService(users, jwtSvc, nil)

	got, token, err := svc.Login(context.Background(), LoginRequest{Email: "ada@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	claims, err := jwtSvc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, "manager", claims.Role)

	_, _, err = svc.Login(context.Background(), LoginRequest{Email: "ada@example.com", Password: "nope"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, apperror.KindUnauthorized, apperror.KindOf(err))

	_, _, err = svc.Login(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateContact(t *testing.T) {
	store := testutil.NewStore(t)
	f := testutil.Seed(t, store)
	svc := NewService(store.Repos().Users, jwt.New("s", time.Hour), nil)

	token := "device-42"
	u, err := svc.UpdateContact(context.Background(), f.User.ID, UpdateContactRequest{FCMToken: &token})
	require.NoError(t, err)
	assert.Equal(t, "device-42", u.FCMToken)
	assert.Equal(t, f.User.Phone, u.Phone)

	_, err = svc.UpdateContact(context.Background(), 9999, UpdateContactRequest{FCMToken: &token})
	assert.ErrorIs(t, err, ErrUserNotFound)
}
