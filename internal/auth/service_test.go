package auth_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repdesk/repdesk/internal/auth"
	"github.com/repdesk/repdesk/internal/shared"
)

type failingRepo struct{ stubRepo }

func (failingRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	return nil, errors.New("connection reset")
}

func TestAuthenticateNormalizesEmail(t *testing.T) {
	svc := auth.NewService(&stubRepo{user: activeUser(t)})
	user, err := svc.Authenticate(context.Background(), "  SARA@clinic.test ", "correctpass")
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.ID)
}

func TestAuthenticateFailures(t *testing.T) {
	inactive := activeUser(t)
	inactive.IsActive = false

	cases := map[string]struct {
		repo     auth.Repository
		email    string
		password string
	}{
		"unknown email":  {&stubRepo{user: activeUser(t)}, "nobody@clinic.test", "correctpass"},
		"wrong password": {&stubRepo{user: activeUser(t)}, "sara@clinic.test", "nope"},
		"inactive":       {&stubRepo{user: inactive}, "sara@clinic.test", "correctpass"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := auth.NewService(tc.repo).Authenticate(context.Background(), tc.email, tc.password)
			assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
		})
	}
}

func TestAuthenticateSurfacesStorageErrors(t *testing.T) {
	_, err := auth.NewService(&failingRepo{}).Authenticate(context.Background(), "sara@clinic.test", "correctpass")
	require.Error(t, err)
	assert.NotErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestSessionBookkeeping(t *testing.T) {
	repo := &stubRepo{user: activeUser(t)}
	svc := auth.NewService(repo)
	ctx := context.Background()

	assert.Error(t, svc.RegisterSession(ctx, "", 42, time.Now(), "", ""))
	require.NoError(t, svc.RegisterSession(ctx, "s1", 42, time.Now().Add(time.Hour), "10.0.0.1", strings.Repeat("é", 400)))
	assert.Equal(t, int64(42), repo.sessions["s1"])

	require.NoError(t, svc.RemoveSession(ctx, "s1"))
	assert.NotContains(t, repo.sessions, "s1")
	assert.NoError(t, svc.RemoveSession(ctx, ""))
}

func TestHashPassword(t *testing.T) {
	_, err := auth.HashPassword("short")
	assert.ErrorIs(t, err, auth.ErrWeakPassword)

	hash, err := auth.HashPassword("long-enough")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2"))
}
