package auth_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/breezyday/breezyday/internal/auth"
)

func newTestService(now func() time.Time) (*auth.Service, *auth.InMemoryRefreshTokenRepository) {
	refresh := auth.NewInMemoryRefreshTokenRepository()
	svc := auth.NewService(auth.ServiceConfig{
		JWTService:  auth.NewJWTService(auth.JWTConfig{SigningKey: "test-key"}),
		UserRepo:    auth.NewInMemoryUserRepository(),
		RefreshRepo: refresh,
		Logger:      zerolog.Nop(),
		BcryptCost:  bcrypt.MinCost,
		Now:         now,
	})
	return svc, refresh
}

func TestService_Register(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()

	user, err := svc.Register(ctx, "  Alice@Example.COM ", "secret")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(user.ID, "usr_"))
	assert.Len(t, user.ID, 26)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "secret", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret")))

	_, err = svc.Register(ctx, "alice@example.com", "other")
	assert.ErrorIs(t, err, auth.ErrEmailTaken)
}

func TestService_Register_MissingFields(t *testing.T) {
	svc, _ := newTestService(nil)

	_, err := svc.Register(context.Background(), "", "secret")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = svc.Register(context.Background(), "a@b.com", "")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestService_Login(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, "bob@example.com", "hunter2")
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		resp, err := svc.Login(ctx, "BOB@example.com", "hunter2")
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.NotEmpty(t, resp.RefreshToken)
		assert.Equal(t, "Bearer", resp.TokenType)
		assert.Equal(t, "bob@example.com", resp.Email)
		assert.Equal(t, int64(auth.DefaultAccessTokenTTL.Seconds()), resp.ExpiresIn)
		require.NotNil(t, resp.User.LastLoginAt)

		userID, err := svc.ValidateAccessToken(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, resp.User.ID, userID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "bob@example.com", "wrong")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody@example.com", "hunter2")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}

func TestService_RefreshRotation(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, "carol@example.com", "pw")
	require.NoError(t, err)
	first, err := svc.Login(ctx, "carol@example.com", "pw")
	require.NoError(t, err)

	second, err := svc.RefreshAccessToken(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = svc.RefreshAccessToken(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)

	_, err = svc.RefreshAccessToken(ctx, "unknown")
	assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
}

func TestService_RefreshExpired(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	svc, _ := newTestService(clock)
	ctx := context.Background()

	_, err := svc.Register(ctx, "dave@example.com", "pw")
	require.NoError(t, err)
	resp, err := svc.Login(ctx, "dave@example.com", "pw")
	require.NoError(t, err)

	now = now.Add(auth.RefreshTokenExpiry + time.Second)
	_, err = svc.RefreshAccessToken(ctx, resp.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrRefreshTokenExpired)
}

func TestService_Logout(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()

	user, err := svc.Register(ctx, "erin@example.com", "pw")
	require.NoError(t, err)
	a, err := svc.Login(ctx, "erin@example.com", "pw")
	require.NoError(t, err)
	b, err := svc.Login(ctx, "erin@example.com", "pw")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, user.ID, a.RefreshToken))
	_, err = svc.RefreshAccessToken(ctx, a.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)

	require.NoError(t, svc.LogoutAll(ctx, user.ID))
	_, err = svc.RefreshAccessToken(ctx, b.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)

	assert.NoError(t, svc.Logout(ctx, user.ID, "never-issued"))
}

func TestService_LogoutIgnoresOtherUsersToken(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, "fay@example.com", "pw")
	require.NoError(t, err)
	mallory, err := svc.Register(ctx, "mallory@example.com", "pw")
	require.NoError(t, err)

	victim, err := svc.Login(ctx, "fay@example.com", "pw")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, mallory.ID, victim.RefreshToken))

	refreshed, err := svc.RefreshAccessToken(ctx, victim.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.RefreshToken)
}

func TestService_GetUser(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()

	user, err := svc.Register(ctx, "frank@example.com", "pw")
	require.NoError(t, err)

	got, err := svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "frank@example.com", got.Email)

	_, err = svc.GetUser(ctx, "usr_missing")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}

func TestCredentialsRequest_Validate(t *testing.T) {
	tests := []struct {
		name   string
		req    auth.CredentialsRequest
		fields []string
	}{
		{"valid", auth.CredentialsRequest{Email: "a@b.com", Password: "x"}, nil},
		{"missing both", auth.CredentialsRequest{}, []string{"email", "password"}},
		{"bad email", auth.CredentialsRequest{Email: "not-an-email", Password: "x"}, []string{"email"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fields []string
			for _, fe := range tt.req.Validate() {
				fields = append(fields, fe.Field)
			}
			assert.Equal(t, tt.fields, fields)
		})
	}
}
