package user_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breezyday/breezyday/internal/auth"
	"github.com/breezyday/breezyday/internal/user"
)

type stubAccounts map[string]string

func (s stubAccounts) GetUser(_ context.Context, id string) (*auth.User, error) {
	email, ok := s[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return &auth.User{ID: id, Email: email}, nil
}

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestService() *user.Service {
	return user.NewService(user.ServiceConfig{
		Repository: user.NewInMemoryRepository(),
		Accounts:   stubAccounts{"usr_1": "amy@example.com"},
		Logger:     zerolog.Nop(),
		Now:        func() time.Time { return fixedNow },
	})
}

func TestService_GetProfile_Defaults(t *testing.T) {
	svc := newTestService()

	p, err := svc.GetProfile(context.Background(), "usr_1")
	require.NoError(t, err)
	assert.Equal(t, "", p.Username)
	assert.Equal(t, "amy@example.com", p.Email)
	assert.Equal(t, user.GenderFemale, p.Gender)
	assert.Equal(t, "", p.DateOfBirth)
	assert.NotNil(t, p.PreferredStyles)
	assert.Empty(t, p.PreferredStyles)
}

func TestService_GetProfile_UnknownUser(t *testing.T) {
	svc := newTestService()

	_, err := svc.GetProfile(context.Background(), "usr_missing")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}

func TestService_UpdateProfile(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	updated, err := svc.UpdateProfile(ctx, "usr_1", user.ProfileInput{
		Username:        "  Amy ",
		Gender:          "Other",
		DateOfBirth:     "1995-04-02",
		PreferredStyles: []string{"casual", " ", "street"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Amy", updated.Username)
	assert.Equal(t, []string{"casual", "street"}, updated.PreferredStyles)

	got, err := svc.GetProfile(ctx, "usr_1")
	require.NoError(t, err)
	assert.Equal(t, "Amy", got.Username)
	assert.Equal(t, "Other", got.Gender)
	assert.Equal(t, "1995-04-02", got.DateOfBirth)
	assert.Equal(t, "amy@example.com", got.Email)
}

func TestService_UpdateProfile_EmptyGenderDefaults(t *testing.T) {
	svc := newTestService()

	p, err := svc.UpdateProfile(context.Background(), "usr_1", user.ProfileInput{})
	require.NoError(t, err)
	assert.Equal(t, user.GenderFemale, p.Gender)
}

func TestService_UpdateProfile_Validation(t *testing.T) {
	tooMany := make([]string, user.MaxStyles+1)
	for i := range tooMany {
		tooMany[i] = "style"
	}

	tests := []struct {
		name  string
		input user.ProfileInput
		field string
	}{
		{"bad gender", user.ProfileInput{Gender: "Robot"}, "gender"},
		{"bad date", user.ProfileInput{DateOfBirth: "02/04/1995"}, "dateOfBirth"},
		{"future date", user.ProfileInput{DateOfBirth: "2025-06-16"}, "dateOfBirth"},
		{"too many styles", user.ProfileInput{PreferredStyles: tooMany}, "preferredStyles"},
		{"long style", user.ProfileInput{PreferredStyles: []string{strings.Repeat("x", user.MaxStyleLength+1)}}, "preferredStyles[0]"},
		{"long username", user.ProfileInput{Username: strings.Repeat("名", user.MaxUsernameLength+1)}, "username"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestService().UpdateProfile(context.Background(), "usr_1", tt.input)

			var verr *user.ValidationError
			require.True(t, errors.As(err, &verr))
			require.NotEmpty(t, verr.Fields)
			assert.Equal(t, tt.field, verr.Fields[0].Field)
		})
	}
}

func TestProfileInput_Validate_Boundaries(t *testing.T) {
	in := user.ProfileInput{
		Gender:          user.GenderMale,
		DateOfBirth:     "2025-06-15",
		PreferredStyles: []string{strings.Repeat("x", user.MaxStyleLength)},
	}
	assert.Empty(t, in.Validate(fixedNow))
}
