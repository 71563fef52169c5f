package service

import (
	"context"
	"testing"
	"time"

	"contest_judge/internal/common"
	"contest_judge/internal/common/security"
	"contest_judge/internal/domain/model"
	"contest_judge/internal/platform/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupJWT(t *testing.T) {
	t.Helper()
	config.AppConfig = &config.Config{JWTKey: []byte("test-key"), JWTExp: time.Hour}
	security.InitJWT()
}

func TestSignup(t *testing.T) {
	setupJWT(t)
	users := &mockUserRepo{}
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.Username == "alice" && u.Name == "alice" && u.Role == model.RoleUser &&
			security.CheckPasswordHash("hunter22", u.HashedPassword)
	})).Return(nil).Once()

	resp, err := NewAuthService(users).Signup(context.Background(), SignupRequest{
		Username: "alice", Email: "alice@example.com", Password: "hunter22",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Empty(t, resp.User.HashedPassword)
	users.AssertExpectations(t)
}

func TestSignupRejectsInvalidInput(t *testing.T) {
	setupJWT(t)
	users := &mockUserRepo{}

	_, err := NewAuthService(users).Signup(context.Background(), SignupRequest{Username: "al", Email: "nope", Password: "1"})
	assert.ErrorIs(t, err, common.ErrValidation)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSignupConflict(t *testing.T) {
	setupJWT(t)
	users := &mockUserRepo{}
	users.On("Create", mock.Anything, mock.Anything).Return(common.ErrConflict)

	_, err := NewAuthService(users).Signup(context.Background(), SignupRequest{
		Username: "alice", Email: "alice@example.com", Password: "hunter22",
	})
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestLogin(t *testing.T) {
	setupJWT(t)
	hash, err := security.HashPassword("hunter22")
	require.NoError(t, err)
	stored := func() *model.User {
		return &model.User{ID: "u1", Username: "alice", Email: "alice@example.com", HashedPassword: hash, Role: model.RoleAdmin}
	}

	t.Run("by username", func(t *testing.T) {
		users := &mockUserRepo{}
		users.On("FindByEmail", mock.Anything, "alice").Return(nil, common.ErrNotFound)
		users.On("FindByUsername", mock.Anything, "alice").Return(stored(), nil)

		resp, err := NewAuthService(users).Login(context.Background(), LoginRequest{LoginField: "alice", Password: "hunter22"})
		require.NoError(t, err)
		assert.Equal(t, "u1", resp.User.ID)
		assert.Empty(t, resp.User.HashedPassword)
	})

	t.Run("wrong password", func(t *testing.T) {
		users := &mockUserRepo{}
		users.On("FindByEmail", mock.Anything, "alice@example.com").Return(stored(), nil)

		_, err := NewAuthService(users).Login(context.Background(), LoginRequest{LoginField: "alice@example.com", Password: "nope"})
		assert.ErrorIs(t, err, common.ErrUnauthorized)
	})

	t.Run("unknown user", func(t *testing.T) {
		users := &mockUserRepo{}
		users.On("FindByEmail", mock.Anything, "bob").Return(nil, common.ErrNotFound)
		users.On("FindByUsername", mock.Anything, "bob").Return(nil, common.ErrNotFound)

		_, err := NewAuthService(users).Login(context.Background(), LoginRequest{LoginField: "bob", Password: "x"})
		assert.ErrorIs(t, err, common.ErrUnauthorized)
	})
}
