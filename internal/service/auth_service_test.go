package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/smikis/how-well-you-know/internal/config"
	"github.com/smikis/how-well-you-know/internal/repository/memory"
	"github.com/smikis/how-well-you-know/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService() *service.AuthService {
	cfg := &config.Config{
		JWTSecret:          "test-secret",
		JWTExpirationHours: 1,
	}
	return service.NewAuthService(memory.NewUserRepository(), memory.NewSessionRepository(), cfg)
}

func TestAuthService_Register(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	result, err := svc.Register(ctx, service.RegisterInput{
		DisplayName: "alice",
		Password:    "password123",
	})
	require.NoError(t, err)

	assert.Equal(t, "alice", result.User.DisplayName)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.NotEqual(t, "password123", result.User.PasswordHash)

	t.Run("duplicate display name", func(t *testing.T) {
		_, err := svc.Register(ctx, service.RegisterInput{
			DisplayName: "alice",
			Password:    "different",
		})
		assert.ErrorIs(t, err, service.ErrDisplayNameExists)
	})
}

func TestAuthService_Login(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, service.RegisterInput{
		DisplayName: "bob",
		Password:    "password123",
	})
	require.NoError(t, err)

	tests := []struct {
		name        string
		displayName string
		password    string
		wantErr     error
	}{
		{
			name:        "valid credentials",
			displayName: "bob",
			password:    "password123",
		},
		{
			name:        "wrong password",
			displayName: "bob",
			password:    "wrong",
			wantErr:     service.ErrInvalidCredentials,
		},
		{
			name:        "unknown user",
			displayName: "nobody",
			password:    "password123",
			wantErr:     service.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.Login(ctx, service.LoginInput{
				DisplayName: tt.displayName,
				Password:    tt.password,
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.displayName, result.User.DisplayName)
			assert.NotEmpty(t, result.AccessToken)
		})
	}
}

func TestAuthService_UserIDFromToken(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	result, err := svc.Register(ctx, service.RegisterInput{
		DisplayName: "carol",
		Password:    "password123",
	})
	require.NoError(t, err)

	userID, err := svc.UserIDFromToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, userID)

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.UserIDFromToken("not-a-token")
		assert.Error(t, err)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		other := service.NewAuthService(memory.NewUserRepository(), memory.NewSessionRepository(), &config.Config{
			JWTSecret:          "different-secret",
			JWTExpirationHours: 1,
		})
		foreign, err := other.Register(ctx, service.RegisterInput{
			DisplayName: "carol",
			Password:    "password123",
		})
		require.NoError(t, err)

		_, err = svc.UserIDFromToken(foreign.AccessToken)
		assert.Error(t, err)
	})
}

func TestAuthService_GetUserByID(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	result, err := svc.Register(ctx, service.RegisterInput{
		DisplayName: "dave",
		Password:    "password123",
	})
	require.NoError(t, err)

	user, err := svc.GetUserByID(ctx, result.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "dave", user.DisplayName)

	_, err = svc.GetUserByID(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestAuthService_Logout(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	result, err := svc.Register(ctx, service.RegisterInput{
		DisplayName: "erin",
		Password:    "password123",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, result.User.ID))

	// Access tokens stay valid until expiry; logout only drops the
	// refresh session.
	_, err = svc.UserIDFromToken(result.AccessToken)
	assert.NoError(t, err)
}
