package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkuznets/shortlink/internal/service"
	"github.com/vkuznets/shortlink/internal/service/mocks"
)

// setupAuthService создаёт сервис аутентификации на моковых репозиториях
func setupAuthService(t *testing.T) service.AuthService {
	t.Helper()

	userRepo := mocks.NewMockUserRepository()
	sessions := mocks.NewMockSessionRepository()
	return service.NewAuthService(userRepo, sessions, time.Hour)
}

// TestAuthService_Register_Success проверяет регистрацию пользователя
func TestAuthService_Register_Success(t *testing.T) {
	auth := setupAuthService(t)

	user, err := auth.Register(context.Background(), "alice", "secret123")

	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, "secret123", user.PasswordHash, "Пароль не должен храниться открытым текстом")
	assert.NotEmpty(t, user.ID)
}

// TestAuthService_Register_DuplicateUsername проверяет конфликт занятого имени
func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	auth := setupAuthService(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, "alice", "secret123")
	require.NoError(t, err)

	user, err := auth.Register(ctx, "alice", "another")

	assert.ErrorIs(t, err, service.ErrUsernameTaken)
	assert.Nil(t, user)
}

// TestAuthService_Register_EmptyCredentials проверяет отклонение пустых полей
func TestAuthService_Register_EmptyCredentials(t *testing.T) {
	auth := setupAuthService(t)
	ctx := context.Background()

	cases := []struct {
		username string
		password string
	}{
		{"", "secret123"},
		{"alice", ""},
		{"   ", "secret123"},
	}

	for _, tc := range cases {
		user, err := auth.Register(ctx, tc.username, tc.password)
		assert.ErrorIs(t, err, service.ErrEmptyCredentials)
		assert.Nil(t, user)
	}
}

// TestAuthService_Login_Success проверяет вход и валидность выданного токена
func TestAuthService_Login_Success(t *testing.T) {
	auth := setupAuthService(t)
	ctx := context.Background()

	user, err := auth.Register(ctx, "alice", "secret123")
	require.NoError(t, err)

	token, err := auth.Login(ctx, "alice", "secret123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	identity, err := auth.Identity(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)
	assert.Equal(t, "alice", identity.Username)
}

// TestAuthService_Login_WrongPassword проверяет отклонение неверного пароля
func TestAuthService_Login_WrongPassword(t *testing.T) {
	auth := setupAuthService(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, "alice", "secret123")
	require.NoError(t, err)

	token, err := auth.Login(ctx, "alice", "wrong")

	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	assert.Empty(t, token)
}

// TestAuthService_Login_UnknownUser проверяет, что неизвестный пользователь
// неотличим от неверного пароля
func TestAuthService_Login_UnknownUser(t *testing.T) {
	auth := setupAuthService(t)

	token, err := auth.Login(context.Background(), "nobody", "secret123")

	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	assert.Empty(t, token)
}

// TestAuthService_Identity_InvalidToken проверяет отклонение невалидного токена
func TestAuthService_Identity_InvalidToken(t *testing.T) {
	auth := setupAuthService(t)
	ctx := context.Background()

	for _, token := range []string{"", "bogus-token"} {
		identity, err := auth.Identity(ctx, token)
		assert.ErrorIs(t, err, service.ErrUnauthenticated)
		assert.Nil(t, identity)
	}
}

// TestAuthService_Logout_RevokesToken проверяет отзыв токена
func TestAuthService_Logout_RevokesToken(t *testing.T) {
	auth := setupAuthService(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, "alice", "secret123")
	require.NoError(t, err)
	token, err := auth.Login(ctx, "alice", "secret123")
	require.NoError(t, err)

	require.NoError(t, auth.Logout(ctx, token))

	identity, err := auth.Identity(ctx, token)
	assert.ErrorIs(t, err, service.ErrUnauthenticated)
	assert.Nil(t, identity)
}
