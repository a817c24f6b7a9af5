package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vkuznets/shortlink/internal/models"
	"github.com/vkuznets/shortlink/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// Ошибки аутентификации
var (
	ErrEmptyCredentials   = errors.New("username and password are required")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthenticated    = errors.New("unauthenticated")
)

// Authenticator выдаёт верифицированную личность по опаковому токену.
// Ядро сервиса ссылок зависит только от этого контракта.
type Authenticator interface {
	Identity(ctx context.Context, token string) (*models.Identity, error)
}

// AuthService регистрация, вход и проверка токенов
type AuthService interface {
	Authenticator
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context, token string) error
}

type authService struct {
	userRepo   repository.UserRepository
	sessions   repository.SessionRepository
	sessionTTL time.Duration
}

// NewAuthService создаёт новый сервис аутентификации
func NewAuthService(
	userRepo repository.UserRepository,
	sessions repository.SessionRepository,
	sessionTTL time.Duration,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		sessions:   sessions,
		sessionTTL: sessionTTL,
	}
}

// Register создаёт пользователя с bcrypt-хэшем пароля
func (s *authService) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrEmptyCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	return user, nil
}

// Login проверяет пароль и выдаёт опаковый токен сессии
func (s *authService) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", ErrEmptyCredentials
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token := uuid.NewString()
	identity := &models.Identity{
		UserID:   user.ID,
		Username: user.Username,
	}
	if err := s.sessions.Save(ctx, token, identity, s.sessionTTL); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}

	return token, nil
}

// Logout отзывает токен
func (s *authService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// Identity возвращает личность, привязанную к токену
func (s *authService) Identity(ctx context.Context, token string) (*models.Identity, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	identity, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	return identity, nil
}
