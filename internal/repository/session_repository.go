package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vkuznets/shortlink/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionRepository хранит выданные токены и привязанные к ним личности
type SessionRepository interface {
	Save(ctx context.Context, token string, identity *models.Identity, ttl time.Duration) error
	Get(ctx context.Context, token string) (*models.Identity, error)
	Delete(ctx context.Context, token string) error
}

type sessionRepository struct {
	redis *RedisDB
}

func NewSessionRepository(redis *RedisDB) SessionRepository {
	return &sessionRepository{redis: redis}
}

func (r *sessionRepository) Save(ctx context.Context, token string, identity *models.Identity, ttl time.Duration) error {
	data, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("failed to marshal identity: %w", err)
	}

	return r.redis.Client.Set(ctx, r.key(token), data, ttl).Err()
}

func (r *sessionRepository) Get(ctx context.Context, token string) (*models.Identity, error) {
	data, err := r.redis.Client.Get(ctx, r.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var identity models.Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		return nil, fmt.Errorf("failed to unmarshal identity: %w", err)
	}

	return &identity, nil
}

func (r *sessionRepository) Delete(ctx context.Context, token string) error {
	return r.redis.Client.Del(ctx, r.key(token)).Err()
}

func (r *sessionRepository) key(token string) string {
	return "session:" + token
}
