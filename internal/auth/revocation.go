package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revocations guarda as sessões encerradas antes de expirar.
type Revocations interface {
	Revoke(ctx context.Context, sessionID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

type redisKV interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisRevocations implementa Revocations com chaves que expiram junto com o token.
type RedisRevocations struct {
	client redisKV
}

// NewRedisRevocations cria o armazenamento sobre o cliente Redis.
func NewRedisRevocations(client redisKV) *RedisRevocations {
	return &RedisRevocations{client: client}
}

// RevokedKey monta a chave de uma sessão encerrada.
func RevokedKey(sessionID string) string {
	return fmt.Sprintf("sessao:revogada:%s", sessionID)
}

func (r *RedisRevocations) Revoke(ctx context.Context, sessionID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, RevokedKey(sessionID), "1", ttl).Err()
}

func (r *RedisRevocations) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	n, err := r.client.Exists(ctx, RevokedKey(sessionID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, err
	}
	return n > 0, nil
}
