package alerta

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduper garante um único aviso por demanda e dia.
type Deduper interface {
	// First devolve true apenas na primeira chamada para a chave.
	First(ctx context.Context, key string) (bool, error)
	// Release devolve a chave quando o aviso não chegou a ser enviado.
	Release(ctx context.Context, key string) error
}

type dedupeClient interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisDeduper usa SETNX com expiração.
type RedisDeduper struct {
	client dedupeClient
	ttl    time.Duration
}

func NewRedisDeduper(client dedupeClient, ttl time.Duration) *RedisDeduper {
	if ttl <= 0 {
		ttl = 36 * time.Hour
	}
	return &RedisDeduper{client: client, ttl: ttl}
}

func (d *RedisDeduper) First(ctx context.Context, key string) (bool, error) {
	return d.client.SetNX(ctx, key, "1", d.ttl).Result()
}

func (d *RedisDeduper) Release(ctx context.Context, key string) error {
	return d.client.Del(ctx, key).Err()
}

// dedupeKey identifica o aviso de uma demanda num dia de calendário.
func dedupeKey(id fmt.Stringer, dia string) string {
	return fmt.Sprintf("alerta:atrasada:%s:%s", id, dia)
}
