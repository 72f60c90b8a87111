package demanda

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	listCacheKey  = "demandas:todas"
	listVersaoKey = "demandas:versao"
)

// ListCache guarda a última leitura completa da tabela.
// Cada escrita avança a versão; uma leitura feita antes da escrita
// grava com a versão antiga e nunca volta a ser servida.
type ListCache interface {
	Get(ctx context.Context) ([]Demanda, bool)
	Version(ctx context.Context) (int64, bool)
	Set(ctx context.Context, version int64, items []Demanda)
	Invalidate(ctx context.Context)
}

type redisCommander interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

type cachedList struct {
	Versao int64     `json:"versao"`
	Itens  []Demanda `json:"itens"`
}

// RedisListCache implementa ListCache sobre Redis. Falhas do Redis viram cache miss.
type RedisListCache struct {
	client redisCommander
	ttl    time.Duration
}

// NewRedisListCache cria o cache; ttl <= 0 desativa a escrita.
func NewRedisListCache(client redisCommander, ttl time.Duration) *RedisListCache {
	return &RedisListCache{client: client, ttl: ttl}
}

// Get só devolve a lista gravada com a versão atual.
func (c *RedisListCache) Get(ctx context.Context) ([]Demanda, bool) {
	versao, ok := c.Version(ctx)
	if !ok {
		return nil, false
	}
	data, err := c.client.Get(ctx, listCacheKey).Bytes()
	if err != nil {
		return nil, false
	}
	var cached cachedList
	if json.Unmarshal(data, &cached) != nil || cached.Versao != versao {
		return nil, false
	}
	return cached.Itens, true
}

// Version lê a versão corrente; chave ausente vale zero.
func (c *RedisListCache) Version(ctx context.Context) (int64, bool) {
	v, err := c.client.Get(ctx, listVersaoKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, true
	}
	if err != nil {
		return 0, false
	}
	return v, true
}

func (c *RedisListCache) Set(ctx context.Context, version int64, items []Demanda) {
	if c.ttl <= 0 {
		return
	}
	if payload, err := json.Marshal(cachedList{Versao: version, Itens: items}); err == nil {
		_ = c.client.Set(ctx, listCacheKey, payload, c.ttl).Err()
	}
}

func (c *RedisListCache) Invalidate(ctx context.Context) {
	if err := c.client.Incr(ctx, listVersaoKey).Err(); err != nil {
		log.Warn().Err(err).Msg("falha ao avançar versão do cache de demandas")
	}
	_ = c.client.Del(ctx, listCacheKey).Err()
}
