package idempotent

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var _ IdempotencyService = (*RedisIdempotencyService)(nil)

// RedisIdempotencyService 多个 worker 共享的实现
type RedisIdempotencyService struct {
	client    redis.Cmdable
	keyPrefix string
	ttl       time.Duration
}

func NewRedisService(client redis.Cmdable, keyPrefix string, ttl time.Duration) *RedisIdempotencyService {
	return &RedisIdempotencyService{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// MExists 一次 pipeline 查询所有 key
func (s *RedisIdempotencyService) MExists(ctx context.Context, keys ...string) ([]bool, error) {
	if len(keys) == 0 {
		return nil, errors.New("empty keys")
	}
	cmds := make([]*redis.IntCmd, 0, len(keys))
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, key := range keys {
			cmds = append(cmds, pipe.Exists(ctx, s.keyPrefix+key))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	res := make([]bool, 0, len(cmds))
	for _, cmd := range cmds {
		res = append(res, cmd.Val() > 0)
	}
	return res, nil
}

func (s *RedisIdempotencyService) Mark(ctx context.Context, key string) error {
	return s.client.Set(ctx, s.keyPrefix+key, 1, s.ttl).Err()
}
