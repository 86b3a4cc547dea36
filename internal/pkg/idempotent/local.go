package idempotent

import (
	"context"
	"errors"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

var _ IdempotencyService = (*LocalIdempotencyService)(nil)

// LocalIdempotencyService 进程内的实现，只能过滤同一个 worker 收到的重复消息
type LocalIdempotencyService struct {
	cache *gocache.Cache
	ttl   time.Duration
}

func NewLocalService(ttl time.Duration) *LocalIdempotencyService {
	return &LocalIdempotencyService{
		cache: gocache.New(ttl, ttl*2),
		ttl:   ttl,
	}
}

func (s *LocalIdempotencyService) MExists(_ context.Context, keys ...string) ([]bool, error) {
	if len(keys) == 0 {
		return nil, errors.New("empty keys")
	}
	res := make([]bool, 0, len(keys))
	for _, key := range keys {
		_, ok := s.cache.Get(key)
		res = append(res, ok)
	}
	return res, nil
}

func (s *LocalIdempotencyService) Mark(_ context.Context, key string) error {
	s.cache.Set(key, struct{}{}, s.ttl)
	return nil
}
