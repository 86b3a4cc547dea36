//go:build e2e

package ratelimit

import (
	"fmt"
	"testing"
	"time"

	testioc "gitee.com/flycash/notification-dispatch/internal/test/ioc"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestRedisSlidingWindowLimiter(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(RedisSlidingWindowLimiterTestSuite))
}

type RedisSlidingWindowLimiterTestSuite struct {
	suite.Suite
	rdb redis.Cmdable
}

func (s *RedisSlidingWindowLimiterTestSuite) SetupSuite() {
	s.rdb = testioc.InitRedis()
}

func (s *RedisSlidingWindowLimiterTestSuite) newLimiter() *RedisSlidingWindowLimiter {
	return NewRedisSlidingWindowLimiter(s.rdb, 200*time.Millisecond, 5)
}

// 生成唯一的测试键，避免测试冲突
func (s *RedisSlidingWindowLimiterTestSuite) getUniqueKey(name string) string {
	return fmt.Sprintf("test:%s:%d", name, time.Now().UnixNano())
}

func (s *RedisSlidingWindowLimiterTestSuite) TestLimit_ExceedThreshold() {
	t := s.T()
	ctx := t.Context()
	key := s.getUniqueKey("exceed_threshold")
	limiter := s.newLimiter()
	defer s.rdb.Del(ctx, limiter.getCountKey(key))

	for i := 0; i < 5; i++ {
		limited, err := limiter.Limit(ctx, key)
		require.NoError(t, err)
		assert.False(t, limited, fmt.Sprintf("第%d个请求不应该被限流", i+1))
	}

	limited, err := limiter.Limit(ctx, key)
	require.NoError(t, err)
	assert.True(t, limited, "第6个请求应该被限流")

	cnt, err := s.rdb.ZCard(ctx, limiter.getCountKey(key)).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(5), cnt, "被限流的请求不计数")
}

func (s *RedisSlidingWindowLimiterTestSuite) TestLimit_WindowSlides() {
	t := s.T()
	ctx := t.Context()
	key := s.getUniqueKey("window_slides")
	limiter := s.newLimiter()
	defer s.rdb.Del(ctx, limiter.getCountKey(key))

	for i := 0; i < 5; i++ {
		_, err := limiter.Limit(ctx, key)
		require.NoError(t, err)
	}
	time.Sleep(250 * time.Millisecond)

	limited, err := limiter.Limit(ctx, key)
	require.NoError(t, err)
	assert.False(t, limited, "窗口滑过之后应该恢复")
}
