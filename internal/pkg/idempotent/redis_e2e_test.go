//go:build e2e

package idempotent

import (
	"fmt"
	"testing"
	"time"

	testioc "gitee.com/flycash/notification-dispatch/internal/test/ioc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisIdempotencyService(t *testing.T) {
	t.Parallel()
	rdb := testioc.InitRedis()
	prefix := fmt.Sprintf("idempotent:test:%d:", time.Now().UnixNano())
	svc := NewRedisService(rdb, prefix, time.Minute)

	res, err := svc.MExists(t.Context(), "email:1", "email:2")
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false}, res)

	require.NoError(t, svc.Mark(t.Context(), "email:1"))
	res, err = svc.MExists(t.Context(), "email:1", "email:2")
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, res)

	ttl, err := rdb.TTL(t.Context(), prefix+"email:1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	rdb.Del(t.Context(), prefix+"email:1")
}
