package ratelimit

import "context"

//go:generate mockgen -source=./types.go -package=limitmocks -destination=./mocks/limiter.mock.go Limiter
type Limiter interface {
	// Limit 判断是否应该限流，返回 true 说明本次请求被拒绝
	Limit(ctx context.Context, key string) (bool, error)
}
