package idempotent

import "context"

// IdempotencyService 记录已经处理过的 key
//
//go:generate mockgen -source=./type.go -destination=./mocks/idempotent.mock.go -package=idempotentmocks IdempotencyService
type IdempotencyService interface {
	// MExists 批量判断 key 是否处理过，只查询不记录
	MExists(ctx context.Context, keys ...string) ([]bool, error)
	// Mark 处理成功之后记录 key
	Mark(ctx context.Context, key string) error
}
