package storage

import "context"

// Storage 附件存储，key 由调用方生成
//
//go:generate mockgen -source=./types.go -destination=./mocks/storage.mock.go -package=storagemocks Storage
type Storage interface {
	Put(ctx context.Context, key string, content []byte, contentType string) error
	// Get key 不存在的时候返回 errs.ErrAttachmentNotFound
	Get(ctx context.Context, key string) ([]byte, error)
}
