//go:build e2e

package integration

import (
	"context"
	"fmt"
	"sync"

	"gitee.com/flycash/notification-dispatch/internal/errs"
)

// memoryStorage 对象存储的内存实现
type memoryStorage struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: make(map[string][]byte)}
}

func (m *memoryStorage) Put(_ context.Context, key string, content []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), content...)
	return nil
}

func (m *memoryStorage) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	val, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("%w: key %s", errs.ErrAttachmentNotFound, key)
	}
	return val, nil
}
