package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"gitee.com/flycash/notification-dispatch/internal/errs"
	"github.com/minio/minio-go/v7"
)

var _ Storage = (*MinioStorage)(nil)

// MinioStorage 兼容 S3 协议的对象存储
type MinioStorage struct {
	client *minio.Client
	bucket string
}

func NewMinioStorage(client *minio.Client, bucket string) *MinioStorage {
	return &MinioStorage{
		client: client,
		bucket: bucket,
	}
}

func (s *MinioStorage) Put(ctx context.Context, key string, content []byte, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(content), int64(len(content)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("上传附件失败 key %s: %w", key, err)
	}
	return nil
}

func (s *MinioStorage) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.wrap(key, err)
	}
	defer obj.Close()
	// GetObject 是懒加载的，对象不存在的错误要到读的时候才会出现
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, s.wrap(key, err)
	}
	return data, nil
}

func (s *MinioStorage) wrap(key string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return fmt.Errorf("%w: key %s", errs.ErrAttachmentNotFound, key)
	}
	return fmt.Errorf("下载附件失败 key %s: %w", key, err)
}
