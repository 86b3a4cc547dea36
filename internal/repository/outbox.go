package repository

import (
	"context"
	"time"

	"gitee.com/flycash/notification-dispatch/internal/domain"
	"gitee.com/flycash/notification-dispatch/internal/repository/dao"
	"github.com/ecodeclub/ekit/slice"
)

//go:generate mockgen -source=./outbox.go -destination=./mocks/outbox.mock.go -package=repomocks OutboxRepository
type OutboxRepository interface {
	FindReady(ctx context.Context, limit int) ([]domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, ids []int64) error
	MarkRetry(ctx context.Context, id int64, attempts int, next time.Time) error
	MarkFailed(ctx context.Context, id int64, attempts int) error
	// DeletePublishedBefore 清理已经转发的事件
	DeletePublishedBefore(ctx context.Context, before time.Time) (int64, error)
}

type outboxRepository struct {
	dao dao.OutboxDAO
}

func NewOutboxRepository(d dao.OutboxDAO) OutboxRepository {
	return &outboxRepository{dao: d}
}

func (r *outboxRepository) FindReady(ctx context.Context, limit int) ([]domain.OutboxEvent, error) {
	evts, err := r.dao.FindReady(ctx, time.Now().UnixMilli(), limit)
	if err != nil {
		return nil, err
	}
	return slice.Map(evts, func(_ int, src dao.OutboxEvent) domain.OutboxEvent {
		return domain.OutboxEvent{
			ID:            src.ID,
			Topic:         src.Topic,
			BizKey:        src.BizKey,
			Payload:       src.Payload,
			Status:        domain.OutboxStatus(src.Status),
			Attempts:      src.Attempts,
			NextRetryTime: time.UnixMilli(src.NextRetryTime),
			Ctime:         time.UnixMilli(src.Ctime),
		}
	}), nil
}

func (r *outboxRepository) MarkPublished(ctx context.Context, ids []int64) error {
	return r.dao.MarkPublished(ctx, ids)
}

func (r *outboxRepository) MarkRetry(ctx context.Context, id int64, attempts int, next time.Time) error {
	return r.dao.MarkRetry(ctx, id, attempts, next.UnixMilli())
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id int64, attempts int) error {
	return r.dao.MarkFailed(ctx, id, attempts)
}

func (r *outboxRepository) DeletePublishedBefore(ctx context.Context, before time.Time) (int64, error) {
	return r.dao.DeletePublishedBefore(ctx, before.UnixMilli())
}
