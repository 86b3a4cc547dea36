package repository

import (
	"context"
	"fmt"
	"time"

	"gitee.com/flycash/notification-dispatch/internal/domain"
	"gitee.com/flycash/notification-dispatch/internal/errs"
	"gitee.com/flycash/notification-dispatch/internal/event/notification"
	"gitee.com/flycash/notification-dispatch/internal/repository/dao"
	"github.com/ecodeclub/ekit/slice"
	"github.com/ecodeclub/ekit/sqlx"
)

// NotificationRepository 通知仓储接口
//
//go:generate mockgen -source=./notification.go -destination=./mocks/notification.mock.go -package=repomocks NotificationRepository
type NotificationRepository interface {
	// Create 创建一条待发送的通知，并且写入对应的发送事件
	Create(ctx context.Context, n domain.Notification) (domain.Notification, error)
	// Republish 为已经存在的通知再次写入发送事件
	Republish(ctx context.Context, n domain.Notification) error

	// GetByID 根据ID获取通知
	GetByID(ctx context.Context, id uint64) (domain.Notification, error)

	// CASStatus 条件更新状态，当前状态不是 from 或者 from -> to 不合法的时候返回 errs.ErrNotificationStatusConflict
	CASStatus(ctx context.Context, id uint64, from, to domain.NotificationStatus) error

	// MarkTimeoutProcessingAsFailed 把长时间处于发送中的通知标记为失败
	MarkTimeoutProcessingAsFailed(ctx context.Context, before time.Time, batchSize int) (int64, error)

	// ListByStatuses 分页查询
	ListByStatuses(ctx context.Context, statuses []domain.NotificationStatus, search string,
		offset, limit int) ([]domain.Notification, int64, error)
}

type notificationRepository struct {
	dao dao.NotificationDAO
}

func NewNotificationRepository(d dao.NotificationDAO) NotificationRepository {
	return &notificationRepository{dao: d}
}

func (r *notificationRepository) Create(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	evt, err := r.toOutboxEvent(n)
	if err != nil {
		return domain.Notification{}, err
	}
	created, err := r.dao.CreateWithOutbox(ctx, r.toEntity(n), evt)
	if err != nil {
		return domain.Notification{}, err
	}
	return r.toDomain(created), nil
}

func (r *notificationRepository) Republish(ctx context.Context, n domain.Notification) error {
	evt, err := r.toOutboxEvent(n)
	if err != nil {
		return err
	}
	return r.dao.AppendOutbox(ctx, evt)
}

func (r *notificationRepository) GetByID(ctx context.Context, id uint64) (domain.Notification, error) {
	n, err := r.dao.GetByID(ctx, id)
	if err != nil {
		return domain.Notification{}, err
	}
	return r.toDomain(n), nil
}

func (r *notificationRepository) CASStatus(ctx context.Context, id uint64, from, to domain.NotificationStatus) error {
	if !from.CanTransitTo(to) {
		return fmt.Errorf("%w: 非法状态变更 id %d, %s -> %s", errs.ErrNotificationStatusConflict, id, from, to)
	}
	return r.dao.CASStatus(ctx, id, from.String(), to.String())
}

func (r *notificationRepository) MarkTimeoutProcessingAsFailed(ctx context.Context, before time.Time, batchSize int) (int64, error) {
	return r.dao.MarkTimeoutProcessingAsFailed(ctx, before.UnixMilli(), batchSize)
}

func (r *notificationRepository) ListByStatuses(ctx context.Context, statuses []domain.NotificationStatus,
	search string, offset, limit int,
) ([]domain.Notification, int64, error) {
	entities, total, err := r.dao.ListByStatuses(ctx,
		slice.Map(statuses, func(_ int, src domain.NotificationStatus) string {
			return src.String()
		}), search, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	return slice.Map(entities, func(_ int, src dao.Notification) domain.Notification {
		return r.toDomain(src)
	}), total, nil
}

func (r *notificationRepository) toOutboxEvent(n domain.Notification) (dao.OutboxEvent, error) {
	evt := notification.NewEvent(n.EventType(), n.ID)
	payload, err := evt.Marshal()
	if err != nil {
		return dao.OutboxEvent{}, err
	}
	return dao.OutboxEvent{
		Topic:   notification.EventTopic,
		BizKey:  evt.Key(),
		Payload: payload,
	}, nil
}

func (r *notificationRepository) toEntity(n domain.Notification) dao.Notification {
	return dao.Notification{
		ID:      n.ID,
		Status:  n.Status.String(),
		To:      n.To,
		From:    n.From,
		Subject: n.Subject,
		Text:    n.Text,
		HTML:    n.HTML,
		Seen:    n.Seen,
		Type:    string(n.Type),
		Attachments: sqlx.JsonColumn[[]dao.Attachment]{
			Val: slice.Map(n.Attachments, func(_ int, src domain.Attachment) dao.Attachment {
				return dao.Attachment{Filename: src.Filename, Path: src.Path, Encoding: src.Encoding}
			}),
			Valid: true,
		},
	}
}

func (r *notificationRepository) toDomain(n dao.Notification) domain.Notification {
	return domain.Notification{
		ID:          n.ID,
		Status:      domain.NotificationStatus(n.Status),
		To:          n.To,
		From:        n.From,
		Subject:     n.Subject,
		Text:        n.Text,
		HTML:        n.HTML,
		Seen:        n.Seen,
		Type:        domain.NotificationType(n.Type),
		Attachments: slice.Map(n.Attachments.Val, func(_ int, src dao.Attachment) domain.Attachment {
			return domain.Attachment{Filename: src.Filename, Path: src.Path, Encoding: src.Encoding}
		}),
		Ctime:       time.UnixMilli(n.Ctime),
		Utime:       time.UnixMilli(n.Utime),
	}
}
