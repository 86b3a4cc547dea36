package dao

import (
	"context"
	"time"

	"gitee.com/flycash/notification-dispatch/internal/domain"
	"gitee.com/flycash/notification-dispatch/internal/pkg/database/dbx"
)

const outboxTable = "outbox_events"

type OutboxDAO interface {
	// Create ctx 里面有事务就加入事务
	Create(ctx context.Context, evt OutboxEvent) error
	// FindReady 找出可以转发的事件，按照 ID 升序
	FindReady(ctx context.Context, now int64, limit int) ([]OutboxEvent, error)
	MarkPublished(ctx context.Context, ids []int64) error
	MarkRetry(ctx context.Context, id int64, attempts int, nextRetryTime int64) error
	MarkFailed(ctx context.Context, id int64, attempts int) error
	DeletePublishedBefore(ctx context.Context, before int64) (int64, error)
}

// OutboxEvent 事务消息表，和通知在同一个事务里面写入
type OutboxEvent struct {
	ID            int64  `gorm:"primaryKey;autoIncrement"`
	Topic         string `gorm:"type:VARCHAR(128);NOT NULL"`
	BizKey        string `gorm:"type:VARCHAR(64);NOT NULL;comment:'分区键，通知ID'"`
	Payload       string `gorm:"type:JSON;NOT NULL"`
	Status        string `gorm:"type:ENUM('PENDING','PUBLISHED','FAILED');NOT NULL;DEFAULT:'PENDING';index:idx_status_next_retry,priority:1"`
	Attempts      int    `gorm:"NOT NULL;DEFAULT:0"`
	NextRetryTime int64  `gorm:"index:idx_status_next_retry,priority:2"`
	Ctime         int64
	Utime         int64
}

func (OutboxEvent) TableName() string {
	return outboxTable
}

type outboxDAO struct {
	pool *dbx.Pool
}

func NewOutboxDAO(pool *dbx.Pool) OutboxDAO {
	return &outboxDAO{pool: pool}
}

func (d *outboxDAO) Create(ctx context.Context, evt OutboxEvent) error {
	now := time.Now().UnixMilli()
	return d.pool.Create(ctx, outboxTable, map[string]any{
		"topic":           evt.Topic,
		"biz_key":         evt.BizKey,
		"payload":         evt.Payload,
		"status":          string(domain.OutboxStatusPending),
		"attempts":        0,
		"next_retry_time": now,
		"ctime":           now,
		"utime":           now,
	})
}

func (d *outboxDAO) FindReady(ctx context.Context, now int64, limit int) ([]OutboxEvent, error) {
	var res []OutboxEvent
	err := d.pool.Read(ctx, outboxTable, &res, dbx.Query{
		Where: "status = ? AND next_retry_time <= ?",
		Args:  []any{string(domain.OutboxStatusPending), now},
		Order: "id ASC",
		Limit: limit,
	})
	return res, err
}

func (d *outboxDAO) MarkPublished(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := d.pool.Update(ctx, outboxTable, map[string]any{
		"status": string(domain.OutboxStatusPublished),
		"utime":  time.Now().UnixMilli(),
	}, "id IN ? AND status = ?", ids, string(domain.OutboxStatusPending))
	return err
}

func (d *outboxDAO) MarkRetry(ctx context.Context, id int64, attempts int, nextRetryTime int64) error {
	_, err := d.pool.Update(ctx, outboxTable, map[string]any{
		"attempts":        attempts,
		"next_retry_time": nextRetryTime,
		"utime":           time.Now().UnixMilli(),
	}, "id = ? AND status = ?", id, string(domain.OutboxStatusPending))
	return err
}

func (d *outboxDAO) MarkFailed(ctx context.Context, id int64, attempts int) error {
	_, err := d.pool.Update(ctx, outboxTable, map[string]any{
		"status":   string(domain.OutboxStatusFailed),
		"attempts": attempts,
		"utime":    time.Now().UnixMilli(),
	}, "id = ? AND status = ?", id, string(domain.OutboxStatusPending))
	return err
}

func (d *outboxDAO) DeletePublishedBefore(ctx context.Context, before int64) (int64, error) {
	return d.pool.Delete(ctx, outboxTable, "status = ? AND utime < ?", string(domain.OutboxStatusPublished), before)
}
