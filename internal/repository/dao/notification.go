package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gitee.com/flycash/notification-dispatch/internal/domain"
	"gitee.com/flycash/notification-dispatch/internal/errs"
	"gitee.com/flycash/notification-dispatch/internal/pkg/database/dbx"
	"github.com/ecodeclub/ekit/sqlx"
	"gorm.io/gorm"
)

type NotificationDAO interface {
	// CreateWithOutbox 在同一个事务里面创建通知和对应的 outbox 事件。
	// ctx 里面已经有事务的时候加入该事务
	CreateWithOutbox(ctx context.Context, data Notification, evt OutboxEvent) (Notification, error)
	// AppendOutbox 只为已经存在的通知再写一条 outbox 事件
	AppendOutbox(ctx context.Context, evt OutboxEvent) error

	GetByID(ctx context.Context, id uint64) (Notification, error)

	// CASStatus 只有当前状态是 from 的时候才会更新为 to
	CASStatus(ctx context.Context, id uint64, from, to string) error

	// MarkTimeoutProcessingAsFailed 把 utime 早于 before 的 PROCESSING 记录标记为 FAILED
	MarkTimeoutProcessingAsFailed(ctx context.Context, before int64, batchSize int) (int64, error)

	// ListByStatuses search 会匹配收件人和主题
	ListByStatuses(ctx context.Context, statuses []string, search string, offset, limit int) ([]Notification, int64, error)
}

// Notification 通知记录表
type Notification struct {
	ID          uint64                        `gorm:"primaryKey;comment:'雪花算法ID'"`
	Status      string                        `gorm:"type:ENUM('PENDING','PROCESSING','COMPLETED','FAILED');NOT NULL;DEFAULT:'PENDING';index:idx_status_utime,priority:1;comment:'发送状态'"`
	To          string                        `gorm:"column:to;type:VARCHAR(512);NOT NULL;comment:'接收者，邮箱或者手机号'"`
	From        string                        `gorm:"column:from;type:VARCHAR(512);NOT NULL"`
	Subject     string                        `gorm:"type:VARCHAR(512);NOT NULL"`
	Text        string                        `gorm:"type:MEDIUMTEXT"`
	HTML        string                        `gorm:"column:html;type:MEDIUMTEXT"`
	Seen        bool                          `gorm:"NOT NULL;DEFAULT:false"`
	Type        string                        `gorm:"type:ENUM('EMAIL','SMS');NOT NULL;DEFAULT:'EMAIL';comment:'通知类型'"`
	Attachments sqlx.JsonColumn[[]Attachment] `gorm:"type:JSON;comment:'附件列表'"`
	Ctime       int64
	Utime       int64 `gorm:"index:idx_status_utime,priority:2"`
	Dtime       gorm.DeletedAt
}

// Attachment 附件在对象存储里面的位置
type Attachment struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Encoding string `json:"encoding"`
}

func (Notification) TableName() string {
	return "notifications"
}

type notificationDAO struct {
	pool   *dbx.Pool
	outbox OutboxDAO
}

func NewNotificationDAO(pool *dbx.Pool, outbox OutboxDAO) NotificationDAO {
	return &notificationDAO{
		pool:   pool,
		outbox: outbox,
	}
}

func (d *notificationDAO) CreateWithOutbox(ctx context.Context, data Notification, evt OutboxEvent) (Notification, error) {
	now := time.Now().UnixMilli()
	data.Ctime, data.Utime = now, now
	if data.Status == "" {
		data.Status = domain.NotificationStatusPending.String()
	}
	if !data.Attachments.Valid {
		data.Attachments = sqlx.JsonColumn[[]Attachment]{Val: []Attachment{}, Valid: true}
	}
	err := d.pool.Transaction(ctx, func(ctx context.Context) error {
		if err := d.pool.Conn(ctx).Create(&data).Error; err != nil {
			return fmt.Errorf("%w: %w", errs.ErrCreateNotificationFailed, err)
		}
		return d.outbox.Create(ctx, evt)
	})
	return data, err
}

func (d *notificationDAO) AppendOutbox(ctx context.Context, evt OutboxEvent) error {
	return d.outbox.Create(ctx, evt)
}

func (d *notificationDAO) GetByID(ctx context.Context, id uint64) (Notification, error) {
	var n Notification
	err := d.pool.Conn(ctx).Where("id = ?", id).First(&n).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Notification{}, fmt.Errorf("%w: id = %d", errs.ErrNotificationNotFound, id)
		}
		return Notification{}, err
	}
	return n, nil
}

func (d *notificationDAO) CASStatus(ctx context.Context, id uint64, from, to string) error {
	res := d.pool.Conn(ctx).Model(&Notification{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{
			"status": to,
			"utime":  time.Now().UnixMilli(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected < 1 {
		return fmt.Errorf("并发竞争失败 %w, id %d, %s -> %s", errs.ErrNotificationStatusConflict, id, from, to)
	}
	return nil
}

func (d *notificationDAO) MarkTimeoutProcessingAsFailed(ctx context.Context, before int64, batchSize int) (int64, error) {
	var ids []uint64
	err := d.pool.Conn(ctx).Model(&Notification{}).
		Where("status = ? AND utime <= ?", domain.NotificationStatusProcessing.String(), before).
		Order("utime ASC").
		Limit(batchSize).
		Pluck("id", &ids).Error
	if err != nil || len(ids) == 0 {
		return 0, err
	}
	// 这里再次校验状态，避免覆盖刚刚完成的记录
	res := d.pool.Conn(ctx).Model(&Notification{}).
		Where("id IN ? AND status = ?", ids, domain.NotificationStatusProcessing.String()).
		Updates(map[string]any{
			"status": domain.NotificationStatusFailed.String(),
			"utime":  time.Now().UnixMilli(),
		})
	return res.RowsAffected, res.Error
}

func (d *notificationDAO) ListByStatuses(ctx context.Context, statuses []string, search string,
	offset, limit int,
) ([]Notification, int64, error) {
	base := func() *gorm.DB {
		query := d.pool.Conn(ctx).Model(&Notification{}).Where("status IN ?", statuses)
		if search != "" {
			like := "%" + search + "%"
			query = query.Where("(`to` LIKE ? OR `subject` LIKE ?)", like, like)
		}
		return query
	}
	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []Notification{}, 0, nil
	}
	var res []Notification
	err := base().Order("id DESC").Offset(offset).Limit(limit).Find(&res).Error
	return res, total, err
}
