package notification

import (
	"context"
	"fmt"

	"gitee.com/flycash/notification-dispatch/internal/domain"
	"gitee.com/flycash/notification-dispatch/internal/errs"
	"gitee.com/flycash/notification-dispatch/internal/repository"
	"github.com/gotomicro/ego/core/elog"
	"github.com/sony/sonyflake"
)

const (
	defaultPage          = 1
	defaultResultPerPage = 20
	maxResultPerPage     = 100
)

type ResendResult struct {
	// ID 重新发送的通知 ID，克隆的时候是新通知的 ID
	ID uint64
	// Cloned 为 true 说明创建了新通知
	Cloned bool
}

type Page struct {
	Items         []domain.Notification
	Total         int64
	Page          int
	ResultPerPage int
}

// Service 通知管理
//
//go:generate mockgen -source=./notification.go -destination=./mocks/notification.mock.go -package=notificationmocks Service
type Service interface {
	// Resend PENDING 重新发布同一个通知；FAILED 克隆一个新通知；
	// COMPLETED 只有 force 的时候克隆；PROCESSING 返回错误
	Resend(ctx context.Context, id uint64, force bool) (ResendResult, error)
	// ListFailedOrPending 分页查询失败和待发送的通知，search 匹配收件人和主题
	ListFailedOrPending(ctx context.Context, search string, page, resultPerPage int) (Page, error)
}

type notificationService struct {
	repo        repository.NotificationRepository
	idGenerator *sonyflake.Sonyflake
	logger      *elog.Component
}

// NewNotificationService 创建通知服务实例
func NewNotificationService(repo repository.NotificationRepository, idGenerator *sonyflake.Sonyflake) Service {
	return &notificationService{
		repo:        repo,
		idGenerator: idGenerator,
		logger:      elog.DefaultLogger,
	}
}

func (s *notificationService) Resend(ctx context.Context, id uint64, force bool) (ResendResult, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return ResendResult{}, err
	}

	switch {
	case n.Status == domain.NotificationStatusPending:
		// 事件可能丢了，再发布一次，worker 只会处理一次
		if err = s.repo.Republish(ctx, n); err != nil {
			return ResendResult{}, err
		}
		s.logger.Info("重新发布通知", elog.Any("id", id))
		return ResendResult{ID: id}, nil
	case n.Status == domain.NotificationStatusProcessing:
		return ResendResult{}, fmt.Errorf("%w: id = %d", errs.ErrNotificationInFlight, id)
	case n.Status == domain.NotificationStatusCompleted && !force:
		return ResendResult{}, fmt.Errorf("%w: id = %d", errs.ErrNotificationCompleted, id)
	case n.Status.IsTerminal():
		return s.clone(ctx, n)
	default:
		return ResendResult{}, fmt.Errorf("%w: 未知状态 %s", errs.ErrNotificationStatusConflict, n.Status)
	}
}

// clone 终态的通知不会回到 PENDING，重发是一条新通知
func (s *notificationService) clone(ctx context.Context, n domain.Notification) (ResendResult, error) {
	id, err := s.idGenerator.NextID()
	if err != nil {
		return ResendResult{}, fmt.Errorf("%w: %w", errs.ErrNotificationIDGenerateFailed, err)
	}
	c := n.Clone()
	c.ID = id
	if err = c.Validate(); err != nil {
		return ResendResult{}, err
	}
	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return ResendResult{}, err
	}
	s.logger.Info("克隆通知重新发送", elog.Any("from", n.ID), elog.Any("id", created.ID))
	return ResendResult{ID: created.ID, Cloned: true}, nil
}

func (s *notificationService) ListFailedOrPending(ctx context.Context, search string, page, resultPerPage int) (Page, error) {
	if page <= 0 {
		page = defaultPage
	}
	if resultPerPage <= 0 {
		resultPerPage = defaultResultPerPage
	}
	resultPerPage = min(resultPerPage, maxResultPerPage)

	items, total, err := s.repo.ListByStatuses(ctx,
		[]domain.NotificationStatus{domain.NotificationStatusFailed, domain.NotificationStatusPending},
		search, (page-1)*resultPerPage, resultPerPage)
	if err != nil {
		return Page{}, err
	}
	return Page{
		Items:         items,
		Total:         total,
		Page:          page,
		ResultPerPage: resultPerPage,
	}, nil
}
