package dispatch

import (
	"context"
	"errors"
	"fmt"

	"gitee.com/flycash/notification-dispatch/internal/domain"
	"gitee.com/flycash/notification-dispatch/internal/errs"
	"gitee.com/flycash/notification-dispatch/internal/pkg/storage"
	"gitee.com/flycash/notification-dispatch/internal/repository"
	"gitee.com/flycash/notification-dispatch/internal/service/channel"
	"github.com/gotomicro/ego/core/elog"
	"golang.org/x/sync/errgroup"
)

const maxConcurrentDownloads = 4

// Service 真正发送一条通知
//
//go:generate mockgen -source=./service.go -destination=./mocks/dispatch.mock.go -package=dispatchmocks Service
type Service interface {
	// Dispatch 只有抢到 PENDING -> PROCESSING 的调用会发送。
	// 发送失败不返回错误，通知会被标记为 FAILED；返回的错误都发生在抢占之前，可以重试
	Dispatch(ctx context.Context, id uint64) error
}

type service struct {
	repo    repository.NotificationRepository
	storage storage.Storage
	channel channel.Channel
	logger  *elog.Component
}

func NewService(repo repository.NotificationRepository, store storage.Storage, ch channel.Channel) Service {
	return &service{
		repo:    repo,
		storage: store,
		channel: ch,
		logger:  elog.DefaultLogger,
	}
}

func (s *service) Dispatch(ctx context.Context, id uint64) error {
	n, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, errs.ErrNotificationNotFound) {
		s.logger.Warn("通知不存在，忽略", elog.Any("id", id))
		return nil
	}
	if err != nil {
		return err
	}

	err = s.repo.CASStatus(ctx, id, domain.NotificationStatusPending, domain.NotificationStatusProcessing)
	if errors.Is(err, errs.ErrNotificationStatusConflict) {
		// 重复投递或者别的 worker 已经在处理
		s.logger.Info("通知已被处理，跳过", elog.Any("id", id), elog.String("status", n.Status.String()))
		return nil
	}
	if err != nil {
		return err
	}

	target := domain.NotificationStatusCompleted
	if sendErr := s.send(ctx, n); sendErr != nil {
		s.logger.Error("发送通知失败", elog.Any("id", id), elog.String("type", string(n.Type)), elog.FieldErr(sendErr))
		target = domain.NotificationStatusFailed
	}

	// 这里失败的话通知会停留在 PROCESSING，由超时任务标记为 FAILED
	if err = s.repo.CASStatus(ctx, id, domain.NotificationStatusProcessing, target); err != nil {
		s.logger.Error("更新通知状态失败", elog.Any("id", id), elog.String("to", target.String()), elog.FieldErr(err))
	}
	return nil
}

func (s *service) send(ctx context.Context, n domain.Notification) error {
	attachments, err := s.resolve(ctx, n.Attachments)
	if err != nil {
		return err
	}
	return s.channel.Send(ctx, domain.Message{
		NotificationID: n.ID,
		Type:           n.Type,
		From:           n.From,
		To:             n.To,
		Subject:        n.Subject,
		Text:           n.Text,
		HTML:           n.HTML,
		Attachments:    attachments,
	})
}

// resolve 并发下载附件，保持原来的顺序
func (s *service) resolve(ctx context.Context, attachments []domain.Attachment) ([]domain.ResolvedAttachment, error) {
	if len(attachments) == 0 {
		return nil, nil
	}
	res := make([]domain.ResolvedAttachment, len(attachments))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(maxConcurrentDownloads)
	for i, a := range attachments {
		eg.Go(func() error {
			content, err := s.storage.Get(egCtx, a.Path)
			if err != nil {
				return fmt.Errorf("下载附件 %s 失败 %w", a.Filename, err)
			}
			content, err = decode(content, a.Encoding)
			if err != nil {
				return err
			}
			res[i] = domain.ResolvedAttachment{Filename: a.Filename, Content: content}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}
