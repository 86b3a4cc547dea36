package mail

import (
	"context"
	"fmt"
	"path"

	"gitee.com/flycash/notification-dispatch/internal/domain"
	"gitee.com/flycash/notification-dispatch/internal/errs"
	"gitee.com/flycash/notification-dispatch/internal/pkg/storage"
	"gitee.com/flycash/notification-dispatch/internal/repository"
	"github.com/gofrs/uuid"
	"github.com/gotomicro/ego/core/elog"
	"github.com/sony/sonyflake"
)

type EnqueueResult struct {
	Success bool
	ID      uint64
}

// Service 把邮件写入数据库等待 worker 发送
//
//go:generate mockgen -source=./service.go -destination=./mocks/mail.mock.go -package=mailmocks Service
type Service interface {
	// Enqueue 上传附件，渲染模板，然后在同一个事务里面写入通知和发送事件。
	// ctx 里面已经有事务的时候加入该事务
	Enqueue(ctx context.Context, msg domain.Mail) (EnqueueResult, error)
}

// Sender 发件人配置
type Sender struct {
	Email string
	Phone string
}

type service struct {
	repo        repository.NotificationRepository
	storage     storage.Storage
	renderer    *Renderer
	idGenerator *sonyflake.Sonyflake
	sender      Sender
	logger      *elog.Component
}

func NewService(repo repository.NotificationRepository, store storage.Storage,
	renderer *Renderer, idGenerator *sonyflake.Sonyflake, sender Sender,
) Service {
	return &service{
		repo:        repo,
		storage:     store,
		renderer:    renderer,
		idGenerator: idGenerator,
		sender:      sender,
		logger:      elog.DefaultLogger,
	}
}

func (s *service) Enqueue(ctx context.Context, mail domain.Mail) (EnqueueResult, error) {
	if err := mail.Validate(); err != nil {
		return EnqueueResult{}, err
	}

	attachments, err := s.upload(ctx, mail.Attachments)
	if err != nil {
		return EnqueueResult{}, err
	}

	n, err := s.compose(mail)
	if err != nil {
		return EnqueueResult{}, err
	}
	n.Attachments = attachments

	id, err := s.idGenerator.NextID()
	if err != nil {
		return EnqueueResult{}, fmt.Errorf("%w: %w", errs.ErrNotificationIDGenerateFailed, err)
	}
	n.ID = id

	created, err := s.repo.Create(ctx, n)
	if err != nil {
		return EnqueueResult{}, err
	}
	s.logger.Info("通知已入队", elog.Any("id", created.ID), elog.String("type", string(created.Type)))
	return EnqueueResult{Success: true, ID: created.ID}, nil
}

// compose 邮件渲染 HTML 再提取纯文本，短信只有纯文本
func (s *service) compose(mail domain.Mail) (domain.Notification, error) {
	n := domain.Notification{
		Status:  domain.NotificationStatusPending,
		To:      mail.To,
		Subject: mail.Subject,
		Type:    mail.NotificationType(),
	}
	if n.Type == domain.NotificationTypeSMS {
		n.From = s.sender.Phone
		n.Text = mail.Message
		return n, nil
	}
	body, err := s.renderer.Render(mail)
	if err != nil {
		return domain.Notification{}, err
	}
	n.From = s.sender.Email
	n.HTML = body
	n.Text = HTMLToText(body)
	return n, nil
}

func (s *service) upload(ctx context.Context, raws []domain.RawAttachment) ([]domain.Attachment, error) {
	res := make([]domain.Attachment, 0, len(raws))
	for _, raw := range raws {
		key, err := s.objectKey(raw.Filename)
		if err != nil {
			return nil, err
		}
		if err = s.storage.Put(ctx, key, raw.Content, raw.ContentType); err != nil {
			s.logger.Error("上传附件失败", elog.String("filename", raw.Filename), elog.FieldErr(err))
			return nil, err
		}
		res = append(res, domain.Attachment{
			Filename: raw.Filename,
			Path:     key,
			Encoding: raw.Encoding,
		})
	}
	return res, nil
}

func (s *service) objectKey(filename string) (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	return path.Join("attachments", id.String(), path.Base(filename)), nil
}
