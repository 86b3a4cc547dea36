package channel

import (
	"context"
	"errors"
	"fmt"

	"gitee.com/flycash/notification-dispatch/internal/domain"
	"gitee.com/flycash/notification-dispatch/internal/errs"
	"gitee.com/flycash/notification-dispatch/internal/service/provider"
	"github.com/gotomicro/ego/core/elog"
	"github.com/hashicorp/go-multierror"
)

// baseChannel 按照选择器的顺序尝试供应商，直到有一个成功
type baseChannel struct {
	builder provider.SelectorBuilder
	logger  *elog.Component
}

func (s *baseChannel) Send(ctx context.Context, msg domain.Message) error {
	selector, err := s.builder.Build()
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrSendFailed, err)
	}

	var sendErrs error
	for {
		p, err1 := selector.Next(ctx, msg)
		if err1 != nil {
			if errors.Is(err1, errs.ErrNoAvailableProvider) && sendErrs != nil {
				// 所有供应商都失败了
				return fmt.Errorf("%w: %w", errs.ErrSendFailed, sendErrs)
			}
			return err1
		}

		err2 := p.Send(ctx, msg)
		if err2 == nil {
			return nil
		}
		s.logger.Warn("供应商发送失败，尝试下一个",
			elog.Any("id", msg.NotificationID), elog.FieldErr(err2))
		sendErrs = multierror.Append(sendErrs, err2)
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %w", errs.ErrSendFailed, sendErrs)
		}
	}
}

type smsChannel struct {
	baseChannel
}

func NewSMSChannel(builder provider.SelectorBuilder) Channel {
	return &smsChannel{
		baseChannel{
			builder: builder,
			logger:  elog.DefaultLogger,
		},
	}
}

type emailChannel struct {
	baseChannel
}

func NewEmailChannel(builder provider.SelectorBuilder) Channel {
	return &emailChannel{
		baseChannel{
			builder: builder,
			logger:  elog.DefaultLogger,
		},
	}
}
