package channel

import (
	"context"
	"fmt"

	"gitee.com/flycash/notification-dispatch/internal/domain"
	"gitee.com/flycash/notification-dispatch/internal/errs"
)

// Channel 渠道接口
//
//go:generate mockgen -source=./channel.go -destination=./mocks/channel.mock.go -package=channelmocks Channel
type Channel interface {
	// Send 发送通知
	Send(ctx context.Context, msg domain.Message) error
}

// Dispatcher 渠道分发器，对外伪装成Channel，作为统一入口
type Dispatcher struct {
	channels map[domain.NotificationType]Channel
}

// NewDispatcher 创建渠道分发器
func NewDispatcher(channels map[domain.NotificationType]Channel) *Dispatcher {
	return &Dispatcher{
		channels: channels,
	}
}

func (d *Dispatcher) Send(ctx context.Context, msg domain.Message) error {
	ch, ok := d.channels[msg.Type]
	if !ok {
		return fmt.Errorf("%w: %s", errs.ErrNoAvailableChannel, msg.Type)
	}
	return ch.Send(ctx, msg)
}
