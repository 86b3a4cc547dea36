package ioc

import (
	"gitee.com/flycash/notification-dispatch/internal/domain"
	"gitee.com/flycash/notification-dispatch/internal/service/channel"
	"gitee.com/flycash/notification-dispatch/internal/service/provider"
	"gitee.com/flycash/notification-dispatch/internal/service/provider/email"
	"gitee.com/flycash/notification-dispatch/internal/service/provider/metrics"
	"gitee.com/flycash/notification-dispatch/internal/service/provider/sequential"
	"gitee.com/flycash/notification-dispatch/internal/service/provider/tracing"
	"github.com/gotomicro/ego/core/econf"
)

const providerSMTP = "smtp"

// wrapProvider 外层是链路追踪，里层是指标
func wrapProvider(name string, p provider.Provider) provider.Provider {
	return tracing.NewProvider(name, metrics.NewProvider(name, p))
}

func InitEmailProviders() []provider.Provider {
	var cfg email.Config
	if err := econf.UnmarshalKey("smtp", &cfg); err != nil {
		panic(err)
	}
	return []provider.Provider{
		wrapProvider(providerSMTP, email.NewSMTPProvider(email.NewDialer(cfg))),
	}
}

// InitChannel 按照通知类型选择渠道
func InitChannel() channel.Channel {
	return channel.NewDispatcher(map[domain.NotificationType]channel.Channel{
		domain.NotificationTypeEmail: channel.NewEmailChannel(sequential.NewSelectorBuilder(InitEmailProviders())),
		domain.NotificationTypeSMS:   channel.NewSMSChannel(sequential.NewSelectorBuilder(InitSMSProviders())),
	})
}
