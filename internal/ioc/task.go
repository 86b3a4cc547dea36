package ioc

import (
	"context"
	"time"

	"gitee.com/flycash/notification-dispatch/internal/event/notification"
	"gitee.com/flycash/notification-dispatch/internal/pkg/retry"
	"gitee.com/flycash/notification-dispatch/internal/repository"
	notificationsvc "gitee.com/flycash/notification-dispatch/internal/service/notification"
	"gitee.com/flycash/notification-dispatch/internal/service/outbox"
	"github.com/gotomicro/ego/core/econf"
	"github.com/meoying/dlock-go"
)

// Task 后台任务，ctx 取消之后退出
type Task interface {
	Start(ctx context.Context)
	// Done Start 返回之后关闭
	Done() <-chan struct{}
}

func InitRelayTask(dclient dlock.Client, repo repository.OutboxRepository, producer notification.Producer) *outbox.RelayTask {
	cfg := outbox.Config{
		BatchSize: 100,
		Retry: retry.Config{
			Type: retry.TypeExponential,
			ExponentialBackoff: &retry.ExponentialBackoffConfig{
				InitialInterval: time.Second,
				MaxInterval:     time.Minute,
				MaxRetries:      10,
			},
		},
		Retention:    24 * time.Hour,
		IdleInterval: time.Second,
	}
	if err := econf.UnmarshalKey("outbox", &cfg); err != nil {
		panic(err)
	}
	return outbox.NewRelayTask(dclient, repo, producer, cfg)
}

func InitProcessingTimeoutTask(dclient dlock.Client, repo repository.NotificationRepository) *notificationsvc.ProcessingTimeoutTask {
	type Config struct {
		ProcessingTimeout time.Duration `yaml:"processingTimeout"`
	}
	cfg := Config{ProcessingTimeout: 10 * time.Minute}
	if err := econf.UnmarshalKey("notification", &cfg); err != nil {
		panic(err)
	}
	return notificationsvc.NewProcessingTimeoutTask(dclient, repo, cfg.ProcessingTimeout)
}

func InitTasks(t1 *outbox.RelayTask, t2 *notificationsvc.ProcessingTimeoutTask) []Task {
	return []Task{
		t1,
		t2,
	}
}
