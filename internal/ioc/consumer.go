package ioc

import (
	"gitee.com/flycash/notification-dispatch/internal/event/notification"
	"gitee.com/flycash/notification-dispatch/internal/pkg/idempotent"
	"gitee.com/flycash/notification-dispatch/internal/pkg/retry"
	"gitee.com/flycash/notification-dispatch/internal/service/dispatch"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

func InitEventConsumer(svc dispatch.Service, consumer *kafka.Consumer,
	idempotentSvc idempotent.IdempotencyService, retryCfg retry.Config, cfg KafkaConfig,
) *notification.EventConsumer {
	c, err := notification.NewEventConsumer(svc, consumer, idempotentSvc, retryCfg,
		cfg.BatchSize, cfg.BatchTimeout, cfg.Topic)
	if err != nil {
		panic(err)
	}
	return c
}
