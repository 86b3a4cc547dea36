package ioc

import (
	"gitee.com/flycash/notification-dispatch/internal/event/notification"
	"gitee.com/flycash/notification-dispatch/internal/pkg/database/dbx"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/redis/go-redis/v9"
)

type App struct {
	Consumer *notification.EventConsumer

	Pool          *dbx.Pool
	Redis         *redis.Client
	KafkaConsumer *kafka.Consumer
}

// Close 消费循环退出之后调用，关闭 consumer 的时候会离开消费组
func (a *App) Close() error {
	<-a.Consumer.Done()
	if err := a.KafkaConsumer.Close(); err != nil {
		return err
	}
	if err := a.Redis.Close(); err != nil {
		return err
	}
	return a.Pool.Close()
}
