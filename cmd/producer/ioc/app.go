package ioc

import (
	"context"

	"gitee.com/flycash/notification-dispatch/internal/ioc"
	"gitee.com/flycash/notification-dispatch/internal/pkg/database/dbx"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/gotomicro/ego/server/egin"
	"github.com/redis/go-redis/v9"
)

type App struct {
	GinServer *egin.Component
	Tasks     []ioc.Task

	Pool          *dbx.Pool
	Redis         *redis.Client
	KafkaProducer *kafka.Producer
}

func (a *App) StartTasks(ctx context.Context) {
	for _, t := range a.Tasks {
		go func(t ioc.Task) {
			t.Start(ctx)
		}(t)
	}
}

// waitTasks 等所有后台任务退出，不然还在转发的事件会用到已经关闭的连接
func (a *App) waitTasks() {
	for _, t := range a.Tasks {
		<-t.Done()
	}
}

// Close 后台任务退出之后调用，先等待 Kafka 把缓冲的消息发出去
func (a *App) Close() error {
	a.waitTasks()
	const flushTimeoutMs = 5000
	a.KafkaProducer.Flush(flushTimeoutMs)
	a.KafkaProducer.Close()
	if err := a.Redis.Close(); err != nil {
		return err
	}
	return a.Pool.Close()
}
