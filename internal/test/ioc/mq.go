package ioc

import (
	"context"
	"fmt"
	"sync"

	"gitee.com/flycash/notification-dispatch/internal/event/notification"
	"github.com/ecodeclub/mq-api"
	"github.com/ecodeclub/mq-api/memory"
	"github.com/sony/sonyflake"
)

var (
	q          mq.MQ
	mqInitOnce sync.Once
)

// InitMQ 用内存实现代替 Kafka，方便测试
func InitMQ() mq.MQ {
	mqInitOnce.Do(func() {
		qq := memory.NewMQ()
		err := qq.CreateTopic(context.Background(), notification.EventTopic, 1)
		if err != nil {
			panic(fmt.Sprintf("创建topic失败: %v", err))
		}
		q = qq
	})
	return q
}

func InitIDGenerator() *sonyflake.Sonyflake {
	return sonyflake.NewSonyflake(sonyflake.Settings{
		MachineID: func() (uint16, error) {
			return 1, nil
		},
	})
}
