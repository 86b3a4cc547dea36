package notification

import (
	"context"

	"gitee.com/flycash/notification-dispatch/internal/pkg/mqx"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/ecodeclub/mq-api"
)

//go:generate mockgen -source=./producer.go -package=evtmocks -destination=../mocks/notification_event_producer.mock.go Producer
type Producer interface {
	// ProduceTo 发送到 outbox 记录的 topic，topic 为空的时候使用默认 topic
	ProduceTo(ctx context.Context, topic string, evt Event) error
}

// NewKafkaProducer 同一个通知的事件用通知 ID 作为 key
func NewKafkaProducer(producer *kafka.Producer, topic string) (Producer, error) {
	return mqx.NewGeneralProducer[Event](producer, topic, Event.Key)
}

func NewMQProducer(producer mq.Producer, topic string) Producer {
	return mqx.NewMQProducer[Event](producer, topic, Event.Key)
}
