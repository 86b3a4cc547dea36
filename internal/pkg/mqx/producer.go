package mqx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/ecodeclub/mq-api"
)

// GeneralProducer 把事件序列化成 JSON 发送到 kafka，等待投递结果
type GeneralProducer[T any] struct {
	producer *kafka.Producer
	topic    string
	key      func(T) string
}

func NewGeneralProducer[T any](producer *kafka.Producer, topic string, key func(T) string) (*GeneralProducer[T], error) {
	if producer == nil {
		return nil, errors.New("kafka producer 不能为 nil")
	}
	return &GeneralProducer[T]{producer: producer, topic: topic, key: key}, nil
}

func (p *GeneralProducer[T]) Produce(ctx context.Context, evt T) error {
	return p.ProduceTo(ctx, p.topic, evt)
}

// ProduceTo topic 为空的时候发送到默认 topic
func (p *GeneralProducer[T]) ProduceTo(ctx context.Context, topic string, evt T) error {
	if topic == "" {
		topic = p.topic
	}
	val, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("序列化消息失败 %w", err)
	}
	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          val,
	}
	if p.key != nil {
		msg.Key = []byte(p.key(evt))
	}

	deliveryChan := make(chan kafka.Event, 1)
	if err = p.producer.Produce(msg, deliveryChan); err != nil {
		return fmt.Errorf("发送消息失败 %w", err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case e := <-deliveryChan:
		m, ok := e.(*kafka.Message)
		if !ok {
			return fmt.Errorf("未知的投递结果 %v", e)
		}
		if m.TopicPartition.Error != nil {
			return fmt.Errorf("投递消息失败 %w", m.TopicPartition.Error)
		}
		return nil
	}
}

// MQProducer 基于 mq-api 的实现，测试里面配合内存队列使用
type MQProducer[T any] struct {
	producer mq.Producer
	topic    string
	key      func(T) string
}

func NewMQProducer[T any](producer mq.Producer, topic string, key func(T) string) *MQProducer[T] {
	return &MQProducer[T]{producer: producer, topic: topic, key: key}
}

func (p *MQProducer[T]) Produce(ctx context.Context, evt T) error {
	return p.ProduceTo(ctx, p.topic, evt)
}

// ProduceTo mq-api 的生产者绑定了 topic，不能发送到别的 topic
func (p *MQProducer[T]) ProduceTo(ctx context.Context, topic string, evt T) error {
	if topic != "" && topic != p.topic {
		return fmt.Errorf("生产者绑定的 topic 是 %s，不能发送到 %s", p.topic, topic)
	}
	val, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("序列化消息失败 %w", err)
	}
	msg := &mq.Message{
		Topic: p.topic,
		Value: val,
	}
	if p.key != nil {
		msg.Key = []byte(p.key(evt))
	}
	_, err = p.producer.Produce(ctx, msg)
	return err
}
