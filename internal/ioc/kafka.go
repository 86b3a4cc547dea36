package ioc

import (
	"time"

	"gitee.com/flycash/notification-dispatch/internal/event/notification"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/gotomicro/ego/core/econf"
)

type KafkaConfig struct {
	BootstrapServers string        `yaml:"bootstrapServers"`
	Topic            string        `yaml:"topic"`
	GroupID          string        `yaml:"groupId"`
	BatchSize        int           `yaml:"batchSize"`
	BatchTimeout     time.Duration `yaml:"batchTimeout"`
}

func InitKafkaConfig() KafkaConfig {
	cfg := KafkaConfig{
		Topic:        notification.EventTopic,
		BatchSize:    10,
		BatchTimeout: time.Second,
	}
	if err := econf.UnmarshalKey("kafka", &cfg); err != nil {
		panic(err)
	}
	return cfg
}

func InitKafkaProducer(cfg KafkaConfig) *kafka.Producer {
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": cfg.BootstrapServers,
		"acks":              "all",
	})
	if err != nil {
		panic(err)
	}
	return p
}

// InitKafkaConsumer 关闭自动提交，处理完一批之后按分区提交
func InitKafkaConsumer(cfg KafkaConfig) *kafka.Consumer {
	c, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":  cfg.BootstrapServers,
		"group.id":           cfg.GroupID,
		"auto.offset.reset":  "earliest",
		"enable.auto.commit": false,
	})
	if err != nil {
		panic(err)
	}
	return c
}

func InitEventProducer(p *kafka.Producer, cfg KafkaConfig) notification.Producer {
	producer, err := notification.NewKafkaProducer(p, cfg.Topic)
	if err != nil {
		panic(err)
	}
	return producer
}
