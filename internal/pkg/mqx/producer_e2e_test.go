//go:build e2e

package mqx

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestGeneralProducerE2E(t *testing.T) {
	suite.Run(t, new(GeneralProducerTestSuite))
}

type GeneralProducerTestSuite struct {
	suite.Suite
}

func (s *GeneralProducerTestSuite) TestProduceAndConsume() {
	t := s.T()
	addr := "localhost:9092"
	topic := "mock_user_events"
	kp, err := kafka.NewProducer(&kafka.ConfigMap{"bootstrap.servers": addr})
	require.NoError(t, err)
	defer kp.Close()

	producer, err := NewGeneralProducer[userEvent](kp, topic, func(evt userEvent) string {
		return evt.Name
	})
	require.NoError(t, err)

	expected := userEvent{Name: "alex", Age: 18}
	require.NoError(t, producer.Produce(t.Context(), expected))

	consumer, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":  addr,
		"group.id":           fmt.Sprintf("test-%d", time.Now().UnixNano()),
		"auto.offset.reset":  "earliest",
		"enable.auto.commit": "false",
	})
	require.NoError(t, err)
	defer consumer.Close()
	require.NoError(t, consumer.SubscribeTopics([]string{topic}, nil))

	message, err := consumer.ReadMessage(time.Second * 10)
	require.NoError(t, err)

	var actual userEvent
	require.NoError(t, json.Unmarshal(message.Value, &actual))
	assert.Equal(t, expected, actual)
	assert.Equal(t, "alex", string(message.Key))
}
