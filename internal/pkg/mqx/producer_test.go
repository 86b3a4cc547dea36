package mqx

import (
	"encoding/json"
	"testing"

	"github.com/ecodeclub/mq-api/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userEvent struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

func TestMQProducer_Produce(t *testing.T) {
	t.Parallel()
	q := memory.NewMQ()
	const topic = "mock_user_events"
	require.NoError(t, q.CreateTopic(t.Context(), topic, 1))

	consumer, err := q.Consumer(topic, "test")
	require.NoError(t, err)
	producer, err := q.Producer(topic)
	require.NoError(t, err)

	p := NewMQProducer[userEvent](producer, topic, func(evt userEvent) string {
		return evt.Name
	})
	require.NoError(t, p.Produce(t.Context(), userEvent{Name: "alex", Age: 18}))

	msg, err := consumer.Consume(t.Context())
	require.NoError(t, err)
	var actual userEvent
	require.NoError(t, json.Unmarshal(msg.Value, &actual))
	assert.Equal(t, userEvent{Name: "alex", Age: 18}, actual)
}

func TestMQProducer_ProduceTo(t *testing.T) {
	t.Parallel()
	q := memory.NewMQ()
	const topic = "mock_order_events"
	require.NoError(t, q.CreateTopic(t.Context(), topic, 1))

	consumer, err := q.Consumer(topic, "test")
	require.NoError(t, err)
	producer, err := q.Producer(topic)
	require.NoError(t, err)
	p := NewMQProducer[userEvent](producer, topic, nil)

	err = p.ProduceTo(t.Context(), "other_topic", userEvent{Name: "tom"})
	assert.ErrorContains(t, err, "other_topic")

	// 空 topic 发送到默认 topic
	require.NoError(t, p.ProduceTo(t.Context(), "", userEvent{Name: "tom", Age: 20}))
	msg, err := consumer.Consume(t.Context())
	require.NoError(t, err)
	var actual userEvent
	require.NoError(t, json.Unmarshal(msg.Value, &actual))
	assert.Equal(t, userEvent{Name: "tom", Age: 20}, actual)
}

func TestNewGeneralProducer(t *testing.T) {
	t.Parallel()
	_, err := NewGeneralProducer[userEvent](nil, "t", nil)
	assert.Error(t, err)
}
