package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"gitee.com/flycash/notification-dispatch/internal/domain"
	evtmocks "gitee.com/flycash/notification-dispatch/internal/event/mocks"
	"gitee.com/flycash/notification-dispatch/internal/event/notification"
	"gitee.com/flycash/notification-dispatch/internal/pkg/retry"
	repomocks "gitee.com/flycash/notification-dispatch/internal/repository/mocks"
	"github.com/ecodeclub/mq-api/memory"
	"github.com/meoying/dlock-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func testConfig() Config {
	return Config{
		BatchSize: 10,
		Retry: retry.Config{
			Type: retry.TypeExponential,
			ExponentialBackoff: &retry.ExponentialBackoffConfig{
				InitialInterval: time.Second, MaxInterval: time.Minute, MaxRetries: 3,
			},
		},
		Retention: time.Hour,
	}
}

func outboxEvent(id int64, emailID uint64, attempts int) domain.OutboxEvent {
	payload, _ := notification.NewEvent(notification.EventTypeEmail, emailID).Marshal()
	return domain.OutboxEvent{
		ID: id, Topic: notification.EventTopic, BizKey: "k", Payload: payload,
		Status: domain.OutboxStatusPending, Attempts: attempts,
	}
}

func TestRelayTask_Relay(t *testing.T) {
	t.Parallel()
	now := time.UnixMilli(1700000000000)

	testCases := []struct {
		name    string
		mock    func(ctrl *gomock.Controller) (*repomocks.MockOutboxRepository, *evtmocks.MockProducer)
		wantErr bool
	}{
		{
			name: "全部转发成功",
			mock: func(ctrl *gomock.Controller) (*repomocks.MockOutboxRepository, *evtmocks.MockProducer) {
				repo := repomocks.NewMockOutboxRepository(ctrl)
				producer := evtmocks.NewMockProducer(ctrl)
				repo.EXPECT().FindReady(gomock.Any(), 10).
					Return([]domain.OutboxEvent{outboxEvent(1, 101, 0), outboxEvent(2, 102, 0)}, nil)
				producer.EXPECT().ProduceTo(gomock.Any(), notification.EventTopic, notification.NewEvent(notification.EventTypeEmail, 101)).Return(nil)
				producer.EXPECT().ProduceTo(gomock.Any(), notification.EventTopic, notification.NewEvent(notification.EventTypeEmail, 102)).Return(nil)
				repo.EXPECT().MarkPublished(gomock.Any(), []int64{1, 2}).Return(nil)
				return repo, producer
			},
		},
		{
			name: "按照记录的 topic 转发",
			mock: func(ctrl *gomock.Controller) (*repomocks.MockOutboxRepository, *evtmocks.MockProducer) {
				repo := repomocks.NewMockOutboxRepository(ctrl)
				producer := evtmocks.NewMockProducer(ctrl)
				evt := outboxEvent(1, 101, 0)
				evt.Topic = "notification_events_priority"
				repo.EXPECT().FindReady(gomock.Any(), 10).Return([]domain.OutboxEvent{evt}, nil)
				producer.EXPECT().ProduceTo(gomock.Any(), "notification_events_priority",
					notification.NewEvent(notification.EventTypeEmail, 101)).Return(nil)
				repo.EXPECT().MarkPublished(gomock.Any(), []int64{1}).Return(nil)
				return repo, producer
			},
		},
		{
			name: "转发失败按指数退避",
			mock: func(ctrl *gomock.Controller) (*repomocks.MockOutboxRepository, *evtmocks.MockProducer) {
				repo := repomocks.NewMockOutboxRepository(ctrl)
				producer := evtmocks.NewMockProducer(ctrl)
				repo.EXPECT().FindReady(gomock.Any(), 10).
					Return([]domain.OutboxEvent{outboxEvent(1, 101, 0), outboxEvent(2, 102, 1)}, nil)
				producer.EXPECT().ProduceTo(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("mock kafka error")).Times(2)
				repo.EXPECT().MarkRetry(gomock.Any(), int64(1), 1, now.Add(time.Second)).Return(nil)
				repo.EXPECT().MarkRetry(gomock.Any(), int64(2), 2, now.Add(2*time.Second)).Return(nil)
				return repo, producer
			},
			wantErr: true,
		},
		{
			name: "重试耗尽标记失败",
			mock: func(ctrl *gomock.Controller) (*repomocks.MockOutboxRepository, *evtmocks.MockProducer) {
				repo := repomocks.NewMockOutboxRepository(ctrl)
				producer := evtmocks.NewMockProducer(ctrl)
				repo.EXPECT().FindReady(gomock.Any(), 10).
					Return([]domain.OutboxEvent{outboxEvent(1, 101, 3), outboxEvent(2, 102, 0)}, nil)
				producer.EXPECT().ProduceTo(gomock.Any(), notification.EventTopic, notification.NewEvent(notification.EventTypeEmail, 101)).
					Return(errors.New("mock kafka error"))
				producer.EXPECT().ProduceTo(gomock.Any(), notification.EventTopic, notification.NewEvent(notification.EventTypeEmail, 102)).Return(nil)
				repo.EXPECT().MarkFailed(gomock.Any(), int64(1), 4).Return(nil)
				repo.EXPECT().MarkPublished(gomock.Any(), []int64{2}).Return(nil)
				return repo, producer
			},
			wantErr: true,
		},
		{
			name: "负载无法解析",
			mock: func(ctrl *gomock.Controller) (*repomocks.MockOutboxRepository, *evtmocks.MockProducer) {
				repo := repomocks.NewMockOutboxRepository(ctrl)
				evt := outboxEvent(1, 101, 0)
				evt.Payload = "{bad"
				repo.EXPECT().FindReady(gomock.Any(), 10).Return([]domain.OutboxEvent{evt}, nil)
				repo.EXPECT().MarkRetry(gomock.Any(), int64(1), 1, gomock.Any()).Return(nil)
				return repo, evtmocks.NewMockProducer(ctrl)
			},
			wantErr: true,
		},
		{
			name: "没有事件时清理",
			mock: func(ctrl *gomock.Controller) (*repomocks.MockOutboxRepository, *evtmocks.MockProducer) {
				repo := repomocks.NewMockOutboxRepository(ctrl)
				repo.EXPECT().FindReady(gomock.Any(), 10).Return(nil, nil)
				repo.EXPECT().DeletePublishedBefore(gomock.Any(), now.Add(-time.Hour)).Return(int64(3), nil)
				return repo, evtmocks.NewMockProducer(ctrl)
			},
		},
		{
			name: "查询失败",
			mock: func(ctrl *gomock.Controller) (*repomocks.MockOutboxRepository, *evtmocks.MockProducer) {
				repo := repomocks.NewMockOutboxRepository(ctrl)
				repo.EXPECT().FindReady(gomock.Any(), 10).Return(nil, errors.New("mock db error"))
				return repo, evtmocks.NewMockProducer(ctrl)
			},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo, producer := tc.mock(ctrl)
			task := NewRelayTask(nil, repo, producer, testConfig())
			task.now = func() time.Time { return now }
			err := task.Relay(t.Context())
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRelayTask_PurgeOncePerRetention(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	now := time.UnixMilli(1700000000000)
	repo := repomocks.NewMockOutboxRepository(ctrl)
	repo.EXPECT().FindReady(gomock.Any(), 10).Return(nil, nil).Times(2)
	repo.EXPECT().DeletePublishedBefore(gomock.Any(), gomock.Any()).Return(int64(0), nil).Times(1)

	task := NewRelayTask(nil, repo, evtmocks.NewMockProducer(ctrl), testConfig())
	task.now = func() time.Time { return now }
	require.NoError(t, task.Relay(t.Context()))
	require.NoError(t, task.Relay(t.Context()))
}

func TestRelayTask_WithMemoryQueue(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	q := memory.NewMQ()
	require.NoError(t, q.CreateTopic(t.Context(), notification.EventTopic, 1))
	consumer, err := q.Consumer(notification.EventTopic, "worker")
	require.NoError(t, err)
	mqProducer, err := q.Producer(notification.EventTopic)
	require.NoError(t, err)

	repo := repomocks.NewMockOutboxRepository(ctrl)
	repo.EXPECT().FindReady(gomock.Any(), 10).Return([]domain.OutboxEvent{outboxEvent(1, 101, 0)}, nil)
	repo.EXPECT().MarkPublished(gomock.Any(), []int64{1}).Return(nil)

	task := NewRelayTask(nil, repo, notification.NewMQProducer(mqProducer, notification.EventTopic), testConfig())
	require.NoError(t, task.Relay(t.Context()))

	msg, err := consumer.Consume(t.Context())
	require.NoError(t, err)
	var evt notification.Event
	require.NoError(t, json.Unmarshal(msg.Value, &evt))
	assert.Equal(t, notification.NewEvent(notification.EventTypeEmail, 101), evt)
}

type unavailableLockClient struct{}

func (unavailableLockClient) NewLock(context.Context, string, time.Duration) (dlock.Lock, error) {
	return nil, errors.New("mock redis error")
}

func TestRelayTask_Done(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	task := NewRelayTask(unavailableLockClient{}, repomocks.NewMockOutboxRepository(ctrl),
		evtmocks.NewMockProducer(ctrl), testConfig())
	ctx, cancel := context.WithCancel(t.Context())
	go task.Start(ctx)

	select {
	case <-task.Done():
		t.Fatal("还没有取消就退出了")
	case <-time.After(50 * time.Millisecond):
	}

	cancel()
	select {
	case <-task.Done():
	case <-time.After(time.Second):
		t.Fatal("取消之后没有退出")
	}
}
