package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"gitee.com/flycash/notification-dispatch/internal/pkg/idempotent"
	idempotentmocks "gitee.com/flycash/notification-dispatch/internal/pkg/idempotent/mocks"
	mqxmocks "gitee.com/flycash/notification-dispatch/internal/pkg/mqx/mocks"
	"gitee.com/flycash/notification-dispatch/internal/pkg/retry"
	dispatchmocks "gitee.com/flycash/notification-dispatch/internal/service/dispatch/mocks"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

var testTopic = EventTopic

func newMessage(partition int32, offset int64, value string) *kafka.Message {
	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &testTopic,
			Partition: partition,
			Offset:    kafka.Offset(offset),
		},
		Value: []byte(value),
	}
}

func timeoutErr() error {
	return kafka.NewError(kafka.ErrTimedOut, "timeout", false)
}

func fastRetry() retry.Config {
	return retry.Config{
		Type:          retry.TypeFixed,
		FixedInterval: &retry.FixedIntervalConfig{MaxRetries: 2, Interval: time.Millisecond},
	}
}

func TestEventConsumer_Consume(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		batchSize int
		mock      func(ctrl *gomock.Controller) (*mqxmocks.MockConsumer, *dispatchmocks.MockService, idempotent.IdempotencyService)
		wantErr   error
	}{
		{
			name:      "每个分区只提交最后一条",
			batchSize: 10,
			mock: func(ctrl *gomock.Controller) (*mqxmocks.MockConsumer, *dispatchmocks.MockService, idempotent.IdempotencyService) {
				consumer := mqxmocks.NewMockConsumer(ctrl)
				svc := dispatchmocks.NewMockService(ctrl)
				m1 := newMessage(0, 1, `{"type":"email","emailId":1}`)
				m2 := newMessage(1, 5, `{"type":"sms","emailId":2}`)
				m3 := newMessage(0, 2, `{"type":"email","emailId":3}`)
				gomock.InOrder(
					consumer.EXPECT().ReadMessage(gomock.Any()).Return(m1, nil),
					consumer.EXPECT().ReadMessage(gomock.Any()).Return(m2, nil),
					consumer.EXPECT().ReadMessage(gomock.Any()).Return(m3, nil),
					consumer.EXPECT().ReadMessage(gomock.Any()).Return(nil, timeoutErr()),
				)
				svc.EXPECT().Dispatch(gomock.Any(), uint64(1)).Return(nil)
				svc.EXPECT().Dispatch(gomock.Any(), uint64(2)).Return(nil)
				svc.EXPECT().Dispatch(gomock.Any(), uint64(3)).Return(nil)
				consumer.EXPECT().CommitMessage(m3).Return(nil, nil)
				consumer.EXPECT().CommitMessage(m2).Return(nil, nil)
				return consumer, svc, idempotent.NewLocalService(time.Minute)
			},
		},
		{
			name:      "跳过非法消息和未知类型",
			batchSize: 10,
			mock: func(ctrl *gomock.Controller) (*mqxmocks.MockConsumer, *dispatchmocks.MockService, idempotent.IdempotencyService) {
				consumer := mqxmocks.NewMockConsumer(ctrl)
				svc := dispatchmocks.NewMockService(ctrl)
				m1 := newMessage(0, 1, `not json`)
				m2 := newMessage(0, 2, `{"type":"push","emailId":2}`)
				gomock.InOrder(
					consumer.EXPECT().ReadMessage(gomock.Any()).Return(m1, nil),
					consumer.EXPECT().ReadMessage(gomock.Any()).Return(m2, nil),
					consumer.EXPECT().ReadMessage(gomock.Any()).Return(nil, timeoutErr()),
				)
				consumer.EXPECT().CommitMessage(m2).Return(nil, nil)
				return consumer, svc, idempotent.NewLocalService(time.Minute)
			},
		},
		{
			name:      "重复投递的消息只处理一次",
			batchSize: 2,
			mock: func(ctrl *gomock.Controller) (*mqxmocks.MockConsumer, *dispatchmocks.MockService, idempotent.IdempotencyService) {
				consumer := mqxmocks.NewMockConsumer(ctrl)
				svc := dispatchmocks.NewMockService(ctrl)
				m1 := newMessage(0, 7, `{"type":"email","emailId":1}`)
				dup := newMessage(0, 7, `{"type":"email","emailId":1}`)
				consumer.EXPECT().ReadMessage(gomock.Any()).Return(m1, nil)
				consumer.EXPECT().ReadMessage(gomock.Any()).Return(dup, nil)
				svc.EXPECT().Dispatch(gomock.Any(), uint64(1)).Return(nil).Times(1)
				consumer.EXPECT().CommitMessage(dup).Return(nil, nil)
				return consumer, svc, idempotent.NewLocalService(time.Minute)
			},
		},
		{
			name:      "基础设施错误在进程内重试",
			batchSize: 1,
			mock: func(ctrl *gomock.Controller) (*mqxmocks.MockConsumer, *dispatchmocks.MockService, idempotent.IdempotencyService) {
				consumer := mqxmocks.NewMockConsumer(ctrl)
				svc := dispatchmocks.NewMockService(ctrl)
				m1 := newMessage(0, 1, `{"type":"email","emailId":1}`)
				consumer.EXPECT().ReadMessage(gomock.Any()).Return(m1, nil)
				gomock.InOrder(
					svc.EXPECT().Dispatch(gomock.Any(), uint64(1)).Return(errors.New("mock db error")),
					svc.EXPECT().Dispatch(gomock.Any(), uint64(1)).Return(nil),
				)
				consumer.EXPECT().CommitMessage(m1).Return(nil, nil)
				return consumer, svc, idempotent.NewLocalService(time.Minute)
			},
		},
		{
			name:      "重试耗尽之后仍然提交",
			batchSize: 1,
			mock: func(ctrl *gomock.Controller) (*mqxmocks.MockConsumer, *dispatchmocks.MockService, idempotent.IdempotencyService) {
				consumer := mqxmocks.NewMockConsumer(ctrl)
				svc := dispatchmocks.NewMockService(ctrl)
				m1 := newMessage(0, 1, `{"type":"sms","emailId":1}`)
				consumer.EXPECT().ReadMessage(gomock.Any()).Return(m1, nil)
				svc.EXPECT().Dispatch(gomock.Any(), uint64(1)).Return(errors.New("mock db error")).Times(3)
				consumer.EXPECT().CommitMessage(m1).Return(nil, nil)
				return consumer, svc, idempotent.NewLocalService(time.Minute)
			},
		},
		{
			name:      "幂等检测失败继续处理",
			batchSize: 1,
			mock: func(ctrl *gomock.Controller) (*mqxmocks.MockConsumer, *dispatchmocks.MockService, idempotent.IdempotencyService) {
				consumer := mqxmocks.NewMockConsumer(ctrl)
				svc := dispatchmocks.NewMockService(ctrl)
				idem := idempotentmocks.NewMockIdempotencyService(ctrl)
				m1 := newMessage(0, 1, `{"type":"email","emailId":1}`)
				consumer.EXPECT().ReadMessage(gomock.Any()).Return(m1, nil)
				idem.EXPECT().MExists(gomock.Any(), "notification_events:0:1").Return(nil, errors.New("mock redis error"))
				svc.EXPECT().Dispatch(gomock.Any(), uint64(1)).Return(nil)
				idem.EXPECT().Mark(gomock.Any(), "notification_events:0:1").Return(errors.New("mock redis error"))
				consumer.EXPECT().CommitMessage(m1).Return(nil, nil)
				return consumer, svc, idem
			},
		},
		{
			name:      "已经处理过的消息跳过",
			batchSize: 2,
			mock: func(ctrl *gomock.Controller) (*mqxmocks.MockConsumer, *dispatchmocks.MockService, idempotent.IdempotencyService) {
				consumer := mqxmocks.NewMockConsumer(ctrl)
				svc := dispatchmocks.NewMockService(ctrl)
				idem := idempotentmocks.NewMockIdempotencyService(ctrl)
				m1 := newMessage(0, 1, `{"type":"email","emailId":1}`)
				m2 := newMessage(0, 2, `{"type":"email","emailId":2}`)
				consumer.EXPECT().ReadMessage(gomock.Any()).Return(m1, nil)
				consumer.EXPECT().ReadMessage(gomock.Any()).Return(m2, nil)
				// 一次查询整批消息
				idem.EXPECT().MExists(gomock.Any(), "notification_events:0:1", "notification_events:0:2").
					Return([]bool{true, false}, nil)
				svc.EXPECT().Dispatch(gomock.Any(), uint64(2)).Return(nil)
				idem.EXPECT().Mark(gomock.Any(), "notification_events:0:2").Return(nil)
				consumer.EXPECT().CommitMessage(m2).Return(nil, nil)
				return consumer, svc, idem
			},
		},
		{
			name:      "发送失败不记录已处理",
			batchSize: 1,
			mock: func(ctrl *gomock.Controller) (*mqxmocks.MockConsumer, *dispatchmocks.MockService, idempotent.IdempotencyService) {
				consumer := mqxmocks.NewMockConsumer(ctrl)
				svc := dispatchmocks.NewMockService(ctrl)
				idem := idempotentmocks.NewMockIdempotencyService(ctrl)
				m1 := newMessage(0, 1, `{"type":"email","emailId":1}`)
				consumer.EXPECT().ReadMessage(gomock.Any()).Return(m1, nil)
				idem.EXPECT().MExists(gomock.Any(), "notification_events:0:1").Return([]bool{false}, nil)
				svc.EXPECT().Dispatch(gomock.Any(), uint64(1)).Return(errors.New("mock db error")).Times(3)
				// 没有 Mark 调用，重新投递的时候还会处理
				consumer.EXPECT().CommitMessage(m1).Return(nil, nil)
				return consumer, svc, idem
			},
		},
		{
			name:      "没有消息不提交",
			batchSize: 10,
			mock: func(ctrl *gomock.Controller) (*mqxmocks.MockConsumer, *dispatchmocks.MockService, idempotent.IdempotencyService) {
				consumer := mqxmocks.NewMockConsumer(ctrl)
				consumer.EXPECT().ReadMessage(gomock.Any()).Return(nil, timeoutErr())
				return consumer, dispatchmocks.NewMockService(ctrl), idempotent.NewLocalService(time.Minute)
			},
		},
		{
			name:      "读消息失败",
			batchSize: 10,
			mock: func(ctrl *gomock.Controller) (*mqxmocks.MockConsumer, *dispatchmocks.MockService, idempotent.IdempotencyService) {
				consumer := mqxmocks.NewMockConsumer(ctrl)
				consumer.EXPECT().ReadMessage(gomock.Any()).
					Return(nil, kafka.NewError(kafka.ErrAllBrokersDown, "down", false))
				return consumer, dispatchmocks.NewMockService(ctrl), idempotent.NewLocalService(time.Minute)
			},
			wantErr: errors.New("获取消息失败"),
		},
		{
			name:      "提交失败",
			batchSize: 1,
			mock: func(ctrl *gomock.Controller) (*mqxmocks.MockConsumer, *dispatchmocks.MockService, idempotent.IdempotencyService) {
				consumer := mqxmocks.NewMockConsumer(ctrl)
				svc := dispatchmocks.NewMockService(ctrl)
				m1 := newMessage(0, 1, `{"type":"email","emailId":1}`)
				consumer.EXPECT().ReadMessage(gomock.Any()).Return(m1, nil)
				svc.EXPECT().Dispatch(gomock.Any(), uint64(1)).Return(nil)
				consumer.EXPECT().CommitMessage(m1).Return(nil, errors.New("mock commit error"))
				return consumer, svc, idempotent.NewLocalService(time.Minute)
			},
			wantErr: errors.New("mock commit error"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			consumer, svc, idem := tc.mock(ctrl)
			c := newEventConsumer(svc, consumer, idem, fastRetry(), tc.batchSize, time.Second)
			err := c.Consume(t.Context())
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tc.wantErr.Error())
		})
	}
}

func TestEventConsumer_ConsumeCanceled(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		batchSize int
		retryCfg  retry.Config
		mock      func(ctrl *gomock.Controller) *mqxmocks.MockConsumer
		dispatch  func(ctrl *gomock.Controller, cancel context.CancelFunc) *dispatchmocks.MockService
	}{
		{
			name:      "处理中的消息跑完，剩余消息不提交",
			batchSize: 3,
			retryCfg:  fastRetry(),
			mock: func(ctrl *gomock.Controller) *mqxmocks.MockConsumer {
				consumer := mqxmocks.NewMockConsumer(ctrl)
				gomock.InOrder(
					consumer.EXPECT().ReadMessage(gomock.Any()).Return(newMessage(0, 1, `{"type":"email","emailId":1}`), nil),
					consumer.EXPECT().ReadMessage(gomock.Any()).Return(newMessage(0, 2, `{"type":"email","emailId":2}`), nil),
					consumer.EXPECT().ReadMessage(gomock.Any()).Return(newMessage(1, 9, `{"type":"sms","emailId":3}`), nil),
				)
				// 分区 0 只提交 offset 1，分区 1 不提交
				consumer.EXPECT().CommitMessage(gomock.Any()).
					DoAndReturn(func(msg *kafka.Message) ([]kafka.TopicPartition, error) {
						assert.Equal(t, int32(0), msg.TopicPartition.Partition)
						assert.Equal(t, kafka.Offset(1), msg.TopicPartition.Offset)
						return nil, nil
					})
				return consumer
			},
			dispatch: func(ctrl *gomock.Controller, cancel context.CancelFunc) *dispatchmocks.MockService {
				svc := dispatchmocks.NewMockService(ctrl)
				svc.EXPECT().Dispatch(gomock.Any(), uint64(1)).
					DoAndReturn(func(ctx context.Context, _ uint64) error {
						cancel()
						// 已经开始的发送不受取消影响
						assert.NoError(t, ctx.Err())
						return nil
					})
				return svc
			},
		},
		{
			name:      "等待重试的时候取消，不提交",
			batchSize: 1,
			retryCfg: retry.Config{
				Type:          retry.TypeFixed,
				FixedInterval: &retry.FixedIntervalConfig{MaxRetries: 2, Interval: time.Hour},
			},
			mock: func(ctrl *gomock.Controller) *mqxmocks.MockConsumer {
				consumer := mqxmocks.NewMockConsumer(ctrl)
				consumer.EXPECT().ReadMessage(gomock.Any()).Return(newMessage(0, 1, `{"type":"email","emailId":1}`), nil)
				return consumer
			},
			dispatch: func(ctrl *gomock.Controller, cancel context.CancelFunc) *dispatchmocks.MockService {
				svc := dispatchmocks.NewMockService(ctrl)
				svc.EXPECT().Dispatch(gomock.Any(), uint64(1)).
					DoAndReturn(func(_ context.Context, _ uint64) error {
						cancel()
						return errors.New("mock db error")
					})
				return svc
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			ctx, cancel := context.WithCancel(t.Context())
			defer cancel()
			consumer := tc.mock(ctrl)
			svc := tc.dispatch(ctrl, cancel)
			c := newEventConsumer(svc, consumer, idempotent.NewLocalService(time.Minute), tc.retryCfg, tc.batchSize, time.Second)
			assert.NoError(t, c.Consume(ctx))
		})
	}
}
