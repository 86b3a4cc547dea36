package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gitee.com/flycash/notification-dispatch/internal/pkg/idempotent"
	"gitee.com/flycash/notification-dispatch/internal/pkg/mqx"
	"gitee.com/flycash/notification-dispatch/internal/pkg/retry"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/gotomicro/ego/core/elog"
)

// Dispatcher 按照通知 ID 发送通知
type Dispatcher interface {
	Dispatch(ctx context.Context, id uint64) error
}

type EventConsumer struct {
	consumer    mqx.Consumer
	dispatchers map[string]Dispatcher
	idempotent  idempotent.IdempotencyService
	retryCfg    retry.Config

	batchSize    int
	batchTimeout time.Duration

	done   chan struct{}
	logger *elog.Component
}

func NewEventConsumer(
	dispatcher Dispatcher,
	consumer *kafka.Consumer,
	idempotentSvc idempotent.IdempotencyService,
	retryCfg retry.Config,
	batchSize int,
	batchTimeout time.Duration,
	topic string,
) (*EventConsumer, error) {
	err := consumer.SubscribeTopics([]string{topic}, nil)
	if err != nil {
		return nil, err
	}
	return newEventConsumer(dispatcher, consumer, idempotentSvc, retryCfg, batchSize, batchTimeout), nil
}

func newEventConsumer(
	dispatcher Dispatcher,
	consumer mqx.Consumer,
	idempotentSvc idempotent.IdempotencyService,
	retryCfg retry.Config,
	batchSize int,
	batchTimeout time.Duration,
) *EventConsumer {
	return &EventConsumer{
		consumer: consumer,
		dispatchers: map[string]Dispatcher{
			EventTypeEmail: dispatcher,
			EventTypeSMS:   dispatcher,
		},
		idempotent:   idempotentSvc,
		retryCfg:     retryCfg,
		batchSize:    batchSize,
		batchTimeout: batchTimeout,
		done:         make(chan struct{}),
		logger:       elog.DefaultLogger,
	}
}

func (c *EventConsumer) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		for ctx.Err() == nil {
			er := c.Consume(ctx)
			if er != nil {
				c.logger.Error("消费通知事件失败", elog.FieldErr(er))
			}
		}
		c.logger.Info("通知事件消费者退出")
	}()
}

// Done 消费循环退出之后关闭
func (c *EventConsumer) Done() <-chan struct{} {
	return c.done
}

type received struct {
	msg *kafka.Message
	evt Event
	// valid 为 false 说明消息无法解析，直接提交
	valid bool
}

// Consume 处理一批消息。已经开始处理的消息使用不会被取消的 ctx 跑完，
// ctx 取消之后剩下的消息不处理也不提交，重启之后重新投递
func (c *EventConsumer) Consume(ctx context.Context) error {
	batch, err := c.collect(ctx)
	if err != nil {
		return err
	}
	if len(batch) == 0 {
		return nil
	}

	handled := make([]bool, len(batch))
	dup := c.duplicates(ctx, batch)
	workCtx := context.WithoutCancel(ctx)
	for i, r := range batch {
		if ctx.Err() != nil {
			c.logger.Info("消费者退出，剩余消息不提交", elog.Int("remaining", len(batch)-i))
			break
		}
		if !r.valid || dup[i] {
			handled[i] = true
			continue
		}
		handled[i] = c.handle(ctx, workCtx, r)
	}
	return c.commit(batch, handled)
}

// commit 每个分区只提交第一条未处理消息之前的最后一条
func (c *EventConsumer) commit(batch []received, handled []bool) error {
	lastMessages := make(map[int32]*kafka.Message)
	blocked := make(map[int32]bool)
	for i, r := range batch {
		partition := r.msg.TopicPartition.Partition
		if blocked[partition] {
			continue
		}
		if !handled[i] {
			blocked[partition] = true
			continue
		}
		lastMessages[partition] = r.msg
	}
	for _, lastMsg := range lastMessages {
		if _, err := c.consumer.CommitMessage(lastMsg); err != nil {
			c.logger.Warn("提交消息失败",
				elog.FieldErr(err),
				elog.Any("partition", lastMsg.TopicPartition.Partition),
				elog.Any("offset", lastMsg.TopicPartition.Offset))
			return err
		}
	}
	return nil
}

// collect 攒够 batchSize 条或者等到 batchTimeout 为止，解析失败的消息也要提交
func (c *EventConsumer) collect(ctx context.Context) ([]received, error) {
	batch := make([]received, 0, c.batchSize)
	batchTimer := time.NewTimer(c.batchTimeout)
	defer batchTimer.Stop()

collectBatch:
	for len(batch) < c.batchSize {
		select {
		case <-ctx.Done():
			break collectBatch
		case <-batchTimer.C:
			break collectBatch
		default:
		}

		msg, err := c.consumer.ReadMessage(c.batchTimeout)
		if err != nil {
			if mqx.IsTimeout(err) {
				break collectBatch
			}
			return nil, fmt.Errorf("获取消息失败: %w", err)
		}

		var evt Event
		if err = json.Unmarshal(msg.Value, &evt); err != nil {
			c.logger.Warn("解析消息失败，跳过",
				elog.FieldErr(err),
				elog.Any("partition", msg.TopicPartition.Partition),
				elog.Any("offset", msg.TopicPartition.Offset))
			batch = append(batch, received{msg: msg})
			continue
		}
		batch = append(batch, received{msg: msg, evt: evt, valid: true})
	}
	return batch, nil
}

// duplicates 一次批量查询已经处理过的消息，同一批里面重复的消息也算
func (c *EventConsumer) duplicates(ctx context.Context, batch []received) []bool {
	res := make([]bool, len(batch))
	keys := make([]string, 0, len(batch))
	idx := make([]int, 0, len(batch))
	seen := make(map[string]struct{}, len(batch))
	for i, r := range batch {
		if !r.valid {
			continue
		}
		key := c.dedupKey(r.msg)
		if _, ok := seen[key]; ok {
			res[i] = true
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
		idx = append(idx, i)
	}
	if len(keys) == 0 {
		return res
	}
	exists, err := c.idempotent.MExists(ctx, keys...)
	if err != nil || len(exists) != len(keys) {
		c.logger.Warn("幂等检测失败，继续处理", elog.FieldErr(err))
		return res
	}
	for j, i := range idx {
		if exists[j] {
			c.logger.Info("重复消息，跳过", elog.Any("id", batch[i].evt.EmailID))
			res[i] = true
		}
	}
	return res
}

// handle 返回 false 说明消息没有处理完，不能提交。
// 发送用 workCtx，等待重试的时候响应 ctx 取消
func (c *EventConsumer) handle(ctx, workCtx context.Context, r received) bool {
	dispatcher, ok := c.dispatchers[r.evt.Type]
	if !ok {
		c.logger.Warn("未知的事件类型，跳过", elog.String("type", r.evt.Type), elog.Any("id", r.evt.EmailID))
		return true
	}

	strategy, err := retry.NewRetry(c.retryCfg)
	if err != nil {
		c.logger.Error("重试配置错误", elog.FieldErr(err))
		return false
	}
	for {
		err = dispatcher.Dispatch(workCtx, r.evt.EmailID)
		if err == nil {
			// 只记录处理成功的消息
			if mErr := c.idempotent.Mark(workCtx, c.dedupKey(r.msg)); mErr != nil {
				c.logger.Warn("记录已处理消息失败", elog.Any("id", r.evt.EmailID), elog.FieldErr(mErr))
			}
			return true
		}
		next, ok := strategy.Next()
		if !ok {
			// 通知保持 PENDING，可以通过重发接口补偿
			c.logger.Error("发送通知失败，放弃重试", elog.Any("id", r.evt.EmailID), elog.FieldErr(err))
			return true
		}
		c.logger.Warn("发送通知失败，稍后重试", elog.Any("id", r.evt.EmailID), elog.FieldErr(err))
		select {
		case <-ctx.Done():
			return false
		case <-time.After(next):
		}
	}
}

// dedupKey 以消息的位置去重，重新发布的事件是新消息，不会被过滤
func (c *EventConsumer) dedupKey(msg *kafka.Message) string {
	topic := ""
	if msg.TopicPartition.Topic != nil {
		topic = *msg.TopicPartition.Topic
	}
	return fmt.Sprintf("%s:%d:%d", topic, msg.TopicPartition.Partition, msg.TopicPartition.Offset)
}
