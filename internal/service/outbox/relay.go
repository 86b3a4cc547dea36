package outbox

import (
	"context"
	"encoding/json"
	"time"

	"gitee.com/flycash/notification-dispatch/internal/domain"
	"gitee.com/flycash/notification-dispatch/internal/event/notification"
	"gitee.com/flycash/notification-dispatch/internal/pkg/loopjob"
	"gitee.com/flycash/notification-dispatch/internal/pkg/retry"
	"gitee.com/flycash/notification-dispatch/internal/repository"
	"github.com/gotomicro/ego/core/elog"
	"github.com/hashicorp/go-multierror"
	"github.com/meoying/dlock-go"
)

const relayKey = "notification_outbox_relay"

type Config struct {
	BatchSize int           `yaml:"batchSize"`
	Retry     retry.Config  `yaml:"retry"`
	Retention time.Duration `yaml:"retention"`
	// IdleInterval 没有待转发事件时的休眠时间
	IdleInterval time.Duration `yaml:"idleInterval"`
}

// RelayTask 把已经提交的事件转发到消息队列
type RelayTask struct {
	dclient  dlock.Client
	repo     repository.OutboxRepository
	producer notification.Producer
	cfg      Config

	lastPurge time.Time
	now       func() time.Time
	logger    *elog.Component
	done      chan struct{}
}

func NewRelayTask(dclient dlock.Client, repo repository.OutboxRepository,
	producer notification.Producer, cfg Config,
) *RelayTask {
	return &RelayTask{
		dclient:  dclient,
		repo:     repo,
		producer: producer,
		cfg:      cfg,
		now:      time.Now,
		logger:   elog.DefaultLogger,
		done:     make(chan struct{}),
	}
}

// Start 只能调用一次，ctx 取消之后退出
func (t *RelayTask) Start(ctx context.Context) {
	defer close(t.done)
	lj := loopjob.NewInfiniteLoop(t.dclient, t.Relay, relayKey)
	lj.Run(ctx)
}

// Done 转发循环退出之后关闭
func (t *RelayTask) Done() <-chan struct{} {
	return t.done
}

// Relay 转发一批事件，没有事件的时候顺便清理已经转发的旧事件
func (t *RelayTask) Relay(ctx context.Context) error {
	evts, err := t.repo.FindReady(ctx, t.cfg.BatchSize)
	if err != nil {
		t.sleep(ctx)
		return err
	}
	if len(evts) == 0 {
		t.purge(ctx)
		t.sleep(ctx)
		return nil
	}

	var (
		published = make([]int64, 0, len(evts))
		relayErr  error
	)
	for _, evt := range evts {
		if err = t.publish(ctx, evt); err != nil {
			relayErr = multierror.Append(relayErr, err)
			if mErr := t.backoff(ctx, evt); mErr != nil {
				relayErr = multierror.Append(relayErr, mErr)
			}
			continue
		}
		published = append(published, evt.ID)
	}

	if len(published) > 0 {
		if err = t.repo.MarkPublished(ctx, published); err != nil {
			// 下一轮会重复转发，消费者会用状态去重
			relayErr = multierror.Append(relayErr, err)
		}
	}
	return relayErr
}

func (t *RelayTask) publish(ctx context.Context, evt domain.OutboxEvent) error {
	var e notification.Event
	if err := json.Unmarshal([]byte(evt.Payload), &e); err != nil {
		return err
	}
	return t.producer.ProduceTo(ctx, evt.Topic, e)
}

// backoff 按照已经尝试的次数计算下一次转发的时间，重试耗尽就标记为失败
func (t *RelayTask) backoff(ctx context.Context, evt domain.OutboxEvent) error {
	attempts := evt.Attempts + 1
	strategy, err := retry.NewRetry(t.cfg.Retry)
	if err != nil {
		return err
	}
	var (
		interval time.Duration
		ok       bool
	)
	for i := 0; i < attempts; i++ {
		interval, ok = strategy.Next()
		if !ok {
			break
		}
	}
	if !ok {
		t.logger.Error("转发事件重试耗尽", elog.Any("id", evt.ID), elog.String("bizKey", evt.BizKey))
		return t.repo.MarkFailed(ctx, evt.ID, attempts)
	}
	return t.repo.MarkRetry(ctx, evt.ID, attempts, t.now().Add(interval))
}

func (t *RelayTask) purge(ctx context.Context) {
	if t.cfg.Retention <= 0 || t.now().Sub(t.lastPurge) < t.cfg.Retention {
		return
	}
	cnt, err := t.repo.DeletePublishedBefore(ctx, t.now().Add(-t.cfg.Retention))
	if err != nil {
		t.logger.Error("清理已转发事件失败", elog.FieldErr(err))
		return
	}
	t.lastPurge = t.now()
	t.logger.Info("清理已转发事件", elog.Int64("cnt", cnt))
}

func (t *RelayTask) sleep(ctx context.Context) {
	if t.cfg.IdleInterval <= 0 {
		return
	}
	timer := time.NewTimer(t.cfg.IdleInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
