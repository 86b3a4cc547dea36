package notification

import (
	"context"
	"time"

	"gitee.com/flycash/notification-dispatch/internal/pkg/loopjob"
	"gitee.com/flycash/notification-dispatch/internal/repository"
	"github.com/gotomicro/ego/core/elog"
	"github.com/meoying/dlock-go"
)

const (
	processingTimeoutKey = "notification_handling_processing_timeout"
	timeoutBatchSize     = 10
)

// ProcessingTimeoutTask worker 在发送过程中崩溃的通知会一直停留在 PROCESSING，
// 超过 timeout 的标记为 FAILED，之后可以通过重发接口补偿
type ProcessingTimeoutTask struct {
	dclient   dlock.Client
	repo      repository.NotificationRepository
	timeout   time.Duration
	sleepTime time.Duration
	now       func() time.Time
	logger    *elog.Component
	done      chan struct{}
}

func NewProcessingTimeoutTask(dclient dlock.Client, repo repository.NotificationRepository, timeout time.Duration) *ProcessingTimeoutTask {
	return &ProcessingTimeoutTask{
		dclient:   dclient,
		repo:      repo,
		timeout:   timeout,
		sleepTime: time.Second * 10,
		now:       time.Now,
		logger:    elog.DefaultLogger,
		done:      make(chan struct{}),
	}
}

func (s *ProcessingTimeoutTask) Start(ctx context.Context) {
	defer close(s.done)
	lj := loopjob.NewInfiniteLoop(s.dclient, s.HandleProcessingTimeout, processingTimeoutKey)
	lj.Run(ctx)
}

func (s *ProcessingTimeoutTask) Done() <-chan struct{} {
	return s.done
}

func (s *ProcessingTimeoutTask) HandleProcessingTimeout(ctx context.Context) error {
	cnt, err := s.repo.MarkTimeoutProcessingAsFailed(ctx, s.now().Add(-s.timeout), timeoutBatchSize)
	if err != nil {
		return err
	}
	if cnt > 0 {
		s.logger.Warn("发送超时的通知已标记为失败", elog.Int64("cnt", cnt))
	}
	// 说明 PROCESSING 的不多，可以休息一下
	if cnt < timeoutBatchSize {
		timer := time.NewTimer(s.sleepTime)
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-timer.C:
		}
	}
	return nil
}
