package metrics

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

var (
	// 命令计数，限流和分布式锁都走这里
	commandCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_commands_total",
			Help: "Redis 命令执行次数",
		},
		[]string{"command", "status"},
	)
	commandDuration = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "redis_command_duration_seconds",
			Help:       "Redis 命令执行耗时（秒）",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"command"},
	)
	pipelineCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_pipelines_total",
			Help: "Redis 管道执行次数",
		},
		[]string{"status"},
	)
	dialCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_dials_total",
			Help: "Redis 建立连接次数",
		},
		[]string{"status"},
	)
	registerOnce sync.Once
)

// Hook 统计命令、管道和建连的结果
type Hook struct{}

func NewMetricsHook() *Hook {
	registerOnce.Do(func() {
		for _, c := range []prometheus.Collector{commandCounter, commandDuration, pipelineCounter, dialCounter} {
			err := prometheus.Register(c)
			var are prometheus.AlreadyRegisteredError
			if err != nil && !errors.As(err, &are) {
				panic(err)
			}
		}
	})
	return &Hook{}
}

func (h *Hook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		commandDuration.WithLabelValues(cmd.Name()).Observe(time.Since(start).Seconds())
		commandCounter.WithLabelValues(cmd.Name(), status(err)).Inc()
		return err
	}
}

func (h *Hook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if len(cmds) == 0 {
			return err
		}
		st := status(err)
		for _, cmd := range cmds {
			if cmdErr := cmd.Err(); status(cmdErr) == statusError {
				st = statusError
				break
			}
		}
		pipelineCounter.WithLabelValues(st).Inc()
		return err
	}
}

func (h *Hook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := next(ctx, network, addr)
		dialCounter.WithLabelValues(status(err)).Inc()
		return conn, err
	}
}

// status redis.Nil 是正常的未命中
func status(err error) string {
	if err != nil && !errors.Is(err, redis.Nil) {
		return statusError
	}
	return statusSuccess
}

// WithMetrics 为 Redis 客户端添加指标收集
func WithMetrics(client *redis.Client) *redis.Client {
	client.AddHook(NewMetricsHook())
	return client
}
