// Package metrics 为供应商实现添加指标收集的装饰器
package metrics

import (
	"context"
	"errors"
	"sync"
	"time"

	"gitee.com/flycash/notification-dispatch/internal/domain"
	"gitee.com/flycash/notification-dispatch/internal/service/provider"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	sendDurationSummary = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "provider_send_duration_seconds",
			Help:       "供应商发送通知耗时统计（秒）",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.95: 0.005, 0.99: 0.001},
			MaxAge:     time.Minute * 5,
		},
		[]string{"provider", "type", "status"},
	)
	sendCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_send_total",
			Help: "供应商发送通知状态统计",
		},
		[]string{"provider", "type", "status"},
	)
	registerOnce sync.Once
)

const (
	statusSucceeded = "succeeded"
	statusFailed    = "failed"
)

// Provider 为供应商实现添加指标收集的装饰器
type Provider struct {
	provider provider.Provider
	name     string
}

// NewProvider 创建一个新的带有指标收集的供应商，多个供应商共用同一组指标
func NewProvider(name string, p provider.Provider) *Provider {
	registerOnce.Do(func() {
		for _, c := range []prometheus.Collector{sendDurationSummary, sendCounter} {
			err := prometheus.Register(c)
			var are prometheus.AlreadyRegisteredError
			if err != nil && !errors.As(err, &are) {
				panic(err)
			}
		}
	})
	return &Provider{
		provider: p,
		name:     name,
	}
}

// Send 发送通知并记录指标
func (p *Provider) Send(ctx context.Context, msg domain.Message) error {
	startTime := time.Now()
	err := p.provider.Send(ctx, msg)
	duration := time.Since(startTime).Seconds()

	status := statusSucceeded
	if err != nil {
		status = statusFailed
	}
	sendCounter.WithLabelValues(p.name, string(msg.Type), status).Inc()
	sendDurationSummary.WithLabelValues(p.name, string(msg.Type), status).Observe(duration)
	return err
}
