package sequential

import (
	"context"
	"fmt"

	"gitee.com/flycash/notification-dispatch/internal/domain"
	"gitee.com/flycash/notification-dispatch/internal/errs"
	"gitee.com/flycash/notification-dispatch/internal/service/provider"
)

var (
	_ provider.Selector        = (*failoverSelector)(nil)
	_ provider.SelectorBuilder = (*SelectorBuilder)(nil)
)

// failoverSelector 一次发送内按配置顺序给出供应商，用完为止
type failoverSelector struct {
	providers []provider.Provider
	tried     int
}

func (f *failoverSelector) Next(_ context.Context, msg domain.Message) (provider.Provider, error) {
	if f.tried >= len(f.providers) {
		return nil, fmt.Errorf("%w: 通知 %d 已尝试 %d 个 %s 供应商",
			errs.ErrNoAvailableProvider, msg.NotificationID, f.tried, msg.Type)
	}
	p := f.providers[f.tried]
	f.tried++
	return p, nil
}

// SelectorBuilder 每次发送都从第一个供应商开始
type SelectorBuilder struct {
	providers []provider.Provider
}

func NewSelectorBuilder(providers []provider.Provider) *SelectorBuilder {
	return &SelectorBuilder{providers: providers}
}

// Build 没有配置任何供应商的时候直接失败，不用等到 Next
func (s *SelectorBuilder) Build() (provider.Selector, error) {
	if len(s.providers) == 0 {
		return nil, fmt.Errorf("%w: 未配置供应商", errs.ErrNoAvailableProvider)
	}
	return &failoverSelector{providers: s.providers}, nil
}
