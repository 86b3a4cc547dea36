package provider

import (
	"context"

	"gitee.com/flycash/notification-dispatch/internal/domain"
)

// Provider 供应商接口
//
//go:generate mockgen -source=./types.go -destination=./mocks/provider.mock.go -package=providermocks Provider
type Provider interface {
	// Send 发送消息，返回 nil 说明供应商已经接收
	Send(ctx context.Context, msg domain.Message) error
}

// Selector 供应商选择器接口
type Selector interface {
	// Next 获取下一个供应商，无可用供应商时返回错误
	Next(ctx context.Context, msg domain.Message) (Provider, error)
}

// SelectorBuilder 供应商选择器的构造器，每次发送都要构造一个新的选择器
type SelectorBuilder interface {
	Build() (Selector, error)
}
