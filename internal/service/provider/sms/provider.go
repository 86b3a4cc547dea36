package sms

import (
	"context"
	"fmt"

	"gitee.com/flycash/notification-dispatch/internal/domain"
	"gitee.com/flycash/notification-dispatch/internal/errs"
	"gitee.com/flycash/notification-dispatch/internal/service/provider"
	"gitee.com/flycash/notification-dispatch/internal/service/provider/sms/client"
)

// Config 短信签名和模板，模板只有一个 content 参数
type Config struct {
	SignName   string `yaml:"signName"`
	TemplateID string `yaml:"templateId"`
}

// smsProvider SMS供应商
type smsProvider struct {
	name   string
	cfg    Config
	client client.Client
}

// NewSMSProvider SMS供应商
func NewSMSProvider(name string, cfg Config, c client.Client) provider.Provider {
	return &smsProvider{
		name:   name,
		cfg:    cfg,
		client: c,
	}
}

// Send 发送短信
func (p *smsProvider) Send(_ context.Context, msg domain.Message) error {
	resp, err := p.client.Send(client.SendReq{
		PhoneNumbers:  []string{msg.To},
		SignName:      p.cfg.SignName,
		TemplateID:    p.cfg.TemplateID,
		TemplateParam: map[string]string{"content": msg.Text},
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %w", errs.ErrSendFailed, p.name, err)
	}

	if len(resp.PhoneNumbers) == 0 {
		return fmt.Errorf("%w: %s: 响应中没有发送状态", errs.ErrSendFailed, p.name)
	}
	for _, status := range resp.PhoneNumbers {
		if !status.Succeeded() {
			return fmt.Errorf("%w: %s: Code = %s, Message = %s", errs.ErrSendFailed, p.name, status.Code, status.Message)
		}
	}
	return nil
}
