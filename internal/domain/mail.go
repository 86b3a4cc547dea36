package domain

import (
	"fmt"
	"strings"

	"gitee.com/flycash/notification-dispatch/internal/errs"
)

// MailKind 决定默认模板和必填字段
type MailKind string

const (
	MailKindGeneral MailKind = "GENERAL"
	MailKindOtp     MailKind = "OTP"
	MailKindPayment MailKind = "PAYMENT"
)

// RawAttachment 调用方传入的附件，Content 按照 Encoding 编码
type RawAttachment struct {
	Filename    string
	Content     []byte
	Encoding    string
	ContentType string
}

// 附件编码不区分大小写
const (
	AttachmentEncodingBase64 = "base64"
	AttachmentEncodingHex    = "hex"
)

// IsPlainAttachmentEncoding 内容不需要解码，原样发送
func IsPlainAttachmentEncoding(encoding string) bool {
	switch strings.ToLower(encoding) {
	case "", "utf8", "utf-8", "binary":
		return true
	default:
		return false
	}
}

func IsSupportedAttachmentEncoding(encoding string) bool {
	if IsPlainAttachmentEncoding(encoding) {
		return true
	}
	e := strings.ToLower(encoding)
	return e == AttachmentEncodingBase64 || e == AttachmentEncodingHex
}

// Mail 一封待入队的邮件（或者短信）。
// 值对象，构造之后不再修改，交给 Enqueue 处理。
type Mail struct {
	To      string
	Subject string
	Message string
	Type    NotificationType
	Kind    MailKind
	// Template 模板名，为空的时候按照 Kind 选择
	Template string
	// Extras 渲染模板用的额外参数，PAYMENT 必须有
	Extras      map[string]any
	Attachments []RawAttachment
}

func (m Mail) Validate() error {
	if m.To == "" {
		return fmt.Errorf("%w: To = %q", errs.ErrInvalidParameter, m.To)
	}
	if m.Subject == "" {
		return fmt.Errorf("%w: Subject = %q", errs.ErrInvalidParameter, m.Subject)
	}
	if !m.NotificationType().IsValid() {
		return fmt.Errorf("%w: Type = %q", errs.ErrInvalidParameter, m.Type)
	}
	if m.Kind == MailKindPayment {
		if len(m.Extras) == 0 {
			return fmt.Errorf("%w: 支付邮件缺少 Extras", errs.ErrInvalidParameter)
		}
	} else if m.Message == "" {
		return fmt.Errorf("%w: Message = %q", errs.ErrInvalidParameter, m.Message)
	}
	if m.NotificationType() == NotificationTypeSMS && len(m.Attachments) > 0 {
		return fmt.Errorf("%w: 短信不支持附件", errs.ErrInvalidParameter)
	}
	for i := range m.Attachments {
		if m.Attachments[i].Filename == "" {
			return fmt.Errorf("%w: 第 %d 个附件缺少文件名", errs.ErrInvalidParameter, i)
		}
		if !IsSupportedAttachmentEncoding(m.Attachments[i].Encoding) {
			return fmt.Errorf("%w: 第 %d 个附件编码不支持 %s", errs.ErrInvalidParameter, i, m.Attachments[i].Encoding)
		}
	}
	return nil
}

// NotificationType 没有指定的时候默认是邮件
func (m Mail) NotificationType() NotificationType {
	if m.Type == "" {
		return NotificationTypeEmail
	}
	return m.Type
}

func (m Mail) TemplateName() string {
	if m.Template != "" {
		return m.Template
	}
	switch m.Kind {
	case MailKindOtp:
		return "otp"
	case MailKindPayment:
		return "payment"
	default:
		return "default"
	}
}
