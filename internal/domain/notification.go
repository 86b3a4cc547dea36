package domain

import (
	"fmt"
	"time"

	"gitee.com/flycash/notification-dispatch/internal/errs"
)

// NotificationStatus 通知状态
type NotificationStatus string

const (
	NotificationStatusPending    NotificationStatus = "PENDING"    // 待发送
	NotificationStatusProcessing NotificationStatus = "PROCESSING" // 发送中
	NotificationStatusCompleted  NotificationStatus = "COMPLETED"  // 发送成功
	NotificationStatusFailed     NotificationStatus = "FAILED"     // 发送失败
)

func (s NotificationStatus) String() string {
	return string(s)
}

// IsTerminal 成功和失败都是终态，不会再变化
func (s NotificationStatus) IsTerminal() bool {
	return s == NotificationStatusCompleted || s == NotificationStatusFailed
}

// CanTransitTo 状态只能 PENDING -> PROCESSING -> COMPLETED | FAILED
func (s NotificationStatus) CanTransitTo(next NotificationStatus) bool {
	switch s {
	case NotificationStatusPending:
		return next == NotificationStatusProcessing
	case NotificationStatusProcessing:
		return next == NotificationStatusCompleted || next == NotificationStatusFailed
	default:
		return false
	}
}

// NotificationType 通知类型，决定使用哪个渠道发送
type NotificationType string

const (
	NotificationTypeEmail NotificationType = "EMAIL"
	NotificationTypeSMS   NotificationType = "SMS"
)

func (t NotificationType) IsValid() bool {
	return t == NotificationTypeEmail || t == NotificationTypeSMS
}

// Attachment 已经上传到对象存储的附件
type Attachment struct {
	Filename string `json:"filename"`
	// Path 对象存储里面的 key
	Path     string `json:"path"`
	Encoding string `json:"encoding"`
}

// Notification 通知领域模型
type Notification struct {
	ID          uint64
	Status      NotificationStatus
	To          string
	From        string
	Subject     string
	Text        string
	HTML        string
	Seen        bool
	Type        NotificationType
	Attachments []Attachment
	Ctime       time.Time
	Utime       time.Time
}

func (n Notification) Validate() error {
	if n.To == "" {
		return fmt.Errorf("%w: To = %q", errs.ErrInvalidParameter, n.To)
	}
	if n.Subject == "" {
		return fmt.Errorf("%w: Subject = %q", errs.ErrInvalidParameter, n.Subject)
	}
	if !n.Type.IsValid() {
		return fmt.Errorf("%w: Type = %q", errs.ErrInvalidParameter, n.Type)
	}
	return nil
}

// Clone 复制一份内容相同的待发送通知，ID 由调用方重新生成
func (n Notification) Clone() Notification {
	res := n
	res.ID = 0
	res.Status = NotificationStatusPending
	res.Seen = false
	res.Ctime = time.Time{}
	res.Utime = time.Time{}
	res.Attachments = append([]Attachment(nil), n.Attachments...)
	return res
}

// EventType 队列消息里面的 type 字段
func (n Notification) EventType() string {
	if n.Type == NotificationTypeSMS {
		return "sms"
	}
	return "email"
}
