package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"gitee.com/flycash/notification-dispatch/internal/domain"
	"gitee.com/flycash/notification-dispatch/internal/errs"
	"gitee.com/flycash/notification-dispatch/internal/service/provider"
	"github.com/go-mail/mail"
	"github.com/gotomicro/ego/core/elog"
)

const (
	TLSModeAuto     = "auto"
	TLSModeStartTLS = "starttls"
	TLSModeSSL      = "ssl"
	TLSModeNone     = "none"
)

// Dialer 发送邮件，*mail.Dialer 实现了这个接口
type Dialer interface {
	DialAndSend(m ...*mail.Message) error
}

type Config struct {
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	Username string        `yaml:"username"`
	Password string        `yaml:"password"`
	TLSMode  string        `yaml:"tlsMode"`
	Timeout  time.Duration `yaml:"timeout"`
}

// NewDialer 按照 TLS 模式构造 SMTP 连接
func NewDialer(cfg Config) *mail.Dialer {
	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}
	if cfg.Timeout > 0 {
		d.Timeout = cfg.Timeout
	}
	switch cfg.TLSMode {
	case TLSModeSSL:
		d.SSL = true
	case TLSModeStartTLS:
		d.StartTLSPolicy = mail.MandatoryStartTLS
	case TLSModeNone:
		d.StartTLSPolicy = mail.NoStartTLS
	default:
		d.StartTLSPolicy = mail.OpportunisticStartTLS
	}
	return d
}

var _ provider.Provider = (*smtpProvider)(nil)

type smtpProvider struct {
	dialer Dialer
	logger *elog.Component
}

// NewSMTPProvider 邮件供应商
func NewSMTPProvider(dialer Dialer) provider.Provider {
	return &smtpProvider{
		dialer: dialer,
		logger: elog.DefaultLogger,
	}
}

func (p *smtpProvider) Send(_ context.Context, msg domain.Message) error {
	m := mail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)

	// 有 HTML 的时候发 multipart/alternative
	switch {
	case msg.HTML == "":
		m.SetBody("text/plain", msg.Text)
	case msg.Text == "":
		m.SetBody("text/html", msg.HTML)
	default:
		m.SetBody("text/plain", msg.Text)
		m.AddAlternative("text/html", msg.HTML)
	}

	for _, a := range msg.Attachments {
		m.AttachReader(a.Filename, bytes.NewReader(a.Content))
	}

	if err := p.dialer.DialAndSend(m); err != nil {
		p.logger.Error("发送邮件失败",
			elog.Any("id", msg.NotificationID),
			elog.String("to", msg.To),
			elog.FieldErr(err))
		return fmt.Errorf("%w: %w", errs.ErrSendFailed, err)
	}
	return nil
}
