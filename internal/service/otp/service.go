package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"gitee.com/flycash/notification-dispatch/internal/domain"
	"gitee.com/flycash/notification-dispatch/internal/errs"
	"gitee.com/flycash/notification-dispatch/internal/pkg/database/dbx"
	"gitee.com/flycash/notification-dispatch/internal/pkg/ratelimit"
	"gitee.com/flycash/notification-dispatch/internal/repository"
	"gitee.com/flycash/notification-dispatch/internal/service/mail"
	"github.com/gotomicro/ego/core/elog"
	"github.com/sony/sonyflake"
)

const (
	defaultLength = 6
	defaultWindow = 5 * time.Minute
	// maxLength otps.otp 列是 VARCHAR(10)
	maxLength = 10
	// maxGenerateAttempts 同一个邮箱生成的验证码撞上旧验证码时最多重新生成几次
	maxGenerateAttempts = 3
)

type Config struct {
	Length int           `yaml:"length"`
	Window time.Duration `yaml:"window"`
}

// Service 邮箱验证码
//
//go:generate mockgen -source=./service.go -destination=./mocks/otp.mock.go -package=otpmocks Service
type Service interface {
	// Send 生成新的验证码，验证码和通知在同一个事务里面写入
	Send(ctx context.Context, email string) error
	// Validate 验证成功之后验证码失效
	Validate(ctx context.Context, email, code string) error
	// Resend 最近的验证码还没用过就重新发送同一个验证码，否则发送新的验证码
	Resend(ctx context.Context, email string) error
}

type service struct {
	tx          dbx.Transactor
	repo        repository.OtpRepository
	mailSvc     mail.Service
	limiter     ratelimit.Limiter
	idGenerator *sonyflake.Sonyflake
	cfg         Config
	now         func() time.Time
	logger      *elog.Component
}

func NewService(tx dbx.Transactor, repo repository.OtpRepository, mailSvc mail.Service,
	limiter ratelimit.Limiter, idGenerator *sonyflake.Sonyflake, cfg Config,
) Service {
	return newService(tx, repo, mailSvc, limiter, idGenerator, cfg, time.Now)
}

func newService(tx dbx.Transactor, repo repository.OtpRepository, mailSvc mail.Service,
	limiter ratelimit.Limiter, idGenerator *sonyflake.Sonyflake, cfg Config, now func() time.Time,
) *service {
	if cfg.Length <= 0 || cfg.Length > maxLength {
		cfg.Length = defaultLength
	}
	if cfg.Window <= 0 {
		cfg.Window = defaultWindow
	}
	return &service{
		tx:          tx,
		repo:        repo,
		mailSvc:     mailSvc,
		limiter:     limiter,
		idGenerator: idGenerator,
		cfg:         cfg,
		now:         now,
		logger:      elog.DefaultLogger,
	}
}

func (s *service) Send(ctx context.Context, email string) error {
	if err := s.checkLimit(ctx, email); err != nil {
		return err
	}
	return s.send(ctx, email)
}

func (s *service) send(ctx context.Context, email string) error {
	return s.tx.Transaction(ctx, func(ctx context.Context) error {
		code, err := s.create(ctx, email)
		if err != nil {
			return err
		}
		return s.enqueue(ctx, email, code)
	})
}

// create 撞上唯一索引就换一个验证码
func (s *service) create(ctx context.Context, email string) (string, error) {
	var err error
	for i := 0; i < maxGenerateAttempts; i++ {
		var code string
		code, err = generate(s.cfg.Length)
		if err != nil {
			return "", err
		}
		var id uint64
		id, err = s.idGenerator.NextID()
		if err != nil {
			return "", err
		}
		err = s.repo.Create(ctx, domain.Otp{
			ID:       id,
			Email:    email,
			Code:     code,
			IssuedAt: s.now(),
		})
		if errors.Is(err, errs.ErrOtpDuplicate) {
			s.logger.Warn("验证码冲突，重新生成", elog.String("email", email))
			continue
		}
		if err != nil {
			return "", err
		}
		return code, nil
	}
	return "", err
}

func (s *service) Validate(ctx context.Context, email, code string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(code) == "" {
		return fmt.Errorf("%w: 邮箱和验证码不能为空", errs.ErrInvalidParameter)
	}
	o, err := s.repo.FindByEmailAndCode(ctx, email, code)
	if err != nil {
		return err
	}
	if o.IsUsed {
		return errs.ErrOtpAlreadyUsed
	}
	if o.Expired(s.now(), s.cfg.Window) {
		return errs.ErrOtpExpired
	}
	ok, err := s.repo.MarkUsed(ctx, o.ID)
	if err != nil {
		return err
	}
	if !ok {
		// 并发验证，别人先用掉了
		return errs.ErrOtpAlreadyUsed
	}
	return nil
}

func (s *service) Resend(ctx context.Context, email string) error {
	if err := s.checkLimit(ctx, email); err != nil {
		return err
	}
	latest, err := s.repo.FindLatestByEmail(ctx, email)
	switch {
	case errors.Is(err, errs.ErrOtpNotFound):
		return s.send(ctx, email)
	case err != nil:
		return err
	case latest.IsUsed:
		return s.send(ctx, email)
	}
	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		if err1 := s.repo.RefreshIssuedAt(ctx, latest.ID, s.now()); err1 != nil {
			return err1
		}
		return s.enqueue(ctx, email, latest.Code)
	})
	if errors.Is(err, errs.ErrOtpAlreadyUsed) {
		// 刷新之前刚刚被验证掉了
		return s.send(ctx, email)
	}
	return err
}

func (s *service) checkLimit(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("%w: 邮箱不能为空", errs.ErrInvalidParameter)
	}
	limited, err := s.limiter.Limit(ctx, "otp:"+email)
	if err != nil {
		// 限流器不可用的时候放行
		s.logger.Warn("验证码限流检测失败", elog.String("email", email), elog.FieldErr(err))
		return nil
	}
	if limited {
		return errs.ErrOtpTooFrequent
	}
	return nil
}

func (s *service) enqueue(ctx context.Context, email, code string) error {
	_, err := s.mailSvc.Enqueue(ctx, domain.Mail{
		To:      email,
		Subject: "Your verification code",
		Message: "Use the following code to finish verifying your email address.",
		Kind:    domain.MailKindOtp,
		Extras: map[string]any{
			"Code":          code,
			"ExpireMinutes": int(s.cfg.Window / time.Minute),
		},
	})
	return err
}

// generate 生成指定长度的数字验证码，每一位都是均匀分布的
func generate(length int) (string, error) {
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", length, n.Int64()), nil
}
