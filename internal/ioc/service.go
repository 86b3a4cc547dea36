package ioc

import (
	"time"

	"gitee.com/flycash/notification-dispatch/internal/pkg/database/dbx"
	"gitee.com/flycash/notification-dispatch/internal/pkg/idempotent"
	"gitee.com/flycash/notification-dispatch/internal/pkg/ratelimit"
	"gitee.com/flycash/notification-dispatch/internal/pkg/retry"
	"gitee.com/flycash/notification-dispatch/internal/repository"
	"gitee.com/flycash/notification-dispatch/internal/service/mail"
	"gitee.com/flycash/notification-dispatch/internal/service/otp"
	"github.com/gotomicro/ego/core/econf"
	"github.com/redis/go-redis/v9"
	"github.com/sony/sonyflake"
)

func InitMailSender() mail.Sender {
	type Config struct {
		Email string `yaml:"email"`
		Phone string `yaml:"phone"`
	}
	var cfg Config
	if err := econf.UnmarshalKey("sender", &cfg); err != nil {
		panic(err)
	}
	return mail.Sender{Email: cfg.Email, Phone: cfg.Phone}
}

func InitRenderer() *mail.Renderer {
	r, err := mail.NewRenderer()
	if err != nil {
		panic(err)
	}
	return r
}

type otpConfig struct {
	Length       int           `yaml:"length"`
	Window       time.Duration `yaml:"window"`
	RateLimit    int           `yaml:"rateLimit"`
	RateInterval time.Duration `yaml:"rateInterval"`
}

func loadOtpConfig() otpConfig {
	cfg := otpConfig{
		RateLimit:    3,
		RateInterval: time.Minute,
	}
	if err := econf.UnmarshalKey("otp", &cfg); err != nil {
		panic(err)
	}
	return cfg
}

// InitOtpLimiter 同一个邮箱在 rateInterval 内最多发送 rateLimit 次
func InitOtpLimiter(cmd redis.Cmdable) ratelimit.Limiter {
	cfg := loadOtpConfig()
	return ratelimit.NewRedisSlidingWindowLimiter(cmd, cfg.RateInterval, cfg.RateLimit)
}

func InitOtpService(tx dbx.Transactor, repo repository.OtpRepository, mailSvc mail.Service,
	limiter ratelimit.Limiter, idGenerator *sonyflake.Sonyflake,
) otp.Service {
	cfg := loadOtpConfig()
	return otp.NewService(tx, repo, mailSvc, limiter, idGenerator, otp.Config{
		Length: cfg.Length,
		Window: cfg.Window,
	})
}

// InitIdempotencyService 单个 worker 用本地缓存，多个 worker 需要配置成 redis
func InitIdempotencyService(cmd redis.Cmdable) idempotent.IdempotencyService {
	type Config struct {
		Type string        `yaml:"type"`
		TTL  time.Duration `yaml:"ttl"`
	}
	cfg := Config{Type: "local", TTL: 10 * time.Minute}
	if err := econf.UnmarshalKey("idempotent", &cfg); err != nil {
		panic(err)
	}
	if cfg.Type == "redis" {
		return idempotent.NewRedisService(cmd, "notification:event", cfg.TTL)
	}
	return idempotent.NewLocalService(cfg.TTL)
}

// InitDispatchRetry worker 在抢占通知之前遇到的错误在本地重试
func InitDispatchRetry() retry.Config {
	cfg := retry.Config{
		Type: retry.TypeFixed,
		FixedInterval: &retry.FixedIntervalConfig{
			MaxRetries: 3,
			Interval:   100 * time.Millisecond,
		},
	}
	if err := econf.UnmarshalKey("worker.retry", &cfg); err != nil {
		panic(err)
	}
	return cfg
}
