package repository

import (
	"context"
	"time"

	"gitee.com/flycash/notification-dispatch/internal/domain"
	"gitee.com/flycash/notification-dispatch/internal/repository/dao"
)

//go:generate mockgen -source=./otp.go -destination=./mocks/otp.mock.go -package=repomocks OtpRepository
type OtpRepository interface {
	// Create 同一个邮箱的验证码重复时返回 errs.ErrOtpDuplicate
	Create(ctx context.Context, otp domain.Otp) error
	FindByEmailAndCode(ctx context.Context, email, code string) (domain.Otp, error)
	FindLatestByEmail(ctx context.Context, email string) (domain.Otp, error)
	// MarkUsed 返回 false 说明已经被别人用掉了
	MarkUsed(ctx context.Context, id uint64) (bool, error)
	RefreshIssuedAt(ctx context.Context, id uint64, issuedAt time.Time) error
}

type otpRepository struct {
	dao dao.OtpDAO
}

func NewOtpRepository(d dao.OtpDAO) OtpRepository {
	return &otpRepository{dao: d}
}

func (r *otpRepository) Create(ctx context.Context, otp domain.Otp) error {
	return r.dao.Create(ctx, dao.Otp{
		ID:          otp.ID,
		Email:       otp.Email,
		Otp:         otp.Code,
		OtpIssuedAt: otp.IssuedAt.UnixMilli(),
		IsUsed:      otp.IsUsed,
	})
}

func (r *otpRepository) FindByEmailAndCode(ctx context.Context, email, code string) (domain.Otp, error) {
	o, err := r.dao.FindByEmailAndCode(ctx, email, code)
	if err != nil {
		return domain.Otp{}, err
	}
	return r.toDomain(o), nil
}

func (r *otpRepository) FindLatestByEmail(ctx context.Context, email string) (domain.Otp, error) {
	o, err := r.dao.FindLatestByEmail(ctx, email)
	if err != nil {
		return domain.Otp{}, err
	}
	return r.toDomain(o), nil
}

func (r *otpRepository) MarkUsed(ctx context.Context, id uint64) (bool, error) {
	return r.dao.MarkUsed(ctx, id)
}

func (r *otpRepository) RefreshIssuedAt(ctx context.Context, id uint64, issuedAt time.Time) error {
	return r.dao.RefreshIssuedAt(ctx, id, issuedAt.UnixMilli())
}

func (r *otpRepository) toDomain(o dao.Otp) domain.Otp {
	return domain.Otp{
		ID:       o.ID,
		Email:    o.Email,
		Code:     o.Otp,
		IssuedAt: time.UnixMilli(o.OtpIssuedAt),
		IsUsed:   o.IsUsed,
	}
}
