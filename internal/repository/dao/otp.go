package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gitee.com/flycash/notification-dispatch/internal/errs"
	"gitee.com/flycash/notification-dispatch/internal/pkg/database/dbx"
	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

type OtpDAO interface {
	// Create (email, otp) 冲突的时候返回 errs.ErrOtpDuplicate
	Create(ctx context.Context, otp Otp) error
	FindByEmailAndCode(ctx context.Context, email, code string) (Otp, error)
	// FindLatestByEmail 该邮箱最近签发的验证码
	FindLatestByEmail(ctx context.Context, email string) (Otp, error)
	// MarkUsed 只有未使用的验证码才会被标记，返回是否标记成功
	MarkUsed(ctx context.Context, id uint64) (bool, error)
	// RefreshIssuedAt 只刷新未使用的验证码，已经使用返回 errs.ErrOtpAlreadyUsed
	RefreshIssuedAt(ctx context.Context, id uint64, issuedAt int64) error
}

// Otp 一次性验证码表
type Otp struct {
	ID    uint64 `gorm:"primaryKey;comment:'雪花算法ID'"`
	Email string `gorm:"type:VARCHAR(256);NOT NULL;uniqueIndex:uk_email_otp,priority:1;index:idx_email_id,priority:1"`
	Otp   string `gorm:"column:otp;type:VARCHAR(10);NOT NULL;uniqueIndex:uk_email_otp,priority:2"`
	// OtpIssuedAt 毫秒时间戳，由应用生成，避免数据库和应用的时区差异
	OtpIssuedAt int64 `gorm:"NOT NULL"`
	IsUsed      bool  `gorm:"NOT NULL;DEFAULT:false"`
	Ctime       int64
	Utime       int64
	Dtime       gorm.DeletedAt
}

func (Otp) TableName() string {
	return "otps"
}

type otpDAO struct {
	pool *dbx.Pool
}

func NewOtpDAO(pool *dbx.Pool) OtpDAO {
	return &otpDAO{pool: pool}
}

func (d *otpDAO) Create(ctx context.Context, otp Otp) error {
	now := time.Now().UnixMilli()
	otp.Ctime, otp.Utime = now, now
	err := d.pool.Conn(ctx).Create(&otp).Error
	if isUniqueConstraintError(err) {
		return fmt.Errorf("%w: email %s", errs.ErrOtpDuplicate, otp.Email)
	}
	return err
}

func (d *otpDAO) FindByEmailAndCode(ctx context.Context, email, code string) (Otp, error) {
	var res Otp
	err := d.pool.Conn(ctx).Where("email = ? AND otp = ?", email, code).First(&res).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Otp{}, fmt.Errorf("%w: email %s", errs.ErrOtpNotFound, email)
	}
	return res, err
}

func (d *otpDAO) FindLatestByEmail(ctx context.Context, email string) (Otp, error) {
	var res Otp
	err := d.pool.Conn(ctx).Where("email = ?", email).
		Order("otp_issued_at DESC, id DESC").First(&res).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Otp{}, fmt.Errorf("%w: email %s", errs.ErrOtpNotFound, email)
	}
	return res, err
}

func (d *otpDAO) MarkUsed(ctx context.Context, id uint64) (bool, error) {
	res := d.pool.Conn(ctx).Model(&Otp{}).
		Where("id = ? AND is_used = ?", id, false).
		Updates(map[string]any{
			"is_used": true,
			"utime":   time.Now().UnixMilli(),
		})
	return res.RowsAffected > 0, res.Error
}

func (d *otpDAO) RefreshIssuedAt(ctx context.Context, id uint64, issuedAt int64) error {
	res := d.pool.Conn(ctx).Model(&Otp{}).
		Where("id = ? AND is_used = ?", id, false).
		Updates(map[string]any{
			"otp_issued_at": issuedAt,
			"utime":         time.Now().UnixMilli(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected < 1 {
		return fmt.Errorf("%w: id %d", errs.ErrOtpAlreadyUsed, id)
	}
	return nil
}

// isUniqueConstraintError 检查是否是唯一索引冲突错误
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	me := new(mysql.MySQLError)
	if ok := errors.As(err, &me); ok {
		const uniqueIndexErrNo uint16 = 1062
		return me.Number == uniqueIndexErrNo
	}
	return false
}
