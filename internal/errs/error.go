package errs

import (
	"errors"
)

// 定义统一的错误类型
var (
	ErrInvalidParameter             = errors.New("参数错误")
	ErrNotificationIDGenerateFailed = errors.New("通知ID生成失败")
	ErrNotificationNotFound         = errors.New("通知记录不存在")
	ErrCreateNotificationFailed     = errors.New("创建通知失败")
	ErrNotificationStatusConflict   = errors.New("通知状态已被修改")
	ErrNotificationCompleted        = errors.New("通知已发送成功")
	ErrNotificationInFlight         = errors.New("通知正在发送中")
	ErrSendFailed                   = errors.New("发送通知失败")

	ErrNoAvailableProvider = errors.New("无可用供应商")
	ErrNoAvailableChannel  = errors.New("无可用渠道")

	ErrOtpNotFound    = errors.New("验证码不存在")
	ErrOtpAlreadyUsed = errors.New("验证码已被使用")
	ErrOtpExpired     = errors.New("验证码已过期")
	ErrOtpDuplicate   = errors.New("验证码冲突")
	ErrOtpTooFrequent = errors.New("验证码发送太频繁")

	ErrAttachmentNotFound = errors.New("附件不存在")
)
