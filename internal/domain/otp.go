package domain

import "time"

// Otp 一次性验证码
type Otp struct {
	ID       uint64
	Email    string
	Code     string
	IssuedAt time.Time
	IsUsed   bool
}

// Expired now 距离签发时间超过 window 就算过期
func (o Otp) Expired(now time.Time, window time.Duration) bool {
	return now.Sub(o.IssuedAt) > window
}
