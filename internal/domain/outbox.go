package domain

import "time"

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "PENDING"
	OutboxStatusPublished OutboxStatus = "PUBLISHED"
	OutboxStatusFailed    OutboxStatus = "FAILED"
)

// OutboxEvent 和通知在同一个事务里面写入，事务提交之后才会被转发到消息队列
type OutboxEvent struct {
	ID            int64
	Topic         string
	BizKey        string
	Payload       string
	Status        OutboxStatus
	Attempts      int
	NextRetryTime time.Time
	Ctime         time.Time
}
