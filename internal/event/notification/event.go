package notification

import (
	"encoding/json"
	"strconv"
)

const (
	// EventTopic 通知事件所在的 topic
	EventTopic = "notification_events"

	EventTypeEmail = "email"
	EventTypeSMS   = "sms"
)

// Event 队列里面的消息只携带通知 ID，内容由 worker 从数据库里面读
type Event struct {
	Type    string `json:"type"`
	EmailID uint64 `json:"emailId"`
}

func NewEvent(typ string, id uint64) Event {
	return Event{Type: typ, EmailID: id}
}

// Key 同一个通知的消息落到同一个分区
func (e Event) Key() string {
	return strconv.FormatUint(e.EmailID, 10)
}

func (e Event) Marshal() (string, error) {
	val, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(val), nil
}
