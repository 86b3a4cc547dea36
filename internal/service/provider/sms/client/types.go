package client

import "errors"

// OK 阿里云成功响应码，腾讯云是 Ok
const OK = "OK"

var (
	ErrInvalidParameter = errors.New("参数错误")
	ErrSendFailed       = errors.New("发送短信失败")
)

// Client 短信平台客户端
//
//go:generate mockgen -source=./types.go -destination=./mocks/client.mock.go -package=clientmocks Client
type Client interface {
	Send(req SendReq) (SendResp, error)
}

type SendReq struct {
	PhoneNumbers []string
	SignName     string
	TemplateID   string
	// TemplateParam 腾讯云按照 key 的字典序展开成列表
	TemplateParam map[string]string
}

type SendResp struct {
	RequestID string
	// PhoneNumbers 手机号到发送状态，手机号不带 +86 前缀
	PhoneNumbers map[string]SendRespStatus
}

type SendRespStatus struct {
	Code    string
	Message string
}

func (s SendRespStatus) Succeeded() bool {
	return s.Code == OK
}
