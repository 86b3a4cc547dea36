package sms

import (
	"errors"
	"testing"

	"gitee.com/flycash/notification-dispatch/internal/domain"
	"gitee.com/flycash/notification-dispatch/internal/errs"
	"gitee.com/flycash/notification-dispatch/internal/service/provider/sms/client"
	clientmocks "gitee.com/flycash/notification-dispatch/internal/service/provider/sms/client/mocks"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestSmsProvider_Send(t *testing.T) {
	t.Parallel()
	cfg := Config{SignName: "通知平台", TemplateID: "SMS_1"}
	msg := domain.Message{NotificationID: 1, Type: domain.NotificationTypeSMS, To: "13800000000", Text: "您的验证码是 123456"}

	testCases := []struct {
		name      string
		newClient func(ctrl *gomock.Controller) client.Client
		wantErr   error
	}{
		{
			name: "发送成功",
			newClient: func(ctrl *gomock.Controller) client.Client {
				c := clientmocks.NewMockClient(ctrl)
				c.EXPECT().Send(client.SendReq{
					PhoneNumbers:  []string{"13800000000"},
					SignName:      "通知平台",
					TemplateID:    "SMS_1",
					TemplateParam: map[string]string{"content": "您的验证码是 123456"},
				}).Return(client.SendResp{
					RequestID:    "req-1",
					PhoneNumbers: map[string]client.SendRespStatus{"13800000000": {Code: client.OK}},
				}, nil)
				return c
			},
		},
		{
			name: "调用失败",
			newClient: func(ctrl *gomock.Controller) client.Client {
				c := clientmocks.NewMockClient(ctrl)
				c.EXPECT().Send(gomock.Any()).Return(client.SendResp{}, errors.New("mock network error"))
				return c
			},
			wantErr: errs.ErrSendFailed,
		},
		{
			name: "号码状态异常",
			newClient: func(ctrl *gomock.Controller) client.Client {
				c := clientmocks.NewMockClient(ctrl)
				c.EXPECT().Send(gomock.Any()).Return(client.SendResp{
					PhoneNumbers: map[string]client.SendRespStatus{
						"13800000000": {Code: "isv.BUSINESS_LIMIT_CONTROL", Message: "触发流控"},
					},
				}, nil)
				return c
			},
			wantErr: errs.ErrSendFailed,
		},
		{
			name: "没有返回状态",
			newClient: func(ctrl *gomock.Controller) client.Client {
				c := clientmocks.NewMockClient(ctrl)
				c.EXPECT().Send(gomock.Any()).Return(client.SendResp{}, nil)
				return c
			},
			wantErr: errs.ErrSendFailed,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			p := NewSMSProvider("aliyun", cfg, tc.newClient(ctrl))
			err := p.Send(t.Context(), msg)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}
