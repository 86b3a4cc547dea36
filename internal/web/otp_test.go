package web

import (
	"errors"
	"net/http"
	"testing"

	"gitee.com/flycash/notification-dispatch/internal/errs"
	otpmocks "gitee.com/flycash/notification-dispatch/internal/service/otp/mocks"
	"gitee.com/flycash/notification-dispatch/internal/test"
	"github.com/ecodeclub/ekit/iox"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newOtpServer(t *testing.T, ctrl *gomock.Controller, mock func(svc *otpmocks.MockService)) *gin.Engine {
	t.Helper()
	svc := otpmocks.NewMockService(ctrl)
	mock(svc)
	server := gin.New()
	NewOtpHandler(svc).PublicRoutes(server)
	return server
}

func TestOtpHandler(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name     string
		path     string
		body     any
		mock     func(svc *otpmocks.MockService)
		wantCode int
		wantBiz  int
	}{
		{
			name: "发送成功",
			path: "/otp/send",
			body: SendOtpReq{Email: "user@example.com"},
			mock: func(svc *otpmocks.MockService) {
				svc.EXPECT().Send(gomock.Any(), "user@example.com").Return(nil)
			},
			wantCode: http.StatusOK,
			wantBiz:  CodeOK,
		},
		{
			name:     "邮箱格式错误",
			path:     "/otp/send",
			body:     SendOtpReq{Email: "not-an-email"},
			mock:     func(svc *otpmocks.MockService) {},
			wantCode: http.StatusBadRequest,
			wantBiz:  CodeBadRequest,
		},
		{
			name: "发送太频繁",
			path: "/otp/send",
			body: SendOtpReq{Email: "user@example.com"},
			mock: func(svc *otpmocks.MockService) {
				svc.EXPECT().Send(gomock.Any(), "user@example.com").Return(errs.ErrOtpTooFrequent)
			},
			wantCode: http.StatusTooManyRequests,
			wantBiz:  CodeTooManyRequest,
		},
		{
			name: "验证成功",
			path: "/otp/validate",
			body: ValidateOtpReq{Email: "user@example.com", Otp: "123456"},
			mock: func(svc *otpmocks.MockService) {
				svc.EXPECT().Validate(gomock.Any(), "user@example.com", "123456").Return(nil)
			},
			wantCode: http.StatusOK,
			wantBiz:  CodeOK,
		},
		{
			name:     "缺少验证码",
			path:     "/otp/validate",
			body:     ValidateOtpReq{Email: "user@example.com"},
			mock:     func(svc *otpmocks.MockService) {},
			wantCode: http.StatusBadRequest,
			wantBiz:  CodeBadRequest,
		},
		{
			name: "验证码不存在",
			path: "/otp/validate",
			body: ValidateOtpReq{Email: "user@example.com", Otp: "000000"},
			mock: func(svc *otpmocks.MockService) {
				svc.EXPECT().Validate(gomock.Any(), "user@example.com", "000000").Return(errs.ErrOtpNotFound)
			},
			wantCode: http.StatusNotFound,
			wantBiz:  CodeNotFound,
		},
		{
			name: "验证码已过期",
			path: "/otp/validate",
			body: ValidateOtpReq{Email: "user@example.com", Otp: "123456"},
			mock: func(svc *otpmocks.MockService) {
				svc.EXPECT().Validate(gomock.Any(), "user@example.com", "123456").Return(errs.ErrOtpExpired)
			},
			wantCode: http.StatusNotAcceptable,
			wantBiz:  CodeNotAcceptable,
		},
		{
			name: "验证码已被使用",
			path: "/otp/validate",
			body: ValidateOtpReq{Email: "user@example.com", Otp: "123456"},
			mock: func(svc *otpmocks.MockService) {
				svc.EXPECT().Validate(gomock.Any(), "user@example.com", "123456").Return(errs.ErrOtpAlreadyUsed)
			},
			wantCode: http.StatusNotAcceptable,
			wantBiz:  CodeNotAcceptable,
		},
		{
			name: "重新发送成功",
			path: "/otp/resend",
			body: SendOtpReq{Email: "user@example.com"},
			mock: func(svc *otpmocks.MockService) {
				svc.EXPECT().Resend(gomock.Any(), "user@example.com").Return(nil)
			},
			wantCode: http.StatusOK,
			wantBiz:  CodeOK,
		},
		{
			name: "重新发送系统错误",
			path: "/otp/resend",
			body: SendOtpReq{Email: "user@example.com"},
			mock: func(svc *otpmocks.MockService) {
				svc.EXPECT().Resend(gomock.Any(), "user@example.com").Return(errors.New("mock db error"))
			},
			wantCode: http.StatusInternalServerError,
			wantBiz:  CodeInternal,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			server := newOtpServer(t, ctrl, tc.mock)
			req, err := http.NewRequest(http.MethodPost, tc.path, iox.NewJSONReader(tc.body))
			require.NoError(t, err)
			req.Header.Set("content-type", "application/json")
			recorder := test.NewJSONResponseRecorder[any]()

			server.ServeHTTP(recorder, req)

			require.Equal(t, tc.wantCode, recorder.Code)
			assert.Equal(t, tc.wantBiz, recorder.MustScan().Code)
		})
	}
}
