package ioc

import (
	"gitee.com/flycash/notification-dispatch/internal/web"
	"github.com/gotomicro/ego/server/egin"
)

func InitGinServer(otpHdl *web.OtpHandler, notificationHdl *web.NotificationHandler) *egin.Component {
	server := egin.Load("server.http").Build()
	otpHdl.PublicRoutes(server.Engine)
	notificationHdl.PublicRoutes(server.Engine)
	return server
}
