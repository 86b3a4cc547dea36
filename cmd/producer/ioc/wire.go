//go:build wireinject

package ioc

import (
	"gitee.com/flycash/notification-dispatch/internal/ioc"
	"gitee.com/flycash/notification-dispatch/internal/repository"
	"gitee.com/flycash/notification-dispatch/internal/repository/dao"
	"gitee.com/flycash/notification-dispatch/internal/service/mail"
	notificationsvc "gitee.com/flycash/notification-dispatch/internal/service/notification"
	"gitee.com/flycash/notification-dispatch/internal/web"
	"github.com/google/wire"
)

var (
	BaseSet = wire.NewSet(
		ioc.InitDB,
		ioc.InitPool,
		ioc.InitTransactor,
		ioc.InitRedisClient,
		ioc.InitRedisCmd,
		ioc.InitDistributedLock,
		ioc.InitIDGenerator,
		ioc.InitStorage,
		ioc.InitKafkaConfig,
		ioc.InitKafkaProducer,
		ioc.InitEventProducer,
	)
	notificationSvcSet = wire.NewSet(
		notificationsvc.NewNotificationService,
		repository.NewNotificationRepository,
		dao.NewNotificationDAO,
		repository.NewOutboxRepository,
		dao.NewOutboxDAO,
	)
	mailSvcSet = wire.NewSet(
		mail.NewService,
		ioc.InitRenderer,
		ioc.InitMailSender,
	)
	otpSvcSet = wire.NewSet(
		ioc.InitOtpService,
		ioc.InitOtpLimiter,
		repository.NewOtpRepository,
		dao.NewOtpDAO,
	)
	taskSet = wire.NewSet(
		ioc.InitRelayTask,
		ioc.InitProcessingTimeoutTask,
		ioc.InitTasks,
	)
)

func InitApp() *App {
	wire.Build(
		BaseSet,
		notificationSvcSet,
		mailSvcSet,
		otpSvcSet,
		taskSet,

		web.NewOtpHandler,
		web.NewNotificationHandler,
		ioc.InitGinServer,
		wire.Struct(new(App), "*"),
	)
	return new(App)
}
