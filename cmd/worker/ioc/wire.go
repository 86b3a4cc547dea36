//go:build wireinject

package ioc

import (
	"gitee.com/flycash/notification-dispatch/internal/ioc"
	"gitee.com/flycash/notification-dispatch/internal/repository"
	"gitee.com/flycash/notification-dispatch/internal/repository/dao"
	"gitee.com/flycash/notification-dispatch/internal/service/dispatch"
	"github.com/google/wire"
)

var (
	BaseSet = wire.NewSet(
		ioc.InitDB,
		ioc.InitPool,
		ioc.InitRedisClient,
		ioc.InitRedisCmd,
		ioc.InitStorage,
		ioc.InitKafkaConfig,
		ioc.InitKafkaConsumer,
	)
	dispatchSvcSet = wire.NewSet(
		dispatch.NewService,
		ioc.InitChannel,
		repository.NewNotificationRepository,
		dao.NewNotificationDAO,
		dao.NewOutboxDAO,
	)
)

func InitApp() *App {
	wire.Build(
		BaseSet,
		dispatchSvcSet,

		ioc.InitIdempotencyService,
		ioc.InitDispatchRetry,
		ioc.InitEventConsumer,
		wire.Struct(new(App), "*"),
	)
	return new(App)
}
