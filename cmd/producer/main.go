package main

import (
	"context"

	"gitee.com/flycash/notification-dispatch/cmd/producer/ioc"
	internalioc "gitee.com/flycash/notification-dispatch/internal/ioc"
	"github.com/gotomicro/ego"
	"github.com/gotomicro/ego/core/elog"
	"github.com/gotomicro/ego/server/egovernor"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	var (
		app            *ioc.App
		shutdownTracer func(ctx context.Context) error
	)
	egoApp := ego.New(
		// 先停后台任务，再释放连接
		ego.WithBeforeStopClean(func() error {
			cancel()
			return nil
		}),
		ego.WithAfterStopClean(func() error {
			if err := shutdownTracer(context.Background()); err != nil {
				elog.Error("关闭链路追踪失败", elog.FieldErr(err))
			}
			return app.Close()
		}),
	)
	shutdownTracer = internalioc.InitTracer("notification-producer")
	app = ioc.InitApp()
	app.StartTasks(ctx)

	if err := egoApp.Serve(
		egovernor.Load("server.governor").Build(),
		app.GinServer,
	).Run(); err != nil {
		elog.Panic("startup", elog.FieldErr(err))
	}
}
