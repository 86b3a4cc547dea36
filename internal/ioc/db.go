package ioc

import (
	"gitee.com/flycash/notification-dispatch/internal/pkg/database/dbx"
	"gitee.com/flycash/notification-dispatch/internal/repository/dao"
	"github.com/ego-component/egorm"
	"github.com/gotomicro/ego/core/econf"
)

// InitDB 启动的时候执行迁移脚本，DSN 需要开启 multiStatements
func InitDB() *egorm.Component {
	db := egorm.Load("mysql").Build()
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	if err = dao.Migrate(sqlDB); err != nil {
		panic(err)
	}
	return db
}

// InitPool 进程内唯一的连接池，退出的时候关闭
func InitPool(db *egorm.Component) *dbx.Pool {
	type Config struct {
		MaxOpenConns int `yaml:"maxOpenConns"`
	}
	var cfg Config
	if err := econf.UnmarshalKey("mysql", &cfg); err != nil {
		panic(err)
	}
	pool, err := dbx.NewPool(db, cfg.MaxOpenConns)
	if err != nil {
		panic(err)
	}
	return pool
}

func InitTransactor(pool *dbx.Pool) dbx.Transactor {
	return pool
}
