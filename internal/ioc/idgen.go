package ioc

import (
	"time"

	"github.com/gotomicro/ego/core/econf"
	"github.com/sony/sonyflake"
)

// InitIDGenerator machineId 不配置的时候使用内网 IP 的低 16 位
func InitIDGenerator() *sonyflake.Sonyflake {
	type Config struct {
		MachineID int       `yaml:"machineId"`
		StartTime time.Time `yaml:"startTime"`
	}
	var cfg Config
	if err := econf.UnmarshalKey("idGenerator", &cfg); err != nil {
		panic(err)
	}
	settings := sonyflake.Settings{StartTime: cfg.StartTime}
	if cfg.MachineID > 0 {
		settings.MachineID = func() (uint16, error) {
			return uint16(cfg.MachineID), nil
		}
	}
	sf, err := sonyflake.New(settings)
	if err != nil {
		panic(err)
	}
	return sf
}
