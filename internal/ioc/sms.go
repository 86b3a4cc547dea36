package ioc

import (
	"gitee.com/flycash/notification-dispatch/internal/service/provider"
	"gitee.com/flycash/notification-dispatch/internal/service/provider/sms"
	"gitee.com/flycash/notification-dispatch/internal/service/provider/sms/client"
	"github.com/gotomicro/ego/core/econf"
	"github.com/gotomicro/ego/core/elog"
)

const (
	providerAliyun  = "aliyun"
	providerTencent = "tencentcloud"
)

type smsConfig struct {
	RegionID        string `yaml:"regionId"`
	AccessKeyID     string `yaml:"accessKeyId"`
	AccessKeySecret string `yaml:"accessKeySecret"`
	AppID           string `yaml:"appId"`
	SignName        string `yaml:"signName"`
	TemplateID      string `yaml:"templateId"`
}

func loadSMSConfig(key string) (smsConfig, bool) {
	var cfg smsConfig
	if err := econf.UnmarshalKey(key, &cfg); err != nil {
		panic(err)
	}
	return cfg, cfg.AccessKeyID != ""
}

// InitSMSProviders 按照阿里云、腾讯云的顺序排列，前一个失败了用后一个。
// 没有配置密钥的供应商跳过
func InitSMSProviders() []provider.Provider {
	res := make([]provider.Provider, 0, 2)
	if cfg, ok := loadSMSConfig("sms.aliyun"); ok {
		cli, err := client.NewAliyunSMS(cfg.RegionID, cfg.AccessKeyID, cfg.AccessKeySecret)
		if err != nil {
			panic(err)
		}
		res = append(res, wrapProvider(providerAliyun, sms.NewSMSProvider(providerAliyun,
			sms.Config{SignName: cfg.SignName, TemplateID: cfg.TemplateID}, cli)))
	}
	if cfg, ok := loadSMSConfig("sms.tencent"); ok {
		cli, err := client.NewTencentCloudSMS(cfg.RegionID, cfg.AccessKeyID, cfg.AccessKeySecret, cfg.AppID)
		if err != nil {
			panic(err)
		}
		res = append(res, wrapProvider(providerTencent, sms.NewSMSProvider(providerTencent,
			sms.Config{SignName: cfg.SignName, TemplateID: cfg.TemplateID}, cli)))
	}
	if len(res) == 0 {
		elog.DefaultLogger.Warn("没有配置短信供应商，短信通知都会发送失败")
	}
	return res
}
