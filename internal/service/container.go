package service

import (
	"context"

	"quickearn-admin/internal/config"
	"quickearn-admin/internal/events"
	"quickearn-admin/internal/service/admin"
	"quickearn-admin/internal/service/ads"
	"quickearn-admin/internal/service/appconfig"
	"quickearn-admin/internal/service/notifier"
	"quickearn-admin/internal/service/task"
	"quickearn-admin/internal/service/user"
	"quickearn-admin/internal/service/vpn"
	"quickearn-admin/internal/service/wallet"
	"quickearn-admin/internal/service/withdrawal"
	"quickearn-admin/internal/upload"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	Bus        *events.Bus
	Admin      *admin.Service
	User       *user.Service
	Withdrawal *withdrawal.Service
	Task       *task.Service
	Ads        *ads.Service
	VPN        *vpn.Service
	Wallet     *wallet.Service
	AppConfig  *appconfig.Service
	Notifier   *notifier.Service
	Uploads    *upload.Client
}

func NewContainer(db *gorm.DB, rdb *redis.Client) *Container {
	bus := events.NewBus(rdb)
	notifierSvc := notifier.NewService(db, bus)
	cloudinary := config.GlobalConfig.Cloudinary

	return &Container{
		Bus:        bus,
		Admin:      admin.NewService(db),
		User:       user.NewService(db, bus),
		Withdrawal: withdrawal.NewService(db, bus, notifierSvc),
		Task:       task.NewService(db, bus),
		Ads:        ads.NewService(db, bus),
		VPN:        vpn.NewService(db, bus),
		Wallet:     wallet.NewService(db, bus),
		AppConfig:  appconfig.NewService(db, bus),
		Notifier:   notifierSvc,
		Uploads:    upload.NewClient(cloudinary.UploadURL, cloudinary.UploadPreset, cloudinary.APIKey),
	}
}

func (c *Container) Start(ctx context.Context) error {
	if err := c.Admin.EnsureDefaultAdmin(ctx); err != nil {
		return err
	}
	c.Notifier.Start(ctx)
	return nil
}
