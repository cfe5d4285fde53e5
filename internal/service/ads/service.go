package ads

import (
	"context"

	"quickearn-admin/internal/events"
	"quickearn-admin/internal/model"
	appErr "quickearn-admin/pkg/errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// The bot integrates a fixed set of six ad networks. Each provider's config
// is saved independently, so saving one must never touch another.
var Providers = []string{"adexora", "gigapub", "onclicka", "auruads", "libtl", "adextra"}

var defaultAppIDs = map[string]string{
	"adexora":  "387",
	"gigapub":  "1872",
	"onclicka": "6090192",
	"auruads":  "7479",
	"libtl":    "9878570",
	"adextra":  "c573986974ab6f6b9e52bb47e7a296e25a2db758",
}

type Service struct {
	db  *gorm.DB
	bus *events.Bus
}

type SaveParams struct {
	Reward      float64
	DailyLimit  int
	HourlyLimit int
	Cooldown    int
	WaitTime    int
	Enabled     bool
	AppID       string
}

func NewService(db *gorm.DB, bus *events.Bus) *Service {
	return &Service{db: db, bus: bus}
}

func defaultConfig(provider string) model.AdConfig {
	return model.AdConfig{
		Provider:    provider,
		Reward:      0.5,
		DailyLimit:  5,
		HourlyLimit: 2,
		Cooldown:    60,
		WaitTime:    15,
		Enabled:     true,
		AppID:       defaultAppIDs[provider],
	}
}

func knownProvider(provider string) bool {
	for _, p := range Providers {
		if p == provider {
			return true
		}
	}
	return false
}

// List returns every provider's config, falling back to the hardcoded
// defaults for providers that have never been saved.
func (s *Service) List(ctx context.Context) ([]model.AdConfig, error) {
	var stored []model.AdConfig
	if err := s.db.WithContext(ctx).Find(&stored).Error; err != nil {
		return nil, err
	}

	byProvider := make(map[string]model.AdConfig, len(stored))
	for _, cfg := range stored {
		byProvider[cfg.Provider] = cfg
	}

	configs := make([]model.AdConfig, 0, len(Providers))
	for _, provider := range Providers {
		if cfg, ok := byProvider[provider]; ok {
			configs = append(configs, cfg)
		} else {
			configs = append(configs, defaultConfig(provider))
		}
	}
	return configs, nil
}

func (s *Service) Get(ctx context.Context, provider string) (*model.AdConfig, error) {
	if !knownProvider(provider) {
		return nil, appErr.ErrUnknownProvider
	}
	var cfg model.AdConfig
	if err := s.db.WithContext(ctx).First(&cfg, "provider = ?", provider).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			cfg = defaultConfig(provider)
			return &cfg, nil
		}
		return nil, err
	}
	return &cfg, nil
}

// Save upserts a single provider row.
func (s *Service) Save(ctx context.Context, provider string, params SaveParams) (*model.AdConfig, error) {
	if !knownProvider(provider) {
		return nil, appErr.ErrUnknownProvider
	}

	cfg := model.AdConfig{
		Provider:    provider,
		Reward:      params.Reward,
		DailyLimit:  params.DailyLimit,
		HourlyLimit: params.HourlyLimit,
		Cooldown:    params.Cooldown,
		WaitTime:    params.WaitTime,
		Enabled:     params.Enabled,
		AppID:       params.AppID,
	}
	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider"}},
			UpdateAll: true,
		}).
		Create(&cfg).Error; err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, "ads/"+provider, events.ActionWrite)
	return &cfg, nil
}
