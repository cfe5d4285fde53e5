package appconfig

import (
	"context"
	"fmt"
	"strings"
	"time"

	"quickearn-admin/internal/events"
	"quickearn-admin/internal/model"
	appErr "quickearn-admin/pkg/errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const singletonID = 1

type Service struct {
	db  *gorm.DB
	bus *events.Bus
}

type SaveParams struct {
	LogoURL                string
	AppName                string
	SupportURL             string
	TutorialVideoID        string
	ReferralCommissionRate float64
}

func NewService(db *gorm.DB, bus *events.Bus) *Service {
	return &Service{db: db, bus: bus}
}

func (s *Service) Get(ctx context.Context) (*model.AppConfig, error) {
	var cfg model.AppConfig
	if err := s.db.WithContext(ctx).First(&cfg, singletonID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			cfg = model.AppConfig{
				ID:           singletonID,
				SliderImages: datatypes.NewJSONType([]model.SliderImage{}),
			}
			return &cfg, nil
		}
		return nil, err
	}
	if cfg.SliderImages.Data() == nil {
		cfg.SliderImages = datatypes.NewJSONType([]model.SliderImage{})
	}
	return &cfg, nil
}

// Save writes the branding fields, leaving the slider list untouched.
func (s *Service) Save(ctx context.Context, params SaveParams) (*model.AppConfig, error) {
	if params.ReferralCommissionRate < 0 || params.ReferralCommissionRate > 100 {
		return nil, appErr.ErrInvalidCommissionRate
	}

	current, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	cfg := model.AppConfig{
		ID:                     singletonID,
		LogoURL:                strings.TrimSpace(params.LogoURL),
		AppName:                strings.TrimSpace(params.AppName),
		SliderImages:           current.SliderImages,
		SupportURL:             strings.TrimSpace(params.SupportURL),
		TutorialVideoID:        strings.TrimSpace(params.TutorialVideoID),
		ReferralCommissionRate: params.ReferralCommissionRate,
	}
	if err := s.db.WithContext(ctx).Save(&cfg).Error; err != nil {
		return nil, err
	}
	s.bus.Publish(ctx, "appConfig", events.ActionWrite)
	return &cfg, nil
}

// AddSliderImages appends uploaded images to the end of the slider, in the
// given order.
func (s *Service) AddSliderImages(ctx context.Context, urls []string) (*model.AppConfig, error) {
	current, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	images := current.SliderImages.Data()
	now := time.Now()
	for i, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		images = append(images, model.SliderImage{
			ID:        fmt.Sprintf("slider-%d-%d", now.UnixMilli(), i),
			URL:       u,
			Alt:       fmt.Sprintf("Slider Image %d", len(images)+1),
			Order:     len(images),
			CreatedAt: now.Format(time.RFC3339),
		})
	}

	return s.saveSlider(ctx, current, images)
}

// RemoveSliderImage deletes one image and renumbers the remaining orders so
// they stay contiguous.
func (s *Service) RemoveSliderImage(ctx context.Context, imageID string) (*model.AppConfig, error) {
	current, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	images := current.SliderImages.Data()
	kept := make([]model.SliderImage, 0, len(images))
	found := false
	for _, img := range images {
		if img.ID == imageID {
			found = true
			continue
		}
		img.Order = len(kept)
		kept = append(kept, img)
	}
	if !found {
		return nil, appErr.ErrSliderImageNotFound
	}

	return s.saveSlider(ctx, current, kept)
}

// MoveSliderImage swaps an image with its neighbor in the given direction
// ("up" toward the front, "down" toward the back). Moving past either end is
// a no-op.
func (s *Service) MoveSliderImage(ctx context.Context, imageID, direction string) (*model.AppConfig, error) {
	if direction != "up" && direction != "down" {
		return nil, fmt.Errorf("%w: direction must be 'up' or 'down'", appErr.ErrSliderImageNotFound)
	}

	current, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	images := current.SliderImages.Data()
	idx := -1
	for i, img := range images {
		if img.ID == imageID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, appErr.ErrSliderImageNotFound
	}

	swap := idx - 1
	if direction == "down" {
		swap = idx + 1
	}
	if swap >= 0 && swap < len(images) {
		images[idx], images[swap] = images[swap], images[idx]
		for i := range images {
			images[i].Order = i
		}
	}

	return s.saveSlider(ctx, current, images)
}

func (s *Service) saveSlider(ctx context.Context, current *model.AppConfig, images []model.SliderImage) (*model.AppConfig, error) {
	cfg := *current
	cfg.ID = singletonID
	cfg.SliderImages = datatypes.NewJSONType(images)
	if err := s.db.WithContext(ctx).Save(&cfg).Error; err != nil {
		return nil, err
	}
	s.bus.Publish(ctx, "appConfig", events.ActionWrite)
	return &cfg, nil
}
