package ads_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"quickearn-admin/internal/model"
	adssvc "quickearn-admin/internal/service/ads"
	appErr "quickearn-admin/pkg/errors"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*gorm.DB, *adssvc.Service) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&model.AdConfig{}); err != nil {
		t.Fatalf("failed to migrate model: %v", err)
	}

	return db, adssvc.NewService(db, nil)
}

func TestListReturnsDefaultsForUnsavedProviders(t *testing.T) {
	_, svc := newTestService(t)

	configs, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(configs) != len(adssvc.Providers) {
		t.Fatalf("expected %d configs, got %d", len(adssvc.Providers), len(configs))
	}
	for _, cfg := range configs {
		if cfg.Reward != 0.5 || cfg.DailyLimit != 5 || cfg.HourlyLimit != 2 {
			t.Fatalf("unexpected defaults for %s: %+v", cfg.Provider, cfg)
		}
		if !cfg.Enabled {
			t.Fatalf("expected %s enabled by default", cfg.Provider)
		}
		if cfg.AppID == "" {
			t.Fatalf("expected default app id for %s", cfg.Provider)
		}
	}
}

func TestSaveIsScopedToOneProvider(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()

	saved, err := svc.Save(ctx, "gigapub", adssvc.SaveParams{
		Reward:     2,
		DailyLimit: 10,
		Enabled:    false,
		AppID:      "custom-id",
	})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if saved.Reward != 2 || saved.Enabled {
		t.Fatalf("save did not stick: %+v", saved)
	}

	other, err := svc.Get(ctx, "onclicka")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if other.Reward != 0.5 || !other.Enabled {
		t.Fatalf("expected onclicka untouched, got: %+v", other)
	}
}

func TestSaveOverwritesExisting(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Save(ctx, "adexora", adssvc.SaveParams{Reward: 1, Enabled: true}); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	updated, err := svc.Save(ctx, "adexora", adssvc.SaveParams{Reward: 3, Enabled: true})
	if err != nil {
		t.Fatalf("second save failed: %v", err)
	}
	if updated.Reward != 3 {
		t.Fatalf("expected reward 3 after upsert, got %v", updated.Reward)
	}

	configs, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	count := 0
	for _, cfg := range configs {
		if cfg.Provider == "adexora" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected a single adexora row, got %d", count)
	}
}

func TestUnknownProvider(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Get(ctx, "doubleclick"); !errors.Is(err, appErr.ErrUnknownProvider) {
		t.Fatalf("expected unknown provider error, got: %v", err)
	}
	if _, err := svc.Save(ctx, "doubleclick", adssvc.SaveParams{Reward: 1}); !errors.Is(err, appErr.ErrUnknownProvider) {
		t.Fatalf("expected unknown provider error, got: %v", err)
	}
}
