package vpn_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"quickearn-admin/internal/model"
	vpnsvc "quickearn-admin/internal/service/vpn"
	appErr "quickearn-admin/pkg/errors"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*gorm.DB, *vpnsvc.Service) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&model.VPNConfig{}); err != nil {
		t.Fatalf("failed to migrate model: %v", err)
	}

	return db, vpnsvc.NewService(db, nil)
}

func TestNormalizeCountry(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"USA", "united states"},
		{"us", "united states"},
		{"United States", "united states"},
		{"  UNITED STATES  ", "united states"},
		{"uk", "united kingdom"},
		{"UAE", "united arab emirates"},
		{"BD", "bangladesh"},
		{"india", "india"},
		{"IND", "india"},
		{"south korea", "south korea"},
		{"atlantis", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := vpnsvc.NormalizeCountry(c.input); got != c.want {
			t.Fatalf("NormalizeCountry(%q): expected %q, got %q", c.input, c.want, got)
		}
	}
}

func TestGetReturnsDefaults(t *testing.T) {
	_, svc := newTestService(t)

	cfg, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !cfg.VPNRequired {
		t.Fatalf("expected vpnRequired on by default")
	}
	want := []string{"bangladesh", "india", "united states"}
	if !reflect.DeepEqual(cfg.AllowedCountries.Data(), want) {
		t.Fatalf("expected default allow list %v, got %v", want, cfg.AllowedCountries.Data())
	}
}

func TestSaveNormalizesAndSorts(t *testing.T) {
	_, svc := newTestService(t)

	cfg, err := svc.Save(context.Background(), vpnsvc.SaveParams{
		VPNRequired:      true,
		AllowedCountries: []string{"USA", "Bangladesh", "us", "IN"},
	})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	want := []string{"bangladesh", "india", "united states"}
	if !reflect.DeepEqual(cfg.AllowedCountries.Data(), want) {
		t.Fatalf("expected %v, got %v", want, cfg.AllowedCountries.Data())
	}
}

func TestSaveRejectsUnknownCountry(t *testing.T) {
	_, svc := newTestService(t)

	_, err := svc.Save(context.Background(), vpnsvc.SaveParams{
		AllowedCountries: []string{"india", "atlantis"},
	})
	if !errors.Is(err, appErr.ErrUnknownCountry) {
		t.Fatalf("expected unknown country error, got: %v", err)
	}

	// The failed save must not have replaced the stored config.
	cfg, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(cfg.AllowedCountries.Data()) != 3 {
		t.Fatalf("expected defaults to survive the failed save, got %v", cfg.AllowedCountries.Data())
	}
}

func TestAddCountriesReportsUnresolved(t *testing.T) {
	_, svc := newTestService(t)

	result, err := svc.AddCountries(context.Background(), "Germany, atlantis; FR\nnarnia")
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	wantAdded := []string{"france", "germany"}
	added := append([]string(nil), result.Added...)
	if len(added) != 2 {
		t.Fatalf("expected 2 added, got %v", added)
	}
	for _, name := range wantAdded {
		found := false
		for _, a := range added {
			if a == name {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected %q in added list %v", name, added)
		}
	}
	if !reflect.DeepEqual(result.Unresolved, []string{"atlantis", "narnia"}) {
		t.Fatalf("expected unresolved entries reported, got %v", result.Unresolved)
	}

	allowed := result.Config.AllowedCountries.Data()
	if len(allowed) != 5 {
		t.Fatalf("expected 5 allowed countries, got %v", allowed)
	}
}

func TestAddCountriesSkipsDuplicates(t *testing.T) {
	_, svc := newTestService(t)

	result, err := svc.AddCountries(context.Background(), "india, IN, India")
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if len(result.Added) != 0 {
		t.Fatalf("expected nothing added for already-allowed country, got %v", result.Added)
	}
}

func TestRemoveCountry(t *testing.T) {
	_, svc := newTestService(t)

	cfg, err := svc.RemoveCountry(context.Background(), "USA")
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	want := []string{"bangladesh", "india"}
	if !reflect.DeepEqual(cfg.AllowedCountries.Data(), want) {
		t.Fatalf("expected %v after removal, got %v", want, cfg.AllowedCountries.Data())
	}

	if _, err := svc.RemoveCountry(context.Background(), "atlantis"); !errors.Is(err, appErr.ErrUnknownCountry) {
		t.Fatalf("expected unknown country error, got: %v", err)
	}
}
