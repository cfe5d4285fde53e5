package vpn

import (
	"context"
	"sort"
	"strings"

	"quickearn-admin/internal/events"
	"quickearn-admin/internal/model"
	appErr "quickearn-admin/pkg/errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const singletonID = 1

var defaultAllowed = []string{"bangladesh", "india", "united states"}

type Service struct {
	db  *gorm.DB
	bus *events.Bus
}

type SaveParams struct {
	VPNRequired      bool
	AllowedCountries []string
}

// AddResult reports which bulk-add entries resolved and which did not.
type AddResult struct {
	Config     model.VPNConfig `json:"config"`
	Added      []string        `json:"added"`
	Unresolved []string        `json:"unresolved"`
}

func NewService(db *gorm.DB, bus *events.Bus) *Service {
	return &Service{db: db, bus: bus}
}

func (s *Service) Get(ctx context.Context) (*model.VPNConfig, error) {
	var cfg model.VPNConfig
	if err := s.db.WithContext(ctx).First(&cfg, singletonID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			cfg = model.VPNConfig{
				ID:               singletonID,
				VPNRequired:      true,
				AllowedCountries: datatypes.NewJSONType(append([]string(nil), defaultAllowed...)),
			}
			return &cfg, nil
		}
		return nil, err
	}
	cfg.AllowedCountries = datatypes.NewJSONType(dedupeSorted(cfg.AllowedCountries.Data()))
	return &cfg, nil
}

// Save replaces the whole config. Entries are normalized to canonical names;
// anything unrecognized fails the save before anything is written.
func (s *Service) Save(ctx context.Context, params SaveParams) (*model.VPNConfig, error) {
	normalized := make([]string, 0, len(params.AllowedCountries))
	for _, raw := range params.AllowedCountries {
		name := NormalizeCountry(raw)
		if name == "" {
			return nil, appErr.ErrUnknownCountry
		}
		normalized = append(normalized, name)
	}

	cfg := model.VPNConfig{
		ID:               singletonID,
		VPNRequired:      params.VPNRequired,
		AllowedCountries: datatypes.NewJSONType(dedupeSorted(normalized)),
	}
	if err := s.db.WithContext(ctx).Save(&cfg).Error; err != nil {
		return nil, err
	}
	s.bus.Publish(ctx, "vpnConfig", events.ActionWrite)
	return &cfg, nil
}

// AddCountries parses free-form input (comma, semicolon or newline separated)
// and merges every entry it can resolve into the allow list. Unresolvable
// entries are reported back instead of failing the whole batch.
func (s *Service) AddCountries(ctx context.Context, raw string) (*AddResult, error) {
	current, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	result := &AddResult{Added: []string{}, Unresolved: []string{}}
	allowed := current.AllowedCountries.Data()
	seen := make(map[string]bool, len(allowed))
	for _, name := range allowed {
		seen[name] = true
	}

	for _, item := range strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n'
	}) {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		name := NormalizeCountry(item)
		if name == "" {
			result.Unresolved = append(result.Unresolved, item)
			continue
		}
		if !seen[name] {
			seen[name] = true
			allowed = append(allowed, name)
			result.Added = append(result.Added, name)
		}
	}

	cfg := model.VPNConfig{
		ID:               singletonID,
		VPNRequired:      current.VPNRequired,
		AllowedCountries: datatypes.NewJSONType(dedupeSorted(allowed)),
	}
	if err := s.db.WithContext(ctx).Save(&cfg).Error; err != nil {
		return nil, err
	}
	s.bus.Publish(ctx, "vpnConfig", events.ActionWrite)

	result.Config = cfg
	return result, nil
}

func (s *Service) RemoveCountry(ctx context.Context, raw string) (*model.VPNConfig, error) {
	name := NormalizeCountry(raw)
	if name == "" {
		return nil, appErr.ErrUnknownCountry
	}

	current, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	allowed := current.AllowedCountries.Data()
	kept := make([]string, 0, len(allowed))
	for _, c := range allowed {
		if c != name {
			kept = append(kept, c)
		}
	}

	cfg := model.VPNConfig{
		ID:               singletonID,
		VPNRequired:      current.VPNRequired,
		AllowedCountries: datatypes.NewJSONType(kept),
	}
	if err := s.db.WithContext(ctx).Save(&cfg).Error; err != nil {
		return nil, err
	}
	s.bus.Publish(ctx, "vpnConfig", events.ActionWrite)
	return &cfg, nil
}

func dedupeSorted(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, c := range in {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
