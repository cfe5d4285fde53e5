package wallet

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"quickearn-admin/internal/events"
	"quickearn-admin/internal/model"
	appErr "quickearn-admin/pkg/errors"

	"gorm.io/gorm"
)

const singletonID = 1

type Service struct {
	db  *gorm.DB
	bus *events.Bus
}

type ConfigParams struct {
	Currency             string
	CurrencySymbol       string
	DefaultMinWithdrawal float64
	MaintenanceMode      bool
	MaintenanceMessage   string
}

type MethodParams struct {
	Name          string
	Logo          string
	Status        string
	MinWithdrawal float64
}

func NewService(db *gorm.DB, bus *events.Bus) *Service {
	return &Service{db: db, bus: bus}
}

func defaultConfig() model.WalletConfig {
	return model.WalletConfig{
		ID:                   singletonID,
		Currency:             "USDT",
		CurrencySymbol:       "$",
		DefaultMinWithdrawal: 10,
		MaintenanceMessage:   "Wallet is under maintenance. Please try again later.",
	}
}

func (s *Service) GetConfig(ctx context.Context) (*model.WalletConfig, error) {
	var cfg model.WalletConfig
	if err := s.db.WithContext(ctx).First(&cfg, singletonID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			cfg = defaultConfig()
			return &cfg, nil
		}
		return nil, err
	}
	return &cfg, nil
}

func (s *Service) SaveConfig(ctx context.Context, params ConfigParams) (*model.WalletConfig, error) {
	if params.DefaultMinWithdrawal < 0 {
		return nil, fmt.Errorf("%w: defaultMinWithdrawal must not be negative", appErr.ErrInvalidAmount)
	}
	cfg := model.WalletConfig{
		ID:                   singletonID,
		Currency:             strings.TrimSpace(params.Currency),
		CurrencySymbol:       strings.TrimSpace(params.CurrencySymbol),
		DefaultMinWithdrawal: params.DefaultMinWithdrawal,
		MaintenanceMode:      params.MaintenanceMode,
		MaintenanceMessage:   strings.TrimSpace(params.MaintenanceMessage),
	}
	if err := s.db.WithContext(ctx).Save(&cfg).Error; err != nil {
		return nil, err
	}
	s.bus.Publish(ctx, "walletConfig", events.ActionWrite)
	return &cfg, nil
}

func (s *Service) ListMethods(ctx context.Context) ([]model.PaymentMethod, error) {
	methods := make([]model.PaymentMethod, 0)
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&methods).Error; err != nil {
		return nil, err
	}
	return methods, nil
}

func (s *Service) CreateMethod(ctx context.Context, params MethodParams) (*model.PaymentMethod, error) {
	if err := validateMethod(&params); err != nil {
		return nil, err
	}

	method := model.PaymentMethod{
		ID:            newMethodID(),
		Name:          strings.TrimSpace(params.Name),
		Logo:          params.Logo,
		Status:        params.Status,
		MinWithdrawal: params.MinWithdrawal,
	}
	if err := s.db.WithContext(ctx).Create(&method).Error; err != nil {
		return nil, err
	}
	s.bus.Publish(ctx, "paymentMethods/"+method.ID, events.ActionWrite)
	return &method, nil
}

func (s *Service) UpdateMethod(ctx context.Context, id string, params MethodParams) (*model.PaymentMethod, error) {
	if err := validateMethod(&params); err != nil {
		return nil, err
	}

	var method model.PaymentMethod
	if err := s.db.WithContext(ctx).First(&method, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, appErr.ErrPaymentMethodNotFound
		}
		return nil, err
	}

	method.Name = strings.TrimSpace(params.Name)
	method.Logo = params.Logo
	method.Status = params.Status
	method.MinWithdrawal = params.MinWithdrawal
	method.UpdatedAt = time.Now()
	if err := s.db.WithContext(ctx).Save(&method).Error; err != nil {
		return nil, err
	}
	s.bus.Publish(ctx, "paymentMethods/"+id, events.ActionWrite)
	return &method, nil
}

func (s *Service) DeleteMethod(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&model.PaymentMethod{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return appErr.ErrPaymentMethodNotFound
	}
	s.bus.Publish(ctx, "paymentMethods/"+id, events.ActionDelete)
	return nil
}

func validateMethod(params *MethodParams) error {
	if strings.TrimSpace(params.Name) == "" || strings.TrimSpace(params.Logo) == "" {
		return appErr.ErrInvalidMethodPayload
	}
	if params.MinWithdrawal < 0 {
		return fmt.Errorf("%w: minWithdrawal must not be negative", appErr.ErrInvalidAmount)
	}
	params.Status = strings.ToLower(strings.TrimSpace(params.Status))
	if params.Status == "" {
		params.Status = "active"
	}
	if params.Status != "active" && params.Status != "inactive" {
		return fmt.Errorf("%w: status must be active or inactive", appErr.ErrInvalidMethodPayload)
	}
	return nil
}

var (
	methodIDMu   sync.Mutex
	lastMethodID int64
)

// newMethodID keeps the millisecond-timestamp id scheme the bot already
// stores, nudged forward on collisions within the same millisecond.
func newMethodID() string {
	methodIDMu.Lock()
	defer methodIDMu.Unlock()
	id := time.Now().UnixMilli()
	if id <= lastMethodID {
		id = lastMethodID + 1
	}
	lastMethodID = id
	return strconv.FormatInt(id, 10)
}
