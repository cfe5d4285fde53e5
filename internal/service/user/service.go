package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"quickearn-admin/internal/events"
	"quickearn-admin/internal/model"
	appErr "quickearn-admin/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

const (
	BalanceActionAdd    = "add"
	BalanceActionDeduct = "deduct"
)

type Service struct {
	db  *gorm.DB
	bus *events.Bus
}

type ListFilter struct {
	Page   int
	Size   int
	Search string
}

type ListResult struct {
	Items []model.User
	Total int64
}

type Stats struct {
	TotalUsers         int64   `json:"totalUsers"`
	TotalEarnings      float64 `json:"totalEarnings"`
	TotalWithdrawn     float64 `json:"totalWithdrawn"`
	PendingWithdrawals float64 `json:"pendingWithdrawals"`
}

type BalanceAdjustment struct {
	Action      string
	Amount      float64
	Description string
}

type BalanceResult struct {
	User        model.User        `json:"user"`
	Transaction model.Transaction `json:"transaction"`
}

func NewService(db *gorm.DB, bus *events.Bus) *Service {
	return &Service{db: db, bus: bus}
}

func (f *ListFilter) sanitize() {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Size <= 0 {
		f.Size = defaultPageSize
	}
	if f.Size > maxPageSize {
		f.Size = maxPageSize
	}
	f.Search = strings.TrimSpace(f.Search)
}

func applyUserSearch(db *gorm.DB, search string) *gorm.DB {
	if search == "" {
		return db
	}
	like := "%" + strings.ToLower(search) + "%"
	return db.Where(
		"LOWER(username) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(first_name || ' ' || last_name) LIKE ? OR CAST(telegram_id AS TEXT) LIKE ?",
		like, like, like, like, "%"+search+"%",
	)
}

func (s *Service) List(ctx context.Context, filter ListFilter) (*ListResult, error) {
	filter.sanitize()

	countQuery := applyUserSearch(s.db.WithContext(ctx).Model(&model.User{}), filter.Search)
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, err
	}

	result := &ListResult{
		Items: make([]model.User, 0),
		Total: total,
	}
	if total == 0 {
		return result, nil
	}

	dataQuery := applyUserSearch(s.db.WithContext(ctx).Model(&model.User{}), filter.Search)
	if err := dataQuery.
		Order("join_date DESC").
		Offset((filter.Page - 1) * filter.Size).
		Limit(filter.Size).
		Find(&result.Items).Error; err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) Get(ctx context.Context, telegramID int64) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, telegramID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, appErr.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Stats aggregates the dashboard header numbers: user count, lifetime sums
// over users and the amount currently locked in pending withdrawals.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats
	if err := s.db.WithContext(ctx).Model(&model.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}

	row := s.db.WithContext(ctx).Model(&model.User{}).
		Select("COALESCE(SUM(total_earned), 0), COALESCE(SUM(total_withdrawn), 0)").
		Row()
	if err := row.Scan(&stats.TotalEarnings, &stats.TotalWithdrawn); err != nil {
		return nil, err
	}

	pendingRow := s.db.WithContext(ctx).Model(&model.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("type = ? AND status = ?", model.TxTypeWithdrawal, model.TxStatusPending).
		Row()
	if err := pendingRow.Scan(&stats.PendingWithdrawals); err != nil {
		return nil, err
	}
	return &stats, nil
}

// AdjustBalance applies an admin add/deduct to one user and appends a
// completed audit transaction, in a single database transaction. Add raises
// both balance and totalEarned; deduct lowers balance only, floored at zero.
// The audit record keeps the requested amount even when the floor clamps the
// actual decrease.
func (s *Service) AdjustBalance(ctx context.Context, telegramID int64, adj BalanceAdjustment) (*BalanceResult, error) {
	if adj.Action != BalanceActionAdd && adj.Action != BalanceActionDeduct {
		return nil, appErr.ErrInvalidAction
	}
	if adj.Amount <= 0 {
		return nil, appErr.ErrInvalidAmount
	}

	var result BalanceResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.First(&user, telegramID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return appErr.ErrUserNotFound
			}
			return err
		}

		if adj.Action == BalanceActionAdd {
			user.Balance += adj.Amount
			user.TotalEarned += adj.Amount
		} else {
			user.Balance -= adj.Amount
			if user.Balance < 0 {
				user.Balance = 0
			}
		}

		if err := tx.Model(&model.User{}).
			Where("telegram_id = ?", telegramID).
			Updates(map[string]interface{}{
				"balance":      user.Balance,
				"total_earned": user.TotalEarned,
			}).Error; err != nil {
			return err
		}

		description := strings.TrimSpace(adj.Description)
		if description == "" {
			verb := "added"
			if adj.Action == BalanceActionDeduct {
				verb = "deducted"
			}
			description = fmt.Sprintf("Admin %s balance", verb)
		}

		txType := model.TxTypeAdminAdd
		if adj.Action == BalanceActionDeduct {
			txType = model.TxTypeAdminDeduct
		}
		record := model.Transaction{
			ID:          uuid.NewString(),
			UserID:      telegramID,
			Type:        txType,
			Amount:      adj.Amount,
			Description: description,
			Status:      model.TxStatusCompleted,
			CreatedAt:   time.Now(),
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		result.User = user
		result.Transaction = record
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, fmt.Sprintf("users/%d", telegramID), events.ActionWrite)
	s.bus.Publish(ctx, "transactions/"+result.Transaction.ID, events.ActionWrite)
	return &result, nil
}
