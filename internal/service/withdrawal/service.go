package withdrawal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"quickearn-admin/internal/events"
	"quickearn-admin/internal/model"
	appErr "quickearn-admin/pkg/errors"
	"quickearn-admin/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultPageSize      = 10
	maxPageSize          = 100
	defaultRejectionNote = "Administrative decision"
)

// Notifier delivers a message to one Telegram user after a withdrawal is
// processed. Delivery is best effort: failures are logged, never retried and
// never roll the money movement back.
type Notifier interface {
	NotifyUser(ctx context.Context, telegramID int64, text string) error
}

type Service struct {
	db       *gorm.DB
	bus      *events.Bus
	notifier Notifier
}

type ListFilter struct {
	Page   int
	Size   int
	Status string // pending (default), completed, rejected, all
	Search string
}

// Item is a withdrawal joined with the bits of the owning user the panel
// shows and searches on.
type Item struct {
	model.Transaction
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
}

type ListResult struct {
	Items []Item
	Total int64
}

type Stats struct {
	TotalPending   int64   `json:"totalPending"`
	TotalCompleted int64   `json:"totalCompleted"`
	TotalRejected  int64   `json:"totalRejected"`
	PendingAmount  float64 `json:"pendingAmount"`
}

func NewService(db *gorm.DB, bus *events.Bus, notifier Notifier) *Service {
	return &Service{db: db, bus: bus, notifier: notifier}
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
	f.Status = strings.ToLower(strings.TrimSpace(f.Status))
	if f.Status == "" {
		f.Status = model.TxStatusPending
	}
	f.Search = strings.TrimSpace(f.Search)
}

func applyFilters(db *gorm.DB, filter ListFilter) *gorm.DB {
	db = db.Where("transactions.type = ?", model.TxTypeWithdrawal)
	if filter.Status != "all" {
		db = db.Where("transactions.status = ?", filter.Status)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		db = db.Where(
			"CAST(transactions.user_id AS TEXT) LIKE ? OR LOWER(users.first_name) LIKE ? OR LOWER(users.last_name) LIKE ? OR LOWER(users.username) LIKE ? OR LOWER(transactions.account_number) LIKE ?",
			"%"+filter.Search+"%", like, like, like, like,
		)
	}
	return db
}

// List returns withdrawal requests newest first, filtered and paginated in
// the store instead of in the panel.
func (s *Service) List(ctx context.Context, filter ListFilter) (*ListResult, error) {
	filter.sanitize()

	base := func() *gorm.DB {
		return applyFilters(
			s.db.WithContext(ctx).
				Model(&model.Transaction{}).
				Joins("LEFT JOIN users ON users.telegram_id = transactions.user_id"),
			filter,
		)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, err
	}

	result := &ListResult{Items: make([]Item, 0), Total: total}
	if total == 0 {
		return result, nil
	}

	if err := base().
		Select("transactions.*, COALESCE(users.first_name, '') AS first_name, COALESCE(users.last_name, '') AS last_name, COALESCE(users.username, '') AS username").
		Order("transactions.created_at DESC").
		Offset((filter.Page - 1) * filter.Size).
		Limit(filter.Size).
		Scan(&result.Items).Error; err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats
	counts := []struct {
		status string
		dest   *int64
	}{
		{model.TxStatusPending, &stats.TotalPending},
		{model.TxStatusCompleted, &stats.TotalCompleted},
		{model.TxStatusRejected, &stats.TotalRejected},
	}
	for _, c := range counts {
		if err := s.db.WithContext(ctx).Model(&model.Transaction{}).
			Where("type = ? AND status = ?", model.TxTypeWithdrawal, c.status).
			Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	row := s.db.WithContext(ctx).Model(&model.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("type = ? AND status = ?", model.TxTypeWithdrawal, model.TxStatusPending).
		Row()
	if err := row.Scan(&stats.PendingAmount); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Approve moves a pending withdrawal to completed and credits the owner's
// lifetime withdrawn total. Both writes commit atomically; a withdrawal whose
// owner no longer exists fails closed and nothing is written.
func (s *Service) Approve(ctx context.Context, transactionID string) (*model.Transaction, error) {
	record, err := s.process(ctx, transactionID, func(tx *gorm.DB, t *model.Transaction) error {
		now := time.Now()
		t.Status = model.TxStatusCompleted
		t.ProcessedAt = &now
		return tx.Model(&model.User{}).
			Where("telegram_id = ?", t.UserID).
			UpdateColumn("total_withdrawn", gorm.Expr("total_withdrawn + ?", t.Amount)).Error
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, record.UserID,
		fmt.Sprintf("✅ Your withdrawal of %.2f has been approved and processed.", record.Amount))
	return record, nil
}

// Reject moves a pending withdrawal to rejected and refunds the amount to
// the owner's spendable balance, atomically with the status change.
func (s *Service) Reject(ctx context.Context, transactionID, reason string) (*model.Transaction, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = defaultRejectionNote
	}
	record, err := s.process(ctx, transactionID, func(tx *gorm.DB, t *model.Transaction) error {
		now := time.Now()
		t.Status = model.TxStatusRejected
		t.ProcessedAt = &now
		t.RejectionReason = reason
		return tx.Model(&model.User{}).
			Where("telegram_id = ?", t.UserID).
			UpdateColumn("balance", gorm.Expr("balance + ?", t.Amount)).Error
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, record.UserID,
		fmt.Sprintf("❌ Your withdrawal of %.2f was rejected: %s. The amount has been refunded to your balance.", record.Amount, reason))
	return record, nil
}

func (s *Service) process(ctx context.Context, transactionID string, mutate func(*gorm.DB, *model.Transaction) error) (*model.Transaction, error) {
	var record model.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the row so two concurrent decisions cannot both see a
		// pending status and settle the same request twice.
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&record, "id = ?", transactionID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return appErr.ErrTransactionNotFound
			}
			return err
		}
		if record.Type != model.TxTypeWithdrawal {
			return appErr.ErrNotWithdrawal
		}
		if record.Status != model.TxStatusPending {
			return appErr.ErrTransactionProcessed
		}

		var owner int64
		if err := tx.Model(&model.User{}).
			Where("telegram_id = ?", record.UserID).
			Count(&owner).Error; err != nil {
			return err
		}
		if owner == 0 {
			return appErr.ErrUserNotFound
		}

		if err := mutate(tx, &record); err != nil {
			return err
		}
		return tx.Save(&record).Error
	})
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, "transactions/"+record.ID, events.ActionWrite)
	s.bus.Publish(ctx, fmt.Sprintf("users/%d", record.UserID), events.ActionWrite)
	return &record, nil
}

func (s *Service) notify(ctx context.Context, telegramID int64, text string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyUser(ctx, telegramID, text); err != nil {
		logger.Log.Warn("withdrawal notification failed",
			zap.Int64("telegramId", telegramID),
			zap.Error(err))
	}
}
