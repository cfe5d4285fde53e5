package withdrawal_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"quickearn-admin/internal/model"
	withdrawalsvc "quickearn-admin/internal/service/withdrawal"
	appErr "quickearn-admin/pkg/errors"
	"quickearn-admin/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) NotifyUser(ctx context.Context, telegramID int64, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, text)
	return nil
}

func newTestService(t *testing.T, notifier withdrawalsvc.Notifier) (*gorm.DB, *withdrawalsvc.Service) {
	t.Helper()

	logger.Log = zap.NewNop()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.Transaction{}); err != nil {
		t.Fatalf("failed to migrate models: %v", err)
	}

	return db, withdrawalsvc.NewService(db, nil, notifier)
}

func createUser(t *testing.T, db *gorm.DB, telegramID int64, firstName, lastName, username string, balance float64) {
	t.Helper()

	user := &model.User{
		TelegramID: telegramID,
		Username:   username,
		FirstName:  firstName,
		LastName:   lastName,
		Balance:    balance,
		JoinDate:   time.Now(),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to insert user: %v", err)
	}
}

func createWithdrawal(t *testing.T, db *gorm.DB, id string, userID int64, amount float64, status string) {
	t.Helper()

	tx := &model.Transaction{
		ID:            id,
		UserID:        userID,
		Type:          model.TxTypeWithdrawal,
		Amount:        amount,
		Status:        status,
		Method:        "USDT",
		AccountNumber: "TXa1b2c3",
		CreatedAt:     time.Now(),
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to insert withdrawal: %v", err)
	}
}

func TestApprove(t *testing.T) {
	notifier := &recordingNotifier{}
	db, svc := newTestService(t, notifier)
	createUser(t, db, 100, "Alice", "Smith", "alice", 50)
	createWithdrawal(t, db, "w1", 100, 20, model.TxStatusPending)

	record, err := svc.Approve(context.Background(), "w1")
	if err != nil {
		t.Fatalf("expected approve to succeed, got: %v", err)
	}
	if record.Status != model.TxStatusCompleted {
		t.Fatalf("expected completed status, got %q", record.Status)
	}
	if record.ProcessedAt == nil {
		t.Fatalf("expected processedAt to be set")
	}

	var user model.User
	if err := db.First(&user, 100).Error; err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	if user.TotalWithdrawn != 20 {
		t.Fatalf("expected totalWithdrawn 20, got %v", user.TotalWithdrawn)
	}
	// Balance was already debited when the request was filed; approval
	// must not touch it again.
	if user.Balance != 50 {
		t.Fatalf("expected balance unchanged at 50, got %v", user.Balance)
	}
	if len(notifier.messages) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifier.messages))
	}
}

func TestRejectRefundsBalance(t *testing.T) {
	notifier := &recordingNotifier{}
	db, svc := newTestService(t, notifier)
	createUser(t, db, 100, "Alice", "Smith", "alice", 50)
	createWithdrawal(t, db, "w1", 100, 20, model.TxStatusPending)

	record, err := svc.Reject(context.Background(), "w1", "")
	if err != nil {
		t.Fatalf("expected reject to succeed, got: %v", err)
	}
	if record.Status != model.TxStatusRejected {
		t.Fatalf("expected rejected status, got %q", record.Status)
	}
	if record.RejectionReason != "Administrative decision" {
		t.Fatalf("expected default rejection reason, got %q", record.RejectionReason)
	}

	var user model.User
	if err := db.First(&user, 100).Error; err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	if user.Balance != 70 {
		t.Fatalf("expected refunded balance 70, got %v", user.Balance)
	}
	if user.TotalWithdrawn != 0 {
		t.Fatalf("expected totalWithdrawn untouched, got %v", user.TotalWithdrawn)
	}
}

func TestProcessedWithdrawalIsTerminal(t *testing.T) {
	db, svc := newTestService(t, nil)
	createUser(t, db, 100, "Alice", "Smith", "alice", 50)
	createWithdrawal(t, db, "w1", 100, 20, model.TxStatusCompleted)

	if _, err := svc.Approve(context.Background(), "w1"); !errors.Is(err, appErr.ErrTransactionProcessed) {
		t.Fatalf("expected processed error on approve, got: %v", err)
	}
	if _, err := svc.Reject(context.Background(), "w1", "nope"); !errors.Is(err, appErr.ErrTransactionProcessed) {
		t.Fatalf("expected processed error on reject, got: %v", err)
	}
}

func TestDecisionSettlesMoneyOnce(t *testing.T) {
	db, svc := newTestService(t, nil)
	createUser(t, db, 100, "Alice", "Smith", "alice", 50)
	createWithdrawal(t, db, "w1", 100, 20, model.TxStatusPending)

	if _, err := svc.Approve(context.Background(), "w1"); err != nil {
		t.Fatalf("expected approve to succeed, got: %v", err)
	}
	// A second decision on the same request must lose to the first one
	// and move no money.
	if _, err := svc.Reject(context.Background(), "w1", "changed my mind"); !errors.Is(err, appErr.ErrTransactionProcessed) {
		t.Fatalf("expected processed error on late reject, got: %v", err)
	}

	var user model.User
	if err := db.First(&user, 100).Error; err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	if user.Balance != 50 {
		t.Fatalf("expected no refund after late reject, got balance %v", user.Balance)
	}
	if user.TotalWithdrawn != 20 {
		t.Fatalf("expected totalWithdrawn counted once, got %v", user.TotalWithdrawn)
	}
}

func TestApproveNonWithdrawal(t *testing.T) {
	db, svc := newTestService(t, nil)
	createUser(t, db, 100, "Alice", "Smith", "alice", 50)
	audit := &model.Transaction{
		ID:     "a1",
		UserID: 100,
		Type:   model.TxTypeAdminAdd,
		Amount: 5,
		Status: model.TxStatusPending,
	}
	if err := db.Create(audit).Error; err != nil {
		t.Fatalf("failed to insert transaction: %v", err)
	}

	if _, err := svc.Approve(context.Background(), "a1"); !errors.Is(err, appErr.ErrNotWithdrawal) {
		t.Fatalf("expected not-a-withdrawal error, got: %v", err)
	}
}

func TestApproveMissingUserFailsClosed(t *testing.T) {
	db, svc := newTestService(t, nil)
	createWithdrawal(t, db, "w1", 999, 20, model.TxStatusPending)

	if _, err := svc.Approve(context.Background(), "w1"); !errors.Is(err, appErr.ErrUserNotFound) {
		t.Fatalf("expected user not found error, got: %v", err)
	}

	// The withdrawal must still be pending: nothing committed.
	var record model.Transaction
	if err := db.First(&record, "id = ?", "w1").Error; err != nil {
		t.Fatalf("failed to reload withdrawal: %v", err)
	}
	if record.Status != model.TxStatusPending {
		t.Fatalf("expected withdrawal to stay pending, got %q", record.Status)
	}
}

func TestApproveNotFound(t *testing.T) {
	_, svc := newTestService(t, nil)

	if _, err := svc.Approve(context.Background(), "ghost"); !errors.Is(err, appErr.ErrTransactionNotFound) {
		t.Fatalf("expected not found error, got: %v", err)
	}
}

func TestListDefaultsToPending(t *testing.T) {
	db, svc := newTestService(t, nil)
	createUser(t, db, 100, "Alice", "Smith", "alice", 50)
	createWithdrawal(t, db, "w1", 100, 20, model.TxStatusPending)
	createWithdrawal(t, db, "w2", 100, 10, model.TxStatusCompleted)

	result, err := svc.List(context.Background(), withdrawalsvc.ListFilter{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if result.Total != 1 || result.Items[0].ID != "w1" {
		t.Fatalf("expected only the pending withdrawal, got total=%d", result.Total)
	}
	if result.Items[0].FirstName != "Alice" {
		t.Fatalf("expected joined first name, got %q", result.Items[0].FirstName)
	}

	all, err := svc.List(context.Background(), withdrawalsvc.ListFilter{Status: "all"})
	if err != nil {
		t.Fatalf("list all failed: %v", err)
	}
	if all.Total != 2 {
		t.Fatalf("expected 2 withdrawals for status=all, got %d", all.Total)
	}
}

func TestListSearchByOwnerName(t *testing.T) {
	db, svc := newTestService(t, nil)
	createUser(t, db, 100, "Alice", "Smith", "alice", 50)
	createUser(t, db, 200, "Bob", "Builder", "bob", 50)
	createWithdrawal(t, db, "w1", 100, 20, model.TxStatusPending)
	createWithdrawal(t, db, "w2", 200, 10, model.TxStatusPending)

	result, err := svc.List(context.Background(), withdrawalsvc.ListFilter{Search: "alice"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if result.Total != 1 || result.Items[0].UserID != 100 {
		t.Fatalf("expected Alice's withdrawal, got total=%d", result.Total)
	}
}

func TestStats(t *testing.T) {
	db, svc := newTestService(t, nil)
	createUser(t, db, 100, "Alice", "Smith", "alice", 50)
	createWithdrawal(t, db, "w1", 100, 20, model.TxStatusPending)
	createWithdrawal(t, db, "w2", 100, 15, model.TxStatusPending)
	createWithdrawal(t, db, "w3", 100, 10, model.TxStatusCompleted)
	createWithdrawal(t, db, "w4", 100, 5, model.TxStatusRejected)

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.TotalPending != 2 || stats.TotalCompleted != 1 || stats.TotalRejected != 1 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
	if stats.PendingAmount != 35 {
		t.Fatalf("expected pending amount 35, got %v", stats.PendingAmount)
	}
}
