package user_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"quickearn-admin/internal/model"
	usersvc "quickearn-admin/internal/service/user"
	appErr "quickearn-admin/pkg/errors"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*gorm.DB, *usersvc.Service) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.Transaction{}); err != nil {
		t.Fatalf("failed to migrate models: %v", err)
	}

	return db, usersvc.NewService(db, nil)
}

func createUser(t *testing.T, db *gorm.DB, telegramID int64, username, firstName, lastName string, balance float64) *model.User {
	t.Helper()

	user := &model.User{
		TelegramID:  telegramID,
		Username:    username,
		FirstName:   firstName,
		LastName:    lastName,
		Balance:     balance,
		TotalEarned: balance,
		JoinDate:    time.Now(),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to insert user: %v", err)
	}
	return user
}

func TestAdjustBalanceAdd(t *testing.T) {
	db, svc := newTestService(t)
	createUser(t, db, 100, "alice", "Alice", "Smith", 5)

	result, err := svc.AdjustBalance(context.Background(), 100, usersvc.BalanceAdjustment{
		Action: usersvc.BalanceActionAdd,
		Amount: 2.5,
	})
	if err != nil {
		t.Fatalf("expected add to succeed, got: %v", err)
	}
	if result.User.Balance != 7.5 {
		t.Fatalf("expected balance 7.5, got %v", result.User.Balance)
	}
	if result.User.TotalEarned != 7.5 {
		t.Fatalf("expected totalEarned 7.5, got %v", result.User.TotalEarned)
	}
	if result.Transaction.Type != model.TxTypeAdminAdd {
		t.Fatalf("expected admin_add audit record, got %q", result.Transaction.Type)
	}
	if result.Transaction.Status != model.TxStatusCompleted {
		t.Fatalf("expected completed audit record, got %q", result.Transaction.Status)
	}
	if result.Transaction.Description != "Admin added balance" {
		t.Fatalf("unexpected default description: %q", result.Transaction.Description)
	}
}

func TestAdjustBalanceDeductFloorsAtZero(t *testing.T) {
	db, svc := newTestService(t)
	createUser(t, db, 100, "alice", "Alice", "Smith", 3)

	result, err := svc.AdjustBalance(context.Background(), 100, usersvc.BalanceAdjustment{
		Action: usersvc.BalanceActionDeduct,
		Amount: 10,
	})
	if err != nil {
		t.Fatalf("expected deduct to succeed, got: %v", err)
	}
	if result.User.Balance != 0 {
		t.Fatalf("expected balance floored at 0, got %v", result.User.Balance)
	}
	// TotalEarned is untouched by deductions.
	if result.User.TotalEarned != 3 {
		t.Fatalf("expected totalEarned 3, got %v", result.User.TotalEarned)
	}
	// The audit keeps the requested amount, not the clamped decrease.
	if result.Transaction.Amount != 10 {
		t.Fatalf("expected audit amount 10, got %v", result.Transaction.Amount)
	}
	if result.Transaction.Type != model.TxTypeAdminDeduct {
		t.Fatalf("expected admin_deduct audit record, got %q", result.Transaction.Type)
	}
}

func TestAdjustBalanceValidation(t *testing.T) {
	db, svc := newTestService(t)
	createUser(t, db, 100, "alice", "Alice", "Smith", 3)

	if _, err := svc.AdjustBalance(context.Background(), 100, usersvc.BalanceAdjustment{
		Action: "transfer",
		Amount: 1,
	}); !errors.Is(err, appErr.ErrInvalidAction) {
		t.Fatalf("expected invalid action error, got: %v", err)
	}

	if _, err := svc.AdjustBalance(context.Background(), 100, usersvc.BalanceAdjustment{
		Action: usersvc.BalanceActionAdd,
		Amount: -1,
	}); !errors.Is(err, appErr.ErrInvalidAmount) {
		t.Fatalf("expected invalid amount error, got: %v", err)
	}

	if _, err := svc.AdjustBalance(context.Background(), 999, usersvc.BalanceAdjustment{
		Action: usersvc.BalanceActionAdd,
		Amount: 1,
	}); !errors.Is(err, appErr.ErrUserNotFound) {
		t.Fatalf("expected user not found error, got: %v", err)
	}
}

func TestListSearchMatchesNameAndID(t *testing.T) {
	db, svc := newTestService(t)
	createUser(t, db, 111, "alice_w", "Alice", "Wonder", 0)
	createUser(t, db, 222, "bob_b", "Bob", "Builder", 0)
	createUser(t, db, 333, "carol", "Carol", "Alicedottir", 0)

	result, err := svc.List(context.Background(), usersvc.ListFilter{Search: "ALICE"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if result.Total != 2 {
		t.Fatalf("expected 2 matches for 'ALICE', got %d", result.Total)
	}

	result, err = svc.List(context.Background(), usersvc.ListFilter{Search: "222"})
	if err != nil {
		t.Fatalf("id search failed: %v", err)
	}
	if result.Total != 1 || result.Items[0].TelegramID != 222 {
		t.Fatalf("expected user 222, got total=%d", result.Total)
	}
}

func TestListPagination(t *testing.T) {
	db, svc := newTestService(t)
	for i := int64(1); i <= 25; i++ {
		user := createUser(t, db, i, fmt.Sprintf("user%d", i), "User", fmt.Sprintf("N%d", i), 0)
		// Spread join dates so ordering is deterministic.
		user.JoinDate = time.Now().Add(-time.Duration(i) * time.Hour)
		if err := db.Save(user).Error; err != nil {
			t.Fatalf("failed to update join date: %v", err)
		}
	}

	seen := make(map[int64]bool)
	for page := 1; page <= 3; page++ {
		result, err := svc.List(context.Background(), usersvc.ListFilter{Page: page, Size: 10})
		if err != nil {
			t.Fatalf("page %d failed: %v", page, err)
		}
		if result.Total != 25 {
			t.Fatalf("expected total 25, got %d", result.Total)
		}
		for _, u := range result.Items {
			if seen[u.TelegramID] {
				t.Fatalf("user %d appeared on more than one page", u.TelegramID)
			}
			seen[u.TelegramID] = true
		}
	}
	if len(seen) != 25 {
		t.Fatalf("expected 25 distinct users across pages, got %d", len(seen))
	}
}

func TestStats(t *testing.T) {
	db, svc := newTestService(t)
	createUser(t, db, 1, "a", "A", "A", 10)
	createUser(t, db, 2, "b", "B", "B", 20)

	pending := model.Transaction{
		ID:     "w1",
		UserID: 1,
		Type:   model.TxTypeWithdrawal,
		Amount: 4,
		Status: model.TxStatusPending,
	}
	if err := db.Create(&pending).Error; err != nil {
		t.Fatalf("failed to insert withdrawal: %v", err)
	}

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.TotalUsers != 2 {
		t.Fatalf("expected 2 users, got %d", stats.TotalUsers)
	}
	if stats.TotalEarnings != 30 {
		t.Fatalf("expected total earnings 30, got %v", stats.TotalEarnings)
	}
	if stats.PendingWithdrawals != 4 {
		t.Fatalf("expected pending withdrawals 4, got %v", stats.PendingWithdrawals)
	}
}
