package task_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"quickearn-admin/internal/model"
	tasksvc "quickearn-admin/internal/service/task"
	appErr "quickearn-admin/pkg/errors"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*gorm.DB, *tasksvc.Service) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&model.Task{}, &model.User{}); err != nil {
		t.Fatalf("failed to migrate models: %v", err)
	}

	return db, tasksvc.NewService(db, nil)
}

func socialsParams() tasksvc.CreateParams {
	return tasksvc.CreateParams{
		Name:          "Follow us",
		Reward:        1.5,
		Category:      model.TaskCategorySocials,
		TotalRequired: 1,
		URL:           "https://example.com/follow",
	}
}

func TestCreateDefaultsUsersQuantity(t *testing.T) {
	_, svc := newTestService(t)

	task, err := svc.Create(context.Background(), socialsParams())
	if err != nil {
		t.Fatalf("expected create to succeed, got: %v", err)
	}
	if task.UsersQuantity != 100 {
		t.Fatalf("expected default usersQuantity 100, got %d", task.UsersQuantity)
	}
	if task.ID == "" {
		t.Fatalf("expected generated id")
	}
	if task.CurrentUsers.Data() == nil {
		t.Fatalf("expected empty currentUsers map, got nil")
	}
}

func TestCreateValidation(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()

	params := socialsParams()
	params.Name = "  "
	if _, err := svc.Create(ctx, params); !errors.Is(err, appErr.ErrInvalidTaskPayload) {
		t.Fatalf("expected payload error for empty name, got: %v", err)
	}

	params = socialsParams()
	params.Reward = 0
	if _, err := svc.Create(ctx, params); !errors.Is(err, appErr.ErrInvalidTaskPayload) {
		t.Fatalf("expected payload error for zero reward, got: %v", err)
	}

	params = socialsParams()
	params.URL = "ftp://example.com"
	if _, err := svc.Create(ctx, params); !errors.Is(err, appErr.ErrInvalidURL) {
		t.Fatalf("expected url error, got: %v", err)
	}

	params = socialsParams()
	params.Category = "Weird Tasks"
	if _, err := svc.Create(ctx, params); !errors.Is(err, appErr.ErrInvalidTaskPayload) {
		t.Fatalf("expected payload error for unknown category, got: %v", err)
	}

	tg := tasksvc.CreateParams{
		Name:            "Join channel",
		Reward:          1,
		Category:        model.TaskCategoryTG,
		TotalRequired:   1,
		TelegramChannel: "ab", // below the 5 char minimum
	}
	if _, err := svc.Create(ctx, tg); !errors.Is(err, appErr.ErrInvalidChannel) {
		t.Fatalf("expected channel error, got: %v", err)
	}
}

func TestUpdateRejectsCrossCategoryFields(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, socialsParams())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	channel := "mychannel"
	if _, err := svc.Update(ctx, task.ID, tasksvc.UpdateParams{TelegramChannel: &channel}); !errors.Is(err, appErr.ErrInvalidTaskPayload) {
		t.Fatalf("expected payload error for channel on socials task, got: %v", err)
	}

	check := true
	if _, err := svc.Update(ctx, task.ID, tasksvc.UpdateParams{CheckMembership: &check}); !errors.Is(err, appErr.ErrInvalidTaskPayload) {
		t.Fatalf("expected payload error for membership on socials task, got: %v", err)
	}
}

func TestUpdateFields(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, socialsParams())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	name := "Follow us on X"
	reward := 2.0
	updated, err := svc.Update(ctx, task.ID, tasksvc.UpdateParams{Name: &name, Reward: &reward})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != "Follow us on X" || updated.Reward != 2.0 {
		t.Fatalf("update did not stick: %+v", updated)
	}
}

func TestIsCompletedBoundary(t *testing.T) {
	cases := []struct {
		quantity  int
		completed int
		want      bool
	}{
		{0, 100, false}, // zero cap never completes
		{10, 9, false},
		{10, 10, true},
		{10, 11, true},
		{1, 1, true},
	}
	for _, c := range cases {
		task := model.Task{UsersQuantity: c.quantity, CompletedUsers: c.completed}
		if got := task.IsCompleted(); got != c.want {
			t.Fatalf("quantity=%d completed=%d: expected %v, got %v", c.quantity, c.completed, c.want, got)
		}
	}
}

func TestListFilters(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()

	open, err := svc.Create(ctx, socialsParams())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	full, err := svc.Create(ctx, tasksvc.CreateParams{
		Name:            "Join channel",
		Reward:          1,
		Category:        model.TaskCategoryTG,
		TotalRequired:   1,
		TelegramChannel: "mychannel",
		UsersQuantity:   1,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := db.Model(&model.Task{}).Where("id = ?", full.ID).
		Update("completed_users", 1).Error; err != nil {
		t.Fatalf("failed to fill task: %v", err)
	}

	completed, err := svc.List(ctx, tasksvc.FilterCompleted)
	if err != nil {
		t.Fatalf("completed filter failed: %v", err)
	}
	if len(completed) != 1 || completed[0].ID != full.ID {
		t.Fatalf("expected only the full task, got %d", len(completed))
	}

	active, err := svc.List(ctx, tasksvc.FilterActive)
	if err != nil {
		t.Fatalf("active filter failed: %v", err)
	}
	if len(active) != 1 || active[0].ID != open.ID {
		t.Fatalf("expected only the open task, got %d", len(active))
	}

	tg, err := svc.List(ctx, model.TaskCategoryTG)
	if err != nil {
		t.Fatalf("category filter failed: %v", err)
	}
	if len(tg) != 1 || tg[0].ID != full.ID {
		t.Fatalf("expected only the TG task, got %d", len(tg))
	}

	if _, err := svc.List(ctx, "bogus"); !errors.Is(err, appErr.ErrInvalidTaskPayload) {
		t.Fatalf("expected error for unknown filter, got: %v", err)
	}
}

func TestResetProgressClearsUserEntries(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, socialsParams())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	user := model.User{
		TelegramID:     100,
		Username:       "alice",
		JoinDate:       time.Now(),
		TasksCompleted: datatypes.NewJSONType(map[string]int{task.ID: 3, "other-task": 1}),
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to insert user: %v", err)
	}
	if err := db.Model(&model.Task{}).Where("id = ?", task.ID).Updates(map[string]interface{}{
		"completed":       7,
		"progress":        4,
		"completed_users": 2,
		"current_users":   datatypes.NewJSONType(map[string]int{"100": 1}),
	}).Error; err != nil {
		t.Fatalf("failed to seed progress: %v", err)
	}

	reset, err := svc.ResetProgress(ctx, task.ID)
	if err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if reset.Completed != 0 || reset.Progress != 0 || reset.CompletedUsers != 0 {
		t.Fatalf("expected counters zeroed: %+v", reset)
	}
	if len(reset.CurrentUsers.Data()) != 0 {
		t.Fatalf("expected currentUsers cleared, got %v", reset.CurrentUsers.Data())
	}

	var reloaded model.User
	if err := db.First(&reloaded, 100).Error; err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	completed := reloaded.TasksCompleted.Data()
	if completed[task.ID] != 0 {
		t.Fatalf("expected task entry zeroed, got %d", completed[task.ID])
	}
	// Other tasks' progress is untouched.
	if completed["other-task"] != 1 {
		t.Fatalf("expected other task untouched, got %d", completed["other-task"])
	}
}

func TestResetUsersLimitReopensTask(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()

	params := socialsParams()
	params.UsersQuantity = 1
	task, err := svc.Create(ctx, params)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := db.Model(&model.Task{}).Where("id = ?", task.ID).
		Update("completed_users", 1).Error; err != nil {
		t.Fatalf("failed to fill task: %v", err)
	}

	reloaded, err := svc.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !reloaded.IsCompleted() {
		t.Fatalf("expected task to be full before reset")
	}

	reset, err := svc.ResetUsersLimit(ctx, task.ID)
	if err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if reset.IsCompleted() {
		t.Fatalf("expected task reopened after reset")
	}
}

func TestDelete(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, socialsParams())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := svc.Delete(ctx, task.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := svc.Get(ctx, task.ID); !errors.Is(err, appErr.ErrTaskNotFound) {
		t.Fatalf("expected not found after delete, got: %v", err)
	}
	if err := svc.Delete(ctx, task.ID); !errors.Is(err, appErr.ErrTaskNotFound) {
		t.Fatalf("expected not found on second delete, got: %v", err)
	}
}
