package task

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"quickearn-admin/internal/events"
	"quickearn-admin/internal/model"
	appErr "quickearn-admin/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const defaultUsersQuantity = 100

// Filter values accepted by List. "Completed" and "Active" cut across
// categories on the users-cap predicate.
const (
	FilterAll       = "All"
	FilterCompleted = "Completed"
	FilterActive    = "Active"
)

var channelPattern = regexp.MustCompile(`^[a-zA-Z0-9_]{5,32}$`)

type Service struct {
	db  *gorm.DB
	bus *events.Bus
}

type CreateParams struct {
	Name            string
	Reward          float64
	Category        string
	TotalRequired   int
	URL             string
	TelegramChannel string
	CheckMembership bool
	UsersQuantity   int
}

type UpdateParams struct {
	Name            *string
	Reward          *float64
	TotalRequired   *int
	URL             *string
	TelegramChannel *string
	CheckMembership *bool
	UsersQuantity   *int
}

func NewService(db *gorm.DB, bus *events.Bus) *Service {
	return &Service{db: db, bus: bus}
}

func (p CreateParams) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", appErr.ErrInvalidTaskPayload)
	}
	if p.Reward <= 0 {
		return fmt.Errorf("%w: reward must be greater than zero", appErr.ErrInvalidTaskPayload)
	}
	if p.TotalRequired < 1 {
		return fmt.Errorf("%w: totalRequired must be at least 1", appErr.ErrInvalidTaskPayload)
	}
	switch p.Category {
	case model.TaskCategorySocials:
		if p.URL != "" && !isValidURL(p.URL) {
			return appErr.ErrInvalidURL
		}
	case model.TaskCategoryTG:
		if p.TelegramChannel != "" && !channelPattern.MatchString(p.TelegramChannel) {
			return appErr.ErrInvalidChannel
		}
	default:
		return fmt.Errorf("%w: unknown category %q", appErr.ErrInvalidTaskPayload, p.Category)
	}
	return nil
}

func isValidURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*model.Task, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	quantity := params.UsersQuantity
	if quantity <= 0 {
		quantity = defaultUsersQuantity
	}

	task := model.Task{
		ID:            uuid.NewString(),
		Name:          strings.TrimSpace(params.Name),
		Reward:        params.Reward,
		Category:      params.Category,
		TotalRequired: params.TotalRequired,
		UsersQuantity: quantity,
		CurrentUsers:  datatypes.NewJSONType(map[string]int{}),
		LastReset:     time.Now(),
	}
	switch params.Category {
	case model.TaskCategorySocials:
		task.URL = params.URL
	case model.TaskCategoryTG:
		task.TelegramChannel = params.TelegramChannel
		task.CheckMembership = params.CheckMembership
	}

	if err := s.db.WithContext(ctx).Create(&task).Error; err != nil {
		return nil, err
	}
	s.bus.Publish(ctx, "tasks/"+task.ID, events.ActionWrite)
	return &task, nil
}

func (s *Service) Update(ctx context.Context, id string, params UpdateParams) (*model.Task, error) {
	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if params.Name != nil {
		if strings.TrimSpace(*params.Name) == "" {
			return nil, fmt.Errorf("%w: name is required", appErr.ErrInvalidTaskPayload)
		}
		updates["name"] = strings.TrimSpace(*params.Name)
	}
	if params.Reward != nil {
		if *params.Reward <= 0 {
			return nil, fmt.Errorf("%w: reward must be greater than zero", appErr.ErrInvalidTaskPayload)
		}
		updates["reward"] = *params.Reward
	}
	if params.TotalRequired != nil {
		if *params.TotalRequired < 1 {
			return nil, fmt.Errorf("%w: totalRequired must be at least 1", appErr.ErrInvalidTaskPayload)
		}
		updates["total_required"] = *params.TotalRequired
	}
	if params.UsersQuantity != nil {
		if *params.UsersQuantity < 0 {
			return nil, fmt.Errorf("%w: usersQuantity must not be negative", appErr.ErrInvalidTaskPayload)
		}
		updates["users_quantity"] = *params.UsersQuantity
	}
	if params.URL != nil {
		if task.Category != model.TaskCategorySocials {
			return nil, fmt.Errorf("%w: url applies to %s only", appErr.ErrInvalidTaskPayload, model.TaskCategorySocials)
		}
		if *params.URL != "" && !isValidURL(*params.URL) {
			return nil, appErr.ErrInvalidURL
		}
		updates["url"] = *params.URL
	}
	if params.TelegramChannel != nil {
		if task.Category != model.TaskCategoryTG {
			return nil, fmt.Errorf("%w: telegramChannel applies to %s only", appErr.ErrInvalidTaskPayload, model.TaskCategoryTG)
		}
		if *params.TelegramChannel != "" && !channelPattern.MatchString(*params.TelegramChannel) {
			return nil, appErr.ErrInvalidChannel
		}
		updates["telegram_channel"] = *params.TelegramChannel
	}
	if params.CheckMembership != nil {
		if task.Category != model.TaskCategoryTG {
			return nil, fmt.Errorf("%w: checkMembership applies to %s only", appErr.ErrInvalidTaskPayload, model.TaskCategoryTG)
		}
		updates["check_membership"] = *params.CheckMembership
	}

	if len(updates) > 0 {
		updates["updated_at"] = time.Now()
		if err := s.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	s.bus.Publish(ctx, "tasks/"+id, events.ActionWrite)
	return s.Get(ctx, id)
}

// Delete removes the task document only. Entries for the task in users'
// completion maps are left orphaned, matching how the bot treats them.
func (s *Service) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&model.Task{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return appErr.ErrTaskNotFound
	}
	s.bus.Publish(ctx, "tasks/"+id, events.ActionDelete)
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	if err := s.db.WithContext(ctx).First(&task, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, appErr.ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

// List returns tasks under one of the panel filters: a category name,
// Completed, Active or All.
func (s *Service) List(ctx context.Context, filter string) ([]model.Task, error) {
	query := s.db.WithContext(ctx).Model(&model.Task{}).Order("created_at DESC")
	switch filter {
	case "", FilterAll:
	case model.TaskCategorySocials, model.TaskCategoryTG:
		query = query.Where("category = ?", filter)
	case FilterCompleted:
		query = query.Where("users_quantity > 0 AND completed_users >= users_quantity")
	case FilterActive:
		query = query.Where("users_quantity <= 0 OR completed_users < users_quantity")
	default:
		return nil, fmt.Errorf("%w: unknown filter %q", appErr.ErrInvalidTaskPayload, filter)
	}

	tasks := make([]model.Task, 0)
	if err := query.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ResetProgress zeroes the task's entry in every user's completion map and
// clears the task's own counters, as one atomic transaction rather than the
// per-user fan-out the dashboard used to issue.
func (s *Service) ResetProgress(ctx context.Context, id string) (*model.Task, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task model.Task
		if err := tx.First(&task, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return appErr.ErrTaskNotFound
			}
			return err
		}

		var users []model.User
		if err := tx.Find(&users).Error; err != nil {
			return err
		}
		for i := range users {
			completed := users[i].TasksCompleted.Data()
			if completed == nil {
				continue
			}
			if _, ok := completed[id]; !ok {
				continue
			}
			completed[id] = 0
			if err := tx.Model(&model.User{}).
				Where("telegram_id = ?", users[i].TelegramID).
				Update("tasks_completed", datatypes.NewJSONType(completed)).Error; err != nil {
				return err
			}
		}

		return tx.Model(&model.Task{}).Where("id = ?", id).Updates(map[string]interface{}{
			"completed":       0,
			"progress":        0,
			"completed_users": 0,
			"current_users":   datatypes.NewJSONType(map[string]int{}),
			"last_reset":      time.Now(),
		}).Error
	})
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, "tasks/"+id, events.ActionWrite)
	s.bus.Publish(ctx, "users", events.ActionWrite)
	return s.Get(ctx, id)
}

// ResetDailyLimit re-stamps lastReset so the bot's per-day counters start a
// fresh window. Nothing else changes.
func (s *Service) ResetDailyLimit(ctx context.Context, id string) (*model.Task, error) {
	if err := s.updateFields(ctx, id, map[string]interface{}{"last_reset": time.Now()}); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// ResetUsersLimit zeroes completedUsers, re-opening a task that had reached
// its user cap.
func (s *Service) ResetUsersLimit(ctx context.Context, id string) (*model.Task, error) {
	if err := s.updateFields(ctx, id, map[string]interface{}{"completed_users": 0}); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) updateFields(ctx context.Context, id string, updates map[string]interface{}) error {
	res := s.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return appErr.ErrTaskNotFound
	}
	s.bus.Publish(ctx, "tasks/"+id, events.ActionWrite)
	return nil
}
