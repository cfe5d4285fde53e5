package model

import (
	"time"

	"gorm.io/datatypes"
)

// 2.1 Admin & Users

type Admin struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Username     string `gorm:"unique;not null"`
	PasswordHash string `gorm:"not null"`
	DisplayName  string
	Status       string `gorm:"default:active;not null"` // active/disabled
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// User mirrors one Telegram user of the rewards bot. Balances are mutated by
// the bot (ad watches, task claims) and by admin adjustments here.
type User struct {
	TelegramID      int64     `gorm:"primaryKey" json:"telegramId"`
	Username        string    `gorm:"index" json:"username"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	ProfilePhoto    string    `json:"profilePhoto,omitempty"`
	Balance         float64   `json:"balance"`
	TotalEarned     float64   `json:"totalEarned"`
	TotalWithdrawn  float64   `json:"totalWithdrawn"`
	JoinDate        time.Time `json:"joinDate"`
	AdsWatchedToday int       `json:"adsWatchedToday"`
	// task id -> completion count
	TasksCompleted datatypes.JSONType[map[string]int] `json:"tasksCompleted"`
	LastAdWatch    *time.Time                         `json:"lastAdWatch,omitempty"`
	ReferredBy     string                             `json:"referredBy,omitempty"`
	DeviceID       string                             `json:"deviceId,omitempty"`
	IsMainAccount  bool                               `json:"isMainAccount"`
}

// 2.2 Money movement

const (
	TxTypeWithdrawal  = "withdrawal"
	TxTypeAdminAdd    = "admin_add"
	TxTypeAdminDeduct = "admin_deduct"
)

const (
	TxStatusPending   = "pending"
	TxStatusCompleted = "completed"
	TxStatusRejected  = "rejected"
)

type Transaction struct {
	ID              string     `gorm:"primaryKey" json:"id"`
	UserID          int64      `gorm:"index" json:"userId"`
	Type            string     `gorm:"index" json:"type"`
	Amount          float64    `json:"amount"`
	Description     string     `json:"description"`
	Status          string     `gorm:"index;default:pending" json:"status"`
	Method          string     `json:"method,omitempty"`
	AccountNumber   string     `json:"accountNumber,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	ProcessedAt     *time.Time `json:"processedAt,omitempty"`
	RejectionReason string     `json:"rejectionReason,omitempty"`
}

// 2.3 Tasks

const (
	TaskCategorySocials = "Socials Tasks"
	TaskCategoryTG      = "TG Tasks"
)

type Task struct {
	ID              string  `gorm:"primaryKey" json:"id"`
	Name            string  `gorm:"not null" json:"name"`
	Reward          float64 `json:"reward"`
	Category        string  `gorm:"index" json:"category"`
	TotalRequired   int     `json:"totalRequired"`
	Completed       int     `json:"completed"`
	Progress        int     `json:"progress"`
	URL             string  `json:"url,omitempty"`
	TelegramChannel string  `json:"telegramChannel,omitempty"`
	CheckMembership bool    `json:"checkMembership"`
	UsersQuantity   int     `json:"usersQuantity"`
	CompletedUsers  int     `json:"completedUsers"`
	// user id -> in-flight progress, kept by the bot
	CurrentUsers datatypes.JSONType[map[string]int] `json:"currentUsers"`
	DailyLimit   int                                `json:"dailyLimit,omitempty"`
	LastReset    time.Time                          `json:"lastReset"`
	CreatedAt    time.Time                          `json:"createdAt"`
	UpdatedAt    time.Time                          `json:"updatedAt"`
}

// IsCompleted reports whether the task is closed to new users: a user cap is
// set and has been reached. A zero cap never completes.
func (t Task) IsCompleted() bool {
	return t.UsersQuantity > 0 && t.CompletedUsers >= t.UsersQuantity
}

// 2.4 Ad networks

type AdConfig struct {
	Provider    string    `gorm:"primaryKey" json:"provider"`
	Reward      float64   `json:"reward"`
	DailyLimit  int       `json:"dailyLimit"`
	HourlyLimit int       `json:"hourlyLimit"`
	Cooldown    int       `json:"cooldown"`
	WaitTime    int       `json:"waitTime"`
	Enabled     bool      `json:"enabled"`
	AppID       string    `json:"appId"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// 2.5 Singleton configs. Each lives in a one-row table keyed by a fixed id so
// a missing row falls back to hardcoded defaults instead of nulls.

type VPNConfig struct {
	ID          int64 `gorm:"primaryKey" json:"-"`
	VPNRequired bool  `json:"vpnRequired"`
	// lowercase canonical country names, deduped and sorted
	AllowedCountries datatypes.JSONType[[]string] `json:"allowedCountries"`
	UpdatedAt        time.Time                    `json:"updatedAt"`
}

type WalletConfig struct {
	ID                   int64     `gorm:"primaryKey" json:"-"`
	Currency             string    `json:"currency"`
	CurrencySymbol       string    `json:"currencySymbol"`
	DefaultMinWithdrawal float64   `json:"defaultMinWithdrawal"`
	MaintenanceMode      bool      `json:"maintenanceMode"`
	MaintenanceMessage   string    `json:"maintenanceMessage"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

type PaymentMethod struct {
	ID            string    `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"not null" json:"name"`
	Logo          string    `json:"logo"`
	Status        string    `gorm:"default:active" json:"status"` // active/inactive
	MinWithdrawal float64   `json:"minWithdrawal"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type SliderImage struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Alt       string `json:"alt"`
	Order     int    `json:"order"`
	CreatedAt string `json:"createdAt"`
}

type AppConfig struct {
	ID                     int64                             `gorm:"primaryKey" json:"-"`
	LogoURL                string                            `json:"logoUrl"`
	AppName                string                            `json:"appName"`
	SliderImages           datatypes.JSONType[[]SliderImage] `json:"sliderImages"`
	SupportURL             string                            `json:"supportUrl"`
	TutorialVideoID        string                            `json:"tutorialVideoId"`
	ReferralCommissionRate float64                           `json:"referralCommissionRate"` // percent, 0-100
	UpdatedAt              time.Time                         `json:"updatedAt"`
}

type BotSetting struct {
	ID        int64     `gorm:"primaryKey" json:"-"`
	Token     string    `json:"token"`
	UpdatedAt time.Time `json:"updatedAt"`
}
