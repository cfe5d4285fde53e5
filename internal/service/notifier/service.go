package notifier

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"quickearn-admin/internal/config"
	"quickearn-admin/internal/events"
	"quickearn-admin/internal/model"
	appErr "quickearn-admin/pkg/errors"
	"quickearn-admin/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

const (
	singletonID     = 1
	defaultSendRate = 25 // Telegram caps bulk sends around 30 msg/s
)

const (
	LayoutVertical   = "vertical"
	LayoutHorizontal = "horizontal"
)

type Button struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

type BroadcastParams struct {
	Message      string
	ImageURL     string
	Buttons      []Button
	ButtonLayout string
	BotToken     string
}

type BroadcastStats struct {
	TotalUsers int `json:"totalUsers"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// sender is the slice of the Telegram client the broadcaster needs; tests
// substitute it to avoid the network.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Service struct {
	db      *gorm.DB
	bus     *events.Bus
	online  atomic.Bool
	lastErr atomic.Value // string

	// connect validates a token against Telegram and returns a client for
	// it. Overridden in tests.
	connect func(token string) (sender, error)
}

func NewService(db *gorm.DB, bus *events.Bus) *Service {
	s := &Service{db: db, bus: bus}
	s.lastErr.Store("")
	s.connect = func(token string) (sender, error) {
		return tgbotapi.NewBotAPI(token)
	}
	return s
}

// Start launches the periodic health probe that validates the stored bot
// token and gates the send button. A zero interval disables it.
func (s *Service) Start(ctx context.Context) {
	interval := time.Duration(config.GlobalConfig.Telegram.HealthInterval) * time.Second
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		s.probe(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.probe(ctx)
			}
		}
	}()
}

func (s *Service) probe(ctx context.Context) {
	token, err := s.GetToken(ctx)
	if err != nil || token == "" {
		s.online.Store(false)
		s.lastErr.Store("bot token not configured")
		return
	}
	if _, err := s.connect(token); err != nil {
		s.online.Store(false)
		s.lastErr.Store(err.Error())
		logger.Log.Warn("telegram health probe failed", zap.Error(err))
		return
	}
	s.online.Store(true)
	s.lastErr.Store("")
}

type Health struct {
	Online bool   `json:"online"`
	Error  string `json:"error,omitempty"`
}

func (s *Service) Health() Health {
	errStr, _ := s.lastErr.Load().(string)
	return Health{Online: s.online.Load(), Error: errStr}
}

func (s *Service) GetToken(ctx context.Context) (string, error) {
	var setting model.BotSetting
	if err := s.db.WithContext(ctx).First(&setting, singletonID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", nil
		}
		return "", err
	}
	return setting.Token, nil
}

func (s *Service) SaveToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return appErr.ErrBotTokenEmpty
	}
	setting := model.BotSetting{ID: singletonID, Token: token}
	if err := s.db.WithContext(ctx).Save(&setting).Error; err != nil {
		return err
	}
	s.bus.Publish(ctx, "botToken", events.ActionWrite)
	return nil
}

// Validate performs the credential check alone, without sending anything.
func (s *Service) Validate(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return appErr.ErrBotTokenEmpty
	}
	if _, err := s.connect(token); err != nil {
		return appErr.ErrBotTokenInvalid
	}
	return nil
}

// Broadcast validates the credential, then fans the composed message out to
// every known user under a rate limit. The context bounds the whole fan-out;
// cancellation stops mid-run and the stats cover what was attempted.
func (s *Service) Broadcast(ctx context.Context, params BroadcastParams) (*BroadcastStats, error) {
	if strings.TrimSpace(params.Message) == "" && strings.TrimSpace(params.ImageURL) == "" {
		return nil, appErr.ErrEmptyBroadcast
	}
	token := strings.TrimSpace(params.BotToken)
	if token == "" {
		return nil, appErr.ErrBotTokenEmpty
	}
	if !s.online.Load() {
		return nil, appErr.ErrNotifierOffline
	}

	bot, err := s.connect(token)
	if err != nil {
		return nil, appErr.ErrBotTokenInvalid
	}

	var users []model.User
	if err := s.db.WithContext(ctx).Select("telegram_id").Find(&users).Error; err != nil {
		return nil, err
	}

	sendRate := config.GlobalConfig.Telegram.SendRate
	if sendRate <= 0 {
		sendRate = defaultSendRate
	}
	limiter := rate.NewLimiter(rate.Limit(sendRate), 1)

	keyboard := BuildKeyboard(params.Buttons, params.ButtonLayout)
	stats := &BroadcastStats{TotalUsers: len(users)}
	for _, u := range users {
		if err := limiter.Wait(ctx); err != nil {
			return stats, err
		}
		if err := s.sendTo(bot, u.TelegramID, params, keyboard); err != nil {
			stats.Failed++
			continue
		}
		stats.Successful++
	}

	logger.Log.Info("broadcast finished",
		zap.Int("totalUsers", stats.TotalUsers),
		zap.Int("successful", stats.Successful),
		zap.Int("failed", stats.Failed))
	return stats, nil
}

func (s *Service) sendTo(bot sender, chatID int64, params BroadcastParams, keyboard *tgbotapi.InlineKeyboardMarkup) error {
	var msg tgbotapi.Chattable
	if params.ImageURL != "" {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(params.ImageURL))
		photo.Caption = params.Message
		if keyboard != nil {
			photo.ReplyMarkup = keyboard
		}
		msg = photo
	} else {
		text := tgbotapi.NewMessage(chatID, params.Message)
		if keyboard != nil {
			text.ReplyMarkup = keyboard
		}
		msg = text
	}
	_, err := bot.Send(msg)
	return err
}

// NotifyUser sends a plain text message to one user with the stored token.
// Used for withdrawal decision notices.
func (s *Service) NotifyUser(ctx context.Context, telegramID int64, text string) error {
	token, err := s.GetToken(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		return appErr.ErrBotTokenEmpty
	}
	bot, err := s.connect(token)
	if err != nil {
		return appErr.ErrBotTokenInvalid
	}
	_, err = bot.Send(tgbotapi.NewMessage(telegramID, text))
	return err
}

// BuildKeyboard lays labeled link buttons out as an inline keyboard:
// vertical puts one button per row, horizontal puts them all on one row.
// Buttons missing a label or url are dropped. Returns nil when nothing
// remains.
func BuildKeyboard(buttons []Button, layout string) *tgbotapi.InlineKeyboardMarkup {
	valid := make([]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, b := range buttons {
		if strings.TrimSpace(b.Text) == "" || strings.TrimSpace(b.URL) == "" {
			continue
		}
		valid = append(valid, tgbotapi.NewInlineKeyboardButtonURL(b.Text, b.URL))
	}
	if len(valid) == 0 {
		return nil
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	if layout == LayoutHorizontal {
		rows = [][]tgbotapi.InlineKeyboardButton{valid}
	} else {
		for _, b := range valid {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(b))
		}
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}
