// Файл: internal/services/notification_service.go
package services

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"pedant-server/pkg/telegram"
)

// NotificationServiceInterface - уведомления пользователю в личный чат с ботом.
// ID пользователя совпадает с его chat_id в Telegram.
type NotificationServiceInterface interface {
	Notify(ctx context.Context, userID uint64, text string) error
	NotifyWithWebApp(ctx context.Context, userID uint64, text, buttonText, url string) error
}

type telegramNotificationService struct {
	tg     *telegram.Service
	logger *zap.Logger
}

// NewTelegramNotificationService шлёт сообщения через Bot API.
func NewTelegramNotificationService(tg *telegram.Service, logger *zap.Logger) NotificationServiceInterface {
	return &telegramNotificationService{tg: tg, logger: logger}
}

func (s *telegramNotificationService) Notify(ctx context.Context, userID uint64, text string) error {
	chatID, err := chatIDFromUser(userID)
	if err != nil {
		return err
	}
	return s.tg.SendMessage(ctx, chatID, text)
}

func (s *telegramNotificationService) NotifyWithWebApp(ctx context.Context, userID uint64, text, buttonText, url string) error {
	chatID, err := chatIDFromUser(userID)
	if err != nil {
		return err
	}
	opts := []telegram.MessageOption{telegram.WithMarkdownV2()}
	if url != "" {
		opts = append(opts, telegram.WithKeyboard([][]telegram.InlineKeyboardButton{
			{{Text: buttonText, WebApp: &telegram.WebAppInfo{URL: url}}},
		}))
	}
	return s.tg.SendMessageEx(ctx, chatID, telegram.EscapeTextForMarkdownV2(text), opts...)
}

func chatIDFromUser(userID uint64) (int64, error) {
	return strconv.ParseInt(strconv.FormatUint(userID, 10), 10, 64)
}

// logNotificationService - заглушка: пишет в лог вместо отправки.
// Используется, когда токен бота не задан или уведомления выключены.
type logNotificationService struct {
	logger *zap.Logger
}

func NewLogNotificationService(logger *zap.Logger) NotificationServiceInterface {
	return &logNotificationService{logger: logger}
}

func (s *logNotificationService) Notify(ctx context.Context, userID uint64, text string) error {
	s.logger.Info("Уведомление (не отправлено)", zap.Uint64("userID", userID), zap.String("text", text))
	return nil
}

func (s *logNotificationService) NotifyWithWebApp(ctx context.Context, userID uint64, text, buttonText, url string) error {
	s.logger.Info("Уведомление (не отправлено)",
		zap.Uint64("userID", userID),
		zap.String("text", text),
		zap.String("webApp", url),
	)
	return nil
}
