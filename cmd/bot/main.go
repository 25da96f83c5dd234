package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"pedant-server/pkg/config"
	"pedant-server/pkg/logger"
	"pedant-server/pkg/telegram"
)

const (
	menuButtonText   = "Открыть приложение"
	shortDescription = "Открыть WebApp"
	description      = "Кнопка меню открывает приложение PedantTW"

	pollTimeoutSeconds = 30
	retryDelay         = 5 * time.Second
)

// Бот ничего не отвечает: он только настраивает кнопку меню WebApp
// и держит long polling, чтобы Telegram считал его активным.
func main() {
	cfg := config.New()
	log := logger.NewLogger(cfg.Logger).Named("bot")
	defer log.Sync()

	token := cfg.Telegram.BotToken
	if token == "" {
		token = os.Getenv("BOT_TOKEN")
	}
	if token == "" {
		log.Fatal("Не задан TELEGRAM_BOT_TOKEN")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tg := telegram.NewService(token).
		WithHTTPClient(&http.Client{Timeout: (pollTimeoutSeconds + 10) * time.Second})

	configureWebAppMenu(ctx, tg, cfg.Tunnel.ClientURL, log)

	if err := tg.DeleteWebhook(ctx); err != nil {
		log.Warn("Не удалось снять webhook", zap.Error(err))
	}

	log.Info("Бот запущен, long polling")
	poll(ctx, tg, log)
	log.Info("Бот остановлен")
}

func configureWebAppMenu(ctx context.Context, tg *telegram.Service, clientURL string, log *zap.Logger) {
	if clientURL == "" {
		log.Warn("CLOUDPUB_CLIENT_URL не задан, кнопка меню не настроена")
		return
	}
	if err := tg.SetChatMenuButton(ctx, menuButtonText, clientURL); err != nil {
		log.Warn("Не удалось установить кнопку меню", zap.Error(err))
		return
	}
	// Описания не обязательны, ошибки только в лог.
	if err := tg.SetMyShortDescription(ctx, shortDescription); err != nil {
		log.Debug("setMyShortDescription", zap.Error(err))
	}
	if err := tg.SetMyDescription(ctx, description); err != nil {
		log.Debug("setMyDescription", zap.Error(err))
	}
	log.Info("Кнопка меню WebApp установлена", zap.String("url", clientURL))
}

func poll(ctx context.Context, tg *telegram.Service, log *zap.Logger) {
	var offset int64
	for {
		updates, err := tg.GetUpdates(ctx, offset, pollTimeoutSeconds)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			log.Warn("getUpdates", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(retryDelay):
			}
			continue
		}
		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
		}
	}
}
