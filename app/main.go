package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"pedant-server/internal/controllers"
	"pedant-server/internal/infrastructure/storage"
	"pedant-server/internal/jobs"
	"pedant-server/internal/listeners"
	"pedant-server/internal/repositories"
	"pedant-server/internal/routes"
	"pedant-server/internal/services"
	"pedant-server/pkg/config"
	"pedant-server/pkg/customvalidator"
	"pedant-server/pkg/eventbus"
	"pedant-server/pkg/filestorage"
	applogger "pedant-server/pkg/logger"
	"pedant-server/pkg/metrics"
	"pedant-server/pkg/service"
	"pedant-server/pkg/telegram"
	"pedant-server/pkg/utils"
	appwebsocket "pedant-server/pkg/websocket"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.New()
	base := applogger.NewLogger(cfg.Logger)
	defer func() { _ = base.Sync() }()
	loggers := applogger.NewLoggers(base)
	logger := loggers.Main

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Хранилище и Redis
	handle, err := storage.Open(ctx, cfg, loggers.Storage)
	if err != nil {
		logger.Fatal("Не удалось открыть хранилище", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	redisClient, closeRedis, err := storage.OpenRedis(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Fatal("Не удалось подключиться к Redis", zap.Error(err))
	}
	defer closeRedis()

	fileStorage, err := filestorage.NewLocalFileStorage(cfg.Server.UploadsDir)
	if err != nil {
		logger.Fatal("Не удалось создать файловое хранилище", zap.Error(err))
	}

	// 2. Общая инфраструктура
	var appMetrics *metrics.Metrics
	if cfg.Metrics.Enabled {
		appMetrics = metrics.New(cfg.Metrics.Namespace)
	}
	bus := eventbus.New(logger.Named("eventbus"))
	hub := appwebsocket.NewHub(logger.Named("ws"))
	go hub.Run(ctx)

	deps := &routes.Dependencies{
		Config:      cfg,
		Store:       handle.Store,
		Cache:       repositories.NewRedisCacheRepository(redisClient),
		JWT:         service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL, cfg.JWT.RefreshTokenTTL, loggers.Auth),
		Bus:         bus,
		Metrics:     appMetrics,
		Hub:         hub,
		FileStorage: fileStorage,
		Validate:    customvalidator.New(),
		Clock:       utils.SystemClock,
		Loggers:     loggers,
		HealthChecks: map[string]controllers.HealthCheck{
			"storage": handle.Ping,
			"redis":   func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		},
	}
	repos := routes.NewRepositories(deps)
	svc := routes.NewServices(deps, repos)

	// 3. Подписчики событий
	listeners.NewHiringListener(newNotifier(cfg, loggers.Hiring), repos.Users, cfg.Tunnel.ClientURL, loggers.Hiring).Register(bus)
	listeners.NewRealtimeListener(hub, logger.Named("realtime")).Register(bus)

	// 4. Фоновые задачи
	scheduler := jobs.NewScheduler(svc.Hiring, loggers.Hiring.Named("jobs"))
	if err := scheduler.Register(cfg.Jobs.HiringSweepSpec); err != nil {
		logger.Fatal("Не удалось зарегистрировать фоновые задачи", zap.Error(err))
	}
	scheduler.Start()

	// 5. HTTP
	e := echo.New()
	e.HideBanner = true
	routes.InitRouter(e, deps, repos, svc)

	go func() {
		logger.Info("🚀 Сервер запущен",
			zap.String("port", cfg.Server.Port),
			zap.String("storage", cfg.Storage.Driver),
			zap.String("env", cfg.Server.NodeEnv),
		)
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Ошибка запуска сервера", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Получен сигнал остановки, завершаем работу")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка остановки HTTP-сервера", zap.Error(err))
	}
	scheduler.Stop()
	bus.Wait()
	if err := handle.Store.Close(); err != nil {
		logger.Error("Ошибка закрытия хранилища", zap.Error(err))
	}
	logger.Info("Сервер остановлен")
}

// newNotifier: без токена бота или при TELEGRAM_NOTIFY=false уведомления только пишутся в лог.
func newNotifier(cfg *config.Config, logger *zap.Logger) services.NotificationServiceInterface {
	if !cfg.Telegram.Notify || cfg.Telegram.BotToken == "" {
		logger.Info("Уведомления в Telegram отключены")
		return services.NewLogNotificationService(logger)
	}
	return services.NewTelegramNotificationService(telegram.NewService(cfg.Telegram.BotToken), logger)
}
