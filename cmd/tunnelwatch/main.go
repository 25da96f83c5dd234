package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/docker/docker/client"
	"go.uber.org/zap"

	"pedant-server/internal/tunnelwatch"
	"pedant-server/pkg/config"
	"pedant-server/pkg/logger"
)

func main() {
	cfg := config.New()
	log := logger.NewLogger(cfg.Logger).Named("tunnelwatch")
	defer log.Sync()

	envPath := os.Getenv("ENV_PATH")
	if envPath == "" {
		envPath = "/workspace/.env"
	}

	docker, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		log.Fatal("Не удалось подключиться к Docker", zap.Error(err))
	}
	defer docker.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Наблюдение за туннелями запущено", zap.String("env", envPath))
	watcher := tunnelwatch.NewWatcher(docker, tunnelwatch.NewEnvFile(envPath), tunnelwatch.DefaultInterval, log)
	watcher.Run(ctx)
	log.Info("Наблюдение остановлено")
}
