package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"pedant-server/pkg/config"
)

const Version = "1.0.0"

// HealthCheck - проверка зависимостей для /api/health; ошибка переводит статус в degraded.
type HealthCheck func(ctx context.Context) error

type SystemController struct {
	cfg    *config.Config
	checks map[string]HealthCheck
	clock  func() time.Time
	logger *zap.Logger
}

func NewSystemController(cfg *config.Config, checks map[string]HealthCheck, logger *zap.Logger) *SystemController {
	return &SystemController{
		cfg:    cfg,
		checks: checks,
		clock:  func() time.Time { return time.Now().UTC() },
		logger: logger,
	}
}

func (c *SystemController) Root(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]interface{}{
		"message":  "Pedant Server is running",
		"version":  Version,
		"api_base": c.cfg.PublicAPIBase(),
		"endpoints": map[string]string{
			"health":  "/api/health",
			"config":  "/config.json",
			"metrics": "/metrics",
		},
	})
}

func (c *SystemController) Health(ctx echo.Context) error {
	reqCtx, cancel := context.WithTimeout(ctx.Request().Context(), 3*time.Second)
	defer cancel()

	status := "ok"
	code := http.StatusOK
	deps := make(map[string]string, len(c.checks))
	for name, check := range c.checks {
		if err := check(reqCtx); err != nil {
			c.logger.Warn("Health: зависимость недоступна", zap.String("dependency", name), zap.Error(err))
			deps[name] = err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	ctx.Response().Header().Set("Cache-Control", "no-cache")
	return ctx.JSON(code, map[string]interface{}{
		"status":       status,
		"version":      Version,
		"environment":  c.cfg.Server.NodeEnv,
		"timestamp":    c.clock().Format(time.RFC3339),
		"api_base":     c.cfg.PublicAPIBase(),
		"dependencies": deps,
	})
}

// RuntimeConfig - конфиг для фронтенда; API_BASE всегда ровно с одним /api.
func (c *SystemController) RuntimeConfig(ctx echo.Context) error {
	h := ctx.Response().Header()
	h.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	h.Set("Pragma", "no-cache")
	h.Set("Expires", "0")
	return ctx.JSON(http.StatusOK, map[string]string{
		"API_BASE": c.cfg.PublicAPIBase(),
		"NODE_ENV": c.cfg.Server.NodeEnv,
	})
}
