package routes

import (
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"pedant-server/internal/controllers"
	apperrors "pedant-server/pkg/errors"
	"pedant-server/pkg/middleware"
	"pedant-server/pkg/utils"
)

// InitRouter подключает middleware и все маршруты приложения.
func InitRouter(e *echo.Echo, deps *Dependencies, repos *Repositories, svc *Services) {
	l := deps.Loggers
	l.Main.Info("InitRouter: Начало создания маршрутов")

	e.Validator = utils.NewValidator(deps.Validate)
	setupMiddleware(e, deps)

	authMW := middleware.NewAuthMiddleware(deps.JWT, repos.Users, deps.Config.Telegram.AllowUnsigned, l.Auth)
	guards := middleware.NewGuards(repos.Employees, l.Auth)

	api := e.Group("/api")
	secureGroup := api.Group("", authMW.Auth, guards.RequireAuthentication)

	runSystemRouter(e, api, controllers.NewSystemController(deps.Config, deps.HealthChecks, l.Main), deps)
	runAuthRouter(api, secureGroup, controllers.NewAuthController(svc.Auth, l.Auth))
	runUserRouter(secureGroup, controllers.NewUserController(svc.Users, l.User), guards)
	runServiceRouter(secureGroup, controllers.NewServiceController(svc.Registry, svc.Orders, l.Service), guards)
	runEmployeeRouter(secureGroup, controllers.NewEmployeeController(svc.Employees, l.Service))
	runHiringRouter(secureGroup, controllers.NewHiringController(svc.Hiring, l.Hiring))
	runOrderRouter(secureGroup, controllers.NewOrderController(svc.Orders, l.Order))
	runReportRouter(secureGroup, controllers.NewReportController(svc.Reports, l.Order), guards)
	runSettingsRouter(secureGroup, controllers.NewSettingsController(svc.Settings, l.User))

	if deps.Hub != nil {
		ws := controllers.NewWebSocketController(deps.Hub, deps.JWT, deps.Config.Server.CORSOrigins, l.Main)
		api.GET("/ws", ws.ServeWs)
	}

	l.Main.Info("InitRouter: Создание маршрутов завершено", zap.Int("routes", len(e.Routes())))
}

func setupMiddleware(e *echo.Echo, deps *Dependencies) {
	logger := deps.Loggers.Main

	e.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("Паника при обработке запроса",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				httpErr := apperrors.NewHttpError(http.StatusInternalServerError, "Внутренняя ошибка сервера", err, nil)
				_ = utils.ErrorResponse(c, httpErr, logger)
			}
			return err
		},
	}))
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(deps.Loggers.Main.Named("http")))

	origins := deps.Config.Server.CORSOrigins
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOriginFunc: func(origin string) (bool, error) {
			for _, o := range origins {
				if o == "*" || o == origin {
					return true, nil
				}
			}
			return false, nil
		},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization,
			middleware.TelegramUserHeader,
		},
		AllowCredentials: true,
		ExposeHeaders:    []string{echo.HeaderContentDisposition},
	}))

	if deps.Metrics != nil {
		e.Use(deps.Metrics.Middleware())
	}
}

func runSystemRouter(e *echo.Echo, api *echo.Group, ctrl *controllers.SystemController, deps *Dependencies) {
	e.GET("/", ctrl.Root)
	e.GET("/config.json", ctrl.RuntimeConfig)
	api.GET("/health", ctrl.Health)

	if deps.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(deps.Metrics.Handler()))
	}

	uploads, err := filepath.Abs(deps.Config.Server.UploadsDir)
	if err != nil {
		deps.Loggers.Main.Warn("Каталог загрузок недоступен, /uploads не подключён", zap.Error(err))
		return
	}
	e.Static("/uploads", uploads)
}
