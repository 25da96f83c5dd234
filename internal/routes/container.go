package routes

import (
	"github.com/go-playground/validator/v10"

	"pedant-server/internal/controllers"
	"pedant-server/internal/repositories"
	"pedant-server/internal/services"
	"pedant-server/pkg/config"
	"pedant-server/pkg/eventbus"
	"pedant-server/pkg/filestorage"
	"pedant-server/pkg/logger"
	"pedant-server/pkg/metrics"
	"pedant-server/pkg/service"
	"pedant-server/pkg/utils"
	appwebsocket "pedant-server/pkg/websocket"
)

// Dependencies - инфраструктура, собранная в main. Metrics и Hub могут быть nil.
type Dependencies struct {
	Config       *config.Config
	Store        repositories.DocumentStore
	Cache        repositories.CacheRepositoryInterface
	JWT          service.JWTService
	Bus          *eventbus.Bus
	Metrics      *metrics.Metrics
	Hub          *appwebsocket.Hub
	FileStorage  filestorage.FileStorageInterface
	Validate     *validator.Validate
	Clock        utils.Clock
	Loggers      *logger.Loggers
	HealthChecks map[string]controllers.HealthCheck
}

type Repositories struct {
	Users      repositories.UserRepositoryInterface
	Services   repositories.ServiceRepositoryInterface
	Employees  repositories.EmployeeRepositoryInterface
	Orders     repositories.OrderRepositoryInterface
	Queue      repositories.HiringQueueRepositoryInterface
	Activities repositories.HiringActivityRepositoryInterface
	Settings   repositories.SettingsRepositoryInterface
	Sessions   repositories.SessionRepositoryInterface
	Tx         repositories.TxManagerInterface
}

type Services struct {
	Users     services.UserServiceInterface
	Registry  services.ServiceRegistryInterface
	Employees services.EmployeeServiceInterface
	Hiring    services.HiringQueueServiceInterface
	Orders    services.OrderServiceInterface
	Reports   services.ReportServiceInterface
	Auth      services.AuthServiceInterface
	Settings  services.SettingsServiceInterface
}

func NewRepositories(deps *Dependencies) *Repositories {
	l := deps.Loggers
	return &Repositories{
		Users:      repositories.NewUserRepository(deps.Store, deps.Validate, l.User),
		Services:   repositories.NewServiceRepository(deps.Store, deps.Validate, l.Service),
		Employees:  repositories.NewEmployeeRepository(deps.Store, deps.Validate, l.Service),
		Orders:     repositories.NewOrderRepository(deps.Store, deps.Validate, l.Order),
		Queue:      repositories.NewHiringQueueRepository(deps.Store, deps.Validate, l.Hiring),
		Activities: repositories.NewHiringActivityRepository(deps.Store, deps.Validate),
		Settings:   repositories.NewSettingsRepository(deps.Store, deps.Validate),
		Sessions:   repositories.NewSessionRepository(deps.Cache),
		Tx:         repositories.NewTxManager(deps.Store),
	}
}

func NewServices(deps *Dependencies, repos *Repositories) *Services {
	l := deps.Loggers
	cfg := deps.Config

	users := services.NewUserService(repos.Users, repos.Employees, repos.Tx, deps.Clock, l.User)
	employees := services.NewEmployeeService(repos.Employees, repos.Users, repos.Services, repos.Tx, deps.Bus, deps.Clock, l.Service)

	return &Services{
		Users:     users,
		Registry:  services.NewServiceRegistry(repos.Services, repos.Users, repos.Employees, repos.Tx, deps.Clock, l.Service),
		Employees: employees,
		Hiring: services.NewHiringQueueService(
			repos.Queue, repos.Activities, repos.Users, repos.Services, employees,
			repos.Tx, deps.Bus, deps.Metrics, deps.Clock, l.Hiring,
		),
		Orders: services.NewOrderService(
			repos.Orders, repos.Users, repos.Services, repos.Employees,
			repos.Tx, deps.FileStorage, deps.Metrics, deps.Clock, l.Order,
		),
		Reports: services.NewReportService(repos.Orders, repos.Services, repos.Users, repos.Employees, deps.Clock, l.Order),
		Auth: services.NewAuthService(
			users, repos.Users, repos.Sessions, deps.JWT,
			cfg.Telegram, cfg.Redis.SessionTTL, deps.Clock, l.Auth,
		),
		Settings: services.NewSettingsService(repos.Settings, deps.Cache, repos.Tx, deps.Validate, deps.Clock, l.User),
	}
}
