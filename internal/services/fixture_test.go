package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pedant-server/internal/dto"
	"pedant-server/internal/entities"
	"pedant-server/internal/repositories"
	"pedant-server/pkg/contextkeys"
	"pedant-server/pkg/customvalidator"
	"pedant-server/pkg/eventbus"
	"pedant-server/pkg/filestorage"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	t       *testing.T
	now     time.Time
	bus     *eventbus.Bus
	uploads string

	store      *repositories.MemoryStore
	users      repositories.UserRepositoryInterface
	services   repositories.ServiceRepositoryInterface
	employees  repositories.EmployeeRepositoryInterface
	orders     repositories.OrderRepositoryInterface
	queue      repositories.HiringQueueRepositoryInterface
	activities repositories.HiringActivityRepositoryInterface
	settings   repositories.SettingsRepositoryInterface
	tx         repositories.TxManagerInterface

	userSvc     UserServiceInterface
	registry    ServiceRegistryInterface
	employeeSvc EmployeeServiceInterface
	hiring      HiringQueueServiceInterface
	orderSvc    OrderServiceInterface
	reports     ReportServiceInterface
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zap.NewNop()
	v := customvalidator.New()

	f := &fixture{t: t, now: baseTime, bus: eventbus.New(logger)}
	f.store = repositories.NewMemoryStore(logger)
	f.users = repositories.NewUserRepository(f.store, v, logger)
	f.services = repositories.NewServiceRepository(f.store, v, logger)
	f.employees = repositories.NewEmployeeRepository(f.store, v, logger)
	f.orders = repositories.NewOrderRepository(f.store, v, logger)
	f.queue = repositories.NewHiringQueueRepository(f.store, v, logger)
	f.activities = repositories.NewHiringActivityRepository(f.store, v)
	f.settings = repositories.NewSettingsRepository(f.store, v)
	f.tx = repositories.NewTxManager(f.store)

	f.uploads = t.TempDir()
	storage, err := filestorage.NewLocalFileStorage(f.uploads)
	require.NoError(t, err)

	f.userSvc = NewUserService(f.users, f.employees, f.tx, f.clock, logger)
	f.registry = NewServiceRegistry(f.services, f.users, f.employees, f.tx, f.clock, logger)
	f.employeeSvc = NewEmployeeService(f.employees, f.users, f.services, f.tx, f.bus, f.clock, logger)
	f.hiring = NewHiringQueueService(f.queue, f.activities, f.users, f.services, f.employeeSvc, f.tx, f.bus, nil, f.clock, logger)
	f.orderSvc = NewOrderService(f.orders, f.users, f.services, f.employees, f.tx, storage, nil, f.clock, logger)
	f.reports = NewReportService(f.orders, f.services, f.users, f.employees, f.clock, logger)
	return f
}

func (f *fixture) clock() time.Time { return f.now }

func (f *fixture) advance(d time.Duration) { f.now = f.now.Add(d) }

// as - контекст запроса от имени пользователя.
func as(userID uint64) context.Context {
	return context.WithValue(context.Background(), contextkeys.UserIDKey, userID)
}

func (f *fixture) user(id uint64, name string) *entities.User {
	f.t.Helper()
	u, err := f.userSvc.CreateOrUpdateUser(context.Background(), dto.TelegramProfileDTO{ID: id, FirstName: name, LanguageCode: "ru"})
	require.NoError(f.t, err)
	return u
}

func (f *fixture) admin(id uint64) *entities.User {
	f.t.Helper()
	u := f.user(id, "Админ")
	u.Role = entities.UserRoleAdmin
	require.NoError(f.t, f.users.SaveUser(context.Background(), u))
	return u
}

func (f *fixture) service(ownerID uint64, number string) *entities.Service {
	f.t.Helper()
	svc, err := f.registry.CreateService(as(ownerID), dto.CreateServiceDTO{ServiceNumber: number, Name: "Сервис " + number})
	require.NoError(f.t, err)
	return svc
}

func (f *fixture) reload(id uint64) *entities.User {
	f.t.Helper()
	u, err := f.users.FindUser(context.Background(), id)
	require.NoError(f.t, err)
	return u
}
