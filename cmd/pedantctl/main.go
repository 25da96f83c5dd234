package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pedant-server/internal/dto"
	"pedant-server/internal/infrastructure/storage"
	"pedant-server/internal/repositories"
	"pedant-server/internal/services"
	"pedant-server/migrations"
	"pedant-server/pkg/config"
	"pedant-server/pkg/customvalidator"
	"pedant-server/pkg/database/postgresql"
	"pedant-server/pkg/logger"
	"pedant-server/pkg/utils"
	"pedant-server/seeders"
)

var (
	cfg *config.Config
	log *zap.Logger

	adminFirstName string
	adminUsername  string
	withDemo       bool

	rootCmd = &cobra.Command{
		Use:   "pedantctl",
		Short: "Обслуживание сервера Pedant: миграции, начальные данные, роли",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg = config.New()
			log = logger.NewLogger(cfg.Logger).Named("pedantctl")
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = log.Sync()
		},
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Миграции PostgreSQL (goose)",
	}

	migrateUpCmd = &cobra.Command{
		Use:   "up",
		Short: "Применить все новые миграции",
		RunE:  withPool(migrations.Up),
	}

	migrateDownCmd = &cobra.Command{
		Use:   "down",
		Short: "Откатить последнюю миграцию",
		RunE:  withPool(migrations.Down),
	}

	migrateStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "Показать состояние миграций",
		RunE:  withPool(migrations.Status),
	}

	seedCmd = &cobra.Command{
		Use:   "seed <telegram-id>",
		Short: "Создать администратора и, по флагу --demo, демонстрационные сервисы",
		Args:  cobra.ExactArgs(1),
		RunE:  runSeed,
	}

	promoteCmd = &cobra.Command{
		Use:   "promote <telegram-id> <admin|moderator|user>",
		Short: "Назначить пользователю роль",
		Args:  cobra.ExactArgs(2),
		RunE:  runPromote,
	}
)

func init() {
	seedCmd.Flags().StringVar(&adminFirstName, "first-name", "Администратор", "имя администратора")
	seedCmd.Flags().StringVar(&adminUsername, "username", "", "username администратора в Telegram")
	seedCmd.Flags().BoolVar(&withDemo, "demo", false, "создать демонстрационные сервисы")

	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
	rootCmd.AddCommand(migrateCmd, seedCmd, promoteCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func withPool(fn func(ctx context.Context, pool *pgxpool.Pool) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		pool, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, log)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := fn(ctx, pool); err != nil {
			return err
		}
		log.Info("Команда миграций выполнена", zap.String("command", cmd.Name()))
		return nil
	}
}

func newSeeder(ctx context.Context) (*seeders.Seeder, func(), error) {
	handle, err := storage.Open(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	v := customvalidator.New()
	clock := utils.Clock(utils.SystemClock)

	users := repositories.NewUserRepository(handle.Store, v, log)
	serviceRepo := repositories.NewServiceRepository(handle.Store, v, log)
	employees := repositories.NewEmployeeRepository(handle.Store, v, log)
	tx := repositories.NewTxManager(handle.Store)

	seeder := seeders.NewSeeder(
		services.NewUserService(users, employees, tx, clock, log),
		users,
		services.NewServiceRegistry(serviceRepo, users, employees, tx, clock, log),
		tx,
		clock,
		log,
	)
	closeFn := func() {
		if err := handle.Store.Close(); err != nil {
			log.Error("Не удалось закрыть хранилище", zap.Error(err))
		}
	}
	return seeder, closeFn, nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("некорректный telegram-id %q", args[0])
	}
	ctx := cmd.Context()
	seeder, closeFn, err := newSeeder(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	admin, err := seeder.SeedAdmin(ctx, dto.TelegramProfileDTO{ID: id, FirstName: adminFirstName, Username: adminUsername})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Администратор: %d (%s)\n", admin.ID, admin.DisplayName())

	if !withDemo {
		return nil
	}
	created, err := seeder.SeedDemo(ctx, admin.ID)
	if err != nil {
		return err
	}
	for _, s := range created {
		fmt.Fprintf(cmd.OutOrStdout(), "Сервис %s: %s\n", s.ServiceNumber, s.Name)
	}
	return nil
}

func runPromote(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("некорректный telegram-id %q", args[0])
	}
	ctx := cmd.Context()
	seeder, closeFn, err := newSeeder(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	user, err := seeder.Promote(ctx, id, args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Пользователь %d: роль %s\n", user.ID, user.Role)
	return nil
}
