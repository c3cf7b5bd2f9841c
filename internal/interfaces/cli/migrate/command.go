package migrate

import (
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/antrian-kiosk/antrian/internal/infrastructure/config"
	"github.com/antrian-kiosk/antrian/internal/infrastructure/database"
	"github.com/antrian-kiosk/antrian/internal/infrastructure/migration"
	sharedConfig "github.com/antrian-kiosk/antrian/internal/shared/config"
	"github.com/antrian-kiosk/antrian/internal/shared/logger"
)

var (
	env        string
	configPath string
	strategy   string
	steps      int
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Ledger table migration tools",
		Long:  `Manage the ledger_rows table used by the mysql and sqlite ledger drivers.`,
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.PersistentFlags().StringVarP(&strategy, "strategy", "s", "", "Migration strategy: goose, golang-migrate or auto (default: migration.strategy)")

	cmd.AddCommand(
		newUpCommand(),
		newDownCommand(),
		newStatusCommand(),
	)

	return cmd
}

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		RunE:  runUp,
	}
}

func newDownCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Rollback migrations",
		RunE:  runDown,
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to rollback")

	return cmd
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE:  runStatus,
	}
}

// migrationEnv opens the ledger database and picks the strategy for it.
type migrationEnv struct {
	db       *gorm.DB
	strategy migration.Strategy
	log      logger.Interface
}

func initEnv() (*migrationEnv, error) {
	cfg, err := config.Load(env, configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger, false); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	dialect, err := dialectFor(cfg.Ledger.Driver)
	if err != nil {
		return nil, err
	}

	name := strategy
	if name == "" {
		name = cfg.Migration.Strategy
	}
	s, err := migration.NewStrategy(name, dialect, log)
	if err != nil {
		return nil, err
	}

	db, err := database.Init(cfg.Ledger.Driver, &cfg.Database, cfg.Ledger.StoreID)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &migrationEnv{db: db, strategy: s, log: log}, nil
}

func dialectFor(driver string) (string, error) {
	switch driver {
	case sharedConfig.LedgerDriverMySQL:
		return migration.DialectMySQL, nil
	case sharedConfig.LedgerDriverSQLite:
		return migration.DialectSQLite, nil
	default:
		return "", fmt.Errorf("ledger driver %q has no tables to migrate", driver)
	}
}

func runUp(cmd *cobra.Command, args []string) error {
	me, err := initEnv()
	if err != nil {
		return err
	}
	defer database.Close()

	me.log.Infow("running up migrations", "environment", env, "strategy", me.strategy.GetName())

	if err := me.strategy.Up(me.db); err != nil {
		me.log.Errorw("migration failed", "error", err)
		return fmt.Errorf("migration failed: %w", err)
	}

	me.log.Infow("migrations completed successfully")
	return nil
}

func runDown(cmd *cobra.Command, args []string) error {
	me, err := initEnv()
	if err != nil {
		return err
	}
	defer database.Close()

	me.log.Infow("running down migrations", "environment", env, "steps", steps)

	if err := me.strategy.Down(me.db, steps); err != nil {
		me.log.Errorw("down migration failed", "error", err)
		return fmt.Errorf("down migration failed: %w", err)
	}

	me.log.Infow("down migration completed successfully")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	me, err := initEnv()
	if err != nil {
		return err
	}
	defer database.Close()

	version, dirty, err := me.strategy.Version(me.db)
	if err != nil {
		me.log.Errorw("failed to get migration version", "error", err)
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nMigration Status:\n")
	fmt.Fprintf(out, "  Environment:     %s\n", env)
	fmt.Fprintf(out, "  Strategy:        %s\n", me.strategy.GetName())
	fmt.Fprintf(out, "  Current Version: %d\n", version)
	fmt.Fprintf(out, "  Dirty:           %t\n", dirty)
	return nil
}
