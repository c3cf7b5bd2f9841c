package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/antrian-kiosk/antrian/internal/infrastructure/config"
	"github.com/antrian-kiosk/antrian/internal/infrastructure/database"
	"github.com/antrian-kiosk/antrian/internal/infrastructure/migration"
	httpRouter "github.com/antrian-kiosk/antrian/internal/interfaces/http"
	"github.com/antrian-kiosk/antrian/internal/shared/biztime"
	sharedConfig "github.com/antrian-kiosk/antrian/internal/shared/config"
	"github.com/antrian-kiosk/antrian/internal/shared/logger"
	"github.com/antrian-kiosk/antrian/internal/shared/version"
)

var (
	env         string
	configPath  string
	autoMigrate bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the queue ticket HTTP server with the specified configuration.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Apply ledger table migrations on startup (sql drivers only)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(mapEnvToGinMode(env), configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger, cfg.Server.Mode == gin.DebugMode); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	if err := biztime.Init(cfg.Server.Timezone); err != nil {
		return fmt.Errorf("failed to initialize business timezone: %w", err)
	}

	log.Infow("starting server",
		"environment", env,
		"version", version.Get().Version,
		"ledger_driver", cfg.Ledger.Driver,
		"events_driver", cfg.Events.Driver,
		"timezone", biztime.Location().String(),
	)

	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {
	}

	if autoMigrate {
		if err := runMigrations(cfg, log); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	router, err := httpRouter.NewRouter(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}
	router.SetupRoutes()

	// WriteTimeout stays zero: /events streams for as long as the board is
	// connected. Ledger calls are bounded per request instead.
	srv := &http.Server{
		Addr:              cfg.Server.GetAddr(),
		Handler:           router.GetEngine(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infow("server starting", "address", cfg.Server.GetAddr(), "mode", cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			router.Shutdown()
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Infow("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Close SSE streams first so Shutdown does not wait on them.
	router.Shutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
		return err
	}

	log.Infow("server exited gracefully")
	return nil
}

func runMigrations(cfg *config.Config, log logger.Interface) error {
	dialect := ""
	switch cfg.Ledger.Driver {
	case sharedConfig.LedgerDriverMySQL:
		dialect = migration.DialectMySQL
	case sharedConfig.LedgerDriverSQLite:
		dialect = migration.DialectSQLite
	default:
		log.Infow("auto-migrate skipped, ledger driver has no schema", "driver", cfg.Ledger.Driver)
		return nil
	}

	if env == "production" {
		log.Warnw("auto-migration is enabled in production environment - this is not recommended!")
	}

	db, err := database.Init(cfg.Ledger.Driver, &cfg.Database, cfg.Ledger.StoreID)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	strategy, err := migration.NewStrategy(cfg.Migration.Strategy, dialect, log)
	if err != nil {
		return err
	}
	if err := strategy.Up(db); err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}
	log.Infow("auto-migration completed successfully", "strategy", strategy.GetName())
	return nil
}

func mapEnvToGinMode(environment string) string {
	switch environment {
	case "production", "prod", "release":
		return gin.ReleaseMode
	case "test", "testing":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}
