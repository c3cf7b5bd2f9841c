package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pressly/goose/v3"
	"gorm.io/gorm"

	"github.com/antrian-kiosk/antrian/internal/infrastructure/persistence/models"
	"github.com/antrian-kiosk/antrian/internal/shared/logger"
)

//go:embed scripts
var scriptsFS embed.FS

// Strategy names accepted in migration.strategy.
const (
	StrategyGoose         = "goose"
	StrategyGolangMigrate = "golang-migrate"
	StrategyAuto          = "auto"
)

// SQL dialects.
const (
	DialectMySQL  = "mysql"
	DialectSQLite = "sqlite3"
)

// Strategy defines the interface for different migration strategies
type Strategy interface {
	// Up applies every pending migration.
	Up(db *gorm.DB) error
	// Down reverts the last steps migrations.
	Down(db *gorm.DB, steps int) error
	// Version returns the applied version and whether it is dirty.
	Version(db *gorm.DB) (int64, bool, error)
	GetName() string
}

// NewStrategy returns the named strategy for the dialect.
func NewStrategy(name, dialect string, log logger.Interface) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", StrategyGoose:
		return &GooseStrategy{dialect: dialect, logger: log.With("component", "migration.goose")}, nil
	case StrategyGolangMigrate:
		if dialect != DialectMySQL {
			return nil, fmt.Errorf("golang-migrate strategy supports mysql only, got %s", dialect)
		}
		return &GolangMigrateStrategy{logger: log.With("component", "migration.golang-migrate")}, nil
	case StrategyAuto:
		return &GormAutoMigrateStrategy{logger: log.With("component", "migration.auto")}, nil
	default:
		return nil, fmt.Errorf("unknown migration strategy %q", name)
	}
}

// GooseStrategy applies the embedded goose scripts for its dialect.
type GooseStrategy struct {
	dialect string
	logger  logger.Interface
}

// goose keeps dialect and base FS in package state.
var gooseMu sync.Mutex

func (s *GooseStrategy) dir() string {
	return "scripts/goose/" + s.dialect
}

func (s *GooseStrategy) with(db *gorm.DB, fn func(sqlDB *sql.DB) error) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(scriptsFS)
	if err := goose.SetDialect(s.dialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return fn(sqlDB)
}

func (s *GooseStrategy) Up(db *gorm.DB) error {
	s.logger.Infow("starting goose migration", "dialect", s.dialect)

	return s.with(db, func(sqlDB *sql.DB) error {
		currentVersion, err := goose.GetDBVersion(sqlDB)
		if err != nil {
			return fmt.Errorf("failed to get current version: %w", err)
		}

		if err := goose.Up(sqlDB, s.dir()); err != nil {
			s.logger.Errorw("migration failed", "error", err)
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		finalVersion, err := goose.GetDBVersion(sqlDB)
		if err != nil {
			return fmt.Errorf("failed to get final version: %w", err)
		}

		s.logger.Infow("migration completed successfully",
			"from_version", currentVersion,
			"to_version", finalVersion)
		return nil
	})
}

func (s *GooseStrategy) Down(db *gorm.DB, steps int) error {
	s.logger.Infow("starting down migration", "steps", steps)

	return s.with(db, func(sqlDB *sql.DB) error {
		for i := 0; i < steps; i++ {
			if err := goose.Down(sqlDB, s.dir()); err != nil {
				s.logger.Errorw("down migration failed", "error", err)
				return fmt.Errorf("failed to run down migration: %w", err)
			}
		}
		s.logger.Infow("down migration completed successfully")
		return nil
	})
}

func (s *GooseStrategy) Version(db *gorm.DB) (int64, bool, error) {
	var version int64
	err := s.with(db, func(sqlDB *sql.DB) error {
		v, err := goose.GetDBVersion(sqlDB)
		version = v
		return err
	})
	if err != nil {
		return 0, false, fmt.Errorf("failed to get version: %w", err)
	}
	return version, false, nil
}

func (s *GooseStrategy) GetName() string {
	return StrategyGoose
}

// GolangMigrateStrategy applies the embedded golang-migrate scripts to MySQL.
type GolangMigrateStrategy struct {
	logger logger.Interface
}

func (s *GolangMigrateStrategy) instance(db *gorm.DB) (*migrate.Migrate, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	src, err := iofs.New(scriptsFS, "scripts/migrate")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded scripts: %w", err)
	}

	driver, err := mysql.WithInstance(sqlDB, &mysql.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create MySQL driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, DialectMySQL, driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

func (s *GolangMigrateStrategy) Up(db *gorm.DB) error {
	m, err := s.instance(db)
	if err != nil {
		return err
	}
	defer m.Close()

	currentVersion, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}
	if dirty {
		s.logger.Warnw("database is in dirty state, please fix manually")
		return fmt.Errorf("database is in dirty state at version %d", currentVersion)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		s.logger.Errorw("migration failed", "error", err)
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	finalVersion, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get final migration version: %w", err)
	}

	s.logger.Infow("migration completed successfully",
		"from_version", currentVersion,
		"to_version", finalVersion)
	return nil
}

func (s *GolangMigrateStrategy) Down(db *gorm.DB, steps int) error {
	m, err := s.instance(db)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		s.logger.Errorw("down migration failed", "error", err)
		return fmt.Errorf("failed to run down migrations: %w", err)
	}
	return nil
}

func (s *GolangMigrateStrategy) Version(db *gorm.DB) (int64, bool, error) {
	m, err := s.instance(db)
	if err != nil {
		return 0, false, err
	}
	defer m.Close()

	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return int64(v), dirty, err
}

func (s *GolangMigrateStrategy) GetName() string {
	return StrategyGolangMigrate
}

// GormAutoMigrateStrategy creates the schema from the models. It has no
// version history; Down drops the ledger table.
type GormAutoMigrateStrategy struct {
	logger logger.Interface
}

func (s *GormAutoMigrateStrategy) Up(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.LedgerRowModel{}); err != nil {
		return fmt.Errorf("failed to auto migrate: %w", err)
	}
	s.logger.Infow("auto migration completed")
	return nil
}

func (s *GormAutoMigrateStrategy) Down(db *gorm.DB, _ int) error {
	return db.Migrator().DropTable(&models.LedgerRowModel{})
}

func (s *GormAutoMigrateStrategy) Version(db *gorm.DB) (int64, bool, error) {
	if db.Migrator().HasTable(&models.LedgerRowModel{}) {
		return 1, false, nil
	}
	return 0, false, nil
}

func (s *GormAutoMigrateStrategy) GetName() string {
	return StrategyAuto
}
