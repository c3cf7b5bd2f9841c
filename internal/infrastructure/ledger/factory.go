package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/antrian-kiosk/antrian/internal/domain/ticket"
	"github.com/antrian-kiosk/antrian/internal/infrastructure/cache"
	"github.com/antrian-kiosk/antrian/internal/infrastructure/database"
	"github.com/antrian-kiosk/antrian/internal/infrastructure/persistence/models"
	"github.com/antrian-kiosk/antrian/internal/infrastructure/repository"
	"github.com/antrian-kiosk/antrian/internal/shared/config"
	"github.com/antrian-kiosk/antrian/internal/shared/logger"
)

// Deps carries what the backends may need. Redis is optional; when nil and
// the redis driver is selected a client is created from RedisConfig.
type Deps struct {
	Ledger      config.LedgerConfig
	Database    config.DatabaseConfig
	RedisConfig config.RedisConfig
	Redis       *redis.Client
}

// Handle is an opened ledger together with its settings report.
type Handle struct {
	Ledger   ticket.Ledger
	Settings *Settings
	Driver   string

	closers []func() error
}

// Close releases the resources the backend opened.
func (h *Handle) Close() error {
	var errs []error
	for i := len(h.closers) - 1; i >= 0; i-- {
		if err := h.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Open selects the backend named by ledger.driver. Incomplete settings do
// not fail: the returned handle holds a placeholder ledger and the use cases
// answer with a configuration error instead.
func Open(ctx context.Context, deps Deps, log logger.Interface) (*Handle, error) {
	driver := driverName(deps.Ledger)
	settings := NewSettings(deps.Ledger, deps.Database, deps.RedisConfig)
	h := &Handle{Settings: settings, Driver: driver}

	if !settings.Complete() {
		log.Warnw("ledger settings incomplete, ticket operations will fail",
			"driver", driver,
			"missing", settings.MissingSettings(),
		)
		h.Ledger = &unconfiguredLedger{missing: settings.MissingSettings()}
		return h, nil
	}

	switch driver {
	case config.LedgerDriverSheets:
		l, err := NewSheetsLedger(ctx, SheetsOptions{
			SpreadsheetID:       deps.Ledger.StoreID,
			Range:               deps.Ledger.Range,
			HeaderRows:          deps.Ledger.HeaderRows,
			ServiceAccountEmail: deps.Ledger.Sheets.ServiceAccountEmail,
			PrivateKey:          deps.Ledger.Sheets.PrivateKey,
			Endpoint:            deps.Ledger.Sheets.Endpoint,
		}, log.Named("sheets"))
		if err != nil {
			return nil, err
		}
		h.Ledger = l

	case config.LedgerDriverMySQL:
		gdb, err := database.OpenMySQL(&deps.Database)
		if err != nil {
			return nil, err
		}
		h.addCloser(func() error { return closeGorm(gdb) })
		h.Ledger = repository.NewLedgerRepository(gdb)

	case config.LedgerDriverSQLite:
		gdb, err := database.OpenSQLite(deps.Ledger.StoreID)
		if err != nil {
			return nil, err
		}
		h.addCloser(func() error { return closeGorm(gdb) })
		if err := gdb.AutoMigrate(&models.LedgerRowModel{}); err != nil {
			_ = h.Close()
			return nil, fmt.Errorf("migrate sqlite ledger: %w", err)
		}
		h.Ledger = repository.NewLedgerRepository(gdb)

	case config.LedgerDriverRedis:
		client := deps.Redis
		if client == nil {
			c, err := cache.NewRedisClient(ctx, deps.RedisConfig)
			if err != nil {
				return nil, err
			}
			client = c
			h.addCloser(c.Close)
		}
		h.Ledger = NewRedisLedger(client, deps.Ledger.StoreID)

	case config.LedgerDriverPebble:
		l, err := OpenPebbleLedger(deps.Ledger.StoreID)
		if err != nil {
			return nil, err
		}
		h.addCloser(l.Close)
		h.Ledger = l

	case config.LedgerDriverMemory:
		h.Ledger = NewMemoryLedger(deps.Ledger.StoreID)

	default:
		return nil, fmt.Errorf("unknown ledger driver %q", driver)
	}

	_, versioned := h.Ledger.(ticket.VersionedAppender)
	log.Infow("ledger opened", "driver", driver, "versioned_append", versioned)
	return h, nil
}

func (h *Handle) addCloser(fn func() error) {
	h.closers = append(h.closers, fn)
}

func closeGorm(gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
