package ledger

import (
	"strings"

	"github.com/antrian-kiosk/antrian/internal/shared/config"
	"github.com/antrian-kiosk/antrian/internal/shared/utils"
)

type sheetsSettings struct {
	StoreID             string `setting:"ledger.store_id" validate:"required"`
	ServiceAccountEmail string `setting:"ledger.sheets.service_account_email" validate:"required"`
	PrivateKey          string `setting:"ledger.sheets.private_key" validate:"required"`
}

type mysqlSettings struct {
	Host     string `setting:"database.host" validate:"required"`
	Username string `setting:"database.username" validate:"required"`
	Database string `setting:"database.database" validate:"required"`
}

type storeSettings struct {
	StoreID string `setting:"ledger.store_id" validate:"required"`
}

type redisSettings struct {
	StoreID string `setting:"ledger.store_id" validate:"required"`
	Host    string `setting:"redis.host" validate:"required"`
}

type unknownDriver struct {
	Driver string `setting:"ledger.driver" validate:"oneof=sheets mysql sqlite redis pebble memory"`
}

// Settings reports which required settings the selected driver lacks. The
// use cases consult it before every ledger call.
type Settings struct {
	missing []string
}

// NewSettings evaluates the driver's requirements once; configuration is
// immutable after startup.
func NewSettings(ledgerCfg config.LedgerConfig, dbCfg config.DatabaseConfig, redisCfg config.RedisConfig) *Settings {
	t := strings.TrimSpace
	var required interface{}

	switch driverName(ledgerCfg) {
	case config.LedgerDriverSheets:
		required = sheetsSettings{
			StoreID:             t(ledgerCfg.StoreID),
			ServiceAccountEmail: t(ledgerCfg.Sheets.ServiceAccountEmail),
			PrivateKey:          t(ledgerCfg.Sheets.PrivateKey),
		}
	case config.LedgerDriverMySQL:
		required = mysqlSettings{Host: t(dbCfg.Host), Username: t(dbCfg.Username), Database: t(dbCfg.Database)}
	case config.LedgerDriverSQLite, config.LedgerDriverPebble:
		required = storeSettings{StoreID: t(ledgerCfg.StoreID)}
	case config.LedgerDriverRedis:
		required = redisSettings{StoreID: t(ledgerCfg.StoreID), Host: t(redisCfg.Host)}
	case config.LedgerDriverMemory:
		return &Settings{}
	default:
		required = unknownDriver{Driver: ledgerCfg.Driver}
	}

	return &Settings{missing: utils.MissingSettings(required)}
}

// MissingSettings returns the dotted keys of the absent settings.
func (s *Settings) MissingSettings() []string {
	return s.missing
}

// Complete reports whether the ledger may be opened.
func (s *Settings) Complete() bool {
	return len(s.missing) == 0
}

func driverName(cfg config.LedgerConfig) string {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" {
		return config.LedgerDriverSheets
	}
	return driver
}
