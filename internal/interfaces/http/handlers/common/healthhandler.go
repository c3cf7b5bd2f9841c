package common

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/antrian-kiosk/antrian/internal/shared/version"
)

// SettingsReporter reports missing ledger settings.
type SettingsReporter interface {
	MissingSettings() []string
}

type HealthResponse struct {
	Status          string   `json:"status"`
	Version         string   `json:"version"`
	LedgerDriver    string   `json:"ledgerDriver"`
	LedgerReady     bool     `json:"ledgerReady"`
	MissingSettings []string `json:"missingSettings,omitempty"`
}

type HealthHandler struct {
	driver   string
	settings SettingsReporter
}

func NewHealthHandler(driver string, settings SettingsReporter) *HealthHandler {
	return &HealthHandler{driver: driver, settings: settings}
}

// Health handles GET /health. The server is up even when the ledger is not
// configured; ledgerReady tells the two apart.
func (h *HealthHandler) Health(c *gin.Context) {
	missing := h.settings.MissingSettings()
	c.JSON(http.StatusOK, HealthResponse{
		Status:          "ok",
		Version:         version.Get().Version,
		LedgerDriver:    h.driver,
		LedgerReady:     len(missing) == 0,
		MissingSettings: missing,
	})
}

// Version handles GET /version
func (h *HealthHandler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, version.Get())
}
