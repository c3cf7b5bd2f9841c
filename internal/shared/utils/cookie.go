package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/antrian-kiosk/antrian/internal/shared/config"
)

// DefaultTicketCookie remembers the last ticket a browser submitted.
const DefaultTicketCookie = "patient_ticket"

func ticketCookieName(cfg config.SessionConfig) string {
	if cfg.CookieName == "" {
		return DefaultTicketCookie
	}
	return cfg.CookieName
}

// SetTicketCookie stores the submitted number for cfg.TTLSeconds. The cookie
// is readable by page scripts; it is a display hint and carries no authority.
func SetTicketCookie(c *gin.Context, cfg config.SessionConfig, ticketNumber string) {
	c.SetSameSite(parseSameSite(cfg.SameSite))
	c.SetCookie(
		ticketCookieName(cfg),
		ticketNumber,
		cfg.TTLSeconds,
		cfg.Path,
		cfg.Domain,
		cfg.Secure,
		false,
	)
}

// ClearTicketCookie removes the session cookie on user reset.
func ClearTicketCookie(c *gin.Context, cfg config.SessionConfig) {
	c.SetSameSite(parseSameSite(cfg.SameSite))
	c.SetCookie(
		ticketCookieName(cfg),
		"",
		-1,
		cfg.Path,
		cfg.Domain,
		cfg.Secure,
		false,
	)
}

// GetTicketCookie returns the remembered number, if any.
func GetTicketCookie(c *gin.Context, cfg config.SessionConfig) (string, bool) {
	value, err := c.Cookie(ticketCookieName(cfg))
	if err != nil || value == "" {
		return "", false
	}
	return value, true
}

// parseSameSite converts string to http.SameSite
func parseSameSite(sameSite string) http.SameSite {
	switch sameSite {
	case "Strict":
		return http.SameSiteStrictMode
	case "Lax":
		return http.SameSiteLaxMode
	case "None":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
