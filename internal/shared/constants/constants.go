package constants

const (
	// Environment constants
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	// HTTP Headers
	HeaderContentType   = "Content-Type"
	HeaderXRequestID    = "X-Request-ID"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderUserAgent     = "User-Agent"

	ContentTypeJSON = "application/json"

	// Context keys
	ContextKeyRequestID = "request_id"

	// Database table names
	TableLedgerRows = "ledger_rows"

	// Kiosk modes
	KioskModeAuto   = "auto"
	KioskModeManual = "manual"

	ErrMsgInternalServerError = "Internal server error occurred"
	ErrMsgTooManyRequests     = "Too many requests, please slow down"
)
