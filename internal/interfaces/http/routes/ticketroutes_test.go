package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antrian-kiosk/antrian/internal/application/ticket/usecases"
	"github.com/antrian-kiosk/antrian/internal/infrastructure/ledger"
	"github.com/antrian-kiosk/antrian/internal/infrastructure/ratelimit"
	"github.com/antrian-kiosk/antrian/internal/interfaces/http/handlers/common"
	tickethandlers "github.com/antrian-kiosk/antrian/internal/interfaces/http/handlers/ticket"
	"github.com/antrian-kiosk/antrian/internal/interfaces/http/middleware"
	"github.com/antrian-kiosk/antrian/internal/shared/config"
	"github.com/antrian-kiosk/antrian/internal/shared/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type countingLimiter struct {
	calls atomic.Int32
}

func (l *countingLimiter) Allow(context.Context, string, ...ratelimit.Window) (bool, error) {
	l.calls.Add(1)
	return true, nil
}

func (l *countingLimiter) GetCount(context.Context, string, time.Duration) (int64, error) {
	return int64(l.calls.Load()), nil
}

func (l *countingLimiter) Reset(context.Context, string) error {
	l.calls.Store(0)
	return nil
}

func newTicketEngine(t *testing.T, limiter ratelimit.RateLimiter) *gin.Engine {
	t.Helper()
	log := logger.NewNopLogger()
	l := ledger.NewMemoryLedger("test")
	policy := usecases.Policy{Timeout: time.Second}

	handler := tickethandlers.NewTicketHandler(
		usecases.NewGetLastTicketUseCase(l, nil, policy, nil, log),
		usecases.NewSubmitTicketUseCase(l, nil, nil, policy, nil, log),
		usecases.NewIssueTicketUseCase(l, nil, nil, policy, nil, log),
		usecases.NewNextTicketNumberUseCase(l, nil, policy, nil, log),
		config.SessionConfig{CookieName: "patient_ticket", TTLSeconds: 60, Path: "/"},
		log,
	)

	engine := gin.New()
	SetupTicketRoutes(engine, &TicketRouteConfig{
		TicketHandler: handler,
		FeedHandler:   &common.TicketFeedHandler{},
		RateLimiter:   middleware.NewRateLimiter(limiter, 10, time.Minute, log),
		Timeout:       time.Second,
	})
	return engine
}

func serve(t *testing.T, engine *gin.Engine, method, path, body string) map[string]interface{} {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data
}

func TestSetupTicketRoutes_EachRouteReachesItsHandler(t *testing.T) {
	limiter := &countingLimiter{}
	engine := newTicketEngine(t, limiter)

	data := serve(t, engine, http.MethodPost, "/submit-ticket", `{"ticketNumber":"0007"}`)
	assert.Equal(t, "0007", data["ticketNumber"])

	data = serve(t, engine, http.MethodPost, "/issue-ticket", "")
	assert.Equal(t, "0008", data["ticketNumber"])

	data = serve(t, engine, http.MethodGet, "/get-last-ticket", "")
	assert.EqualValues(t, 8, data["ticketNumber"])

	data = serve(t, engine, http.MethodGet, "/next-ticket-number", "")
	assert.Equal(t, "0009", data["nextTicketNumber"])

	// Only the two write routes are rate limited.
	assert.EqualValues(t, 2, limiter.calls.Load())
}

func TestSetupTicketRoutes_HandlerChains(t *testing.T) {
	engine := newTicketEngine(t, &countingLimiter{})

	want := map[string]string{
		"GET /get-last-ticket":    ".GetLastTicket",
		"GET /next-ticket-number": ".NextTicketNumber",
		"POST /submit-ticket":     ".SubmitTicket",
		"POST /issue-ticket":      ".IssueTicket",
		"GET /session":            ".GetSession",
		"DELETE /session":         ".ClearSession",
		"GET /events":             ".Stream",
	}
	for _, route := range engine.Routes() {
		suffix, ok := want[route.Method+" "+route.Path]
		if !assert.True(t, ok, "unexpected route %s %s", route.Method, route.Path) {
			continue
		}
		assert.Contains(t, route.Handler, suffix)
	}
	assert.Len(t, engine.Routes(), len(want))
}
