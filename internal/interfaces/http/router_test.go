package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antrian-kiosk/antrian/internal/domain/ticket"
	"github.com/antrian-kiosk/antrian/internal/infrastructure/config"
	"github.com/antrian-kiosk/antrian/internal/infrastructure/pubsub"
	sharedConfig "github.com/antrian-kiosk/antrian/internal/shared/config"
	"github.com/antrian-kiosk/antrian/internal/shared/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, ledgerCfg sharedConfig.LedgerConfig) *Router {
	t.Helper()
	cfg := &config.Config{
		Server:  sharedConfig.ServerConfig{AllowedOrigins: []string{"*"}},
		Ledger:  ledgerCfg,
		Session: sharedConfig.SessionConfig{CookieName: "patient_ticket", TTLSeconds: 60, Path: "/"},
		Events:  sharedConfig.EventsConfig{Driver: sharedConfig.EventsDriverNone},
	}
	r, err := NewRouter(context.Background(), cfg, logger.NewNopLogger())
	require.NoError(t, err)
	r.SetupRoutes()
	t.Cleanup(r.Shutdown)
	return r
}

type response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func do(t *testing.T, r *Router, method, path string, body interface{}) (*httptest.ResponseRecorder, response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.GetEngine().ServeHTTP(w, req)

	var resp response
	if w.Header().Get("Content-Type") != "" && w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
	}
	return w, resp
}

func TestRouter_TicketFlow(t *testing.T) {
	r := newTestRouter(t, sharedConfig.LedgerConfig{Driver: sharedConfig.LedgerDriverMemory, StoreID: "Sheet1"})

	for _, prefix := range []string{"", "/api"} {
		t.Run("prefix"+prefix, func(t *testing.T) {
			w, resp := do(t, r, http.MethodGet, prefix+"/get-last-ticket", nil)
			require.Equal(t, http.StatusOK, w.Code)
			assert.True(t, resp.Success)
		})
	}

	w, _ := do(t, r, http.MethodPost, "/api/submit-ticket", map[string]string{"ticketNumber": "0001"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w, resp := do(t, r, http.MethodGet, "/get-last-ticket", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var last struct {
		TicketNumber int `json:"ticketNumber"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &last))
	assert.Equal(t, 1, last.TicketNumber)

	w, resp = do(t, r, http.MethodPost, "/submit-ticket", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "Ticket number is required", resp.Error.Message)
}

func TestRouter_UnconfiguredLedger(t *testing.T) {
	r := newTestRouter(t, sharedConfig.LedgerConfig{Driver: sharedConfig.LedgerDriverSheets})

	w, resp := do(t, r, http.MethodGet, "/api/get-last-ticket", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "configuration_error", resp.Error.Type)

	w, _ = do(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var health struct {
		LedgerReady     bool     `json:"ledgerReady"`
		MissingSettings []string `json:"missingSettings"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.False(t, health.LedgerReady)
	assert.Contains(t, health.MissingSettings, "ledger.store_id")
}

func TestRouter_RedisEventsRelayToFeed(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	const channel = "antrian:test:issued"
	cfg := &config.Config{
		Server:  sharedConfig.ServerConfig{AllowedOrigins: []string{"*"}},
		Ledger:  sharedConfig.LedgerConfig{Driver: sharedConfig.LedgerDriverMemory, StoreID: "Sheet1"},
		Session: sharedConfig.SessionConfig{CookieName: "patient_ticket", TTLSeconds: 60, Path: "/"},
		Redis:   sharedConfig.RedisConfig{Host: mr.Host(), Port: port},
		Events:  sharedConfig.EventsConfig{Driver: sharedConfig.EventsDriverRedis, Channel: channel},
	}

	type result struct {
		r   *Router
		err error
	}
	built := make(chan result, 1)
	go func() {
		r, err := NewRouter(context.Background(), cfg, logger.NewNopLogger())
		built <- result{r, err}
	}()

	var r *Router
	select {
	case res := <-built:
		require.NoError(t, res.err)
		r = res.r
	case <-time.After(3 * time.Second):
		t.Fatal("NewRouter did not return with events.driver=redis")
	}
	r.SetupRoutes()
	t.Cleanup(r.Shutdown)

	conn := r.container.ticketHub.RegisterConn("board-1")
	require.NotNil(t, conn)

	require.Eventually(t, func() bool {
		return mr.PubSubNumSub(channel)[channel] > 0
	}, 2*time.Second, 10*time.Millisecond)

	t.Run("ticket from another instance reaches the feed", func(t *testing.T) {
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		defer client.Close()
		other := pubsub.NewRedisTicketEventBus(client, channel, logger.NewNopLogger())

		event := ticket.NewIssuedEvent(&ticket.PersistedRecord{
			Number:       "0042",
			Timestamp:    "2025-03-14 09:30:00",
			UpdatedRange: "tembagapura!A43:B43",
		}, ticket.SourceComputed, time.Now())
		require.NoError(t, other.Publish(context.Background(), event))

		select {
		case data := <-conn.Send:
			assert.Contains(t, string(data), `"ticketNumber":"0042"`)
		case <-time.After(2 * time.Second):
			t.Fatal("relayed ticket not delivered to the feed")
		}
	})

	t.Run("local ticket is delivered once", func(t *testing.T) {
		w, _ := do(t, r, http.MethodPost, "/api/submit-ticket", map[string]string{"ticketNumber": "0043"})
		require.Equal(t, http.StatusOK, w.Code)

		select {
		case data := <-conn.Send:
			assert.Contains(t, string(data), `"ticketNumber":"0043"`)
		case <-time.After(2 * time.Second):
			t.Fatal("local ticket not delivered to the feed")
		}

		select {
		case data := <-conn.Send:
			t.Fatalf("unexpected second delivery %s", data)
		case <-time.After(200 * time.Millisecond):
		}
	})
}
