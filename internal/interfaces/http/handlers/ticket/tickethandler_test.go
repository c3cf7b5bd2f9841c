package ticket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antrian-kiosk/antrian/internal/application/ticket/dto"
	"github.com/antrian-kiosk/antrian/internal/application/ticket/usecases"
	"github.com/antrian-kiosk/antrian/internal/domain/shared/events"
	"github.com/antrian-kiosk/antrian/internal/infrastructure/ledger"
	"github.com/antrian-kiosk/antrian/internal/interfaces/http/handlers/testutil"
	"github.com/antrian-kiosk/antrian/internal/shared/config"
	"github.com/antrian-kiosk/antrian/internal/shared/errors"
)

// =====================================================================
// Mock executors
// =====================================================================

type mockGetLastTicket struct {
	result *dto.LastTicketDTO
	err    error
}

func (m *mockGetLastTicket) Execute(context.Context) (*dto.LastTicketDTO, error) {
	return m.result, m.err
}

type mockSubmitTicket struct {
	calls  []usecases.SubmitTicketCommand
	result *dto.TicketDTO
	err    error
}

func (m *mockSubmitTicket) Execute(_ context.Context, cmd usecases.SubmitTicketCommand) (*dto.TicketDTO, error) {
	m.calls = append(m.calls, cmd)
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &dto.TicketDTO{TicketNumber: cmd.TicketNumber, Timestamp: "2025-03-14 09:30:00"}, nil
}

type mockIssueTicket struct {
	result *dto.TicketDTO
	err    error
}

func (m *mockIssueTicket) Execute(context.Context) (*dto.TicketDTO, error) {
	return m.result, m.err
}

type mockNextNumber struct {
	result *dto.NextTicketDTO
	err    error
}

func (m *mockNextNumber) Execute(context.Context) (*dto.NextTicketDTO, error) {
	return m.result, m.err
}

var testSession = config.SessionConfig{CookieName: "patient_ticket", TTLSeconds: 60, Path: "/"}

func newMockHandler(get *mockGetLastTicket, submit *mockSubmitTicket, issue *mockIssueTicket, next *mockNextNumber) *TicketHandler {
	if get == nil {
		get = &mockGetLastTicket{}
	}
	if submit == nil {
		submit = &mockSubmitTicket{}
	}
	if issue == nil {
		issue = &mockIssueTicket{}
	}
	if next == nil {
		next = &mockNextNumber{}
	}
	return NewTicketHandler(get, submit, issue, next, testSession, testutil.NewMockLogger())
}

// newLedgerHandler wires the real use cases over an in-memory ledger.
func newLedgerHandler(l *ledger.MemoryLedger, settings usecases.SettingsChecker) *TicketHandler {
	log := testutil.NewMockLogger()
	policy := usecases.Policy{Timeout: time.Second}
	clock := func() time.Time { return time.Now() }
	pub := events.NopPublisher{}

	return NewTicketHandler(
		usecases.NewGetLastTicketUseCase(l, settings, policy, clock, log),
		usecases.NewSubmitTicketUseCase(l, pub, settings, policy, clock, log),
		usecases.NewIssueTicketUseCase(l, pub, settings, policy, clock, log),
		usecases.NewNextTicketNumberUseCase(l, settings, policy, clock, log),
		testSession,
		log,
	)
}

type fixedSettings []string

func (f fixedSettings) MissingSettings() []string { return f }

func cookieValue(w *httptest.ResponseRecorder, name string) (string, bool) {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}

// =====================================================================
// GetLastTicket
// =====================================================================

func TestTicketHandler_GetLastTicket_Success(t *testing.T) {
	handler := newMockHandler(&mockGetLastTicket{result: &dto.LastTicketDTO{
		TicketNumber:     7,
		Timestamp:        "2025-03-14 09:30:00",
		NextTicketNumber: "0008",
	}}, nil, nil, nil)

	c, w := testutil.NewTestContext(http.MethodGet, "/get-last-ticket", nil)
	handler.GetLastTicket(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var data dto.LastTicketDTO
	require.NoError(t, testutil.ParseData(w, &data))
	assert.Equal(t, 7, data.TicketNumber)
	assert.Equal(t, "0008", data.NextTicketNumber)
}

func TestTicketHandler_GetLastTicket_ConfigurationError(t *testing.T) {
	handler := newMockHandler(&mockGetLastTicket{
		err: errors.NewConfigurationError("Ledger is not configured", "ledger.store_id"),
	}, nil, nil, nil)

	c, w := testutil.NewTestContext(http.MethodGet, "/get-last-ticket", nil)
	handler.GetLastTicket(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "configuration_error", resp.Error.Type)
}

func TestTicketHandler_GetLastTicket_LedgerErrorCarriesCode(t *testing.T) {
	handler := newMockHandler(&mockGetLastTicket{
		err: errors.NewLedgerReadError(assert.AnError, "PERMISSION_DENIED"),
	}, nil, nil, nil)

	c, w := testutil.NewTestContext(http.MethodGet, "/get-last-ticket", nil)
	handler.GetLastTicket(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "ledger_read_error", resp.Error.Type)
	assert.Equal(t, "PERMISSION_DENIED", resp.Error.Code)
}

// =====================================================================
// SubmitTicket
// =====================================================================

func TestTicketHandler_SubmitTicket(t *testing.T) {
	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
		wantNumber string
		wantCalled bool
	}{
		{
			name:       "string number",
			body:       map[string]interface{}{"ticketNumber": "0001"},
			wantStatus: http.StatusOK,
			wantNumber: "0001",
			wantCalled: true,
		},
		{
			name:       "numeric json value",
			body:       map[string]interface{}{"ticketNumber": 12},
			wantStatus: http.StatusOK,
			wantNumber: "12",
			wantCalled: true,
		},
		{
			name:       "string zero is a ticket",
			body:       map[string]interface{}{"ticketNumber": "0"},
			wantStatus: http.StatusOK,
			wantNumber: "0",
			wantCalled: true,
		},
		{
			name:       "missing field",
			body:       map[string]interface{}{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "blank string",
			body:       map[string]interface{}{"ticketNumber": "   "},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "null value",
			body:       `{"ticketNumber":null}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "numeric zero",
			body:       `{"ticketNumber":0}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed json",
			body:       `{"ticketNumber":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "object value",
			body:       `{"ticketNumber":{"a":1}}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			submit := &mockSubmitTicket{}
			handler := newMockHandler(nil, submit, nil, nil)

			c, w := testutil.NewTestContext(http.MethodPost, "/submit-ticket", tt.body)
			handler.SubmitTicket(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			if !tt.wantCalled {
				assert.Empty(t, submit.calls)
				var resp testutil.APIResponse
				require.NoError(t, testutil.ParseResponse(w, &resp))
				require.NotNil(t, resp.Error)
				assert.Equal(t, "Ticket number is required", resp.Error.Message)
				return
			}

			require.Len(t, submit.calls, 1)
			assert.Equal(t, tt.wantNumber, submit.calls[0].TicketNumber)

			value, ok := cookieValue(w, "patient_ticket")
			assert.True(t, ok)
			assert.Equal(t, tt.wantNumber, value)
		})
	}
}

func TestTicketHandler_SubmitTicket_UseCaseError(t *testing.T) {
	submit := &mockSubmitTicket{err: errors.NewLedgerWriteError(assert.AnError, "")}
	handler := newMockHandler(nil, submit, nil, nil)

	c, w := testutil.NewTestContext(http.MethodPost, "/submit-ticket", map[string]string{"ticketNumber": "0003"})
	handler.SubmitTicket(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	_, ok := cookieValue(w, "patient_ticket")
	assert.False(t, ok)
}

// =====================================================================
// IssueTicket and NextTicketNumber
// =====================================================================

func TestTicketHandler_IssueTicket(t *testing.T) {
	issue := &mockIssueTicket{result: &dto.TicketDTO{TicketNumber: "0004", Timestamp: "2025-03-14 09:30:00"}}
	handler := newMockHandler(nil, nil, issue, nil)

	c, w := testutil.NewTestContext(http.MethodPost, "/issue-ticket", nil)
	handler.IssueTicket(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var data dto.TicketDTO
	require.NoError(t, testutil.ParseData(w, &data))
	assert.Equal(t, "0004", data.TicketNumber)

	value, ok := cookieValue(w, "patient_ticket")
	assert.True(t, ok)
	assert.Equal(t, "0004", value)
}

func TestTicketHandler_IssueTicket_Conflict(t *testing.T) {
	issue := &mockIssueTicket{err: errors.NewConflictError("Ticket sequence changed, try again")}
	handler := newMockHandler(nil, nil, issue, nil)

	c, w := testutil.NewTestContext(http.MethodPost, "/issue-ticket", nil)
	handler.IssueTicket(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestTicketHandler_NextTicketNumber(t *testing.T) {
	next := &mockNextNumber{result: &dto.NextTicketDTO{NextTicketNumber: "0010", IssuedToday: 9}}
	handler := newMockHandler(nil, nil, nil, next)

	c, w := testutil.NewTestContext(http.MethodGet, "/next-ticket-number", nil)
	handler.NextTicketNumber(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var data dto.NextTicketDTO
	require.NoError(t, testutil.ParseData(w, &data))
	assert.Equal(t, "0010", data.NextTicketNumber)
	assert.Equal(t, 9, data.IssuedToday)
}

// =====================================================================
// Session
// =====================================================================

func TestTicketHandler_Session(t *testing.T) {
	handler := newMockHandler(nil, nil, nil, nil)

	t.Run("no cookie", func(t *testing.T) {
		c, w := testutil.NewTestContext(http.MethodGet, "/session", nil)
		handler.GetSession(c)

		var data SessionResponse
		require.NoError(t, testutil.ParseData(w, &data))
		assert.False(t, data.Active)
		assert.Empty(t, data.TicketNumber)
	})

	t.Run("with cookie", func(t *testing.T) {
		c, w := testutil.NewTestContext(http.MethodGet, "/session", nil)
		c.Request.AddCookie(&http.Cookie{Name: "patient_ticket", Value: "0005"})
		handler.GetSession(c)

		var data SessionResponse
		require.NoError(t, testutil.ParseData(w, &data))
		assert.True(t, data.Active)
		assert.Equal(t, "0005", data.TicketNumber)
	})

	t.Run("clear", func(t *testing.T) {
		c, w := testutil.NewTestContext(http.MethodDelete, "/session", nil)
		handler.ClearSession(c)

		assert.Equal(t, http.StatusOK, w.Code)
		header := w.Header().Get("Set-Cookie")
		assert.True(t, strings.HasPrefix(header, "patient_ticket=;"))
		assert.Contains(t, header, "Max-Age=0")
	})
}

// =====================================================================
// End to end over an in-memory ledger
// =====================================================================

func TestTicketHandler_EndToEnd(t *testing.T) {
	l := ledger.NewMemoryLedger("Sheet1")
	handler := newLedgerHandler(l, fixedSettings(nil))

	getLast := func() dto.LastTicketDTO {
		c, w := testutil.NewTestContext(http.MethodGet, "/get-last-ticket", nil)
		handler.GetLastTicket(c)
		require.Equal(t, http.StatusOK, w.Code)
		var data dto.LastTicketDTO
		require.NoError(t, testutil.ParseData(w, &data))
		return data
	}
	submit := func(body interface{}) *httptest.ResponseRecorder {
		c, w := testutil.NewTestContext(http.MethodPost, "/submit-ticket", body)
		handler.SubmitTicket(c)
		return w
	}

	assert.Equal(t, 0, getLast().TicketNumber)
	assert.Equal(t, "0001", getLast().NextTicketNumber)

	w := submit(map[string]string{"ticketNumber": "0001"})
	require.Equal(t, http.StatusOK, w.Code)
	var submitted dto.TicketDTO
	require.NoError(t, testutil.ParseData(w, &submitted))
	assert.Equal(t, "0001", submitted.TicketNumber)
	assert.NotEmpty(t, submitted.Timestamp)

	last := getLast()
	assert.Equal(t, 1, last.TicketNumber)
	assert.Equal(t, "0002", last.NextTicketNumber)

	w = submit(map[string]string{"ticketNumber": "WALK-IN-7"})
	require.Equal(t, http.StatusOK, w.Code)
	rows, err := l.ReadRows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "WALK-IN-7", rows[1].Number)

	w = submit(map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 2, l.Len())

	c, w := testutil.NewTestContext(http.MethodPost, "/issue-ticket", nil)
	handler.IssueTicket(c)
	require.Equal(t, http.StatusOK, w.Code)
	var issued dto.TicketDTO
	require.NoError(t, testutil.ParseData(w, &issued))
	assert.Equal(t, 3, l.Len())
	assert.NotEmpty(t, issued.TicketNumber)
}

func TestTicketHandler_EndToEnd_MissingSettings(t *testing.T) {
	l := ledger.NewMemoryLedger("Sheet1")
	handler := newLedgerHandler(l, fixedSettings{"ledger.store_id"})

	c, w := testutil.NewTestContext(http.MethodPost, "/submit-ticket", map[string]string{"ticketNumber": "0001"})
	handler.SubmitTicket(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 0, l.Len())

	c, w = testutil.NewTestContext(http.MethodPost, "/submit-ticket", map[string]string{})
	handler.SubmitTicket(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
