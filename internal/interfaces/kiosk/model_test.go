package kiosk

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antrian-kiosk/antrian/internal/shared/constants"
	"github.com/antrian-kiosk/antrian/internal/shared/countdown"
)

type fakeAPI struct {
	submitted []string
	issued    int
	submitErr error
	next      string
}

func (f *fakeAPI) LastTicket(context.Context) (*LastTicket, error) {
	return &LastTicket{NextTicketNumber: f.next}, nil
}

func (f *fakeAPI) SubmitTicket(_ context.Context, number string) (*Ticket, error) {
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	f.submitted = append(f.submitted, number)
	return &Ticket{TicketNumber: number, Timestamp: "2025-03-14 09:30:00"}, nil
}

func (f *fakeAPI) IssueTicket(context.Context) (*Ticket, error) {
	f.issued++
	return &Ticket{TicketNumber: "0004", Timestamp: "2025-03-14 09:30:00"}, nil
}

func (f *fakeAPI) ServerVersion(context.Context) (string, error) {
	return "v1.0.0", nil
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func newTestModel(api TicketAPI, mode string, clock *fakeClock) Model {
	return NewModel(api, Options{
		Mode:           mode,
		DisplaySeconds: 3,
		SessionTTL:     time.Hour,
		ClientVersion:  "v1.0.0",
		Now:            clock.Now,
	})
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func enter() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyEnter} }

func runeKey(r rune) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}} }

// runCountdown feeds ticks until the countdown finishes.
func runCountdown(t *testing.T, m Model) Model {
	t.Helper()
	tick := countdown.Tick{Generation: currentGeneration(m)}
	for i := 0; i < 10 && m.state == stateShowing; i++ {
		m, _ = update(t, m, countdownTickMsg{tick: tick})
	}
	return m
}

func currentGeneration(m Model) uint64 {
	return m.countdown.Generation()
}

func TestModel_ManualSubmitShowsNumberThenHolds(t *testing.T) {
	api := &fakeAPI{next: "0002"}
	clock := &fakeClock{now: time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)}
	m := newTestModel(api, constants.KioskModeManual, clock)

	m = typeText(t, m, "WALK-IN-7")
	m, cmd := update(t, m, enter())
	assert.Equal(t, stateSubmitting, m.state)
	require.NotNil(t, cmd)

	m, _ = update(t, m, cmd())
	assert.Equal(t, []string{"WALK-IN-7"}, api.submitted)
	assert.Equal(t, stateShowing, m.state)
	assert.Equal(t, 3, m.countdown.Remaining())
	assert.Contains(t, m.View(), "WALK-IN-7")
	assert.Contains(t, m.View(), "Returning in 3s")

	m = runCountdown(t, m)
	assert.Equal(t, stateHolding, m.state)
	assert.Contains(t, m.View(), "You already have ticket")

	m, _ = update(t, m, runeKey('r'))
	assert.Equal(t, stateIdle, m.state)
	_, active := m.session.Active(clock.now)
	assert.False(t, active)
}

func TestModel_ManualEmptyInputIsRejected(t *testing.T) {
	api := &fakeAPI{}
	m := newTestModel(api, constants.KioskModeManual, &fakeClock{now: time.Now()})

	m, cmd := update(t, m, enter())
	assert.Nil(t, cmd)
	assert.Equal(t, stateIdle, m.state)
	require.Error(t, m.err)
	assert.Equal(t, "Ticket number is required", m.err.Error())
	assert.Empty(t, api.submitted)
}

func TestModel_ManualTypingRDoesNotReset(t *testing.T) {
	m := newTestModel(&fakeAPI{}, constants.KioskModeManual, &fakeClock{now: time.Now()})

	m = typeText(t, m, "r2")
	assert.Equal(t, "r2", m.input.Value())
}

func TestModel_SubmitErrorReturnsToIdle(t *testing.T) {
	api := &fakeAPI{submitErr: &APIError{Message: "Failed to submit ticket"}}
	m := newTestModel(api, constants.KioskModeManual, &fakeClock{now: time.Now()})

	m = typeText(t, m, "0001")
	m, cmd := update(t, m, enter())
	m, _ = update(t, m, cmd())

	assert.Equal(t, stateIdle, m.state)
	assert.Contains(t, m.View(), "Failed to submit ticket")
}

func TestModel_AutoModeIssues(t *testing.T) {
	api := &fakeAPI{}
	m := newTestModel(api, constants.KioskModeAuto, &fakeClock{now: time.Now()})

	m, cmd := update(t, m, enter())
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())

	assert.Equal(t, 1, api.issued)
	assert.Equal(t, stateShowing, m.state)
	assert.Equal(t, "0004", m.current.TicketNumber)
}

func TestModel_ResetDuringCountdownIgnoresStaleTicks(t *testing.T) {
	api := &fakeAPI{}
	m := newTestModel(api, constants.KioskModeAuto, &fakeClock{now: time.Now()})

	m, cmd := update(t, m, enter())
	m, _ = update(t, m, cmd())
	stale := countdown.Tick{Generation: currentGeneration(m)}

	m, _ = update(t, m, runeKey('r'))
	assert.Equal(t, stateIdle, m.state)

	m, cmd = update(t, m, countdownTickMsg{tick: stale})
	assert.Nil(t, cmd)
	assert.Equal(t, stateIdle, m.state)
}

func TestModel_SessionExpiryReturnsToIdle(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)}
	m := newTestModel(&fakeAPI{}, constants.KioskModeAuto, clock)

	m, cmd := update(t, m, enter())
	m, _ = update(t, m, cmd())
	m = runCountdown(t, m)
	require.Equal(t, stateHolding, m.state)

	// A message for an older session does nothing.
	m, _ = update(t, m, sessionExpiredMsg{at: clock.now})
	assert.Equal(t, stateHolding, m.state)

	clock.now = clock.now.Add(2 * time.Hour)
	m, _ = update(t, m, sessionExpiredMsg{at: m.session.ExpiresAt()})
	assert.Equal(t, stateIdle, m.state)
}

func TestModel_PreviewAndVersionNotice(t *testing.T) {
	m := newTestModel(&fakeAPI{}, constants.KioskModeAuto, &fakeClock{now: time.Now()})

	m, _ = update(t, m, previewMsg{last: &LastTicket{NextTicketNumber: "0008"}})
	assert.Contains(t, m.View(), "Next number: 0008")

	m, _ = update(t, m, versionMsg{server: "v2.0.0"})
	assert.True(t, strings.Contains(m.View(), "not compatible"))

	m, _ = update(t, m, versionMsg{err: errors.New("connection refused")})
	assert.Contains(t, m.View(), "Server version unknown")
}

func TestSession(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	s := NewSession(time.Minute)

	s.Remember("0001", now)
	number, ok := s.Active(now.Add(30 * time.Second))
	assert.True(t, ok)
	assert.Equal(t, "0001", number)

	_, ok = s.Active(now.Add(time.Minute))
	assert.False(t, ok)

	disabled := NewSession(0)
	disabled.Remember("0001", now)
	_, ok = disabled.Active(now)
	assert.False(t, ok)
}
