// Package kiosk is the terminal front end visitors use to take a queue
// ticket. It talks to a running server over the HTTP API.
package kiosk

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/antrian-kiosk/antrian/internal/shared/constants"
	"github.com/antrian-kiosk/antrian/internal/shared/countdown"
	"github.com/antrian-kiosk/antrian/internal/shared/version"
)

// TicketAPI is the part of the server API the kiosk uses.
type TicketAPI interface {
	LastTicket(ctx context.Context) (*LastTicket, error)
	SubmitTicket(ctx context.Context, number string) (*Ticket, error)
	IssueTicket(ctx context.Context) (*Ticket, error)
	ServerVersion(ctx context.Context) (string, error)
}

// Options configures a kiosk Model.
type Options struct {
	// Mode is constants.KioskModeAuto or constants.KioskModeManual.
	Mode           string
	DisplaySeconds int
	SessionTTL     time.Duration
	RequestTimeout time.Duration
	ClientVersion  string
	// Now defaults to time.Now.
	Now func() time.Time
}

type state int

const (
	// stateIdle accepts a new ticket request.
	stateIdle state = iota
	// stateSubmitting waits for the server.
	stateSubmitting
	// stateShowing displays the new number while the countdown runs.
	stateShowing
	// stateHolding hides the form while the session remembers a ticket.
	stateHolding
)

type ticketRecordedMsg struct {
	ticket *Ticket
	err    error
}

type previewMsg struct {
	last *LastTicket
	err  error
}

type versionMsg struct {
	server string
	err    error
}

type countdownTickMsg struct {
	tick countdown.Tick
}

// sessionExpiredMsg is scheduled for the moment the remembered ticket
// expires. at guards against a session that was replaced meanwhile.
type sessionExpiredMsg struct {
	at time.Time
}

// Model is the bubbletea model of the kiosk.
type Model struct {
	api  TicketAPI
	opts Options
	keys KeyMap

	input     textinput.Model
	countdown countdown.Countdown
	session   *Session

	state   state
	current *Ticket
	next    string
	err     error
	notice  string
	width   int
}

// NewModel builds a kiosk in its idle state.
func NewModel(api TicketAPI, opts Options) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Mode != constants.KioskModeAuto {
		opts.Mode = constants.KioskModeManual
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 15 * time.Second
	}

	input := textinput.New()
	input.Placeholder = "0001"
	input.Prompt = "Ticket number: "
	input.CharLimit = 32
	input.Width = 20
	if opts.Mode == constants.KioskModeManual {
		input.Focus()
	}

	return Model{
		api:       api,
		opts:      opts,
		keys:      DefaultKeyMap,
		input:     input,
		countdown: countdown.New(opts.DisplaySeconds),
		session:   NewSession(opts.SessionTTL),
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.fetchPreview(), m.checkVersion()}
	if m.manual() {
		cmds = append(cmds, textinput.Blink)
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ticketRecordedMsg:
		return m.handleRecorded(msg)

	case countdownTickMsg:
		next, done := m.countdown.Handle(msg.tick)
		if next != nil {
			return m, scheduleTick(*next)
		}
		if done {
			return m.afterDisplay()
		}
		return m, nil

	case sessionExpiredMsg:
		if m.state == stateHolding && msg.at.Equal(m.session.ExpiresAt()) {
			m.session.Clear()
			return m.toIdle()
		}
		return m, nil

	case previewMsg:
		if msg.err == nil && msg.last != nil {
			m.next = msg.last.NextTicketNumber
		}
		return m, nil

	case versionMsg:
		m.notice = versionNotice(m.opts.ClientVersion, msg.server, msg.err)
		return m, nil
	}

	if m.state == stateIdle && m.manual() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	switch m.state {
	case stateSubmitting:
		return m, nil

	case stateShowing, stateHolding:
		if key.Matches(msg, m.keys.Reset) {
			return m.reset()
		}
		return m, nil
	}

	if key.Matches(msg, m.keys.Submit) {
		return m.submit()
	}

	// In auto mode there is nothing to type, so r resets a stale error.
	if !m.manual() {
		if key.Matches(msg, m.keys.Reset) {
			return m.reset()
		}
		return m, nil
	}

	m.err = nil
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	if !m.manual() {
		m.state = stateSubmitting
		m.err = nil
		return m, m.issue()
	}

	number := strings.TrimSpace(m.input.Value())
	if number == "" {
		m.err = &APIError{Type: "validation_error", Message: "Ticket number is required"}
		return m, nil
	}
	m.state = stateSubmitting
	m.err = nil
	return m, m.record(number)
}

func (m Model) handleRecorded(msg ticketRecordedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.state = stateIdle
		m.err = msg.err
		return m, m.fetchPreview()
	}

	m.current = msg.ticket
	m.err = nil
	m.session.Remember(msg.ticket.TicketNumber, m.opts.Now())
	m.input.Reset()
	m.state = stateShowing
	tick := m.countdown.Start()
	return m, tea.Batch(scheduleTick(tick), m.fetchPreview())
}

// afterDisplay leaves the number screen when the countdown ends. An active
// session keeps the form hidden.
func (m Model) afterDisplay() (tea.Model, tea.Cmd) {
	now := m.opts.Now()
	if _, ok := m.session.Active(now); ok {
		m.state = stateHolding
		at := m.session.ExpiresAt()
		return m, tea.Tick(at.Sub(now), func(time.Time) tea.Msg {
			return sessionExpiredMsg{at: at}
		})
	}
	return m.toIdle()
}

// reset cancels the countdown and forgets the session.
func (m Model) reset() (tea.Model, tea.Cmd) {
	m.countdown.Cancel()
	m.session.Clear()
	return m.toIdle()
}

func (m Model) toIdle() (tea.Model, tea.Cmd) {
	m.state = stateIdle
	m.current = nil
	m.err = nil
	m.input.Reset()
	if m.manual() {
		return m, tea.Batch(m.input.Focus(), m.fetchPreview())
	}
	return m, m.fetchPreview()
}

func (m Model) manual() bool {
	return m.opts.Mode == constants.KioskModeManual
}

func scheduleTick(t countdown.Tick) tea.Cmd {
	return tea.Tick(countdown.Interval, func(time.Time) tea.Msg {
		return countdownTickMsg{tick: t}
	})
}

func (m Model) record(number string) tea.Cmd {
	api, timeout := m.api, m.opts.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		t, err := api.SubmitTicket(ctx, number)
		return ticketRecordedMsg{ticket: t, err: err}
	}
}

func (m Model) issue() tea.Cmd {
	api, timeout := m.api, m.opts.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		t, err := api.IssueTicket(ctx)
		return ticketRecordedMsg{ticket: t, err: err}
	}
}

func (m Model) fetchPreview() tea.Cmd {
	api, timeout := m.api, m.opts.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		last, err := api.LastTicket(ctx)
		return previewMsg{last: last, err: err}
	}
}

func (m Model) checkVersion() tea.Cmd {
	api, timeout := m.api, m.opts.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		v, err := api.ServerVersion(ctx)
		return versionMsg{server: v, err: err}
	}
}

func versionNotice(client, server string, err error) string {
	switch {
	case err != nil:
		return "Server version unknown: " + err.Error()
	case !version.Compatible(client, server):
		return "Server " + server + " is not compatible with this kiosk (" + client + ")"
	case version.HasNewerVersion(client, server) && client != "dev":
		return "A newer kiosk (" + server + ") is available"
	}
	return ""
}
