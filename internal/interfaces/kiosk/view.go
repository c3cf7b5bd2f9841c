package kiosk

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	numberStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("4")).
			Padding(1, 4).
			Margin(1, 0)

	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Antrian"))
	b.WriteString(mutedStyle.Render("  " + m.opts.Mode + " mode"))
	b.WriteString("\n\n")

	switch m.state {
	case stateSubmitting:
		b.WriteString("Recording your ticket...\n")

	case stateShowing:
		b.WriteString("Your ticket number\n")
		b.WriteString(numberStyle.Render(m.current.TicketNumber))
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(fmt.Sprintf("Recorded %s. Returning in %ds.", m.current.Timestamp, m.countdown.Remaining())))
		b.WriteString("\n")

	case stateHolding:
		number, _ := m.session.Active(m.opts.Now())
		b.WriteString("You already have ticket ")
		b.WriteString(titleStyle.Render(number))
		b.WriteString("\n")

	default:
		if m.manual() {
			b.WriteString(m.input.View())
			b.WriteString("\n")
		} else {
			b.WriteString("Press enter to take a ticket\n")
		}
		if m.next != "" {
			b.WriteString(mutedStyle.Render("Next number: " + m.next))
			b.WriteString("\n")
		}
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}
	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(m.helpLine()))
	b.WriteString("\n")

	out := b.String()
	if m.width > 0 {
		out = lipgloss.NewStyle().MaxWidth(m.width).Render(out)
	}
	return out
}

func (m Model) helpLine() string {
	var parts []string
	switch m.state {
	case stateShowing, stateHolding:
		parts = append(parts, helpFor(m.keys.Reset.Help().Key, m.keys.Reset.Help().Desc))
	case stateIdle:
		parts = append(parts, helpFor(m.keys.Submit.Help().Key, m.keys.Submit.Help().Desc))
	}
	parts = append(parts, helpFor(m.keys.Quit.Help().Key, m.keys.Quit.Help().Desc))
	return strings.Join(parts, "  •  ")
}

func helpFor(k, desc string) string {
	return k + " " + desc
}
