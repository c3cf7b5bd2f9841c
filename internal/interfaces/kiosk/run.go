package kiosk

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the kiosk full screen and blocks until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, api TicketAPI, opts Options) error {
	p := tea.NewProgram(
		NewModel(api, opts),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("kiosk: %w", err)
	}
	return nil
}
