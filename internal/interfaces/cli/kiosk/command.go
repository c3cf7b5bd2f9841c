package kiosk

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/antrian-kiosk/antrian/internal/infrastructure/config"
	kioskui "github.com/antrian-kiosk/antrian/internal/interfaces/kiosk"
	"github.com/antrian-kiosk/antrian/internal/shared/constants"
	"github.com/antrian-kiosk/antrian/internal/shared/version"
)

var (
	env            string
	configPath     string
	serverURL      string
	mode           string
	displaySeconds int
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kiosk",
		Short: "Run the terminal ticket kiosk",
		Long:  `Run a full-screen kiosk that takes queue tickets from a running server.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.Flags().StringVar(&serverURL, "server", "", "Server base URL (default: kiosk.server_url)")
	cmd.Flags().StringVar(&mode, "mode", "", "auto issues the next number, manual asks for one (default: kiosk.mode)")
	cmd.Flags().IntVar(&displaySeconds, "display-seconds", 0, "Seconds to show a new ticket (default: kiosk.display_seconds)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(env, configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if serverURL == "" {
		serverURL = cfg.Kiosk.ServerURL
	}
	if mode == "" {
		mode = cfg.Kiosk.Mode
	}
	if mode != constants.KioskModeAuto && mode != constants.KioskModeManual {
		return fmt.Errorf("invalid kiosk mode %q, want %s or %s", mode, constants.KioskModeAuto, constants.KioskModeManual)
	}
	if displaySeconds <= 0 {
		displaySeconds = cfg.Kiosk.DisplaySeconds
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	timeout := cfg.Ledger.Timeout() + cfg.Ledger.Timeout()/2
	client := kioskui.NewClient(serverURL, timeout)

	return kioskui.Run(ctx, client, kioskui.Options{
		Mode:           mode,
		DisplaySeconds: displaySeconds,
		SessionTTL:     cfg.Session.TTL(),
		RequestTimeout: timeout,
		ClientVersion:  version.Get().Version,
	})
}
