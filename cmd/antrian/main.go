package main

import (
	"context"
	"os"
	_ "time/tzdata"

	"github.com/spf13/cobra"

	"github.com/antrian-kiosk/antrian/internal/interfaces/cli/configcmd"
	"github.com/antrian-kiosk/antrian/internal/interfaces/cli/kiosk"
	"github.com/antrian-kiosk/antrian/internal/interfaces/cli/migrate"
	"github.com/antrian-kiosk/antrian/internal/interfaces/cli/server"
	"github.com/antrian-kiosk/antrian/internal/interfaces/cli/ticket"
	"github.com/antrian-kiosk/antrian/internal/shared/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "antrian",
		Short:        "Antrian - daily queue ticket service",
		Long:         `Antrian issues numbered queue tickets that reset every day and records them in an append-only ledger, usually a Google Sheet.`,
		Version:      version.Get().Version,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		ticket.NewCommand(),
		kiosk.NewCommand(),
		configcmd.NewCommand(),
	)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
