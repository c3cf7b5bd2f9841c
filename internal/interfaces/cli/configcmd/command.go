// Package configcmd prints the effective configuration.
package configcmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/antrian-kiosk/antrian/internal/infrastructure/config"
	"github.com/antrian-kiosk/antrian/internal/infrastructure/ledger"
	"github.com/antrian-kiosk/antrian/internal/shared/utils"
)

var (
	env        string
	configPath string
	reveal     bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the merged configuration as YAML",
		Long:  `Print defaults, the config file and ANTRIAN_* environment variables merged. Secrets are masked unless --reveal is given.`,
		Args:  cobra.NoArgs,
		RunE:  runShow,
	}
	show.Flags().BoolVar(&reveal, "reveal", false, "Print secrets in clear text")

	cmd.AddCommand(show)
	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(env, configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	return writeConfig(cmd.OutOrStdout(), cfg, reveal)
}

func writeConfig(w io.Writer, cfg *config.Config, reveal bool) error {
	var out interface{} = cfg
	if !reveal {
		out = utils.MaskSecrets(cfg)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}

	settings := ledger.NewSettings(cfg.Ledger, cfg.Database, cfg.Redis)
	if missing := settings.MissingSettings(); len(missing) > 0 {
		fmt.Fprintf(w, "\n# ledger not ready, missing: %v\n", missing)
	}
	return nil
}
