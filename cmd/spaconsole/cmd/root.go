package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MachineKe/spa-console/cmd/spaconsole/cmd/auth"
	"github.com/MachineKe/spa-console/internal/config"
)

var (
	cfg       *config.Config
	serverURL string
)

var rootCmd = &cobra.Command{
	Use:   "spaconsole",
	Short: "Console for the spa platform admin surface",
	Long: `spaconsole serves the role-gated admin console for the spa platform and
provides a command-line client for the platform API: log in, inspect the
current identity, and check which console areas a role may enter.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if serverURL != "" {
			cfg.APIBaseURL = serverURL
		}

		// Propagate shared settings to subcommands
		auth.SetAPIBaseURL(cfg.APIBaseURL)
		auth.SetRequestTimeout(cfg.RequestTimeout)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Platform API base URL (env: API_BASE_URL)")
	rootCmd.AddCommand(auth.AuthCmd)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
