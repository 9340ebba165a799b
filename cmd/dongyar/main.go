package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmynk/dongyar/internal/config"
	"github.com/mmynk/dongyar/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if err := newRootCmd(cfg).Execute(); err != nil {
		os.Exit(1)
	}
}

// remoteOptions are shared by the commands that talk to a Dongyar server.
type remoteOptions struct {
	url     string
	token   string
	timeout time.Duration
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	remote := &remoteOptions{}

	rootCmd := &cobra.Command{
		Use:   "dongyar",
		Short: "Split shared expenses fairly",
		Long: `Dongyar works out who owes whom after a group shared an expense.

Each participant enters what they paid; amounts may be written with grouping
separators and several payments joined with '+', e.g. "1,200+800".`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&remote.url, "remote", "", "Base URL of a Dongyar server (computes locally when empty)")
	rootCmd.PersistentFlags().StringVar(&remote.token, "token", os.Getenv("DONGYAR_TOKEN"), "Bearer token for the server")
	rootCmd.PersistentFlags().DurationVar(&remote.timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(
		newSettleCmd(cfg, remote),
		newGetCmd(remote),
		newDeleteCmd(remote),
		newTokenCmd(cfg),
	)

	return rootCmd
}
