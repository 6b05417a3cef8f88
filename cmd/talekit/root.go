package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var logLevel string

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "talekit",
		Short:         "talekit compiles and plays branching dialogue scripts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := zerolog.ParseLevel(strings.ToLower(logLevel))
			if err != nil {
				return fmt.Errorf("invalid log level %q", logLevel)
			}
			zerolog.SetGlobalLevel(lvl)
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: trace|debug|info|warn|error")
	cmd.AddCommand(playCmd(), checkCmd(), tokensCmd(), dumpCmd())
	return cmd
}

func newLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}
