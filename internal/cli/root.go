// Package cli is the cobra command surface: analyze, history, config, and
// version, plus an interactive mode when run without a subcommand.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/southerncoder/my-Trading-Agents-sub007/config"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/logging"
)

// Version is stamped by the build; the default marks source builds.
var Version = "dev"

// NewRootCmd builds the command tree. Configuration loads once and flows
// into every subcommand.
func NewRootCmd() *cobra.Command {
	cfg := config.DefaultConfig()
	var debug bool

	rootCmd := &cobra.Command{
		Use:   "tradingagents",
		Short: "Multi-agent trading analysis",
		Long: `tradingagents runs a team of LLM agents over market, news, social, and
fundamentals data and synthesizes one trade recommendation per ticker and date.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if debug {
				cfg.Debug = true
			}
			if _, err := logging.Init(cfg.Debug); err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("create working directories: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd.Context(), cfg)
		},
	}

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(newAnalyzeCmd(cfg))
	rootCmd.AddCommand(newHistoryCmd(cfg))
	rootCmd.AddCommand(newConfigCmd(cfg))
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("tradingagents %s\n", Version)
		},
	}
}
