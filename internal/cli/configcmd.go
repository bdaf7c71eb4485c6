package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/southerncoder/my-Trading-Agents-sub007/config"
)

func newConfigCmd(cfg *config.Config) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := json.MarshalIndent(redacted(cfg), "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration and report missing credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			fmt.Println("configuration valid")
			for _, w := range credentialWarnings(cfg) {
				fmt.Println("warning:", w)
			}
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the watched config file location",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := config.NewManager(config.WithInitialConfig(cfg))
			if err != nil {
				return err
			}
			fmt.Println(mgr.Path())
			return nil
		},
	})

	return configCmd
}

// redacted masks secrets for display while keeping their presence visible.
func redacted(cfg *config.Config) config.Config {
	out := *cfg
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "***"
	}
	out.DeepSeekAPIKey = mask(out.DeepSeekAPIKey)
	out.OpenAIAPIKey = mask(out.OpenAIAPIKey)
	out.FinnhubAPIKey = mask(out.FinnhubAPIKey)
	out.LongportAppKey = mask(out.LongportAppKey)
	out.LongportAppSecret = mask(out.LongportAppSecret)
	out.LongportAccessToken = mask(out.LongportAccessToken)
	return out
}

func credentialWarnings(cfg *config.Config) []string {
	var warnings []string
	switch strings.ToLower(cfg.LLMProvider) {
	case "", "deepseek":
		if cfg.DeepSeekAPIKey == "" {
			warnings = append(warnings, "DEEPSEEK_API_KEY is not set; analysis runs will fail at model setup")
		}
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			warnings = append(warnings, "OPENAI_API_KEY is not set; analysis runs will fail at model setup")
		}
	}
	if cfg.FinnhubAPIKey == "" {
		warnings = append(warnings, "FINNHUB_API_KEY is not set; company news and insider sentiment are skipped")
	}
	if cfg.LongportAppKey == "" {
		warnings = append(warnings, "LongPort credentials are not set; Yahoo Finance is the only candle source")
	}
	return warnings
}
