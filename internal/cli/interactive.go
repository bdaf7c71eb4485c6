package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/AlecAivazis/survey/v2"

	"github.com/southerncoder/my-Trading-Agents-sub007/config"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/dataflows"
)

// runInteractive prompts for the run parameters and executes one analysis.
func runInteractive(ctx context.Context, cfg *config.Config) error {
	var ticker string
	if err := survey.AskOne(&survey.Input{
		Message: "Ticker symbol:",
		Help:    "Stock ticker to analyze, for example AAPL",
		Suggest: func(toComplete string) []string {
			return dataflows.SearchSymbols(toComplete)
		},
	}, &ticker, survey.WithValidator(func(ans interface{}) error {
		s, _ := ans.(string)
		return dataflows.ValidateSymbol(s)
	})); err != nil {
		return err
	}

	date := time.Now().Format("2006-01-02")
	if err := survey.AskOne(&survey.Input{
		Message: "Trade date (YYYY-MM-DD):",
		Default: date,
	}, &date, survey.WithValidator(func(ans interface{}) error {
		s, _ := ans.(string)
		_, err := time.Parse("2006-01-02", s)
		return err
	})); err != nil {
		return err
	}

	roundsChoice := "1"
	if err := survey.AskOne(&survey.Select{
		Message: "Debate rounds:",
		Options: []string{"1", "2", "3"},
		Default: fmt.Sprintf("%d", cfg.MaxDebateRounds),
	}, &roundsChoice); err != nil {
		return err
	}
	var rounds int
	if _, err := fmt.Sscanf(roundsChoice, "%d", &rounds); err == nil && rounds > 0 {
		cfg.MaxDebateRounds = rounds
		cfg.MaxRiskDiscussRounds = rounds
	}

	confirmed := true
	if err := survey.AskOne(&survey.Confirm{
		Message: fmt.Sprintf("Analyze %s on %s?", dataflows.NormalizeSymbol(ticker), date),
		Default: true,
	}, &confirmed); err != nil {
		return err
	}
	if !confirmed {
		return nil
	}

	return runAnalysis(ctx, cfg, ticker, date)
}
