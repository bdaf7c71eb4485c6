package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/southerncoder/my-Trading-Agents-sub007/config"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/agents"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/cache"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/dataflows"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/display"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/graph"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/llm"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/logging"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/resilience"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/storage"
)

func newAnalyzeCmd(cfg *config.Config) *cobra.Command {
	var date string
	var rounds int

	cmd := &cobra.Command{
		Use:   "analyze TICKER",
		Short: "Run the full analysis workflow for one ticker",
		Long: `Run every agent phase for a ticker and trade date and print the final
recommendation. Example: tradingagents analyze AAPL --date 2024-05-10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if date == "" {
				date = time.Now().Format("2006-01-02")
			}
			if rounds > 0 {
				cfg.MaxDebateRounds = rounds
				cfg.MaxRiskDiscussRounds = rounds
			}
			return runAnalysis(cmd.Context(), cfg, args[0], date)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "trade date in YYYY-MM-DD format (default today)")
	cmd.Flags().IntVar(&rounds, "rounds", 0, "override debate and risk discussion rounds")
	return cmd
}

// runAnalysis wires the collaborators, executes one run, and renders it.
func runAnalysis(ctx context.Context, cfg *config.Config, ticker, date string) error {
	log := logging.L()

	g, cleanup, err := buildGraph(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := g.Execute(ctx, ticker, date)
	if err != nil {
		return err
	}
	fmt.Println(display.RenderResult(res))
	return nil
}

// buildGraph assembles the production workflow: chat models, data providers,
// cache, resilience runner, persistence, and the stage roster. The returned
// cleanup closes provider and store handles.
func buildGraph(ctx context.Context, cfg *config.Config, log *zap.Logger) (*graph.TradingGraph, func(), error) {
	chatModels, err := llm.NewModels(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("configure chat models: %w", err)
	}

	runner := resilience.NewRunner(log)
	cacheStore := cache.New(cfg.DataCacheDir, cfg.CacheEnabled)
	data := dataflows.NewService(cfg, cacheStore, runner, log)

	deps := &agents.Deps{
		Quick: llm.NewInvoker(chatModels.Quick, runner, log, "quick_think"),
		Deep:  llm.NewInvoker(chatModels.Deep, runner, log, "deep_think"),
		Data:  data,
		Log:   log,
	}

	// Run persistence is best-effort: without a store the run still happens,
	// it just leaves no log row.
	var runs graph.RunRecorder
	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		log.Warn("run log store unavailable", zap.Error(err))
	} else {
		runs = store
	}

	g := graph.New(cfg, graph.DefaultStages(deps), runs, storage.NewReports(cfg.ResultsDir, log), log)
	cleanup := func() {
		if store != nil {
			_ = store.Close()
		}
		_ = data.Close()
		logging.Sync()
	}
	return g, cleanup, nil
}
