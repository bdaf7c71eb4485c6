package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/southerncoder/my-Trading-Agents-sub007/internal/models"
)

func TestStoreAppendsRunsPerTicker(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	for _, rec := range []ExecutionRecord{
		{Ticker: "AAPL", TradeDate: "2024-05-09", Action: "HOLD", Signal: "HOLD"},
		{Ticker: "AAPL", TradeDate: "2024-05-10", Action: "BUY_SMALL", Signal: "BUY", RiskLevel: "MEDIUM", RiskScore: 0.42, Confidence: 0.7, AgentsExecuted: 12, ExecutionTimeMs: 1500, StateJSON: `{"ticker":"AAPL"}`},
		{Ticker: "MSFT", TradeDate: "2024-05-10", Action: "SELL", Signal: "SELL"},
	} {
		id, err := store.RecordRun(ctx, rec)
		require.NoError(t, err)
		assert.NotEmpty(t, id)
	}

	runs, err := store.RunsForTicker(ctx, "aapl", 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	// Newest first.
	assert.Equal(t, "2024-05-10", runs[0].TradeDate)
	assert.Equal(t, "BUY", runs[0].Signal)
	assert.Equal(t, 12, runs[0].AgentsExecuted)
	assert.Equal(t, "2024-05-09", runs[1].TradeDate)

	all, err := store.RecentRuns(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "MSFT", all[0].Ticker)
}

func TestStoreRejectsIncompleteRecords(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer store.Close()

	_, err = store.RecordRun(context.Background(), ExecutionRecord{TradeDate: "2024-05-10"})
	assert.Error(t, err)
	_, err = store.RecordRun(context.Background(), ExecutionRecord{Ticker: "AAPL"})
	assert.Error(t, err)
}

func TestWriteReportsSkipsEmptyFields(t *testing.T) {
	dir := t.TempDir()
	r := NewReports(dir, zap.NewNop())

	s := &models.AgentState{
		Ticker:        "AAPL",
		TradeDate:     "2024-05-10",
		MarketReport:  "bars look constructive",
		TraderPlan:    "scale in over three sessions",
		FinalDecision: "BUY_SMALL - bullish plan tempered by moderate risk",
		Decision: &models.TradeDecision{
			Sentiment: "BULLISH", RiskLevel: "MEDIUM", RiskScore: 0.42, Confidence: 0.7,
			Sizing: models.PositionSizing{Recommended: 0.04, Kelly: 0.12, RiskAdjusted: 0.07, VolAdjusted: 0.05},
		},
	}
	require.NoError(t, r.WriteReports("aapl", "2024-05-10", s))

	reports := filepath.Join(dir, "AAPL", "2024-05-10", "reports")
	for _, name := range []string{"market_report.md", "trader_plan.md", "final_decision.md"} {
		_, err := os.Stat(filepath.Join(reports, name))
		assert.NoError(t, err, name)
	}
	for _, name := range []string{"news_report.md", "sentiment_report.md", "investment_plan.md"} {
		_, err := os.Stat(filepath.Join(reports, name))
		assert.True(t, os.IsNotExist(err), name)
	}

	content, err := os.ReadFile(filepath.Join(reports, "final_decision.md"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "BUY_SMALL")
	assert.Contains(t, string(content), "Recommended size: 4.0%")
}
