package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/southerncoder/my-Trading-Agents-sub007/config"
	"github.com/southerncoder/my-Trading-Agents-sub007/consts"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/models"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/state"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/storage"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/workflow"
)

type fakeRecorder struct {
	records []storage.ExecutionRecord
	err     error
}

func (f *fakeRecorder) RecordRun(_ context.Context, rec storage.ExecutionRecord) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.records = append(f.records, rec)
	return "run-1", nil
}

type fakeReports struct {
	calls int
	err   error
}

func (f *fakeReports) WriteReports(_, _ string, _ *models.AgentState) error {
	f.calls++
	return f.err
}

func stubStage(name string, patch state.Patch) workflow.Stage {
	return workflow.Stage{Name: name, Run: func(_ context.Context, _ *models.AgentState) (state.Patch, error) {
		return patch, nil
	}}
}

func failingStage(name string) workflow.Stage {
	return workflow.Stage{Name: name, Run: func(_ context.Context, _ *models.AgentState) (state.Patch, error) {
		return nil, errors.New("provider offline")
	}}
}

func stubStages() Stages {
	return Stages{
		Market:       stubStage(consts.MarketAnalyst, state.MarketReportPatch{Report: "stable uptrend holding above support"}),
		Social:       stubStage(consts.SocialMediaAnalyst, state.SentimentReportPatch{Report: "optimism with balanced positioning"}),
		News:         stubStage(consts.NewsAnalyst, state.NewsReportPatch{Report: "analyst upgrade after an earnings beat"}),
		Fundamentals: stubStage(consts.FundamentalsAnalyst, state.FundamentalsReportPatch{Report: "margins healthy, balance sheet strong"}),

		Bull:            stubStage(consts.BullResearcher, state.BullArgumentPatch{Argument: "Bull Analyst: growth is accelerating"}),
		Bear:            stubStage(consts.BearResearcher, state.BearArgumentPatch{Argument: "Bear Analyst: multiple is stretched"}),
		ResearchManager: stubStage(consts.ResearchManager, state.ResearchVerdictPatch{Verdict: "bull case prevails", Plan: "build a starter position"}),

		Trader: stubStage(consts.Trader, state.TraderPlanPatch{Plan: "Accumulate on strength, bullish setup. FINAL TRANSACTION PROPOSAL: **BUY**"}),

		Risky:     stubStage(consts.RiskyAnalyst, state.RiskArgumentPatch{Speaker: consts.RiskyAnalyst, Argument: "Risky Analyst: size up"}),
		Safe:      stubStage(consts.SafeAnalyst, state.RiskArgumentPatch{Speaker: consts.SafeAnalyst, Argument: "Safe Analyst: size down"}),
		Neutral:   stubStage(consts.NeutralAnalyst, state.RiskArgumentPatch{Speaker: consts.NeutralAnalyst, Argument: "Neutral Analyst: split the difference"}),
		RiskJudge: stubStage(consts.RiskJudge, state.RiskVerdictPatch{Verdict: "proceed at reduced size"}),
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return config.DefaultConfigWithRoot(t.TempDir())
}

func TestExecuteRunsEveryPhaseInOrder(t *testing.T) {
	rec := &fakeRecorder{}
	rep := &fakeReports{}
	g := New(testConfig(t), stubStages(), rec, rep, zap.NewNop())

	res, err := g.Execute(context.Background(), "aapl", "2024-05-10")
	require.NoError(t, err)

	assert.Equal(t, []string{
		consts.MarketAnalyst, consts.SocialMediaAnalyst, consts.NewsAnalyst, consts.FundamentalsAnalyst,
		consts.BullResearcher, consts.BearResearcher, consts.ResearchManager,
		consts.Trader,
		consts.RiskyAnalyst, consts.SafeAnalyst, consts.NeutralAnalyst, consts.RiskJudge,
	}, res.AgentsExecuted)

	assert.Equal(t, "AAPL", res.FinalState.Ticker)
	assert.Equal(t, "bull case prevails", res.FinalState.InvestmentDebate.JudgeDecision)
	assert.Equal(t, "proceed at reduced size", res.FinalState.RiskDebate.JudgeDecision)
	require.NotNil(t, res.FinalState.RiskAssessment)
	require.NotNil(t, res.Decision)
	assert.NotEmpty(t, res.FinalState.FinalDecision)
	assert.NotEmpty(t, res.ProcessedSignal)

	// Bullish plan under moderate aggregate risk reads as a small entry.
	assert.Equal(t, consts.ActionBuySmall, res.Decision.Action)
	assert.Equal(t, consts.ActionBuy, res.ProcessedSignal)

	assert.Equal(t, "run-1", res.RunID)
	require.Len(t, rec.records, 1)
	assert.Equal(t, "AAPL", rec.records[0].Ticker)
	assert.Equal(t, res.ProcessedSignal, rec.records[0].Signal)
	assert.Equal(t, len(res.AgentsExecuted), rec.records[0].AgentsExecuted)
	assert.Equal(t, 1, rep.calls)
}

func TestExecuteSurvivesFailedAnalyst(t *testing.T) {
	stages := stubStages()
	stages.News = failingStage(consts.NewsAnalyst)
	g := New(testConfig(t), stages, nil, nil, zap.NewNop())

	res, err := g.Execute(context.Background(), "AAPL", "2024-05-10")
	require.NoError(t, err)

	assert.Empty(t, res.FinalState.NewsReport)
	assert.NotContains(t, res.AgentsExecuted, consts.NewsAnalyst)
	assert.Contains(t, res.AgentsExecuted, consts.MarketAnalyst)
	require.NotNil(t, res.Decision)
	assert.NotEmpty(t, res.FinalState.FinalDecision)
}

func TestExecuteSurvivesEveryStageFailing(t *testing.T) {
	stages := Stages{
		Market:       failingStage(consts.MarketAnalyst),
		Social:       failingStage(consts.SocialMediaAnalyst),
		News:         failingStage(consts.NewsAnalyst),
		Fundamentals: failingStage(consts.FundamentalsAnalyst),

		Bull:            failingStage(consts.BullResearcher),
		Bear:            failingStage(consts.BearResearcher),
		ResearchManager: failingStage(consts.ResearchManager),

		Trader: failingStage(consts.Trader),

		Risky:     failingStage(consts.RiskyAnalyst),
		Safe:      failingStage(consts.SafeAnalyst),
		Neutral:   failingStage(consts.NeutralAnalyst),
		RiskJudge: failingStage(consts.RiskJudge),
	}
	g := New(testConfig(t), stages, nil, nil, zap.NewNop())

	res, err := g.Execute(context.Background(), "AAPL", "2024-05-10")
	require.NoError(t, err)

	assert.Empty(t, res.AgentsExecuted)
	require.NotNil(t, res.Decision)
	// Nothing merged, so the plan is empty and risk reads neutral: hold.
	assert.Equal(t, consts.ActionHold, res.Decision.Action)
	assert.Equal(t, consts.ActionHold, res.ProcessedSignal)
}

func TestExecuteSwallowsPersistenceFailures(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("disk full")}
	rep := &fakeReports{err: errors.New("disk full")}
	g := New(testConfig(t), stubStages(), rec, rep, zap.NewNop())

	res, err := g.Execute(context.Background(), "AAPL", "2024-05-10")
	require.NoError(t, err)
	assert.Empty(t, res.RunID)
	require.NotNil(t, res.Decision)
}

func TestExecuteRejectsInvalidInput(t *testing.T) {
	g := New(testConfig(t), stubStages(), nil, nil, zap.NewNop())

	_, err := g.Execute(context.Background(), "", "2024-05-10")
	assert.Error(t, err)

	_, err = g.Execute(context.Background(), "AAPL", "10/05/2024")
	assert.Error(t, err)
}
