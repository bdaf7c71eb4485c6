package risk

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/southerncoder/my-Trading-Agents-sub007/internal/models"
)

func TestMarketRiskReadsReportTone(t *testing.T) {
	bearish := &models.AgentState{MarketReport: "Sharp decline below support, sell-off accelerating, bearish breakdown with heavy volatility."}
	bullish := &models.AgentState{MarketReport: "Stable uptrend holding support, bullish consolidation then breakout."}

	rb, err := assessMarketRisk(context.Background(), bearish)
	require.NoError(t, err)
	rg, err := assessMarketRisk(context.Background(), bullish)
	require.NoError(t, err)

	assert.Greater(t, rb.Score, 0.5)
	assert.Less(t, rg.Score, 0.5)
	assert.NotEmpty(t, rb.Factors)
}

func TestMarketRiskNoReport(t *testing.T) {
	r, err := assessMarketRisk(context.Background(), &models.AgentState{})
	require.NoError(t, err)
	assert.Equal(t, 0.5, r.Score)
	assert.Equal(t, []string{"no market data available"}, r.Factors)
}

func TestMarketRiskVolatilityBump(t *testing.T) {
	s := &models.AgentState{
		MarketReport: "Quiet tape, nothing notable in the session.",
		RiskMetrics:  models.RiskMetrics{Volatility: 0.55, DataPoints: 40},
	}
	r, err := assessMarketRisk(context.Background(), s)
	require.NoError(t, err)

	var found bool
	for _, f := range r.Factors {
		if f == "realized volatility 55% annualized" {
			found = true
		}
	}
	assert.True(t, found, "factors: %v", r.Factors)
}

func TestSentimentRiskTreatsEuphoriaAsRisk(t *testing.T) {
	s := &models.AgentState{SentimentReport: "Pure euphoria and greed across retail boards, heavily overbought chatter."}
	r, err := assessSentimentRisk(context.Background(), s)
	require.NoError(t, err)
	assert.Greater(t, r.Score, 0.6)
}

func TestNewsRiskFlagsHostileHeadlines(t *testing.T) {
	s := &models.AgentState{NewsReport: "Regulators opened an investigation; a class-action lawsuit followed the recall and a broker downgrade."}
	r, err := assessNewsRisk(context.Background(), s)
	require.NoError(t, err)
	assert.Greater(t, r.Score, 0.7)
	assert.Contains(t, r.Factors[0], "risk language")
}

func TestFundamentalRiskBothDirections(t *testing.T) {
	weak := &models.AgentState{FundamentalsReport: "Rising debt, declining revenue and margin compression; dilution risk from the new offering."}
	strong := &models.AgentState{FundamentalsReport: "Consistent revenue growth, strong balance sheet, expanding free cash flow."}

	rw, err := assessFundamentalRisk(context.Background(), weak)
	require.NoError(t, err)
	rs, err := assessFundamentalRisk(context.Background(), strong)
	require.NoError(t, err)

	assert.Greater(t, rw.Score, rs.Score)
}

func TestExecutionRiskScalesWithVolume(t *testing.T) {
	thin := &models.AgentState{RiskMetrics: models.RiskMetrics{AvgVolume: 40_000, DataPoints: 30}}
	deep := &models.AgentState{RiskMetrics: models.RiskMetrics{AvgVolume: 8_000_000, DataPoints: 30}}

	rt, err := assessExecutionRisk(context.Background(), thin)
	require.NoError(t, err)
	rd, err := assessExecutionRisk(context.Background(), deep)
	require.NoError(t, err)

	assert.Greater(t, rt.Score, rd.Score)
	assert.Contains(t, rt.Factors[0], "fills will move price")
}

func TestExecutionRiskNoMetrics(t *testing.T) {
	r, err := assessExecutionRisk(context.Background(), &models.AgentState{})
	require.NoError(t, err)
	assert.Equal(t, []string{"no execution data available"}, r.Factors)
}

func TestSectorRiskScansBothReports(t *testing.T) {
	s := &models.AgentState{
		NewsReport:   "New tariff schedule hits the whole supply chain.",
		MarketReport: "Sector rotation out of hardware names continues.",
	}
	r, err := assessSectorRisk(context.Background(), s)
	require.NoError(t, err)
	assert.Greater(t, r.Score, 0.6)
}

func TestVolatilityRiskFromMetrics(t *testing.T) {
	calm := &models.AgentState{RiskMetrics: models.RiskMetrics{Volatility: 0.12, DataPoints: 60}}
	wild := &models.AgentState{RiskMetrics: models.RiskMetrics{Volatility: 0.60, DataPoints: 60}}

	rc, err := assessVolatilityRisk(context.Background(), calm)
	require.NoError(t, err)
	rw, err := assessVolatilityRisk(context.Background(), wild)
	require.NoError(t, err)

	assert.Less(t, rc.Score, 0.3)
	assert.Greater(t, rw.Score, 0.9)
	assert.Contains(t, rc.Factors[1], "subdued")
	assert.Contains(t, rw.Factors[1], "elevated")
}

func TestAllComponentsStayInBounds(t *testing.T) {
	states := []*models.AgentState{
		{},
		fullState(),
		{MarketReport: "volatility volatility volatility decline drop sell-off correction breakdown weak bearish downtrend"},
	}
	fns := []AssessorFunc{
		assessMarketRisk, assessSentimentRisk, assessNewsRisk,
		assessFundamentalRisk, assessExecutionRisk, assessSectorRisk, assessVolatilityRisk,
	}
	for _, s := range states {
		for _, fn := range fns {
			r, err := fn(context.Background(), s)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, r.Score, 0.0)
			assert.LessOrEqual(t, r.Score, 1.0)
			assert.GreaterOrEqual(t, r.Confidence, 0.0)
			assert.LessOrEqual(t, r.Confidence, 1.0)
			assert.NotEmpty(t, r.Factors)
		}
	}
}
