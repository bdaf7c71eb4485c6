package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/southerncoder/my-Trading-Agents-sub007/consts"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/models"
)

func assessment(level string, score, confidence float64) *models.RiskAssessment {
	return &models.RiskAssessment{
		OverallRisk:     level,
		OverallScore:    score,
		Confidence:      confidence,
		Recommendations: []string{"test recommendation"},
	}
}

func bullishState() *models.AgentState {
	return &models.AgentState{
		Ticker:     "AAPL",
		TradeDate:  "2024-05-10",
		TraderPlan: "Accumulate on dips; the upside is intact and I remain bullish into earnings.",
		RiskMetrics: models.RiskMetrics{
			WinRate: 0.55, PayoffRatio: 1.5, Volatility: 0.18, DataPoints: 60,
		},
	}
}

func TestClassifySentiment(t *testing.T) {
	cases := []struct {
		plan string
		want string
	}{
		{"Strong buy, bullish setup with upside", consts.SentimentBullish},
		{"Time to sell and go short, downside ahead", consts.SentimentBearish},
		{"The company held its annual meeting on Tuesday.", consts.SentimentNeutral},
		{"", consts.SentimentNeutral},
		{"buy the support, sell the resistance", consts.SentimentNeutral}, // tie
		// Keyword matching has no negation handling: the sell mention wins.
		{"There is no reason to sell here", consts.SentimentBearish},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifySentiment(tc.plan), "plan=%q", tc.plan)
	}
}

func TestHighRiskForcesHoldOverBullishPlan(t *testing.T) {
	sy := NewSynthesizer(zap.NewNop())
	d := sy.Decide(bullishState(), assessment(consts.RiskHigh, 0.75, 0.8))

	require.NotNil(t, d)
	assert.Equal(t, consts.ActionHold, d.Action)
	assert.Equal(t, consts.SentimentBullish, d.Sentiment)
	assert.Contains(t, d.Justification, "high risk")
}

func TestScoreAboveGuardForcesHoldEvenAtMediumLevel(t *testing.T) {
	sy := NewSynthesizer(zap.NewNop())
	d := sy.Decide(bullishState(), assessment(consts.RiskMedium, 0.85, 0.8))
	assert.Equal(t, consts.ActionHold, d.Action)
}

func TestLowConfidenceForcesHoldDespiteLowRisk(t *testing.T) {
	sy := NewSynthesizer(zap.NewNop())
	d := sy.Decide(bullishState(), assessment(consts.RiskLow, 0.2, 0.2))

	assert.Equal(t, consts.ActionHold, d.Action)
	assert.Contains(t, d.Justification, "confidence")
}

func TestDecisionTable(t *testing.T) {
	bearish := bullishState()
	bearish.TraderPlan = "Overvalued; reduce and sell into strength, downside risk dominates."

	cases := []struct {
		name  string
		state *models.AgentState
		ra    *models.RiskAssessment
		want  string
	}{
		{"bullish low", bullishState(), assessment(consts.RiskLow, 0.2, 0.7), consts.ActionBuy},
		{"bullish medium", bullishState(), assessment(consts.RiskMedium, 0.5, 0.7), consts.ActionBuySmall},
		{"bearish low", bearish, assessment(consts.RiskLow, 0.2, 0.7), consts.ActionSell},
		{"bearish medium", bearish, assessment(consts.RiskMedium, 0.5, 0.7), consts.ActionSellSmall},
		{"neutral low", &models.AgentState{Ticker: "AAPL", TraderPlan: "nothing remarkable"}, assessment(consts.RiskLow, 0.2, 0.7), consts.ActionHold},
	}
	sy := NewSynthesizer(zap.NewNop())
	for _, tc := range cases {
		d := sy.Decide(tc.state, tc.ra)
		require.NotNil(t, d, tc.name)
		assert.Equal(t, tc.want, d.Action, tc.name)
		assert.NotEmpty(t, d.Justification, tc.name)
	}
}

func TestEveryBranchJustifies(t *testing.T) {
	sy := NewSynthesizer(zap.NewNop())
	plans := []string{"", "bullish buy upside", "bearish sell downside"}
	ras := []*models.RiskAssessment{
		assessment(consts.RiskLow, 0.1, 0.9),
		assessment(consts.RiskMedium, 0.5, 0.5),
		assessment(consts.RiskHigh, 0.9, 0.9),
		assessment(consts.RiskLow, 0.1, 0.25),
	}
	for _, plan := range plans {
		for _, ra := range ras {
			s := bullishState()
			s.TraderPlan = plan
			d := sy.Decide(s, ra)
			require.NotNil(t, d)
			assert.NotEmpty(t, d.Justification)
			assert.NotEmpty(t, d.Action)
		}
	}
}

func TestMissingAssessmentFallsBack(t *testing.T) {
	sy := NewSynthesizer(zap.NewNop())
	d := sy.Decide(bullishState(), nil)

	require.NotNil(t, d)
	assert.Equal(t, consts.ActionHold, d.Action)
	assert.Equal(t, "HOLD - decision system error", Summary(d))
}

func TestSummaryShape(t *testing.T) {
	assert.Equal(t, "HOLD - decision system error", Summary(nil))

	d := &models.TradeDecision{Action: consts.ActionBuySmall, Justification: "bullish plan tempered by moderate risk"}
	assert.Equal(t, "BUY_SMALL - bullish plan tempered by moderate risk", Summary(d))
}
