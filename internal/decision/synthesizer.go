// Package decision turns the trader's free-text plan and the risk aggregate
// into the run's final structured decision: action, position size, and an
// auditable justification.
package decision

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/southerncoder/my-Trading-Agents-sub007/consts"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/models"
)

// Keyword sets for plan classification. Matching is naive by design:
// "no reason to sell" still counts a sell mention, the same limitation the
// analysts' free-text style has always had.
var (
	bullishTerms = []string{"buy", "bullish", "long", "accumulate", "upside", "undervalued", "positive outlook"}
	bearishTerms = []string{"sell", "bearish", "short", "reduce", "exit", "downside", "overvalued", "negative outlook"}
)

// ClassifySentiment buckets a free-text plan by keyword presence. Ties and
// keyword-free text read as NEUTRAL.
func ClassifySentiment(plan string) string {
	text := strings.ToLower(plan)
	if strings.TrimSpace(text) == "" {
		return consts.SentimentNeutral
	}
	bull := 0
	for _, term := range bullishTerms {
		bull += strings.Count(text, term)
	}
	bear := 0
	for _, term := range bearishTerms {
		bear += strings.Count(text, term)
	}
	switch {
	case bull > bear:
		return consts.SentimentBullish
	case bear > bull:
		return consts.SentimentBearish
	default:
		return consts.SentimentNeutral
	}
}

// Synthesizer applies the decision table.
type Synthesizer struct {
	log *zap.Logger
}

func NewSynthesizer(log *zap.Logger) *Synthesizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Synthesizer{log: log}
}

// Decide maps (sentiment, risk) to the final action and sizing. It never
// fails: a missing assessment or an internal panic falls back to the
// system-error HOLD so a run always ends with a decision.
func (sy *Synthesizer) Decide(s *models.AgentState, ra *models.RiskAssessment) (d *models.TradeDecision) {
	defer func() {
		if r := recover(); r != nil {
			sy.log.Error("decision synthesis panicked", zap.Any("cause", r))
			d = sy.fallback(s)
		}
	}()
	if ra == nil {
		sy.log.Error("decision synthesis missing risk assessment")
		return sy.fallback(s)
	}

	sentiment := ClassifySentiment(s.TraderPlan)
	sizing := Size(SizingFromState(s, ra.OverallScore))

	action, why := applyTable(sentiment, ra)
	justification := fmt.Sprintf("%s (risk %s %.2f, confidence %.2f, size %.1f%%)",
		why, ra.OverallRisk, ra.OverallScore, ra.Confidence, sizing.Recommended*100)

	sy.log.Info("decision synthesized",
		zap.String("ticker", s.Ticker),
		zap.String("action", action),
		zap.String("sentiment", sentiment),
		zap.String("risk_level", ra.OverallRisk),
		zap.Float64("recommended_size", sizing.Recommended),
	)

	return &models.TradeDecision{
		Ticker:        s.Ticker,
		TradeDate:     s.TradeDate,
		Action:        action,
		Sentiment:     sentiment,
		RiskLevel:     ra.OverallRisk,
		RiskScore:     ra.OverallScore,
		Confidence:    ra.Confidence,
		Sizing:        sizing,
		Justification: justification,
		CreatedAt:     time.Now(),
	}
}

// applyTable is the fixed (sentiment, risk) decision table. High risk and
// low confidence trump sentiment unconditionally.
func applyTable(sentiment string, ra *models.RiskAssessment) (string, string) {
	if ra.OverallRisk == consts.RiskHigh || ra.OverallScore > 0.8 {
		return consts.ActionHold, "high risk forces HOLD regardless of sentiment"
	}
	if ra.Confidence < 0.3 {
		return consts.ActionHold, "assessment confidence below actionable threshold, holding"
	}
	switch {
	case sentiment == consts.SentimentBullish && ra.OverallRisk == consts.RiskLow:
		return consts.ActionBuy, "bullish plan with low risk supports a full entry"
	case sentiment == consts.SentimentBullish && ra.OverallRisk == consts.RiskMedium:
		return consts.ActionBuySmall, "bullish plan tempered by moderate risk, entering small"
	case sentiment == consts.SentimentBearish && ra.OverallRisk == consts.RiskLow:
		return consts.ActionSell, "bearish plan with low risk supports a full exit"
	case sentiment == consts.SentimentBearish && ra.OverallRisk == consts.RiskMedium:
		return consts.ActionSellSmall, "bearish plan tempered by moderate risk, trimming"
	default:
		return consts.ActionHold, "no actionable sentiment and risk combination, holding"
	}
}

// fallback is the decision-system-error HOLD.
func (sy *Synthesizer) fallback(s *models.AgentState) *models.TradeDecision {
	return &models.TradeDecision{
		Ticker:        s.Ticker,
		TradeDate:     s.TradeDate,
		Action:        consts.ActionHold,
		Sentiment:     consts.SentimentNeutral,
		RiskLevel:     consts.RiskHigh,
		RiskScore:     0.9,
		Confidence:    0.1,
		Sizing:        models.PositionSizing{Recommended: minPosition, PortfolioCapped: minPosition},
		Justification: "decision system error",
		CreatedAt:     time.Now(),
	}
}

// Summary renders the final-decision line stored on the state, for example
// "BUY_SMALL - bullish plan tempered by moderate risk...". The fallback
// renders exactly "HOLD - decision system error".
func Summary(d *models.TradeDecision) string {
	if d == nil {
		return consts.ActionHold + " - decision system error"
	}
	return d.Action + " - " + d.Justification
}
