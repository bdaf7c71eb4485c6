package risk

import (
	"context"
	"fmt"
	"strings"

	"github.com/southerncoder/my-Trading-Agents-sub007/internal/models"
)

// noDataResult is the neutral answer for a dimension with nothing to read.
// The factor string is the placeholder shape the aggregator discounts.
func noDataResult(dimension string) models.RiskComponentResult {
	return models.RiskComponentResult{
		Score:      0.5,
		Confidence: 0.3,
		Factors:    []string{fmt.Sprintf("no %s data available", dimension)},
	}
}

// scanPhrases counts how often any of the phrases occur in lower-cased text
// and returns the ones that matched.
func scanPhrases(text string, phrases []string) (int, []string) {
	hits := 0
	var matched []string
	for _, p := range phrases {
		if n := strings.Count(text, p); n > 0 {
			hits += n
			matched = append(matched, p)
		}
	}
	return hits, matched
}

// textRisk turns risky/calming phrase counts into a 0..1 score around the
// 0.5 neutral line. Keyword matching is deliberately naive: "no reason to
// sell" still counts as a sell mention, matching the upstream analysts'
// free-text style.
func textRisk(text string, risky, calming []string) (float64, []string) {
	riskyHits, riskyMatched := scanPhrases(text, risky)
	calmHits, calmMatched := scanPhrases(text, calming)

	score := clamp(0.5+0.08*float64(riskyHits)-0.06*float64(calmHits), 0.05, 0.95)

	var factors []string
	if len(riskyMatched) > 0 {
		factors = append(factors, "risk language: "+strings.Join(riskyMatched, ", "))
	}
	if len(calmMatched) > 0 {
		factors = append(factors, "supportive language: "+strings.Join(calmMatched, ", "))
	}
	return score, factors
}

// textConfidence grows with how much material the analyst produced.
func textConfidence(text string) float64 {
	switch n := len(text); {
	case n >= 400:
		return 0.8
	case n >= 100:
		return 0.6
	default:
		return 0.4
	}
}

func assessMarketRisk(_ context.Context, s *models.AgentState) (models.RiskComponentResult, error) {
	text := strings.ToLower(s.MarketReport)
	if strings.TrimSpace(text) == "" {
		return noDataResult(DimensionMarket), nil
	}
	score, factors := textRisk(text,
		[]string{"volatility", "decline", "drop", "bearish", "downtrend", "correction", "sell-off", "oversold", "breakdown", "resistance", "weak"},
		[]string{"stable", "uptrend", "support", "bullish", "steady", "consolidation", "breakout"},
	)
	if m := s.RiskMetrics; m.DataPoints > 0 && m.Volatility > 0.40 {
		score = clamp01(score + 0.10)
		factors = append(factors, fmt.Sprintf("realized volatility %.0f%% annualized", m.Volatility*100))
	}
	if len(factors) == 0 {
		factors = append(factors, "market report shows no pronounced risk signals")
	}
	return models.RiskComponentResult{Score: score, Confidence: textConfidence(text), Factors: factors}, nil
}

func assessSentimentRisk(_ context.Context, s *models.AgentState) (models.RiskComponentResult, error) {
	text := strings.ToLower(s.SentimentReport)
	if strings.TrimSpace(text) == "" {
		return noDataResult(DimensionSentiment), nil
	}
	// Euphoria reads as risk here just like fear: stretched sentiment in
	// either direction precedes sharp reversals.
	score, factors := textRisk(text,
		[]string{"fear", "panic", "capitulation", "pessimism", "euphoria", "greed", "overbought", "mania", "negative sentiment"},
		[]string{"optimism", "constructive", "positive sentiment", "confidence", "balanced"},
	)
	if len(factors) == 0 {
		factors = append(factors, "sentiment reads unremarkable")
	}
	return models.RiskComponentResult{Score: score, Confidence: textConfidence(text), Factors: factors}, nil
}

func assessNewsRisk(_ context.Context, s *models.AgentState) (models.RiskComponentResult, error) {
	text := strings.ToLower(s.NewsReport)
	if strings.TrimSpace(text) == "" {
		return noDataResult(DimensionNews), nil
	}
	score, factors := textRisk(text,
		[]string{"lawsuit", "investigation", "probe", "downgrade", "recall", "fraud", "layoffs", "warning", "miss", "shortfall", "regulatory action"},
		[]string{"upgrade", "beat", "partnership", "approval", "record revenue", "raised guidance"},
	)
	if len(factors) == 0 {
		factors = append(factors, "news flow carries no flagged events")
	}
	return models.RiskComponentResult{Score: score, Confidence: textConfidence(text), Factors: factors}, nil
}

func assessFundamentalRisk(_ context.Context, s *models.AgentState) (models.RiskComponentResult, error) {
	text := strings.ToLower(s.FundamentalsReport)
	if strings.TrimSpace(text) == "" {
		return noDataResult(DimensionFundamental), nil
	}
	score, factors := textRisk(text,
		[]string{"debt", "loss", "declining revenue", "margin compression", "dilution", "impairment", "negative cash flow", "overvalued", "going concern"},
		[]string{"profitability", "revenue growth", "strong balance sheet", "free cash flow", "undervalued", "margin expansion"},
	)
	if len(factors) == 0 {
		factors = append(factors, "fundamentals show no flagged weaknesses")
	}
	return models.RiskComponentResult{Score: score, Confidence: textConfidence(text), Factors: factors}, nil
}

func assessExecutionRisk(_ context.Context, s *models.AgentState) (models.RiskComponentResult, error) {
	m := s.RiskMetrics
	if m.DataPoints == 0 {
		return noDataResult(DimensionExecution), nil
	}
	score := 0.25
	var factors []string
	switch {
	case m.AvgVolume < 100_000:
		score += 0.45
		factors = append(factors, fmt.Sprintf("average volume %.0f shares: fills will move price", m.AvgVolume))
	case m.AvgVolume < 1_000_000:
		score += 0.25
		factors = append(factors, fmt.Sprintf("average volume %.0f shares: moderate liquidity", m.AvgVolume))
	default:
		factors = append(factors, "liquidity adequate for normal position sizes")
	}
	if m.Volatility > 0.50 {
		score += 0.15
		factors = append(factors, "gap risk elevated at current volatility")
	}
	return models.RiskComponentResult{Score: clamp01(score), Confidence: 0.7, Factors: factors}, nil
}

func assessSectorRisk(_ context.Context, s *models.AgentState) (models.RiskComponentResult, error) {
	text := strings.ToLower(s.NewsReport + "\n" + s.MarketReport)
	if strings.TrimSpace(text) == "" {
		return noDataResult(DimensionSector), nil
	}
	score, factors := textRisk(text,
		[]string{"sector rotation", "regulation", "tariff", "industry-wide", "antitrust", "supply chain", "pricing pressure", "competition"},
		[]string{"sector tailwind", "industry growth", "secular trend"},
	)
	if len(factors) == 0 {
		factors = append(factors, "no sector-level stress detected in coverage")
	}
	return models.RiskComponentResult{Score: score, Confidence: 0.5, Factors: factors}, nil
}

func assessVolatilityRisk(_ context.Context, s *models.AgentState) (models.RiskComponentResult, error) {
	m := s.RiskMetrics
	if m.DataPoints == 0 {
		return noDataResult(DimensionVolatility), nil
	}
	// 0.15 annualized sits comfortably low, 0.55+ saturates the scale.
	score := clamp(m.Volatility*1.8, 0.05, 0.95)
	factors := []string{fmt.Sprintf("annualized volatility %.1f%% over %d sessions", m.Volatility*100, m.DataPoints)}
	switch {
	case m.Volatility > 0.40:
		factors = append(factors, "volatility regime: elevated")
	case m.Volatility < 0.15:
		factors = append(factors, "volatility regime: subdued")
	default:
		factors = append(factors, "volatility regime: normal")
	}
	return models.RiskComponentResult{Score: score, Confidence: 0.9, Factors: factors}, nil
}
