package models

import "time"

// PositionSizing records every step of the sizing pipeline so the final
// number can be audited against its inputs.
type PositionSizing struct {
	Kelly           float64 `json:"kelly"`
	RiskAdjusted    float64 `json:"risk_adjusted"`
	VolAdjusted     float64 `json:"vol_adjusted"`
	PortfolioCapped float64 `json:"portfolio_capped"`
	Recommended     float64 `json:"recommended"`
}

// TradeDecision is the synthesizer's structured output for one run.
type TradeDecision struct {
	Ticker        string         `json:"ticker"`
	TradeDate     string         `json:"trade_date"`
	Action        string         `json:"action"`
	Sentiment     string         `json:"sentiment"`
	RiskLevel     string         `json:"risk_level"`
	RiskScore     float64        `json:"risk_score"`
	Confidence    float64        `json:"confidence"`
	Sizing        PositionSizing `json:"sizing"`
	Justification string         `json:"justification"`
	CreatedAt     time.Time      `json:"created_at"`
}
