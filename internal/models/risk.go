package models

import "time"

// RiskMetrics are quantitative inputs computed from daily candles. Zero
// values mean "not available"; consumers substitute conservative defaults.
type RiskMetrics struct {
	Volatility  float64 `json:"volatility"` // annualized stddev of daily returns
	AvgVolume   float64 `json:"avg_volume"`
	LastClose   float64 `json:"last_close"`
	WinRate     float64 `json:"win_rate"`     // fraction of up days
	PayoffRatio float64 `json:"payoff_ratio"` // avg up move / avg down move
	DataPoints  int     `json:"data_points"`
}

// RiskComponentResult is one risk dimension's verdict. Score runs 0..1 with
// higher meaning riskier; Confidence reflects how much data backed it.
type RiskComponentResult struct {
	Dimension  string   `json:"dimension"`
	Score      float64  `json:"score"`
	Confidence float64  `json:"confidence"`
	Weight     float64  `json:"weight"`
	Factors    []string `json:"factors"`
}

func (c RiskComponentResult) clone() RiskComponentResult {
	out := c
	out.Factors = append([]string(nil), c.Factors...)
	return out
}

// RiskAssessment is the weighted aggregate over all risk dimensions.
type RiskAssessment struct {
	OverallRisk     string                `json:"overall_risk"` // LOW, MEDIUM, HIGH
	OverallScore    float64               `json:"overall_score"`
	Confidence      float64               `json:"confidence"`
	Components      []RiskComponentResult `json:"components"`
	Recommendations []string              `json:"recommendations"`
	AssessedAt      time.Time             `json:"assessed_at"`
}

// Clone returns a deep copy.
func (a *RiskAssessment) Clone() *RiskAssessment {
	if a == nil {
		return nil
	}
	out := *a
	out.Components = make([]RiskComponentResult, len(a.Components))
	for i, c := range a.Components {
		out.Components[i] = c.clone()
	}
	out.Recommendations = append([]string(nil), a.Recommendations...)
	return &out
}

// Component returns the result for a dimension, if present.
func (a *RiskAssessment) Component(dimension string) (RiskComponentResult, bool) {
	if a == nil {
		return RiskComponentResult{}, false
	}
	for _, c := range a.Components {
		if c.Dimension == dimension {
			return c, true
		}
	}
	return RiskComponentResult{}, false
}
