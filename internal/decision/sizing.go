package decision

import (
	"math"

	"github.com/southerncoder/my-Trading-Agents-sub007/internal/models"
)

// Position bounds and the Kelly cap. Kelly output above 20% of the book is
// treated as model optimism, not signal.
const (
	kellyCap    = 0.20
	minPosition = 0.01
	maxPosition = 0.25
)

// Conservative stand-ins when price history never made it into the run.
const (
	defaultWinRate     = 0.55
	defaultPayoffRatio = 1.5
	defaultVolatility  = 0.15
)

// SizingInputs feed the sizing pipeline.
type SizingInputs struct {
	WinRate     float64
	PayoffRatio float64
	RiskScore   float64
	Volatility  float64
}

// shrinkStep is one stage of the pipeline. The fold in Size caps every
// step's output at its input, so a step can only hold or reduce the size.
type shrinkStep func(size float64, in SizingInputs) float64

func riskShrink(size float64, in SizingInputs) float64 {
	return size * math.Max(0.3, 1-in.RiskScore)
}

func volatilityShrink(size float64, in SizingInputs) float64 {
	return size * math.Max(0.2, 1-2*in.Volatility)
}

// Size runs the shrink chain: Kelly estimate, risk scaling, volatility
// scaling, portfolio clamp. The recommendation is half-Kelly further capped
// by every other stage, then forced into the position bounds.
func Size(in SizingInputs) models.PositionSizing {
	in = withDefaults(in)

	b := in.PayoffRatio
	p := in.WinRate
	q := 1 - p
	kelly := clamp((b*p-q)/b, 0, kellyCap)

	chain := []shrinkStep{riskShrink, volatilityShrink}
	sizes := make([]float64, 0, len(chain))
	cur := kelly
	for _, step := range chain {
		next := step(cur, in)
		if next > cur {
			next = cur
		}
		sizes = append(sizes, next)
		cur = next
	}
	riskAdjusted, volAdjusted := sizes[0], sizes[1]
	portfolioCapped := clamp(volAdjusted, minPosition, maxPosition)

	recommended := math.Min(0.5*kelly, riskAdjusted)
	recommended = math.Min(recommended, volAdjusted)
	recommended = math.Min(recommended, portfolioCapped)
	recommended = clamp(recommended, minPosition, maxPosition)

	return models.PositionSizing{
		Kelly:           kelly,
		RiskAdjusted:    riskAdjusted,
		VolAdjusted:     volAdjusted,
		PortfolioCapped: portfolioCapped,
		Recommended:     recommended,
	}
}

// SizingFromState pulls the pipeline inputs out of a run.
func SizingFromState(s *models.AgentState, riskScore float64) SizingInputs {
	return SizingInputs{
		WinRate:     s.RiskMetrics.WinRate,
		PayoffRatio: s.RiskMetrics.PayoffRatio,
		RiskScore:   riskScore,
		Volatility:  s.RiskMetrics.Volatility,
	}
}

func withDefaults(in SizingInputs) SizingInputs {
	if in.WinRate <= 0 || in.WinRate >= 1 {
		in.WinRate = defaultWinRate
	}
	if in.PayoffRatio <= 0 {
		in.PayoffRatio = defaultPayoffRatio
	}
	if in.Volatility <= 0 {
		in.Volatility = defaultVolatility
	}
	in.RiskScore = clamp(in.RiskScore, 0, 1)
	return in
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
