package decision

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeDefaultsGiveWorkableNumbers(t *testing.T) {
	s := Size(SizingInputs{})

	// p=0.55, b=1.5 puts raw Kelly at 0.25, capped to the 0.20 ceiling.
	assert.InDelta(t, 0.20, s.Kelly, 1e-9)
	assert.GreaterOrEqual(t, s.Recommended, minPosition)
	assert.LessOrEqual(t, s.Recommended, maxPosition)
}

func TestSizeChainShrinksMonotonically(t *testing.T) {
	inputs := []SizingInputs{
		{WinRate: 0.55, PayoffRatio: 1.5, RiskScore: 0.33, Volatility: 0.15},
		{WinRate: 0.60, PayoffRatio: 2.0, RiskScore: 0.10, Volatility: 0.10},
		{WinRate: 0.52, PayoffRatio: 1.2, RiskScore: 0.85, Volatility: 0.55},
	}
	for _, in := range inputs {
		s := Size(in)
		assert.LessOrEqual(t, s.RiskAdjusted, s.Kelly, "%+v", in)
		assert.LessOrEqual(t, s.VolAdjusted, s.RiskAdjusted, "%+v", in)
	}
}

func TestRecommendedNeverExceedsAnyStage(t *testing.T) {
	// Positive-edge inputs where no clamp needs to rescue a collapsed size.
	inputs := []SizingInputs{
		{WinRate: 0.55, PayoffRatio: 1.5, RiskScore: 0.33, Volatility: 0.15},
		{WinRate: 0.58, PayoffRatio: 1.8, RiskScore: 0.50, Volatility: 0.25},
		{WinRate: 0.62, PayoffRatio: 2.2, RiskScore: 0.20, Volatility: 0.30},
	}
	for _, in := range inputs {
		s := Size(in)
		bound := math.Min(math.Min(s.Kelly, s.RiskAdjusted), math.Min(s.VolAdjusted, s.PortfolioCapped))
		assert.LessOrEqual(t, s.Recommended, bound+1e-12, "%+v", in)
		assert.LessOrEqual(t, s.Recommended, 0.5*s.Kelly+1e-12, "%+v", in)
	}
}

func TestRecommendedStaysInPositionBounds(t *testing.T) {
	inputs := []SizingInputs{
		{},
		{WinRate: 0.30, PayoffRatio: 1.0, RiskScore: 0.95, Volatility: 0.90}, // negative edge collapses to the floor
		{WinRate: 0.90, PayoffRatio: 5.0, RiskScore: 0.0, Volatility: 0.01},
		{WinRate: 0.55, PayoffRatio: 1.5, RiskScore: 1.0, Volatility: 0.0},
	}
	for _, in := range inputs {
		s := Size(in)
		assert.GreaterOrEqual(t, s.Recommended, minPosition, "%+v", in)
		assert.LessOrEqual(t, s.Recommended, maxPosition, "%+v", in)
		assert.GreaterOrEqual(t, s.PortfolioCapped, minPosition, "%+v", in)
		assert.LessOrEqual(t, s.PortfolioCapped, maxPosition, "%+v", in)
	}
}

func TestNegativeEdgeKellyClampsToZero(t *testing.T) {
	s := Size(SizingInputs{WinRate: 0.30, PayoffRatio: 1.0, RiskScore: 0.5, Volatility: 0.2})
	assert.Zero(t, s.Kelly)
	// The floor, not the chain, carries the recommendation here.
	assert.Equal(t, minPosition, s.Recommended)
}

func TestShrinkMultiplierFloors(t *testing.T) {
	// Risk multiplier bottoms out at 0.3 and volatility at 0.2, so even a
	// worst-case read keeps 6% of the Kelly estimate.
	s := Size(SizingInputs{WinRate: 0.55, PayoffRatio: 1.5, RiskScore: 1.0, Volatility: 0.9})
	require.InDelta(t, 0.20, s.Kelly, 1e-9)
	assert.InDelta(t, 0.20*0.3, s.RiskAdjusted, 1e-9)
	assert.InDelta(t, 0.20*0.3*0.2, s.VolAdjusted, 1e-9)
}

func TestSizingFromStateUsesMetrics(t *testing.T) {
	st := bullishState()
	in := SizingFromState(st, 0.4)
	assert.Equal(t, 0.55, in.WinRate)
	assert.Equal(t, 1.5, in.PayoffRatio)
	assert.Equal(t, 0.18, in.Volatility)
	assert.Equal(t, 0.4, in.RiskScore)
}
