// Package risk scores a run across seven independent dimensions and folds
// them into one weighted assessment. Component failures degrade to neutral
// results; only a total engine failure produces the fail-safe HIGH verdict.
package risk

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/southerncoder/my-Trading-Agents-sub007/consts"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/models"
)

// Risk dimensions, in canonical order.
const (
	DimensionMarket      = "market"
	DimensionSentiment   = "sentiment"
	DimensionNews        = "news"
	DimensionFundamental = "fundamental"
	DimensionExecution   = "execution"
	DimensionSector      = "sector"
	DimensionVolatility  = "volatility"
)

// Fixed dimension weights. They sum to exactly 1.0.
const (
	weightMarket      = 0.20
	weightSentiment   = 0.15
	weightNews        = 0.15
	weightFundamental = 0.20
	weightExecution   = 0.10
	weightSector      = 0.15
	weightVolatility  = 0.05
)

// AssessorFunc scores one dimension from a state snapshot.
type AssessorFunc func(ctx context.Context, s *models.AgentState) (models.RiskComponentResult, error)

type assessor struct {
	dimension string
	weight    float64
	run       AssessorFunc
}

// Engine fans the assessors out, joins every result, and aggregates.
type Engine struct {
	log       *zap.Logger
	assessors []assessor
}

// NewEngine returns an engine wired with the seven standard assessors.
func NewEngine(log *zap.Logger) *Engine {
	return newEngineWith(log, []assessor{
		{DimensionMarket, weightMarket, assessMarketRisk},
		{DimensionSentiment, weightSentiment, assessSentimentRisk},
		{DimensionNews, weightNews, assessNewsRisk},
		{DimensionFundamental, weightFundamental, assessFundamentalRisk},
		{DimensionExecution, weightExecution, assessExecutionRisk},
		{DimensionSector, weightSector, assessSectorRisk},
		{DimensionVolatility, weightVolatility, assessVolatilityRisk},
	})
}

func newEngineWith(log *zap.Logger, assessors []assessor) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{log: log, assessors: assessors}
}

// Weights reports the configured dimension weights.
func (e *Engine) Weights() map[string]float64 {
	out := make(map[string]float64, len(e.assessors))
	for _, a := range e.assessors {
		out[a.dimension] = a.weight
	}
	return out
}

// Assess runs every assessor concurrently against the same snapshot and
// aggregates whatever settles. It never fails: a component error or panic
// becomes that dimension's degenerate neutral result, and if every single
// component fails the caller gets the conservative fail-safe assessment.
func (e *Engine) Assess(ctx context.Context, s *models.AgentState) *models.RiskAssessment {
	results := make([]models.RiskComponentResult, len(e.assessors))
	failed := make([]bool, len(e.assessors))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, a := range e.assessors {
		i, a := i, a
		eg.Go(func() error {
			res, err := runAssessor(egCtx, a, s)
			if err != nil {
				e.log.Warn("risk component failed",
					zap.String("dimension", a.dimension), zap.Error(err))
				failed[i] = true
				res = degenerateResult(a.dimension)
			}
			res.Dimension = a.dimension
			res.Weight = a.weight
			results[i] = clampComponent(res)
			return nil
		})
	}
	_ = eg.Wait()

	allFailed := true
	for _, f := range failed {
		if !f {
			allFailed = false
			break
		}
	}
	if allFailed {
		e.log.Error("all risk components failed, using fail-safe assessment")
		return failSafeAssessment(results)
	}
	return e.aggregate(results)
}

// runAssessor shields the join from a panicking component.
func runAssessor(ctx context.Context, a assessor, s *models.AgentState) (res models.RiskComponentResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s assessor panicked: %v", a.dimension, r)
		}
	}()
	return a.run(ctx, s)
}

func (e *Engine) aggregate(components []models.RiskComponentResult) *models.RiskAssessment {
	var score float64
	var total, informative int
	for _, c := range components {
		score += c.Weight * c.Score
		for _, f := range c.Factors {
			total++
			if !isPlaceholderFactor(f) {
				informative++
			}
		}
	}
	score = clamp01(score)

	completeness := 0.0
	if total > 0 {
		completeness = float64(informative) / float64(total)
	}
	confidence := clamp(0.3+0.6*completeness, 0.2, 0.9)

	level := levelFor(score)
	return &models.RiskAssessment{
		OverallRisk:     level,
		OverallScore:    score,
		Confidence:      confidence,
		Components:      components,
		Recommendations: recommendations(level, components),
		AssessedAt:      time.Now(),
	}
}

// levelFor maps a score to a risk level: below 0.30 LOW, above 0.70 HIGH,
// MEDIUM in between (both bounds inclusive).
func levelFor(score float64) string {
	switch {
	case score < 0.30:
		return consts.RiskLow
	case score > 0.70:
		return consts.RiskHigh
	default:
		return consts.RiskMedium
	}
}

// degenerateResult stands in for a failed component: neutral score, no
// usable confidence, a single factor naming the failure.
func degenerateResult(dimension string) models.RiskComponentResult {
	return models.RiskComponentResult{
		Score:      0.5,
		Confidence: 0,
		Factors:    []string{dimension + " assessment failed"},
	}
}

// failSafeAssessment is returned when no component produced a usable score.
// Downstream decisioning reads HIGH risk and holds.
func failSafeAssessment(components []models.RiskComponentResult) *models.RiskAssessment {
	return &models.RiskAssessment{
		OverallRisk:  consts.RiskHigh,
		OverallScore: 0.9,
		Confidence:   0.1,
		Components:   components,
		Recommendations: []string{
			"risk engine degraded: treat exposure as high risk and avoid new positions",
		},
		AssessedAt: time.Now(),
	}
}

// isPlaceholderFactor reports whether a factor string carries no information:
// the "no <x> data available" markers and the failure stand-ins.
func isPlaceholderFactor(f string) bool {
	f = strings.ToLower(strings.TrimSpace(f))
	if strings.HasPrefix(f, "no ") && strings.HasSuffix(f, "data available") {
		return true
	}
	return strings.HasSuffix(f, "assessment failed")
}

var adviceByDimension = map[string]string{
	DimensionMarket:      "tighten technical stops while market structure is weak",
	DimensionSentiment:   "fade crowded sentiment: scale in rather than entering at once",
	DimensionNews:        "re-check the headline flow immediately before any entry",
	DimensionFundamental: "cut position size until fundamental concerns clear",
	DimensionExecution:   "work orders in smaller clips, liquidity is thin",
	DimensionSector:      "hedge sector exposure or diversify across industries",
	DimensionVolatility:  "widen stops and shrink size to match current volatility",
}

// recommendations always returns at least one entry.
func recommendations(level string, components []models.RiskComponentResult) []string {
	recs := make([]string, 0, 3)
	switch level {
	case consts.RiskHigh:
		recs = append(recs, "overall risk is high: reduce exposure or stand aside")
	case consts.RiskMedium:
		recs = append(recs, "overall risk is moderate: size below normal and stage entries")
	default:
		recs = append(recs, "overall risk is low: standard position sizing applies")
	}
	for _, c := range components {
		if c.Score >= 0.70 {
			if advice, ok := adviceByDimension[c.Dimension]; ok {
				recs = append(recs, advice)
			}
		}
	}
	return recs
}

func clampComponent(c models.RiskComponentResult) models.RiskComponentResult {
	c.Score = clamp01(c.Score)
	c.Confidence = clamp01(c.Confidence)
	return c
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

func clamp01(v float64) float64 { return clamp(v, 0, 1) }
