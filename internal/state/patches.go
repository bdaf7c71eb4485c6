package state

import (
	"github.com/southerncoder/my-Trading-Agents-sub007/consts"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/models"
)

// MarketReportPatch is produced by the market analyst. It owns the market
// report and the quantitative metrics derived from price history.
type MarketReportPatch struct {
	Report  string
	Metrics models.RiskMetrics
}

func (p MarketReportPatch) apply(s *models.AgentState) {
	s.MarketReport = p.Report
	if p.Metrics.DataPoints > 0 {
		s.RiskMetrics = p.Metrics
	}
}

// SentimentReportPatch is produced by the social media analyst.
type SentimentReportPatch struct {
	Report string
}

func (p SentimentReportPatch) apply(s *models.AgentState) {
	s.SentimentReport = p.Report
}

// NewsReportPatch is produced by the news analyst.
type NewsReportPatch struct {
	Report string
}

func (p NewsReportPatch) apply(s *models.AgentState) {
	s.NewsReport = p.Report
}

// FundamentalsReportPatch is produced by the fundamentals analyst.
type FundamentalsReportPatch struct {
	Report string
}

func (p FundamentalsReportPatch) apply(s *models.AgentState) {
	s.FundamentalsReport = p.Report
}

// BullArgumentPatch appends one bull argument to the investment debate.
// Reset starts a fresh debate before appending.
type BullArgumentPatch struct {
	Argument string
	Reset    bool
}

func (p BullArgumentPatch) apply(s *models.AgentState) {
	d := &s.InvestmentDebate
	if p.Reset {
		*d = models.InvestmentDebateState{}
	}
	d.BullHistory = append(d.BullHistory, p.Argument)
	d.History = append(d.History, p.Argument)
	d.CurrentResponse = p.Argument
	d.Count++
}

// BearArgumentPatch appends one bear argument to the investment debate.
type BearArgumentPatch struct {
	Argument string
	Reset    bool
}

func (p BearArgumentPatch) apply(s *models.AgentState) {
	d := &s.InvestmentDebate
	if p.Reset {
		*d = models.InvestmentDebateState{}
	}
	d.BearHistory = append(d.BearHistory, p.Argument)
	d.History = append(d.History, p.Argument)
	d.CurrentResponse = p.Argument
	d.Count++
}

// ResearchVerdictPatch is produced by the research manager. It closes the
// investment debate and owns the investment plan.
type ResearchVerdictPatch struct {
	Verdict string
	Plan    string
}

func (p ResearchVerdictPatch) apply(s *models.AgentState) {
	s.InvestmentDebate.JudgeDecision = p.Verdict
	s.InvestmentPlan = p.Plan
}

// TraderPlanPatch is produced by the trader stage.
type TraderPlanPatch struct {
	Plan string
}

func (p TraderPlanPatch) apply(s *models.AgentState) {
	s.TraderPlan = p.Plan
}

// RiskArgumentPatch appends one argument to the risk discussion for the
// given speaker (risky, safe, or neutral analyst).
type RiskArgumentPatch struct {
	Speaker  string
	Argument string
	Reset    bool
}

func (p RiskArgumentPatch) apply(s *models.AgentState) {
	d := &s.RiskDebate
	if p.Reset {
		*d = models.RiskDebateState{}
	}
	switch p.Speaker {
	case consts.RiskyAnalyst:
		d.RiskyHistory = append(d.RiskyHistory, p.Argument)
	case consts.SafeAnalyst:
		d.SafeHistory = append(d.SafeHistory, p.Argument)
	case consts.NeutralAnalyst:
		d.NeutralHistory = append(d.NeutralHistory, p.Argument)
	}
	d.History = append(d.History, p.Argument)
	d.LatestSpeaker = p.Speaker
	d.Count++
}

// RiskVerdictPatch is produced by the risk judge closing the discussion.
type RiskVerdictPatch struct {
	Verdict string
}

func (p RiskVerdictPatch) apply(s *models.AgentState) {
	s.RiskDebate.JudgeDecision = p.Verdict
}

// AssessmentPatch carries the risk engine's aggregate. Applied with an empty
// stage name since the engine is not a stage.
type AssessmentPatch struct {
	Assessment *models.RiskAssessment
}

func (p AssessmentPatch) apply(s *models.AgentState) {
	s.RiskAssessment = p.Assessment.Clone()
}

// DecisionPatch carries the synthesizer's structured decision and the final
// decision summary line.
type DecisionPatch struct {
	Decision *models.TradeDecision
	Summary  string
}

func (p DecisionPatch) apply(s *models.AgentState) {
	if p.Decision != nil {
		d := *p.Decision
		s.Decision = &d
	}
	s.FinalDecision = p.Summary
}
