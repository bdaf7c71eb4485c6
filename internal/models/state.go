package models

// InvestmentDebateState carries the bull/bear research exchange. Histories
// are append-only transcripts; Count is the number of arguments delivered.
type InvestmentDebateState struct {
	BullHistory     []string `json:"bull_history"`
	BearHistory     []string `json:"bear_history"`
	History         []string `json:"history"`
	CurrentResponse string   `json:"current_response"`
	JudgeDecision   string   `json:"judge_decision"`
	Count           int      `json:"count"`
}

func (d InvestmentDebateState) clone() InvestmentDebateState {
	out := d
	out.BullHistory = append([]string(nil), d.BullHistory...)
	out.BearHistory = append([]string(nil), d.BearHistory...)
	out.History = append([]string(nil), d.History...)
	return out
}

// RiskDebateState carries the risky/safe/neutral discussion.
type RiskDebateState struct {
	RiskyHistory   []string `json:"risky_history"`
	SafeHistory    []string `json:"safe_history"`
	NeutralHistory []string `json:"neutral_history"`
	History        []string `json:"history"`
	LatestSpeaker  string   `json:"latest_speaker"`
	JudgeDecision  string   `json:"judge_decision"`
	Count          int      `json:"count"`
}

func (d RiskDebateState) clone() RiskDebateState {
	out := d
	out.RiskyHistory = append([]string(nil), d.RiskyHistory...)
	out.SafeHistory = append([]string(nil), d.SafeHistory...)
	out.NeutralHistory = append([]string(nil), d.NeutralHistory...)
	out.History = append([]string(nil), d.History...)
	return out
}

// AgentState is the blackboard shared by every stage of a run. Stages never
// mutate it; they return patches that the propagator merges into a clone, so
// a snapshot handed to one stage is never changed by another.
type AgentState struct {
	Ticker    string `json:"ticker"`
	TradeDate string `json:"trade_date"`

	MarketReport       string `json:"market_report"`
	SentimentReport    string `json:"sentiment_report"`
	NewsReport         string `json:"news_report"`
	FundamentalsReport string `json:"fundamentals_report"`

	// RiskMetrics is derived from price history by the market analyst and
	// consumed by the risk engine and position sizing.
	RiskMetrics RiskMetrics `json:"risk_metrics"`

	InvestmentDebate InvestmentDebateState `json:"investment_debate"`
	RiskDebate       RiskDebateState       `json:"risk_debate"`

	InvestmentPlan string `json:"investment_plan"`
	TraderPlan     string `json:"trader_plan"`
	FinalDecision  string `json:"final_decision"`

	RiskAssessment *RiskAssessment `json:"risk_assessment,omitempty"`
	Decision       *TradeDecision  `json:"decision,omitempty"`

	// ExecutedStages lists the stages whose patches merged, in merge order.
	// Failed stages never appear here.
	ExecutedStages []string `json:"executed_stages"`
}

// Clone returns a deep copy. Slices and nested pointers are duplicated so
// holders of earlier snapshots never observe later merges.
func (s *AgentState) Clone() *AgentState {
	if s == nil {
		return nil
	}
	out := *s
	out.InvestmentDebate = s.InvestmentDebate.clone()
	out.RiskDebate = s.RiskDebate.clone()
	out.ExecutedStages = append([]string(nil), s.ExecutedStages...)
	if s.RiskAssessment != nil {
		out.RiskAssessment = s.RiskAssessment.Clone()
	}
	if s.Decision != nil {
		d := *s.Decision
		out.Decision = &d
	}
	return &out
}
