package consts

// Stage identifiers. These are the canonical names recorded in
// AgentState.ExecutedStages and used for report files and logging.
const (
	MarketAnalyst       = "market_analyst"
	SocialMediaAnalyst  = "social_media_analyst"
	NewsAnalyst         = "news_analyst"
	FundamentalsAnalyst = "fundamentals_analyst"

	BullResearcher  = "bull_researcher"
	BearResearcher  = "bear_researcher"
	ResearchManager = "research_manager"

	Trader = "trader"

	RiskyAnalyst   = "risky_analyst"
	SafeAnalyst    = "safe_analyst"
	NeutralAnalyst = "neutral_analyst"
	RiskJudge      = "risk_judge"
)

// DisplayNames maps stage identifiers to the names shown in the terminal.
var DisplayNames = map[string]string{
	MarketAnalyst:       "Market Analyst",
	SocialMediaAnalyst:  "Social Analyst",
	NewsAnalyst:         "News Analyst",
	FundamentalsAnalyst: "Fundamentals Analyst",
	BullResearcher:      "Bull Researcher",
	BearResearcher:      "Bear Researcher",
	ResearchManager:     "Research Manager",
	Trader:              "Trader",
	RiskyAnalyst:        "Risky Analyst",
	SafeAnalyst:         "Safe Analyst",
	NeutralAnalyst:      "Neutral Analyst",
	RiskJudge:           "Risk Judge",
}

// DisplayName returns the terminal name for a stage, falling back to the
// raw identifier for stages registered at runtime.
func DisplayName(stage string) string {
	if n, ok := DisplayNames[stage]; ok {
		return n
	}
	return stage
}
