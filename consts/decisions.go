package consts

// Trade actions produced by the decision synthesizer. The signal
// processor collapses the _SMALL variants to their base action.
const (
	ActionBuy       = "BUY"
	ActionBuySmall  = "BUY_SMALL"
	ActionSell      = "SELL"
	ActionSellSmall = "SELL_SMALL"
	ActionHold      = "HOLD"
)

// Sentiment classifications for trader plans.
const (
	SentimentBullish = "BULLISH"
	SentimentBearish = "BEARISH"
	SentimentNeutral = "NEUTRAL"
)

// Aggregate risk levels.
const (
	RiskLow    = "LOW"
	RiskMedium = "MEDIUM"
	RiskHigh   = "HIGH"
)
