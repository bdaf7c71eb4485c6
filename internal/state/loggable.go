package state

import "github.com/southerncoder/my-Trading-Agents-sub007/internal/models"

// Loggable is the projection of AgentState used for log lines and run
// records. It carries sizes and verdict fields only; report bodies and
// debate transcripts never leave the state through it.
type Loggable struct {
	Ticker    string `json:"ticker"`
	TradeDate string `json:"trade_date"`

	MarketReportChars       int `json:"market_report_chars"`
	SentimentReportChars    int `json:"sentiment_report_chars"`
	NewsReportChars         int `json:"news_report_chars"`
	FundamentalsReportChars int `json:"fundamentals_report_chars"`

	DebateExchanges int `json:"debate_exchanges"`
	RiskExchanges   int `json:"risk_exchanges"`

	RiskLevel  string  `json:"risk_level,omitempty"`
	RiskScore  float64 `json:"risk_score,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Action     string  `json:"action,omitempty"`

	ExecutedStages []string `json:"executed_stages"`
}

// ToLoggable projects a state for logging and persistence.
func ToLoggable(s *models.AgentState) Loggable {
	l := Loggable{
		Ticker:                  s.Ticker,
		TradeDate:               s.TradeDate,
		MarketReportChars:       len(s.MarketReport),
		SentimentReportChars:    len(s.SentimentReport),
		NewsReportChars:         len(s.NewsReport),
		FundamentalsReportChars: len(s.FundamentalsReport),
		DebateExchanges:         s.InvestmentDebate.Count,
		RiskExchanges:           s.RiskDebate.Count,
		ExecutedStages:          append([]string(nil), s.ExecutedStages...),
	}
	if s.RiskAssessment != nil {
		l.RiskLevel = s.RiskAssessment.OverallRisk
		l.RiskScore = s.RiskAssessment.OverallScore
		l.Confidence = s.RiskAssessment.Confidence
	}
	if s.Decision != nil {
		l.Action = s.Decision.Action
	}
	return l
}
