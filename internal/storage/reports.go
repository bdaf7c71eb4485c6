package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/southerncoder/my-Trading-Agents-sub007/internal/models"
)

// Reports writes the per-stage markdown files of a finished run under
// <resultsDir>/<TICKER>/<date>/reports/.
type Reports struct {
	resultsDir string
	log        *zap.Logger
}

func NewReports(resultsDir string, log *zap.Logger) *Reports {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reports{resultsDir: resultsDir, log: log}
}

// reportFiles maps file names to the state field each one holds. Empty
// fields produce no file.
func reportFiles(s *models.AgentState) []struct{ name, content string } {
	return []struct{ name, content string }{
		{"market_report.md", s.MarketReport},
		{"sentiment_report.md", s.SentimentReport},
		{"news_report.md", s.NewsReport},
		{"fundamentals_report.md", s.FundamentalsReport},
		{"investment_plan.md", s.InvestmentPlan},
		{"trader_plan.md", s.TraderPlan},
		{"final_decision.md", finalDecisionReport(s)},
	}
}

// WriteReports persists every populated report field. It keeps going past
// individual write failures and reports the first one.
func (r *Reports) WriteReports(ticker, tradeDate string, s *models.AgentState) error {
	dir := filepath.Join(r.resultsDir, strings.ToUpper(strings.TrimSpace(ticker)), tradeDate, "reports")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create reports dir %s: %w", dir, err)
	}

	var firstErr error
	for _, f := range reportFiles(s) {
		if strings.TrimSpace(f.content) == "" {
			continue
		}
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, []byte(f.content), 0o644); err != nil {
			r.log.Warn("report write failed", zap.String("path", path), zap.Error(err))
			if firstErr == nil {
				firstErr = fmt.Errorf("write report %s: %w", path, err)
			}
			continue
		}
		r.log.Debug("report written", zap.String("path", path))
	}
	return firstErr
}

// finalDecisionReport renders the decision summary with its audit trail.
func finalDecisionReport(s *models.AgentState) string {
	if s.FinalDecision == "" {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Final decision for %s on %s\n\n", s.Ticker, s.TradeDate)
	fmt.Fprintf(&sb, "%s\n", s.FinalDecision)

	if d := s.Decision; d != nil {
		fmt.Fprintf(&sb, "\n- Sentiment: %s\n- Risk level: %s (score %.2f, confidence %.2f)\n",
			d.Sentiment, d.RiskLevel, d.RiskScore, d.Confidence)
		fmt.Fprintf(&sb, "- Recommended size: %.1f%% of portfolio (kelly %.1f%%, risk-adjusted %.1f%%, vol-adjusted %.1f%%)\n",
			d.Sizing.Recommended*100, d.Sizing.Kelly*100, d.Sizing.RiskAdjusted*100, d.Sizing.VolAdjusted*100)
	}
	if ra := s.RiskAssessment; ra != nil && len(ra.Recommendations) > 0 {
		sb.WriteString("\nRisk recommendations:\n")
		for _, rec := range ra.Recommendations {
			fmt.Fprintf(&sb, "- %s\n", rec)
		}
	}
	return sb.String()
}
