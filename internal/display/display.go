// Package display renders a completed run for the terminal.
package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/southerncoder/my-Trading-Agents-sub007/consts"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/graph"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/models"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 2)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			MarginTop(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	buyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#10B981"))

	sellStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#EF4444"))

	holdStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F59E0B"))

	bodyStyle = lipgloss.NewStyle().
			Width(78)
)

// actionStyle picks the color for an action or signal token.
func actionStyle(action string) lipgloss.Style {
	switch {
	case strings.HasPrefix(action, consts.ActionBuy):
		return buyStyle
	case strings.HasPrefix(action, consts.ActionSell):
		return sellStyle
	default:
		return holdStyle
	}
}

// RenderResult builds the full terminal view of one run.
func RenderResult(res *graph.RunResult) string {
	if res == nil || res.FinalState == nil {
		return holdStyle.Render("no result to display")
	}
	s := res.FinalState

	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf("Analysis: %s on %s", s.Ticker, s.TradeDate)))
	sb.WriteString("\n")

	sb.WriteString(sectionStyle.Render("Recommendation"))
	sb.WriteString("\n")
	if d := res.Decision; d != nil {
		fmt.Fprintf(&sb, "%s %s  %s %s\n",
			labelStyle.Render("Action:"), actionStyle(d.Action).Render(d.Action),
			labelStyle.Render("Signal:"), actionStyle(res.ProcessedSignal).Render(res.ProcessedSignal))
		fmt.Fprintf(&sb, "%s %s  %s %s (%.2f, confidence %.2f)\n",
			labelStyle.Render("Sentiment:"), d.Sentiment,
			labelStyle.Render("Risk:"), d.RiskLevel, d.RiskScore, d.Confidence)
		fmt.Fprintf(&sb, "%s %.1f%% of portfolio\n",
			labelStyle.Render("Recommended size:"), d.Sizing.Recommended*100)
		sb.WriteString(bodyStyle.Render(d.Justification))
		sb.WriteString("\n")
	}

	sb.WriteString(renderRisk(s.RiskAssessment))
	sb.WriteString(renderReports(s))

	sb.WriteString(sectionStyle.Render("Run"))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "%s %s\n", labelStyle.Render("Agents executed:"), executedList(res.AgentsExecuted))
	fmt.Fprintf(&sb, "%s %dms\n", labelStyle.Render("Execution time:"), res.ExecutionTimeMs)
	if res.RunID != "" {
		fmt.Fprintf(&sb, "%s %s\n", labelStyle.Render("Run ID:"), res.RunID)
	}
	return sb.String()
}

func renderRisk(ra *models.RiskAssessment) string {
	if ra == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(sectionStyle.Render("Risk assessment"))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "%s %s (score %.2f, confidence %.2f)\n",
		labelStyle.Render("Overall:"), ra.OverallRisk, ra.OverallScore, ra.Confidence)
	for _, c := range ra.Components {
		fmt.Fprintf(&sb, "  %-12s %.2f  %s\n", c.Dimension, c.Score, strings.Join(c.Factors, "; "))
	}
	for _, rec := range ra.Recommendations {
		fmt.Fprintf(&sb, "%s %s\n", labelStyle.Render("->"), rec)
	}
	return sb.String()
}

func renderReports(s *models.AgentState) string {
	sections := []struct{ title, body string }{
		{"Market report", s.MarketReport},
		{"Social sentiment", s.SentimentReport},
		{"News", s.NewsReport},
		{"Fundamentals", s.FundamentalsReport},
		{"Investment plan", s.InvestmentPlan},
		{"Trader plan", s.TraderPlan},
	}

	var sb strings.Builder
	for _, sec := range sections {
		body := strings.TrimSpace(sec.body)
		if body == "" {
			continue
		}
		sb.WriteString(sectionStyle.Render(sec.title))
		sb.WriteString("\n")
		sb.WriteString(bodyStyle.Render(excerpt(body, 600)))
		sb.WriteString("\n")
	}
	return sb.String()
}

func executedList(stages []string) string {
	if len(stages) == 0 {
		return "(none)"
	}
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = consts.DisplayName(s)
	}
	return strings.Join(names, ", ")
}

func excerpt(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + " [...]"
}
