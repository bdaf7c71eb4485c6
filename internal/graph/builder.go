package graph

import (
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/agents"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/workflow"
)

// Stages is the closed roster of the workflow. The facade reads it
// positionally, so tests can swap any stage for a fake without touching the
// phase plan.
type Stages struct {
	Market       workflow.Stage
	Social       workflow.Stage
	News         workflow.Stage
	Fundamentals workflow.Stage

	Bull            workflow.Stage
	Bear            workflow.Stage
	ResearchManager workflow.Stage

	Trader workflow.Stage

	Risky     workflow.Stage
	Safe      workflow.Stage
	Neutral   workflow.Stage
	RiskJudge workflow.Stage
}

// DefaultStages builds the production roster from the shared collaborators.
func DefaultStages(d *agents.Deps) Stages {
	return Stages{
		Market:       agents.NewMarketAnalyst(d),
		Social:       agents.NewSocialAnalyst(d),
		News:         agents.NewNewsAnalyst(d),
		Fundamentals: agents.NewFundamentalsAnalyst(d),

		Bull:            agents.NewBullResearcher(d),
		Bear:            agents.NewBearResearcher(d),
		ResearchManager: agents.NewResearchManager(d),

		Trader: agents.NewTrader(d),

		Risky:     agents.NewRiskyDebater(d),
		Safe:      agents.NewSafeDebater(d),
		Neutral:   agents.NewNeutralDebater(d),
		RiskJudge: agents.NewRiskJudge(d),
	}
}
