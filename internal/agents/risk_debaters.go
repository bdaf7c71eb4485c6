package agents

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/southerncoder/my-Trading-Agents-sub007/consts"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/models"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/state"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/workflow"
)

// riskDebaterMessages formats one risk stance prompt against the discussion
// so far. The context carries every speaker's latest argument; each template
// references the two it argues against.
func riskDebaterMessages(ctx context.Context, promptPath string, snapshot *models.AgentState) ([]*schema.Message, error) {
	tplText, err := LoadPrompt(promptPath)
	if err != nil {
		return nil, err
	}
	debate := snapshot.RiskDebate
	tpl := prompt.FromMessages(schema.FString,
		schema.SystemMessage(tplText),
		schema.UserMessage("Deliver your next argument in the risk debate."),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"trader_decision":          snapshot.TraderPlan,
		"market_research_report":   snapshot.MarketReport,
		"social_media_report":      snapshot.SentimentReport,
		"news_report":              snapshot.NewsReport,
		"fundamentals_report":      snapshot.FundamentalsReport,
		"history":                  joinHistory(debate.History),
		"current_risky_response":   lastEntry(debate.RiskyHistory),
		"current_safe_response":    lastEntry(debate.SafeHistory),
		"current_neutral_response": lastEntry(debate.NeutralHistory),
	})
	if err != nil {
		return nil, fmt.Errorf("format %s prompt: %w", promptPath, err)
	}
	return msgs, nil
}

func newRiskDebater(d *Deps, stageName, label, promptPath string) workflow.Stage {
	return workflow.Stage{
		Name: stageName,
		Run: func(ctx context.Context, snapshot *models.AgentState) (state.Patch, error) {
			msgs, err := riskDebaterMessages(ctx, promptPath, snapshot)
			if err != nil {
				return nil, err
			}
			argument, err := d.Quick.Generate(ctx, msgs)
			if err != nil {
				return nil, err
			}
			return state.RiskArgumentPatch{
				Speaker:  stageName,
				Argument: labeled(label, argument),
			}, nil
		},
	}
}

// NewRiskyDebater builds the stage championing the high-reward reading of
// the trader's plan.
func NewRiskyDebater(d *Deps) workflow.Stage {
	return newRiskDebater(d, consts.RiskyAnalyst, "Risky Analyst", "risk_mgmt/risky_debate")
}

// NewSafeDebater builds the stage arguing for capital preservation.
func NewSafeDebater(d *Deps) workflow.Stage {
	return newRiskDebater(d, consts.SafeAnalyst, "Safe Analyst", "risk_mgmt/safe_debate")
}

// NewNeutralDebater builds the stage holding the middle ground.
func NewNeutralDebater(d *Deps) workflow.Stage {
	return newRiskDebater(d, consts.NeutralAnalyst, "Neutral Analyst", "risk_mgmt/neutral_debate")
}
