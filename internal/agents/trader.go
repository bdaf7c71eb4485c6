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

const traderUserTpl = `Based on a comprehensive analysis by a team of analysts, here is an investment plan tailored for {company_name}. This plan incorporates insights from current technical market trends, macroeconomic indicators, and social media sentiment. Use this plan as a foundation for evaluating your next trading decision.

Proposed Investment Plan: {investment_plan}

Leverage these insights to make an informed and strategic decision.`

// NewTrader builds the stage that turns the investment plan into a concrete
// trading plan ending in the FINAL TRANSACTION PROPOSAL marker.
func NewTrader(d *Deps) workflow.Stage {
	return workflow.Stage{
		Name: consts.Trader,
		Run: func(ctx context.Context, snapshot *models.AgentState) (state.Patch, error) {
			tplText, err := LoadPrompt("trader/trader")
			if err != nil {
				return nil, err
			}
			tpl := prompt.FromMessages(schema.FString,
				schema.SystemMessage(tplText),
				schema.UserMessage(traderUserTpl),
			)
			msgs, err := tpl.Format(ctx, map[string]any{
				"company_name":    snapshot.Ticker,
				"investment_plan": snapshot.InvestmentPlan,
				"past_memory_str": "",
			})
			if err != nil {
				return nil, fmt.Errorf("format trader prompt: %w", err)
			}
			plan, err := d.Deep.Generate(ctx, msgs)
			if err != nil {
				return nil, err
			}
			return state.TraderPlanPatch{Plan: plan}, nil
		},
	}
}
