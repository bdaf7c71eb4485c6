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

// NewResearchManager builds the stage that closes the bull/bear debate. Its
// response is both the verdict on the debate and the investment plan handed
// to the trader.
func NewResearchManager(d *Deps) workflow.Stage {
	return workflow.Stage{
		Name: consts.ResearchManager,
		Run: func(ctx context.Context, snapshot *models.AgentState) (state.Patch, error) {
			tplText, err := LoadPrompt("managers/research_manager")
			if err != nil {
				return nil, err
			}
			tpl := prompt.FromMessages(schema.FString,
				schema.SystemMessage(tplText),
				schema.UserMessage("Based on the debate between bull and bear researchers, make your final investment decision and lay out the plan for the trader."),
			)
			msgs, err := tpl.Format(ctx, map[string]any{
				"history":         joinHistory(snapshot.InvestmentDebate.History),
				"past_memory_str": "",
			})
			if err != nil {
				return nil, fmt.Errorf("format research manager prompt: %w", err)
			}
			verdict, err := d.Deep.Generate(ctx, msgs)
			if err != nil {
				return nil, err
			}
			return state.ResearchVerdictPatch{Verdict: verdict, Plan: verdict}, nil
		},
	}
}

// NewRiskJudge builds the stage that closes the risk discussion with the
// final recommendation. Its prompt demands the FINAL TRANSACTION PROPOSAL
// marker the signal processor keys on.
func NewRiskJudge(d *Deps) workflow.Stage {
	return workflow.Stage{
		Name: consts.RiskJudge,
		Run: func(ctx context.Context, snapshot *models.AgentState) (state.Patch, error) {
			tplText, err := LoadPrompt("managers/risk_manager")
			if err != nil {
				return nil, err
			}
			tpl := prompt.FromMessages(schema.FString,
				schema.SystemMessage(tplText),
				schema.UserMessage("Evaluate the risk debate and deliver your final recommendation for the trader's plan."),
			)
			msgs, err := tpl.Format(ctx, map[string]any{
				"trader_plan":     snapshot.TraderPlan,
				"history":         joinHistory(snapshot.RiskDebate.History),
				"past_memory_str": "",
			})
			if err != nil {
				return nil, fmt.Errorf("format risk judge prompt: %w", err)
			}
			verdict, err := d.Deep.Generate(ctx, msgs)
			if err != nil {
				return nil, err
			}
			return state.RiskVerdictPatch{Verdict: verdict}, nil
		},
	}
}
