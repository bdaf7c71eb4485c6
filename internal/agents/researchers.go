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

// researcherMessages formats a bull or bear prompt file against the debate
// so far. The prompt text is the template: its placeholders see the four
// reports, the transcript, and the opponent's latest argument.
func researcherMessages(ctx context.Context, promptPath string, snapshot *models.AgentState) ([]*schema.Message, error) {
	tplText, err := LoadPrompt(promptPath)
	if err != nil {
		return nil, err
	}
	debate := snapshot.InvestmentDebate
	tpl := prompt.FromMessages(schema.FString,
		schema.UserMessage(tplText),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"market_research_report": snapshot.MarketReport,
		"social_media_report":    snapshot.SentimentReport,
		"news_report":            snapshot.NewsReport,
		"fundamentals_report":    snapshot.FundamentalsReport,
		"history":                joinHistory(debate.History),
		"current_response":       debate.CurrentResponse,
		"past_memory_str":        "",
	})
	if err != nil {
		return nil, fmt.Errorf("format %s prompt: %w", promptPath, err)
	}
	return msgs, nil
}

// NewBullResearcher builds the stage arguing for the investment. Each turn
// appends one labeled argument to the debate transcript.
func NewBullResearcher(d *Deps) workflow.Stage {
	return workflow.Stage{
		Name: consts.BullResearcher,
		Run: func(ctx context.Context, snapshot *models.AgentState) (state.Patch, error) {
			msgs, err := researcherMessages(ctx, "researchers/bull_researcher", snapshot)
			if err != nil {
				return nil, err
			}
			argument, err := d.Quick.Generate(ctx, msgs)
			if err != nil {
				return nil, err
			}
			return state.BullArgumentPatch{Argument: labeled("Bull Analyst", argument)}, nil
		},
	}
}

// NewBearResearcher builds the stage arguing against the investment.
func NewBearResearcher(d *Deps) workflow.Stage {
	return workflow.Stage{
		Name: consts.BearResearcher,
		Run: func(ctx context.Context, snapshot *models.AgentState) (state.Patch, error) {
			msgs, err := researcherMessages(ctx, "researchers/bear_researcher", snapshot)
			if err != nil {
				return nil, err
			}
			argument, err := d.Quick.Generate(ctx, msgs)
			if err != nil {
				return nil, err
			}
			return state.BearArgumentPatch{Argument: labeled("Bear Analyst", argument)}, nil
		},
	}
}
