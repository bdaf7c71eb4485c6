package agents

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/southerncoder/my-Trading-Agents-sub007/consts"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/models"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/state"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/workflow"
)

// analystSystemTpl frames every analyst as one member of the team. The
// stage-specific instructions arrive through {system_message} and the data
// bundle through the user message.
const analystSystemTpl = `You are a helpful AI assistant, collaborating with other assistants on a trading research team.
Use the provided data to progress towards answering the question.
If you are unable to fully answer, that's OK; another assistant will help where you left off.
If you or any other assistant has the FINAL TRANSACTION PROPOSAL: **BUY/HOLD/SELL** or deliverable,
prefix your response with FINAL TRANSACTION PROPOSAL: **BUY/HOLD/SELL** so the team knows to stop.

{system_message}

For your reference, the current date is {current_date}. The company we want to look at is {ticker}.`

// analystMessages formats the shared analyst frame around one prompt file
// and one data bundle.
func analystMessages(ctx context.Context, promptPath string, snapshot *models.AgentState, data string) ([]*schema.Message, error) {
	systemPrompt, err := LoadPrompt(promptPath)
	if err != nil {
		return nil, err
	}
	tpl := prompt.FromMessages(schema.FString,
		schema.SystemMessage(analystSystemTpl),
		schema.UserMessage("{data_bundle}"),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"system_message": systemPrompt,
		"current_date":   snapshot.TradeDate,
		"ticker":         snapshot.Ticker,
		"data_bundle":    data,
	})
	if err != nil {
		return nil, fmt.Errorf("format %s prompt: %w", promptPath, err)
	}
	return msgs, nil
}

// NewMarketAnalyst builds the stage that turns price history and technical
// indicators into the market report. Its patch also carries the derived risk
// metrics for the risk engine and position sizing.
func NewMarketAnalyst(d *Deps) workflow.Stage {
	return workflow.Stage{
		Name: consts.MarketAnalyst,
		Run: func(ctx context.Context, snapshot *models.AgentState) (state.Patch, error) {
			bundle, err := d.Data.Market(ctx, snapshot.Ticker, snapshot.TradeDate)
			if err != nil {
				return nil, fmt.Errorf("fetch market data: %w", err)
			}
			d.logger().Debug("market data fetched",
				zap.String("symbol", bundle.Symbol),
				zap.Int("candles", len(bundle.Candles)),
			)
			msgs, err := analystMessages(ctx, "analysts/market_analyst", snapshot, bundle.Text)
			if err != nil {
				return nil, err
			}
			report, err := d.Quick.Generate(ctx, msgs)
			if err != nil {
				return nil, err
			}
			return state.MarketReportPatch{Report: report, Metrics: bundle.Metrics}, nil
		},
	}
}

// NewSocialAnalyst builds the stage that reads public forum chatter and
// writes the sentiment report.
func NewSocialAnalyst(d *Deps) workflow.Stage {
	return workflow.Stage{
		Name: consts.SocialMediaAnalyst,
		Run: func(ctx context.Context, snapshot *models.AgentState) (state.Patch, error) {
			bundle, err := d.Data.Social(ctx, snapshot.Ticker)
			if err != nil {
				return nil, fmt.Errorf("fetch social data: %w", err)
			}
			msgs, err := analystMessages(ctx, "analysts/social_analyst", snapshot, bundle.Text)
			if err != nil {
				return nil, err
			}
			report, err := d.Quick.Generate(ctx, msgs)
			if err != nil {
				return nil, err
			}
			return state.SentimentReportPatch{Report: report}, nil
		},
	}
}

// NewNewsAnalyst builds the stage that summarizes recent company and macro
// news into the news report.
func NewNewsAnalyst(d *Deps) workflow.Stage {
	return workflow.Stage{
		Name: consts.NewsAnalyst,
		Run: func(ctx context.Context, snapshot *models.AgentState) (state.Patch, error) {
			bundle, err := d.Data.News(ctx, snapshot.Ticker, snapshot.TradeDate)
			if err != nil {
				return nil, fmt.Errorf("fetch news: %w", err)
			}
			msgs, err := analystMessages(ctx, "analysts/news_analyst", snapshot, bundle.Text)
			if err != nil {
				return nil, err
			}
			report, err := d.Quick.Generate(ctx, msgs)
			if err != nil {
				return nil, err
			}
			return state.NewsReportPatch{Report: report}, nil
		},
	}
}

// NewFundamentalsAnalyst builds the stage that reads the company profile and
// insider sentiment and writes the fundamentals report.
func NewFundamentalsAnalyst(d *Deps) workflow.Stage {
	return workflow.Stage{
		Name: consts.FundamentalsAnalyst,
		Run: func(ctx context.Context, snapshot *models.AgentState) (state.Patch, error) {
			bundle, err := d.Data.Fundamentals(ctx, snapshot.Ticker, snapshot.TradeDate)
			if err != nil {
				return nil, fmt.Errorf("fetch fundamentals: %w", err)
			}
			msgs, err := analystMessages(ctx, "analysts/fundamentals_analyst", snapshot, bundle.Text)
			if err != nil {
				return nil, err
			}
			report, err := d.Quick.Generate(ctx, msgs)
			if err != nil {
				return nil, err
			}
			return state.FundamentalsReportPatch{Report: report}, nil
		},
	}
}
