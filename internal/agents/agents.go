// Package agents holds the stage bodies of the trading workflow: the four
// analysts, the bull/bear researchers and their manager, the trader, and the
// risk debaters with their judge. Each constructor returns a workflow.Stage
// whose body fetches what it needs, prompts a chat model, and returns the
// typed patch for its slice of the state.
package agents

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/southerncoder/my-Trading-Agents-sub007/internal/dataflows"
)

// Completer produces one completion for a formatted message list.
// *llm.Invoker satisfies it; tests inject fakes.
type Completer interface {
	Generate(ctx context.Context, messages []*schema.Message) (string, error)
}

// DataProvider hands stage bodies their market, news, social, and
// fundamentals bundles. *dataflows.Service satisfies it.
type DataProvider interface {
	Market(ctx context.Context, symbol, tradeDate string) (*dataflows.MarketBundle, error)
	News(ctx context.Context, symbol, tradeDate string) (*dataflows.NewsBundle, error)
	Social(ctx context.Context, symbol string) (*dataflows.SocialBundle, error)
	Fundamentals(ctx context.Context, symbol, tradeDate string) (*dataflows.FundamentalsBundle, error)
}

// Deps carries the collaborators every stage body draws from. Quick serves
// the analysts and debaters, Deep the manager, trader, and judge.
type Deps struct {
	Quick Completer
	Deep  Completer
	Data  DataProvider
	Log   *zap.Logger
}

func (d *Deps) logger() *zap.Logger {
	if d.Log == nil {
		return zap.NewNop()
	}
	return d.Log
}

// labeled prefixes an argument with its speaker label the way debate
// transcripts record it.
func labeled(label, content string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		content = "(no argument provided)"
	}
	return label + ": " + content
}

// joinHistory renders an append-only transcript as one block.
func joinHistory(lines []string) string {
	return strings.Join(lines, "\n")
}

// lastEntry returns the most recent argument of a transcript, or "".
func lastEntry(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return lines[len(lines)-1]
}
