// Package processing reduces free-form decision text to canonical action
// tokens.
package processing

import (
	"regexp"
	"strings"

	"github.com/southerncoder/my-Trading-Agents-sub007/consts"
)

// SignalProcessor extracts one of BUY, SELL, HOLD from analysis text.
// Explicit trade language is checked before sentiment language, so a report
// that reads "bearish backdrop" but ends in a buy proposal still parses as a
// buy. Matching is keyword-level with no negation handling; "no reason to
// sell" counts as a sell mention.
type SignalProcessor struct {
	actionBuy  []*regexp.Regexp
	actionSell []*regexp.Regexp
	actionHold []*regexp.Regexp

	toneBuy  []*regexp.Regexp
	toneSell []*regexp.Regexp
}

// NewSignalProcessor compiles the fixed pattern tiers.
func NewSignalProcessor() *SignalProcessor {
	return &SignalProcessor{
		actionBuy: []*regexp.Regexp{
			regexp.MustCompile(`final transaction proposal:?\s*\*{0,2}buy\*{0,2}`),
			regexp.MustCompile(`\b(strong buy|buy recommendation|recommended buy)\b`),
			regexp.MustCompile(`\b(buy|buy_small|purchase|accumulate|long|invest)\b`),
		},
		actionSell: []*regexp.Regexp{
			regexp.MustCompile(`final transaction proposal:?\s*\*{0,2}sell\*{0,2}`),
			regexp.MustCompile(`\b(strong sell|sell recommendation|avoid)\b`),
			regexp.MustCompile(`\b(sell|sell_small|short|divest|liquidate)\b`),
		},
		actionHold: []*regexp.Regexp{
			regexp.MustCompile(`final transaction proposal:?\s*\*{0,2}hold\*{0,2}`),
			regexp.MustCompile(`\b(hold|maintain|wait|stay put|no action)\b`),
		},
		toneBuy: []*regexp.Regexp{
			regexp.MustCompile(`\b(bullish|positive|upward|upside|undervalued|oversold|growth potential|opportunity)\b`),
		},
		toneSell: []*regexp.Regexp{
			regexp.MustCompile(`\b(bearish|negative|downward|downside|overvalued|overbought|decline)\b`),
		},
	}
}

// Extract returns the canonical action for the text. It never fails: empty
// input, unrecognized prose, and internal errors all come back as HOLD.
func (sp *SignalProcessor) Extract(text string) (action string) {
	defer func() {
		if recover() != nil {
			action = consts.ActionHold
		}
	}()

	text = strings.ToLower(text)
	if strings.TrimSpace(text) == "" {
		return consts.ActionHold
	}

	if a, ok := vote(text, sp.actionBuy, sp.actionSell, sp.actionHold); ok {
		return a
	}
	if a, ok := vote(text, sp.toneBuy, sp.toneSell, nil); ok {
		return a
	}
	return consts.ActionHold
}

// vote scores one pattern tier. It decides only on a clear winner; ties fall
// through to the next tier.
func vote(text string, buy, sell, hold []*regexp.Regexp) (string, bool) {
	b := countMatches(text, buy)
	s := countMatches(text, sell)
	h := countMatches(text, hold)
	switch {
	case b > s && b > h:
		return consts.ActionBuy, true
	case s > b && s > h:
		return consts.ActionSell, true
	case h > 0 && h >= b && h >= s:
		return consts.ActionHold, true
	}
	return "", false
}

func countMatches(text string, patterns []*regexp.Regexp) int {
	n := 0
	for _, p := range patterns {
		n += len(p.FindAllString(text, -1))
	}
	return n
}
