package dataflows

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/southerncoder/my-Trading-Agents-sub007/internal/models"
)

func TestFormatMarketText(t *testing.T) {
	candles := mkCandles(100, 101, 102)
	b := &MarketBundle{
		Symbol: "AAPL",
		Quote: &models.Quote{
			Symbol:        "AAPL",
			Price:         decimal.NewFromFloat(102.5),
			Change:        decimal.NewFromFloat(-1.25),
			ChangePercent: decimal.NewFromFloat(-1.2),
			Volume:        52344100,
		},
		Candles:    candles,
		Indicators: map[string]float64{"rsi": 55.5, "close_10_ema": 101.2},
		Metrics:    models.RiskMetrics{Volatility: 0.224, WinRate: 0.532, PayoffRatio: 1.12, AvgVolume: 100},
	}

	text := formatMarketText(b, "2025-06-02")

	assert.Contains(t, text, "## AAPL market data as of 2025-06-02")
	assert.Contains(t, text, "Quote: 102.50 (-1.25 / -1.20%), volume 52344100")
	assert.Contains(t, text, "3 daily bars from 2025-01-01 to 2025-01-03")
	assert.Contains(t, text, "- rsi: 55.50")
	assert.Contains(t, text, "- close_10_ema: 101.20")
	assert.Contains(t, text, "Realized volatility (annualized): 22.4%")
	assert.Contains(t, text, "Up-day rate: 53.2%")
}

func TestFormatMarketTextWithoutQuote(t *testing.T) {
	b := &MarketBundle{Symbol: "NVDA", Candles: mkCandles(100, 101)}
	text := formatMarketText(b, "2025-06-02")

	assert.NotContains(t, text, "Quote:")
	assert.Contains(t, text, "last close 101.00")
}

func TestFormatNewsText(t *testing.T) {
	b := &NewsBundle{
		Symbol: "AAPL",
		Articles: []NewsArticle{
			{
				Title:       "Apple raises guidance",
				Content:     "The company now expects stronger services growth.",
				Source:      "Reuters",
				PublishedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
			},
			{Title: "Analysts weigh in", Source: "Bloomberg", PublishedAt: time.Date(2025, 5, 31, 9, 0, 0, 0, time.UTC)},
		},
	}

	text := formatNewsText(b)

	assert.Contains(t, text, "## Recent news for AAPL")
	assert.Contains(t, text, "- [Reuters] Apple raises guidance (2025-06-01)")
	assert.Contains(t, text, "The company now expects stronger services growth.")
	assert.Contains(t, text, "- [Bloomberg] Analysts weigh in (2025-05-31)")
}

func TestFormatNewsTextEmpty(t *testing.T) {
	text := formatNewsText(&NewsBundle{Symbol: "AAPL"})
	assert.Contains(t, text, "No recent articles found.")
}

func TestFormatSocialText(t *testing.T) {
	b := &SocialBundle{
		Symbol: "TSLA",
		Posts: []RedditPost{
			{Subreddit: "wallstreetbets", Score: 420, Comments: 69, Title: "TSLA to the moon", Content: "Loaded up on calls"},
		},
	}

	text := formatSocialText(b)

	assert.Contains(t, text, "## Reddit discussion mentioning TSLA")
	assert.Contains(t, text, "- r/wallstreetbets (420 points, 69 comments): TSLA to the moon")
	assert.Contains(t, text, "Loaded up on calls")
}

func TestFormatFundamentalsText(t *testing.T) {
	b := &FundamentalsBundle{
		Symbol: "AAPL",
		Profile: &CompanyProfile{
			Name:      "Apple Inc.",
			Exchange:  "NasdaqGS",
			Currency:  "USD",
			MarketCap: 3100000000000,
			PERatio:   decimal.NewFromFloat(31.4),
			EPS:       decimal.NewFromFloat(6.42),
			Price:     decimal.NewFromFloat(201.5),
		},
		Insider: []InsiderSentiment{
			{Year: 2025, Month: 4, Change: -12000, MSPR: decimal.NewFromFloat(-45.2)},
		},
	}

	text := formatFundamentalsText(b)

	assert.Contains(t, text, "Apple Inc. (NasdaqGS, USD)")
	assert.Contains(t, text, "Trailing P/E: 31.40, EPS (ttm): 6.42")
	assert.Contains(t, text, "- 2025-04: net change -12000, MSPR -45.2")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("  short  ", 10))
	assert.Equal(t, "abcde...", truncate("abcdefgh", 5))
	assert.Equal(t, "", truncate("   ", 5))
}
