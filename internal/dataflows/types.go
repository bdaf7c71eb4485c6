// Package dataflows fetches the market, news, social, and fundamentals data
// the analyst stages feed into their prompts. Every provider call is cached
// and guarded by the shared retry/breaker runner.
package dataflows

import (
	"time"

	"github.com/shopspring/decimal"
)

// NewsArticle is the provider-neutral article shape. Finnhub and Google News
// results both convert into it.
type NewsArticle struct {
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
	Keywords    []string  `json:"keywords,omitempty"`
}

// RedditPost is a trimmed view of a Reddit listing entry.
type RedditPost struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	URL       string    `json:"url"`
	Subreddit string    `json:"subreddit"`
	Author    string    `json:"author"`
	Score     int       `json:"score"`
	Comments  int       `json:"comments"`
	CreatedAt time.Time `json:"created_at"`
	Stickied  bool      `json:"stickied"`
}

// InsiderSentiment is Finnhub's monthly aggregate of insider buying pressure.
// MSPR is the monthly share purchase ratio, -100 to 100.
type InsiderSentiment struct {
	Symbol string          `json:"symbol"`
	Year   int             `json:"year"`
	Month  int             `json:"month"`
	Change int64           `json:"change"`
	MSPR   decimal.Decimal `json:"mspr"`
}

// CompanyProfile carries the quote-derived company facts shown to the
// fundamentals analyst.
type CompanyProfile struct {
	Symbol     string          `json:"symbol"`
	Name       string          `json:"name"`
	Exchange   string          `json:"exchange"`
	Currency   string          `json:"currency"`
	MarketCap  int64           `json:"market_cap"`
	PERatio    decimal.Decimal `json:"pe_ratio"`
	EPS        decimal.Decimal `json:"eps"`
	Price      decimal.Decimal `json:"price"`
	FetchedAt  time.Time       `json:"fetched_at"`
	Tradeable  bool            `json:"tradeable"`
	QuoteType  string          `json:"quote_type"`
	MarketTime time.Time       `json:"market_time"`
}

// IndicatorValue is one dated point of a technical indicator series.
type IndicatorValue struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}
