package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/southerncoder/my-Trading-Agents-sub007/internal/cache"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/resilience"
)

const finnhubBaseURL = "https://finnhub.io/api/v1"

// FinnhubClient serves company news and insider sentiment. It needs an API
// key; without one the news analyst falls back to Google News alone.
type FinnhubClient struct {
	client *resty.Client
	cache  *cache.Store
	runner *resilience.Runner
	apiKey string
}

func NewFinnhubClient(apiKey string, store *cache.Store, runner *resilience.Runner) *FinnhubClient {
	client := resty.New()
	client.SetBaseURL(finnhubBaseURL)
	client.SetTimeout(30 * time.Second)

	return &FinnhubClient{
		client: client,
		cache:  store,
		runner: runner,
		apiKey: apiKey,
	}
}

// Configured reports whether an API key is present.
func (fc *FinnhubClient) Configured() bool { return fc.apiKey != "" }

type finnhubNews struct {
	Category string `json:"category"`
	DateTime int64  `json:"datetime"`
	Headline string `json:"headline"`
	Source   string `json:"source"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
}

// CompanyNews returns articles about symbol published in [from, to].
func (fc *FinnhubClient) CompanyNews(ctx context.Context, symbol string, from, to time.Time) ([]NewsArticle, error) {
	if !fc.Configured() {
		return nil, fmt.Errorf("finnhub API key not configured")
	}
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	key := cache.Key("finnhub", "company_news", map[string]string{
		"symbol": symbol,
		"from":   from.Format("2006-01-02"),
		"to":     to.Format("2006-01-02"),
	})

	var result []NewsArticle
	err := fc.cache.Fetch(ctx, key, 6*time.Hour, &result, func(ctx context.Context) (any, error) {
		var articles []NewsArticle
		err := fc.runner.Do(ctx, "finnhub", resilience.DefaultPolicy(), func(ctx context.Context) error {
			resp, err := fc.client.R().
				SetContext(ctx).
				SetQueryParams(map[string]string{
					"symbol": symbol,
					"from":   from.Format("2006-01-02"),
					"to":     to.Format("2006-01-02"),
					"token":  fc.apiKey,
				}).
				Get("/company-news")
			if err != nil {
				return fmt.Errorf("failed to fetch news for %s: %w", symbol, err)
			}
			if resp.StatusCode() != 200 {
				return fmt.Errorf("finnhub API error %d: %s", resp.StatusCode(), resp.String())
			}

			var raw []finnhubNews
			if err := json.Unmarshal(resp.Body(), &raw); err != nil {
				return fmt.Errorf("failed to parse news response: %w", err)
			}

			articles = make([]NewsArticle, 0, len(raw))
			for _, n := range raw {
				articles = append(articles, NewsArticle{
					Title:       n.Headline,
					Content:     n.Summary,
					URL:         n.URL,
					Source:      n.Source,
					PublishedAt: time.Unix(n.DateTime, 0),
					Keywords:    []string{symbol},
				})
			}
			return nil
		})
		return articles, err
	})
	return result, err
}

type finnhubInsiderSentiment struct {
	Symbol string  `json:"symbol"`
	Year   int     `json:"year"`
	Month  int     `json:"month"`
	Change int64   `json:"change"`
	MSPR   float64 `json:"mspr"`
}

// InsiderSentiment returns the monthly insider sentiment rows for symbol.
func (fc *FinnhubClient) InsiderSentiment(ctx context.Context, symbol string, from, to time.Time) ([]InsiderSentiment, error) {
	if !fc.Configured() {
		return nil, fmt.Errorf("finnhub API key not configured")
	}
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	key := cache.Key("finnhub", "insider_sentiment", map[string]string{
		"symbol": symbol,
		"from":   from.Format("2006-01-02"),
		"to":     to.Format("2006-01-02"),
	})

	var result []InsiderSentiment
	err := fc.cache.Fetch(ctx, key, 24*time.Hour, &result, func(ctx context.Context) (any, error) {
		var rows []InsiderSentiment
		err := fc.runner.Do(ctx, "finnhub", resilience.DefaultPolicy(), func(ctx context.Context) error {
			resp, err := fc.client.R().
				SetContext(ctx).
				SetQueryParams(map[string]string{
					"symbol": symbol,
					"from":   from.Format("2006-01-02"),
					"to":     to.Format("2006-01-02"),
					"token":  fc.apiKey,
				}).
				Get("/stock/insider-sentiment")
			if err != nil {
				return fmt.Errorf("failed to fetch insider sentiment for %s: %w", symbol, err)
			}
			if resp.StatusCode() != 200 {
				return fmt.Errorf("finnhub API error %d: %s", resp.StatusCode(), resp.String())
			}

			var payload struct {
				Data []finnhubInsiderSentiment `json:"data"`
			}
			if err := json.Unmarshal(resp.Body(), &payload); err != nil {
				return fmt.Errorf("failed to parse insider sentiment response: %w", err)
			}

			rows = make([]InsiderSentiment, 0, len(payload.Data))
			for _, s := range payload.Data {
				rows = append(rows, InsiderSentiment{
					Symbol: s.Symbol,
					Year:   s.Year,
					Month:  s.Month,
					Change: s.Change,
					MSPR:   decimal.NewFromFloat(s.MSPR),
				})
			}
			return nil
		})
		return rows, err
	})
	return result, err
}
