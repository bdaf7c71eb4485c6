package dataflows

import (
	"context"
	"fmt"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/equity"
	"github.com/piquette/finance-go/quote"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/southerncoder/my-Trading-Agents-sub007/internal/cache"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/models"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/resilience"
)

// YahooClient serves quotes and daily candles. Yahoo needs no credentials,
// so it is the primary price source.
type YahooClient struct {
	cache  *cache.Store
	runner *resilience.Runner
	log    *zap.Logger
}

func NewYahooClient(store *cache.Store, runner *resilience.Runner, log *zap.Logger) *YahooClient {
	if log == nil {
		log = zap.NewNop()
	}
	return &YahooClient{cache: store, runner: runner, log: log}
}

// Quote returns the latest market snapshot for symbol. Quotes age fast, so
// they are cached for fifteen minutes only.
func (yc *YahooClient) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	var result models.Quote
	key := cache.Key("yahoo", "quote", symbol)
	err := yc.cache.Fetch(ctx, key, 15*time.Minute, &result, func(ctx context.Context) (any, error) {
		var q models.Quote
		err := yc.runner.Do(ctx, "yahoo", resilience.DefaultPolicy(), func(ctx context.Context) error {
			raw, err := quote.Get(symbol)
			if err != nil {
				return fmt.Errorf("failed to get quote for %s: %w", symbol, err)
			}
			q = models.Quote{
				Symbol:        symbol,
				Price:         decimal.NewFromFloat(raw.RegularMarketPrice),
				Change:        decimal.NewFromFloat(raw.RegularMarketChange),
				ChangePercent: decimal.NewFromFloat(raw.RegularMarketChangePercent),
				Volume:        int64(raw.RegularMarketVolume),
			}
			return nil
		})
		return q, err
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// DailyCandles returns one bar per trading day in [start, end].
func (yc *YahooClient) DailyCandles(ctx context.Context, symbol string, start, end time.Time) ([]models.Candle, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	key := cache.Key("yahoo", "candles", map[string]string{
		"symbol": symbol,
		"start":  start.Format("2006-01-02"),
		"end":    end.Format("2006-01-02"),
	})

	var result []models.Candle
	err := yc.cache.Fetch(ctx, key, 24*time.Hour, &result, func(ctx context.Context) (any, error) {
		var candles []models.Candle
		err := yc.runner.Do(ctx, "yahoo", resilience.DefaultPolicy(), func(ctx context.Context) error {
			params := &chart.Params{
				Symbol:   symbol,
				Start:    datetime.New(&start),
				End:      datetime.New(&end),
				Interval: datetime.OneDay,
			}
			iter := chart.Get(params)

			candles = candles[:0]
			for iter.Next() {
				bar := iter.Bar()
				candles = append(candles, models.Candle{
					Date:   time.Unix(int64(bar.Timestamp), 0).Format("2006-01-02"),
					Open:   bar.Open,
					High:   bar.High,
					Low:    bar.Low,
					Close:  bar.Close,
					Volume: int64(bar.Volume),
				})
			}
			if err := iter.Err(); err != nil {
				return fmt.Errorf("failed to get candles for %s (%s): %w",
					symbol, FormatDateRange(start, end), err)
			}
			return nil
		})
		return candles, err
	})
	if err != nil {
		return nil, err
	}

	yc.log.Debug("yahoo candles fetched",
		zap.String("symbol", symbol),
		zap.Int("bars", len(result)),
	)
	return result, nil
}

// CandleWindow returns daily candles for the trailing window ending at end.
func (yc *YahooClient) CandleWindow(ctx context.Context, symbol string, end time.Time, days int) ([]models.Candle, error) {
	start := end.AddDate(0, 0, -days)
	return yc.DailyCandles(ctx, symbol, start, end)
}

// CompanyProfile returns quote-derived company facts for the fundamentals
// analyst. Profile data is stable enough for a 24 hour TTL.
func (yc *YahooClient) CompanyProfile(ctx context.Context, symbol string) (*CompanyProfile, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	var result CompanyProfile
	key := cache.Key("yahoo", "profile", symbol)
	err := yc.cache.Fetch(ctx, key, 24*time.Hour, &result, func(ctx context.Context) (any, error) {
		var profile CompanyProfile
		err := yc.runner.Do(ctx, "yahoo", resilience.DefaultPolicy(), func(ctx context.Context) error {
			// equity.Get carries the fundamental fields quote.Get omits.
			raw, err := equity.Get(symbol)
			if err != nil {
				return fmt.Errorf("failed to get company profile for %s: %w", symbol, err)
			}
			profile = CompanyProfile{
				Symbol:     symbol,
				Name:       raw.ShortName,
				Exchange:   raw.FullExchangeName,
				Currency:   raw.CurrencyID,
				MarketCap:  raw.MarketCap,
				PERatio:    decimal.NewFromFloat(raw.TrailingPE),
				EPS:        decimal.NewFromFloat(raw.EpsTrailingTwelveMonths),
				Price:      decimal.NewFromFloat(raw.RegularMarketPrice),
				FetchedAt:  time.Now(),
				Tradeable:  raw.IsTradeable,
				QuoteType:  string(raw.QuoteType),
				MarketTime: time.Unix(int64(raw.RegularMarketTime), 0),
			}
			return nil
		})
		return profile, err
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
