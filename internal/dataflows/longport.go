package dataflows

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	lpconfig "github.com/longportapp/openapi-go/config"
	lpquote "github.com/longportapp/openapi-go/quote"
	"github.com/shopspring/decimal"

	"github.com/southerncoder/my-Trading-Agents-sub007/internal/models"
)

// LongportCredentials configure the LongPort OpenAPI quote channel.
type LongportCredentials struct {
	AppKey      string
	AppSecret   string
	AccessToken string
}

func (c LongportCredentials) complete() bool {
	return c.AppKey != "" && c.AppSecret != "" && c.AccessToken != ""
}

// LongportClient is the fallback candle source used when Yahoo cannot serve
// a symbol, typically HK and CN listings.
type LongportClient struct {
	quoteCtx *lpquote.QuoteContext
}

// NewLongportClient dials the LongPort quote channel. It returns an error
// when credentials are missing so callers can leave the fallback unset.
func NewLongportClient(creds LongportCredentials) (*LongportClient, error) {
	if !creds.complete() {
		return nil, errors.New("longport API credentials not configured")
	}

	conf, err := lpconfig.New(lpconfig.WithConfigKey(creds.AppKey, creds.AppSecret, creds.AccessToken))
	if err != nil {
		return nil, fmt.Errorf("failed to build longport config: %w", err)
	}
	quoteCtx, err := lpquote.NewFromCfg(conf)
	if err != nil {
		return nil, fmt.Errorf("failed to open longport quote context: %w", err)
	}
	return &LongportClient{quoteCtx: quoteCtx}, nil
}

// Close releases the underlying quote connection.
func (lc *LongportClient) Close() error {
	if lc.quoteCtx != nil {
		lc.quoteCtx.Close()
	}
	return nil
}

// DailyCandles returns up to count daily bars for symbol, oldest first.
func (lc *LongportClient) DailyCandles(ctx context.Context, symbol string, count int) ([]models.Candle, error) {
	if lc.quoteCtx == nil {
		return nil, errors.New("longport quote context is nil")
	}
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}

	sticks, err := lc.quoteCtx.Candlesticks(ctx, longportSymbol(symbol), lpquote.PeriodDay, int32(count), lpquote.AdjustTypeNo)
	if err != nil {
		return nil, fmt.Errorf("failed to get longport candles for %s: %w", symbol, err)
	}
	return convertCandlesticks(sticks), nil
}

// longportSymbol appends the region suffix LongPort expects. Bare tickers
// are assumed to be US listings.
func longportSymbol(symbol string) string {
	symbol = NormalizeSymbol(symbol)
	if strings.Contains(symbol, ".") {
		return symbol
	}
	return symbol + ".US"
}

func convertCandlesticks(sticks []*lpquote.Candlestick) []models.Candle {
	candles := make([]models.Candle, 0, len(sticks))
	for _, s := range sticks {
		if s == nil {
			continue
		}
		candles = append(candles, models.Candle{
			Date:   time.Unix(s.Timestamp, 0).Format("2006-01-02"),
			Open:   derefDecimal(s.Open),
			High:   derefDecimal(s.High),
			Low:    derefDecimal(s.Low),
			Close:  derefDecimal(s.Close),
			Volume: s.Volume,
		})
	}
	return candles
}

func derefDecimal(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
