package dataflows

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/southerncoder/my-Trading-Agents-sub007/config"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/cache"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/models"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/resilience"
)

// candleWindowDays is how far back the market analyst looks. A year of
// daily bars keeps the 200-day average defined.
const candleWindowDays = 365

// newsLookbackDays bounds the company news window.
const newsLookbackDays = 7

// Service bundles the providers behind the four snapshot calls the analyst
// stages make. Each bundle carries both structured data and a prompt-ready
// text block.
type Service struct {
	log      *zap.Logger
	yahoo    *YahooClient
	longport *LongportClient
	finnhub  *FinnhubClient
	google   *GoogleNewsClient
	reddit   *RedditClient
}

// NewService wires every provider the config has credentials for. LongPort
// stays nil without credentials; Finnhub reports itself unconfigured.
func NewService(cfg *config.Config, store *cache.Store, runner *resilience.Runner, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}

	s := &Service{
		log:     log,
		yahoo:   NewYahooClient(store, runner, log),
		finnhub: NewFinnhubClient(cfg.FinnhubAPIKey, store, runner),
		google:  NewGoogleNewsClient(store, runner, cfg.RedditUserAgent),
		reddit:  NewRedditClient(store, runner, cfg.RedditUserAgent),
	}

	lp, err := NewLongportClient(LongportCredentials{
		AppKey:      cfg.LongportAppKey,
		AppSecret:   cfg.LongportAppSecret,
		AccessToken: cfg.LongportAccessToken,
	})
	if err != nil {
		log.Debug("longport fallback disabled", zap.Error(err))
	} else {
		s.longport = lp
	}
	return s
}

// Close releases provider connections.
func (s *Service) Close() error {
	if s.longport != nil {
		return s.longport.Close()
	}
	return nil
}

// MarketBundle is the market analyst's working set.
type MarketBundle struct {
	Symbol     string
	Quote      *models.Quote
	Candles    []models.Candle
	Indicators map[string]float64
	Metrics    models.RiskMetrics
	Text       string
}

// Market gathers candles, a live quote, indicators, and derived risk
// metrics for symbol as of tradeDate (YYYY-MM-DD).
func (s *Service) Market(ctx context.Context, symbol, tradeDate string) (*MarketBundle, error) {
	symbol = NormalizeSymbol(symbol)
	end, err := time.Parse("2006-01-02", tradeDate)
	if err != nil {
		return nil, fmt.Errorf("invalid trade date %q: %w", tradeDate, err)
	}

	candles, err := s.yahoo.CandleWindow(ctx, symbol, end, candleWindowDays)
	if err != nil || len(candles) == 0 {
		if s.longport == nil {
			if err == nil {
				err = fmt.Errorf("no candles returned for %s", symbol)
			}
			return nil, err
		}
		s.log.Warn("yahoo candles unavailable, trying longport",
			zap.String("symbol", symbol), zap.Error(err))
		candles, err = s.longport.DailyCandles(ctx, symbol, 250)
		if err != nil {
			return nil, err
		}
	}
	SortCandles(candles)

	// The quote is garnish; candle history alone is enough to report on.
	q, err := s.yahoo.Quote(ctx, symbol)
	if err != nil {
		s.log.Debug("quote unavailable", zap.String("symbol", symbol), zap.Error(err))
		q = nil
	}

	bundle := &MarketBundle{
		Symbol:     symbol,
		Quote:      q,
		Candles:    candles,
		Indicators: LatestIndicators(candles),
		Metrics:    DeriveRiskMetrics(candles),
	}
	bundle.Text = formatMarketText(bundle, tradeDate)
	return bundle, nil
}

// NewsBundle is the news analyst's working set.
type NewsBundle struct {
	Symbol   string
	Articles []NewsArticle
	Text     string
}

// News merges Finnhub company news with Google News headlines for the week
// up to tradeDate. One source failing is tolerated; both failing is not.
func (s *Service) News(ctx context.Context, symbol, tradeDate string) (*NewsBundle, error) {
	symbol = NormalizeSymbol(symbol)
	end, err := time.Parse("2006-01-02", tradeDate)
	if err != nil {
		return nil, fmt.Errorf("invalid trade date %q: %w", tradeDate, err)
	}
	start := end.AddDate(0, 0, -newsLookbackDays)

	var articles []NewsArticle
	var failures []error

	if s.finnhub.Configured() {
		finnhubArticles, err := s.finnhub.CompanyNews(ctx, symbol, start, end)
		if err != nil {
			s.log.Warn("finnhub news unavailable", zap.String("symbol", symbol), zap.Error(err))
			failures = append(failures, err)
		} else {
			articles = append(articles, finnhubArticles...)
		}
	}

	googleArticles, err := s.google.Search(ctx, symbol+" stock", start, end, 20)
	if err != nil {
		s.log.Warn("google news unavailable", zap.String("symbol", symbol), zap.Error(err))
		failures = append(failures, err)
	} else {
		articles = append(articles, googleArticles...)
	}

	if len(articles) == 0 && len(failures) > 0 {
		return nil, fmt.Errorf("all news sources failed for %s: %w", symbol, failures[0])
	}

	sort.Slice(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})

	bundle := &NewsBundle{Symbol: symbol, Articles: articles}
	bundle.Text = formatNewsText(bundle)
	return bundle, nil
}

// SocialBundle is the social media analyst's working set.
type SocialBundle struct {
	Symbol string
	Posts  []RedditPost
	Text   string
}

// Social gathers recent Reddit discussion mentioning symbol.
func (s *Service) Social(ctx context.Context, symbol string) (*SocialBundle, error) {
	symbol = NormalizeSymbol(symbol)

	posts, err := s.reddit.SearchPosts(ctx, symbol, "", 25)
	if err != nil {
		return nil, err
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].Score > posts[j].Score })

	bundle := &SocialBundle{Symbol: symbol, Posts: posts}
	bundle.Text = formatSocialText(bundle)
	return bundle, nil
}

// FundamentalsBundle is the fundamentals analyst's working set.
type FundamentalsBundle struct {
	Symbol  string
	Profile *CompanyProfile
	Insider []InsiderSentiment
	Text    string
}

// Fundamentals gathers the company profile and, when Finnhub is configured,
// insider sentiment for the trailing quarter.
func (s *Service) Fundamentals(ctx context.Context, symbol, tradeDate string) (*FundamentalsBundle, error) {
	symbol = NormalizeSymbol(symbol)
	end, err := time.Parse("2006-01-02", tradeDate)
	if err != nil {
		return nil, fmt.Errorf("invalid trade date %q: %w", tradeDate, err)
	}

	profile, err := s.yahoo.CompanyProfile(ctx, symbol)
	if err != nil {
		return nil, err
	}

	var insider []InsiderSentiment
	if s.finnhub.Configured() {
		insider, err = s.finnhub.InsiderSentiment(ctx, symbol, end.AddDate(0, -3, 0), end)
		if err != nil {
			s.log.Warn("insider sentiment unavailable", zap.String("symbol", symbol), zap.Error(err))
			insider = nil
		}
	}

	bundle := &FundamentalsBundle{Symbol: symbol, Profile: profile, Insider: insider}
	bundle.Text = formatFundamentalsText(bundle)
	return bundle, nil
}

// --- prompt text rendering ---

// indicatorOrder fixes the rendering order of the indicator table.
var indicatorOrder = []string{
	"close_10_ema", "close_50_sma", "close_200_sma", "vwma",
	"rsi", "mfi", "macd", "macds", "macdh",
	"boll", "boll_ub", "boll_lb", "atr",
}

func formatMarketText(b *MarketBundle, tradeDate string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s market data as of %s\n\n", b.Symbol, tradeDate)

	if b.Quote != nil {
		fmt.Fprintf(&sb, "Quote: %s (%s / %s%%), volume %d\n",
			b.Quote.Price.StringFixed(2),
			b.Quote.Change.StringFixed(2),
			b.Quote.ChangePercent.StringFixed(2),
			b.Quote.Volume)
	}
	if n := len(b.Candles); n > 0 {
		fmt.Fprintf(&sb, "History: %d daily bars from %s to %s, last close %s\n",
			n, b.Candles[0].Date, b.Candles[n-1].Date,
			b.Candles[n-1].Close.StringFixed(2))
	}

	if len(b.Indicators) > 0 {
		sb.WriteString("\nTechnical indicators:\n")
		for _, name := range indicatorOrder {
			if v, ok := b.Indicators[name]; ok {
				fmt.Fprintf(&sb, "- %s: %.2f\n", name, v)
			}
		}
	}

	fmt.Fprintf(&sb, "\nRealized volatility (annualized): %.1f%%\n", b.Metrics.Volatility*100)
	fmt.Fprintf(&sb, "Up-day rate: %.1f%%, payoff ratio %.2f, average volume %.0f\n",
		b.Metrics.WinRate*100, b.Metrics.PayoffRatio, b.Metrics.AvgVolume)
	return sb.String()
}

func formatNewsText(b *NewsBundle) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Recent news for %s\n\n", b.Symbol)

	if len(b.Articles) == 0 {
		sb.WriteString("No recent articles found.\n")
		return sb.String()
	}

	limit := len(b.Articles)
	if limit > 15 {
		limit = 15
	}
	for _, a := range b.Articles[:limit] {
		fmt.Fprintf(&sb, "- [%s] %s (%s)\n", a.Source, a.Title, a.PublishedAt.Format("2006-01-02"))
		if summary := truncate(a.Content, 200); summary != "" {
			fmt.Fprintf(&sb, "  %s\n", summary)
		}
	}
	return sb.String()
}

func formatSocialText(b *SocialBundle) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Reddit discussion mentioning %s\n\n", b.Symbol)

	if len(b.Posts) == 0 {
		sb.WriteString("No recent posts found.\n")
		return sb.String()
	}

	limit := len(b.Posts)
	if limit > 15 {
		limit = 15
	}
	for _, p := range b.Posts[:limit] {
		fmt.Fprintf(&sb, "- r/%s (%d points, %d comments): %s\n",
			p.Subreddit, p.Score, p.Comments, p.Title)
		if body := truncate(p.Content, 200); body != "" {
			fmt.Fprintf(&sb, "  %s\n", body)
		}
	}
	return sb.String()
}

func formatFundamentalsText(b *FundamentalsBundle) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Fundamentals for %s\n\n", b.Symbol)

	if p := b.Profile; p != nil {
		fmt.Fprintf(&sb, "%s (%s, %s)\n", p.Name, p.Exchange, p.Currency)
		fmt.Fprintf(&sb, "Price: %s, market cap %d\n", p.Price.StringFixed(2), p.MarketCap)
		fmt.Fprintf(&sb, "Trailing P/E: %s, EPS (ttm): %s\n",
			p.PERatio.StringFixed(2), p.EPS.StringFixed(2))
	}

	if len(b.Insider) > 0 {
		sb.WriteString("\nInsider sentiment (monthly share purchase ratio):\n")
		for _, row := range b.Insider {
			fmt.Fprintf(&sb, "- %04d-%02d: net change %d, MSPR %s\n",
				row.Year, row.Month, row.Change, row.MSPR.StringFixed(1))
		}
	}
	return sb.String()
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
