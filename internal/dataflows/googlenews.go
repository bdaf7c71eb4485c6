package dataflows

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/southerncoder/my-Trading-Agents-sub007/internal/cache"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/resilience"
)

// GoogleNewsClient scrapes the Google News search page. It needs no key and
// backs up Finnhub for headline coverage.
type GoogleNewsClient struct {
	client *resty.Client
	cache  *cache.Store
	runner *resilience.Runner
}

func NewGoogleNewsClient(store *cache.Store, runner *resilience.Runner, userAgent string) *GoogleNewsClient {
	if userAgent == "" {
		userAgent = "Mozilla/5.0 (compatible; trading-agents/1.0)"
	}
	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetHeader("User-Agent", userAgent)

	return &GoogleNewsClient{client: client, cache: store, runner: runner}
}

// Search returns up to maxResults articles matching query, optionally
// bounded by a publish date range.
func (gc *GoogleNewsClient) Search(ctx context.Context, query string, start, end time.Time, maxResults int) ([]NewsArticle, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}
	if maxResults <= 0 {
		maxResults = 20
	}

	key := cache.Key("google_news", "search", map[string]string{
		"query": query,
		"start": start.Format("2006-01-02"),
		"end":   end.Format("2006-01-02"),
		"max":   strconv.Itoa(maxResults),
	})

	var result []NewsArticle
	err := gc.cache.Fetch(ctx, key, 2*time.Hour, &result, func(ctx context.Context) (any, error) {
		var articles []NewsArticle
		err := gc.runner.Do(ctx, "google_news", resilience.DefaultPolicy(), func(ctx context.Context) error {
			resp, err := gc.client.R().SetContext(ctx).Get(buildGoogleNewsURL(query, start, end))
			if err != nil {
				return fmt.Errorf("failed to fetch google news: %w", err)
			}
			if resp.StatusCode() != 200 {
				return fmt.Errorf("google news HTTP error %d", resp.StatusCode())
			}

			doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
			if err != nil {
				return fmt.Errorf("failed to parse google news HTML: %w", err)
			}

			articles = parseGoogleNewsHTML(doc, query)
			if len(articles) > maxResults {
				articles = articles[:maxResults]
			}
			return nil
		})
		return articles, err
	})
	return result, err
}

func buildGoogleNewsURL(query string, start, end time.Time) string {
	q := query
	if !start.IsZero() && !end.IsZero() {
		q += fmt.Sprintf(" after:%s before:%s",
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	return fmt.Sprintf("https://news.google.com/search?q=%s&hl=en&gl=US&ceid=US:en",
		url.QueryEscape(q))
}

func parseGoogleNewsHTML(doc *goquery.Document, query string) []NewsArticle {
	var articles []NewsArticle

	doc.Find("article").Each(func(i int, s *goquery.Selection) {
		title := strings.TrimSpace(s.Find("h3").Text())
		if title == "" {
			title = strings.TrimSpace(s.Find("h4").Text())
		}
		if title == "" {
			return
		}

		href, ok := s.Find("a").First().Attr("href")
		if !ok {
			return
		}

		source := strings.TrimSpace(s.Find("div[data-n-tid]").Text())
		if source == "" {
			source = "Google News"
		}

		articles = append(articles, NewsArticle{
			Title:       title,
			Content:     strings.TrimSpace(s.Find("span").Last().Text()),
			URL:         cleanGoogleNewsURL(href),
			Source:      source,
			PublishedAt: parseRelativeTime(strings.TrimSpace(s.Find("time").Text())),
			Keywords:    []string{query},
		})
	})

	return articles
}

// cleanGoogleNewsURL unwraps the redirect wrapper Google puts around result
// links and absolutizes relative paths.
func cleanGoogleNewsURL(googleURL string) string {
	if strings.Contains(googleURL, "url=") {
		parts := strings.Split(googleURL, "url=")
		if len(parts) > 1 {
			if decoded, err := url.QueryUnescape(parts[1]); err == nil {
				return decoded
			}
		}
	}
	if strings.HasPrefix(googleURL, "./") {
		return "https://news.google.com" + googleURL[1:]
	}
	if strings.HasPrefix(googleURL, "/") {
		return "https://news.google.com" + googleURL
	}
	return googleURL
}

var (
	minutesAgoRe = regexp.MustCompile(`(\d+)\s*minutes?\s*ago`)
	hoursAgoRe   = regexp.MustCompile(`(\d+)\s*hours?\s*ago`)
	daysAgoRe    = regexp.MustCompile(`(\d+)\s*days?\s*ago`)
)

// parseRelativeTime converts Google's "3 hours ago" style stamps into
// absolute times. Unparseable stamps are treated as one hour old.
func parseRelativeTime(timeText string) time.Time {
	now := time.Now()
	timeText = strings.ToLower(strings.TrimSpace(timeText))

	if timeText == "just now" || timeText == "now" {
		return now
	}
	if m := minutesAgoRe.FindStringSubmatch(timeText); len(m) > 1 {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return now.Add(-time.Duration(n) * time.Minute)
		}
	}
	if m := hoursAgoRe.FindStringSubmatch(timeText); len(m) > 1 {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return now.Add(-time.Duration(n) * time.Hour)
		}
	}
	if m := daysAgoRe.FindStringSubmatch(timeText); len(m) > 1 {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return now.Add(-time.Duration(n) * 24 * time.Hour)
		}
	}
	if t, err := ParseDateString(timeText); err == nil {
		return t
	}
	return now.Add(-1 * time.Hour)
}
