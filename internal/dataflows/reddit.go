package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/southerncoder/my-Trading-Agents-sub007/internal/cache"
	"github.com/southerncoder/my-Trading-Agents-sub007/internal/resilience"
)

// RedditClient reads public subreddit listings for retail sentiment. The
// unauthenticated JSON endpoints are rate limited but keyless.
type RedditClient struct {
	client *resty.Client
	cache  *cache.Store
	runner *resilience.Runner
}

func NewRedditClient(store *cache.Store, runner *resilience.Runner, userAgent string) *RedditClient {
	if userAgent == "" {
		userAgent = "trading-agents/1.0"
	}
	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetHeader("User-Agent", userAgent)

	return &RedditClient{client: client, cache: store, runner: runner}
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPostData `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPostData struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Permalink   string  `json:"permalink"`
	Subreddit   string  `json:"subreddit"`
	Author      string  `json:"author"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
	Stickied    bool    `json:"stickied"`
}

// SubredditPosts returns the current listing of a subreddit.
func (rc *RedditClient) SubredditPosts(ctx context.Context, subreddit, sort string, limit int) ([]RedditPost, error) {
	if strings.TrimSpace(subreddit) == "" {
		return nil, fmt.Errorf("subreddit cannot be empty")
	}
	if sort == "" {
		sort = "hot"
	}
	if limit <= 0 || limit > 100 {
		limit = 25
	}

	listing := fmt.Sprintf("https://www.reddit.com/r/%s/%s.json?limit=%d", subreddit, sort, limit)
	key := cache.Key("reddit", "subreddit", map[string]string{
		"subreddit": subreddit, "sort": sort, "limit": strconv.Itoa(limit),
	})
	return rc.fetchListing(ctx, key, listing)
}

// SearchPosts searches Reddit for posts mentioning query, newest window
// first. An empty subreddit searches site wide.
func (rc *RedditClient) SearchPosts(ctx context.Context, query, subreddit string, limit int) ([]RedditPost, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}
	if limit <= 0 || limit > 100 {
		limit = 25
	}

	base := "https://www.reddit.com/search.json"
	if subreddit != "" {
		base = fmt.Sprintf("https://www.reddit.com/r/%s/search.json", subreddit)
	}
	listing := fmt.Sprintf("%s?q=%s&sort=relevance&t=week&limit=%d&restrict_sr=%t",
		base, url.QueryEscape(query), limit, subreddit != "")

	key := cache.Key("reddit", "search", map[string]string{
		"query": query, "subreddit": subreddit, "limit": strconv.Itoa(limit),
	})
	return rc.fetchListing(ctx, key, listing)
}

func (rc *RedditClient) fetchListing(ctx context.Context, key, listingURL string) ([]RedditPost, error) {
	var result []RedditPost
	err := rc.cache.Fetch(ctx, key, 1*time.Hour, &result, func(ctx context.Context) (any, error) {
		var posts []RedditPost
		err := rc.runner.Do(ctx, "reddit", resilience.DefaultPolicy(), func(ctx context.Context) error {
			resp, err := rc.client.R().SetContext(ctx).Get(listingURL)
			if err != nil {
				return fmt.Errorf("failed to fetch reddit listing: %w", err)
			}
			if resp.StatusCode() != 200 {
				return fmt.Errorf("reddit HTTP error %d", resp.StatusCode())
			}

			var listing redditListing
			if err := json.Unmarshal(resp.Body(), &listing); err != nil {
				return fmt.Errorf("failed to parse reddit JSON: %w", err)
			}

			posts = make([]RedditPost, 0, len(listing.Data.Children))
			for _, child := range listing.Data.Children {
				posts = append(posts, convertRedditPost(child.Data))
			}
			return nil
		})
		return posts, err
	})
	return result, err
}

func convertRedditPost(d redditPostData) RedditPost {
	return RedditPost{
		ID:        d.ID,
		Title:     d.Title,
		Content:   d.Selftext,
		URL:       "https://www.reddit.com" + d.Permalink,
		Subreddit: d.Subreddit,
		Author:    d.Author,
		Score:     d.Score,
		Comments:  d.NumComments,
		CreatedAt: time.Unix(int64(d.CreatedUTC), 0),
		Stickied:  d.Stickied,
	}
}
