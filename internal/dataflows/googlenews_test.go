package dataflows

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGoogleNewsHTML(t *testing.T) {
	html := `<html><body>
		<article>
			<h3>Apple beats estimates</h3>
			<a href="./articles/abc123?hl=en"></a>
			<div data-n-tid="9">Reuters</div>
			<time>2 hours ago</time>
			<span>Strong iPhone sales drove the quarter</span>
		</article>
		<article>
			<h4>Untitled fragment without a link</h4>
		</article>
		<article>
			<a href="/articles/xyz"></a>
		</article>
	</body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	articles := parseGoogleNewsHTML(doc, "AAPL")

	require.Len(t, articles, 1, "articles missing a title or link are skipped")
	a := articles[0]
	assert.Equal(t, "Apple beats estimates", a.Title)
	assert.Equal(t, "https://news.google.com/articles/abc123?hl=en", a.URL)
	assert.Equal(t, "Reuters", a.Source)
	assert.Equal(t, "Strong iPhone sales drove the quarter", a.Content)
	assert.Equal(t, []string{"AAPL"}, a.Keywords)
	assert.WithinDuration(t, time.Now().Add(-2*time.Hour), a.PublishedAt, 2*time.Minute)
}

func TestCleanGoogleNewsURL(t *testing.T) {
	cases := map[string]string{
		"./articles/abc":                        "https://news.google.com/articles/abc",
		"/articles/xyz":                         "https://news.google.com/articles/xyz",
		"https://r.g.com/x?url=https%3A%2F%2Fexample.com%2Fstory": "https://example.com/story",
		"https://example.com/direct":            "https://example.com/direct",
	}
	for in, want := range cases {
		assert.Equal(t, want, cleanGoogleNewsURL(in), in)
	}
}

func TestParseRelativeTime(t *testing.T) {
	now := time.Now()

	assert.WithinDuration(t, now, parseRelativeTime("just now"), time.Minute)
	assert.WithinDuration(t, now.Add(-5*time.Minute), parseRelativeTime("5 minutes ago"), time.Minute)
	assert.WithinDuration(t, now.Add(-3*time.Hour), parseRelativeTime("3 hours ago"), time.Minute)
	assert.WithinDuration(t, now.Add(-48*time.Hour), parseRelativeTime("2 days ago"), time.Minute)
	// Unparseable stamps are treated as roughly an hour old.
	assert.WithinDuration(t, now.Add(-time.Hour), parseRelativeTime("yesterday-ish"), time.Minute)
}

func TestBuildGoogleNewsURL(t *testing.T) {
	start := time.Date(2025, 5, 26, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	got := buildGoogleNewsURL("NVDA stock", start, end)

	assert.Contains(t, got, "news.google.com/search")
	assert.Contains(t, got, "NVDA+stock")
	assert.Contains(t, got, "after%3A2025-05-26")
	assert.Contains(t, got, "before%3A2025-06-02")

	bare := buildGoogleNewsURL("NVDA stock", time.Time{}, time.Time{})
	assert.NotContains(t, bare, "after")
}
