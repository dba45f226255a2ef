// Package feeds turns RSS and Atom feeds into blog entries for bulk import.
package feeds

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"github.com/hoanghai1803/bloglist/internal/models"
)

const (
	httpTimeout   = 30 * time.Second
	maxConcurrent = 4
	maxBodyBytes  = 5 << 20
	userAgent     = "bloglist/1.0 (+feed import)"
)

var (
	errInvalidURL = errors.New("invalid feed url")
	errNotAFeed   = errors.New("not an RSS or Atom feed")
)

// FailedFeed records a feed that could not be fetched or parsed.
type FailedFeed struct {
	Feed  string `json:"feed"`
	Error string `json:"error"`
}

// Result holds the blogs built from every feed, in request order, plus the
// number of items dropped and the feeds that failed.
type Result struct {
	Blogs   []models.NewBlog
	Skipped int
	Failed  []FailedFeed
}

// Importer fetches feeds with bounded concurrency and converts their items
// into blogs.
type Importer struct {
	client   *http.Client
	maxItems int
	now      func() time.Time
}

// NewImporter creates an Importer taking at most maxItemsPerFeed items from
// each feed. Requests use a 30-second timeout and the bloglist user agent.
// Feeds on non-public addresses are refused unless allowPrivate is set.
func NewImporter(maxItemsPerFeed int, allowPrivate bool) *Importer {
	return &Importer{
		client: &http.Client{
			Timeout:   httpTimeout,
			Transport: newTransport(allowPrivate),
		},
		maxItems: maxItemsPerFeed,
		now:      time.Now,
	}
}

// userAgentTransport wraps an http.RoundTripper to inject a custom User-Agent
// header on every request.
type userAgentTransport struct {
	base http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, text/html;q=0.8, */*;q=0.5")
	return t.base.RoundTrip(req)
}

// FetchAll fetches every feed concurrently, at most four at a time, and
// returns the resulting blogs attributed to author. Individual feed failures
// are collected in Result.Failed rather than failing the whole batch.
func (im *Importer) FetchAll(ctx context.Context, feedURLs []string, author string) (*Result, error) {
	type outcome struct {
		blogs   []models.NewBlog
		skipped int
		err     error
	}
	outcomes := make([]outcome, len(feedURLs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for i, feedURL := range feedURLs {
		i, feedURL := i, feedURL
		g.Go(func() error {
			feed, err := im.fetchFeed(ctx, feedURL)
			if err != nil {
				slog.Warn("failed to fetch feed", "url", feedURL, "error", err)
				outcomes[i].err = err
				return nil // skip failures, don't fail the batch
			}

			blogs, skipped := parseFeedItems(feed, author, im.maxItems, im.now())
			outcomes[i] = outcome{blogs: blogs, skipped: skipped}

			slog.Info("fetched feed", "url", feedURL, "items", len(blogs), "skipped", skipped)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetching feeds: %w", err)
	}

	result := &Result{Blogs: []models.NewBlog{}, Failed: []FailedFeed{}}
	for i, o := range outcomes {
		if o.err != nil {
			result.Failed = append(result.Failed, FailedFeed{Feed: feedURLs[i], Error: failureMessage(o.err)})
			continue
		}
		result.Blogs = append(result.Blogs, o.blogs...)
		result.Skipped += o.skipped
	}
	return result, nil
}

// fetchFeed retrieves and parses a single feed. When the URL serves an HTML
// page instead, the feed it advertises via <link rel="alternate"> is used.
func (im *Importer) fetchFeed(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	base, err := url.Parse(feedURL)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") {
		return nil, fmt.Errorf("%w %q", errInvalidURL, feedURL)
	}

	body, err := im.get(ctx, feedURL)
	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err == nil {
		return feed, nil
	}
	if !errors.Is(err, gofeed.ErrFeedTypeNotDetected) {
		return nil, fmt.Errorf("parsing feed %q: %w: %w", feedURL, errNotAFeed, err)
	}

	alt, ok := discoverFeedURL(body, base)
	if !ok {
		return nil, fmt.Errorf("parsing feed %q: %w: %w", feedURL, errNotAFeed, err)
	}
	slog.Debug("following advertised feed", "page", feedURL, "feed", alt)

	body, err = im.get(ctx, alt)
	if err != nil {
		return nil, err
	}
	feed, err = gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing feed %q: %w: %w", alt, errNotAFeed, err)
	}
	return feed, nil
}

func (im *Importer) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request for %q: %w", rawURL, err)
	}

	resp, err := im.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %q: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %q: HTTP %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading body from %q: %w", rawURL, err)
	}
	return body, nil
}

// failureMessage is the client-facing reason for a failed feed. Dial and
// response details stay in the log.
func failureMessage(err error) string {
	switch {
	case errors.Is(err, errInvalidURL):
		return "invalid feed url"
	case errors.Is(err, errBlockedAddress):
		return "feed address not allowed"
	case errors.Is(err, errNotAFeed):
		return "not an RSS or Atom feed"
	default:
		return "feed could not be fetched"
	}
}
