package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
)

// Config holds fetcher configuration.
type Config struct {
	Delay       time.Duration
	Parallelism int
	UserAgent   string
	Timeout     time.Duration
}

// Page is one fetched URL.
type Page struct {
	URL         string
	ContentType string
	Content     string
	FetchedAt   time.Time
}

// Scraper fetches rendered pages for evaluation. Links are not followed.
type Scraper struct {
	config Config
}

// New creates a new Scraper with the given configuration.
func New(config Config) *Scraper {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.UserAgent == "" {
		config.UserAgent = "sitegen/1.0"
	}
	if config.Parallelism <= 0 {
		config.Parallelism = 2
	}
	return &Scraper{config: config}
}

// Fetch retrieves every URL once and returns the pages in the order of
// urls. Failed URLs are skipped and reported in the returned error only
// when nothing could be fetched.
func (s *Scraper) Fetch(ctx context.Context, urls []string) ([]Page, error) {
	var (
		mu      sync.Mutex
		fetched = make(map[string]Page)
		failed  []string
	)

	c := colly.NewCollector(
		colly.UserAgent(s.config.UserAgent),
		colly.Async(true),
	)
	c.SetRequestTimeout(s.config.Timeout)
	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Delay:       s.config.Delay,
		Parallelism: s.config.Parallelism,
	}); err != nil {
		return nil, fmt.Errorf("failed to set rate limit: %w", err)
	}

	// Check for cancellation before each request
	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			slog.Debug("fetch cancelled", "url", r.URL.String())
			r.Abort()
		}
	})

	c.OnResponse(func(r *colly.Response) {
		key := r.Ctx.Get("source")
		slog.Debug("fetched page", "url", key, "status", r.StatusCode, "size", len(r.Body))
		mu.Lock()
		defer mu.Unlock()
		fetched[key] = Page{
			URL:         r.Request.URL.String(),
			ContentType: r.Headers.Get("Content-Type"),
			Content:     string(r.Body),
			FetchedAt:   time.Now(),
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		key := r.Ctx.Get("source")
		slog.Warn("failed to fetch page", "url", key, "status", r.StatusCode, "error", err)
		mu.Lock()
		defer mu.Unlock()
		failed = append(failed, key)
	})

	for _, u := range urls {
		rctx := colly.NewContext()
		rctx.Put("source", u)
		if err := c.Request("GET", u, nil, rctx, nil); err != nil {
			slog.Warn("failed to queue page", "url", u, "error", err)
			mu.Lock()
			failed = append(failed, u)
			mu.Unlock()
		}
	}
	c.Wait()

	pages := make([]Page, 0, len(fetched))
	for _, u := range urls {
		if p, ok := fetched[u]; ok {
			pages = append(pages, p)
		}
	}

	if err := ctx.Err(); err != nil {
		return pages, err
	}
	if len(pages) == 0 && len(urls) > 0 {
		return nil, fmt.Errorf("failed to fetch any page (%d failed)", len(failed))
	}
	return pages, nil
}
