package htmltree

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
)

// HTTPOptions configures the fetcher.
type HTTPOptions struct {
	Timeout       time.Duration
	UserAgent     string
	MaxRetries    int
	RetryDelay    time.Duration
	CustomHeaders map[string]string
}

// HTTPFetcher retrieves documents over HTTP with retries.
type HTTPFetcher struct {
	config *HTTPOptions
}

// NewHTTPFetcher creates a fetcher. A nil config uses the defaults.
func NewHTTPFetcher(config *HTTPOptions) *HTTPFetcher {
	if config == nil {
		config = NewDefaultConfig().HTTPOptions()
	}
	return &HTTPFetcher{config: config}
}

// FetchURL fetches targetURL, retrying transport errors and 5xx responses.
// 4xx responses fail immediately.
func (f *HTTPFetcher) FetchURL(ctx context.Context, targetURL string) (*Page, error) {
	var lastErr error

	for attempt := 0; attempt <= f.config.MaxRetries; attempt++ {
		if attempt > 0 {
			slog.Info("Retrying request", "attempt", attempt, "url", targetURL)
			select {
			case <-ctx.Done():
				return nil, NewNetworkError(fmt.Sprintf("request to %s cancelled", targetURL), ctx.Err())
			case <-time.After(f.config.RetryDelay):
			}
		}

		page, status, err := f.doRequest(ctx, targetURL)
		if err == nil {
			return page, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, NewNetworkError(fmt.Sprintf("request to %s cancelled", targetURL), ctx.Err())
		}
		// 4xx错误不重试
		if status >= 400 && status < 500 {
			return nil, NewNetworkError(fmt.Sprintf("HTTP %d fetching %s", status, targetURL), err)
		}
		slog.Debug("Request failed", "url", targetURL, "status", status, "error", err)
	}

	return nil, NewNetworkError(fmt.Sprintf("request to %s failed after %d retries", targetURL, f.config.MaxRetries), lastErr)
}

// doRequest performs one attempt and reports the HTTP status, if any.
func (f *HTTPFetcher) doRequest(ctx context.Context, targetURL string) (*Page, int, error) {
	options := []colly.CollectorOption{
		colly.AllowURLRevisit(),
		colly.StdlibContext(ctx),
	}
	if f.config.UserAgent != "" {
		options = append(options, colly.UserAgent(f.config.UserAgent))
	}
	c := colly.NewCollector(options...)
	// Read whole pages; colly caps bodies at 10 MiB by default.
	c.MaxBodySize = 0
	if f.config.Timeout > 0 {
		c.SetRequestTimeout(f.config.Timeout)
	}

	var (
		page   *Page
		status int
	)
	c.OnRequest(func(r *colly.Request) {
		for key, value := range f.config.CustomHeaders {
			r.Headers.Set(key, value)
		}
		slog.Debug("Fetching", "url", r.URL.String())
	})
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		page = &Page{
			URL:         targetURL,
			StatusCode:  r.StatusCode,
			ContentType: r.Headers.Get("Content-Type"),
			FetchedAt:   time.Now(),
			Body:        r.Body,
		}
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
	})

	if err := c.Visit(targetURL); err != nil {
		return nil, status, err
	}
	if page == nil {
		return nil, status, fmt.Errorf("no response received (%s)", http.StatusText(status))
	}
	return page, status, nil
}
