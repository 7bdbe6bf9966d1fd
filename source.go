package htmltree

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
)

// Source is raw HTML ready for parsing.
type Source struct {
	Name string
	Body []byte
}

// LoaderOptions controls where a Loader reads from.
type LoaderOptions struct {
	// Offline serves URLs from the page store only.
	Offline bool
	// EnableCache stores fetched pages for later offline use.
	EnableCache bool
}

// Loader resolves an input argument (URL or file path) to HTML.
type Loader struct {
	fetcher *HTTPFetcher
	store   *PageStore
	opts    LoaderOptions
}

// NewLoader creates a loader. store may be nil when caching is off.
func NewLoader(fetcher *HTTPFetcher, store *PageStore, opts LoaderOptions) *Loader {
	return &Loader{fetcher: fetcher, store: store, opts: opts}
}

// IsURL reports whether input is an http(s) URL rather than a path.
func IsURL(input string) bool {
	u, err := url.Parse(input)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// IsMarkdownFile reports whether path names a Markdown document.
func IsMarkdownFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// Load fetches a URL or reads a file. Failures are NetworkError or IOError.
func (l *Loader) Load(ctx context.Context, input string) (*Source, error) {
	if IsURL(input) {
		return l.loadURL(ctx, input)
	}
	return l.loadFile(input)
}

func (l *Loader) loadURL(ctx context.Context, pageURL string) (*Source, error) {
	if l.opts.Offline {
		if l.store == nil {
			return nil, NewValidationError("offline mode requires the page cache")
		}
		page, err := l.store.Load(pageURL)
		if err != nil {
			return nil, NewIOError("failed to load page from cache", err)
		}
		slog.Debug("Loaded page from cache", "url", pageURL, "fetched_at", page.FetchedAt)
		return &Source{Name: pageURL, Body: page.Body}, nil
	}

	if l.fetcher == nil {
		return nil, NewValidationError("no fetcher configured")
	}
	page, err := l.fetcher.FetchURL(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	if l.opts.EnableCache && l.store != nil {
		if err := l.store.Save(page); err != nil {
			slog.Warn("Failed to cache page", "url", pageURL, "error", err)
		} else {
			slog.Debug("Cached page", "url", pageURL, "dir", l.store.PageDir(pageURL))
		}
	}
	return &Source{Name: pageURL, Body: page.Body}, nil
}

func (l *Loader) loadFile(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewIOError(fmt.Sprintf("failed to read %s", path), err)
	}
	if IsMarkdownFile(path) {
		converted, err := MarkdownToHTML(data)
		if err != nil {
			return nil, err
		}
		data = converted
	}
	return &Source{Name: path, Body: data}, nil
}

// MarkdownToHTML converts Markdown into a complete HTML document.
func MarkdownToHTML(markdown []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("<html><body>")
	if err := goldmark.Convert(markdown, &buf); err != nil {
		return nil, NewParseError("failed to convert markdown", err)
	}
	buf.WriteString("</body></html>")
	return buf.Bytes(), nil
}
