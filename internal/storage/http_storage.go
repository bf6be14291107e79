package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

const (
	// DefaultFetchTimeout bounds a single page fetch
	DefaultFetchTimeout = 10 * time.Second

	// DefaultMaxPageSize caps how many body bytes are parsed
	DefaultMaxPageSize = 10 << 20

	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// PageFetcher retrieves and parses a web page
type PageFetcher interface {
	FetchPage(ctx context.Context, pageURL string) (*goquery.Document, error)
}

// HTTPPageFetcher implements PageFetcher over HTTP(S).
// A fetch is a single attempt; callers decide whether to try again.
type HTTPPageFetcher struct {
	client      *http.Client
	maxPageSize int64
}

// NewHTTPPageFetcher creates a page fetcher with the given per-fetch timeout
func NewHTTPPageFetcher(timeout time.Duration) *HTTPPageFetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,

		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
		ExpectContinueTimeout: 1 * time.Second,

		MaxResponseHeaderBytes: 64 << 10,
	}

	return &HTTPPageFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("too many redirects (limit: 5)")
				}
				return nil
			},
		},
		maxPageSize: DefaultMaxPageSize,
	}
}

// FetchPage downloads pageURL and parses it as HTML
func (h *HTTPPageFetcher) FetchPage(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,text/plain;q=0.8,*/*;q=0.5")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !isPageContentType(contentType) {
		return nil, fmt.Errorf("unsupported content type %q", contentType)
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, h.maxPageSize), contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to decode page charset: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	return doc, nil
}

// isPageContentType accepts HTML, XML and plain text. A missing header is accepted.
func isPageContentType(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	switch {
	case strings.HasPrefix(mediaType, "text/"):
		return true
	case mediaType == "application/xhtml+xml", mediaType == "application/xml":
		return true
	case strings.HasSuffix(mediaType, "+xml"):
		return true
	}
	return false
}
