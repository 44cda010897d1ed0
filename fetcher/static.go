package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// StaticFetcher retrieves pages with a plain HTTP GET. It decodes legacy
// encodings (ybx.jp serves EUC-JP) before handing text to the extractors;
// skipping the decode garbles every Japanese name and price label.
type StaticFetcher struct {
	client *http.Client
}

// NewStaticFetcher builds the HTTP backend.
func NewStaticFetcher(timeout time.Duration) *StaticFetcher {
	return &StaticFetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// Name implements PageFetcher.
func (s *StaticFetcher) Name() string {
	return BackendStatic
}

// Fetch downloads url, decodes it to UTF-8 based on the response charset and
// returns rendered text plus decoded HTML.
func (s *StaticFetcher) Fetch(ctx context.Context, url string, opts Options) (*PageContent, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept-Language", "ja-JP,ja;q=0.9,en;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("failed to create decoding reader: %w", err)
	}

	decoded, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	html := string(decoded)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return &PageContent{URL: url, Text: doc.Text(), HTML: html}, nil
}
