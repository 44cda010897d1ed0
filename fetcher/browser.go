package fetcher

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	log "github.com/sirupsen/logrus"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// stealthScript hides the obvious automation signals some dealers check for.
const stealthScript = `
	Object.defineProperty(navigator, 'webdriver', {
		get: () => undefined,
	});
	Object.defineProperty(navigator, 'languages', {
		get: () => ['ja-JP', 'ja', 'en-US', 'en'],
	});
	Object.defineProperty(navigator, 'plugins', {
		get: () => [1, 2, 3, 4, 5],
	});
	window.chrome = { runtime: {} };
`

// BrowserFetcher drives a shared headless browser. The browser instance is
// reused across sequential fetches to amortize startup cost; each fetch gets
// its own page, closed on every exit path.
type BrowserFetcher struct {
	browser *rod.Browser
}

// NewBrowserFetcher launches the browser. Uses system Chromium when present
// (Docker), auto-detected otherwise.
func NewBrowserFetcher() (*BrowserFetcher, error) {
	l := launcher.New().
		Headless(true).
		NoSandbox(true).
		Leakless(false)

	if _, err := os.Stat("/usr/bin/chromium-browser"); err == nil {
		l = l.Bin("/usr/bin/chromium-browser")
		log.Info("Using system Chromium in Docker environment")
	} else {
		log.Info("Using auto-detected Chromium (local environment)")
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	return &BrowserFetcher{browser: browser}, nil
}

// Name implements PageFetcher.
func (b *BrowserFetcher) Name() string {
	return BackendBrowser
}

// Close shuts the shared browser down.
func (b *BrowserFetcher) Close() {
	if b.browser != nil {
		if err := b.browser.Close(); err != nil {
			log.Warnf("Failed to close browser: %v", err)
		}
	}
}

// Fetch navigates one fresh page to url and returns its rendered text and
// HTML. The page is closed regardless of outcome.
func (b *BrowserFetcher) Fetch(ctx context.Context, url string, opts Options) (*PageContent, error) {
	page, err := b.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	defer func() {
		if err := page.Close(); err != nil {
			log.WithFields(log.Fields{"url": url}).Warnf("Failed to close page: %v", err)
		}
	}()

	page = page.Context(ctx)
	if opts.Timeout > 0 {
		page = page.Timeout(opts.Timeout)
	}

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: defaultUserAgent}); err != nil {
		return nil, fmt.Errorf("failed to set user agent: %w", err)
	}
	if _, err := page.EvalOnNewDocument(stealthScript); err != nil {
		return nil, fmt.Errorf("failed to install init script: %w", err)
	}

	if err := page.Navigate(url); err != nil {
		return nil, fmt.Errorf("navigation failed: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("page load failed: %w", err)
	}

	if opts.Wait == WaitNetworkIdle {
		// Best effort; a page that never stabilizes is still sampled.
		if err := page.WaitStable(time.Second); err != nil {
			log.WithFields(log.Fields{"url": url}).Debugf("Page did not stabilize: %v", err)
		}
	}

	if opts.Settle > 0 {
		select {
		case <-time.After(opts.Settle):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("failed to read page HTML: %w", err)
	}

	text := ""
	if body, err := page.Element("body"); err == nil {
		if t, err := body.Text(); err == nil {
			text = t
		}
	}

	return &PageContent{URL: url, Text: text, HTML: html}, nil
}
