package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

type DynamicOptions struct {
	// RemoteURL is the DevTools websocket of an already running Chrome.
	// Empty launches a local headless Chrome on first use.
	RemoteURL string
	Timeout   time.Duration
	// Settle is how long the DOM must stay unchanged before the page is
	// read.
	Settle    time.Duration
	UserAgent string
}

// DynamicFetcher renders pages in a headless browser so listings built by
// client-side scripts are present in the returned HTML. The browser is
// started lazily and shared by every fetch.
type DynamicFetcher struct {
	opts DynamicOptions

	mutex    sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
}

func NewDynamicFetcher(opts DynamicOptions) *DynamicFetcher {
	if opts.Settle <= 0 {
		opts.Settle = time.Second
	}
	return &DynamicFetcher{opts: opts}
}

func (f *DynamicFetcher) connect() (*rod.Browser, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if f.browser != nil {
		return f.browser, nil
	}

	controlUrl := f.opts.RemoteURL
	if controlUrl == "" {
		l := launcher.New().
			Headless(true).
			Set("disable-blink-features", "AutomationControlled")
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch browser: %w", err)
		}
		controlUrl = u
		f.launcher = l
		slog.Info("launched headless browser", "url", controlUrl)
	}

	b := rod.New().ControlURL(controlUrl)
	err := b.Connect()
	if err != nil {
		if f.launcher != nil {
			f.launcher.Cleanup()
			f.launcher = nil
		}
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	f.browser = b
	return b, nil
}

func (f *DynamicFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	b, err := f.connect()
	if err != nil {
		return nil, err
	}

	page, err := stealth.Page(b)
	if err != nil {
		return nil, fmt.Errorf("open tab: %w", err)
	}
	defer page.Close()

	if f.opts.UserAgent != "" {
		err = page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: f.opts.UserAgent})
		if err != nil {
			slog.WarnContext(ctx, "failed to set user agent", "err", err)
		}
	}

	navCtx := ctx
	if f.opts.Timeout > 0 {
		var cancel context.CancelFunc
		navCtx, cancel = context.WithTimeout(ctx, f.opts.Timeout)
		defer cancel()
	}
	p := page.Context(navCtx)

	err = p.Navigate(url)
	if err != nil {
		return nil, fmt.Errorf("navigate %s: %w", url, err)
	}
	err = p.WaitLoad()
	if err != nil {
		return nil, fmt.Errorf("wait for %s to load: %w", url, err)
	}
	err = p.WaitDOMStable(f.opts.Settle, 0)
	if err != nil {
		// whatever rendered so far is still worth parsing
		slog.WarnContext(ctx, "page did not settle", "url", url, "err", err)
	}

	html, err := p.HTML()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	return []byte(html), nil
}

// Close shuts the browser down if it was started.
func (f *DynamicFetcher) Close() error {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	var err error
	if f.browser != nil {
		err = f.browser.Close()
		f.browser = nil
	}
	if f.launcher != nil {
		f.launcher.Cleanup()
		f.launcher = nil
	}
	return err
}
