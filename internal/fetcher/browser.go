package fetcher

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// BrowserRenderer loads pages in headless Chrome so that script-injected data
// islands are present in the returned HTML.
type BrowserRenderer struct {
	allocCtx context.Context
	cancel   context.CancelFunc
	timeout  time.Duration
	logger   *zap.Logger
}

// NewBrowserRenderer starts a shared Chrome allocator. proxyServer may be empty.
func NewBrowserRenderer(timeout time.Duration, proxyServer string, logger *zap.Logger) *BrowserRenderer {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if proxyServer != "" {
		opts = append(opts, chromedp.ProxyServer(proxyServer))
	}
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BrowserRenderer{allocCtx: allocCtx, cancel: cancel, timeout: timeout, logger: logger}
}

// Render navigates to rawURL with header applied to every request of the tab.
func (b *BrowserRenderer) Render(ctx context.Context, rawURL string, header http.Header) (*Response, error) {
	taskCtx, cancel := chromedp.NewContext(b.allocCtx)
	defer cancel()
	taskCtx, cancelTimeout := context.WithTimeout(taskCtx, b.timeout)
	defer cancelTimeout()

	// Abort the tab when the caller goes away.
	stop := context.AfterFunc(ctx, cancelTimeout)
	defer stop()

	extra := network.Headers{}
	for k, vs := range header {
		extra[k] = strings.Join(vs, ", ")
	}

	var html, location string
	err := chromedp.Run(taskCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(extra),
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		b.logger.Warn("render failed", zap.String("url", rawURL), zap.Error(err))
		return nil, err
	}

	return &Response{URL: location, Status: http.StatusOK, Header: http.Header{}, Body: []byte(html)}, nil
}

// Close shuts the browser down.
func (b *BrowserRenderer) Close() {
	b.cancel()
}
