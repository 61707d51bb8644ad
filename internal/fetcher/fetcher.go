// Package fetcher performs the outbound HTTP exchanges extractors need: page
// GETs, redirect resolution and GraphQL calls, each with the platform's header set.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"mediascraper/internal/domain"
	"mediascraper/internal/monitoring"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultMaxBodyBytes = 20 << 20
	defaultMaxRedirects = 10
)

// ErrBodyTooLarge is returned when an upstream body exceeds the configured cap.
var ErrBodyTooLarge = errors.New("fetcher: response body too large")

// FetchError reports a failed upstream exchange. Status is 0 when no HTTP
// response was received.
type FetchError struct {
	Platform domain.Platform
	URL      string
	Status   int
	Err      error
}

func (e *FetchError) Error() string {
	switch {
	case e.Status == 0:
		return fmt.Sprintf("fetch %s: transport: %v", e.URL, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("fetch %s: upstream status %d: %v", e.URL, e.Status, e.Err)
	default:
		return fmt.Sprintf("fetch %s: upstream status %d", e.URL, e.Status)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// Response is a fully read upstream response. URL is the address the body was
// served from after redirects.
type Response struct {
	URL    string
	Status int
	Header http.Header
	Body   []byte
}

// Renderer retrieves an HTML page through something other than a plain HTTP GET.
type Renderer interface {
	Render(ctx context.Context, rawURL string, header http.Header) (*Response, error)
}

// Fetcher is safe for concurrent use; its configuration is fixed at construction.
type Fetcher struct {
	client       *http.Client
	headers      *HeaderTable
	maxBodyBytes int64
	renderer     Renderer
	metrics      *monitoring.Metrics
	logger       *zap.Logger
}

// Option customizes a Fetcher.
type Option func(*Fetcher)

func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.client.Timeout = d
		}
	}
}

func WithMaxBodyBytes(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBodyBytes = n
		}
	}
}

// WithMaxRedirects caps the redirect chain followed for a single request.
func WithMaxRedirects(n int) Option {
	return func(f *Fetcher) {
		if n <= 0 {
			return
		}
		f.client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= n {
				return fmt.Errorf("stopped after %d redirects", n)
			}
			return nil
		}
	}
}

// WithRenderer routes page GETs through r.
func WithRenderer(r Renderer) Option {
	return func(f *Fetcher) { f.renderer = r }
}

func WithMetrics(m *monitoring.Metrics) Option {
	return func(f *Fetcher) { f.metrics = m }
}

// New builds a Fetcher on top of transport. A nil transport uses http.DefaultTransport.
func New(transport http.RoundTripper, headers *HeaderTable, logger *zap.Logger, opts ...Option) *Fetcher {
	if transport == nil {
		transport = http.DefaultTransport
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &Fetcher{
		client:       &http.Client{Transport: transport, Timeout: defaultTimeout},
		headers:      headers,
		maxBodyBytes: defaultMaxBodyBytes,
		logger:       logger,
	}
	WithMaxRedirects(defaultMaxRedirects)(f)
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Get downloads a page. When a renderer is configured the page is rendered instead.
func (f *Fetcher) Get(ctx context.Context, p domain.Platform, rawURL string) (*Response, error) {
	if f.renderer != nil {
		resp, err := f.renderer.Render(ctx, rawURL, f.headers.For(p))
		if err != nil {
			f.observe(p, 0)
			return nil, &FetchError{Platform: p, URL: rawURL, Err: err}
		}
		f.observe(p, resp.Status)
		return resp, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{Platform: p, URL: rawURL, Err: fmt.Errorf("create request: %w", err)}
	}
	return f.do(p, req)
}

// Resolve follows the redirect chain of rawURL and returns the final address.
// The status of the final hop is not checked; only the location matters.
func (f *Fetcher) Resolve(ctx context.Context, p domain.Platform, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &FetchError{Platform: p, URL: rawURL, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header = f.headers.For(p)

	resp, err := f.client.Do(req)
	if err != nil {
		f.observe(p, 0)
		return "", &FetchError{Platform: p, URL: rawURL, Err: err}
	}
	defer resp.Body.Close()
	f.observe(p, resp.StatusCode)
	if _, err := io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10)); err != nil {
		f.logger.Debug("drain redirect body", zap.String("platform", p.String()), zap.Error(err))
	}

	final := resp.Request.URL.String()
	f.logger.Debug("resolved redirect", zap.String("platform", p.String()),
		zap.String("from", rawURL), zap.String("to", final))
	return final, nil
}

// PostForm posts form to endpoint as application/x-www-form-urlencoded.
func (f *Fetcher) PostForm(ctx context.Context, p domain.Platform, endpoint string, form url.Values) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &FetchError{Platform: p, URL: endpoint, Err: fmt.Errorf("create request: %w", err)}
	}
	return f.doWith(p, req, func(h http.Header) {
		h.Set("Content-Type", "application/x-www-form-urlencoded")
	})
}

// GetQuery issues a GET to endpoint with query appended.
func (f *Fetcher) GetQuery(ctx context.Context, p domain.Platform, endpoint string, query url.Values) (*Response, error) {
	target := endpoint
	if len(query) > 0 {
		sep := "?"
		if strings.Contains(endpoint, "?") {
			sep = "&"
		}
		target = endpoint + sep + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &FetchError{Platform: p, URL: endpoint, Err: fmt.Errorf("create request: %w", err)}
	}
	return f.do(p, req)
}

func (f *Fetcher) do(p domain.Platform, req *http.Request) (*Response, error) {
	return f.doWith(p, req, nil)
}

func (f *Fetcher) doWith(p domain.Platform, req *http.Request, adjust func(http.Header)) (*Response, error) {
	req.Header = f.headers.For(p)
	if adjust != nil {
		adjust(req.Header)
	}
	rawURL := req.URL.String()

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		f.observe(p, 0)
		return nil, &FetchError{Platform: p, URL: rawURL, Err: err}
	}
	defer resp.Body.Close()
	f.observe(p, resp.StatusCode)

	f.logger.Debug("upstream response",
		zap.String("platform", p.String()),
		zap.String("url", rawURL),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{Platform: p, URL: rawURL, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes+1))
	if err != nil {
		return nil, &FetchError{Platform: p, URL: rawURL, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(body)) > f.maxBodyBytes {
		return nil, &FetchError{Platform: p, URL: rawURL, Status: resp.StatusCode, Err: ErrBodyTooLarge}
	}

	return &Response{
		URL:    resp.Request.URL.String(),
		Status: resp.StatusCode,
		Header: resp.Header,
		Body:   body,
	}, nil
}

func (f *Fetcher) observe(p domain.Platform, status int) {
	if f.metrics != nil {
		f.metrics.IncUpstreamFetch(p.String(), status)
	}
}
