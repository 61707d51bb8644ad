package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"go.uber.org/zap/zaptest"

	"mediascraper/internal/domain"
	"mediascraper/internal/fetcher"
)

// ==========================================
// Helpers
// ==========================================

func fixture(t *testing.T, name string) []byte {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	return b
}

type call struct {
	method string
	url    string
	values url.Values
}

// fakeFetcher serves canned bodies and records every call in order.
type fakeFetcher struct {
	mu       sync.Mutex
	calls    []call
	body     []byte
	resolved string
	err      error
}

func (f *fakeFetcher) record(c call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeFetcher) response(rawURL string) (*fetcher.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &fetcher.Response{URL: rawURL, Status: 200, Body: f.body}, nil
}

func (f *fakeFetcher) Get(_ context.Context, _ domain.Platform, rawURL string) (*fetcher.Response, error) {
	f.record(call{method: "GET", url: rawURL})
	return f.response(rawURL)
}

func (f *fakeFetcher) Resolve(_ context.Context, _ domain.Platform, rawURL string) (string, error) {
	f.record(call{method: "RESOLVE", url: rawURL})
	if f.err != nil {
		return "", f.err
	}
	return f.resolved, nil
}

func (f *fakeFetcher) PostForm(_ context.Context, _ domain.Platform, endpoint string, form url.Values) (*fetcher.Response, error) {
	f.record(call{method: "POST", url: endpoint, values: form})
	return f.response(endpoint)
}

func (f *fakeFetcher) GetQuery(_ context.Context, _ domain.Platform, endpoint string, query url.Values) (*fetcher.Response, error) {
	f.record(call{method: "GET", url: endpoint, values: query})
	return f.response(endpoint)
}

func assertURLs(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("urls = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("urls[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

// ==========================================
// Registry
// ==========================================

func TestRegistryFor(t *testing.T) {
	t.Parallel()
	r := NewRegistry(&fakeFetcher{}, DefaultEndpoints(), zaptest.NewLogger(t))

	for _, p := range []domain.Platform{domain.TikTok, domain.Instagram, domain.Facebook, domain.Snapchat, domain.Twitter} {
		ex, err := r.For(p)
		if err != nil {
			t.Fatalf("For(%s) error = %v", p, err)
		}
		if ex.Platform() != p {
			t.Errorf("For(%s).Platform() = %s", p, ex.Platform())
		}
	}

	if _, err := r.For(domain.Unsupported); !errors.Is(err, domain.ErrUnsupportedURL) {
		t.Errorf("For(Unsupported) error = %v, want ErrUnsupportedURL", err)
	}
}

func TestRawResultDropsSentinels(t *testing.T) {
	t.Parallel()
	res := rawResult(domain.Snapchat, "a", "", domain.NA, "b")
	assertURLs(t, res.URLs, []string{"a", "b"})
	if res.Mode != domain.Raw {
		t.Errorf("Mode = %v, want Raw", res.Mode)
	}
}

// ==========================================
// Idempotence and boundaries
// ==========================================

func TestParseIsDeterministic(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		fixture string
		parse   func([]byte) (*domain.Result, error)
	}{
		{"tiktok video cut", "tiktok_video.html", func(b []byte) (*domain.Result, error) { return ParseTikTok(b, domain.Cut) }},
		{"tiktok image raw", "tiktok_image.html", func(b []byte) (*domain.Result, error) { return ParseTikTok(b, domain.Raw) }},
		{"instagram sidecar cut", "instagram_sidecar.json", func(b []byte) (*domain.Result, error) { return ParseInstagram(b, domain.Cut) }},
		{"facebook split cut", "facebook_split.html", func(b []byte) (*domain.Result, error) { return ParseFacebook(b, domain.Cut) }},
		{"snapchat", "snapchat_story.html", ParseSnapchat},
		{"twitter", "twitter.json", ParseTwitter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			page := fixture(t, tt.fixture)

			var outputs [][]byte
			for range 5 {
				res, err := tt.parse(page)
				if err != nil {
					t.Fatalf("parse error = %v", err)
				}
				b, err := json.Marshal(res)
				if err != nil {
					t.Fatalf("marshal: %v", err)
				}
				outputs = append(outputs, b)
			}
			for i := 1; i < len(outputs); i++ {
				if !bytes.Equal(outputs[0], outputs[i]) {
					t.Fatalf("run %d differs:\n%s\n%s", i, outputs[0], outputs[i])
				}
			}
		})
	}
}

func TestParseMissingIsland(t *testing.T) {
	t.Parallel()
	page := fixture(t, "tiktok_no_island.html")
	tests := []struct {
		name  string
		parse func([]byte) (*domain.Result, error)
	}{
		{"tiktok", func(b []byte) (*domain.Result, error) { return ParseTikTok(b, domain.Cut) }},
		{"facebook", func(b []byte) (*domain.Result, error) { return ParseFacebook(b, domain.Raw) }},
		{"snapchat", ParseSnapchat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res, err := tt.parse(page)
			if !errors.Is(err, domain.ErrIslandNotFound) {
				t.Fatalf("error = %v, want ErrIslandNotFound", err)
			}
			if res != nil {
				t.Errorf("result = %+v, want nil", res)
			}
		})
	}
}

func TestParseInvalidJSON(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		parse func([]byte) (*domain.Result, error)
		body  string
	}{
		{"tiktok island", func(b []byte) (*domain.Result, error) { return ParseTikTok(b, domain.Cut) },
			`<html><script id="__UNIVERSAL_DATA_FOR_REHYDRATION__">{"__DEFAULT_SCOPE__":</script></html>`},
		{"instagram body", func(b []byte) (*domain.Result, error) { return ParseInstagram(b, domain.Raw) },
			`<!DOCTYPE html><html>login required</html>`},
		{"snapchat island", ParseSnapchat,
			`<html><script id="__NEXT_DATA__">{props}</script></html>`},
		{"twitter body", ParseTwitter, `{"data":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := tt.parse([]byte(tt.body)); !errors.Is(err, domain.ErrInvalidJSON) {
				t.Errorf("error = %v, want ErrInvalidJSON", err)
			}
		})
	}
}
