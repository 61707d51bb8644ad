// Package extractor turns a platform's raw payload into a domain.Result. There
// is one extractor per supported platform; each fetches its source through the
// Fetcher port and maps the upstream JSON with jsontree.
package extractor

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"mediascraper/internal/domain"
	"mediascraper/internal/fetcher"
)

// Extractor produces a Result for one platform.
type Extractor interface {
	Platform() domain.Platform
	Extract(ctx context.Context, req domain.ExtractionRequest) (*domain.Result, error)
}

// Fetcher is the outbound capability extractors depend on.
type Fetcher interface {
	Get(ctx context.Context, p domain.Platform, rawURL string) (*fetcher.Response, error)
	Resolve(ctx context.Context, p domain.Platform, rawURL string) (string, error)
	PostForm(ctx context.Context, p domain.Platform, endpoint string, form url.Values) (*fetcher.Response, error)
	GetQuery(ctx context.Context, p domain.Platform, endpoint string, query url.Values) (*fetcher.Response, error)
}

// Endpoints are the internal APIs queried directly. Upstream rotates the
// versioned parts of these, so they are configurable.
type Endpoints struct {
	InstagramGraphQL string
	TwitterGraphQL   string
}

// DefaultEndpoints returns the endpoints currently served upstream.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		InstagramGraphQL: "https://www.instagram.com/graphql/query/",
		TwitterGraphQL:   "https://api.x.com/graphql/aFvUsJm2c-oDkJV75blV6g/TweetResultByRestId",
	}
}

// Registry maps each platform to its extractor.
type Registry struct {
	tiktok    *TikTok
	instagram *Instagram
	facebook  *Facebook
	snapchat  *Snapchat
	twitter   *Twitter
}

func NewRegistry(f Fetcher, ep Endpoints, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		tiktok:    &TikTok{fetcher: f, logger: logger.Named("tiktok")},
		instagram: &Instagram{fetcher: f, endpoint: ep.InstagramGraphQL, logger: logger.Named("instagram")},
		facebook:  &Facebook{fetcher: f, logger: logger.Named("facebook")},
		snapchat:  &Snapchat{fetcher: f},
		twitter:   &Twitter{fetcher: f, endpoint: ep.TwitterGraphQL},
	}
}

// For returns the extractor handling p.
func (r *Registry) For(p domain.Platform) (Extractor, error) {
	switch p {
	case domain.TikTok:
		return r.tiktok, nil
	case domain.Instagram:
		return r.instagram, nil
	case domain.Facebook:
		return r.facebook, nil
	case domain.Snapchat:
		return r.snapchat, nil
	case domain.Twitter:
		return r.twitter, nil
	}
	return nil, fmt.Errorf("%w: no extractor for %s", domain.ErrUnsupportedURL, p)
}

// rawResult builds a Raw-mode result, dropping sentinel and empty addresses.
func rawResult(p domain.Platform, urls ...string) *domain.Result {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u != "" && u != domain.NA {
			out = append(out, u)
		}
	}
	return &domain.Result{Platform: p, Mode: domain.Raw, URLs: out}
}

func mediaAddresses(media []domain.MediaAsset) []string {
	out := make([]string, 0, len(media))
	for _, m := range media {
		out = append(out, m.Address)
	}
	return out
}
