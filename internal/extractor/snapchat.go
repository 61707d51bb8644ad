package extractor

import (
	"context"
	"fmt"

	"mediascraper/internal/domain"
	"mediascraper/internal/jsontree"
)

const snapchatIsland = "__NEXT_DATA__"

// Snapchat reads the Next.js island of a spotlight or story share link.
type Snapchat struct {
	fetcher Fetcher
}

func (e *Snapchat) Platform() domain.Platform { return domain.Snapchat }

func (e *Snapchat) Extract(ctx context.Context, req domain.ExtractionRequest) (*domain.Result, error) {
	resp, err := e.fetcher.Get(ctx, domain.Snapchat, req.URL)
	if err != nil {
		return nil, fmt.Errorf("snapchat: %w", err)
	}
	return ParseSnapchat(resp.Body)
}

// ParseSnapchat lists the media and preview url of every snap as a pair, so
// urls[2i] and urls[2i+1] always belong to snap i. A missing half is NA.
// Snapchat has no structured shape, so the result is always Raw.
func ParseSnapchat(page []byte) (*domain.Result, error) {
	doc, err := loadDocument(page)
	if err != nil {
		return nil, fmt.Errorf("snapchat: %w", err)
	}
	text, ok := scriptByID(doc, snapchatIsland)
	if !ok {
		return nil, fmt.Errorf("snapchat: %w: no %s script", domain.ErrIslandNotFound, snapchatIsland)
	}
	root, err := parseJSON([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("snapchat: %w", err)
	}

	props := root.Path("props", "pageProps")
	owner := props.Get("story")
	if owner == nil {
		owner = props.Get("highlight")
	}
	snaps := owner.Get("snapList")
	if snaps.Kind() != jsontree.Array {
		return nil, fmt.Errorf("snapchat: %w: snapList missing", domain.ErrItemNotFound)
	}

	urls := make([]string, 0, 2*snaps.Len())
	for _, snap := range snaps.Items() {
		u := snap.Get("snapUrls")
		urls = append(urls, snapURL(u.Get("mediaUrl")), snapURL(u.Path("mediaPreviewUrl", "value")))
	}
	return &domain.Result{Platform: domain.Snapchat, Mode: domain.Raw, URLs: urls}, nil
}

func snapURL(v *jsontree.Value) string {
	if s := v.StringOr(""); s != "" {
		return s
	}
	return domain.NA
}
