package extractor

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"mediascraper/internal/domain"
	"mediascraper/internal/jsontree"
)

const audioPrefix = "audio==="

// Facebook sniffs the JSON script tags of a reel or video page.
type Facebook struct {
	fetcher Fetcher
	logger  *zap.Logger
}

func (e *Facebook) Platform() domain.Platform { return domain.Facebook }

func (e *Facebook) Extract(ctx context.Context, req domain.ExtractionRequest) (*domain.Result, error) {
	target := strings.Replace(req.URL, "web.facebook", "www.facebook", 1)

	if strings.Contains(target, "fb.watch") || strings.Contains(target, "/watch/?v") {
		resolved, err := e.fetcher.Resolve(ctx, domain.Facebook, target)
		if err != nil {
			return nil, fmt.Errorf("facebook: resolve watch link: %w", err)
		}
		reel, err := reelURL(resolved)
		if err != nil {
			return nil, fmt.Errorf("facebook: %w", err)
		}
		e.logger.Debug("watch link rewritten", zap.String("from", resolved), zap.String("to", reel))
		target = reel
	}

	resp, err := e.fetcher.Get(ctx, domain.Facebook, target)
	if err != nil {
		return nil, fmt.Errorf("facebook: %w", err)
	}
	return ParseFacebook(resp.Body, req.Mode)
}

// reelURL rebuilds a /reel/<id> address from the segment following "videos".
func reelURL(resolved string) (string, error) {
	u, err := url.Parse(resolved)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrSourceNotFound, err)
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, s := range segments {
		if s == "videos" && i+1 < len(segments) && segments[i+1] != "" {
			return "https://www.facebook.com/reel/" + segments[i+1], nil
		}
	}
	return "", fmt.Errorf("%w: no video id in %q", domain.ErrSourceNotFound, resolved)
}

type facebookPage struct {
	thumbnail *jsontree.Value
	hdURL     string
	root      *jsontree.Value
	data      *jsontree.Value
	owner     *jsontree.Value
	video     *jsontree.Value
	audio     *jsontree.Value
}

// ParseFacebook maps a Facebook reel or video page.
func ParseFacebook(page []byte, mode domain.Mode) (*domain.Result, error) {
	p, err := readFacebookPage(page)
	if err != nil {
		return nil, fmt.Errorf("facebook: %w", err)
	}
	if mode == domain.Raw {
		return rawResult(domain.Facebook, p.rawURLs()...), nil
	}

	res := &domain.Result{
		Platform: domain.Facebook,
		Mode:     domain.Cut,
		Content:  p.content(),
		Author:   p.author(),
		Media:    p.media(),
	}
	if p.hdURL == "" {
		res.DeafMedia = &domain.DeafMedia{
			VideoURL: p.video.Get("base_url").StringOr(""),
			AudioURL: p.audio.Get("base_url").StringOr(""),
		}
	}
	return res, nil
}

func readFacebookPage(page []byte) (*facebookPage, error) {
	doc, err := loadDocument(page)
	if err != nil {
		return nil, err
	}
	scripts := scriptsByType(doc, "application/json")

	p := &facebookPage{}
	for _, s := range scripts {
		if !strings.Contains(s, "preferred_thumbnail") {
			continue
		}
		tree, err := parseJSON([]byte(s))
		if err != nil {
			return nil, err
		}
		p.thumbnail, _ = jsontree.FindByKey(tree, "preferred_thumbnail")
		if hd, ok := jsontree.FindByKey(tree, "browser_native_hd_url"); ok {
			p.hdURL = hd.StringOr("")
		}
		break
	}

	for _, s := range scripts {
		if !strings.Contains(s, "base_url") || !strings.Contains(s, "total_comment_count") {
			continue
		}
		tree, err := parseJSON([]byte(s))
		if err != nil {
			return nil, err
		}
		p.root = tree
		p.data, _ = jsontree.FindByKey(tree, "data")
		if owner, ok := jsontree.FindByKey(tree, "owner_as_page"); ok {
			p.owner = owner
		} else {
			p.owner, _ = jsontree.FindByKey(p.data, "owner")
		}
		if p.hdURL == "" {
			if hd, ok := jsontree.FindByKey(tree, "browser_native_hd_url"); ok {
				p.hdURL = hd.StringOr("")
			}
		}
		if reps, ok := jsontree.FindByKey(tree, "representations"); ok {
			p.video = bestRepresentation(reps.Items(), "video")
			p.audio = bestRepresentation(reps.Items(), "audio")
		}
		return p, nil
	}
	return nil, fmt.Errorf("%w: no script with base_url and total_comment_count", domain.ErrIslandNotFound)
}

// bestRepresentation returns the highest-bandwidth entry whose mime type
// contains kind. The last entry wins a tie.
func bestRepresentation(reps []*jsontree.Value, kind string) *jsontree.Value {
	var best *jsontree.Value
	bestBandwidth := int64(-1)
	for _, r := range reps {
		if !strings.Contains(strings.ToLower(r.Get("mime_type").StringOr("")), kind) {
			continue
		}
		if bw := r.Get("bandwidth").IntOr(0); bw >= bestBandwidth {
			best, bestBandwidth = r, bw
		}
	}
	return best
}

func (p *facebookPage) thumbnailURI() string {
	return p.thumbnail.Path("image", "uri").StringOr(domain.NA)
}

// rawURLs lists the split video and audio streams when no HD url exists,
// then the HD url and the thumbnail.
func (p *facebookPage) rawURLs() []string {
	var out []string
	if p.hdURL == "" {
		if v := p.video.Get("base_url").StringOr(""); v != "" {
			out = append(out, v)
		}
		if a := p.audio.Get("base_url").StringOr(""); a != "" {
			out = append(out, audioPrefix+a)
		}
	}
	return append(out, p.hdURL, p.thumbnailURI())
}

func (p *facebookPage) content() domain.Content {
	c := domain.NewContent()
	c.ID = p.data.Get("id").StringOr(domain.NA)
	if c.ID == domain.NA {
		if id, ok := jsontree.FindByKey(p.root, "video_id"); ok {
			c.ID = id.StringOr(domain.NA)
		}
	}
	c.Desc = p.data.Path("message", "text").StringOr(domain.NA)
	c.Title = p.data.Path("title", "text").StringOr(c.Desc)
	c.Cover = p.thumbnailURI()
	c.IsVideo = p.hdURL != "" || p.video != nil

	if v, ok := jsontree.FindByKey(p.root, "total_comment_count"); ok {
		c.Comments = v.IntOr(0)
	}
	if v, ok := jsontree.FindByKey(p.root, "reaction_count"); ok {
		c.Likes = v.Get("count").IntOr(0)
	}
	if v, ok := jsontree.FindByKey(p.root, "share_count"); ok {
		c.Shares = v.Get("count").IntOr(0)
	}
	if v, ok := jsontree.FindByKey(p.root, "video_view_count"); ok {
		c.Views = v.IntOr(0)
	}
	return c
}

func (p *facebookPage) author() *domain.Author {
	a := domain.NewAuthor()
	a.Name = p.owner.Get("name").StringOr(domain.NA)
	a.Username = p.owner.Get("username").StringOr(p.owner.Get("id").StringOr(domain.NA))
	a.Verified = p.owner.Get("is_verified").BoolOr(false)
	a.Image = p.owner.Path("profile_picture", "uri").StringOr(domain.NA)
	return &a
}

func (p *facebookPage) media() []domain.MediaAsset {
	cover := p.thumbnailURI()
	if p.hdURL != "" {
		a := domain.NewMediaAsset(domain.Video, p.hdURL)
		a.Quality = "hd"
		a.Cover = cover
		return []domain.MediaAsset{a}
	}

	media := make([]domain.MediaAsset, 0, 2)
	if p.video != nil {
		a := domain.NewMediaAsset(domain.Video, p.video.Get("base_url").StringOr(domain.NA))
		a.ID = p.video.Get("representation_id").StringOr(domain.NA)
		a.Quality = p.video.Get("quality_label").StringOr(domain.NA)
		a.Cover = cover
		media = append(media, a)
	}
	if p.audio != nil {
		a := domain.NewMediaAsset(domain.Audio, p.audio.Get("base_url").StringOr(domain.NA))
		a.ID = p.audio.Get("representation_id").StringOr(domain.NA)
		media = append(media, a)
	}
	return media
}
