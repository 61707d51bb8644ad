package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"mediascraper/internal/domain"
	"mediascraper/internal/jsontree"
	"mediascraper/internal/platform"
)

// Instagram queries the web GraphQL endpoint for a post shortcode.
type Instagram struct {
	fetcher  Fetcher
	endpoint string
	logger   *zap.Logger
}

func (e *Instagram) Platform() domain.Platform { return domain.Instagram }

func (e *Instagram) Extract(ctx context.Context, req domain.ExtractionRequest) (*domain.Result, error) {
	shortcode, ok := platform.InstagramShortcode(req.URL)
	if !ok {
		return nil, fmt.Errorf("instagram: %w: no shortcode in %q", domain.ErrUnsupportedURL, req.URL)
	}

	resp, err := e.fetcher.PostForm(ctx, domain.Instagram, e.endpoint, instagramForm(shortcode))
	if err != nil {
		return nil, fmt.Errorf("instagram: %w", err)
	}
	e.logger.Debug("graphql response", zap.String("shortcode", shortcode), zap.Int("bytes", len(resp.Body)))
	return ParseInstagram(resp.Body, req.Mode)
}

type instagramVariables struct {
	Shortcode            string  `json:"shortcode"`
	FetchTaggedUserCount *int    `json:"fetch_tagged_user_count"`
	HoistedCommentID     *string `json:"hoisted_comment_id"`
	HoistedReplyID       *string `json:"hoisted_reply_id"`
}

// instagramForm is the PolarisPostActionLoadPostQuery request body.
func instagramForm(shortcode string) url.Values {
	vars, _ := json.Marshal(instagramVariables{Shortcode: shortcode})
	return url.Values{
		"av":                       {"0"},
		"__d":                      {"www"},
		"__user":                   {"0"},
		"__a":                      {"1"},
		"__req":                    {"a"},
		"__hs":                     {"20229.HYP:instagram_web_pkg.2.1...0"},
		"dpr":                      {"1"},
		"__ccg":                    {"GOOD"},
		"__rev":                    {"1023049274"},
		"__comet_req":              {"7"},
		"lsd":                      {"AVqQ3As1H7g"},
		"jazoest":                  {"2855"},
		"__spin_r":                 {"1023049274"},
		"__spin_b":                 {"trunk"},
		"__spin_t":                 {"1747835843"},
		"fb_api_caller_class":      {"RelayModern"},
		"fb_api_req_friendly_name": {"PolarisPostActionLoadPostQueryQuery"},
		"variables":                {string(vars)},
		"server_timestamps":        {"true"},
		"doc_id":                   {"9510064595728286"},
	}
}

// ParseInstagram maps a GraphQL post response.
func ParseInstagram(body []byte, mode domain.Mode) (*domain.Result, error) {
	root, err := parseJSON(body)
	if err != nil {
		return nil, fmt.Errorf("instagram: %w", err)
	}
	item := root.Path("data", "xdt_shortcode_media")
	if item.Kind() != jsontree.Object {
		return nil, fmt.Errorf("instagram: %w: data.xdt_shortcode_media missing", domain.ErrItemNotFound)
	}

	media := instagramMedia(item)
	if mode == domain.Raw {
		return rawResult(domain.Instagram, mediaAddresses(media)...), nil
	}
	return &domain.Result{
		Platform: domain.Instagram,
		Mode:     domain.Cut,
		Content:  instagramContent(item),
		Author:   instagramAuthor(item.Get("owner")),
		Media:    media,
	}, nil
}

func instagramMedia(item *jsontree.Value) []domain.MediaAsset {
	if edges := item.Path("edge_sidecar_to_children", "edges"); edges.Kind() == jsontree.Array {
		media := make([]domain.MediaAsset, 0, edges.Len())
		for _, edge := range edges.Items() {
			node := edge.Get("node")
			if node == nil {
				continue
			}
			media = append(media, instagramAsset(node))
		}
		return media
	}
	return []domain.MediaAsset{instagramAsset(item)}
}

// instagramAsset prefers video_url, then the largest display resource, then display_url.
func instagramAsset(node *jsontree.Value) domain.MediaAsset {
	address := node.Get("display_url").StringOr(domain.NA)
	if src := node.Get("display_resources").Last().Get("src"); src.Kind() == jsontree.String {
		address = src.StringOr(address)
	}

	kind := domain.Image
	video := node.Get("video_url")
	if video.Kind() == jsontree.String {
		kind = domain.Video
		address = video.StringOr(address)
	}

	a := domain.NewMediaAsset(kind, address)
	a.ID = node.Get("id").StringOr(domain.NA)
	a.Cover = node.Get("display_url").StringOr(domain.NA)
	if kind == domain.Video {
		a.Plays = node.Get("video_play_count").IntOr(0)
		a.Views = node.Get("video_view_count").IntOr(0)
	}
	return a
}

func instagramContent(item *jsontree.Value) domain.Content {
	c := domain.NewContent()
	c.ID = item.Get("id").StringOr(domain.NA)
	c.Shortcode = item.Get("shortcode").StringOr(domain.NA)
	c.Desc = item.Path("edge_media_to_caption", "edges").Index(0).Path("node", "text").StringOr("no desc")
	c.Likes = item.Path("edge_media_preview_like", "count").IntOr(0)
	c.Comments = item.Path("edge_media_to_parent_comment", "count").IntOr(item.Path("edge_media_preview_comment", "count").IntOr(0))
	c.Views = item.Get("video_view_count").IntOr(0)
	c.IsVideo = item.Get("is_video").BoolOr(false)

	c.Cover = item.Get("thumbnail_src").StringOr(domain.NA)
	if src := item.Get("display_resources").Last().Get("src"); src.Kind() == jsontree.String {
		c.Cover = src.StringOr(c.Cover)
	}
	return c
}

func instagramAuthor(owner *jsontree.Value) *domain.Author {
	a := domain.NewAuthor()
	a.Name = owner.Get("full_name").StringOr(domain.NA)
	a.Username = owner.Get("username").StringOr(domain.NA)
	a.Verified = owner.Get("is_verified").BoolOr(false)
	a.Image = owner.Get("profile_pic_url").StringOr(domain.NA)
	a.Posts = owner.Path("edge_owner_to_timeline_media", "count").IntOr(0)
	a.Followers = owner.Path("edge_followed_by", "count").IntOr(0)
	return &a
}
