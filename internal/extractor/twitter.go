package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"mediascraper/internal/domain"
	"mediascraper/internal/jsontree"
)

// twitterFeatures and twitterFieldToggles mirror the flags the web client sends
// with TweetResultByRestId.
const (
	twitterFeatures = `{"creator_subscriptions_tweet_preview_api_enabled":true,` +
		`"premium_content_api_read_enabled":false,` +
		`"communities_web_enable_tweet_community_results_fetch":true,` +
		`"c9s_tweet_anatomy_moderator_badge_enabled":true,` +
		`"responsive_web_grok_analyze_button_fetch_trends_enabled":false,` +
		`"responsive_web_grok_analyze_post_followups_enabled":false,` +
		`"responsive_web_jetfuel_frame":true,` +
		`"responsive_web_grok_share_attachment_enabled":true,` +
		`"articles_preview_enabled":true,` +
		`"responsive_web_edit_tweet_api_enabled":true,` +
		`"graphql_is_translatable_rweb_tweet_is_translatable_enabled":true,` +
		`"view_counts_everywhere_api_enabled":true,` +
		`"longform_notetweets_consumption_enabled":true,` +
		`"responsive_web_twitter_article_tweet_consumption_enabled":true,` +
		`"tweet_awards_web_tipping_enabled":false,` +
		`"responsive_web_grok_show_grok_translated_post":false,` +
		`"responsive_web_grok_analysis_button_from_backend":true,` +
		`"creator_subscriptions_quote_tweet_preview_enabled":false,` +
		`"freedom_of_speech_not_reach_fetch_enabled":true,` +
		`"standardized_nudges_misinfo":true,` +
		`"tweet_with_visibility_results_prefer_gql_limited_actions_policy_enabled":true,` +
		`"longform_notetweets_rich_text_read_enabled":true,` +
		`"longform_notetweets_inline_media_enabled":true,` +
		`"profile_label_improvements_pcf_label_in_post_enabled":true,` +
		`"responsive_web_profile_redirect_enabled":false,` +
		`"rweb_tipjar_consumption_enabled":true,` +
		`"verified_phone_label_enabled":false,` +
		`"responsive_web_grok_image_annotation_enabled":true,` +
		`"responsive_web_grok_imagine_annotation_enabled":true,` +
		`"responsive_web_grok_community_note_auto_translation_is_enabled":false,` +
		`"responsive_web_graphql_skip_user_profile_image_extensions_enabled":false,` +
		`"responsive_web_graphql_timeline_navigation_enabled":true,` +
		`"responsive_web_enhance_cards_enabled":false}`

	twitterFieldToggles = `{"withArticleRichContentState":true,"withArticlePlainText":false}`
)

// Twitter queries TweetResultByRestId for a status id.
type Twitter struct {
	fetcher  Fetcher
	endpoint string
}

func (e *Twitter) Platform() domain.Platform { return domain.Twitter }

func (e *Twitter) Extract(ctx context.Context, req domain.ExtractionRequest) (*domain.Result, error) {
	id, ok := tweetID(req.URL)
	if !ok {
		return nil, fmt.Errorf("twitter: %w: no status id in %q", domain.ErrItemNotFound, req.URL)
	}
	resp, err := e.fetcher.GetQuery(ctx, domain.Twitter, e.endpoint, twitterQuery(id))
	if err != nil {
		return nil, fmt.Errorf("twitter: %w", err)
	}
	return ParseTwitter(resp.Body)
}

// tweetID returns the path segment after /status/.
func tweetID(rawURL string) (string, bool) {
	_, rest, found := strings.Cut(rawURL, "/status/")
	if !found {
		return "", false
	}
	if i := strings.IndexAny(rest, "?/#"); i >= 0 {
		rest = rest[:i]
	}
	return rest, rest != ""
}

type twitterVariables struct {
	TweetID                string `json:"tweetId"`
	IncludePromotedContent bool   `json:"includePromotedContent"`
	WithBirdwatchNotes     bool   `json:"withBirdwatchNotes"`
	WithVoice              bool   `json:"withVoice"`
	WithCommunity          bool   `json:"withCommunity"`
}

func twitterQuery(id string) url.Values {
	vars, _ := json.Marshal(twitterVariables{
		TweetID:                id,
		IncludePromotedContent: true,
		WithBirdwatchNotes:     true,
		WithVoice:              true,
		WithCommunity:          true,
	})
	return url.Values{
		"variables":    {string(vars)},
		"features":     {twitterFeatures},
		"fieldToggles": {twitterFieldToggles},
	}
}

// ParseTwitter lists, per attached media, the best video variant and the
// static image. Twitter has no structured shape, so the result is always Raw.
func ParseTwitter(body []byte) (*domain.Result, error) {
	root, err := parseJSON(body)
	if err != nil {
		return nil, fmt.Errorf("twitter: %w", err)
	}
	result := root.Path("data", "tweetResult", "result")
	legacy := result.Get("legacy")
	if legacy == nil {
		// Tweets with visibility restrictions nest one level deeper.
		legacy = result.Path("tweet", "legacy")
	}
	if legacy.Kind() != jsontree.Object {
		return nil, fmt.Errorf("twitter: %w: tweetResult.result.legacy missing", domain.ErrItemNotFound)
	}

	var urls []string
	for _, media := range legacy.Path("extended_entities", "media").Items() {
		if best := bestVariant(media.Path("video_info", "variants").Items()); best != "" {
			urls = append(urls, best)
		}
		urls = append(urls, media.Get("media_url_https").StringOr(""))
	}
	return rawResult(domain.Twitter, urls...), nil
}

// bestVariant returns the url of the highest-bitrate mp4 variant. Playlist
// variants carry no bitrate and are skipped.
func bestVariant(variants []*jsontree.Value) string {
	var best string
	var top int64
	for _, v := range variants {
		bitrate, ok := v.Get("bitrate").Int()
		u := v.Get("url").StringOr("")
		if ok && bitrate > top && strings.Contains(u, "video/") {
			best, top = u, bitrate
		}
	}
	return best
}
