package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"mediascraper/internal/domain"
	"mediascraper/internal/jsontree"
)

func TestParseTwitter(t *testing.T) {
	t.Parallel()
	res, err := ParseTwitter(fixture(t, "twitter.json"))
	if err != nil {
		t.Fatalf("ParseTwitter() error = %v", err)
	}
	assertURLs(t, res.URLs, []string{
		"https://video.twimg.com/ext_tw_video/1/pu/vid/avc1/720x1280/high.mp4",
		"https://pbs.twimg.com/ext_tw_video_thumb/1/pu/img/thumb.jpg",
		"https://pbs.twimg.com/media/photo.jpg",
	})
}

func TestBestVariantRequiresVideoPath(t *testing.T) {
	t.Parallel()
	variants, err := jsontree.Parse([]byte(`[
		{"bitrate":9000000,"url":"https://cdn.twimg.com/hls/1/huge.mp4"},
		{"url":"https://video.twimg.com/ext_tw_video/1/pu/pl/playlist.m3u8"},
		{"bitrate":800,"url":"https://video.twimg.com/ext_tw_video/1/pu/vid/a.mp4"}
	]`))
	if err != nil {
		t.Fatal(err)
	}
	if got := bestVariant(variants.Items()); got != "https://video.twimg.com/ext_tw_video/1/pu/vid/a.mp4" {
		t.Errorf("bestVariant() = %q", got)
	}
	if got := bestVariant(variants.Items()[:2]); got != "" {
		t.Errorf("bestVariant() without video paths = %q, want empty", got)
	}
}

func TestParseTwitterNestedTweet(t *testing.T) {
	t.Parallel()
	body := []byte(`{"data":{"tweetResult":{"result":{"__typename":"TweetWithVisibilityResults","tweet":{"legacy":{"extended_entities":{"media":[{"media_url_https":"https://pbs.twimg.com/media/x.jpg"}]}}}}}}}`)
	res, err := ParseTwitter(body)
	if err != nil {
		t.Fatalf("ParseTwitter() error = %v", err)
	}
	assertURLs(t, res.URLs, []string{"https://pbs.twimg.com/media/x.jpg"})
}

func TestParseTwitterMissingLegacy(t *testing.T) {
	t.Parallel()
	body := []byte(`{"data":{"tweetResult":{}}}`)
	if _, err := ParseTwitter(body); !errors.Is(err, domain.ErrItemNotFound) {
		t.Errorf("error = %v, want ErrItemNotFound", err)
	}
}

func TestTweetID(t *testing.T) {
	t.Parallel()
	tests := []struct {
		url    string
		want   string
		wantOK bool
	}{
		{"https://x.com/i/status/2003082280378773557", "2003082280378773557", true},
		{"https://twitter.com/user/status/123?s=20", "123", true},
		{"https://x.com/user/status/123/photo/1", "123", true},
		{"https://x.com/user/status/", "", false},
		{"https://x.com/user", "", false},
	}
	for _, tt := range tests {
		got, ok := tweetID(tt.url)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("tweetID(%q) = %q, %v, want %q, %v", tt.url, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestTwitterExtractQuery(t *testing.T) {
	t.Parallel()
	f := &fakeFetcher{body: fixture(t, "twitter.json")}
	ex := &Twitter{fetcher: f, endpoint: "https://api.x.test/TweetResultByRestId"}

	if _, err := ex.Extract(context.Background(), domain.ExtractionRequest{URL: "https://x.com/a/status/77?s=1"}); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(f.calls) != 1 || f.calls[0].url != "https://api.x.test/TweetResultByRestId" {
		t.Fatalf("calls = %+v", f.calls)
	}

	q := f.calls[0].values
	var vars map[string]any
	if err := json.Unmarshal([]byte(q.Get("variables")), &vars); err != nil {
		t.Fatalf("variables not JSON: %v", err)
	}
	if vars["tweetId"] != "77" || vars["withVoice"] != true {
		t.Errorf("variables = %v", vars)
	}
	for _, key := range []string{"features", "fieldToggles"} {
		if !json.Valid([]byte(q.Get(key))) {
			t.Errorf("%s is not valid JSON: %s", key, q.Get(key))
		}
	}
}
