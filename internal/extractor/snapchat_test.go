package extractor

import (
	"errors"
	"testing"

	"mediascraper/internal/domain"
)

func TestParseSnapchat(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		page []byte
		want []string
	}{
		{
			name: "story",
			page: fixture(t, "snapchat_story.html"),
			want: []string{
				"https://cf-st.sc-cdn.net/d/one.mp4",
				"https://cf-st.sc-cdn.net/d/one.jpg",
				"https://cf-st.sc-cdn.net/d/two.jpg",
				domain.NA,
			},
		},
		{
			name: "highlight",
			page: []byte(`<html><script id="__NEXT_DATA__" type="application/json">{"props":{"pageProps":{"highlight":{"snapList":[{"snapUrls":{"mediaUrl":"https://cf-st.sc-cdn.net/h.mp4","mediaPreviewUrl":{"value":"https://cf-st.sc-cdn.net/h.jpg"}}}]}}}}</script></html>`),
			want: []string{"https://cf-st.sc-cdn.net/h.mp4", "https://cf-st.sc-cdn.net/h.jpg"},
		},
		{
			name: "missing preview keeps pairs aligned",
			page: []byte(`<html><script id="__NEXT_DATA__" type="application/json">{"props":{"pageProps":{"story":{"snapList":[{"snapUrls":{"mediaUrl":"https://cf-st.sc-cdn.net/m1.mp4"}},{"snapUrls":{"mediaUrl":"https://cf-st.sc-cdn.net/m2.mp4","mediaPreviewUrl":{"value":"https://cf-st.sc-cdn.net/p2.jpg"}}},{"snapUrls":{}}]}}}}</script></html>`),
			want: []string{
				"https://cf-st.sc-cdn.net/m1.mp4", domain.NA,
				"https://cf-st.sc-cdn.net/m2.mp4", "https://cf-st.sc-cdn.net/p2.jpg",
				domain.NA, domain.NA,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res, err := ParseSnapchat(tt.page)
			if err != nil {
				t.Fatalf("ParseSnapchat() error = %v", err)
			}
			if res.Mode != domain.Raw || res.Platform != domain.Snapchat {
				t.Errorf("platform/mode = %v/%v", res.Platform, res.Mode)
			}
			assertURLs(t, res.URLs, tt.want)
		})
	}
}

func TestParseSnapchatNoSnapList(t *testing.T) {
	t.Parallel()
	page := []byte(`<html><script id="__NEXT_DATA__">{"props":{"pageProps":{"statusCode":404}}}</script></html>`)
	if _, err := ParseSnapchat(page); !errors.Is(err, domain.ErrItemNotFound) {
		t.Errorf("error = %v, want ErrItemNotFound", err)
	}
}
