// Package platform classifies post URLs by the site that owns them.
package platform

import (
	"regexp"

	"mediascraper/internal/domain"
)

type rule struct {
	pattern  *regexp.Regexp
	platform domain.Platform
}

var instagramPattern = regexp.MustCompile(`instagram\.com/(p|reel|reels|tv)/([A-Za-z0-9_-]+)/?`)

// Order matters: the first matching rule wins.
var rules = []rule{
	{regexp.MustCompile(`tiktok\.com/.*/`), domain.TikTok},
	{instagramPattern, domain.Instagram},
	{regexp.MustCompile(`(facebook\.com/.*/|fb\.watch/.*/)`), domain.Facebook},
	{regexp.MustCompile(`snapchat\.com/t/`), domain.Snapchat},
	{regexp.MustCompile(`(twitter\.com/|x\.com/).*/status/`), domain.Twitter},
}

// Classify returns the platform owning rawURL, or domain.Unsupported.
func Classify(rawURL string) domain.Platform {
	for _, r := range rules {
		if r.pattern.MatchString(rawURL) {
			return r.platform
		}
	}
	return domain.Unsupported
}

// InstagramShortcode returns the post shortcode captured from an Instagram URL.
func InstagramShortcode(rawURL string) (string, bool) {
	m := instagramPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	return m[2], true
}
