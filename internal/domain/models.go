package domain

import "strings"

// NA is reported for every string field missing from the upstream source.
const NA = "N/A"

// Platform identifies the site that owns a post URL.
type Platform int

const (
	Unsupported Platform = iota
	TikTok
	Instagram
	Facebook
	Snapchat
	Twitter
)

func (p Platform) String() string {
	switch p {
	case TikTok:
		return "tiktok"
	case Instagram:
		return "instagram"
	case Facebook:
		return "facebook"
	case Snapchat:
		return "snapchat"
	case Twitter:
		return "twitter"
	default:
		return "unsupported"
	}
}

// MarshalText renders the platform as its lowercase payload name.
func (p Platform) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Mode selects the response shape.
type Mode int

const (
	// Raw emits every discoverable media URL as a flat list.
	Raw Mode = iota
	// Cut emits the structured content/author/media object.
	Cut
)

func (m Mode) String() string {
	if m == Cut {
		return "cut"
	}
	return "raw"
}

// ModeFromFlag maps the inbound `cut` flag to a Mode.
func ModeFromFlag(cut bool) Mode {
	if cut {
		return Cut
	}
	return Raw
}

// ParseFlag accepts the textual spellings of a boolean query/form flag.
func ParseFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// ExtractionRequest is the input of a single extraction.
type ExtractionRequest struct {
	URL  string
	Mode Mode
}

// MediaKind is the type of a single downloadable asset.
type MediaKind int

const (
	Video MediaKind = iota
	Audio
	Image
)

func (k MediaKind) String() string {
	switch k {
	case Audio:
		return "audio"
	case Image:
		return "image"
	default:
		return "video"
	}
}

func (k MediaKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// MediaAsset is one independently retrievable media file.
type MediaAsset struct {
	ID      string    `json:"id"`
	Kind    MediaKind `json:"kind"`
	Quality string    `json:"quality"`
	Address string    `json:"address"`
	Cover   string    `json:"cover"`
	Size    int64     `json:"size"`
	Plays   int64     `json:"plays"`
	Views   int64     `json:"views"`
}

// NewMediaAsset returns an asset with every optional field set to its sentinel.
func NewMediaAsset(kind MediaKind, address string) MediaAsset {
	return MediaAsset{ID: NA, Kind: kind, Quality: NA, Address: address, Cover: NA}
}

// Content describes the post itself.
type Content struct {
	ID        string `json:"id"`
	Shortcode string `json:"shortcode"`
	Title     string `json:"title"`
	Desc      string `json:"desc"`
	Cover     string `json:"cover"`
	Views     int64  `json:"views"`
	Likes     int64  `json:"likes"`
	Comments  int64  `json:"comments"`
	Shares    int64  `json:"shares"`
	Saves     int64  `json:"saves"`
	IsVideo   bool   `json:"is_video"`
	IsImage   bool   `json:"is_image"`
}

// NewContent returns a Content with all string fields set to NA.
func NewContent() Content {
	return Content{ID: NA, Shortcode: NA, Title: NA, Desc: NA, Cover: NA}
}

// Author describes the owner of a post.
type Author struct {
	Name      string `json:"name"`
	Username  string `json:"username"`
	Verified  bool   `json:"verified"`
	Image     string `json:"image"`
	Bio       string `json:"bio"`
	Location  string `json:"location"`
	Followers int64  `json:"followers"`
	Posts     int64  `json:"posts"`
}

// NewAuthor returns an Author with all string fields set to NA.
func NewAuthor() Author {
	return Author{Name: NA, Username: NA, Image: NA, Bio: NA, Location: NA}
}

// Music is the soundtrack attached to a TikTok post.
type Music struct {
	Author   string `json:"author"`
	Title    string `json:"title"`
	Cover    string `json:"cover"`
	Duration int64  `json:"duration"`
	Src      string `json:"src"`
}

// DeafMedia is Facebook's split video/audio fallback. Empty when nothing usable was offered.
type DeafMedia struct {
	VideoURL string `json:"video_url,omitempty"`
	AudioURL string `json:"audio_url,omitempty"`
}

// Result is the internal outcome of one extraction. URLs is filled in Raw mode,
// the structured fields in Cut mode; never both.
type Result struct {
	Platform Platform
	Mode     Mode

	URLs []string

	Content   Content
	Author    *Author
	Media     []MediaAsset
	Music     *Music
	DeafMedia *DeafMedia
}
