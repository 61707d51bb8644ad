package extractor

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mediascraper/internal/domain"
	"mediascraper/internal/jsontree"
)

const (
	tiktokIsland   = "__UNIVERSAL_DATA_FOR_REHYDRATION__"
	tiktokWebHost  = "https://www.tiktok.com"
	tiktokCDNAlias = "https://api16-normal-useast5.tiktokv.us"
)

// TikTok reads the rehydration island embedded in a post page.
type TikTok struct {
	fetcher Fetcher
	logger  *zap.Logger
}

func (e *TikTok) Platform() domain.Platform { return domain.TikTok }

func (e *TikTok) Extract(ctx context.Context, req domain.ExtractionRequest) (*domain.Result, error) {
	target := strings.ReplaceAll(req.URL, "/photo", "/video")
	if strings.Contains(target, "vm.tiktok.com") {
		resolved, err := e.fetcher.Resolve(ctx, domain.TikTok, target)
		if err != nil {
			return nil, fmt.Errorf("tiktok: resolve short link: %w", err)
		}
		e.logger.Debug("short link resolved", zap.String("url", resolved))
		target = resolved
	}

	resp, err := e.fetcher.Get(ctx, domain.TikTok, target)
	if err != nil {
		return nil, fmt.Errorf("tiktok: %w", err)
	}
	return ParseTikTok(resp.Body, req.Mode)
}

// ParseTikTok maps a TikTok post page.
func ParseTikTok(page []byte, mode domain.Mode) (*domain.Result, error) {
	doc, err := loadDocument(page)
	if err != nil {
		return nil, fmt.Errorf("tiktok: %w", err)
	}
	text, ok := scriptByID(doc, tiktokIsland)
	if !ok {
		return nil, fmt.Errorf("tiktok: %w: no %s script", domain.ErrIslandNotFound, tiktokIsland)
	}
	root, err := parseJSON([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("tiktok: %w", err)
	}

	item := root.Path("__DEFAULT_SCOPE__", "webapp.video-detail", "itemInfo", "itemStruct")
	if item.Kind() != jsontree.Object {
		return nil, fmt.Errorf("tiktok: %w: itemInfo.itemStruct missing", domain.ErrItemNotFound)
	}

	res := &domain.Result{Platform: domain.TikTok, Mode: domain.Cut, Author: tiktokAuthor(item), Music: tiktokMusic(item)}
	res.Content = tiktokContent(item)

	if bitrates := item.Path("video", "bitrateInfo"); bitrates.Kind() == jsontree.Array {
		res.Content.IsVideo = true
		res.Media = tiktokVideoTiers(bitrates.Items(), res.Content.Cover)
	} else {
		res.Content.IsImage = true
		post := item.Get("imagePost")
		res.Content.Title = post.Get("title").StringOr(domain.NA)
		res.Content.Cover = post.Path("cover", "imageURL", "urlList").Last().StringOr(domain.NA)
		res.Media = tiktokImages(post.Get("images").Items())
	}

	if mode == domain.Raw {
		return rawResult(domain.TikTok, append(mediaAddresses(res.Media), res.Content.Cover)...), nil
	}
	return res, nil
}

// tiktokVideoTiers builds one asset per bitrate tier. Tiers are independent so
// they are mapped concurrently; each goroutine owns its slot, keeping source order.
func tiktokVideoTiers(tiers []*jsontree.Value, cover string) []domain.MediaAsset {
	assets := make([]domain.MediaAsset, len(tiers))
	var g errgroup.Group
	for i, tier := range tiers {
		g.Go(func() error {
			play := tier.Get("PlayAddr")
			addr := play.Get("UrlList").Last().StringOr(domain.NA)
			a := domain.NewMediaAsset(domain.Video, strings.ReplaceAll(addr, tiktokWebHost, tiktokCDNAlias))
			a.Quality = fmt.Sprintf("quality_%d", i)
			a.Size = play.Get("DataSize").IntOr(0)
			a.Cover = cover
			assets[i] = a
			return nil
		})
	}
	_ = g.Wait()
	return assets
}

func tiktokImages(images []*jsontree.Value) []domain.MediaAsset {
	assets := make([]domain.MediaAsset, 0, len(images))
	for i, img := range images {
		list, _ := jsontree.FindAllURLLists(img)
		a := domain.NewMediaAsset(domain.Image, list.Last().StringOr(domain.NA))
		a.Quality = fmt.Sprintf("image_%d", i)
		a.Size = img.Get("imageHeight").IntOr(0)
		assets = append(assets, a)
	}
	return assets
}

func tiktokContent(item *jsontree.Value) domain.Content {
	stats := item.Get("stats")
	c := domain.NewContent()
	c.ID = item.Get("id").StringOr(domain.NA)
	c.Desc = item.Get("desc").StringOr(domain.NA)
	c.Cover = item.Path("video", "cover").StringOr(domain.NA)
	c.Views = stats.Get("playCount").IntOr(0)
	c.Likes = stats.Get("diggCount").IntOr(0)
	c.Comments = stats.Get("commentCount").IntOr(0)
	c.Saves = stats.Get("collectCount").IntOr(0)
	c.Shares = stats.Get("shareCount").IntOr(0)
	return c
}

func tiktokAuthor(item *jsontree.Value) *domain.Author {
	author := item.Get("author")
	a := domain.NewAuthor()
	a.Name = author.Get("nickname").StringOr(domain.NA)
	a.Username = author.Get("uniqueId").StringOr(domain.NA)
	a.Verified = author.Get("verified").BoolOr(false)
	a.Image = author.Get("avatarMedium").StringOr(domain.NA)
	a.Bio = author.Get("signature").StringOr(domain.NA)
	a.Location = item.Get("locationCreated").StringOr(domain.NA)
	a.Followers = item.Path("authorStats", "followerCount").IntOr(0)
	a.Posts = item.Path("authorStats", "videoCount").IntOr(0)
	return &a
}

func tiktokMusic(item *jsontree.Value) *domain.Music {
	music := item.Get("music")
	return &domain.Music{
		Author:   music.Get("authorName").StringOr(domain.NA),
		Title:    music.Get("title").StringOr(domain.NA),
		Cover:    music.Get("coverMedium").StringOr(domain.NA),
		Duration: music.Get("duration").IntOr(0),
		Src:      music.Get("playUrl").StringOr(domain.NA),
	}
}
