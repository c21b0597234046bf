package news

import (
	"github.com/seenimoa/marketdesk/pkg/models"
)

// Normalize converts one raw upstream record into a NewsItem. Records
// that carry a nested "content" object are read from it, with the outer
// record consulted for identity. The second result is false when the
// record has neither an id nor a title and cannot be deduplicated.
func Normalize(raw models.RawNews) (models.NewsItem, bool) {
	outer := record(raw)
	src := outer.obj("content")
	if src == nil {
		src = outer
	}

	id := firstNonEmpty(src.str("id"), src.str("uuid"), outer.str("id"), outer.str("uuid"))
	title := src.str("title")
	if id == "" && title == "" {
		return models.NewsItem{}, false
	}

	item := models.NewsItem{
		ID:             id,
		UUID:           id,
		Title:          title,
		Publisher:      publisher(src),
		Link:           link(src),
		Kind:           firstNonEmpty(src.str("type"), src.str("contentType"), models.DefaultNewsKind),
		Thumbnail:      thumbnail(src),
		RelatedTickers: ExtractTickers(title),
		Summary:        firstNonEmpty(src.str("summary"), src.str("description")),
	}
	if ts, ok := src.epoch("providerPublishTime"); ok {
		item.PublishTime = ts
	} else if ts, ok := src.epoch("pubDate"); ok {
		item.PublishTime = ts
	}
	return item, true
}

func publisher(r record) string {
	if p := r.str("publisher"); p != "" {
		return p
	}
	if p := r.obj("provider"); p != nil {
		return p.str("displayName")
	}
	return ""
}

// link follows the priority chain: link, clickThroughUrl, canonicalUrl.
func link(r record) string {
	return firstNonEmpty(r.str("link"), r.url("clickThroughUrl"), r.url("canonicalUrl"))
}

// thumbnail keeps the last listed resolution, which upstream orders largest last.
func thumbnail(r record) *models.Thumbnail {
	t := r.obj("thumbnail")
	if t == nil {
		return nil
	}
	resolutions := t.list("resolutions")
	if len(resolutions) == 0 {
		if u := t.str("originalUrl"); u != "" {
			return &models.Thumbnail{Resolutions: []models.ThumbnailResolution{{URL: u}}}
		}
		return nil
	}
	last, ok := resolutions[len(resolutions)-1].(map[string]any)
	if !ok {
		return nil
	}
	res := record(last)
	u := res.str("url")
	if u == "" {
		return nil
	}
	w, _ := res.epoch("width")
	h, _ := res.epoch("height")
	return &models.Thumbnail{Resolutions: []models.ThumbnailResolution{{
		URL:    u,
		Width:  int(w),
		Height: int(h),
		Tag:    res.str("tag"),
	}}}
}
