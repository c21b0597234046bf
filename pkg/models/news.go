// Package models defines the wire types shared across marketdesk:
// news items, price snapshots, economic events, and analysis requests.
package models

// RawNews is one loosely-typed news record as returned by an upstream feed.
// Values are whatever the JSON decoder produced (string, float64, map, slice).
type RawNews map[string]any

// DefaultNewsKind is used when an upstream record carries no content type.
const DefaultNewsKind = "STORY"

// NewsItem is the canonical, normalized news record served to the dashboard.
type NewsItem struct {
	ID             string     `json:"id,omitempty"`
	UUID           string     `json:"uuid,omitempty"`
	Title          string     `json:"title"`
	Publisher      string     `json:"publisher,omitempty"`
	Link           string     `json:"link,omitempty"`
	PublishTime    int64      `json:"providerPublishTime"`
	Kind           string     `json:"type"`
	Thumbnail      *Thumbnail `json:"thumbnail,omitempty"`
	RelatedTickers []string   `json:"relatedTickers"`
	Summary        string     `json:"summary,omitempty"`
}

// Thumbnail mirrors the upstream resolutions list. Only the largest
// resolution is kept after normalization.
type Thumbnail struct {
	Resolutions []ThumbnailResolution `json:"resolutions"`
}

// ThumbnailResolution is a single image rendition.
type ThumbnailResolution struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Tag    string `json:"tag,omitempty"`
}

// DedupKey returns the identity used to collapse duplicates: ID, else Title.
func (n NewsItem) DedupKey() string {
	if n.ID != "" {
		return n.ID
	}
	return n.Title
}

// ThumbnailURL returns the selected thumbnail URL, or "" when absent.
func (n NewsItem) ThumbnailURL() string {
	if n.Thumbnail == nil || len(n.Thumbnail.Resolutions) == 0 {
		return ""
	}
	return n.Thumbnail.Resolutions[len(n.Thumbnail.Resolutions)-1].URL
}
