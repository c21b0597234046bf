package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNewsItemDedupKey(t *testing.T) {
	tests := []struct {
		name string
		item NewsItem
		want string
	}{
		{"id wins", NewsItem{ID: "abc", Title: "Fed holds"}, "abc"},
		{"title fallback", NewsItem{Title: "Fed holds"}, "Fed holds"},
		{"empty", NewsItem{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.DedupKey(); got != tt.want {
				t.Errorf("DedupKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewsItemThumbnailURL(t *testing.T) {
	item := NewsItem{Thumbnail: &Thumbnail{Resolutions: []ThumbnailResolution{
		{URL: "https://img/small.jpg"},
		{URL: "https://img/large.jpg"},
	}}}
	if got := item.ThumbnailURL(); got != "https://img/large.jpg" {
		t.Errorf("ThumbnailURL() = %q", got)
	}
	if got := (NewsItem{}).ThumbnailURL(); got != "" {
		t.Errorf("ThumbnailURL() without thumbnail = %q", got)
	}
	if got := (NewsItem{Thumbnail: &Thumbnail{}}).ThumbnailURL(); got != "" {
		t.Errorf("ThumbnailURL() with no resolutions = %q", got)
	}
}

func TestNewsItemJSONFieldNames(t *testing.T) {
	b, err := json.Marshal(NewsItem{ID: "x", Title: "t", PublishTime: 1700000000, Kind: DefaultNewsKind})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	s := string(b)
	for _, want := range []string{`"providerPublishTime":1700000000`, `"type":"STORY"`, `"relatedTickers":null`} {
		if !strings.Contains(s, want) {
			t.Errorf("encoded item %s missing %s", s, want)
		}
	}
}

func TestNewPriceSnapshot(t *testing.T) {
	s := NewPriceSnapshot(150, 100)
	if s.Change != 50 || s.ChangePercent != 50 {
		t.Errorf("NewPriceSnapshot(150, 100) = %+v", s)
	}

	zero := NewPriceSnapshot(5, 0)
	if zero.Change != 5 || zero.ChangePercent != 0 {
		t.Errorf("NewPriceSnapshot(5, 0) = %+v", zero)
	}
}
