package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/seenimoa/marketdesk/pkg/models"
)

// ErrStale is returned when the cache file is older than its TTL.
var ErrStale = errors.New("calendar cache expired")

// FileCache persists the event list as a JSON array. The file's mtime is
// the TTL clock.
type FileCache struct {
	path string
	ttl  time.Duration
	now  func() time.Time
}

// NewFileCache creates a file cache at path whose contents expire after ttl.
func NewFileCache(path string, ttl time.Duration) *FileCache {
	return &FileCache{path: path, ttl: ttl, now: time.Now}
}

// WithClock replaces the cache's time source and returns the cache.
func (c *FileCache) WithClock(now func() time.Time) *FileCache {
	c.now = now
	return c
}

func (c *FileCache) Name() string { return "file" }

// Path returns the cache file location.
func (c *FileCache) Path() string { return c.path }

// Events loads the cached list if the file exists and is fresh.
func (c *FileCache) Events(_ context.Context) ([]models.EconomicEvent, error) {
	info, err := os.Stat(c.path)
	if err != nil {
		return nil, err
	}
	if age := c.now().Sub(info.ModTime()); age >= c.ttl {
		return nil, fmt.Errorf("%w: age %s", ErrStale, age.Round(time.Second))
	}
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, err
	}
	var events []models.EconomicEvent
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.path, err)
	}
	return events, nil
}

// Save writes events through a temp file and rename, so readers never
// see a partial file. Concurrent writers race and the last rename wins.
func (c *FileCache) Save(events []models.EconomicEvent) error {
	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".calendar-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), c.path)
}
