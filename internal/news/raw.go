package news

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/seenimoa/marketdesk/pkg/models"
)

// record wraps one raw upstream map with defensive accessors. Every
// accessor returns the zero value when the key is missing or holds an
// unexpected type.
type record map[string]any

func (r record) str(key string) string {
	switch v := r[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	}
	return ""
}

func (r record) obj(key string) record {
	switch v := r[key].(type) {
	case map[string]any:
		return record(v)
	case models.RawNews:
		return record(v)
	case record:
		return v
	}
	return nil
}

func (r record) list(key string) []any {
	if v, ok := r[key].([]any); ok {
		return v
	}
	return nil
}

// url resolves a field that is either a URL string or an object with a url key.
func (r record) url(key string) string {
	if s := r.str(key); s != "" {
		return s
	}
	if o := r.obj(key); o != nil {
		return o.str("url")
	}
	return ""
}

// epoch resolves a field holding either epoch seconds or an RFC 3339 timestamp.
func (r record) epoch(key string) (int64, bool) {
	switch v := r[key].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case string:
		if v == "" {
			return 0, false
		}
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n, true
		}
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t.Unix(), true
		}
	}
	return 0, false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
