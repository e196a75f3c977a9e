package listing

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/pfrederiksen/community-site/internal/datefmt"
)

// Item is one record returned by the API. Field names are defined by the API
// (name, message, photo, created_at, chat_post_title, website_code, ...).
type Item map[string]any

// String returns the field as text. Numbers are formatted without exponent,
// missing or null fields yield "".
func (it Item) String(field string) string {
	switch v := it[field].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// Time parses the field with datefmt.Parse. Zero when absent or unparseable.
func (it Item) Time(field string, loc *time.Location) time.Time {
	return datefmt.Parse(it.String(field), loc)
}

// TimeKey returns a sort key reading field as a timestamp.
func TimeKey(field string, loc *time.Location) func(Item) time.Time {
	return func(it Item) time.Time {
		return it.Time(field, loc)
	}
}
