// Package datefmt parses API timestamps and renders them as the labels shown on
// member and discussion cards.
package datefmt

import (
	"fmt"
	"strings"
	"time"
)

// Recently is shown when a record carries no timestamp.
const Recently = "Recently"

// RelativeWindow is how far back a timestamp is still shown as relative time.
const RelativeWindow = 7 * 24 * time.Hour

// layouts are tried in order. Layouts without a zone are read in the caller's
// location.
var layouts = []string{
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// en-AU abbreviations; September is "Sept", not "Sep".
var shortMonths = [...]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sept", "Oct", "Nov", "Dec",
}

// Parse reads an API timestamp such as "2025-05-18 15:20" or an RFC 3339
// string. Returns time.Time{} (zero value) if no layout matches.
func Parse(s string, loc *time.Location) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Relative renders s relative to now: "Just now", "5 minutes ago", "3 hours ago",
// "2 days ago", or the short absolute date ("18 May 2025") once the timestamp is
// at least RelativeWindow old. Empty input yields Recently; input that cannot be
// parsed is returned unchanged.
func Relative(s string, now time.Time, loc *time.Location) string {
	if strings.TrimSpace(s) == "" {
		return Recently
	}
	t := Parse(s, loc)
	if t.IsZero() {
		return s
	}

	mins := int(now.Sub(t) / time.Minute)
	hours := mins / 60
	days := hours / 24

	switch {
	case mins < 1:
		return "Just now"
	case mins < 60:
		return plural(mins, "minute") + " ago"
	case hours < 24:
		return plural(hours, "hour") + " ago"
	case days < 7:
		return plural(days, "day") + " ago"
	}
	return Short(t)
}

// Long renders s as a full date ("3 January 2025"). Empty input yields
// Recently; input that cannot be parsed is returned unchanged.
func Long(s string, loc *time.Location) string {
	if strings.TrimSpace(s) == "" {
		return Recently
	}
	t := Parse(s, loc)
	if t.IsZero() {
		return s
	}
	return t.Format("2 January 2006")
}

// Short formats t as "18 May 2025".
func Short(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), shortMonths[t.Month()-1], t.Year())
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
