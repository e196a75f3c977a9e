// Package filter selects API items by field values.
//
// Filters are built from exact matches (the zone filter on discussions is
// website_code == zone), case-insensitive substring matches, and an optional
// date window on one field:
//
//	f := filter.Zone("website_code", "b9e6a7cc")
//	opts := listing.Options{Filter: f.Matches}
//
// An empty filter matches every item.
package filter

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pfrederiksen/community-site/internal/listing"
)

// Filter holds item selection criteria. All criteria must hold for an item
// to match.
type Filter struct {
	// Exact string equality, no normalisation.
	Equals map[string]string `json:"equals,omitempty" yaml:"equals,omitempty"`

	// Case-insensitive substring match.
	Contains map[string]string `json:"contains,omitempty" yaml:"contains,omitempty"`

	// Date window on DateField: DateFrom is inclusive, DateBefore exclusive.
	// Items whose date does not parse are kept.
	DateField  string     `json:"date_field,omitempty" yaml:"date_field,omitempty"`
	DateFrom   *time.Time `json:"date_from,omitempty" yaml:"date_from,omitempty"`
	DateBefore *time.Time `json:"date_before,omitempty" yaml:"date_before,omitempty"`

	// Location for dates without an explicit zone. Nil means Local.
	Location *time.Location `json:"-" yaml:"-"`
}

// NewFilter creates an empty filter.
func NewFilter() *Filter {
	return &Filter{
		Equals:   map[string]string{},
		Contains: map[string]string{},
	}
}

// Zone returns a filter keeping items whose field equals zone exactly.
func Zone(field, zone string) *Filter {
	f := NewFilter()
	f.Equals[field] = zone
	return f
}

// IsEmpty reports whether the filter has no criteria.
func (f *Filter) IsEmpty() bool {
	if f == nil {
		return true
	}
	return len(f.Equals) == 0 && len(f.Contains) == 0 && f.DateFrom == nil && f.DateBefore == nil
}

// Matches reports whether item passes every criterion.
func (f *Filter) Matches(item listing.Item) bool {
	if f.IsEmpty() {
		return true
	}

	for field, want := range f.Equals {
		if item.String(field) != want {
			return false
		}
	}

	for field, sub := range f.Contains {
		if !strings.Contains(strings.ToLower(item.String(field)), strings.ToLower(sub)) {
			return false
		}
	}

	if f.DateField != "" && (f.DateFrom != nil || f.DateBefore != nil) {
		t := item.Time(f.DateField, f.Location)
		if !t.IsZero() {
			if f.DateFrom != nil && t.Before(*f.DateFrom) {
				return false
			}
			if f.DateBefore != nil && !t.Before(*f.DateBefore) {
				return false
			}
		}
	}

	return true
}

// String returns a human-readable description of the criteria.
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "No filters"
	}

	var parts []string
	for _, field := range sortedKeys(f.Equals) {
		parts = append(parts, fmt.Sprintf("%s = %q", field, f.Equals[field]))
	}
	for _, field := range sortedKeys(f.Contains) {
		parts = append(parts, fmt.Sprintf("%s contains %q", field, f.Contains[field]))
	}

	if f.DateFrom != nil || f.DateBefore != nil {
		switch {
		case f.DateFrom != nil && f.DateBefore != nil:
			parts = append(parts, fmt.Sprintf("%s %s to %s", f.DateField,
				f.DateFrom.Format("2006-01-02"), lastDay(*f.DateBefore)))
		case f.DateFrom != nil:
			parts = append(parts, fmt.Sprintf("%s from %s", f.DateField, f.DateFrom.Format("2006-01-02")))
		default:
			parts = append(parts, fmt.Sprintf("%s until %s", f.DateField, lastDay(*f.DateBefore)))
		}
	}

	return strings.Join(parts, ", ")
}

// lastDay is the last date an exclusive bound still admits.
func lastDay(before time.Time) string {
	return before.Add(-time.Nanosecond).Format("2006-01-02")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
