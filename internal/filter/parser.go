package filter

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/pfrederiksen/community-site/internal/datefmt"
)

// exprPattern splits "field=value", "field~value", "field>=date" and "field<=date".
var exprPattern = regexp.MustCompile(`^\s*([A-Za-z0-9_.-]+)\s*(>=|<=|=|~)\s*(.*?)\s*$`)

// Parse builds a filter from command-line expressions.
//
// Supported forms:
//   - "website_code=b9e6a7cc" - exact match
//   - "name~alex" - case-insensitive substring
//   - "created_at>=2025-05-01" - on or after the date
//   - "created_at<=2025-05-31" - on or before the end of the date
//
// Only one field may carry a date window.
func Parse(exprs []string, loc *time.Location) (*Filter, error) {
	f := NewFilter()
	f.Location = loc

	for _, expr := range exprs {
		if strings.TrimSpace(expr) == "" {
			continue
		}
		m := exprPattern.FindStringSubmatch(expr)
		if m == nil {
			return nil, fmt.Errorf("invalid filter %q. Use 'field=value', 'field~text', 'field>=date' or 'field<=date'", expr)
		}
		field, op, value := m[1], m[2], m[3]

		switch op {
		case "=":
			f.Equals[field] = value
		case "~":
			if value == "" {
				return nil, fmt.Errorf("invalid filter %q: substring cannot be empty", expr)
			}
			f.Contains[field] = value
		case ">=", "<=":
			if f.DateField != "" && f.DateField != field {
				return nil, fmt.Errorf("date window already set on %q, cannot also filter %q", f.DateField, field)
			}
			t := datefmt.Parse(value, loc)
			if t.IsZero() {
				return nil, fmt.Errorf("invalid date %q in filter %q", value, expr)
			}
			f.DateField = field
			if op == ">=" {
				f.DateFrom = &t
				break
			}
			// A bare date covers the whole day, DST days included; a time
			// bound admits that instant.
			before := t.Add(time.Nanosecond)
			if !strings.ContainsAny(value, ": T") {
				before = t.AddDate(0, 0, 1)
			}
			f.DateBefore = &before
		}
	}

	if f.DateFrom != nil && f.DateBefore != nil && !f.DateFrom.Before(*f.DateBefore) {
		return nil, fmt.Errorf("start date must be before end date")
	}

	return f, nil
}
