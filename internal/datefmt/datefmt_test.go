package datefmt

import (
	"testing"
	"time"
)

var brisbane = time.FixedZone("AEST", 10*60*60)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     time.Time
		wantZero bool
	}{
		{
			name:  "api minute format",
			input: "2025-05-18 15:20",
			want:  time.Date(2025, time.May, 18, 15, 20, 0, 0, brisbane),
		},
		{
			name:  "api seconds format",
			input: "2025-05-18 15:20:45",
			want:  time.Date(2025, time.May, 18, 15, 20, 45, 0, brisbane),
		},
		{
			name:  "rfc3339 keeps its own zone",
			input: "2025-05-18T05:20:00Z",
			want:  time.Date(2025, time.May, 18, 5, 20, 0, 0, time.UTC),
		},
		{
			name:  "iso without zone",
			input: "2025-05-18T15:20:00.123456",
			want:  time.Date(2025, time.May, 18, 15, 20, 0, 123456000, brisbane),
		},
		{
			name:  "date only",
			input: "2025-05-18",
			want:  time.Date(2025, time.May, 18, 0, 0, 0, 0, brisbane),
		},
		{
			name:  "surrounding whitespace",
			input: "  2025-05-18 15:20 ",
			want:  time.Date(2025, time.May, 18, 15, 20, 0, 0, brisbane),
		},
		{name: "empty", input: "", wantZero: true},
		{name: "garbage", input: "yesterday-ish", wantZero: true},
		{name: "missing time part", input: "2025-05-18 ", want: time.Date(2025, time.May, 18, 0, 0, 0, 0, brisbane)},
		{name: "invalid month", input: "2025-13-01 10:00", wantZero: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input, brisbane)
			if tt.wantZero {
				if !got.IsZero() {
					t.Errorf("Parse(%q) = %v, want zero", tt.input, got)
				}
				return
			}
			if !got.Equal(tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRelative(t *testing.T) {
	posted := time.Date(2025, time.May, 18, 15, 20, 0, 0, brisbane)

	tests := []struct {
		name  string
		input string
		now   time.Time
		want  string
	}{
		{"thirty minutes later", "2025-05-18 15:20", posted.Add(30 * time.Minute), "30 minutes ago"},
		{"ten days later", "2025-05-18 15:20", posted.AddDate(0, 0, 10), "18 May 2025"},
		{"same instant", "2025-05-18 15:20", posted, "Just now"},
		{"under a minute", "2025-05-18 15:20", posted.Add(59 * time.Second), "Just now"},
		{"future timestamp", "2025-05-18 15:20", posted.Add(-2 * time.Hour), "Just now"},
		{"one minute", "2025-05-18 15:20", posted.Add(time.Minute), "1 minute ago"},
		{"fifty nine minutes", "2025-05-18 15:20", posted.Add(59 * time.Minute), "59 minutes ago"},
		{"one hour", "2025-05-18 15:20", posted.Add(60 * time.Minute), "1 hour ago"},
		{"five hours", "2025-05-18 15:20", posted.Add(5*time.Hour + 10*time.Minute), "5 hours ago"},
		{"one day", "2025-05-18 15:20", posted.Add(24 * time.Hour), "1 day ago"},
		{"six days", "2025-05-18 15:20", posted.Add(6*24*time.Hour + 23*time.Hour), "6 days ago"},
		{"exactly seven days", "2025-05-18 15:20", posted.Add(RelativeWindow), "18 May 2025"},
		{"september abbreviation", "2025-09-02 08:00", posted.AddDate(0, 6, 0), "2 Sept 2025"},
		{"empty", "", posted, "Recently"},
		{"blank", "   ", posted, "Recently"},
		{"unparseable returns raw", "not a date", posted, "not a date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Relative(tt.input, tt.now, brisbane); got != tt.want {
				t.Errorf("Relative(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLong(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"2025-01-03T09:00:00Z", "3 January 2025"},
		{"2025-05-18 15:20", "18 May 2025"},
		{"2024-12-31", "31 December 2024"},
		{"", "Recently"},
		{"soon", "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Long(tt.input, brisbane); got != tt.want {
				t.Errorf("Long(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParse_NilLocationUsesLocal(t *testing.T) {
	got := Parse("2025-05-18 15:20", nil)
	if got.Location() != time.Local {
		t.Errorf("Location() = %v, want Local", got.Location())
	}
}
