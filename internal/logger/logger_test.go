package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLogger_Log(t *testing.T) {
	var buf bytes.Buffer
	logger := New(LevelInfo, &buf)

	tests := []struct {
		name    string
		level   Level
		message string
		fields  Fields
		err     error
		want    bool // should log
	}{
		{
			name:    "info message",
			level:   LevelInfo,
			message: "discussions loaded",
			fields:  Fields{"count": 4},
			want:    true,
		},
		{
			name:    "debug below threshold",
			level:   LevelDebug,
			message: "raw api data",
			want:    false,
		},
		{
			name:    "error with err",
			level:   LevelError,
			message: "submission failed",
			err:     errors.New("connection refused"),
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := buf.Len()

			logger.log(tt.level, tt.message, tt.fields, tt.err)

			logged := buf.Len() > before
			if logged != tt.want {
				t.Errorf("log() logged = %v, want %v", logged, tt.want)
			}
		})
	}
}

func TestLogger_EntryShape(t *testing.T) {
	var buf bytes.Buffer
	New(LevelDebug, &buf).Error("submission failed", Fields{"endpoint": "/community/"}, errors.New("boom"))

	var entry LogEntry
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("Unmarshal() error = %v, line = %q", err, buf.String())
	}
	if entry.Level != "ERROR" {
		t.Errorf("Level = %q, want ERROR", entry.Level)
	}
	if entry.Error != "boom" {
		t.Errorf("Error = %q, want boom", entry.Error)
	}
	if entry.Fields["endpoint"] != "/community/" {
		t.Errorf("Fields[endpoint] = %v, want /community/", entry.Fields["endpoint"])
	}
	if _, err := time.Parse(time.RFC3339, entry.Timestamp); err != nil {
		t.Errorf("Timestamp %q is not RFC3339: %v", entry.Timestamp, err)
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	base := New(LevelInfo, &buf)
	scoped := base.With(Fields{"page": "connect", "zone": "b9e6a7cc"})

	scoped.Info("loaded", Fields{"zone": "override"})

	var entry LogEntry
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if entry.Fields["page"] != "connect" {
		t.Errorf("page = %v, want connect", entry.Fields["page"])
	}
	if entry.Fields["zone"] != "override" {
		t.Errorf("zone = %v, want call-site field to win", entry.Fields["zone"])
	}

	buf.Reset()
	base.Info("unscoped", nil)
	if strings.Contains(buf.String(), "connect") {
		t.Errorf("base logger picked up scoped fields: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{" INFO ", LevelInfo, false},
		{"Warn", LevelWarn, false},
		{"error", LevelError, false},
		{"trace", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDiscard(t *testing.T) {
	// Should not panic
	Discard().Error("ignored", Fields{"k": "v"}, errors.New("x"))
}

func TestMetrics_Counter(t *testing.T) {
	m := NewMetrics()

	m.IncrCounter("submit.success")
	m.IncrCounter("submit.success")
	m.IncrCounter("submit.success")

	if got := m.Snapshot().Counters["submit.success"]; got != 3 {
		t.Errorf("Snapshot counter = %v, want 3", got)
	}
	if m.Counter("submit.success") != 3 {
		t.Errorf("Counter() = %v, want 3", m.Counter("submit.success"))
	}
	if m.Counter("missing") != 0 {
		t.Errorf("Counter(missing) = %v, want 0", m.Counter("missing"))
	}
}

func TestMetrics_Gauge(t *testing.T) {
	m := NewMetrics()

	m.SetGauge("list.items", 10)
	m.SetGauge("list.items", 4)

	if got := m.Snapshot().Gauges["list.items"]; got != 4 {
		t.Errorf("Gauge = %v, want 4", got)
	}
}

func TestMetrics_Timing(t *testing.T) {
	m := NewMetrics()

	m.RecordTiming("list.load", 100*time.Millisecond)
	m.RecordTiming("list.load", 200*time.Millisecond)
	m.RecordTiming("list.load", 150*time.Millisecond)

	want := TimingStats{
		Count: 3,
		Total: 450 * time.Millisecond,
		Min:   100 * time.Millisecond,
		Max:   200 * time.Millisecond,
	}
	if diff := cmp.Diff(want, m.Snapshot().Timings["list.load"]); diff != "" {
		t.Errorf("Timing mismatch (-want +got):\n%s", diff)
	}
	if got := m.Timing("list.load").Average(); got != 150*time.Millisecond {
		t.Errorf("Average() = %v, want 150ms", got)
	}
	if got := m.Timing("missing"); got.Count != 0 || got.Average() != 0 {
		t.Errorf("Timing(missing) = %+v", got)
	}

	data, err := json.Marshal(m.Snapshot())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"list.load":{"average":"150ms","count":3,"max":"200ms","min":"100ms","total":"450ms"}`) {
		t.Errorf("snapshot JSON = %s", data)
	}
}

func TestPackageLevelFunctions(t *testing.T) {
	original := Default()
	SetDefault(Discard())
	defer SetDefault(original)

	// Should not panic
	Debug("test debug", nil)
	Info("test info", Fields{"key": "value"})
	Warn("test warning", nil)
	Error("test error", Fields{"component": "test"}, errors.New("test"))

	IncrCounter("test")
	SetGauge("test", 42.0)
	RecordTiming("test", time.Second)

	if DefaultMetrics().Counter("test") < 1 {
		t.Error("IncrCounter() did not reach the default tracker")
	}
	if DefaultMetrics().Timing("test").Count < 1 {
		t.Error("RecordTiming() did not reach the default tracker")
	}
}
