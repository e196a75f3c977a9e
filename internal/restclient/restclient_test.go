package restclient

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pfrederiksen/community-site/internal/logger"
)

func TestNew_SetsUserAgentAndRecordsTiming(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	var buf bytes.Buffer
	metrics := logger.NewMetrics()
	client := New(Options{Logger: logger.New(logger.LevelDebug, &buf), Metrics: metrics})

	resp, err := client.R().SetContext(context.Background()).Get(server.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if resp.StatusCode() != http.StatusNoContent {
		t.Errorf("StatusCode() = %d, want 204", resp.StatusCode())
	}
	if !strings.Contains(gotUA, "community-site") {
		t.Errorf("User-Agent = %q, should contain community-site", gotUA)
	}

	if got := metrics.Timing("http.request").Count; got != 1 {
		t.Errorf("http.request timing count = %v, want 1", got)
	}
	if !strings.Contains(buf.String(), `"request_id"`) {
		t.Errorf("debug log missing request_id:\n%s", buf.String())
	}
}

func TestNew_CustomUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	client := New(Options{UserAgent: "tester/2.0", Logger: logger.Discard(), Metrics: logger.NewMetrics()})
	if _, err := client.R().Get(server.URL); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if gotUA != "tester/2.0" {
		t.Errorf("User-Agent = %q, want tester/2.0", gotUA)
	}
}

func TestOnError_CountsFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	metrics := logger.NewMetrics()
	client := New(Options{Logger: logger.Discard(), Metrics: metrics})

	if _, err := client.R().Get(url); err == nil {
		t.Fatal("Get() against closed server returned nil error")
	}
	if metrics.Counter("http.error") != 1 {
		t.Errorf("http.error = %d, want 1", metrics.Counter("http.error"))
	}
}

func TestRequestID_Empty(t *testing.T) {
	if id := RequestID(context.Background()); id != "" {
		t.Errorf("RequestID() = %q, want empty", id)
	}
}
