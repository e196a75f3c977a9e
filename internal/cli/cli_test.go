package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/pfrederiksen/community-site/internal/listing"
)

const discussionsJSON = `[
  {"chat_post_title":"Old mine","person_name":"Ann","website_code":"b9e6a7cc","chat_date_time":"2025-05-01 10:00"},
  {"chat_post_title":"Other zone","person_name":"Bob","website_code":"zzz","chat_date_time":"2025-05-03 10:00"},
  {"chat_post_title":"New mine","person_name":"Cat","website_code":"b9e6a7cc","chat_date_time":"2025-05-05 10:00"}
]`

// setup starts a fake API and writes a config file pointing at it.
func setup(t *testing.T, postReply string) (configPath, outDir string) {
	t.Helper()
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost:
			fmt.Fprint(w, postReply)
		case strings.HasSuffix(r.URL.Path, "/genericchat/"):
			fmt.Fprint(w, discussionsJSON)
		default:
			fmt.Fprint(w, `[{"name":"Alex","email":"alex@example.com","created_at":"2025-01-03 09:00"}]`)
		}
	}))
	t.Cleanup(api.Close)

	dir := t.TempDir()
	outDir = filepath.Join(dir, "out")
	configPath = filepath.Join(dir, "site.json5")
	content := fmt.Sprintf(`{
  api: { base_url: %q, timeout: "5s" },
  pages: { out_dir: %q },
  log: { level: "error" },
  timezone: "UTC",
}`, api.URL+"/decoapi/", outDir)
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return configPath, outDir
}

func run(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := Run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestList_Text(t *testing.T) {
	cfg, _ := setup(t, "")

	code, out, errOut := run("list", "discussions", "--config", cfg, "--mine")
	if code != ExitSuccess {
		t.Fatalf("exit = %d, stderr = %s", code, errOut)
	}
	newIdx, oldIdx := strings.Index(out, "New mine"), strings.Index(out, "Old mine")
	if newIdx < 0 || oldIdx < 0 || newIdx > oldIdx {
		t.Errorf("want newest first:\n%s", out)
	}
	if strings.Contains(out, "Other zone") {
		t.Errorf("--mine kept another zone:\n%s", out)
	}
	if !strings.Contains(out, "Showing 2 of 3 discussions") {
		t.Errorf("missing summary:\n%s", out)
	}
	if !strings.Contains(out, "5 May 2025") {
		t.Errorf("missing formatted date:\n%s", out)
	}
}

func TestList_JSON(t *testing.T) {
	cfg, _ := setup(t, "")

	code, out, errOut := run("list", "discussions", "--config", cfg, "--format", "json",
		"--sort", "oldest", "--limit", "2", "--where", "person_name~a")
	if code != ExitSuccess {
		t.Fatalf("exit = %d, stderr = %s", code, errOut)
	}

	var result ListResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	var titles []string
	for _, it := range result.Items {
		titles = append(titles, it.String("chat_post_title"))
	}
	if diff := cmp.Diff([]string{"Old mine", "New mine"}, titles); diff != "" {
		t.Errorf("titles mismatch (-want +got):\n%s", diff)
	}
	if result.Filter != `person_name contains "a"` || result.Total != 3 || result.Count != 2 {
		t.Errorf("result = %+v", result)
	}
}

func TestList_NoMatch(t *testing.T) {
	cfg, _ := setup(t, "")
	code, out, _ := run("list", "community", "--config", cfg, "--where", "name=Nobody")
	if code != ExitSuccess {
		t.Fatalf("exit = %d", code)
	}
	if !strings.Contains(out, `No community match (name = "Nobody"). 1 fetched.`) {
		t.Errorf("out = %q", out)
	}
}

func TestErrors(t *testing.T) {
	cfg, _ := setup(t, "")
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad format", []string{"list", "community", "--config", cfg, "--format", "xml"}, "invalid format"},
		{"unknown collection", []string{"list", "events", "--config", cfg}, "unknown collection"},
		{"bad sort", []string{"list", "community", "--config", cfg, "--sort", "random"}, "invalid sort"},
		{"bad filter", []string{"list", "community", "--config", cfg, "--where", "name"}, "invalid filter"},
		{"missing config", []string{"list", "community", "--config", filepath.Join(t.TempDir(), "x.json5")}, "loading config"},
		{"page without form", []string{"submit", "about", "--config", cfg}, "has no form"},
		{"bad field", []string{"submit", "join", "--config", cfg, "--field", "novalue"}, "invalid --field"},
		{"unknown page", []string{"render", "contact", "--config", cfg}, "contact"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := run(tt.args...)
			if code != ExitError {
				t.Errorf("exit = %d, want %d", code, ExitError)
			}
			if !strings.Contains(errOut, tt.want) {
				t.Errorf("stderr = %q, want %q", errOut, tt.want)
			}
		})
	}
}

func TestSubmit(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		args     []string
		wantCode int
		wantOut  string
	}{
		{
			name:     "accepted",
			reply:    `{"status":"success","message":"Thanks Alex"}`,
			args:     []string{"--field", "name=Alex", "--field", "email=alex@example.com"},
			wantCode: ExitSuccess,
			wantOut:  "join [success]: Thanks Alex",
		},
		{
			name:     "rejected",
			reply:    `{"status":"fail","email":["Enter a valid email."]}`,
			args:     []string{"--field", "email=nope"},
			wantCode: ExitRejected,
			wantOut:  "join [error]: Email: Enter a valid email.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, _ := setup(t, tt.reply)
			args := append([]string{"submit", "join", "--config", cfg}, tt.args...)
			code, out, errOut := run(args...)
			if code != tt.wantCode {
				t.Errorf("exit = %d, want %d (stderr %s)", code, tt.wantCode, errOut)
			}
			if !strings.Contains(out, tt.wantOut) {
				t.Errorf("out = %q, want %q", out, tt.wantOut)
			}
		})
	}
}

func TestSubmit_File(t *testing.T) {
	cfg, _ := setup(t, `{"status":"success","message":"ok"}`)
	photo := filepath.Join(t.TempDir(), "me.png")
	if err := os.WriteFile(photo, []byte("png"), 0644); err != nil {
		t.Fatal(err)
	}

	code, out, errOut := run("submit", "join", "--config", cfg, "--format", "json",
		"--field", "name=Alex", "--file", "photo="+photo)
	if code != ExitSuccess {
		t.Fatalf("exit = %d, stderr = %s", code, errOut)
	}
	var result SubmitResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatal(err)
	}
	if result.Feedback != "ok" || result.State != "success" {
		t.Errorf("result = %+v", result)
	}

	code, _, _ = run("submit", "join", "--config", cfg, "--file", "photo="+filepath.Join(t.TempDir(), "missing.png"))
	if code != ExitError {
		t.Errorf("missing file exit = %d", code)
	}
}

func TestRender(t *testing.T) {
	cfg, outDir := setup(t, "")

	code, out, errOut := run("render", "community", "--config", cfg)
	if code != ExitSuccess {
		t.Fatalf("exit = %d, stderr = %s", code, errOut)
	}
	if !strings.Contains(out, "Our Community Members") || !strings.Contains(out, "Joined: 3 January 2025") {
		t.Errorf("rendered page missing member grid:\n%s", out)
	}

	code, out, errOut = run("render", "community", "--config", cfg, "--save", "--format", "json")
	if code != ExitSuccess {
		t.Fatalf("exit = %d, stderr = %s", code, errOut)
	}
	var result RenderResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatal(err)
	}
	if result.Path != filepath.Join(outDir, "community.html") {
		t.Errorf("path = %q", result.Path)
	}
	if _, err := os.Stat(result.Path); err != nil {
		t.Errorf("saved page: %v", err)
	}
}

func TestSortItems(t *testing.T) {
	items := []listing.Item{
		{"id": "a", "at": "2025-05-02 10:00"},
		{"id": "b", "at": "bad"},
		{"id": "c", "at": "2025-05-03 10:00"},
		{"id": "d", "at": "2025-05-01 10:00"},
	}
	key := listing.TimeKey("at", time.UTC)

	tests := []struct {
		order SortOrder
		want  []string
	}{
		{SortNewest, []string{"c", "a", "d", "b"}},
		{SortOldest, []string{"d", "a", "c", "b"}},
		{SortNone, []string{"a", "b", "c", "d"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.order), func(t *testing.T) {
			in := append([]listing.Item(nil), items...)
			var got []string
			for _, it := range sortItems(in, tt.order, key) {
				got = append(got, it.String("id"))
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("sortItems(%s) mismatch (-want +got):\n%s", tt.order, diff)
			}
		})
	}
}
