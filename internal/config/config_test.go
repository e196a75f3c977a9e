package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_ExplicitMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json5"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load() error = %v, want ErrNotExist", err)
	}
}

func TestLoad_JSON5WithLocalOverride(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "site.json5", `{
  // shared settings
  api: { base_url: "https://api.example.com/decoapi", timeout: "5s" },
  identity: { student_number: "s1111111", zone_id: "zone-a" },
  server: { addr: ":9000" },
}`)
	writeFile(t, dir, "site.local.json5", `{
  identity: { zone_id: "zone-local" },
  log: { level: "debug" },
}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := Default()
	want.API.BaseURL = "https://api.example.com/decoapi"
	want.API.Timeout = "5s"
	want.Identity.StudentNumber = "s1111111"
	want.Identity.ZoneID = "zone-local"
	want.Server.Addr = ":9000"
	want.Log.Level = "debug"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}

	if got := cfg.CommunityURL(); got != "https://api.example.com/decoapi/community/" {
		t.Errorf("CommunityURL() = %q", got)
	}
	if got := cfg.DiscussionsURL(); got != "https://api.example.com/decoapi/genericchat/" {
		t.Errorf("DiscussionsURL() = %q", got)
	}
	if d, _ := cfg.Timeout(); d != 5*time.Second {
		t.Errorf("Timeout() = %v", d)
	}
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "site.yaml", `
api:
  community_zone_field: website_code
pages:
  dir: templates
timezone: Australia/Brisbane
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.API.CommunityZoneField != "website_code" || cfg.Pages.Dir != "templates" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.API.BaseURL != Default().API.BaseURL {
		t.Errorf("BaseURL default not applied: %q", cfg.API.BaseURL)
	}
	loc, err := cfg.Location()
	if err != nil || loc.String() != "Australia/Brisbane" {
		t.Errorf("Location() = %v, %v", loc, err)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", `{ api: `},
		{"bad url", `{ api: { base_url: "not a url" } }`},
		{"bad timeout", `{ api: { timeout: "soon" } }`},
		{"bad level", `{ log: { level: "loud" } }`},
		{"bad timezone", `{ timezone: "Mars/Olympus" }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "site.json5", tt.content)
			if _, err := Load(path); err == nil {
				t.Error("Load() should fail")
			}
		})
	}
}

func TestLocalPath(t *testing.T) {
	tests := map[string]string{
		"community-site.json5": "community-site.local.json5",
		"conf/site.yaml":       "conf/site.local.yaml",
		"site":                 "site.local",
	}
	for in, want := range tests {
		if got := LocalPath(in); got != want {
			t.Errorf("LocalPath(%q) = %q, want %q", in, got, want)
		}
	}
}
