package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/titanous/json5"
	"gopkg.in/yaml.v3"

	"github.com/pfrederiksen/community-site/internal/identity"
	"github.com/pfrederiksen/community-site/internal/logger"
)

// DefaultPath is the config file looked up when --config is not given.
const DefaultPath = "community-site.json5"

// Config is the site configuration.
type Config struct {
	API      API               `json:"api" yaml:"api"`
	Identity identity.Identity `json:"identity" yaml:"identity"`
	Pages    Pages             `json:"pages" yaml:"pages"`
	Server   Server            `json:"server" yaml:"server"`
	Log      Log               `json:"log" yaml:"log"`
	// Timezone names the zone API timestamps without an offset are read in.
	Timezone string `json:"timezone" yaml:"timezone"`
}

// API locates the remote API.
type API struct {
	BaseURL string `json:"base_url" yaml:"base_url"`
	// Timeout is a Go duration ("10s"). Empty means no client timeout.
	Timeout string `json:"timeout" yaml:"timeout"`
	// CommunityZoneField, when set, limits the community page to members
	// whose field equals the zone ID.
	CommunityZoneField string `json:"community_zone_field" yaml:"community_zone_field"`
}

// Pages locates page templates and rendered output. An empty Dir uses the
// templates built into the binary.
type Pages struct {
	Dir    string `json:"dir" yaml:"dir"`
	OutDir string `json:"out_dir" yaml:"out_dir"`
}

// Server configures `serve`.
type Server struct {
	Addr string `json:"addr" yaml:"addr"`
}

// Log configures the logger.
type Log struct {
	Level string `json:"level" yaml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		API: API{
			BaseURL: "https://damp-castle-86239-1b70ee448fbd.herokuapp.com/decoapi/",
		},
		Identity: identity.Identity{
			StudentNumber: "s4738601",
			ZoneID:        "b9e6a7cc",
		},
		Pages: Pages{
			OutDir: "~/.local/share/community-site",
		},
		Server:   Server{Addr: ":8080"},
		Log:      Log{Level: string(logger.LevelInfo)},
		Timezone: "Local",
	}
}

// Load reads path and path's ".local" sibling (community-site.local.json5),
// the local file taking priority, then fills anything unset from Default.
//
// An empty path tries DefaultPath and falls back to Default when neither file
// exists. A named path that does not exist is an error.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	cfg, found, err := readMerged(path)
	if err != nil {
		return Config{}, err
	}
	if !found && explicit {
		return Config{}, fmt.Errorf("reading config %s: %w", path, os.ErrNotExist)
	}

	if err := mergo.Merge(&cfg, Default()); err != nil {
		return Config{}, fmt.Errorf("applying defaults: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readMerged(path string) (Config, bool, error) {
	var out Config
	found := false

	base, err := readFile(path)
	if err != nil {
		return out, false, err
	}
	if base != nil {
		out = *base
		found = true
	}

	local, err := readFile(LocalPath(path))
	if err != nil {
		return out, false, err
	}
	if local != nil {
		if err := mergo.Merge(&out, *local, mergo.WithOverride); err != nil {
			return out, false, fmt.Errorf("merging %s: %w", LocalPath(path), err)
		}
		found = true
	}
	return out, found, nil
}

// readFile returns nil when path does not exist.
func readFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json5.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &cfg, nil
}

// LocalPath returns the override file for path: site.json5 -> site.local.json5.
func LocalPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".local" + ext
}

// Validate checks the fields the site cannot run without.
func (c Config) Validate() error {
	if err := c.Identity.Validate(); err != nil {
		return fmt.Errorf("invalid identity: %w", err)
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api.base_url %q", c.API.BaseURL)
	}
	if _, err := c.Timeout(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log.level: %w", err)
	}
	return nil
}

// Timeout parses API.Timeout. Zero means none.
func (c Config) Timeout() (time.Duration, error) {
	if c.API.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid api.timeout %q", c.API.Timeout)
	}
	return d, nil
}

// Location loads Timezone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// CommunityURL is the members collection.
func (c Config) CommunityURL() string {
	return c.endpoint("community/")
}

// DiscussionsURL is the discussion post collection.
func (c Config) DiscussionsURL() string {
	return c.endpoint("genericchat/")
}

func (c Config) endpoint(collection string) string {
	base := c.API.BaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + collection
}
