package storage

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/pfrederiksen/community-site/internal/page"
	"github.com/pfrederiksen/community-site/internal/restclient"
)

//go:embed templates/*.html
var builtin embed.FS

// ErrInvalidName is returned for page names that are empty or contain a path.
var ErrInvalidName = errors.New("invalid page name")

// Storage loads page templates and saves rendered pages
type Storage struct {
	templates fs.FS
	outDir    string

	// remote, when set, is the base URL pages are fetched from.
	remote string
	client *resty.Client
}

// New creates a new Storage instance. An empty templateDir uses the built-in
// templates, and an http(s) URL fetches <url>/<page>.html from a deployed
// site. outDir is created when missing.
func New(templateDir, outDir string) (*Storage, error) {
	templates, err := Builtin()
	if err != nil {
		return nil, err
	}
	remote := ""
	switch {
	case strings.HasPrefix(templateDir, "http://") || strings.HasPrefix(templateDir, "https://"):
		remote = strings.TrimSuffix(templateDir, "/") + "/"
	case templateDir != "":
		dir, err := expandHome(templateDir)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("opening template directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("template path %s is not a directory", dir)
		}
		templates = os.DirFS(dir)
	}

	if outDir != "" {
		outDir, err = expandHome(outDir)
		if err != nil {
			return nil, err
		}
		// Create output directory if it doesn't exist
		if err := os.MkdirAll(outDir, 0755); err != nil {
			return nil, fmt.Errorf("creating output directory: %w", err)
		}
	}

	store := &Storage{templates: templates, outDir: outDir, remote: remote}
	if remote != "" {
		store.client = restclient.New(restclient.Options{})
	}
	return store, nil
}

// WithClient sets the HTTP client used for remote templates.
func (s *Storage) WithClient(client *resty.Client) *Storage {
	s.client = client
	return s
}

// Builtin returns the templates shipped with the binary.
func Builtin() (fs.FS, error) {
	sub, err := fs.Sub(builtin, "templates")
	if err != nil {
		return nil, fmt.Errorf("opening built-in templates: %w", err)
	}
	return sub, nil
}

func expandHome(dir string) (string, error) {
	if !strings.HasPrefix(dir, "~/") {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, dir[2:]), nil
}

func checkName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Names lists the available templates, sorted, without the .html suffix.
// A remote site is assumed to carry the built-in page set.
func (s *Storage) Names() ([]string, error) {
	templates := s.templates
	if s.remote != "" {
		builtin, err := Builtin()
		if err != nil {
			return nil, err
		}
		templates = builtin
	}
	matches, err := fs.Glob(templates, "*.html")
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(m, ".html"))
	}
	sort.Strings(names)
	return names, nil
}

// Load parses the template for name into a fresh page context.
func (s *Storage) Load(name string) (*page.Context, error) {
	return s.LoadContext(context.Background(), name)
}

// LoadContext is Load with a context for remote templates.
func (s *Storage) LoadContext(ctx context.Context, name string) (*page.Context, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	if s.remote != "" {
		pc, err := page.Fetch(ctx, s.client, s.remote+name+".html")
		if err != nil {
			return nil, fmt.Errorf("fetching template %s: %w", name, err)
		}
		return pc, nil
	}

	f, err := s.templates.Open(name + ".html")
	if err != nil {
		return nil, fmt.Errorf("opening template %s: %w", name, err)
	}
	defer f.Close()

	pc, err := page.Load(f)
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", name, err)
	}
	return pc, nil
}

// OutputPath returns where Save writes name.
func (s *Storage) OutputPath(name string) string {
	return filepath.Join(s.outDir, name+".html")
}

// Save writes the current markup of pc, form state included, to the output
// directory and returns the file path.
func (s *Storage) Save(name string, pc *page.Context) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	if s.outDir == "" {
		return "", fmt.Errorf("saving page %s: no output directory configured", name)
	}

	markup, err := pc.HTML()
	if err != nil {
		return "", fmt.Errorf("rendering page %s: %w", name, err)
	}

	path := s.OutputPath(name)
	if err := os.WriteFile(path, []byte(markup), 0644); err != nil {
		return "", fmt.Errorf("writing page: %w", err)
	}
	return path, nil
}
