package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/pfrederiksen/community-site/internal/cards"
	"github.com/pfrederiksen/community-site/internal/config"
	"github.com/pfrederiksen/community-site/internal/listing"
	"github.com/pfrederiksen/community-site/internal/logger"
	"github.com/pfrederiksen/community-site/internal/pages"
	"github.com/pfrederiksen/community-site/internal/restclient"
	"github.com/pfrederiksen/community-site/internal/schedule"
	"github.com/pfrederiksen/community-site/internal/storage"
	"github.com/pfrederiksen/community-site/internal/submit"
)

// app holds what every command is built from.
type app struct {
	cfg      config.Config
	log      *logger.Logger
	metrics  *logger.Metrics
	location *time.Location
	client   *resty.Client
	deps     pages.Deps
}

func newApp(stderr io.Writer) (*app, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	if flagVerbose {
		level = logger.LevelDebug
	}
	log := logger.New(level, stderr)
	logger.SetDefault(log)
	metrics := logger.NewMetrics()

	timeout, err := cfg.Timeout()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	client := restclient.New(restclient.Options{
		Timeout: timeout,
		Logger:  log,
		Metrics: metrics,
	})

	log.Debug("Configuration loaded", logger.Fields{
		"api":        cfg.API.BaseURL,
		"zone_id":    cfg.Identity.ZoneID,
		"timezone":   loc.String(),
		"config":     flagConfig,
		"page_dir":   cfg.Pages.Dir,
		"output_dir": cfg.Pages.OutDir,
	})

	return &app{
		cfg:      cfg,
		log:      log,
		metrics:  metrics,
		location: loc,
		client:   client,
		deps: pages.Deps{
			Submitter: submit.New(client, log).WithMetrics(metrics),
			Loader:    listing.New(client, log).WithMetrics(metrics),
			Identity:  cfg.Identity,
			Endpoints: pages.Endpoints{
				Community:   cfg.CommunityURL(),
				Discussions: cfg.DiscussionsURL(),
			},
			Scheduler:          schedule.Real{},
			Cards:              cards.Renderer{Location: loc},
			Log:                log,
			CommunityZoneField: cfg.API.CommunityZoneField,
			Location:           loc,
		},
	}, nil
}

// storage opens the page store. Commands that only talk to the API never
// create the output directory.
func (a *app) storage(withOutput bool) (*storage.Storage, error) {
	out := ""
	if withOutput {
		out = a.cfg.Pages.OutDir
	}
	store, err := storage.New(a.cfg.Pages.Dir, out)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}
	return store.WithClient(a.client), nil
}
