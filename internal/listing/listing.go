package listing

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/pfrederiksen/community-site/internal/apierr"
	"github.com/pfrederiksen/community-site/internal/logger"
	"github.com/pfrederiksen/community-site/internal/restclient"
)

// DefaultLimit is how many items survive truncation when Options.Limit is 0.
const DefaultLimit = 6

// NoLimit disables truncation.
const NoLimit = -1

// State classifies a load.
type State int

const (
	// Loaded means at least one item survived the pipeline.
	Loaded State = iota
	// Empty means the API returned no items at all.
	Empty
	// NoMatch means items were fetched but the filter removed every one.
	NoMatch
	// Failed means the request or the decode failed.
	Failed
)

func (s State) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case Empty:
		return "empty"
	case NoMatch:
		return "no-match"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Options is the transform pipeline, applied as filter, then sort, then limit.
type Options struct {
	// Filter keeps items for which it returns true. Nil keeps everything.
	Filter func(Item) bool
	// SortKey orders items newest first. Items with a zero key go last.
	// Nil keeps fetch order.
	SortKey func(Item) time.Time
	// Limit caps the result; 0 means DefaultLimit, NoLimit disables it.
	Limit int
}

// Outcome is the result of a load. All holds every fetched item in fetch order
// so callers can fall back when State is NoMatch.
type Outcome struct {
	State State
	Items []Item
	All   []Item
	Err   error
}

// Loader fetches collections from the community API.
type Loader struct {
	client  *resty.Client
	log     *logger.Logger
	metrics *logger.Metrics
}

// New creates a Loader. A nil client gets an instrumented default; a nil
// logger uses the package logger.
func New(client *resty.Client, log *logger.Logger) *Loader {
	if log == nil {
		log = logger.Default()
	}
	if client == nil {
		client = restclient.New(restclient.Options{Logger: log})
	}
	return &Loader{
		client:  client,
		log:     log,
		metrics: logger.DefaultMetrics(),
	}
}

// WithMetrics replaces the metrics tracker.
func (l *Loader) WithMetrics(m *logger.Metrics) *Loader {
	l.metrics = m
	return l
}

// Load GETs endpoint with headers attached and runs the pipeline in opts.
// Failures are reported in the Outcome, never returned.
func (l *Loader) Load(ctx context.Context, endpoint string, headers map[string]string, opts Options) Outcome {
	start := time.Now()
	out := l.load(ctx, endpoint, headers, opts)
	l.metrics.RecordTiming("list.load", time.Since(start))
	l.metrics.IncrCounter("list.load." + out.State.String())
	l.metrics.SetGauge("list.items", float64(len(out.Items)))

	fields := logger.Fields{
		"endpoint": endpoint,
		"state":    out.State.String(),
		"fetched":  len(out.All),
		"shown":    len(out.Items),
	}
	switch out.State {
	case Failed:
		l.log.Error("Loading list failed", fields, out.Err)
	case NoMatch:
		l.log.Warn("No items matched filter", fields)
	default:
		l.log.Info("List loaded", fields)
	}
	return out
}

func (l *Loader) load(ctx context.Context, endpoint string, headers map[string]string, opts Options) Outcome {
	resp, err := l.client.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetHeader("Accept", "application/json").
		Get(endpoint)
	if err != nil {
		return Outcome{State: Failed, Err: apierr.NewTransportError("GET "+endpoint, err)}
	}
	if !resp.IsSuccess() {
		return Outcome{State: Failed, Err: apierr.NewAPIError(fmt.Sprintf("GET %s: %s", endpoint, resp.Status()))}
	}

	var items []Item
	if err := json.Unmarshal(resp.Body(), &items); err != nil {
		return Outcome{State: Failed, Err: apierr.NewDecodeError("GET "+endpoint, err)}
	}
	if len(items) == 0 {
		return Outcome{State: Empty}
	}

	return Apply(items, opts)
}

// Apply runs the filter, sort and limit stages over items.
func Apply(items []Item, opts Options) Outcome {
	all := items
	kept := make([]Item, 0, len(all))
	for _, it := range all {
		if opts.Filter == nil || opts.Filter(it) {
			kept = append(kept, it)
		}
	}
	if len(all) == 0 {
		return Outcome{State: Empty}
	}
	if len(kept) == 0 {
		return Outcome{State: NoMatch, All: all}
	}

	if opts.SortKey != nil {
		sortNewestFirst(kept, opts.SortKey)
	}

	return Outcome{State: Loaded, Items: Truncate(kept, opts.Limit), All: all}
}

// Truncate returns at most limit items; 0 means DefaultLimit, negative means all.
func Truncate(items []Item, limit int) []Item {
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < 0 || len(items) <= limit {
		return items
	}
	return items[:limit]
}

// sortNewestFirst sorts by key descending. Ties keep fetch order.
func sortNewestFirst(items []Item, key func(Item) time.Time) {
	keys := make(map[int]time.Time, len(items))
	idx := make([]int, len(items))
	for i, it := range items {
		idx[i] = i
		keys[i] = key(it)
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ka, kb := keys[idx[a]], keys[idx[b]]
		if ka.IsZero() || kb.IsZero() {
			return !ka.IsZero() && kb.IsZero()
		}
		return ka.After(kb)
	})
	sorted := make([]Item, len(items))
	for i, j := range idx {
		sorted[i] = items[j]
	}
	copy(items, sorted)
}

// Render empties container and appends one card per item. Nil cards are skipped.
func Render(container *goquery.Selection, items []Item, renderCard func(Item) *goquery.Selection) {
	container.Empty()
	for _, it := range items {
		card := renderCard(it)
		if card == nil || card.Length() == 0 {
			continue
		}
		container.AppendSelection(card)
	}
}
