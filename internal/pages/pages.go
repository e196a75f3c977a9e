// Package pages contains the controller for each page of the site. A
// controller wires a loaded page context to its forms, lists and widgets,
// the way the page's script does on DOMContentLoaded.
//
// Controllers never fail a page: a missing element is logged as a warning and
// the feature that needs it is skipped.
package pages

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/community-site/internal/apierr"
	"github.com/pfrederiksen/community-site/internal/behavior"
	"github.com/pfrederiksen/community-site/internal/cards"
	"github.com/pfrederiksen/community-site/internal/form"
	"github.com/pfrederiksen/community-site/internal/identity"
	"github.com/pfrederiksen/community-site/internal/listing"
	"github.com/pfrederiksen/community-site/internal/logger"
	"github.com/pfrederiksen/community-site/internal/page"
	"github.com/pfrederiksen/community-site/internal/schedule"
	"github.com/pfrederiksen/community-site/internal/submit"
)

// Endpoints are the two API collections the site talks to.
type Endpoints struct {
	Community   string
	Discussions string
}

// Deps are the collaborators shared by every controller.
type Deps struct {
	Submitter *submit.Submitter
	Loader    *listing.Loader
	Identity  identity.Identity
	Endpoints Endpoints
	Scheduler schedule.Scheduler
	Cards     cards.Renderer
	Log       *logger.Logger

	// CommunityZoneField, when set, limits community members to those whose
	// field equals the zone ID.
	CommunityZoneField string
	// Location for API timestamps without a zone. Nil means Local.
	Location *time.Location
}

func (d Deps) withDefaults() Deps {
	if d.Log == nil {
		d.Log = logger.Default()
	}
	if d.Scheduler == nil {
		d.Scheduler = schedule.Real{}
	}
	if d.Submitter == nil {
		d.Submitter = submit.New(nil, d.Log)
	}
	if d.Loader == nil {
		d.Loader = listing.New(nil, d.Log)
	}
	if d.Cards.Now == nil {
		d.Cards.Now = d.Scheduler.Now
	}
	if d.Cards.Location == nil {
		d.Cards.Location = d.Location
	}
	return d
}

// Page is a page with its controller attached.
type Page struct {
	Name    string
	Context *page.Context

	ctx       context.Context
	deps      Deps
	log       *logger.Logger
	// Guarded by the page lock once timers can fire.
	teardowns []page.Teardown
	timers    []schedule.Cancel
	torndown  bool
}

// InitFunc attaches a controller to a loaded page.
type InitFunc func(ctx context.Context, pc *page.Context, deps Deps) *Page

var controllers = map[string]InitFunc{
	"join":        InitJoin,
	"connect":     InitConnect,
	"community":   InitCommunity,
	"behavioural": InitBehavioural,
	"events":      InitEvents,
	"about":       InitAbout,
}

type pageForm struct {
	form     string
	feedback string
}

// forms names the main form of each page that has one, and its feedback region.
var forms = map[string]pageForm{
	"join":        {"#community-form", "#form-feedback"},
	"connect":     {"#discussion-form", "#form-feedback"},
	"behavioural": {"#community-form", "#form-feedback"},
	"events":      {"#event-form", "#event-form-feedback"},
}

// FormSelector returns the selector of the named page's main form, or "" when
// the page has none.
func FormSelector(name string) string {
	return forms[name].form
}

// FeedbackSelector returns the selector of the region where the named page
// reports form results, or "".
func FeedbackSelector(name string) string {
	return forms[name].feedback
}

// Names lists the pages that have controllers, sorted.
func Names() []string {
	names := make([]string, 0, len(controllers))
	for name := range controllers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Init attaches the named controller to pc.
func Init(ctx context.Context, name string, pc *page.Context, deps Deps) (*Page, error) {
	fn, ok := controllers[name]
	if !ok {
		return nil, fmt.Errorf("unknown page %q (available: %v)", name, Names())
	}
	return fn(ctx, pc, deps), nil
}

func newPage(ctx context.Context, name string, pc *page.Context, deps Deps) *Page {
	deps = deps.withDefaults()
	p := &Page{
		Name:    name,
		Context: pc,
		ctx:     context.WithoutCancel(ctx),
		deps:    deps,
		log:     deps.Log.With(logger.Fields{"page": name}),
	}
	p.log.Debug("Page loaded", nil)

	off, err := behavior.Menu(pc, ".menu-toggle", behavior.MenuOptions{})
	if err != nil {
		p.log.Warn("Menu not wired", logger.Fields{"error": err.Error()})
	}
	p.track(off)
	return p
}

func (p *Page) track(off page.Teardown) {
	if off != nil {
		p.teardowns = append(p.teardowns, off)
	}
}

func (p *Page) on(sel *goquery.Selection, typ string, h page.Handler) {
	p.track(p.Context.On(sel, typ, h))
}

// after runs f on the page after d, serialised with event dispatch. Call it
// from a handler or a timer callback, where the page lock is already held.
func (p *Page) after(d time.Duration, f func()) {
	if p.torndown {
		return
	}
	p.timers = append(p.timers, p.deps.Scheduler.AfterFunc(d, func() { p.guarded(f) }))
}

// start schedules c like after schedules a single callback.
func (p *Page) start(c schedule.Continuation) {
	if p.torndown {
		return
	}
	p.timers = append(p.timers, c.Start(p.deps.Scheduler, p.guarded))
}

// guarded runs f under the page lock unless the page has been torn down.
func (p *Page) guarded(f func()) {
	p.Context.Exclusive(func() {
		if !p.torndown {
			f()
		}
	})
}

// require finds selector or logs a warning naming the feature that is skipped.
func (p *Page) require(selector, feature string) *goquery.Selection {
	sel, err := p.Context.Require(selector)
	if err != nil {
		p.log.Warn("Element not found, "+feature+" disabled", logger.Fields{"selector": selector})
		return nil
	}
	return sel.First()
}

// Teardown removes every listener and cancels pending timers. A timer that
// is already firing finds the page torn down and does nothing. It must not
// be called from inside Exclusive.
func (p *Page) Teardown() {
	p.Context.Exclusive(func() {
		if p.torndown {
			return
		}
		p.torndown = true
		for _, off := range p.teardowns {
			off()
		}
		p.teardowns = nil
		for _, cancel := range p.timers {
			cancel()
		}
		p.timers = nil
	})
}

// Fill puts data into the page's main form the way a user would: values are
// typed, files selected (with a change event, so size checks run) and the
// submit button clicked. Call it at most once per page; the returned error
// only reports a page without a form.
func (p *Page) Fill(data form.Data) error {
	selector := FormSelector(p.Name)
	if selector == "" {
		return fmt.Errorf("page %q has no form", p.Name)
	}
	pc := p.Context
	f := pc.Find(selector).First()
	if f.Length() == 0 {
		return apierr.NewNotFoundElement(selector)
	}

	pc.Exclusive(func() {
		pc.Fill(f, data)
		f.Find(`input[type="file"]`).Each(func(_ int, in *goquery.Selection) {
			if len(pc.Files(in)) > 0 {
				pc.ChangeOn(in)
			}
		})

		if button := f.Find(`button[type="submit"], button:not([type]), input[type="submit"]`).First(); button.Length() > 0 {
			pc.ClickOn(button)
			return
		}
		pc.SubmitForm(f)
	})
	return nil
}

// Feedback returns the text of the page's form feedback region and its state
// ("loading", "success", "error", or "" when unstyled).
func (p *Page) Feedback() (text, state string) {
	selector := FeedbackSelector(p.Name)
	if selector == "" {
		return "", ""
	}
	p.Context.Exclusive(func() {
		sel := p.Context.Find(selector).First()
		text = strings.TrimSpace(sel.Text())
		for _, class := range strings.Fields(sel.AttrOr("class", "")) {
			if s, ok := strings.CutPrefix(class, "feedback-"); ok {
				state = s
			}
		}
	})
	return text, state
}

const (
	feedbackBase = "form-feedback"

	stateLoading = "loading"
	stateSuccess = "success"
	stateError   = "error"
)

// setFeedback shows msg in a feedback region styled for state ("" clears styling).
func setFeedback(sel *goquery.Selection, msg, state string) {
	sel.SetText(msg)
	class := feedbackBase
	if state != "" {
		class += " feedback-" + state
	}
	sel.SetAttr("class", class)
}

func clearFeedback(sel *goquery.Selection) {
	setFeedback(sel, "", "")
}

// NoMatchPolicy decides what a list shows when the filter removes every item.
type NoMatchPolicy int

const (
	// ShowEmpty renders the empty state.
	ShowEmpty NoMatchPolicy = iota
	// ShowAll renders a notice followed by the unfiltered items.
	ShowAll
)

// listView describes how one page renders its list.
type listView struct {
	loading  string
	empty    [2]string
	failed   [2]string
	noMatch  NoMatchPolicy
	notice   func(all []listing.Item) string
	card     func(listing.Item) string
	populate func(container *goquery.Selection, cards *goquery.Selection)
}

func (v listView) showLoading(container *goquery.Selection) {
	container.SetHtml(`<p class="loading-message">` + html.EscapeString(v.loading) + `</p>`)
}

func (v listView) render(pc *page.Context, container *goquery.Selection, out listing.Outcome) {
	switch out.State {
	case listing.Failed:
		container.SetHtml(`<div class="error-state"><p class="text-danger">` + html.EscapeString(v.failed[0]) +
			`</p><p>` + html.EscapeString(v.failed[1]) + `</p></div>`)
	case listing.Empty:
		v.renderEmpty(container)
	case listing.NoMatch:
		if v.noMatch != ShowAll {
			v.renderEmpty(container)
			return
		}
		container.SetHtml(v.notice(out.All))
		container.AppendSelection(v.cardNodes(pc, listing.Truncate(out.All, listing.DefaultLimit)))
	default:
		if v.populate != nil {
			container.Empty()
			v.populate(container, v.cardNodes(pc, out.Items))
			return
		}
		listing.Render(container, out.Items, func(it listing.Item) *goquery.Selection {
			return pc.Fragment(v.card(it))
		})
	}
}

func (v listView) renderEmpty(container *goquery.Selection) {
	container.SetHtml(`<div class="empty-state"><p>` + html.EscapeString(v.empty[0]) + `</p><p>` + html.EscapeString(v.empty[1]) + `</p></div>`)
}

func (v listView) cardNodes(pc *page.Context, items []listing.Item) *goquery.Selection {
	markup := ""
	for _, it := range items {
		markup += v.card(it)
	}
	return pc.Fragment(markup)
}
