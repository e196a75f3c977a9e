package behavior

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/community-site/internal/apierr"
	"github.com/pfrederiksen/community-site/internal/page"
)

// ModalOptions configures a modal dialog. OpenButton is required; the rest
// are optional and skipped when absent from the page.
type ModalOptions struct {
	OpenButton   string
	CloseButton  string
	CancelButton string
	// Form is reset on close.
	Form string
	// Feedback is emptied on close and its class set to FeedbackClass.
	Feedback      string
	FeedbackClass string
	// ActiveClass marks the modal as shown. Defaults to "active".
	ActiveClass string
}

// Modal is an attached modal dialog.
type Modal struct {
	ctx      *page.Context
	el       *goquery.Selection
	form     *goquery.Selection
	feedback *goquery.Selection
	opts     ModalOptions
	teardown page.Teardown
}

// NewModal attaches modal behavior to the element matched by selector.
// Opening adds the active class and locks body scrolling. The close and
// cancel buttons and a click on the backdrop itself close it.
func NewModal(ctx *page.Context, selector string, opts ModalOptions) (*Modal, error) {
	if opts.ActiveClass == "" {
		opts.ActiveClass = "active"
	}
	if opts.FeedbackClass == "" {
		opts.FeedbackClass = "form-feedback"
	}

	el := ctx.Find(selector).First()
	if el.Length() == 0 {
		return nil, apierr.NewNotFoundElement(selector)
	}
	open := ctx.Find(opts.OpenButton).First()
	if opts.OpenButton == "" || open.Length() == 0 {
		return nil, apierr.NewNotFoundElement(opts.OpenButton)
	}

	m := &Modal{ctx: ctx, el: el, opts: opts}
	if opts.Form != "" {
		m.form = ctx.Find(opts.Form).First()
	}
	if opts.Feedback != "" {
		m.feedback = ctx.Find(opts.Feedback).First()
	}

	offs := []page.Teardown{
		ctx.On(open, page.Click, func(ev *page.Event) {
			ev.PreventDefault()
			m.Open()
		}),
		ctx.On(el, page.Click, func(ev *page.Event) {
			if ev.Target.Length() > 0 && ev.Target.Get(0) == el.Get(0) {
				m.Close()
			}
		}),
	}
	for _, s := range []string{opts.CloseButton, opts.CancelButton} {
		if s == "" {
			continue
		}
		if btn := ctx.Find(s).First(); btn.Length() > 0 {
			offs = append(offs, ctx.On(btn, page.Click, func(*page.Event) { m.Close() }))
		}
	}
	m.teardown = combine(offs)
	return m, nil
}

// Open shows the modal.
func (m *Modal) Open() {
	m.el.AddClass(m.opts.ActiveClass)
	page.SetStyle(m.ctx.Body(), "overflow", "hidden")
}

// Close hides the modal, unlocks scrolling, resets the form and clears feedback.
func (m *Modal) Close() {
	m.el.RemoveClass(m.opts.ActiveClass)
	page.SetStyle(m.ctx.Body(), "overflow", "auto")
	if m.form != nil && m.form.Length() > 0 {
		m.ctx.Reset(m.form)
	}
	if m.feedback != nil && m.feedback.Length() > 0 {
		m.feedback.SetText("")
		m.feedback.SetAttr("class", m.opts.FeedbackClass)
	}
}

// IsOpen reports whether the modal is shown.
func (m *Modal) IsOpen() bool {
	return m.el.HasClass(m.opts.ActiveClass)
}

// Teardown removes the modal's listeners.
func (m *Modal) Teardown() {
	m.teardown()
}
