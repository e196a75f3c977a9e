package pages

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/community-site/internal/behavior"
	"github.com/pfrederiksen/community-site/internal/filter"
	"github.com/pfrederiksen/community-site/internal/listing"
	"github.com/pfrederiksen/community-site/internal/logger"
	"github.com/pfrederiksen/community-site/internal/page"
	"github.com/pfrederiksen/community-site/internal/schedule"
	"github.com/pfrederiksen/community-site/internal/submit"
)

// Connect page messages.
const (
	ConnectPosting = "Posting your discussion..."
	ConnectPosted  = "Discussion posted successfully!"
	ConnectFailed  = "Something went wrong. Please try again."

	// ConnectCloseDelay is how long the success message stays up before the
	// modal closes and the list reloads.
	ConnectCloseDelay = 2 * time.Second
)

var discussionFieldLabels = []submit.Label{
	{Field: "chat_post_title", Label: "Title"},
	{Field: "chat_post_content", Label: "Content"},
	{Field: "person_name", Label: "Name"},
}

// Connect is the discussion board page.
type Connect struct {
	*Page
	list  *goquery.Selection
	view  listView
	modal *behavior.Modal
}

// InitConnect loads the discussion list and wires the "start a discussion"
// modal form.
func InitConnect(ctx context.Context, pc *page.Context, deps Deps) *Page {
	return NewConnect(ctx, pc, deps).Page
}

// NewConnect is InitConnect returning the concrete controller.
func NewConnect(ctx context.Context, pc *page.Context, deps Deps) *Connect {
	c := &Connect{Page: newPage(ctx, "connect", pc, deps)}
	zone := c.deps.Identity.ZoneID

	c.view = listView{
		loading: "Loading discussions...",
		empty:   [2]string{"No discussions yet.", "Be the first to start a conversation!"},
		failed:  [2]string{"Unable to load discussions at this time.", "Please try refreshing the page or check back later."},
		noMatch: ShowAll,
		notice: func(all []listing.Item) string {
			return fmt.Sprintf(`<div class="empty-state"><p>⚠️ Debug Mode: No posts match your zone_id (%s)</p>`+
				`<p>Total posts in database: %d</p><p>Showing all posts below for debugging...</p></div>`,
				html.EscapeString(zone), len(all))
		},
		card: c.deps.Cards.Discussion,
	}

	c.list = c.require("#discussion-list", "discussion list")
	c.Reload()
	c.initForm()
	return c
}

// Reload fetches the discussions again and re-renders the list.
func (c *Connect) Reload() listing.Outcome {
	if c.list == nil {
		return listing.Outcome{}
	}
	c.view.showLoading(c.list)
	out := c.deps.Loader.Load(c.ctx, c.deps.Endpoints.Discussions, c.deps.Identity.Headers(), listing.Options{
		Filter:  filter.Zone("website_code", c.deps.Identity.ZoneID).Matches,
		SortKey: listing.TimeKey("chat_date_time", c.deps.Location),
		Limit:   listing.DefaultLimit,
	})
	c.view.render(c.Context, c.list, out)
	return out
}

// Modal returns the discussion modal, or nil when the page has none.
func (c *Connect) Modal() *behavior.Modal {
	return c.modal
}

func (c *Connect) initForm() {
	pc := c.Context
	f := pc.ByID("discussion-form")
	feedback := pc.ByID("form-feedback")
	if f.Length() == 0 || feedback.Length() == 0 || pc.ByID("discussion-modal").Length() == 0 ||
		pc.ByID("start-discussion-btn").Length() == 0 {
		c.log.Warn("Discussion form elements not found, posting disabled", nil)
		return
	}

	modal, err := behavior.NewModal(pc, "#discussion-modal", behavior.ModalOptions{
		OpenButton:   "#start-discussion-btn",
		CloseButton:  "#close-modal",
		CancelButton: "#cancel-btn",
		Form:         "#discussion-form",
		Feedback:     "#form-feedback",
	})
	if err != nil {
		c.log.Warn("Discussion modal not wired", logger.Fields{"error": err.Error()})
		return
	}
	c.modal = modal
	c.track(modal.Teardown)

	c.on(f, page.Submit, func(ev *page.Event) {
		ev.PreventDefault()
		setFeedback(feedback, ConnectPosting, stateLoading)

		result := c.deps.Submitter.Submit(c.ctx, c.deps.Endpoints.Discussions,
			pc.FormData(f), c.deps.Identity.Headers())

		if !result.OK {
			setFeedback(feedback, result.Describe(ConnectFailed, discussionFieldLabels...), stateError)
			return
		}

		setFeedback(feedback, ConnectPosted, stateSuccess)
		c.start(schedule.Continuation{
			Delay: ConnectCloseDelay,
			First: modal.Close,
			Then:  func() { c.Reload() },
		})
	})
}
