package pages

import (
	"context"

	"github.com/pfrederiksen/community-site/internal/page"
)

// BehaviouralFailed is shown when the API gives no reason for a failure.
const BehaviouralFailed = "Something went wrong."

// InitBehavioural wires the plain community form on the behavioural design
// page. Feedback is text only, without state styling.
func InitBehavioural(ctx context.Context, pc *page.Context, deps Deps) *Page {
	p := newPage(ctx, "behavioural", pc, deps)

	f := p.require("#community-form", "community form")
	feedback := p.require("#form-feedback", "community form")
	if f == nil || feedback == nil {
		return p
	}

	p.on(f, page.Submit, func(ev *page.Event) {
		ev.PreventDefault()
		feedback.SetText(JoinSubmitting)

		result := p.deps.Submitter.Submit(p.ctx, p.deps.Endpoints.Community,
			pc.FormData(f), p.deps.Identity.Headers())

		if result.OK {
			feedback.SetText(result.Message)
			pc.Reset(f)
			return
		}
		feedback.SetText(result.Describe(BehaviouralFailed))
	})

	return p
}
