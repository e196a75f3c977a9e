package pages

import (
	"context"

	"github.com/pfrederiksen/community-site/internal/logger"
	"github.com/pfrederiksen/community-site/internal/page"
	"github.com/pfrederiksen/community-site/internal/submit"
	"github.com/pfrederiksen/community-site/internal/validate"
)

// Join page messages.
const (
	JoinSubmitting            = "Submitting..."
	JoinThanks                = "Thanks for joining the community!"
	JoinFailed                = "Something went wrong. Please try again."
	JoinPhotoTooLarge         = "Photo file size must be less than 10MB. Please choose a smaller file."
	JoinPhotoTooLargeOnSubmit = "Photo file size must be less than 10MB."
)

var joinFieldLabels = []submit.Label{
	{Field: "name", Label: "Name"},
	{Field: "email", Label: "Email"},
	{Field: "photo", Label: "Photo"},
}

// InitJoin wires the community sign-up form: photo size checks on selection
// and before submit, and submission to the community endpoint.
func InitJoin(ctx context.Context, pc *page.Context, deps Deps) *Page {
	p := newPage(ctx, "join", pc, deps)

	f := p.require("#community-form", "join form")
	feedback := p.require("#form-feedback", "join form")
	if f == nil || feedback == nil {
		return p
	}
	photo := pc.ByID("photo")

	if photo.Length() > 0 {
		p.on(photo, page.Change, func(*page.Event) {
			files := pc.Files(photo)
			if len(files) == 0 {
				return
			}
			if err := validate.FileSize(files[0], validate.MaxUploadSize); err != nil {
				p.log.Warn("Photo rejected", logger.Fields{"error": err.Error()})
				setFeedback(feedback, JoinPhotoTooLarge, stateError)
				pc.ClearFiles(photo)
				return
			}
			clearFeedback(feedback)
		})
	}

	p.on(f, page.Submit, func(ev *page.Event) {
		ev.PreventDefault()

		if files := pc.Files(photo); len(files) > 0 {
			if err := validate.FileSize(files[0], validate.MaxUploadSize); err != nil {
				setFeedback(feedback, JoinPhotoTooLargeOnSubmit, stateError)
				return
			}
		}

		setFeedback(feedback, JoinSubmitting, stateLoading)
		button := f.Find(`button[type="submit"]`).First()
		page.SetDisabled(button, true)

		result := p.deps.Submitter.Submit(p.ctx, p.deps.Endpoints.Community,
			pc.FormData(f), p.deps.Identity.Headers())

		page.SetDisabled(button, false)

		if result.OK {
			msg := result.Message
			if msg == "" {
				msg = JoinThanks
			}
			setFeedback(feedback, msg, stateSuccess)
			pc.Reset(f)
			return
		}
		setFeedback(feedback, result.Describe(JoinFailed, joinFieldLabels...), stateError)
	})

	return p
}
