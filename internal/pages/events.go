package pages

import (
	"context"
	"time"

	"github.com/pfrederiksen/community-site/internal/logger"
	"github.com/pfrederiksen/community-site/internal/page"
	"github.com/pfrederiksen/community-site/internal/validate"
)

// Events page messages and timings.
const (
	EventsSubmitting   = "Submitting your event..."
	EventsSubmitted    = "Event submitted successfully!"
	EventsFileTooLarge = "File size exceeds 10MB. Please choose a smaller image."

	// EventsProcessingDelay stands in for the submission round trip.
	EventsProcessingDelay = 1500 * time.Millisecond
	// EventsResetDelay is how long the success message stays before the form resets.
	EventsResetDelay = 3 * time.Second
)

// EventsRequired lists the event form fields that must be filled in.
var EventsRequired = []string{
	"event_name", "location", "event_type", "event_date", "event_time", "description", "organiser",
}

// InitEvents wires the event submission form. Submission is simulated: after
// validation the page shows a success message and later resets the form.
func InitEvents(ctx context.Context, pc *page.Context, deps Deps) *Page {
	p := newPage(ctx, "events", pc, deps)

	f := p.require("#event-form", "event form")
	feedback := p.require("#event-form-feedback", "event form")
	if f == nil || feedback == nil {
		return p
	}

	p.on(f, page.Submit, func(ev *page.Event) {
		ev.PreventDefault()

		data := pc.FormData(f)
		if err := validate.Required(data, EventsRequired...); err != nil {
			p.log.Debug("Event form incomplete", logger.Fields{"error": err.Error()})
			setFeedback(feedback, validate.RequiredMessage, stateError)
			return
		}

		setFeedback(feedback, EventsSubmitting, stateLoading)
		p.log.Info("Event submitted", logger.Fields{"event_name": data.Get("event_name")})

		p.after(EventsProcessingDelay, func() {
			setFeedback(feedback, EventsSubmitted, stateSuccess)

			p.after(EventsResetDelay, func() {
				pc.Reset(f)
				clearFeedback(feedback)
				pc.ScrollTo(pc.Body())
			})
		})
	})

	if photo := pc.ByID("event_photo"); photo.Length() > 0 {
		p.on(photo, page.Change, func(*page.Event) {
			files := pc.Files(photo)
			if len(files) == 0 {
				return
			}
			if err := validate.FileSize(files[0], validate.MaxUploadSize); err != nil {
				pc.Alert(EventsFileTooLarge)
				pc.ClearFiles(photo)
				return
			}
			p.log.Debug("File selected", logger.Fields{
				"name": files[0].Name,
				"size": validate.FormatMB(files[0].Size()),
			})
		})
	}

	return p
}
