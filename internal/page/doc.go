// Package page provides a headless page context for the site's HTML pages.
//
// A Context wraps a goquery document and adds the browser state that plain
// HTML does not carry: current form values, selected files, focus, scroll
// position and event listeners. Controllers receive a Context instead of
// reaching for a global document, so any page can be driven from tests, the
// CLI or the HTTP server.
//
// Events bubble from the target up to the document root:
//
//	ctx, _ := page.LoadFile("site/join.html")
//	ctx.On(ctx.ByID("community-form"), page.Submit, func(ev *page.Event) {
//		ev.PreventDefault()
//	})
//	ctx.Dispatch(ctx.ByID("community-form"), page.NewEvent(page.Submit))
//
// A Context is not safe for concurrent use. Work that runs outside the
// caller's goroutine (timers) must go through Exclusive.
package page
