// Package behavior attaches reusable interactive widgets to a page: the
// navigation menu, accordions, modals and in-page smooth scrolling.
//
// Every behavior takes a page context, a selector and options, and returns a
// teardown that removes the listeners it installed. When required elements
// are missing the behavior installs nothing and returns an error wrapping
// apierr.ErrNotFoundElement together with a no-op teardown.
package behavior

import (
	"strconv"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/community-site/internal/apierr"
	"github.com/pfrederiksen/community-site/internal/page"
)

func noop() {}

func combine(teardowns []page.Teardown) page.Teardown {
	return func() {
		for _, t := range teardowns {
			t()
		}
	}
}

func setExpanded(sel *goquery.Selection, expanded bool) {
	sel.SetAttr("aria-expanded", strconv.FormatBool(expanded))
}

// contains reports whether n is inside (or is) any node of sel.
func contains(sel *goquery.Selection, target *goquery.Selection) bool {
	if target == nil || target.Length() == 0 {
		return false
	}
	n := target.Get(0)
	for _, root := range sel.Nodes {
		for cur := n; cur != nil; cur = cur.Parent {
			if cur == root {
				return true
			}
		}
	}
	return false
}

// MenuOptions configures Menu.
type MenuOptions struct {
	// Nav selects the navigation element toggled open. Defaults to "nav".
	Nav string
	// OpenClass is added to the nav while open. Defaults to "menu-open".
	OpenClass string
}

// Menu wires the toggle button matched by selector (usually ".menu-toggle")
// to the navigation element. Clicking the toggle flips the menu, clicking
// anywhere outside both closes it, and Escape closes it and returns focus to
// the toggle.
func Menu(ctx *page.Context, selector string, opts MenuOptions) (page.Teardown, error) {
	if opts.Nav == "" {
		opts.Nav = "nav"
	}
	if opts.OpenClass == "" {
		opts.OpenClass = "menu-open"
	}

	toggle := ctx.Find(selector).First()
	nav := ctx.Find(opts.Nav).First()
	if toggle.Length() == 0 {
		return noop, apierr.NewNotFoundElement(selector)
	}
	if nav.Length() == 0 {
		return noop, apierr.NewNotFoundElement(opts.Nav)
	}

	closeMenu := func() {
		nav.RemoveClass(opts.OpenClass)
		setExpanded(toggle, false)
	}

	offs := []page.Teardown{
		ctx.On(toggle, page.Click, func(*page.Event) {
			nav.ToggleClass(opts.OpenClass)
			setExpanded(toggle, nav.HasClass(opts.OpenClass))
		}),
		ctx.On(ctx.Document(), page.Click, func(ev *page.Event) {
			if !contains(nav, ev.Target) && !contains(toggle, ev.Target) {
				closeMenu()
			}
		}),
		ctx.On(ctx.Document(), page.KeyDown, func(ev *page.Event) {
			if ev.Key == "Escape" && nav.HasClass(opts.OpenClass) {
				closeMenu()
				ctx.Focus(toggle)
			}
		}),
	}
	return combine(offs), nil
}

// AccordionOptions configures Accordion.
type AccordionOptions struct {
	// Header selects the clickable header inside each container.
	// Defaults to ".accordion-header".
	Header string
	// OpenClass is toggled on the header's parent. Defaults to "open".
	OpenClass string
}

// Accordion makes each header inside every container matched by selector
// toggle its parent item open or closed.
func Accordion(ctx *page.Context, selector string, opts AccordionOptions) (page.Teardown, error) {
	if opts.Header == "" {
		opts.Header = ".accordion-header"
	}
	if opts.OpenClass == "" {
		opts.OpenClass = "open"
	}

	containers := ctx.Find(selector)
	if containers.Length() == 0 {
		return noop, apierr.NewNotFoundElement(selector)
	}

	var offs []page.Teardown
	containers.Find(opts.Header).Each(func(_ int, header *goquery.Selection) {
		item := header.Parent()
		offs = append(offs, ctx.On(header, page.Click, func(*page.Event) {
			wasOpen := item.HasClass(opts.OpenClass)
			item.ToggleClass(opts.OpenClass)
			setExpanded(header, !wasOpen)
		}))
	})
	return combine(offs), nil
}

// SmoothScrollOptions configures SmoothScroll.
type SmoothScrollOptions struct{}

// SmoothScroll makes in-page links matched by selector (usually
// `a[href^="#"]`) scroll to their target instead of navigating. A bare "#"
// and links whose target does not exist keep their default action.
func SmoothScroll(ctx *page.Context, selector string, _ SmoothScrollOptions) (page.Teardown, error) {
	links := ctx.Find(selector)
	if links.Length() == 0 {
		return noop, apierr.NewNotFoundElement(selector)
	}

	var offs []page.Teardown
	links.Each(func(_ int, link *goquery.Selection) {
		offs = append(offs, ctx.On(link, page.Click, func(ev *page.Event) {
			href := link.AttrOr("href", "")
			if href == "#" || len(href) < 2 || href[0] != '#' {
				return
			}
			target := ctx.ByID(href[1:])
			if target.Length() == 0 {
				return
			}
			ev.PreventDefault()
			ctx.ScrollTo(target)
		}))
	})
	return combine(offs), nil
}
