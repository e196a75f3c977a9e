package pages

import (
	"context"

	"github.com/pfrederiksen/community-site/internal/behavior"
	"github.com/pfrederiksen/community-site/internal/logger"
	"github.com/pfrederiksen/community-site/internal/page"
)

// InitAbout wires in-page smooth scrolling and the FAQ accordion.
func InitAbout(ctx context.Context, pc *page.Context, deps Deps) *Page {
	p := newPage(ctx, "about", pc, deps)

	off, err := behavior.SmoothScroll(pc, `a[href^="#"]`, behavior.SmoothScrollOptions{})
	if err != nil {
		p.log.Debug("No in-page links", logger.Fields{"error": err.Error()})
	}
	p.track(off)

	off, err = behavior.Accordion(pc, ".accordion", behavior.AccordionOptions{})
	if err != nil {
		p.log.Warn("Accordion not wired", logger.Fields{"error": err.Error()})
	}
	p.track(off)

	return p
}
