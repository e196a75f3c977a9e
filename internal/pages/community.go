package pages

import (
	"context"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/community-site/internal/filter"
	"github.com/pfrederiksen/community-site/internal/listing"
	"github.com/pfrederiksen/community-site/internal/page"
)

// CommunityHeading titles the member grid.
const CommunityHeading = "Our Community Members"

// InitCommunity loads every community member into #community-list as a card grid.
func InitCommunity(ctx context.Context, pc *page.Context, deps Deps) *Page {
	p := newPage(ctx, "community", pc, deps)

	container := p.require("#community-list", "community list")
	if container == nil {
		return p
	}

	view := listView{
		loading: "Loading community members...",
		empty:   [2]string{"No community members found yet.", "Be the first to join and share your story!"},
		failed:  [2]string{"Unable to load community members at this time.", "Please try refreshing the page or check back later."},
		noMatch: ShowEmpty,
		card:    p.deps.Cards.Member,
		populate: func(container, cards *goquery.Selection) {
			container.AppendSelection(pc.Fragment(`<h3 class="community-heading">` + CommunityHeading + `</h3>` +
				`<div class="community-cards-grid"></div>`))
			container.Find(".community-cards-grid").AppendSelection(cards)
		},
	}

	opts := listing.Options{Limit: listing.NoLimit}
	if field := p.deps.CommunityZoneField; field != "" {
		opts.Filter = filter.Zone(field, p.deps.Identity.ZoneID).Matches
	}

	view.showLoading(container)
	out := p.deps.Loader.Load(p.ctx, p.deps.Endpoints.Community, p.deps.Identity.Headers(), opts)
	view.render(pc, container, out)
	return p
}
