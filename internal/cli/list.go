package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/community-site/internal/filter"
	"github.com/pfrederiksen/community-site/internal/listing"
)

var (
	flagWhere  []string
	flagLimit  int
	flagSort   string
	flagMyZone bool
)

// collection describes one API collection for `list`.
type collection struct {
	dateField string
	zoneField string
	columns   []column
	endpoint  func(a *app) string
}

// column is one field shown in the text table.
type column struct {
	title string
	field string
	date  bool
}

var collections = map[string]collection{
	"community": {
		dateField: "created_at",
		zoneField: "website_code",
		columns: []column{
			{title: "Name", field: "name"},
			{title: "Email", field: "email"},
			{title: "Message", field: "message"},
			{title: "Joined", field: "created_at", date: true},
		},
		endpoint: func(a *app) string { return a.cfg.CommunityURL() },
	},
	"discussions": {
		dateField: "chat_date_time",
		zoneField: "website_code",
		columns: []column{
			{title: "Title", field: "chat_post_title"},
			{title: "Posted by", field: "person_name"},
			{title: "Zone", field: "website_code"},
			{title: "Posted", field: "chat_date_time", date: true},
		},
		endpoint: func(a *app) string { return a.cfg.DiscussionsURL() },
	},
}

func collectionNames() []string {
	names := make([]string, 0, len(collections))
	for name := range collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <collection>",
		Short: "List community members or discussions",
		Long: `Fetches a collection from the community API and prints it.

Filters (--where, repeatable, all must match):
  field=value     exact match
  field~text      case-insensitive substring
  field>=date     on or after the date
  field<=date     on or before the end of the date`,
		Example: `  community-site list discussions --mine --limit 6
  community-site list community --where "name~alex" --where "created_at>=2025-05-01" --format json`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: collectionNames(),
		RunE:      runList,
	}
	cmd.Flags().StringArrayVar(&flagWhere, "where", nil, "Filter expression (repeatable)")
	cmd.Flags().IntVar(&flagLimit, "limit", 0, "Maximum number of items (0 = all)")
	cmd.Flags().StringVar(&flagSort, "sort", string(SortNewest), "Sort order by date: newest, oldest or none")
	cmd.Flags().BoolVar(&flagMyZone, "mine", false, "Only items whose website_code is the configured zone")
	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	format, _ := outputFormat()
	name := strings.ToLower(args[0])
	coll, ok := collections[name]
	if !ok {
		return fmt.Errorf("unknown collection %q (available: %s)", args[0], strings.Join(collectionNames(), ", "))
	}
	order := SortOrder(strings.ToLower(flagSort))
	if !validSortOrder(order) {
		return fmt.Errorf("invalid sort: %s (must be 'newest', 'oldest' or 'none')", flagSort)
	}
	if flagLimit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}

	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	f, err := filter.Parse(flagWhere, a.location)
	if err != nil {
		return err
	}
	if flagMyZone {
		f.Equals[coll.zoneField] = a.cfg.Identity.ZoneID
	}

	out := a.deps.Loader.Load(cmd.Context(), coll.endpoint(a), a.cfg.Identity.Headers(), listing.Options{
		Filter: f.Matches,
		Limit:  listing.NoLimit,
	})
	if out.State == listing.Failed {
		return fmt.Errorf("fetching %s: %w", name, out.Err)
	}

	limit := flagLimit
	if limit == 0 {
		limit = listing.NoLimit
	}
	items := listing.Truncate(sortItems(out.Items, order, listing.TimeKey(coll.dateField, a.location)), limit)

	result := &ListResult{
		CheckedAt:  time.Now().UTC(),
		Collection: name,
		Filter:     f.String(),
		State:      out.State.String(),
		Total:      len(out.All),
		Count:      len(items),
		Items:      items,
	}
	return WriteList(cmd.OutOrStdout(), result, coll.columns, format, a.location, flagVerbose)
}
