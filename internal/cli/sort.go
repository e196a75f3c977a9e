package cli

import (
	"time"

	"github.com/pfrederiksen/community-site/internal/listing"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortNewest SortOrder = "newest"
	SortOldest SortOrder = "oldest"
	SortNone   SortOrder = "none"
)

func validSortOrder(s SortOrder) bool {
	return s == SortNewest || s == SortOldest || s == SortNone
}

// sortItems orders items by key. Items whose key is missing or unparseable
// always go last, in fetch order.
func sortItems(items []listing.Item, order SortOrder, key func(listing.Item) time.Time) []listing.Item {
	if order == SortNone || key == nil {
		return items
	}
	sorted := listing.Apply(items, listing.Options{SortKey: key, Limit: listing.NoLimit}).Items
	if order == SortOldest {
		dated := 0
		for dated < len(sorted) && !key(sorted[dated]).IsZero() {
			dated++
		}
		reverse(sorted[:dated])
	}
	return sorted
}

func reverse(items []listing.Item) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
}
