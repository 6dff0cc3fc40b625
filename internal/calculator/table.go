package calculator

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/mmynk/pricediary/internal/models"
)

// FilterAndSort returns the entries matching the queries (see Filter),
// ordered by product name in Bulgarian collation and then newest first.
//
// The input slice is not modified.
func FilterAndSort(entries []*models.PriceEntry, productQuery, storeQuery string) []*models.PriceEntry {
	out := Filter(entries, productQuery, storeQuery)
	SortByProduct(out)
	return out
}

// Filter returns the entries whose product name and store contain the given
// queries, case-insensitively. An empty query matches everything. The
// relative order of entries is kept.
func Filter(entries []*models.PriceEntry, productQuery, storeQuery string) []*models.PriceEntry {
	productQ := strings.ToLower(strings.TrimSpace(productQuery))
	storeQ := strings.ToLower(strings.TrimSpace(storeQuery))

	out := make([]*models.PriceEntry, 0, len(entries))
	for _, e := range entries {
		if productQ != "" && !strings.Contains(strings.ToLower(e.ProductName), productQ) {
			continue
		}
		if storeQ != "" && !strings.Contains(strings.ToLower(e.Store), storeQ) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// SortByProduct orders entries in place by product name, ignoring case and
// accents, and then newest first.
func SortByProduct(entries []*models.PriceEntry) {
	// Collators keep internal buffers and are not safe for concurrent use.
	c := collate.New(language.Bulgarian, collate.IgnoreCase, collate.IgnoreDiacritics, collate.IgnoreWidth)
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := strings.TrimSpace(entries[i].ProductName), strings.TrimSpace(entries[j].ProductName)
		if cmp := c.CompareString(a, b); cmp != 0 {
			return cmp < 0
		}
		return entries[i].Date.After(entries[j].Date)
	})
}
