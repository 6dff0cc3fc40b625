// Package calculator derives price statistics and table views from entries.
package calculator

import (
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/mmynk/pricediary/internal/models"
)

// Stats summarizes the prices recorded for one product.
type Stats struct {
	Min   float64
	Max   float64
	Avg   float64
	Count int

	// Last is the entry with the latest observation date.
	Last *models.PriceEntry
}

// Point is one (date, price) pair of a price chart.
type Point struct {
	Date  time.Time
	Price float64
}

// ProductStats computes min, max and average price and the latest entry.
// It returns nil for an empty slice.
func ProductStats(entries []*models.PriceEntry) *Stats {
	if len(entries) == 0 {
		return nil
	}

	first := entries[0]
	stats := &Stats{
		Min:   first.Price,
		Max:   first.Price,
		Count: len(entries),
		Last:  first,
	}

	var sum float64
	for _, e := range entries {
		sum += e.Price
		if e.Price < stats.Min {
			stats.Min = e.Price
		}
		if e.Price > stats.Max {
			stats.Max = e.Price
		}
		// strictly later, so the first of equal dates is kept
		if e.Date.After(stats.Last.Date) {
			stats.Last = e
		}
	}
	stats.Avg = sum / float64(len(entries))

	return stats
}

// DisplayName picks the most frequent product name among entries. On a tie
// the name seen first wins. Without entries the capitalized key is used.
func DisplayName(entries []*models.PriceEntry, productKey string) string {
	if len(entries) == 0 {
		return capitalize(productKey)
	}

	counts := make(map[string]int)
	var order []string
	for _, e := range entries {
		if _, seen := counts[e.ProductName]; !seen {
			order = append(order, e.ProductName)
		}
		counts[e.ProductName]++
	}

	best, bestCount := "", 0
	for _, name := range order {
		if counts[name] > bestCount {
			best, bestCount = name, counts[name]
		}
	}

	if best == "" {
		return productKey
	}
	return best
}

// ChartPoints maps entries to chart points, keeping their order.
func ChartPoints(entries []*models.PriceEntry) []Point {
	points := make([]Point, len(entries))
	for i, e := range entries {
		points[i] = Point{Date: e.Date, Price: e.Price}
	}
	return points
}

// EnoughForTrend reports whether a price chart has something to show.
func EnoughForTrend(entries []*models.PriceEntry) bool {
	return len(entries) >= 2
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
