package calculator

import (
	"math"
	"testing"
	"time"

	"github.com/mmynk/pricediary/internal/models"
)

func entry(name, store string, price float64, date string) *models.PriceEntry {
	d, err := time.Parse(models.DateLayout, date)
	if err != nil {
		panic(err)
	}
	return &models.PriceEntry{
		ProductName: name,
		ProductKey:  models.ProductKey(name),
		Store:       store,
		Price:       price,
		Date:        d,
	}
}

func TestProductStats(t *testing.T) {
	tests := []struct {
		name     string
		entries  []*models.PriceEntry
		wantNil  bool
		wantMin  float64
		wantMax  float64
		wantAvg  float64
		wantLast string
	}{
		{
			name:    "no entries",
			wantNil: true,
		},
		{
			name:     "single entry",
			entries:  []*models.PriceEntry{entry("Heineken", "Fantastico", 2.50, "2024-05-01")},
			wantMin:  2.50,
			wantMax:  2.50,
			wantAvg:  2.50,
			wantLast: "2024-05-01",
		},
		{
			name: "ascending history",
			entries: []*models.PriceEntry{
				entry("Heineken", "Lidl", 2.00, "2024-04-01"),
				entry("Heineken", "Billa", 3.00, "2024-05-01"),
				entry("Heineken", "Kaufland", 2.50, "2024-06-01"),
			},
			wantMin:  2.00,
			wantMax:  3.00,
			wantAvg:  2.50,
			wantLast: "2024-06-01",
		},
		{
			name: "unsorted input",
			entries: []*models.PriceEntry{
				entry("Heineken", "Lidl", 1.80, "2024-06-01"),
				entry("Heineken", "Billa", 2.20, "2024-04-01"),
			},
			wantMin:  1.80,
			wantMax:  2.20,
			wantAvg:  2.00,
			wantLast: "2024-06-01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := ProductStats(tt.entries)
			if tt.wantNil {
				if stats != nil {
					t.Fatalf("ProductStats() = %+v, want nil", stats)
				}
				return
			}
			if stats == nil {
				t.Fatal("ProductStats() = nil")
			}
			if math.Abs(stats.Min-tt.wantMin) > 0.001 {
				t.Errorf("Min = %v, want %v", stats.Min, tt.wantMin)
			}
			if math.Abs(stats.Max-tt.wantMax) > 0.001 {
				t.Errorf("Max = %v, want %v", stats.Max, tt.wantMax)
			}
			if math.Abs(stats.Avg-tt.wantAvg) > 0.001 {
				t.Errorf("Avg = %v, want %v", stats.Avg, tt.wantAvg)
			}
			if stats.Count != len(tt.entries) {
				t.Errorf("Count = %d, want %d", stats.Count, len(tt.entries))
			}
			if got := stats.Last.Date.Format(models.DateLayout); got != tt.wantLast {
				t.Errorf("Last date = %s, want %s", got, tt.wantLast)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name    string
		entries []*models.PriceEntry
		key     string
		want    string
	}{
		{"no entries", nil, "heineken", "Heineken"},
		{"no entries cyrillic", nil, "шопска", "Шопска"},
		{"no entries empty key", nil, "", ""},
		{
			name: "most frequent",
			entries: []*models.PriceEntry{
				entry("heineken", "", 1, "2024-01-01"),
				entry("Heineken", "", 1, "2024-01-02"),
				entry("Heineken", "", 1, "2024-01-03"),
			},
			key:  "heineken",
			want: "Heineken",
		},
		{
			name: "tie keeps first seen",
			entries: []*models.PriceEntry{
				entry("HEINEKEN", "", 1, "2024-01-01"),
				entry("Heineken", "", 1, "2024-01-02"),
			},
			key:  "heineken",
			want: "HEINEKEN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DisplayName(tt.entries, tt.key); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestChartPoints(t *testing.T) {
	entries := []*models.PriceEntry{
		entry("Heineken", "", 2.00, "2024-04-01"),
		entry("Heineken", "", 2.50, "2024-05-01"),
	}

	points := ChartPoints(entries)
	if len(points) != 2 {
		t.Fatalf("len(points) = %d, want 2", len(points))
	}
	for i, p := range points {
		if !p.Date.Equal(entries[i].Date) || p.Price != entries[i].Price {
			t.Errorf("points[%d] = %+v, want date %v price %v", i, p, entries[i].Date, entries[i].Price)
		}
	}

	if EnoughForTrend(entries[:1]) {
		t.Error("EnoughForTrend() with one entry = true, want false")
	}
	if !EnoughForTrend(entries) {
		t.Error("EnoughForTrend() with two entries = false, want true")
	}
}
