package domain

import (
	"time"
)

// Event is a single seismic occurrence parsed from the USGS feed.
type Event struct {
	ID             string    `json:"id"`
	Time           time.Time `json:"time"`
	Place          string    `json:"place"`
	Magnitude      *float64  `json:"mag,omitempty"` // nil when the feed has no magnitude yet
	MagType        string    `json:"mag_type,omitempty"`
	Type           string    `json:"type"` // "earthquake", "quarry blast", "explosion", ...
	LocationSource string    `json:"location_source,omitempty"`
	Lat            float64   `json:"lat"`
	Lon            float64   `json:"lon"`
	Depth          *float64  `json:"depth,omitempty"`
}

// Asset is a portfolio entry. Only Location takes part in classification;
// the other fields are carried through unchanged.
type Asset struct {
	BuildingName string `json:"building_name" yaml:"building_name"`
	Location     string `json:"location" yaml:"location"`
	FullAddress  string `json:"full_address" yaml:"full_address"`
}

// RankedEntry is one row of a top-N ranking.
type RankedEntry[V any] struct {
	Key   string `json:"key"`
	Value V      `json:"value"`
}

// ClassifiedAsset pairs an asset with its assigned risk tier.
type ClassifiedAsset struct {
	Asset Asset    `json:"asset"`
	Risk  RiskTier `json:"risk"`
}

// Analysis is the full output of one run of the engine, in render order.
type Analysis struct {
	TopOccurrence  []RankedEntry[int]     `json:"top_occurrence"`
	TopMagnitude   []RankedEntry[float64] `json:"top_magnitude"`
	Assets         []ClassifiedAsset      `json:"assets"`
	EventsAnalyzed int                    `json:"events_analyzed"`
}

// Report is an Analysis stamped with its identity and the feed window it covers.
type Report struct {
	ID            string    `json:"id"`
	GeneratedAt   time.Time `json:"generated_at"`
	WindowStart   time.Time `json:"window_start"`
	WindowEnd     time.Time `json:"window_end"`
	EventsFetched int       `json:"events_fetched"`
	Analysis
}

// TierCounts returns the number of classified assets in each risk tier.
func (a Analysis) TierCounts() map[RiskTier]int {
	counts := map[RiskTier]int{RiskLow: 0, RiskMedium: 0, RiskHigh: 0}
	for i := range a.Assets {
		counts[a.Assets[i].Risk]++
	}
	return counts
}
