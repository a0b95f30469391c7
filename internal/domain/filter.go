package domain

import (
	"slices"
	"time"
)

// DefaultExcludedSources are location sources dropped before analysis:
// the Hawaiian networks and the generalised NEIC solution.
var DefaultExcludedSources = []string{"hi", "hv", "us"}

// EventFilter selects which feed events take part in an analysis.
type EventFilter struct {
	Types           []string  // event types to keep; empty keeps every type
	ExcludedSources []string  // locationSource values to drop
	Since           time.Time // events before Since are dropped; zero keeps all
}

// DefaultEventFilter keeps earthquakes from the last window on the package
// clock, excluding DefaultExcludedSources.
func DefaultEventFilter(window time.Duration) EventFilter {
	return EarthquakeFilter(clock.Now(), window, DefaultExcludedSources)
}

// EarthquakeFilter keeps earthquakes in the window ending at now whose
// location source is not in excluded.
func EarthquakeFilter(now time.Time, window time.Duration, excluded []string) EventFilter {
	return EventFilter{
		Types:           []string{"earthquake"},
		ExcludedSources: excluded,
		Since:           now.Add(-window),
	}
}

// RecentSince returns the start of a window ending at the package clock's now.
func RecentSince(window time.Duration) time.Time {
	return clock.Now().Add(-window)
}

// SelectEvents returns the events accepted by f, in input order, as a new slice.
func SelectEvents(events []Event, f EventFilter) []Event {
	out := make([]Event, 0, len(events))
	for i := range events {
		e := &events[i]
		if len(f.Types) > 0 && !slices.Contains(f.Types, e.Type) {
			continue
		}
		if slices.Contains(f.ExcludedSources, e.LocationSource) {
			continue
		}
		if !f.Since.IsZero() && e.Time.Before(f.Since) {
			continue
		}
		out = append(out, *e)
	}
	return out
}
