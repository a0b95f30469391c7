package domain

import "sync"

// locationTotals accumulates one location's event count and magnitude sum.
type locationTotals struct {
	count int
	sum   float64
}

// Aggregate groups events by LocationKey of their Place and returns, per key,
// the number of events and their mean magnitude. A nil magnitude counts as
// 0.0. Events whose key is empty are skipped. Both maps always share the same
// key set; empty input yields two empty maps.
func Aggregate(events []Event) (map[string]int, map[string]float64) {
	return finish(accumulate(events))
}

// AggregateParallel computes the same result as Aggregate by splitting events
// across up to workers goroutines and merging their partial totals.
func AggregateParallel(events []Event, workers int) (map[string]int, map[string]float64) {
	if workers <= 1 || len(events) < 2*workers {
		return Aggregate(events)
	}

	chunk := (len(events) + workers - 1) / workers
	partials := make([]map[string]locationTotals, (len(events)+chunk-1)/chunk)

	var wg sync.WaitGroup
	for i := range partials {
		start := i * chunk
		end := min(start+chunk, len(events))
		wg.Add(1)
		go func() {
			defer wg.Done()
			partials[i] = accumulate(events[start:end])
		}()
	}
	wg.Wait()

	merged := make(map[string]locationTotals)
	for _, p := range partials {
		for key, t := range p {
			m := merged[key]
			m.count += t.count
			m.sum += t.sum
			merged[key] = m
		}
	}
	return finish(merged)
}

func accumulate(events []Event) map[string]locationTotals {
	totals := make(map[string]locationTotals)
	for i := range events {
		key := LocationKey(events[i].Place)
		if key == "" {
			continue
		}
		t := totals[key]
		t.count++
		if events[i].Magnitude != nil {
			t.sum += *events[i].Magnitude
		}
		totals[key] = t
	}
	return totals
}

func finish(totals map[string]locationTotals) (map[string]int, map[string]float64) {
	counts := make(map[string]int, len(totals))
	means := make(map[string]float64, len(totals))
	for key, t := range totals {
		counts[key] = t.count
		means[key] = t.sum / float64(t.count)
	}
	return counts, means
}
