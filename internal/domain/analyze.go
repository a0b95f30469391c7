package domain

// Analyze runs the full engine over already selected events: aggregation,
// top-n ranking of both metrics, and classification of assets against the
// two rankings.
func Analyze(events []Event, assets []Asset, n int) Analysis {
	return AnalyzeParallel(events, assets, n, 1)
}

// AnalyzeParallel is Analyze with aggregation spread over workers goroutines.
func AnalyzeParallel(events []Event, assets []Asset, n, workers int) Analysis {
	counts, means := AggregateParallel(events, workers)

	topOcc := TopN(counts, n)
	topMag := TopN(means, n)

	retained := 0
	for _, c := range counts {
		retained += c
	}

	return Analysis{
		TopOccurrence:  topOcc,
		TopMagnitude:   topMag,
		Assets:         Classify(KeySet(topOcc), KeySet(topMag), assets),
		EventsAnalyzed: retained,
	}
}
