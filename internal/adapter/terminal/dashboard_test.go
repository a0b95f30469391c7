package terminal

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/quake-risk-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleReport() domain.Report {
	return domain.Report{
		ID:            "report-1",
		GeneratedAt:   time.Date(2025, 2, 21, 12, 0, 0, 0, time.UTC),
		WindowStart:   time.Date(2025, 2, 14, 12, 0, 0, 0, time.UTC),
		WindowEnd:     time.Date(2025, 2, 21, 12, 0, 0, 0, time.UTC),
		EventsFetched: 40,
		Analysis: domain.Analysis{
			TopOccurrence: []domain.RankedEntry[int]{
				{Key: "Alaska", Value: 10},
				{Key: "California", Value: 5},
				{Key: "Nevada", Value: 1},
			},
			TopMagnitude: []domain.RankedEntry[float64]{
				{Key: "Texas", Value: 4.5},
				{Key: "Alaska", Value: 2.25},
			},
			Assets: []domain.ClassifiedAsset{
				{Asset: domain.Asset{BuildingName: "Anchorage HQ", Location: "Anchorage, Alaska", FullAddress: "1 Main St"}, Risk: domain.RiskHigh},
				{Asset: domain.Asset{BuildingName: "Houston Depot", Location: "Houston, Texas", FullAddress: "2 Travis St"}, Risk: domain.RiskMedium},
				{Asset: domain.Asset{BuildingName: "Denver Office", Location: "Denver, Colorado", FullAddress: "3 Colfax Ave"}, Risk: domain.RiskLow},
			},
			EventsAnalyzed: 16,
		},
	}
}

func render(t *testing.T, opts Options, report domain.Report) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, NewDashboard(&buf, opts, discardLogger()).Render(report))
	return buf.String()
}

func assertInOrder(t *testing.T, s string, parts ...string) {
	t.Helper()
	prev := -1
	for _, p := range parts {
		idx := strings.Index(s[prev+1:], p)
		require.GreaterOrEqual(t, idx, 0, "missing or out of order: %q", p)
		prev += idx + 1
	}
}

func TestRender_SectionsAndRankingOrder(t *testing.T) {
	out := render(t, Options{TopN: 10}, sampleReport())

	assertInOrder(t, out,
		"Top 10 Locations by Earthquake Occurrence",
		"Alaska", "California", "Nevada",
		"Top 10 Locations by Average Earthquake Magnitude",
		"Texas", "4.50", "Alaska", "2.25",
		"Building Name", "Location", "Full Address", "Risk",
		"Anchorage HQ", "High",
		"Houston Depot", "Medium",
		"Denver Office", "Low",
	)
	assert.Contains(t, out, "events analysed 16 of 40 fetched")
	assert.Contains(t, out, "Window 2025-02-14 to 2025-02-21")
	assert.NotContains(t, out, "\033[")
}

func TestRender_BarsScaleToPeak(t *testing.T) {
	out := render(t, Options{TopN: 3, BarWidth: 10}, sampleReport())

	lines := strings.Split(out, "\n")
	find := func(prefix string) string {
		for _, l := range lines {
			if strings.HasPrefix(strings.TrimSpace(l), prefix) {
				return l
			}
		}
		t.Fatalf("no line starting with %q", prefix)
		return ""
	}

	assert.Equal(t, 10, strings.Count(find("Alaska"), barGlyph))
	assert.Equal(t, 5, strings.Count(find("California"), barGlyph))
	assert.Equal(t, 1, strings.Count(find("Nevada"), barGlyph))
	assert.Equal(t, 10, strings.Count(find("Texas"), barGlyph))
}

func TestRender_ColoursRowsByTier(t *testing.T) {
	out := render(t, Options{TopN: 10, Color: true}, sampleReport())

	tests := []struct {
		building string
		color    string
	}{
		{"Anchorage HQ", ansiRed},
		{"Houston Depot", ansiYellow},
		{"Denver Office", ansiGreen},
	}
	for _, tt := range tests {
		t.Run(tt.building, func(t *testing.T) {
			assert.Contains(t, out, "  "+tt.color+tt.building)
		})
	}
	assert.Contains(t, out, ansiBold+"Top 10 Locations by Earthquake Occurrence"+ansiReset)
}

func TestRender_EmptyReport(t *testing.T) {
	out := render(t, Options{TopN: 10}, domain.Report{})

	assert.Equal(t, 2, strings.Count(out, "(no data)"))
	assert.Contains(t, out, "(no assets)")
	assert.Contains(t, out, "Building Name")
}

func TestRun_RedrawsEachReport(t *testing.T) {
	var buf bytes.Buffer
	d := NewDashboard(&buf, Options{TopN: 10, Clear: true}, discardLogger())

	reports := make(chan domain.Report, 2)
	first := sampleReport()
	second := sampleReport()
	second.ID = "report-2"
	reports <- first
	reports <- second
	close(reports)

	require.NoError(t, d.Run(context.Background(), reports))

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, ansiClear))
	assertInOrder(t, out, "Report report-1", "Report report-2")
}

func TestRun_StopsOnCancel(t *testing.T) {
	d := NewDashboard(io.Discard, Options{}, discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, d.Run(ctx, make(chan domain.Report)))
}
