package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/quake-risk-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	eventsFixture    = "../../internal/adapter/usgs/testdata/events.csv"
	portfolioFixture = "../../internal/adapter/portfolio/testdata/clientlocations.csv"
	fixedNow         = "2025-02-21T12:00:00Z"
)

func TestRun_JSONToStdout(t *testing.T) {
	var stdout bytes.Buffer
	err := run([]string{
		"-events", eventsFixture,
		"-portfolio", portfolioFixture,
		"-now", fixedNow,
		"-top", "1",
		"-out", "-",
	}, &stdout)
	require.NoError(t, err)

	var report domain.Report
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &report))

	assert.Equal(t, time.Date(2025, 2, 21, 12, 0, 0, 0, time.UTC), report.GeneratedAt)
	assert.Equal(t, time.Date(2025, 2, 14, 12, 0, 0, 0, time.UTC), report.WindowStart)
	assert.Equal(t, 6, report.EventsFetched)
	assert.Equal(t, 3, report.EventsAnalyzed)
	assert.Equal(t, []domain.RankedEntry[int]{{Key: "Alaska", Value: 2}}, report.TopOccurrence)
	assert.Equal(t, []domain.RankedEntry[float64]{{Key: "Alaska", Value: 3.0}}, report.TopMagnitude)

	risks := make(map[string]domain.RiskTier, len(report.Assets))
	for _, ca := range report.Assets {
		risks[ca.Asset.BuildingName] = ca.Risk
	}
	assert.Equal(t, map[string]domain.RiskTier{
		"West Anchorage High School": domain.RiskHigh,
		"Golden Gate Offices":        domain.RiskLow,
		"Houston Logistics Hub":      domain.RiskLow,
		"Unmapped Warehouse":         domain.RiskLow,
	}, risks)
}

func TestRun_ReproducibleID(t *testing.T) {
	args := []string{"-events", eventsFixture, "-portfolio", portfolioFixture, "-now", fixedNow, "-out", "-"}

	var first, second bytes.Buffer
	require.NoError(t, run(args, &first))
	require.NoError(t, run(args, &second))
	assert.Equal(t, first.String(), second.String())
}

func TestRun_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, run([]string{
		"-events", eventsFixture, "-portfolio", portfolioFixture, "-now", fixedNow, "-out", path,
	}, &bytes.Buffer{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var report domain.Report
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Len(t, report.Assets, 4)
}

func TestRun_RendersDashboard(t *testing.T) {
	var stdout bytes.Buffer
	require.NoError(t, run([]string{
		"-events", eventsFixture, "-portfolio", portfolioFixture, "-now", fixedNow,
	}, &stdout))

	out := stdout.String()
	assert.Contains(t, out, "Top 10 Locations by Earthquake Occurrence")
	assert.Contains(t, out, "West Anchorage High School")
	assert.Contains(t, out, "High")
	assert.NotContains(t, out, "\033[")
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing events", []string{"-portfolio", portfolioFixture}},
		{"bad now", []string{"-events", eventsFixture, "-now", "yesterday"}},
		{"bad top", []string{"-events", eventsFixture, "-top", "0"}},
		{"missing events file", []string{"-events", "testdata/nope.csv", "-portfolio", portfolioFixture}},
		{"missing portfolio", []string{"-events", eventsFixture, "-portfolio", "testdata/nope.csv"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, run(tt.args, &bytes.Buffer{}))
		})
	}
}
