// Command report runs a one-shot risk analysis over a local USGS CSV export
// and a portfolio file, without the network or the refresh loop. A fixed
// -now makes the output reproducible.
//
// Usage:
//
//	go run ./cmd/report \
//	  -events data/all_month.csv \
//	  -portfolio data/clientlocations.csv \
//	  -now 2025-02-21T12:00:00Z \
//	  -out report.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/quake-risk-service/internal/adapter/portfolio"
	"github.com/couchcryptid/quake-risk-service/internal/adapter/terminal"
	"github.com/couchcryptid/quake-risk-service/internal/adapter/usgs"
	"github.com/couchcryptid/quake-risk-service/internal/domain"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	eventsPath := fs.String("events", "", "USGS FDSN CSV export to analyse")
	portfolioPath := fs.String("portfolio", "data/clientlocations.csv", "portfolio file (.csv, .yaml or .yml)")
	nowFlag := fs.String("now", "", "analysis time in RFC 3339 (default: current time)")
	window := fs.Duration("window", 7*24*time.Hour, "only events newer than now-window are analysed")
	topN := fs.Int("top", 10, "number of locations in each ranking")
	workers := fs.Int("workers", 1, "aggregation goroutines")
	excluded := fs.String("exclude-sources", strings.Join(domain.DefaultExcludedSources, ","), "comma-separated locationSource values to drop")
	out := fs.String("out", "", "write the report as JSON to this path (- for stdout) instead of rendering the dashboard")
	color := fs.Bool("color", false, "colour the rendered dashboard")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *eventsPath == "" {
		fs.Usage()
		return fmt.Errorf("missing required flag: -events")
	}
	if *topN <= 0 {
		return fmt.Errorf("-top must be positive")
	}

	now := time.Now().UTC()
	if *nowFlag != "" {
		t, err := time.Parse(time.RFC3339, *nowFlag)
		if err != nil {
			return fmt.Errorf("parse -now: %w", err)
		}
		now = t
	}

	// Fix the package clock so the window is computed from -now.
	domain.SetClock(clockwork.NewFakeClockAt(now))
	defer domain.SetClock(nil)

	events, err := readEvents(*eventsPath)
	if err != nil {
		return err
	}
	assets, err := portfolio.NewFile(*portfolioPath).LoadAssets(context.Background())
	if err != nil {
		return err
	}

	filter := domain.DefaultEventFilter(*window)
	filter.ExcludedSources = splitList(*excluded)
	selected := domain.SelectEvents(events, filter)

	generated := domain.Now()
	report := domain.Report{
		ID:            uuid.NewSHA1(uuid.NameSpaceURL, []byte(*eventsPath+"@"+generated.Format(time.RFC3339))).String(),
		GeneratedAt:   generated,
		WindowStart:   filter.Since,
		WindowEnd:     generated,
		EventsFetched: len(events),
		Analysis:      domain.AnalyzeParallel(selected, assets, *topN, *workers),
	}
	log.Printf("events: %d read, %d analysed; assets: %d", len(events), report.EventsAnalyzed, len(assets))

	if *out == "" {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		return terminal.NewDashboard(stdout, terminal.Options{TopN: *topN, Color: *color}, logger).Render(report)
	}
	return writeJSON(*out, stdout, report)
}

func readEvents(path string) ([]domain.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open events: %w", err)
	}
	defer f.Close()

	events, skipped, err := usgs.ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for _, rowErr := range skipped {
		log.Printf("skipping malformed row: %v", rowErr)
	}
	return events, nil
}

func writeJSON(path string, stdout io.Writer, report domain.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	data = append(data, '\n')

	if path == "-" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	log.Printf("wrote %s", path)
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
