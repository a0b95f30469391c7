// Package terminal renders risk reports as a text dashboard: two bar charts
// of the top-ranked locations and the colour-coded portfolio table.
package terminal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/couchcryptid/quake-risk-service/internal/domain"
)

const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiClear  = "\033[H\033[2J"

	barGlyph        = "█"
	defaultBarWidth = 40
)

// Options control how a Dashboard draws.
type Options struct {
	TopN     int  // N shown in the chart titles
	Color    bool // colour risk tiers and titles with ANSI codes
	Clear    bool // clear the screen before each redraw
	BarWidth int  // width of the longest bar; 0 means 40
}

// Dashboard draws reports to a writer.
type Dashboard struct {
	out    io.Writer
	opts   Options
	logger *slog.Logger
}

// NewDashboard creates a dashboard writing to out.
func NewDashboard(out io.Writer, opts Options, logger *slog.Logger) *Dashboard {
	if opts.BarWidth <= 0 {
		opts.BarWidth = defaultBarWidth
	}
	return &Dashboard{out: out, opts: opts, logger: logger}
}

// Run redraws the dashboard for every report received until the context is
// cancelled or the channel is closed.
func (d *Dashboard) Run(ctx context.Context, reports <-chan domain.Report) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case report, ok := <-reports:
			if !ok {
				return nil
			}
			if err := d.draw(report); err != nil {
				return fmt.Errorf("draw dashboard: %w", err)
			}
			d.logger.Debug("dashboard redrawn", "report_id", report.ID)
		}
	}
}

func (d *Dashboard) draw(report domain.Report) error {
	if d.opts.Clear {
		if _, err := io.WriteString(d.out, ansiClear); err != nil {
			return err
		}
	}
	return d.Render(report)
}

// Render writes one complete frame for report.
func (d *Dashboard) Render(report domain.Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Report %s  generated %s\n", report.ID, report.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Window %s to %s  events analysed %d of %d fetched\n\n",
		report.WindowStart.Format(time.DateOnly), report.WindowEnd.Format(time.DateOnly),
		report.EventsAnalyzed, report.EventsFetched)

	d.title(&b, fmt.Sprintf("Top %d Locations by Earthquake Occurrence", d.opts.TopN))
	writeBars(&b, report.TopOccurrence, d.opts.BarWidth, func(v int) float64 { return float64(v) },
		func(v int) string { return fmt.Sprintf("%d", v) })
	b.WriteString("\n")

	d.title(&b, fmt.Sprintf("Top %d Locations by Average Earthquake Magnitude", d.opts.TopN))
	writeBars(&b, report.TopMagnitude, d.opts.BarWidth, func(v float64) float64 { return v },
		func(v float64) string { return fmt.Sprintf("%.2f", v) })
	b.WriteString("\n")

	d.title(&b, "Client Portfolio Risk")
	d.writeTable(&b, report.Assets)
	b.WriteString("\nq+Enter quit  r+Enter refresh\n")

	_, err := io.WriteString(d.out, b.String())
	return err
}

func (d *Dashboard) title(b *strings.Builder, text string) {
	if d.opts.Color {
		b.WriteString(ansiBold + text + ansiReset + "\n")
		return
	}
	b.WriteString(text + "\n")
}

func writeBars[V any](b *strings.Builder, entries []domain.RankedEntry[V], width int, scalar func(V) float64, format func(V) string) {
	if len(entries) == 0 {
		b.WriteString("  (no data)\n")
		return
	}

	labelWidth := 0
	peak := 0.0
	for _, e := range entries {
		labelWidth = max(labelWidth, utf8.RuneCountInString(e.Key))
		peak = max(peak, scalar(e.Value))
	}

	for _, e := range entries {
		n := 0
		if peak > 0 {
			n = int(scalar(e.Value) / peak * float64(width))
		}
		fmt.Fprintf(b, "  %s %s %s\n", pad(e.Key, labelWidth), strings.Repeat(barGlyph, n), format(e.Value))
	}
}

var tableHeader = [4]string{"Building Name", "Location", "Full Address", "Risk"}

func (d *Dashboard) writeTable(b *strings.Builder, assets []domain.ClassifiedAsset) {
	rows := make([][4]string, len(assets))
	widths := [4]int{}
	for i, h := range tableHeader {
		widths[i] = utf8.RuneCountInString(h)
	}
	for i, ca := range assets {
		rows[i] = [4]string{ca.Asset.BuildingName, ca.Asset.Location, ca.Asset.FullAddress, tierLabel(ca.Risk)}
		for j, cell := range rows[i] {
			widths[j] = max(widths[j], utf8.RuneCountInString(cell))
		}
	}

	b.WriteString("  " + formatRow(tableHeader, widths) + "\n")
	if len(assets) == 0 {
		b.WriteString("  (no assets)\n")
		return
	}
	for i, row := range rows {
		line := formatRow(row, widths)
		if d.opts.Color {
			line = tierColor(assets[i].Risk) + line + ansiReset
		}
		b.WriteString("  " + line + "\n")
	}
}

func formatRow(cells [4]string, widths [4]int) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = pad(c, widths[i])
	}
	return strings.TrimRight(strings.Join(parts, "  "), " ")
}

func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

func tierLabel(r domain.RiskTier) string {
	switch r {
	case domain.RiskHigh:
		return "High"
	case domain.RiskMedium:
		return "Medium"
	default:
		return "Low"
	}
}

func tierColor(r domain.RiskTier) string {
	switch r {
	case domain.RiskHigh:
		return ansiRed
	case domain.RiskMedium:
		return ansiYellow
	default:
		return ansiGreen
	}
}
