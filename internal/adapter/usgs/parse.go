package usgs

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/quake-risk-service/internal/domain"
)

// requiredColumns must be present in the header of every feed response.
var requiredColumns = []string{"time", "place", "mag", "type"}

// RowError describes a feed row that was skipped.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// ParseCSV decodes a USGS FDSN CSV document into events. Columns are matched
// by header name, so column order and extra columns do not matter. Rows that
// fail to parse are skipped and reported in skipped; err is only set when the
// document as a whole is unusable.
func ParseCSV(r io.Reader) (events []domain.Event, skipped []RowError, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []domain.Event{}, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read csv header: %w", err)
	}

	colIdx := make(map[string]int, len(header))
	for i, h := range header {
		colIdx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := colIdx[col]; !ok {
			return nil, nil, fmt.Errorf("csv header missing column %q", col)
		}
	}

	events = []domain.Event{}
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				skipped = append(skipped, RowError{Line: line, Err: err})
				continue
			}
			return nil, nil, fmt.Errorf("read csv: %w", err)
		}

		event, err := parseRow(row, colIdx)
		if err != nil {
			skipped = append(skipped, RowError{Line: line, Err: err})
			continue
		}
		events = append(events, event)
	}

	return events, skipped, nil
}

func parseRow(row []string, colIdx map[string]int) (domain.Event, error) {
	ts, err := time.Parse(time.RFC3339Nano, get(row, colIdx, "time"))
	if err != nil {
		return domain.Event{}, fmt.Errorf("parse time: %w", err)
	}

	magnitude, err := parseOptionalFloat(get(row, colIdx, "mag"))
	if err != nil {
		return domain.Event{}, fmt.Errorf("parse mag: %w", err)
	}
	depth, err := parseOptionalFloat(get(row, colIdx, "depth"))
	if err != nil {
		return domain.Event{}, fmt.Errorf("parse depth: %w", err)
	}

	return domain.Event{
		ID:             get(row, colIdx, "id"),
		Time:           ts.UTC(),
		Place:          get(row, colIdx, "place"),
		Magnitude:      magnitude,
		MagType:        get(row, colIdx, "magType"),
		Type:           get(row, colIdx, "type"),
		LocationSource: get(row, colIdx, "locationSource"),
		Lat:            parseFloatOrZero(get(row, colIdx, "latitude")),
		Lon:            parseFloatOrZero(get(row, colIdx, "longitude")),
		Depth:          depth,
	}, nil
}

func get(row []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseOptionalFloat returns nil for an empty field.
func parseOptionalFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// parseFloatOrZero parses a string as float64, returning 0 on failure.
func parseFloatOrZero(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
