package portfolio

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/quake-risk-service/internal/domain"
	"gopkg.in/yaml.v3"
)

// File loads the client portfolio from a CSV or YAML file on every call, so
// edits are picked up on the next refresh. It implements pipeline.AssetSource.
type File struct {
	path string
}

// NewFile returns a loader for path. The format is chosen by extension:
// .yaml and .yml are YAML, anything else is CSV.
func NewFile(path string) *File {
	return &File{path: path}
}

// LoadAssets reads and decodes the portfolio file.
func (f *File) LoadAssets(_ context.Context) ([]domain.Asset, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("open portfolio: %w", err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(f.path)) {
	case ".yaml", ".yml":
		return DecodeYAML(file)
	default:
		return DecodeCSV(file)
	}
}

// DecodeCSV reads assets from CSV with the header
// BuildingName,Location,FullAddress (any column order).
func DecodeCSV(r io.Reader) ([]domain.Asset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []domain.Asset{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read portfolio header: %w", err)
	}

	colIdx := make(map[string]int, len(header))
	for i, h := range header {
		colIdx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, col := range []string{"BuildingName", "Location", "FullAddress"} {
		if _, ok := colIdx[col]; !ok {
			return nil, fmt.Errorf("portfolio header missing column %q", col)
		}
	}

	assets := []domain.Asset{}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read portfolio: %w", err)
		}
		assets = append(assets, domain.Asset{
			BuildingName: get(row, colIdx, "BuildingName"),
			Location:     get(row, colIdx, "Location"),
			FullAddress:  get(row, colIdx, "FullAddress"),
		})
	}
	return assets, nil
}

// DecodeYAML reads assets from a YAML sequence of
// {building_name, location, full_address} mappings.
func DecodeYAML(r io.Reader) ([]domain.Asset, error) {
	var assets []domain.Asset
	if err := yaml.NewDecoder(r).Decode(&assets); err != nil {
		if errors.Is(err, io.EOF) {
			return []domain.Asset{}, nil
		}
		return nil, fmt.Errorf("decode portfolio yaml: %w", err)
	}
	if assets == nil {
		assets = []domain.Asset{}
	}
	return assets, nil
}

func get(row []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
