package models

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Dataset is the ordered, read-only pattern catalog. It is built once and
// never mutated afterwards.
type Dataset struct {
	records []Record
	byID    map[string]int
}

// NewDataset copies records into a Dataset. Ids must be unique.
func NewDataset(records []Record) (*Dataset, error) {
	ds := &Dataset{
		records: slices.Clone(records),
		byID:    make(map[string]int, len(records)),
	}
	for i, r := range ds.records {
		if prev, ok := ds.byID[r.ID]; ok {
			return nil, fmt.Errorf("duplicate pattern_id %q at entries %d and %d", r.ID, prev, i)
		}
		ds.byID[r.ID] = i
	}
	return ds, nil
}

// Len returns the number of records. A nil Dataset is empty.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// At returns the i-th record in catalog order.
func (d *Dataset) At(i int) Record {
	return d.records[i]
}

// Records returns a copy of all records in catalog order.
func (d *Dataset) Records() []Record {
	if d == nil {
		return nil
	}
	return slices.Clone(d.records)
}

// Lookup finds a record by id.
func (d *Dataset) Lookup(id string) (Record, bool) {
	if d == nil {
		return Record{}, false
	}
	i, ok := d.byID[id]
	if !ok {
		return Record{}, false
	}
	return d.records[i], true
}

// ParseDataset decodes a list of records. format is "json" or "yaml".
func ParseDataset(data []byte, format string) (*Dataset, error) {
	var records []Record
	switch format {
	case "json":
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("failed to parse JSON dataset: %w", err)
		}
	case "yaml":
		if err := yaml.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("failed to parse YAML dataset: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported dataset format %q", format)
	}
	return NewDataset(records)
}

// LoadDataset reads the catalog from path. The format is chosen by the file
// extension: .json, .yaml or .yml.
func LoadDataset(path string) (*Dataset, error) {
	format, err := formatFor(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	ds, err := ParseDataset(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

func formatFor(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json", nil
	case ".yaml", ".yml":
		return "yaml", nil
	}
	return "", fmt.Errorf("unsupported dataset file %s (want .json, .yaml or .yml)", path)
}
