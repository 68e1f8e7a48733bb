package source

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fortify-index/mfi/schema"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"gopkg.in/yaml.v3"
)

// CyclePlaceholder in a file path is replaced by the requested cycle,
// so that "data/{cycle}.json" can serve several cycles.
const CyclePlaceholder = "{cycle}"

// FileSource reads raw metrics from a local .json, .yaml, .csv or .xlsx file.
type FileSource struct {
	path string
}

// NewFileSource creates a file source for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Name returns the configured path.
func (s *FileSource) Name() string { return s.path }

// Path returns the file path used for cycle.
func (s *FileSource) Path(cycle string) string {
	return strings.ReplaceAll(s.path, CyclePlaceholder, cycle)
}

// Fetch implements contract.Source.
func (s *FileSource) Fetch(ctx context.Context, cycle string) ([]schema.RawMetric, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := s.Path(cycle)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrap(err, "json: read file")
		}
		records, err := decodeRecords(data)
		if err != nil {
			return nil, eris.Wrapf(err, "json: %s", path)
		}
		return records, nil
	case ".yaml", ".yml":
		return readYAML(path)
	case ".csv":
		return readCSV(path)
	case ".xlsx":
		return readXLSX(path)
	default:
		return nil, eris.Errorf("unsupported input file type %q (want .json, .yaml, .csv, .xlsx)", filepath.Ext(path))
	}
}

func readYAML(path string) ([]schema.RawMetric, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "yaml: read file")
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, eris.Wrapf(err, "yaml: parse %s", path)
	}
	records := []schema.RawMetric{}
	if len(node.Content) == 0 {
		return records, nil
	}

	root := node.Content[0]
	if root.Kind == yaml.MappingNode {
		var envelope struct {
			Data []schema.RawMetric `yaml:"data"`
		}
		if err := root.Decode(&envelope); err != nil {
			return nil, eris.Wrapf(err, "yaml: decode %s", path)
		}
		if envelope.Data != nil {
			records = envelope.Data
		}
		return records, nil
	}
	if err := root.Decode(&records); err != nil {
		return nil, eris.Wrapf(err, "yaml: decode %s", path)
	}
	return records, nil
}

func readCSV(path string) ([]schema.RawMetric, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "csv: open file")
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "csv: read %s", path)
		}
		rows = append(rows, row)
	}
	return recordsFromRows(rows)
}

func readXLSX(path string) ([]schema.RawMetric, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("xlsx: %s has no sheets", path)
	}

	sheet := f.Sheets[0]
	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}
	return recordsFromRows(rows)
}
