package table

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// CSVOptions configures the CSV parser.
type CSVOptions struct {
	Delimiter  rune // default ','
	Comment    rune // comment character (0 = none)
	LazyQuotes bool
}

// ReadCSV reads a whole CSV stream. The first record is the header. A
// leading byte-order mark is stripped.
func ReadCSV(source string, r io.Reader, opts CSVOptions) (*Table, error) {
	reader := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	if opts.Comment != 0 {
		reader.Comment = opts.Comment
	}
	reader.LazyQuotes = opts.LazyQuotes
	reader.FieldsPerRecord = -1 // allow ragged rows

	records, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "table: read csv %s", source)
	}
	if len(records) == 0 {
		return nil, eris.Errorf("table: %s has no header row", source)
	}

	rows := records[1:]
	kept := rows[:0]
	for _, row := range rows {
		if isBlank(row) {
			continue
		}
		kept = append(kept, row)
	}
	return New(source, records[0], kept), nil
}

// Load reads a table from disk. Files ending in .xlsx are read as
// spreadsheets (first sheet), .tsv as tab-delimited, anything else as CSV.
func Load(path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return ReadXLSX(path, XLSXOptions{})
	case ".tsv":
		return loadCSV(path, CSVOptions{Delimiter: '\t', LazyQuotes: true})
	default:
		return loadCSV(path, CSVOptions{LazyQuotes: true})
	}
}

func loadCSV(path string, opts CSVOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "table: open %s", path)
	}
	defer f.Close() //nolint:errcheck
	return ReadCSV(path, f, opts)
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
