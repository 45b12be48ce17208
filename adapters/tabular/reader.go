// Package tabular reads and writes the header-named trial and result tables
// exchanged with the study's CSV and Excel exports.
package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"choicelab/domain/core"
	"choicelab/internal"

	"github.com/xuri/excelize/v2"
)

// Table is a header row plus string cells, in file order
type Table struct {
	Headers []string
	Rows    [][]string
	index   map[string]int
}

// NewTable builds a table and its column index. Header names are trimmed.
func NewTable(headers []string, rows [][]string) *Table {
	t := &Table{Headers: make([]string, len(headers)), Rows: rows, index: make(map[string]int, len(headers))}
	for i, h := range headers {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		t.Headers[i] = h
		if _, dup := t.index[h]; !dup {
			t.index[h] = i
		}
	}
	return t
}

// Column returns the position of a named column
func (t *Table) Column(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Cell returns the trimmed cell at row r for column c, or "" for short rows
func (t *Table) Cell(r, c int) string {
	row := t.Rows[r]
	if c < 0 || c >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[c])
}

// Reader handles reading Excel and CSV files
type Reader struct {
	log *internal.Logger
}

// NewReader creates a reader; a nil logger uses the default logger
func NewReader(log *internal.Logger) *Reader {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &Reader{log: log}
}

// ReadFile reads a .csv or .xlsx file. Excel files are read from their first sheet.
func (r *Reader) ReadFile(path string) (*Table, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv", ".txt":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open CSV file: %w", err)
		}
		defer f.Close()
		return r.ReadCSV(f, path)
	case ".xlsx", ".xlsm":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open Excel file: %w", err)
		}
		defer f.Close()
		return r.ReadExcel(f, path)
	default:
		return nil, fmt.Errorf("%w: unsupported file type %q (want .csv or .xlsx)", core.ErrInvalidValue, ext)
	}
}

// ReadCSV reads comma-separated data; name is only used for logging
func (r *Reader) ReadCSV(src io.Reader, name string) (*Table, error) {
	start := time.Now()
	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV %s: %w: %v", name, core.ErrInvalidValue, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("CSV %s: %w: no header row", name, core.ErrInvalidValue)
	}

	t := NewTable(rows[0], rows[1:])
	r.log.Debug("[Reader] CSV %s read in %.2fms (%d columns, %d rows)",
		name, float64(time.Since(start).Nanoseconds())/1e6, len(t.Headers), len(t.Rows))
	return t, nil
}

// ReadExcel reads the first sheet of a workbook
func (r *Reader) ReadExcel(src io.Reader, name string) (*Table, error) {
	start := time.Now()
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("open Excel %s: %w: %v", name, core.ErrInvalidValue, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("Excel %s: %w: no sheets", name, core.ErrInvalidValue)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q of %s: %w: %v", sheets[0], name, core.ErrInvalidValue, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("Excel %s: %w: no header row", name, core.ErrInvalidValue)
	}

	t := NewTable(rows[0], rows[1:])
	r.log.Debug("[Reader] Excel %s sheet %q read in %.2fms (%d columns, %d rows)",
		name, sheets[0], float64(time.Since(start).Nanoseconds())/1e6, len(t.Headers), len(t.Rows))
	return t, nil
}
