// Package csvfile reads and writes the header-addressed CSV tables that the
// batch jobs exchange.
package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// ErrMissingColumn is returned when a table lacks a column a job requires.
var ErrMissingColumn = errors.New("missing column")

// Table is a CSV file held in memory: a header row plus data rows.
type Table struct {
	Header []string
	Rows   [][]string

	// Skipped counts malformed lines dropped while reading.
	Skipped int

	index map[string]int
}

// NewTable creates an empty table with the given header.
func NewTable(header ...string) *Table {
	t := &Table{Header: slices.Clone(header)}
	t.reindex()
	return t
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.Header))
	for i, h := range t.Header {
		if _, dup := t.index[h]; !dup {
			t.index[h] = i
		}
	}
}

// Has reports whether the table has a column named col.
func (t *Table) Has(col string) bool {
	_, ok := t.index[col]
	return ok
}

// Require returns ErrMissingColumn naming every absent column.
func (t *Table) Require(cols ...string) error {
	missing := t.Missing(cols...)
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
}

// Missing returns the columns from cols that the table lacks, in order.
func (t *Table) Missing(cols ...string) []string {
	var missing []string
	for _, c := range cols {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	return missing
}

// Get returns the trimmed value of col in row, or "" when the column is
// absent or the row is short.
func (t *Table) Get(row []string, col string) string {
	i, ok := t.index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// Fields returns a row as a column → value map.
func (t *Table) Fields(row []string) map[string]string {
	fields := make(map[string]string, len(t.Header))
	for _, h := range t.Header {
		fields[h] = t.Get(row, h)
	}
	return fields
}

// Append adds a data row.
func (t *Table) Append(row ...string) {
	t.Rows = append(t.Rows, row)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// RenameColumns renames header columns using the old → new mapping.
func (t *Table) RenameColumns(mapping map[string]string) {
	for i, h := range t.Header {
		if n, ok := mapping[h]; ok {
			t.Header[i] = n
		}
	}
	t.reindex()
}

type readOptions struct {
	latin1       bool
	skipBadLines bool
	trimHeader   bool
}

// Option configures Read.
type Option func(*readOptions)

// WithLatin1 decodes the input as ISO-8859-1 instead of UTF-8.
func WithLatin1() Option {
	return func(o *readOptions) { o.latin1 = true }
}

// WithSkipBadLines drops rows with more fields than the header, and rows the
// CSV parser rejects, instead of failing the read. Short rows are kept; their
// missing trailing fields read as empty.
func WithSkipBadLines() Option {
	return func(o *readOptions) { o.skipBadLines = true }
}

// WithTrimHeader strips surrounding whitespace from header names.
func WithTrimHeader() Option {
	return func(o *readOptions) { o.trimHeader = true }
}

// Read parses a CSV stream whose first row is the header.
func Read(r io.Reader, opts ...Option) (*Table, error) {
	var o readOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.latin1 {
		r = charmap.ISO8859_1.NewDecoder().Reader(r)
	}

	cr := csv.NewReader(r)
	if o.skipBadLines {
		cr.FieldsPerRecord = -1
		cr.LazyQuotes = true
	}

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("read csv: empty input")
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if o.trimHeader {
		for i := range header {
			header[i] = strings.TrimSpace(header[i])
		}
	}
	// A UTF-8 BOM survives into the first header name otherwise.
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	t := NewTable(header...)
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if o.skipBadLines && errors.As(err, &perr) {
				t.Skipped++
				continue
			}
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if o.skipBadLines && len(row) > len(header) {
			t.Skipped++
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// ReadFile opens and parses a CSV file.
func ReadFile(path string, opts ...Option) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := Read(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Write encodes the table as CSV.
func Write(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

// WriteFile writes the table to path, creating parent directories.
func WriteFile(path string, t *Table) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if err := Write(f, t); err != nil {
		_ = f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}
