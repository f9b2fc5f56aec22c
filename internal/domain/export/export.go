package export

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Content type and default file name for CSV downloads.
const (
	ContentType = "text/csv"
	FileName    = "sports-day-registrations.csv"
)

// Domain errors.
var (
	ErrNoColumns      = errors.New("export has no columns")
	ErrColumnMismatch = errors.New("row width does not match column count")
)

// Document is a tabular export: a header plus rows of pre-rendered cells.
type Document struct {
	Columns []string
	Rows    [][]string
}

// Validate checks that the Document is rectangular.
// PRE: Document is populated
// POST: Returns nil if every row has len(Columns) cells
func (d *Document) Validate() error {
	if len(d.Columns) == 0 {
		return ErrNoColumns
	}
	for i, row := range d.Rows {
		if len(row) != len(d.Columns) {
			return fmt.Errorf("row %d has %d cells, want %d: %w", i, len(row), len(d.Columns), ErrColumnMismatch)
		}
	}
	return nil
}

// Encode writes the document as CSV.
// PRE: Validate passes
// POST: Header line written as-is, then one line per row with every cell
// double-quoted and embedded quotes doubled; lines joined by "\n"
// INVARIANT: Output has exactly len(Rows)+1 lines
func (d *Document) Encode(w io.Writer) error {
	if err := d.Validate(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	bw.WriteString(strings.Join(d.Columns, ","))
	for _, row := range d.Rows {
		bw.WriteByte('\n')
		for i, cell := range row {
			if i > 0 {
				bw.WriteByte(',')
			}
			bw.WriteString(Quote(cell))
		}
	}
	return bw.Flush()
}

// Bytes returns the encoded document.
func (d *Document) Bytes() ([]byte, error) {
	var sb strings.Builder
	if err := d.Encode(&sb); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}

// Quote wraps a cell in double quotes, doubling any quote inside it.
func Quote(cell string) string {
	return `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
}

// YesNo renders a boolean cell.
func YesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
