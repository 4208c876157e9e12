package tally

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// Delimiter separates fields in text input.
const Delimiter = ";"

// RowSource yields input rows one at a time. Next returns io.EOF after the
// last row.
type RowSource interface {
	Next() ([]string, error)
	// Line reports the 1-based line number of the last row returned.
	Line() int
}

// TextSource reads semicolon-delimited rows from a reader. Lines have no
// length limit.
type TextSource struct {
	reader *bufio.Reader
	line   int
	done   bool
}

// NewTextSource wraps r as a semicolon-delimited row source.
func NewTextSource(r io.Reader) *TextSource {
	return &TextSource{reader: bufio.NewReaderSize(r, 64*1024)}
}

// Next implements RowSource.
func (s *TextSource) Next() ([]string, error) {
	if s.done {
		return nil, io.EOF
	}
	text, err := s.reader.ReadString('\n')
	if err != nil {
		if err != io.EOF {
			return nil, errors.Wrapf(err, "read line %d", s.line+1)
		}
		s.done = true
		if text == "" {
			return nil, io.EOF
		}
	}
	s.line++
	text = strings.TrimSuffix(strings.TrimSuffix(text, "\n"), "\r")
	return strings.Split(text, Delimiter), nil
}

// Line implements RowSource.
func (s *TextSource) Line() int {
	return s.line
}

// SheetSource yields rows of the first worksheet of an .xlsx workbook.
type SheetSource struct {
	rows  [][]string
	width int
	pos   int
}

// ReadSheet loads the first worksheet of the workbook at path.
func ReadSheet(path string) (*SheetSource, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "open workbook")
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close for read-only workbook.
			_ = cerr
		}
	}()
	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.Wrap(ErrEmptyInput, "workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "read sheet %q", sheet)
	}
	return NewSheetSource(rows), nil
}

// NewSheetSource serves already loaded spreadsheet rows. Rows shorter than
// the header are padded because spreadsheets drop trailing empty cells.
func NewSheetSource(rows [][]string) *SheetSource {
	width := 0
	if len(rows) > 0 {
		width = len(rows[0])
	}
	return &SheetSource{rows: rows, width: width}
}

// Next implements RowSource.
func (s *SheetSource) Next() ([]string, error) {
	if s.pos >= len(s.rows) {
		return nil, io.EOF
	}
	row := s.rows[s.pos]
	s.pos++
	if isBlank(row) {
		return nil, nil
	}
	if len(row) < s.width {
		padded := make([]string, s.width)
		copy(padded, row)
		row = padded
	}
	return row, nil
}

// Line implements RowSource.
func (s *SheetSource) Line() int {
	return s.pos
}

func isBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
