package tally

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/verte-zerg/toptens/internal/model"
)

const certifiedStatus = "CERTIFIED"

var (
	// ErrInputNotFound reports an input file missing from the input directory.
	ErrInputNotFound = errors.New("input file not found")
	// ErrEmptyInput reports an input without a header row.
	ErrEmptyInput = errors.New("input has no header row")
	// ErrMissingColumn reports a header without a required column.
	ErrMissingColumn = errors.New("required column missing")
	// ErrShortRow reports a data row with fewer fields than the header scan requires.
	ErrShortRow = errors.New("data row has too few fields")
)

// ProcessFile tallies the named file inside inputDir. Files ending in .xlsx
// are read as workbooks, anything else as semicolon-delimited text.
func ProcessFile(inputDir, name string, warn io.Writer) (model.Tally, error) {
	path := filepath.Join(inputDir, name)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.Tally{}, errors.Wrapf(ErrInputNotFound, "%s not in %s", name, inputDir)
		}
		return model.Tally{}, errors.Wrap(err, "stat input")
	}
	if info.IsDir() {
		return model.Tally{}, errors.Wrapf(ErrInputNotFound, "%s in %s is a directory", name, inputDir)
	}

	if strings.EqualFold(filepath.Ext(name), ".xlsx") {
		src, err := ReadSheet(path)
		if err != nil {
			return model.Tally{}, err
		}
		return Aggregate(src, warn)
	}

	file, err := os.Open(path)
	if err != nil {
		return model.Tally{}, errors.Wrap(err, "open input")
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only input.
			_ = cerr
		}
	}()
	return Aggregate(NewTextSource(file), warn)
}

// Aggregate counts certified rows by job title and by work state. The first
// row of src is the header.
func Aggregate(src RowSource, warn io.Writer) (model.Tally, error) {
	header, err := src.Next()
	if err == io.EOF {
		return model.Tally{}, ErrEmptyInput
	}
	if err != nil {
		return model.Tally{}, err
	}
	cols, err := ScanHeader(header, warn)
	if err != nil {
		return model.Tally{}, err
	}

	t := model.NewTally()
	for {
		fields, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return model.Tally{}, err
		}
		if isBlank(fields) {
			continue
		}

		status, err := fieldAt(fields, cols.Status, src.Line())
		if err != nil {
			return model.Tally{}, err
		}
		if Normalize(status) != certifiedStatus {
			continue
		}
		title, err := fieldAt(fields, cols.JobTitle, src.Line())
		if err != nil {
			return model.Tally{}, err
		}
		states := make([]string, 0, len(cols.WorkStates))
		for _, idx := range cols.WorkStates {
			state, err := fieldAt(fields, idx, src.Line())
			if err != nil {
				return model.Tally{}, err
			}
			if state = Normalize(state); utf8.RuneCountInString(state) == 2 {
				states = append(states, state)
			}
		}

		t.Total++
		t.Occupations[Normalize(title)]++
		for _, state := range states {
			t.States[state]++
		}
	}
	return t, nil
}

// Normalize strips surrounding quotes and spaces and upper-cases the value.
func Normalize(value string) string {
	return strings.ToUpper(strings.Trim(value, "\" "))
}

func fieldAt(fields []string, idx, line int) (string, error) {
	if idx >= len(fields) {
		return "", errors.Wrapf(ErrShortRow, "line %d has %d fields, column %d required", line, len(fields), idx+1)
	}
	return fields[idx], nil
}
