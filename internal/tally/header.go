// Package tally reads certification data files and counts certified cases.
package tally

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Columns maps the header fields used for tallying to their positions.
type Columns struct {
	Status     int
	JobTitle   int
	WorkStates []int
}

// ScanHeader locates the status, job title and work state columns.
// Header names are matched case-insensitively by substring. The first status
// and job title match wins; later matches are reported to warn and ignored.
func ScanHeader(fields []string, warn io.Writer) (Columns, error) {
	if warn == nil {
		warn = io.Discard
	}
	cols := Columns{Status: -1, JobTitle: -1}
	for idx, field := range fields {
		name := strings.ToUpper(field)
		if strings.Contains(name, "STATUS") {
			if cols.Status == -1 {
				cols.Status = idx
			} else {
				warnf(warn, "duplicate status column %q at index %d; using index %d\n", field, idx, cols.Status)
			}
		}
		if strings.Contains(name, "SOC") && strings.Contains(name, "NAME") {
			if cols.JobTitle == -1 {
				cols.JobTitle = idx
			} else {
				warnf(warn, "duplicate job title column %q at index %d; using index %d\n", field, idx, cols.JobTitle)
			}
		}
		if strings.Contains(name, "WORK") && strings.Contains(name, "STATE") {
			cols.WorkStates = append(cols.WorkStates, idx)
		}
	}
	if cols.Status == -1 {
		return Columns{}, errors.Wrap(ErrMissingColumn, "no STATUS column in header")
	}
	if cols.JobTitle == -1 {
		return Columns{}, errors.Wrap(ErrMissingColumn, "no SOC NAME column in header")
	}
	return cols, nil
}

func warnf(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		// Best-effort warning output.
		_ = err
	}
}
