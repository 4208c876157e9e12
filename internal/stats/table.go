package stats

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// column describes one table column. Right-aligned columns hold numbers.
type column struct {
	title string
	right bool
}

// writeTable prints a title line and one line per row, each cell padded to
// the widest display width in its column and separated by a single space.
func writeTable(w io.Writer, cols []column, rows [][]string) error {
	widths := make([]int, len(cols))
	for i, col := range cols {
		widths[i] = runewidth.StringWidth(col.title)
	}
	for _, row := range rows {
		for i := range cols {
			if i < len(row) {
				widths[i] = max(widths[i], runewidth.StringWidth(row[i]))
			}
		}
	}

	titles := make([]string, len(cols))
	for i, col := range cols {
		titles[i] = col.title
	}
	for _, cells := range append([][]string{titles}, rows...) {
		if _, err := fmt.Fprintln(w, tableLine(cols, widths, cells)); err != nil {
			return err
		}
	}
	return nil
}

func tableLine(cols []column, widths []int, cells []string) string {
	var b strings.Builder
	for i, col := range cols {
		if i > 0 {
			b.WriteByte(' ')
		}
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		pad := strings.Repeat(" ", max(0, widths[i]-runewidth.StringWidth(cell)))
		if col.right {
			b.WriteString(pad + cell)
		} else {
			b.WriteString(cell + pad)
		}
	}
	return b.String()
}
