package stats

import (
	"fmt"
	"io"
	"strconv"

	"github.com/verte-zerg/toptens/internal/model"
)

// RenderRuns prints recorded runs with the leading occupation and state of each.
func RenderRuns(w io.Writer, runs []model.Run, entries map[string][]model.RunEntry) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No recorded runs.")
		return err
	}
	cols := []column{
		{"ID", false}, {"Created", false}, {"Input", false},
		{"Certified", true}, {"Top Occupation", false}, {"Top State", false},
	}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			run.InputPath,
			strconv.Itoa(run.Total),
			leader(entries[run.ID], model.KindOccupation),
			leader(entries[run.ID], model.KindState),
		})
	}
	return writeTable(w, cols, rows)
}

// RenderRunEntries prints the stored rankings of a single run.
func RenderRunEntries(w io.Writer, entries []model.RunEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "Run has no entries.")
		return err
	}
	cols := []column{{"Kind", false}, {"#", true}, {"Key", false}, {"Certified", true}}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Kind, strconv.Itoa(e.Rank), e.Key, strconv.Itoa(e.Count)})
	}
	return writeTable(w, cols, rows)
}

func leader(entries []model.RunEntry, kind string) string {
	for _, e := range entries {
		if e.Kind == kind && e.Rank == 1 {
			return fmt.Sprintf("%s (%d)", e.Key, e.Count)
		}
	}
	return "-"
}
