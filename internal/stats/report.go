package stats

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"

	"github.com/verte-zerg/toptens/internal/model"
)

// Report file header rows.
const (
	OccupationHeader = "TOP_OCCUPATIONS;NUMBER_CERTIFIED_APPLICATIONS;PERCENTAGE"
	StateHeader      = "TOP_STATES;NUMBER_CERTIFIED_APPLICATIONS;PERCENTAGE"
)

// ErrNoCertified reports a percentage requested against a zero total.
var ErrNoCertified = errors.New("no certified applications")

// Report contains ranked data for rendering and writing.
type Report struct {
	Total       int
	Occupations []model.Count
	States      []model.Count
}

// BuildReport ranks both tallies.
func BuildReport(t model.Tally) Report {
	return Report{
		Total:       t.Total,
		Occupations: Rank(t.Occupations),
		States:      Rank(t.States),
	}
}

// Percentage formats 100*count/total with one decimal digit and a percent sign.
func Percentage(count, total int) (string, error) {
	if total <= 0 {
		return "", errors.Wrapf(ErrNoCertified, "percentage of %d", count)
	}
	return fmt.Sprintf("%.1f%%", 100*float64(count)/float64(total)), nil
}

// RenderReport prints the top entries of both rankings as aligned tables.
func RenderReport(w io.Writer, r Report) error {
	if r.Total == 0 {
		_, err := fmt.Fprintln(w, "No certified applications found.")
		return err
	}
	if err := renderRanking(w, "Top Occupations", "Occupation", r.Occupations, r.Total); err != nil {
		return err
	}
	return renderRanking(w, "Top States", "State", r.States, r.Total)
}

func renderRanking(w io.Writer, title, keyLabel string, ranked []model.Count, total int) error {
	if _, err := fmt.Fprintf(w, "%s (%d certified)\n", title, total); err != nil {
		return err
	}
	cols := []column{{"#", true}, {keyLabel, false}, {"Certified", true}, {"Percentage", true}}
	rows, err := rankingRows(Top(ranked, model.TopN), total)
	if err != nil {
		return err
	}
	for i := range rows {
		rows[i] = append([]string{strconv.Itoa(i + 1)}, rows[i]...)
	}
	if err := writeTable(w, cols, rows); err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, "")
	return err
}

// rankingRows builds key, count, percentage cells for each entry.
func rankingRows(ranked []model.Count, total int) ([][]string, error) {
	rows := make([][]string, 0, len(ranked))
	for _, c := range ranked {
		pct, err := Percentage(c.Count, total)
		if err != nil {
			return nil, err
		}
		rows = append(rows, []string{c.Key, strconv.Itoa(c.Count), pct})
	}
	return rows, nil
}

// WriteRanking writes a report header followed by up to model.TopN rows of
// KEY;COUNT;PP.P%.
func WriteRanking(w io.Writer, header string, ranked []model.Count, total int) error {
	rows, err := rankingRows(Top(ranked, model.TopN), total)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, header); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(bw, "%s;%s;%s\n", row[0], row[1], row[2]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteReports writes the occupation and state reports into outputDir.
// Both files are staged as temp files and swapped in only after both were
// written. When a swap fails, reports already swapped in are restored from
// their backups, so a failed run leaves existing reports untouched.
func WriteReports(outputDir, occupationName, stateName string, r Report) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return errors.Wrap(err, "create output directory")
	}
	outputs := []struct {
		name   string
		header string
		ranked []model.Count
	}{
		{occupationName, OccupationHeader, r.Occupations},
		{stateName, StateHeader, r.States},
	}

	targets := make([]*reportTarget, 0, len(outputs))
	for _, out := range outputs {
		target, err := inspectTarget(filepath.Join(outputDir, out.name))
		if err != nil {
			return errors.Wrapf(err, "write %s", out.name)
		}
		targets = append(targets, target)
	}

	staged := make([]string, 0, len(outputs))
	defer func() {
		for _, tmp := range staged {
			_ = os.Remove(tmp)
		}
	}()
	for i, out := range outputs {
		tmp, err := stageReport(outputDir, out.header, out.ranked, r.Total, targets[i].mode)
		if err != nil {
			return errors.Wrapf(err, "write %s", out.name)
		}
		staged = append(staged, tmp)
	}

	swapped := make([]*reportTarget, 0, len(targets))
	for i, target := range targets {
		if err := target.swap(staged[i]); err != nil {
			for j := len(swapped) - 1; j >= 0; j-- {
				swapped[j].restore()
			}
			return errors.Wrapf(err, "write %s", outputs[i].name)
		}
		swapped = append(swapped, target)
	}
	for _, target := range swapped {
		target.discardBackup()
	}
	return nil
}

// rename is swapped out in tests to simulate a failing filesystem.
var rename = os.Rename

// reportTarget is a report path and the state it had before the write.
type reportTarget struct {
	path   string
	exists bool
	mode   os.FileMode
	backup string
}

func inspectTarget(path string) (*reportTarget, error) {
	target := &reportTarget{path: path, mode: 0o644}
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return target, nil
		}
		return nil, errors.Wrap(err, "stat report")
	}
	if info.IsDir() {
		return nil, errors.Errorf("%s is a directory", path)
	}
	target.exists = true
	target.mode = info.Mode().Perm()
	return target, nil
}

// swap moves the staged file onto the target, keeping the previous report
// as a backup until discardBackup or restore runs.
func (t *reportTarget) swap(staged string) error {
	if t.exists {
		backup := staged + ".bak"
		if err := rename(t.path, backup); err != nil {
			return errors.Wrap(err, "back up report")
		}
		t.backup = backup
	}
	if err := rename(staged, t.path); err != nil {
		t.restore()
		return err
	}
	return nil
}

func (t *reportTarget) restore() {
	if t.backup == "" {
		_ = os.Remove(t.path)
		return
	}
	if err := rename(t.backup, t.path); err == nil {
		t.backup = ""
	}
}

func (t *reportTarget) discardBackup() {
	if t.backup != "" {
		_ = os.Remove(t.backup)
		t.backup = ""
	}
}

func stageReport(dir, header string, ranked []model.Count, total int, mode os.FileMode) (string, error) {
	tmpFile, err := os.CreateTemp(dir, ".toptens-*.tmp")
	if err != nil {
		return "", errors.Wrap(err, "create temp report")
	}
	tmpPath := tmpFile.Name()
	if err := WriteRanking(tmpFile, header, ranked, total); err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
		return "", err
	}
	if err := tmpFile.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", errors.Wrap(err, "close temp report")
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		_ = os.Remove(tmpPath)
		return "", errors.Wrap(err, "chmod temp report")
	}
	return tmpPath, nil
}
