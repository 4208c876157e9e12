package tally

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const sampleInput = "STATUS;SOC_NAME;WORK_STATE\n" +
	"CERTIFIED;ENGINEER;CA\n" +
	"CERTIFIED;ENGINEER;CA\n" +
	"DENIED;NURSE;TX\n" +
	"CERTIFIED;NURSE;NY\n"

func TestAggregateSample(t *testing.T) {
	tl, err := Aggregate(NewTextSource(strings.NewReader(sampleInput)), nil)
	require.NoError(t, err)

	assert.Equal(t, 3, tl.Total)
	assert.Equal(t, map[string]int{"ENGINEER": 2, "NURSE": 1}, tl.Occupations)
	assert.Equal(t, map[string]int{"CA": 2, "NY": 1}, tl.States)
}

func TestAggregateNormalizesValues(t *testing.T) {
	input := "CASE_STATUS;SOC_NAME;WORKSITE_STATE;EMPLOYER_STATE\n" +
		"\"certified\";\" Software Developers \";\"ca\";NY\n" +
		" Certified ;software developers;;x\n" +
		"CERTIFIED-WITHDRAWN;NURSE;TX;TX\n"
	tl, err := Aggregate(NewTextSource(strings.NewReader(input)), nil)
	require.NoError(t, err)

	assert.Equal(t, 2, tl.Total)
	assert.Equal(t, map[string]int{"SOFTWARE DEVELOPERS": 2}, tl.Occupations)
	// Only WORKSITE_STATE matches WORK+STATE; empty and one-letter values are dropped.
	assert.Equal(t, map[string]int{"CA": 1}, tl.States)
}

func TestAggregateMultipleWorkStateColumns(t *testing.T) {
	input := "STATUS;SOC_NAME;WORKLOC1_STATE;WORKLOC2_STATE\n" +
		"CERTIFIED;ANALYST;CA;WA\n" +
		"CERTIFIED;ANALYST;CA;CALIFORNIA\n"
	tl, err := Aggregate(NewTextSource(strings.NewReader(input)), nil)
	require.NoError(t, err)

	assert.Equal(t, 2, tl.Total)
	assert.Equal(t, map[string]int{"CA": 2, "WA": 1}, tl.States)
	for key, count := range tl.States {
		assert.Len(t, key, 2)
		assert.LessOrEqual(t, count, tl.Total)
	}
}

func TestAggregateOccupationSumMatchesTotal(t *testing.T) {
	input := "STATUS;SOC_NAME;WORK_STATE\n" +
		"CERTIFIED;A;CA\n" +
		"CERTIFIED;B;\n" +
		"WITHDRAWN;C;TX\n" +
		"CERTIFIED;A;TEXAS\n" +
		"CERTIFIED;C;TX\n"
	tl, err := Aggregate(NewTextSource(strings.NewReader(input)), nil)
	require.NoError(t, err)

	sum := 0
	for _, v := range tl.Occupations {
		sum += v
	}
	assert.Equal(t, tl.Total, sum)
	assert.Equal(t, 4, tl.Total)
}

func TestAggregateWarnsOnDuplicateHeaders(t *testing.T) {
	input := "STATUS;SOC_NAME;CASE_STATUS;SOC_NAME_2;WORK_STATE\n" +
		"CERTIFIED;ENGINEER;DENIED;NURSE;CA\n"
	var warn bytes.Buffer
	tl, err := Aggregate(NewTextSource(strings.NewReader(input)), &warn)
	require.NoError(t, err)

	assert.Equal(t, 1, tl.Total)
	assert.Equal(t, map[string]int{"ENGINEER": 1}, tl.Occupations)
	assert.Contains(t, warn.String(), "duplicate status column")
	assert.Contains(t, warn.String(), "duplicate job title column")
}

func TestAggregateSkipsBlankLines(t *testing.T) {
	input := "STATUS;SOC_NAME;WORK_STATE\n\nCERTIFIED;ENGINEER;CA\r\n\n"
	tl, err := Aggregate(NewTextSource(strings.NewReader(input)), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, tl.Total)
	assert.Equal(t, map[string]int{"CA": 1}, tl.States)
}

func TestAggregateLongLine(t *testing.T) {
	title := strings.Repeat("X", 5*1024*1024)
	input := "STATUS;SOC_NAME;WORK_STATE\nCERTIFIED;" + title + ";CA\nCERTIFIED;NURSE;NY"
	tl, err := Aggregate(NewTextSource(strings.NewReader(input)), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, tl.Total)
	assert.Equal(t, 1, tl.Occupations[title])
	assert.Equal(t, map[string]int{"CA": 1, "NY": 1}, tl.States)
}

func TestAggregateShortRow(t *testing.T) {
	input := "STATUS;SOC_NAME;WORK_STATE\n" +
		"CERTIFIED;ENGINEER;CA\n" +
		"CERTIFIED;ENGINEER\n"
	_, err := Aggregate(NewTextSource(strings.NewReader(input)), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShortRow))
	assert.Contains(t, err.Error(), "line 3")
}

func TestAggregateShortRowIgnoredWhenNotCertified(t *testing.T) {
	input := "STATUS;SOC_NAME;WORK_STATE\n" +
		"DENIED\n" +
		"CERTIFIED;ENGINEER;CA\n"
	tl, err := Aggregate(NewTextSource(strings.NewReader(input)), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, tl.Total)
}

func TestAggregateEmptyInput(t *testing.T) {
	_, err := Aggregate(NewTextSource(strings.NewReader("")), nil)
	assert.True(t, errors.Is(err, ErrEmptyInput))
}

func TestAggregateHeaderOnly(t *testing.T) {
	tl, err := Aggregate(NewTextSource(strings.NewReader("STATUS;SOC_NAME;WORK_STATE\n")), nil)
	require.NoError(t, err)
	assert.Zero(t, tl.Total)
	assert.Empty(t, tl.Occupations)
	assert.Empty(t, tl.States)
}

func TestScanHeader(t *testing.T) {
	cols, err := ScanHeader([]string{"id", "case_status", "soc_name", "worksite_state", "work_state_2"}, nil)
	require.NoError(t, err)
	assert.Equal(t, Columns{Status: 1, JobTitle: 2, WorkStates: []int{3, 4}}, cols)

	_, err = ScanHeader([]string{"SOC_NAME", "WORK_STATE"}, nil)
	assert.True(t, errors.Is(err, ErrMissingColumn))

	_, err = ScanHeader([]string{"STATUS", "WORK_STATE"}, nil)
	assert.True(t, errors.Is(err, ErrMissingColumn))
}

func TestProcessFileMissing(t *testing.T) {
	dir := t.TempDir()
	_, err := ProcessFile(dir, "absent.csv", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInputNotFound))
	assert.Contains(t, err.Error(), "absent.csv")
}

func TestProcessFileText(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "h1b.csv"), []byte(sampleInput), 0o644))

	tl, err := ProcessFile(dir, "h1b.csv", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, tl.Total)
}

func TestProcessFileWorkbook(t *testing.T) {
	dir := t.TempDir()
	f := excelize.NewFile()
	rows := [][]interface{}{
		{"STATUS", "SOC_NAME", "WORK_STATE"},
		{"CERTIFIED", "ENGINEER", "CA"},
		{"CERTIFIED", "ENGINEER"},
		{},
		{"DENIED", "NURSE", "TX"},
		{"certified", "nurse", "ny"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		row := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	path := filepath.Join(dir, "h1b.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	tl, err := ProcessFile(dir, "h1b.xlsx", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, tl.Total)
	assert.Equal(t, map[string]int{"ENGINEER": 2, "NURSE": 1}, tl.Occupations)
	assert.Equal(t, map[string]int{"CA": 1, "NY": 1}, tl.States)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "CERTIFIED", Normalize(`" certified "`))
	assert.Equal(t, "CA", Normalize(`"ca"`))
	assert.Equal(t, "", Normalize(`""`))
}
