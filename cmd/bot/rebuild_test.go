package main

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"interview-bot/internal/aggregate"
	"interview-bot/internal/storage"
)

func TestRunRebuild(t *testing.T) {
	dir := t.TempDir()
	journalPath := filepath.Join(dir, "rows.jsonl")
	out := filepath.Join(dir, "table.xlsx")

	j, err := storage.NewFileJournal(journalPath)
	require.NoError(t, err)
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, j.AppendRow(aggregate.Row{Respondent: "late", CapturedAt: base.Add(time.Hour)}))
	require.NoError(t, j.AppendRow(aggregate.Row{Respondent: "early", CapturedAt: base}))

	n, err := runRebuild(j, out)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "early", rows[1][0])
	assert.Equal(t, "late", rows[2][0])
}

func TestRunRebuild_EmptyJournal(t *testing.T) {
	dir := t.TempDir()
	j, err := storage.NewFileJournal(filepath.Join(dir, "rows.jsonl"))
	require.NoError(t, err)
	_, err = runRebuild(j, filepath.Join(dir, "t.xlsx"))
	assert.ErrorIs(t, err, aggregate.ErrNoData)
}

type failingRecorder struct{}

func (failingRecorder) AppendRow(aggregate.Row) error { return nil }

func (failingRecorder) LoadRows() ([]aggregate.Row, error) {
	return nil, errors.New("disk unreadable")
}

func TestRunRebuild_ReadError(t *testing.T) {
	out := filepath.Join(t.TempDir(), "t.xlsx")
	_, err := runRebuild(failingRecorder{}, out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk unreadable")
	assert.NoFileExists(t, out)
}
