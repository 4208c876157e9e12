package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/toptens/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestInsertAndListRuns(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		run := model.Run{
			CreatedAt:     time.Unix(0, 0).Add(time.Duration(i) * time.Minute),
			InputPath:     "input/h1b.csv",
			OccupationOut: "top_10_occupations.txt",
			StateOut:      "top_10_states.txt",
			Total:         10 + i,
		}
		id, err := st.InsertRun(ctx, run,
			[]model.Count{{Key: "ENGINEER", Count: 2}, {Key: "NURSE", Count: 1}},
			[]model.Count{{Key: "CA", Count: 3}})
		require.NoError(t, err)
		require.NotEmpty(t, id)
		ids = append(ids, id)
	}

	runs, err := st.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, ids[2], runs[0].ID)
	assert.Equal(t, 12, runs[0].Total)
	assert.True(t, runs[0].CreatedAt.Equal(time.Unix(0, 0).Add(2*time.Minute)))

	limited, err := st.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, ids[1], limited[1].ID)
}

func TestListRunEntries(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	id, err := st.InsertRun(ctx, model.Run{ID: "fixed-id", InputPath: "in.csv", Total: 3},
		[]model.Count{{Key: "ENGINEER", Count: 2}, {Key: "NURSE", Count: 1}},
		[]model.Count{{Key: "CA", Count: 2}, {Key: "NY", Count: 1}})
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", id)

	entries, err := st.ListRunEntries(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []model.RunEntry{
		{Kind: model.KindOccupation, Rank: 1, Key: "ENGINEER", Count: 2},
		{Kind: model.KindOccupation, Rank: 2, Key: "NURSE", Count: 1},
		{Kind: model.KindState, Rank: 1, Key: "CA", Count: 2},
		{Kind: model.KindState, Rank: 2, Key: "NY", Count: 1},
	}, entries)
}

func TestListRunEntriesUnknown(t *testing.T) {
	st := openTestStore(t)
	_, err := st.ListRunEntries(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrRunNotFound))
}

func TestInsertRunDuplicateID(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	_, err := st.InsertRun(ctx, model.Run{ID: "dup"}, nil, nil)
	require.NoError(t, err)
	_, err = st.InsertRun(ctx, model.Run{ID: "dup"}, nil, nil)
	assert.Error(t, err)

	runs, err := st.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
