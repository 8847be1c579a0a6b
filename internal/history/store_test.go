package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleBatch(startedAt time.Time) *Batch {
	return &Batch{
		StartedAt:  startedAt,
		FinishedAt: startedAt.Add(2 * time.Second),
		DestPath:   "/ingest/renamed",
		Pattern:    "shot_{counter}",
		Policy:     "rename",
		Copied:     2,
		Ignored:    1,
		Vanished:   1,
	}
}

func TestNewStore(t *testing.T) {
	tests := []struct {
		name    string
		dbPath  func(t *testing.T) string
		wantErr bool
	}{
		{
			name:   "creates database successfully",
			dbPath: func(t *testing.T) string { return filepath.Join(t.TempDir(), "history.db") },
		},
		{
			name:   "handles in-memory database",
			dbPath: func(t *testing.T) string { return ":memory:" },
		},
		{
			name:   "creates parent directories if needed",
			dbPath: func(t *testing.T) string { return filepath.Join(t.TempDir(), "nested", "dir", "history.db") },
		},
		{
			name: "returns error when parent is a file",
			dbPath: func(t *testing.T) string {
				blocker := filepath.Join(t.TempDir(), "blocker")
				require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
				return filepath.Join(blocker, "sub", "history.db")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dbPath := tt.dbPath(t)
			store, err := NewStore(dbPath)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, store)
			defer store.Close()

			version, err := store.SchemaVersion(context.Background())
			require.NoError(t, err)
			assert.Equal(t, len(migrations), version)
			assert.Equal(t, dbPath, store.dbPath)
		})
	}
}

func TestStoreCloseIsIdempotent(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)

	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}

func TestRecordBatchAssignsID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	b := sampleBatch(time.Now())
	require.NoError(t, store.RecordBatch(ctx, b, nil))

	require.NotEmpty(t, b.ID)
	_, err := uuid.Parse(b.ID)
	assert.NoError(t, err, "assigned id should be a UUID")
}

func TestRecordBatchKeepsCallerID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	b := sampleBatch(time.Now())
	b.ID = "caller-chosen"
	require.NoError(t, store.RecordBatch(ctx, b, nil))

	got, err := store.GetBatch(ctx, "caller-chosen")
	require.NoError(t, err)
	assert.Equal(t, "caller-chosen", got.ID)
}

func TestRecordBatchRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	started := time.Now().Add(-time.Minute)
	b := sampleBatch(started)
	b.Error = "copy shot_2: disk full"
	files := []File{
		{SourcePath: "/ingest/raw/a.mov", FinalName: "shot_1.mov", Outcome: "copied"},
		{SourcePath: "/ingest/raw/b.mov", FinalName: "", Outcome: "vanished"},
		{SourcePath: "/ingest/raw/c.mov", FinalName: "shot_2.mov", Outcome: "failed"},
	}
	require.NoError(t, store.RecordBatch(ctx, b, files))

	got, err := store.GetBatch(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)
	assert.Equal(t, "/ingest/renamed", got.DestPath)
	assert.Equal(t, "shot_{counter}", got.Pattern)
	assert.Equal(t, "rename", got.Policy)
	assert.Equal(t, 2, got.Copied)
	assert.Equal(t, 1, got.Ignored)
	assert.Equal(t, 1, got.Vanished)
	assert.Equal(t, "copy shot_2: disk full", got.Error)
	assert.WithinDuration(t, b.StartedAt, got.StartedAt, time.Second)
	assert.WithinDuration(t, b.FinishedAt, got.FinishedAt, time.Second)

	gotFiles, err := store.BatchFiles(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, gotFiles, 3)
	for i, f := range gotFiles {
		assert.Equal(t, b.ID, f.BatchID)
		assert.Equal(t, files[i].SourcePath, f.SourcePath)
		assert.Equal(t, files[i].FinalName, f.FinalName)
		assert.Equal(t, files[i].Outcome, f.Outcome)
	}
}

func TestRecentBatchesOrderAndLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	var ids []string
	for i := 0; i < 3; i++ {
		b := sampleBatch(base.Add(time.Duration(i) * time.Minute))
		b.ID = fmt.Sprintf("batch-%d", i)
		require.NoError(t, store.RecordBatch(ctx, b, nil))
		ids = append(ids, b.ID)
	}

	all, err := store.RecentBatches(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids[2], all[0].ID, "newest pass first")
	assert.Equal(t, ids[0], all[2].ID)

	limited, err := store.RecentBatches(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, ids[2], limited[0].ID)
	assert.Equal(t, ids[1], limited[1].ID)
}

func TestGetBatchNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetBatch(context.Background(), "no-such-batch")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBatchFilesEmptyForUnknownBatch(t *testing.T) {
	store := newTestStore(t)

	files, err := store.BatchFiles(context.Background(), "no-such-batch")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestPrune(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	old := sampleBatch(time.Now().AddDate(0, 0, -30))
	old.ID = "old-pass"
	require.NoError(t, store.RecordBatch(ctx, old, []File{
		{SourcePath: "/ingest/raw/a.mov", FinalName: "shot_1.mov", Outcome: "copied"},
	}))

	recent := sampleBatch(time.Now().Add(-time.Hour))
	recent.ID = "recent-pass"
	require.NoError(t, store.RecordBatch(ctx, recent, nil))

	deleted, err := store.Prune(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = store.GetBatch(ctx, "old-pass")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.GetBatch(ctx, "recent-pass")
	assert.NoError(t, err)

	// Cascade removed the old pass's file rows.
	files, err := store.BatchFiles(ctx, "old-pass")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestPruneKeepForever(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	b := sampleBatch(time.Now().AddDate(0, 0, -365))
	require.NoError(t, store.RecordBatch(ctx, b, nil))

	for _, keepDays := range []int{0, -1} {
		deleted, err := store.Prune(ctx, keepDays)
		require.NoError(t, err)
		assert.Zero(t, deleted)
	}

	all, err := store.RecentBatches(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")

	store, err := NewStore(dbPath)
	require.NoError(t, err)
	b := sampleBatch(time.Now())
	require.NoError(t, store.RecordBatch(context.Background(), b, nil))
	require.NoError(t, store.Close())

	// Reopening re-runs ApplyMigrations against the populated file.
	reopened, err := NewStore(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	version, err := reopened.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(migrations), version)

	got, err := reopened.GetBatch(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)
}
