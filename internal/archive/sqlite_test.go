package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ddi-checker/internal/domain"
)

func createTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRecord() *Record {
	label := 1
	return NewRecord(
		[]string{"Aspirin", "Warfarin"},
		false,
		domain.SummaryResult{Level: "High", RiskyPairs: 1, TotalPairs: 1, CombinedScore: 0.85},
		[]domain.PairResult{{
			Drug1: "Aspirin", Drug2: "Warfarin", Found: true, Prob: 1, ProbAdj: 1, Label: &label,
			Risk:      domain.RiskHigh,
			DoseEvalA: &domain.DoseEvaluation{Status: domain.DoseWithin, Comment: "ok"},
			DoseEvalB: &domain.DoseEvaluation{Status: domain.DoseAbove, Comment: "above baseline", PercentAbove: domain.Float(25)},
			Effects:   []string{"bleeding"},
		}},
	)
}

func TestNewSQLiteStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "reports.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	_, err = os.Stat(dbPath)
	assert.NoError(t, err, "Database file should exist")
	assert.Equal(t, dbPath, store.Path())
}

func TestSQLiteStore_SaveAndGet(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	record := sampleRecord()
	require.NoError(t, store.Save(ctx, record))
	assert.False(t, record.CreatedAt.IsZero(), "CreatedAt should be set")

	got, err := store.Get(ctx, record.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, record.ID, got.ID)
	assert.Equal(t, record.Drugs, got.Drugs)
	assert.Equal(t, record.Summary, got.Summary)
	assert.Equal(t, record.Pairs, got.Pairs)
	assert.WithinDuration(t, record.CreatedAt, got.CreatedAt, time.Second)
}

func TestSQLiteStore_GetMissing(t *testing.T) {
	store := createTestStore(t)

	got, err := store.Get(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteStore_SaveReplaces(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	record := sampleRecord()
	require.NoError(t, store.Save(ctx, record))

	record.Summary.Level = "Moderate"
	require.NoError(t, store.Save(ctx, record))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	got, err := store.Get(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, "Moderate", got.Summary.Level)
}

func TestSQLiteStore_ListNewestFirst(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		record := sampleRecord()
		record.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, store.Save(ctx, record))
		ids = append(ids, record.ID)
	}

	all, err := store.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids[2], all[0].ID)
	assert.Equal(t, ids[1], all[1].ID)
	assert.Equal(t, ids[0], all[2].ID)

	page, err := store.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, ids[1], page[0].ID)
}

func TestSQLiteStore_Delete(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	record := sampleRecord()
	require.NoError(t, store.Save(ctx, record))
	require.NoError(t, store.Delete(ctx, record.ID))

	got, err := store.Get(ctx, record.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteStore_ExportJSON(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleRecord()))
	require.NoError(t, store.Save(ctx, sampleRecord()))

	var buf bytes.Buffer
	require.NoError(t, store.ExportJSON(ctx, &buf))

	var export Export
	require.NoError(t, json.Unmarshal(buf.Bytes(), &export))
	assert.Equal(t, "1.0", export.Version)
	assert.Equal(t, 2, export.Count)
	assert.Len(t, export.Reports, 2)
}

func TestNewRecord_CopiesInput(t *testing.T) {
	pairs := []domain.PairResult{{Drug1: "A", Drug2: "B", DoseEvalA: &domain.DoseEvaluation{Status: domain.DoseWithin}}}
	record := NewRecord([]string{"A", "B"}, true, domain.SummaryResult{Level: "Low"}, pairs)

	pairs[0].DoseEvalA.Status = domain.DoseAbove
	pairs[0].Drug1 = "changed"

	assert.NotEqual(t, uuid.Nil, record.ID)
	assert.True(t, record.IsPediatric)
	assert.Equal(t, "A", record.Pairs[0].Drug1)
	assert.Equal(t, domain.DoseWithin, record.Pairs[0].DoseEvalA.Status)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	store, err := Open(ctx, domain.ArchiveConfig{Driver: DriverNone})
	require.NoError(t, err)
	assert.Nil(t, store)

	store, err = Open(ctx, domain.ArchiveConfig{Driver: "SQLite", Path: filepath.Join(t.TempDir(), "a.db")})
	require.NoError(t, err)
	require.NotNil(t, store)
	assert.NoError(t, store.Close())

	_, err = Open(ctx, domain.ArchiveConfig{Driver: "mongo"})
	assert.Error(t, err)
}
