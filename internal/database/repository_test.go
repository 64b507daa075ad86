package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipreplace/internal/replace"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
	})
	return repo
}

func TestRepository_RecordReplacement(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	require.NoError(t, repo.RecordReplacement(ctx, replace.Result{Original: "a", Text: "b", Replacements: 1}))
	require.NoError(t, repo.RecordReplacement(ctx, replace.Result{Original: "cat", Text: "dog", Replacements: 1}))

	records, err := repo.GetRecentRecords(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "cat", records[0].Original)
	assert.Equal(t, "dog", records[0].Result)
	assert.Equal(t, 3, records[0].Size)
	assert.NotEmpty(t, records[0].Hash)

	got, err := repo.GetRecordByID(ctx, records[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Original)
}

func TestRepository_DuplicateBumpsTimestamp(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	res := replace.Result{Original: "x", Text: "y", Replacements: 1}
	require.NoError(t, repo.RecordReplacement(ctx, res))
	require.NoError(t, repo.RecordReplacement(ctx, res))

	records, err := repo.GetRecentRecords(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestRepository_SearchRecords(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	require.NoError(t, repo.RecordReplacement(ctx, replace.Result{Original: "colour", Text: "color"}))
	require.NoError(t, repo.RecordReplacement(ctx, replace.Result{Original: "teh", Text: "the"}))

	records, err := repo.SearchRecords(ctx, "colo", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "colour", records[0].Original)

	records, err = repo.SearchRecords(ctx, "the", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "teh", records[0].Original)
}

func TestRepository_CleanupOldRecords(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	require.NoError(t, repo.SaveRecord(ctx, &ReplacementRecord{
		Original:  "old",
		Result:    "new",
		Timestamp: time.Now().UTC().AddDate(0, 0, -30),
	}))
	for _, s := range []string{"1", "2", "3"} {
		require.NoError(t, repo.RecordReplacement(ctx, replace.Result{Original: s, Text: s + "!"}))
	}

	require.NoError(t, repo.CleanupOldRecords(ctx, 7, 2))

	records, err := repo.GetRecentRecords(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, r := range records {
		assert.NotEqual(t, "old", r.Original)
	}
}

func TestRepository_DeleteAndClear(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	require.NoError(t, repo.RecordReplacement(ctx, replace.Result{Original: "a", Text: "b"}))
	require.NoError(t, repo.RecordReplacement(ctx, replace.Result{Original: "c", Text: "d"}))

	records, err := repo.GetRecentRecords(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	require.NoError(t, repo.DeleteRecord(ctx, records[0].ID))
	records, err = repo.GetRecentRecords(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	require.NoError(t, repo.ClearAllRecords(ctx))
	records, err = repo.GetRecentRecords(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}
