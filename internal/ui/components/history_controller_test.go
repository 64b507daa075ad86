package components

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"clipreplace/internal/database"
)

type fakeStore struct {
	records []*database.ReplacementRecord
	err     error
}

func (f *fakeStore) GetRecentRecords(ctx context.Context, limit int) ([]*database.ReplacementRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func (f *fakeStore) SearchRecords(ctx context.Context, query string, limit int) ([]*database.ReplacementRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*database.ReplacementRecord
	for _, r := range f.records {
		if strings.Contains(r.Original, query) || strings.Contains(r.Result, query) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) GetRecordByID(ctx context.Context, id int64) (*database.ReplacementRecord, error) {
	for _, r := range f.records {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, errors.New("sql: no rows in result set")
}

func (f *fakeStore) DeleteRecord(ctx context.Context, id int64) error {
	for i, r := range f.records {
		if r.ID == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeStore) ClearAllRecords(ctx context.Context) error {
	f.records = nil
	return nil
}

func TestHistoryController_LoadAndSearch(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{records: []*database.ReplacementRecord{
		{ID: 1, Original: "colour", Result: "color"},
		{ID: 2, Original: "teh", Result: "the"},
	}}
	hc := NewHistoryController(store)

	status, err := hc.LoadRecent(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2 replacements", status)
	assert.Equal(t, 2, hc.Len())

	status, err = hc.Search(ctx, "colo")
	require.NoError(t, err)
	assert.Equal(t, "1 result", status)
	assert.Equal(t, int64(1), hc.At(0).ID)
	assert.Nil(t, hc.At(5))

	// Refresh keeps the active query.
	status, err = hc.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1 result", status)

	status, err = hc.Search(ctx, "zzz")
	require.NoError(t, err)
	assert.Equal(t, "No results for 'zzz'", status)

	require.NoError(t, hc.Delete(ctx, 2))
	status, err = hc.Search(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "1 replacement", status)

	require.NoError(t, hc.ClearAll(ctx))
	status, err = hc.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, "No replacements yet", status)
}

func TestHistoryController_Get(t *testing.T) {
	ctx := context.Background()
	hc := NewHistoryController(&fakeStore{records: []*database.ReplacementRecord{
		{ID: 7, Original: "teh cat", Result: "the cat", Replacements: 1},
	}})

	record, err := hc.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "the cat", record.Result)

	_, err = hc.Get(ctx, 8)
	assert.Error(t, err)

	_, err = NewHistoryController(nil).Get(ctx, 7)
	assert.Error(t, err)
}

func TestHistoryController_StoreError(t *testing.T) {
	hc := NewHistoryController(&fakeStore{err: errors.New("database is locked")})

	status, err := hc.LoadRecent(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Error loading history", status)
}

func TestHistoryController_Disabled(t *testing.T) {
	hc := NewHistoryController(nil)
	assert.False(t, hc.Enabled())

	status, err := hc.LoadRecent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "History disabled", status)
	assert.NoError(t, hc.ClearAll(context.Background()))
}

func TestPreviewText(t *testing.T) {
	assert.Equal(t, "(empty)", previewText("  \n ", 10))
	assert.Equal(t, "a b", previewText("a\nb", 10))
	assert.Equal(t, "ñañ...", previewText("ñañaña", 3))
}

func TestFormatTimeAgo(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "Just now", formatTimeAgo(now.Add(-10*time.Second), now))
	assert.Equal(t, "1 minute ago", formatTimeAgo(now.Add(-time.Minute), now))
	assert.Equal(t, "5 minutes ago", formatTimeAgo(now.Add(-5*time.Minute), now))
	assert.Equal(t, "2 hours ago", formatTimeAgo(now.Add(-2*time.Hour), now))
	assert.Equal(t, "Yesterday", formatTimeAgo(now.Add(-25*time.Hour), now))
	assert.Equal(t, "3 days ago", formatTimeAgo(now.Add(-72*time.Hour), now))
}
