package components

import (
	"context"
	"fmt"
	"sync"

	"gitlab.com/tozd/go/errors"

	"clipreplace/internal/database"
)

const historyLimit = 100

// HistoryStore is the part of the repository the activity list needs.
type HistoryStore interface {
	GetRecentRecords(ctx context.Context, limit int) ([]*database.ReplacementRecord, error)
	SearchRecords(ctx context.Context, query string, limit int) ([]*database.ReplacementRecord, error)
	GetRecordByID(ctx context.Context, id int64) (*database.ReplacementRecord, error)
	DeleteRecord(ctx context.Context, id int64) error
	ClearAllRecords(ctx context.Context) error
}

// HistoryController holds the records shown in the activity list. store may
// be nil when history recording is disabled.
type HistoryController struct {
	store HistoryStore

	mu         sync.Mutex
	records    []*database.ReplacementRecord
	searchTerm string
}

func NewHistoryController(store HistoryStore) *HistoryController {
	return &HistoryController{store: store}
}

func (hc *HistoryController) Enabled() bool {
	return hc.store != nil
}

func (hc *HistoryController) Len() int {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	return len(hc.records)
}

// At returns the record at index i, or nil when out of range.
func (hc *HistoryController) At(i int) *database.ReplacementRecord {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	if i < 0 || i >= len(hc.records) {
		return nil
	}
	return hc.records[i]
}

// LoadRecent loads the newest records and returns a status line.
func (hc *HistoryController) LoadRecent(ctx context.Context) (string, error) {
	return hc.Search(ctx, "")
}

// Search loads records matching query, or the newest ones when query is empty.
func (hc *HistoryController) Search(ctx context.Context, query string) (string, error) {
	hc.mu.Lock()
	hc.searchTerm = query
	hc.mu.Unlock()

	if hc.store == nil {
		return "History disabled", nil
	}

	var (
		records []*database.ReplacementRecord
		err     error
	)
	if query == "" {
		records, err = hc.store.GetRecentRecords(ctx, historyLimit)
	} else {
		records, err = hc.store.SearchRecords(ctx, query, historyLimit)
	}
	if err != nil {
		return "Error loading history", errors.Errorf("loading history: %w", err)
	}

	hc.mu.Lock()
	hc.records = records
	hc.mu.Unlock()

	return statusText(len(records), query), nil
}

// Refresh reruns the current query.
func (hc *HistoryController) Refresh(ctx context.Context) (string, error) {
	hc.mu.Lock()
	query := hc.searchTerm
	hc.mu.Unlock()
	return hc.Search(ctx, query)
}

// Get reloads a single record so the detail view shows its full text and
// latest timestamp.
func (hc *HistoryController) Get(ctx context.Context, id int64) (*database.ReplacementRecord, error) {
	if hc.store == nil {
		return nil, errors.New("history disabled")
	}
	record, err := hc.store.GetRecordByID(ctx, id)
	if err != nil {
		return nil, errors.Errorf("loading history entry: %w", err)
	}
	return record, nil
}

func (hc *HistoryController) Delete(ctx context.Context, id int64) error {
	if hc.store == nil {
		return nil
	}
	if err := hc.store.DeleteRecord(ctx, id); err != nil {
		return errors.Errorf("deleting history entry: %w", err)
	}
	return nil
}

func (hc *HistoryController) ClearAll(ctx context.Context) error {
	if hc.store == nil {
		return nil
	}
	if err := hc.store.ClearAllRecords(ctx); err != nil {
		return errors.Errorf("clearing history: %w", err)
	}
	return nil
}

func statusText(count int, query string) string {
	if query != "" {
		switch count {
		case 0:
			return fmt.Sprintf("No results for '%s'", query)
		case 1:
			return "1 result"
		default:
			return fmt.Sprintf("%d results", count)
		}
	}

	switch count {
	case 0:
		return "No replacements yet"
	case 1:
		return "1 replacement"
	default:
		return fmt.Sprintf("%d replacements", count)
	}
}
