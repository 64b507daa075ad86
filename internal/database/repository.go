package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"gitlab.com/tozd/go/errors"

	"clipreplace/internal/replace"
	"clipreplace/internal/util"
)

type Repository struct {
	db *bun.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dbPath)
	if err != nil {
		return nil, errors.Errorf("opening database: %w", err)
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	repo := &Repository{db: db}

	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, errors.Errorf("migrating database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	ctx := context.Background()

	models := []interface{}{
		(*ReplacementRecord)(nil),
	}

	for _, model := range models {
		if _, err := r.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return errors.Errorf("creating table for %T: %w", model, err)
		}
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_replacement_timestamp ON replacement_records(timestamp DESC)",
		"CREATE INDEX IF NOT EXISTS idx_replacement_hash ON replacement_records(hash)",
	}

	for _, idx := range indexes {
		if _, err := r.db.Exec(idx); err != nil {
			return errors.Errorf("creating index: %w", err)
		}
	}

	return nil
}

// RecordReplacement stores a monitor rewrite.
func (r *Repository) RecordReplacement(ctx context.Context, res replace.Result) error {
	return r.SaveRecord(ctx, &ReplacementRecord{
		Original:     res.Original,
		Result:       res.Text,
		Replacements: res.Replacements,
		Size:         len(res.Text),
	})
}

// SaveRecord inserts record. A record with the same original and result only
// has its timestamp bumped.
func (r *Repository) SaveRecord(ctx context.Context, record *ReplacementRecord) error {
	if record.Hash == "" {
		record.Hash = util.GenerateHash(record.Original, record.Result)
	}

	now := time.Now().UTC()

	exists, err := r.db.NewSelect().
		Model((*ReplacementRecord)(nil)).
		Where("hash = ?", record.Hash).
		Exists(ctx)
	if err != nil {
		return errors.Errorf("checking existing record: %w", err)
	}

	if exists {
		_, err = r.db.NewUpdate().
			Model((*ReplacementRecord)(nil)).
			Set("timestamp = ?", now).
			Set("updated_at = ?", now).
			Where("hash = ?", record.Hash).
			Exec(ctx)
		if err != nil {
			return errors.Errorf("updating record: %w", err)
		}
		return nil
	}

	if record.Timestamp.IsZero() {
		record.Timestamp = now
	}
	record.CreatedAt = now
	record.UpdatedAt = now

	if _, err := r.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return errors.Errorf("inserting record: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Int64("id", record.ID).Msg("replacement recorded")
	return nil
}

func (r *Repository) GetRecentRecords(ctx context.Context, limit int) ([]*ReplacementRecord, error) {
	var records []*ReplacementRecord

	err := r.db.NewSelect().
		Model(&records).
		Order("timestamp DESC", "id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, errors.Errorf("getting recent records: %w", err)
	}

	return records, nil
}

func (r *Repository) SearchRecords(ctx context.Context, query string, limit int) ([]*ReplacementRecord, error) {
	var records []*ReplacementRecord

	err := r.db.NewSelect().
		Model(&records).
		Where("original LIKE ? OR result LIKE ?", "%"+query+"%", "%"+query+"%").
		Order("timestamp DESC", "id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, errors.Errorf("searching records: %w", err)
	}

	return records, nil
}

func (r *Repository) GetRecordByID(ctx context.Context, id int64) (*ReplacementRecord, error) {
	var record ReplacementRecord
	err := r.db.NewSelect().
		Model(&record).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, errors.Errorf("getting record %d: %w", id, err)
	}

	return &record, nil
}

func (r *Repository) DeleteRecord(ctx context.Context, id int64) error {
	_, err := r.db.NewDelete().
		Model((*ReplacementRecord)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return errors.Errorf("deleting record %d: %w", id, err)
	}

	return nil
}

// CleanupOldRecords drops records older than maxDays and keeps at most maxItems of the rest.
func (r *Repository) CleanupOldRecords(ctx context.Context, maxDays int, maxItems int) error {
	cutoffDate := time.Now().UTC().AddDate(0, 0, -maxDays)

	_, err := r.db.NewDelete().
		Model((*ReplacementRecord)(nil)).
		Where("timestamp < ?", cutoffDate).
		Exec(ctx)
	if err != nil {
		return errors.Errorf("deleting old records: %w", err)
	}

	subquery := r.db.NewSelect().
		Model((*ReplacementRecord)(nil)).
		Column("id").
		Order("timestamp DESC", "id DESC").
		Limit(maxItems)

	_, err = r.db.NewDelete().
		Model((*ReplacementRecord)(nil)).
		Where("id NOT IN (?)", subquery).
		Exec(ctx)
	if err != nil {
		return errors.Errorf("deleting excess records: %w", err)
	}

	return nil
}

func (r *Repository) ClearAllRecords(ctx context.Context) error {
	_, err := r.db.NewDelete().Model((*ReplacementRecord)(nil)).Where("1=1").Exec(ctx)
	if err != nil {
		return errors.Errorf("clearing records: %w", err)
	}
	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}
