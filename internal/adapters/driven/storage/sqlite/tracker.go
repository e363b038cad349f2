package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/lexrag/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
)

// trackerMigrationVersion is the migration that creates parsed_files.
const trackerMigrationVersion = 1

// tracker implements driven.IngestionTracker.
type tracker struct {
	store *Store
}

var _ driven.IngestionTracker = (*tracker)(nil)

// Initialize applies any pending migrations, recreating parsed_files if it
// was dropped.
func (t *tracker) Initialize(_ context.Context) error {
	return storageErr("initialize tracker", t.store.migrate(migrations.FS))
}

// IsProcessed reports whether the fingerprint has a record.
func (t *tracker) IsProcessed(ctx context.Context, fp domain.Fingerprint) (bool, error) {
	var one int
	err := t.store.db.QueryRowContext(ctx,
		"SELECT 1 FROM parsed_files WHERE file_hash = ?", fp.String()).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, storageErr("query tracker", err)
	}
	return true, nil
}

// Register inserts or replaces the record in a single statement.
func (t *tracker) Register(ctx context.Context, rec domain.TrackerRecord) error {
	if !rec.Fingerprint.IsValid() {
		return fmt.Errorf("%w: fingerprint %q", domain.ErrInvalidInput, rec.Fingerprint)
	}

	_, err := t.store.db.ExecContext(ctx, `
		INSERT INTO parsed_files (file_hash, file_name, json_path, parsing_parameters, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(file_hash) DO UPDATE SET
			file_name = excluded.file_name,
			json_path = excluded.json_path,
			parsing_parameters = excluded.parsing_parameters,
			updated_at = excluded.updated_at
	`, rec.Fingerprint.String(), rec.FileName, rec.CachePath, rec.ParseParams, time.Now().UTC())
	return storageErr("register "+rec.Fingerprint.Short(), err)
}

// Get retrieves the record for a fingerprint.
func (t *tracker) Get(ctx context.Context, fp domain.Fingerprint) (*domain.TrackerRecord, error) {
	row := t.store.db.QueryRowContext(ctx, `
		SELECT file_hash, file_name, json_path, parsing_parameters, updated_at
		FROM parsed_files WHERE file_hash = ?
	`, fp.String())

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, storageErr("get tracker record", err)
	}
	return rec, nil
}

// List returns all records, newest first.
func (t *tracker) List(ctx context.Context) ([]domain.TrackerRecord, error) {
	rows, err := t.store.db.QueryContext(ctx, `
		SELECT file_hash, file_name, json_path, parsing_parameters, updated_at
		FROM parsed_files ORDER BY updated_at DESC, file_name
	`)
	if err != nil {
		return nil, storageErr("list tracker records", err)
	}
	defer rows.Close()

	var records []domain.TrackerRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, storageErr("scan tracker record", err)
		}
		records = append(records, *rec)
	}
	return records, storageErr("iterate tracker records", rows.Err())
}

// Count returns the number of records.
func (t *tracker) Count(ctx context.Context) (int, error) {
	var n int
	err := t.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM parsed_files").Scan(&n)
	if err != nil {
		return 0, storageErr("count tracker records", err)
	}
	return n, nil
}

// Drop removes parsed_files and forgets its migration.
func (t *tracker) Drop(ctx context.Context) error {
	return storageErr("drop tracker", t.store.revert(ctx, migrations.FS, trackerMigrationVersion))
}

// Close is a no-op; the owning Store closes the connection.
func (t *tracker) Close() error {
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*domain.TrackerRecord, error) {
	var rec domain.TrackerRecord
	var fp string
	var updatedAt sql.NullTime
	if err := row.Scan(&fp, &rec.FileName, &rec.CachePath, &rec.ParseParams, &updatedAt); err != nil {
		return nil, err
	}
	rec.Fingerprint = domain.Fingerprint(fp)
	if updatedAt.Valid {
		rec.UpdatedAt = updatedAt.Time
	}
	return &rec, nil
}
