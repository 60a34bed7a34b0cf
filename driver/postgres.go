package driver

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"catalog-search/domain"
)

// ErrRecordNotFound is returned when a record ID has no row.
var ErrRecordNotFound = errors.New("record not found")

// NewPool opens a pgx connection pool for the given DSN.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database pool: %w", err)
	}
	return pool, nil
}

// PostgresDriver reads catalog records and persists derived search state
// (per-record vectors and the vocabulary) next to the primary store.
type PostgresDriver struct {
	pool *pgxpool.Pool
}

func NewPostgresDriver(pool *pgxpool.Pool) *PostgresDriver {
	return &PostgresDriver{pool: pool}
}

// GetRecords pages records by ID (keyset pagination). The empty cursor
// starts from the beginning; the returned cursor is empty when exhausted.
func (d *PostgresDriver) GetRecords(ctx context.Context, lastID string, limit int) ([]RecordRow, string, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, fields, attrs
		FROM catalog_records
		WHERE id > $1
		ORDER BY id
		LIMIT $2
	`, lastID, limit)
	if err != nil {
		return nil, "", &DriverError{Op: "GetRecords", Err: err.Error()}
	}
	defer rows.Close()

	var records []RecordRow
	for rows.Next() {
		var row RecordRow
		if err := rows.Scan(&row.ID, &row.Fields, &row.Attrs); err != nil {
			return nil, "", &DriverError{Op: "GetRecords", Err: err.Error()}
		}
		records = append(records, row)
	}
	if err := rows.Err(); err != nil {
		return nil, "", &DriverError{Op: "GetRecords", Err: err.Error()}
	}

	cursor := ""
	if len(records) == limit && limit > 0 {
		cursor = records[len(records)-1].ID
	}
	return records, cursor, nil
}

func (d *PostgresDriver) GetRecordByID(ctx context.Context, id string) (*RecordRow, error) {
	var row RecordRow
	err := d.pool.QueryRow(ctx, `
		SELECT id, fields, attrs
		FROM catalog_records
		WHERE id = $1
	`, id).Scan(&row.ID, &row.Fields, &row.Attrs)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, &DriverError{Op: "GetRecordByID", Err: err.Error()}
	}
	return &row, nil
}

// UpsertVector stores the derived vector for a record. The row is replaced
// wholesale: vectors are rebuilt, never patched.
func (d *PostgresDriver) UpsertVector(ctx context.Context, recordID string, vec domain.SearchVector, attrs map[string]string) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO search_vectors (record_id, vector, attrs)
		VALUES ($1, $2, $3)
		ON CONFLICT (record_id)
		DO UPDATE SET vector = EXCLUDED.vector, attrs = EXCLUDED.attrs
	`, recordID, vec, attrs)
	if err != nil {
		return &DriverError{Op: "UpsertVector", Err: err.Error()}
	}
	return nil
}

func (d *PostgresDriver) DeleteVector(ctx context.Context, recordID string) error {
	_, err := d.pool.Exec(ctx, `DELETE FROM search_vectors WHERE record_id = $1`, recordID)
	if err != nil {
		return &DriverError{Op: "DeleteVector", Err: err.Error()}
	}
	return nil
}

func (d *PostgresDriver) LoadVectors(ctx context.Context, fn func(recordID string, vec domain.SearchVector, attrs map[string]string) error) error {
	rows, err := d.pool.Query(ctx, `SELECT record_id, vector, attrs FROM search_vectors`)
	if err != nil {
		return &DriverError{Op: "LoadVectors", Err: err.Error()}
	}
	defer rows.Close()

	for rows.Next() {
		var recordID string
		var vec domain.SearchVector
		var attrs map[string]string
		if err := rows.Scan(&recordID, &vec, &attrs); err != nil {
			return &DriverError{Op: "LoadVectors", Err: err.Error()}
		}
		if err := fn(recordID, vec, attrs); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return &DriverError{Op: "LoadVectors", Err: err.Error()}
	}
	return nil
}

// UpsertTerms inserts vocabulary terms, accumulating corpus frequency.
// Existing terms are never duplicated; the vocabulary is append-only.
func (d *PostgresDriver) UpsertTerms(ctx context.Context, counts map[string]int) error {
	if len(counts) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for term, freq := range counts {
		batch.Queue(`
			INSERT INTO search_vocabulary (term, freq)
			VALUES ($1, $2)
			ON CONFLICT (term)
			DO UPDATE SET freq = search_vocabulary.freq + EXCLUDED.freq
		`, term, freq)
	}
	if err := d.pool.SendBatch(ctx, batch).Close(); err != nil {
		return &DriverError{Op: "UpsertTerms", Err: err.Error()}
	}
	return nil
}

func (d *PostgresDriver) LoadTerms(ctx context.Context, fn func(term string, freq int) error) error {
	rows, err := d.pool.Query(ctx, `SELECT term, freq FROM search_vocabulary`)
	if err != nil {
		return &DriverError{Op: "LoadTerms", Err: err.Error()}
	}
	defer rows.Close()

	for rows.Next() {
		var term string
		var freq int
		if err := rows.Scan(&term, &freq); err != nil {
			return &DriverError{Op: "LoadTerms", Err: err.Error()}
		}
		if err := fn(term, freq); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return &DriverError{Op: "LoadTerms", Err: err.Error()}
	}
	return nil
}
