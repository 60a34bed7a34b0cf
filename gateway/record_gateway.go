package gateway

import (
	"context"
	"errors"

	"catalog-search/domain"
	"catalog-search/driver"
)

// ErrRecordNotFound is returned when the primary store has no such record.
var ErrRecordNotFound = errors.New("record not found")

type RecordDriver interface {
	GetRecords(ctx context.Context, lastID string, limit int) ([]driver.RecordRow, string, error)
	GetRecordByID(ctx context.Context, id string) (*driver.RecordRow, error)
}

// RecordRepositoryGateway adapts the database driver to port.RecordSource.
type RecordRepositoryGateway struct {
	driver RecordDriver
}

func NewRecordRepositoryGateway(driver RecordDriver) *RecordRepositoryGateway {
	return &RecordRepositoryGateway{driver: driver}
}

func (g *RecordRepositoryGateway) GetRecords(ctx context.Context, lastID string, limit int) ([]*domain.Record, string, error) {
	rows, cursor, err := g.driver.GetRecords(ctx, lastID, limit)
	if err != nil {
		return nil, "", &domain.RepositoryError{Op: "GetRecords", Err: err.Error()}
	}

	records := make([]*domain.Record, 0, len(rows))
	for _, row := range rows {
		record, err := domain.NewRecord(row.ID, row.Fields, row.Attrs)
		if err != nil {
			return nil, "", &domain.RepositoryError{Op: "GetRecords", Err: "convert record id=" + row.ID + ": " + err.Error()}
		}
		records = append(records, record)
	}
	return records, cursor, nil
}

func (g *RecordRepositoryGateway) GetRecordByID(ctx context.Context, id string) (*domain.Record, error) {
	row, err := g.driver.GetRecordByID(ctx, id)
	if errors.Is(err, driver.ErrRecordNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, &domain.RepositoryError{Op: "GetRecordByID", Err: err.Error()}
	}
	return domain.NewRecord(row.ID, row.Fields, row.Attrs)
}
