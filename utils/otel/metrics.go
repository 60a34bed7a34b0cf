package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all OTel metric instruments for catalog-search.
var Metrics *CatalogSearchMetrics

// CatalogSearchMetrics contains all metric instruments.
type CatalogSearchMetrics struct {
	IndexedTotal    metric.Int64Counter
	DeletedTotal    metric.Int64Counter
	ResyncTotal     metric.Int64Counter
	ErrorsTotal     metric.Int64Counter
	ReindexDuration metric.Float64Histogram
	SearchDuration  metric.Float64Histogram
}

// InitMetrics initializes all metric instruments.
func InitMetrics() error {
	meter := otel.Meter("catalog-search")

	indexedTotal, err := meter.Int64Counter("catalog_search_indexed_total",
		metric.WithDescription("Total number of records indexed"),
	)
	if err != nil {
		return err
	}

	deletedTotal, err := meter.Int64Counter("catalog_search_deleted_total",
		metric.WithDescription("Total number of records deleted from the index"),
	)
	if err != nil {
		return err
	}

	resyncTotal, err := meter.Int64Counter("catalog_search_resync_total",
		metric.WithDescription("Total number of mirror resync events enqueued"),
	)
	if err != nil {
		return err
	}

	errorsTotal, err := meter.Int64Counter("catalog_search_errors_total",
		metric.WithDescription("Total number of errors"),
	)
	if err != nil {
		return err
	}

	reindexDuration, err := meter.Float64Histogram("catalog_search_reindex_duration_seconds",
		metric.WithDescription("Mirror reindex duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	searchDuration, err := meter.Float64Histogram("catalog_search_search_duration_seconds",
		metric.WithDescription("Search request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	Metrics = &CatalogSearchMetrics{
		IndexedTotal:    indexedTotal,
		DeletedTotal:    deletedTotal,
		ResyncTotal:     resyncTotal,
		ErrorsTotal:     errorsTotal,
		ReindexDuration: reindexDuration,
		SearchDuration:  searchDuration,
	}

	return nil
}
