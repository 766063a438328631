package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pagesProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extractor_pages_processed_total",
			Help: "Total number of document pages processed",
		},
		[]string{"document_type", "status"}, // status: ok, partial, failed, text_layer
	)

	pageProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "extractor_page_processing_duration_seconds",
			Help:    "Page processing duration in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 25, 50},
		},
		[]string{"document_type"},
	)

	regionsDetected = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "extractor_regions_detected",
			Help:    "Number of text regions detected per page",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
		},
		[]string{"document_type"},
	)

	fieldsExtracted = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "extractor_fields_extracted",
			Help:    "Number of fields extracted per page",
			Buckets: []float64{0, 1, 2, 4, 6, 8, 12, 20},
		},
		[]string{"document_type"},
	)
)

func observePage(documentType, status string, duration time.Duration, fieldCount int) {
	pagesProcessedTotal.WithLabelValues(documentType, status).Inc()
	pageProcessingDuration.WithLabelValues(documentType).Observe(duration.Seconds())
	fieldsExtracted.WithLabelValues(documentType).Observe(float64(fieldCount))
}

func observeRegions(documentType string, count int) {
	regionsDetected.WithLabelValues(documentType).Observe(float64(count))
}
