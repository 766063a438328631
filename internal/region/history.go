package region

import (
	"sync"
)

// defaultHistoryCapacity bounds the per-document-type history ring.
const defaultHistoryCapacity = 100

// History is a bounded, thread-safe record of high-confidence regions per
// document type. It is write-only telemetry: nothing in the suggestion
// pipeline reads it back, so concurrent writers only need eventual bounded
// size, not strict recency ordering.
type History struct {
	mu       sync.Mutex
	capacity int
	byType   map[string][]Region
}

// NewHistory creates a history store with the given per-type capacity.
// Non-positive capacities fall back to the default.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = defaultHistoryCapacity
	}
	return &History{capacity: capacity, byType: make(map[string][]Region)}
}

// Record appends regions for a document type, evicting oldest entries beyond
// the capacity.
func (h *History) Record(documentType string, regions []Region) {
	if len(regions) == 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	entries := append(h.byType[documentType], regions...)
	if overflow := len(entries) - h.capacity; overflow > 0 {
		entries = entries[overflow:]
	}
	h.byType[documentType] = entries
}

// Snapshot returns a copy of the recorded regions for a document type.
// Exists for future adaptive-suggestion work; the current pipeline never
// branches on it.
func (h *History) Snapshot(documentType string) []Region {
	h.mu.Lock()
	defer h.mu.Unlock()
	src := h.byType[documentType]
	out := make([]Region, len(src))
	copy(out, src)
	return out
}

// Len returns the number of recorded regions for a document type.
func (h *History) Len(documentType string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.byType[documentType])
}
