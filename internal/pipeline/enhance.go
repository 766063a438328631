package pipeline

import "context"

// Enhancer post-processes extracted fields, e.g. an external service that
// normalizes values or fills gaps. Implementations must return the full
// field map, not a delta.
type Enhancer interface {
	Enhance(ctx context.Context, documentType string, fields map[string]string) (map[string]string, error)
}

// NoopEnhancer returns fields unchanged.
type NoopEnhancer struct{}

func (NoopEnhancer) Enhance(_ context.Context, _ string, fields map[string]string) (map[string]string, error) {
	return fields, nil
}
