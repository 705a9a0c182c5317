package ocr

import (
	"context"
	"sync/atomic"
	"time"
)

// MockExtractor is a configurable extractor for tests and local development.
type MockExtractor struct {
	Extraction Extraction
	Err        error
	Latency    time.Duration

	calls atomic.Int32
}

func (m *MockExtractor) Extract(ctx context.Context, _ string, _ DocumentType) (Extraction, error) {
	m.calls.Add(1)
	if m.Latency > 0 {
		select {
		case <-time.After(m.Latency):
		case <-ctx.Done():
			return Extraction{}, ctx.Err()
		}
	}
	if m.Err != nil {
		return Extraction{}, m.Err
	}
	return m.Extraction, nil
}

// Calls reports how many times Extract was invoked.
func (m *MockExtractor) Calls() int {
	return int(m.calls.Load())
}
