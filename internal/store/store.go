package store

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/joelkehle/quote-compare/internal/analysis"
)

var (
	ErrNotFound     = errors.New("analysis not found")
	ErrMissingRFQID = errors.New("analysis has no rfq id")
)

// Store keeps the latest analysis per RFQ. Saving again for the same RFQ
// replaces the previous result.
type Store interface {
	SaveAnalysis(ctx context.Context, res analysis.Result) error
	LatestAnalysis(ctx context.Context, rfqID string) (analysis.Result, error)
	Close() error
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu     sync.RWMutex
	latest map[string]analysis.Result
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{latest: map[string]analysis.Result{}}
}

func (m *MemoryStore) SaveAnalysis(_ context.Context, res analysis.Result) error {
	id := strings.TrimSpace(res.RFQID)
	if id == "" {
		return ErrMissingRFQID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest[id] = res
	return nil
}

func (m *MemoryStore) LatestAnalysis(_ context.Context, rfqID string) (analysis.Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res, ok := m.latest[strings.TrimSpace(rfqID)]
	if !ok {
		return analysis.Result{}, ErrNotFound
	}
	return res, nil
}

func (m *MemoryStore) Close() error { return nil }
