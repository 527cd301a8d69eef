package storage

import (
	"context"
	"sync"

	"dcareport/internal/application/port"
	"dcareport/internal/domain/model"
)

// InMemoryHistory is a HistoryRepository kept in process memory.
type InMemoryHistory struct {
	mu   sync.Mutex
	rows []model.Fill
}

// NewInMemoryHistory creates a repository seeded with rows.
func NewInMemoryHistory(rows ...model.Fill) *InMemoryHistory {
	h := &InMemoryHistory{rows: make([]model.Fill, 0, len(rows))}
	h.rows = append(h.rows, rows...)
	return h
}

func (h *InMemoryHistory) LoadHistory(ctx context.Context) ([]model.Fill, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]model.Fill, len(h.rows))
	copy(out, h.rows)
	return out, nil
}

func (h *InMemoryHistory) AppendFills(ctx context.Context, fills []model.Fill) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rows = append(h.rows, fills...)
	return nil
}

func (h *InMemoryHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rows)
}

func (h *InMemoryHistory) Close() error {
	return nil
}

var _ port.HistoryRepository = (*InMemoryHistory)(nil)
