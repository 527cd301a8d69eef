package composite

import (
	"context"
	"errors"

	"dcareport/internal/application/port"
	"dcareport/internal/domain/model"
)

// Repo reads from the primary history store and appends to the primary and
// every mirror.
type Repo struct {
	primary port.HistoryRepository
	mirrors []port.HistoryRepository
}

func New(primary port.HistoryRepository, mirrors ...port.HistoryRepository) (*Repo, error) {
	if primary == nil {
		return nil, errors.New("composite: primary repository is nil")
	}
	// nil repos are allowed; filter in constructor for safety
	out := make([]port.HistoryRepository, 0, len(mirrors))
	for _, r := range mirrors {
		if r != nil {
			out = append(out, r)
		}
	}
	return &Repo{primary: primary, mirrors: out}, nil
}

func (r *Repo) LoadHistory(ctx context.Context) ([]model.Fill, error) {
	return r.primary.LoadHistory(ctx)
}

// AppendFills writes to the primary first; mirrors are only written when the
// primary succeeded. The first error is returned.
func (r *Repo) AppendFills(ctx context.Context, fills []model.Fill) error {
	if err := r.primary.AppendFills(ctx, fills); err != nil {
		return err
	}
	var firstErr error
	for _, repo := range r.mirrors {
		if err := repo.AppendFills(ctx, fills); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Close is a no-op; the container owns the underlying connections.
func (r *Repo) Close() error { return nil }

var _ port.HistoryRepository = (*Repo)(nil)
