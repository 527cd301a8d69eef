package port

import (
	"context"

	"dcareport/internal/domain/model"
)

// HistoryRepository is the append-only persisted fill table.
type HistoryRepository interface {
	// LoadHistory returns every stored row in insertion order.
	LoadHistory(ctx context.Context) ([]model.Fill, error)

	// AppendFills appends rows to the end of the table.
	AppendFills(ctx context.Context, fills []model.Fill) error

	// Connection management
	Close() error
}

// ReportPublisher 将报告推送到外部（例如 Redis）
type ReportPublisher interface {
	PublishReport(ctx context.Context, report *model.Report) error
}
