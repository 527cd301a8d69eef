package dca

import (
	"context"

	"dcareport/internal/application/port"
	"dcareport/internal/domain/model"
)

type noopPublisher struct{}

func NewNoopPublisher() port.ReportPublisher { return &noopPublisher{} }

func (n *noopPublisher) PublishReport(ctx context.Context, report *model.Report) error {
	return nil
}
