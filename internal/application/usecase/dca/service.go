package dca

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dcareport/internal/application/port"
	"dcareport/internal/application/service"
	"dcareport/internal/domain/model"
	dsvc "dcareport/internal/domain/service"

	"github.com/rs/zerolog/log"
)

type ServiceDeps struct {
	Symbols   []string  // pairs to fetch, in order
	Assets    []string  // base assets to report, in order
	StartTime time.Time // lower bound when the history is empty
	Fetcher   *service.HistoryFetcher
	History   port.HistoryRepository
	Publisher port.ReportPublisher
	Sink      port.Sink
	Formatter *Formatter
	DryRun    bool // fetch and report without appending to the history
	Now       func() time.Time
}

type Service struct {
	deps ServiceDeps
}

func NewService(deps ServiceDeps) *Service {
	if deps.Publisher == nil {
		deps.Publisher = NewNoopPublisher()
	}
	if deps.Formatter == nil {
		deps.Formatter = NewFormatter(false)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Service{deps: deps}
}

// Run performs one fetch-merge-report pass. Any error aborts the run before
// the history is written.
func (s *Service) Run(ctx context.Context) (*model.Report, error) {
	if s.deps.Fetcher == nil || s.deps.History == nil || s.deps.Sink == nil {
		return nil, errors.New("dca: missing dependency")
	}

	previous, err := s.deps.History.LoadHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	startTime := dsvc.Watermark(previous, s.deps.StartTime)
	log.Info().
		Int("history_rows", len(previous)).
		Int("symbols", len(s.deps.Symbols)).
		Time("since", time.UnixMilli(startTime).UTC()).
		Msg("fetching order history")

	fetched, err := s.deps.Fetcher.FetchAll(ctx, s.deps.Symbols, startTime)
	if err != nil {
		return nil, err
	}

	if dups := dsvc.NewDuplicateChecker(previous).Check(fetched); len(dups) > 0 {
		log.Warn().Ints64("order_ids", dups).Msg("fetched orders already present in history")
	}

	merged := dsvc.Merge(previous, fetched)
	if s.deps.DryRun {
		log.Warn().Int("fetched", len(fetched)).Msg("dry run, history not updated")
	} else {
		if err := s.deps.History.AppendFills(ctx, fetched); err != nil {
			return nil, fmt.Errorf("append history: %w", err)
		}
		log.Info().Int("appended", len(fetched)).Int("history_rows", len(merged)).Msg("history updated")
	}

	report := dsvc.BuildReport(s.deps.Now(), merged, len(fetched), s.deps.Assets)
	if report.NoActivity {
		log.Info().Msg("no filled orders yet")
	}

	if err := s.deps.Publisher.PublishReport(ctx, report); err != nil {
		log.Warn().Err(err).Msg("publish report failed")
	}

	if err := s.deps.Sink.WriteReport(report.GeneratedAt, s.deps.Formatter.Render(report)); err != nil {
		return report, fmt.Errorf("write report: %w", err)
	}
	if err := s.deps.Sink.NewLine(); err != nil {
		return report, fmt.Errorf("write report: %w", err)
	}
	return report, nil
}
