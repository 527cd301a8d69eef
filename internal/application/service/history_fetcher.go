package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"dcareport/internal/application/port"
	"dcareport/internal/domain/model"
)

var (
	ErrEmptySymbol    = errors.New("symbol is empty")
	ErrNegativeCursor = errors.New("start time is negative")
)

// HistoryFetcher pulls filled orders for a list of symbols, one symbol at a time.
type HistoryFetcher struct {
	client port.OrderHistoryClient
}

func NewHistoryFetcher(client port.OrderHistoryClient) *HistoryFetcher {
	return &HistoryFetcher{client: client}
}

// FetchSymbol returns the FILLED orders of symbol at or after startTime (unix ms).
func (f *HistoryFetcher) FetchSymbol(ctx context.Context, symbol string, startTime int64) ([]model.Fill, error) {
	if strings.TrimSpace(symbol) == "" {
		return nil, ErrEmptySymbol
	}
	if startTime < 0 {
		return nil, ErrNegativeCursor
	}

	orders, err := f.client.AllOrders(ctx, symbol, startTime)
	if err != nil {
		return nil, fmt.Errorf("fetch %s orders: %w", symbol, err)
	}

	fills := make([]model.Fill, 0, len(orders))
	for _, o := range orders {
		if model.OrderStatus(o.Status) != model.StatusFilled {
			continue
		}
		fl, err := normalizeOrder(o)
		if err != nil {
			return nil, fmt.Errorf("order %d of %s: %w", o.OrderID, symbol, err)
		}
		fills = append(fills, fl)
	}

	log.Debug().
		Str("symbol", symbol).
		Int64("start_time", startTime).
		Int("orders", len(orders)).
		Int("filled", len(fills)).
		Msg("order history fetched")

	return fills, nil
}

// FetchAll runs FetchSymbol for every symbol in order and concatenates the result.
// The first error aborts the whole batch and no rows are returned.
func (f *HistoryFetcher) FetchAll(ctx context.Context, symbols []string, startTime int64) ([]model.Fill, error) {
	var all []model.Fill
	for _, sym := range symbols {
		fills, err := f.FetchSymbol(ctx, sym, startTime)
		if err != nil {
			return nil, err
		}
		all = append(all, fills...)
	}
	return all, nil
}

func normalizeOrder(o port.Order) (model.Fill, error) {
	qty, err := decimal.NewFromString(o.ExecutedQty)
	if err != nil {
		return model.Fill{}, fmt.Errorf("parse executedQty %q: %w", o.ExecutedQty, err)
	}
	quote, err := decimal.NewFromString(o.CummulativeQuoteQty)
	if err != nil {
		return model.Fill{}, fmt.Errorf("parse cummulativeQuoteQty %q: %w", o.CummulativeQuoteQty, err)
	}
	return model.Fill{
		OrderID:     o.OrderID,
		Time:        time.UnixMilli(o.Time).UTC(),
		Side:        model.Side(strings.ToUpper(o.Side)),
		Pair:        o.Symbol,
		Price:       o.Price,
		ExecutedQty: qty,
		TotalPrice:  quote,
	}, nil
}
