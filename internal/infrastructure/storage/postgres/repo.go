package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"

	"dcareport/internal/application/port"
	"dcareport/internal/domain/model"
)

type Repo struct {
	db *sql.DB
}

func New(dsn string) (*Repo, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)

	r := &Repo{db: db}
	if err := r.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS fills (
  id BIGSERIAL PRIMARY KEY,
  order_id BIGINT,
  ts_ms BIGINT NOT NULL,
  side TEXT NOT NULL,
  pair TEXT NOT NULL,
  price TEXT NOT NULL,
  executed_qty NUMERIC NOT NULL,
  total_price NUMERIC NOT NULL,
  created_at BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_fills_ts ON fills(ts_ms);
`)
	return err
}

func (r *Repo) LoadHistory(ctx context.Context) ([]model.Fill, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT order_id, ts_ms, side, pair, price, executed_qty::TEXT, total_price::TEXT
		FROM fills ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Fill
	for rows.Next() {
		var (
			orderID       sql.NullInt64
			ts            int64
			side, pair    string
			price         string
			qty, quoteQty string
		)
		if err := rows.Scan(&orderID, &ts, &side, &pair, &price, &qty, &quoteQty); err != nil {
			return nil, err
		}
		q, err := decimal.NewFromString(qty)
		if err != nil {
			return nil, fmt.Errorf("executed_qty %q: %w", qty, err)
		}
		quote, err := decimal.NewFromString(quoteQty)
		if err != nil {
			return nil, fmt.Errorf("total_price %q: %w", quoteQty, err)
		}
		out = append(out, model.Fill{
			OrderID:     orderID.Int64,
			Time:        time.UnixMilli(ts).UTC(),
			Side:        model.Side(side),
			Pair:        pair,
			Price:       price,
			ExecutedQty: q,
			TotalPrice:  quote,
		})
	}
	return out, rows.Err()
}

func (r *Repo) AppendFills(ctx context.Context, fills []model.Fill) error {
	if len(fills) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UnixMilli()
	for _, fl := range fills {
		orderID := sql.NullInt64{Int64: fl.OrderID, Valid: fl.OrderID != 0}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO fills(order_id, ts_ms, side, pair, price, executed_qty, total_price, created_at)
			VALUES($1, $2, $3, $4, $5, $6, $7, $8)
		`, orderID, fl.Time.UnixMilli(), string(fl.Side), fl.Pair, fl.Price,
			fl.ExecutedQty.String(), fl.TotalPrice.String(), now)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

var _ port.HistoryRepository = (*Repo)(nil)
