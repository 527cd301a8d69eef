package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"dcareport/internal/application/port"
	"dcareport/internal/domain/model"
)

type Repo struct {
	db *sql.DB
}

func New(path string) (*Repo, error) {
	// ensure directory exists
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		_ = os.MkdirAll(dir, 0o755)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

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
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  order_id INTEGER,
  ts_ms INTEGER NOT NULL,
  side TEXT NOT NULL,
  pair TEXT NOT NULL,
  price TEXT NOT NULL,
  executed_qty TEXT NOT NULL,
  total_price TEXT NOT NULL,
  created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_fills_ts ON fills(ts_ms);
CREATE INDEX IF NOT EXISTS idx_fills_pair ON fills(pair);
`)
	return err
}

// LoadHistory 按写入顺序返回全部成交
func (r *Repo) LoadHistory(ctx context.Context) ([]model.Fill, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT order_id, ts_ms, side, pair, price, executed_qty, total_price
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
		fl, err := toFill(orderID, ts, side, pair, price, qty, quoteQty)
		if err != nil {
			return nil, err
		}
		out = append(out, fl)
	}
	return out, rows.Err()
}

// AppendFills 在一个事务里追加成交
func (r *Repo) AppendFills(ctx context.Context, fills []model.Fill) error {
	if len(fills) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO fills(order_id, ts_ms, side, pair, price, executed_qty, total_price, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UnixMilli()
	for _, fl := range fills {
		orderID := sql.NullInt64{Int64: fl.OrderID, Valid: fl.OrderID != 0}
		if _, err := stmt.ExecContext(ctx, orderID, fl.Time.UnixMilli(), string(fl.Side), fl.Pair, fl.Price,
			fl.ExecutedQty.String(), fl.TotalPrice.String(), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// CountFills returns the number of stored rows.
func (r *Repo) CountFills(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM fills`).Scan(&n)
	return n, err
}

func toFill(orderID sql.NullInt64, ts int64, side, pair, price, qty, quoteQty string) (model.Fill, error) {
	q, err := decimal.NewFromString(qty)
	if err != nil {
		return model.Fill{}, fmt.Errorf("executed_qty %q: %w", qty, err)
	}
	quote, err := decimal.NewFromString(quoteQty)
	if err != nil {
		return model.Fill{}, fmt.Errorf("total_price %q: %w", quoteQty, err)
	}
	return model.Fill{
		OrderID:     orderID.Int64,
		Time:        time.UnixMilli(ts).UTC(),
		Side:        model.Side(side),
		Pair:        pair,
		Price:       price,
		ExecutedQty: q,
		TotalPrice:  quote,
	}, nil
}

var _ port.HistoryRepository = (*Repo)(nil)
