package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"dcareport/internal/application/port"
	"dcareport/internal/domain/model"
)

// TimeLayout is how the time column is written. Values are UTC.
const TimeLayout = "2006-01-02 15:04:05.000"

// Repo 基于 CSV 文件的成交历史表，只追加
type Repo struct {
	path string
}

func New(path string) (*Repo, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("csv history path is empty")
	}
	// ensure directory exists
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &Repo{path: path}, nil
}

func (r *Repo) Path() string { return r.path }

func (r *Repo) Close() error { return nil }

// LoadHistory reads every row. A missing file is an empty history.
// Columns are located by header name, so files without orderId still load.
func (r *Repo) LoadHistory(ctx context.Context) ([]model.Fill, error) {
	f, err := os.Open(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	for _, col := range []string{"time", "pair", "executedQty", "totalPrice"} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%s: missing column %q", r.path, col)
		}
	}

	var out []model.Fill
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", r.path, line, err)
		}
		fl, err := parseRecord(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", r.path, line, err)
		}
		out = append(out, fl)
	}
	return out, nil
}

// AppendFills appends rows, writing the header first when the file is new.
func (r *Repo) AppendFills(ctx context.Context, fills []model.Fill) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	writeHeader := false
	st, err := os.Stat(r.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		writeHeader = true
	case err != nil:
		return err
	case st.Size() == 0:
		writeHeader = true
	}

	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if writeHeader {
		_ = w.Write(model.HistoryColumns)
	}
	for _, fl := range fills {
		_ = w.Write(formatRecord(fl))
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", r.path, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func formatRecord(fl model.Fill) []string {
	orderID := ""
	if fl.OrderID != 0 {
		orderID = strconv.FormatInt(fl.OrderID, 10)
	}
	return []string{
		orderID,
		fl.Time.UTC().Format(TimeLayout),
		string(fl.Side),
		fl.Pair,
		fl.Price,
		fl.ExecutedQty.String(),
		fl.TotalPrice.String(),
	}
}

func parseRecord(rec []string, idx map[string]int) (model.Fill, error) {
	get := func(col string) string {
		i, ok := idx[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var fl model.Fill
	if s := get("orderId"); s != "" {
		// older files stored ids as floats ("12345.0")
		d, err := decimal.NewFromString(s)
		if err != nil {
			return fl, fmt.Errorf("orderId %q: %w", s, err)
		}
		fl.OrderID = d.IntPart()
	}

	ts, err := parseTime(get("time"))
	if err != nil {
		return fl, err
	}
	fl.Time = ts
	fl.Side = model.Side(strings.ToUpper(get("side")))
	fl.Pair = get("pair")
	fl.Price = get("price")

	if fl.ExecutedQty, err = decimal.NewFromString(get("executedQty")); err != nil {
		return fl, fmt.Errorf("executedQty: %w", err)
	}
	if fl.TotalPrice, err = decimal.NewFromString(get("totalPrice")); err != nil {
		return fl, fmt.Errorf("totalPrice: %w", err)
	}
	return fl, nil
}

func parseTime(s string) (time.Time, error) {
	// fractional seconds are accepted after the seconds field
	if t, err := time.ParseInLocation("2006-01-02 15:04:05", s, time.UTC); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("time %q: unsupported layout", s)
}

var _ port.HistoryRepository = (*Repo)(nil)
