package redis

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"dcareport/internal/application/port"
	"dcareport/internal/domain/model"

	"github.com/redis/go-redis/v9"
)

type Repo struct {
	rdb          *redis.Client
	prefix       string
	ttl          time.Duration
	keyLatest    string // prefix + ":dca"
	reportStream string
	reportChan   string
}

// assetEntry is the JSON value stored per asset in the latest hash.
type assetEntry struct {
	Crypto      string `json:"crypto"`
	TotalAmount string `json:"totalAmount"`
	TotalPrice  string `json:"totalPrice"`
	AvgEntry    string `json:"avgEntry,omitempty"`
	Fills       int    `json:"fills"`
	Ts          int64  `json:"ts"`
}

func New(rdb *redis.Client, prefix string, ttl time.Duration, reportStream, reportChan string) *Repo {
	if strings.TrimSpace(reportStream) == "" {
		reportStream = prefix + ":reports"
	}
	if strings.TrimSpace(reportChan) == "" {
		reportChan = prefix + ":reports:pub"
	}
	return &Repo{
		rdb:          rdb,
		prefix:       prefix,
		ttl:          ttl,
		keyLatest:    prefix + ":dca",
		reportStream: reportStream,
		reportChan:   reportChan,
	}
}

// PublishReport 写入最新汇总、追加到 stream 并发布通知
func (r *Repo) PublishReport(ctx context.Context, report *model.Report) error {
	ts := report.GeneratedAt.UnixMilli()

	// Hash: field = "BTC" -> json
	pipe := r.rdb.Pipeline()
	for _, a := range report.Assets {
		e := assetEntry{
			Crypto:      a.Crypto,
			TotalAmount: a.TotalAmount.StringFixed(model.ReportPlaces),
			TotalPrice:  a.TotalPrice.StringFixed(model.ReportPlaces),
			Fills:       a.Fills,
			Ts:          ts,
		}
		if a.AvgEntry.Valid {
			e.AvgEntry = a.AvgEntry.Decimal.StringFixed(model.ReportPlaces)
		}
		b, _ := json.Marshal(e)
		pipe.HSet(ctx, r.keyLatest, a.Crypto, string(b))
	}
	if r.ttl > 0 {
		pipe.Expire(ctx, r.keyLatest, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return err
	}

	// Stream: XADD <stream> * ts_ms total_spent payload
	_, err = r.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: r.reportStream,
		Values: map[string]any{
			"ts_ms":       ts,
			"total_spent": report.TotalSpent.StringFixed(model.ReportPlaces),
			"fetched":     report.Fetched,
			"payload":     string(payload),
		},
	}).Result()
	if err != nil {
		return err
	}

	// PubSub: PUBLISH <channel> json
	return r.rdb.Publish(ctx, r.reportChan, string(payload)).Err()
}

var _ port.ReportPublisher = (*Repo)(nil)
