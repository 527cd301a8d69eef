package service

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"dcareport/internal/domain/model"
)

// Merge returns previous followed by fetched. Neither input is modified.
func Merge(previous, fetched []model.Fill) []model.Fill {
	out := make([]model.Fill, 0, len(previous)+len(fetched))
	out = append(out, previous...)
	out = append(out, fetched...)
	return out
}

// Watermark 返回下一次拉取的 startTime（毫秒）
// 交易所的 startTime 是闭区间，所以在最新一条记录的时间上 +1ms，避免重复拉取
func Watermark(rows []model.Fill, fallback time.Time) int64 {
	if len(rows) == 0 {
		return fallback.UnixMilli()
	}
	latest := rows[0].Time
	for _, r := range rows[1:] {
		if r.Time.After(latest) {
			latest = r.Time
		}
	}
	return latest.UnixMilli() + 1
}

// Rollup groups rows into one summary per asset, in asset order.
// A row belongs to an asset when its pair contains the asset symbol.
func Rollup(rows []model.Fill, assets []string) []model.AssetSummary {
	out := make([]model.AssetSummary, 0, len(assets))
	for _, asset := range assets {
		sum := model.AssetSummary{
			Crypto:      asset,
			TotalAmount: decimal.Zero,
			TotalPrice:  decimal.Zero,
		}
		for _, r := range rows {
			if !strings.Contains(r.Pair, asset) {
				continue
			}
			sum.TotalAmount = sum.TotalAmount.Add(r.ExecutedQty)
			sum.TotalPrice = sum.TotalPrice.Add(r.TotalPrice)
			sum.Fills++
		}
		if sum.TotalAmount.IsPositive() {
			avg := sum.TotalPrice.Div(sum.TotalAmount).Round(model.ReportPlaces)
			sum.AvgEntry = decimal.NewNullDecimal(avg)
		}
		sum.TotalAmount = sum.TotalAmount.Round(model.ReportPlaces)
		sum.TotalPrice = sum.TotalPrice.Round(model.ReportPlaces)
		out = append(out, sum)
	}
	return out
}

// GrandTotal sums the quote spend of every summary.
func GrandTotal(summaries []model.AssetSummary) decimal.Decimal {
	total := decimal.Zero
	for _, s := range summaries {
		total = total.Add(s.TotalPrice)
	}
	return total.Round(model.ReportPlaces)
}

// BuildReport rolls the merged history up into the final report.
func BuildReport(now time.Time, merged []model.Fill, fetched int, assets []string) *model.Report {
	summaries := Rollup(merged, assets)
	return &model.Report{
		GeneratedAt: now,
		Assets:      summaries,
		TotalSpent:  GrandTotal(summaries),
		Fetched:     fetched,
		HistoryRows: len(merged),
		NoActivity:  len(merged) == 0,
	}
}
