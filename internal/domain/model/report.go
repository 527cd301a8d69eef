package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportPlaces is the number of decimal places used for every reported figure.
const ReportPlaces = 3

// AssetSummary DCA 汇总（按基础币种）
type AssetSummary struct {
	Crypto      string              `json:"crypto"`
	TotalAmount decimal.Decimal     `json:"totalAmount"`
	TotalPrice  decimal.Decimal     `json:"totalPrice"`
	AvgEntry    decimal.NullDecimal `json:"avgEntry"` // invalid when TotalAmount is zero
	Fills       int                 `json:"fills"`
}

// Report is the result of one run.
type Report struct {
	GeneratedAt time.Time       `json:"generatedAt"`
	Assets      []AssetSummary  `json:"assets"`
	TotalSpent  decimal.Decimal `json:"totalSpent"`
	Fetched     int             `json:"fetched"`
	HistoryRows int             `json:"historyRows"`
	NoActivity  bool            `json:"noActivity"`
}
