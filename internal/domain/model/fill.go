package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side 订单方向
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// OrderStatus 交易所订单状态
type OrderStatus string

const (
	StatusNew             OrderStatus = "NEW"
	StatusPartiallyFilled OrderStatus = "PARTIALLY_FILLED"
	StatusFilled          OrderStatus = "FILLED"
	StatusCanceled        OrderStatus = "CANCELED"
	StatusRejected        OrderStatus = "REJECTED"
	StatusExpired         OrderStatus = "EXPIRED"
)

// Fill is one fully filled order as stored in the history table.
// OrderID is 0 for rows written before the column existed.
type Fill struct {
	OrderID     int64           `json:"orderId"`
	Time        time.Time       `json:"time"`
	Side        Side            `json:"side"`
	Pair        string          `json:"pair"`
	Price       string          `json:"price"`
	ExecutedQty decimal.Decimal `json:"executedQty"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
}

// HistoryColumns is the column order of the persisted history table.
var HistoryColumns = []string{"orderId", "time", "side", "pair", "price", "executedQty", "totalPrice"}
