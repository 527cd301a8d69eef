package port

import "context"

// Order is a raw order as returned by the exchange order history endpoint.
type Order struct {
	OrderID             int64  // 交易所订单 ID
	Symbol              string // "BTCUSDT"
	Status              string // "FILLED", "PARTIALLY_FILLED", ...
	Side                string
	Price               string
	ExecutedQty         string
	CummulativeQuoteQty string
	Time                int64 // unix ms
}

type OrderHistoryClient interface {
	// AllOrders returns all orders of symbol created at or after startTime (unix ms).
	AllOrders(ctx context.Context, symbol string, startTime int64) ([]Order, error)
}
