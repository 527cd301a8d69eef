package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"dcareport/internal/application/port"
)

const maxPageSize = 1000

// OrderHistoryClient Binance 现货历史订单查询客户端
type OrderHistoryClient struct {
	*APIClient
	pageSize int
}

// NewOrderHistoryClient 创建历史订单客户端
func NewOrderHistoryClient(client *APIClient, pageSize int) *OrderHistoryClient {
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return &OrderHistoryClient{APIClient: client, pageSize: pageSize}
}

// allOrdersEntry GET /api/v3/allOrders 响应元素
type allOrdersEntry struct {
	Symbol              string `json:"symbol"`
	OrderID             int64  `json:"orderId"`
	Price               string `json:"price"`
	OrigQty             string `json:"origQty"`
	ExecutedQty         string `json:"executedQty"`
	CummulativeQuoteQty string `json:"cummulativeQuoteQty"`
	Status              string `json:"status"`
	Type                string `json:"type"`
	Side                string `json:"side"`
	Time                int64  `json:"time"`
	UpdateTime          int64  `json:"updateTime"`
}

// AllOrders 获取交易对从 startTime（毫秒，含）开始的全部订单
// 一页满了之后用 orderId 继续翻页，直到返回不足一页
func (c *OrderHistoryClient) AllOrders(ctx context.Context, symbol string, startTime int64) ([]port.Order, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("startTime", strconv.FormatInt(startTime, 10))
	params.Set("limit", strconv.Itoa(c.pageSize))

	var out []port.Order
	for {
		page, err := c.fetchPage(ctx, params)
		if err != nil {
			return nil, err
		}
		for _, e := range page {
			out = append(out, port.Order{
				OrderID:             e.OrderID,
				Symbol:              e.Symbol,
				Status:              e.Status,
				Side:                e.Side,
				Price:               e.Price,
				ExecutedQty:         e.ExecutedQty,
				CummulativeQuoteQty: e.CummulativeQuoteQty,
				Time:                e.Time,
			})
		}
		if len(page) < c.pageSize {
			return out, nil
		}

		params = url.Values{}
		params.Set("symbol", symbol)
		params.Set("orderId", strconv.FormatInt(page[len(page)-1].OrderID+1, 10))
		params.Set("limit", strconv.Itoa(c.pageSize))
	}
}

func (c *OrderHistoryClient) fetchPage(ctx context.Context, params url.Values) ([]allOrdersEntry, error) {
	body, err := c.signedRequest(ctx, http.MethodGet, "/api/v3/allOrders", params)
	if err != nil {
		return nil, err
	}

	var page []allOrdersEntry
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("decode allOrders response failed: %w", err)
	}
	return page, nil
}

var _ port.OrderHistoryClient = (*OrderHistoryClient)(nil)
