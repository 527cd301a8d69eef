package binance

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"
)

func TestCredentialsSign(t *testing.T) {
	// https://binance-docs.github.io/apidocs/spot/en/#signed-trade-user_data-and-margin-endpoint-security
	c := NewCredentials("key", "NhqPtmdSJYdKjVHjA7PZj4Mge3R5YNiP1e3UZjInClVN65XAbvqqM6A7H5fATj0j")
	query := "symbol=LTCBTC&side=BUY&type=LIMIT&timeInForce=GTC&quantity=1&price=0.1&recvWindow=5000&timestamp=1499827319559"

	got := c.Sign(query)
	want := "c8db56825ae71d6d79447849e617115f4a920fa2acdcab2b053c4b2838bd6b71"
	if got != want {
		t.Errorf("signature = %s, want %s", got, want)
	}
}

type fakeOrder struct {
	Symbol              string `json:"symbol"`
	OrderID             int64  `json:"orderId"`
	Price               string `json:"price"`
	ExecutedQty         string `json:"executedQty"`
	CummulativeQuoteQty string `json:"cummulativeQuoteQty"`
	Status              string `json:"status"`
	Side                string `json:"side"`
	Time                int64  `json:"time"`
}

// newFakeExchange serves /api/v3/allOrders from orders and checks the request signature.
func newFakeExchange(t *testing.T, secret string, orders []fakeOrder) (*httptest.Server, *[]string) {
	t.Helper()
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/allOrders" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("X-MBX-APIKEY") != "key" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"code":-2015,"msg":"Invalid API-key, IP, or permissions for action."}`)
			return
		}
		raw := r.URL.RawQuery
		idx := strings.LastIndex(raw, "&signature=")
		if idx < 0 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write([]byte(raw[:idx]))
		if hex.EncodeToString(mac.Sum(nil)) != raw[idx+len("&signature="):] {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"code":-1022,"msg":"Signature for this request is not valid."}`)
			return
		}
		queries = append(queries, raw[:idx])

		q := r.URL.Query()
		limit, _ := strconv.Atoi(q.Get("limit"))
		var page []fakeOrder
		for _, o := range orders {
			if o.Symbol != q.Get("symbol") {
				continue
			}
			if s := q.Get("startTime"); s != "" {
				st, _ := strconv.ParseInt(s, 10, 64)
				if o.Time < st {
					continue
				}
			}
			if s := q.Get("orderId"); s != "" {
				id, _ := strconv.ParseInt(s, 10, 64)
				if o.OrderID < id {
					continue
				}
			}
			page = append(page, o)
			if len(page) == limit {
				break
			}
		}
		if page == nil {
			page = []fakeOrder{}
		}
		_ = json.NewEncoder(w).Encode(page)
	}))
	t.Cleanup(srv.Close)
	return srv, &queries
}

func TestAllOrdersSignedRequest(t *testing.T) {
	srv, queries := newFakeExchange(t, "secret", []fakeOrder{
		{Symbol: "BTCUSDT", OrderID: 1, Price: "50000.00", ExecutedQty: "0.01000000", CummulativeQuoteQty: "500.00000000", Status: "FILLED", Side: "BUY", Time: 1000},
		{Symbol: "BTCUSDT", OrderID: 2, Price: "51000.00", ExecutedQty: "0.00000000", CummulativeQuoteQty: "0.00000000", Status: "CANCELED", Side: "BUY", Time: 2000},
		{Symbol: "ETHUSDT", OrderID: 3, Price: "2000.00", ExecutedQty: "1.00000000", CummulativeQuoteQty: "2000.00000000", Status: "FILLED", Side: "BUY", Time: 1500},
	})
	mgr := NewSpotManager("key", "secret", Options{BaseURL: srv.URL, Timeout: time.Second})

	orders, err := mgr.Orders.AllOrders(context.Background(), "BTCUSDT", 500)
	if err != nil {
		t.Fatalf("AllOrders failed: %v", err)
	}

	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	if orders[0].OrderID != 1 || orders[0].Status != "FILLED" || orders[0].CummulativeQuoteQty != "500.00000000" {
		t.Errorf("unexpected order %+v", orders[0])
	}
	if len(*queries) != 1 {
		t.Fatalf("expected 1 request, got %d", len(*queries))
	}
	q := (*queries)[0]
	for _, want := range []string{"symbol=BTCUSDT", "startTime=500", "recvWindow=5000", "timestamp="} {
		if !strings.Contains(q, want) {
			t.Errorf("query %q missing %q", q, want)
		}
	}
}

func TestAllOrdersStartTimeInclusive(t *testing.T) {
	srv, _ := newFakeExchange(t, "secret", []fakeOrder{
		{Symbol: "BTCUSDT", OrderID: 1, ExecutedQty: "1", CummulativeQuoteQty: "1", Status: "FILLED", Time: 1000},
		{Symbol: "BTCUSDT", OrderID: 2, ExecutedQty: "1", CummulativeQuoteQty: "1", Status: "FILLED", Time: 2000},
	})
	client := NewOrderHistoryClient(NewAPIClient("key", "secret", Options{BaseURL: srv.URL}), 0)

	orders, err := client.AllOrders(context.Background(), "BTCUSDT", 2000)
	if err != nil {
		t.Fatalf("AllOrders failed: %v", err)
	}
	if len(orders) != 1 || orders[0].OrderID != 2 {
		t.Errorf("unexpected orders %+v", orders)
	}
}

func TestAllOrdersPaginates(t *testing.T) {
	var orders []fakeOrder
	for i := int64(1); i <= 5; i++ {
		orders = append(orders, fakeOrder{Symbol: "BTCUSDT", OrderID: i * 10, ExecutedQty: "1", CummulativeQuoteQty: "1", Status: "FILLED", Time: i * 1000})
	}
	srv, queries := newFakeExchange(t, "secret", orders)
	client := NewOrderHistoryClient(NewAPIClient("key", "secret", Options{BaseURL: srv.URL}), 2)

	got, err := client.AllOrders(context.Background(), "BTCUSDT", 0)
	if err != nil {
		t.Fatalf("AllOrders failed: %v", err)
	}

	if len(got) != 5 {
		t.Fatalf("expected 5 orders, got %d", len(got))
	}
	for i, o := range got {
		if o.OrderID != int64(i+1)*10 {
			t.Errorf("order %d id = %d", i, o.OrderID)
		}
	}
	if len(*queries) != 3 {
		t.Errorf("expected 3 pages, got %d", len(*queries))
	}
	if !strings.Contains((*queries)[1], "orderId=21") {
		t.Errorf("second page should continue from orderId 21, got %q", (*queries)[1])
	}
}

func TestAllOrdersNonOKIsAPIError(t *testing.T) {
	srv, _ := newFakeExchange(t, "secret", nil)
	client := NewOrderHistoryClient(NewAPIClient("wrong", "secret", Options{BaseURL: srv.URL}), 0)

	_, err := client.AllOrders(context.Background(), "BTCUSDT", 0)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", apiErr.StatusCode)
	}
	if !strings.Contains(apiErr.Body, "-2015") {
		t.Errorf("body = %q", apiErr.Body)
	}
}

func TestAllOrdersContextCanceled(t *testing.T) {
	srv, _ := newFakeExchange(t, "secret", nil)
	client := NewOrderHistoryClient(NewAPIClient("key", "secret", Options{BaseURL: srv.URL, RequestsPerSec: 1}), 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.AllOrders(ctx, "BTCUSDT", 0); err == nil {
		t.Errorf("expected error on canceled context")
	}
}
