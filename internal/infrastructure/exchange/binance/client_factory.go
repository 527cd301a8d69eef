package binance

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const DefaultBaseURL = "https://api.binance.com"

// ===== Credentials 凭证 =====

// Credentials 包含 API 凭证和签名方法
type Credentials struct {
	apiKey    string
	apiSecret string
}

// NewCredentials 创建凭证对象
func NewCredentials(apiKey, apiSecret string) *Credentials {
	return &Credentials{
		apiKey:    apiKey,
		apiSecret: apiSecret,
	}
}

// Sign 生成 HMAC-SHA256 签名
func (c *Credentials) Sign(data string) string {
	h := hmac.New(sha256.New, []byte(c.apiSecret))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

// APIKey 返回 API Key
func (c *Credentials) APIKey() string {
	return c.apiKey
}

// Options 现货 REST 客户端参数
type Options struct {
	BaseURL        string
	RecvWindow     int
	Timeout        time.Duration
	RequestsPerSec float64 // <= 0 disables pacing
	PageSize       int
}

type APIClient struct {
	credentials *Credentials
	httpClient  *http.Client
	limiter     *rate.Limiter
	baseURL     string
	recvWindow  int
}

// NewAPIClient 创建共享 HTTP 连接与凭证的客户端
func NewAPIClient(apiKey, apiSecret string, opts Options) *APIClient {
	baseURL := strings.TrimSpace(opts.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	recvWindow := opts.RecvWindow
	if recvWindow <= 0 {
		recvWindow = 5000
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSec), 1)
	}

	return &APIClient{
		credentials: NewCredentials(apiKey, apiSecret),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter:    limiter,
		baseURL:    baseURL,
		recvWindow: recvWindow,
	}
}

// SpotManager Binance 现货统一管理器
type SpotManager struct {
	Orders *OrderHistoryClient
}

// NewSpotManager 通过一组凭证创建现货 manager
func NewSpotManager(apiKey, apiSecret string, opts Options) *SpotManager {
	apiClient := NewAPIClient(apiKey, apiSecret, opts)
	return &SpotManager{
		Orders: NewOrderHistoryClient(apiClient, opts.PageSize),
	}
}
