package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// 集成测试辅助工具
// 需要完整环境(MySQL/Redis/RabbitMQ/Elasticsearch + 三个服务进程),
// 通过环境变量BOOKMARKET_IT=1开启,否则跳过

const (
	// Timeout HTTP请求超时时间
	Timeout = 10 * time.Second

	// ConvergeTimeout 事件管道收敛等待上限(发布→消费→落库)
	ConvergeTimeout = 15 * time.Second
)

// 三个服务的基础URL,可通过环境变量覆盖
func warehouseURL() string { return envOr("BOOKMARKET_WAREHOUSE_URL", "http://localhost:8080") }
func orderURL() string     { return envOr("BOOKMARKET_ORDER_URL", "http://localhost:8081") }
func searchURL() string    { return envOr("BOOKMARKET_SEARCH_URL", "http://localhost:8082") }

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// RequireStack 环境未就绪时跳过测试
func RequireStack(t *testing.T) {
	t.Helper()
	if os.Getenv("BOOKMARKET_IT") == "" {
		t.Skip("设置BOOKMARKET_IT=1并启动完整环境后运行集成测试")
	}
}

// Response 统一响应结构
type Response struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// BookData 图书响应数据
type BookData struct {
	ISBN       string        `json:"isbn"`
	Title      string        `json:"title"`
	TotalStock int           `json:"total_stock"`
	Listings   []ListingData `json:"listings"`
}

// ListingData 挂单响应数据
type ListingData struct {
	ID    string `json:"id"`
	Stock int    `json:"stock"`
}

// OrderData 订单响应数据
type OrderData struct {
	OrderID        string `json:"order_id"`
	ISBN           string `json:"isbn"`
	PurchaseAmount int    `json:"purchase_amount"`
	TotalPrice     int64  `json:"total_price"`
}

// SearchData 检索响应数据
type SearchData struct {
	Total int64 `json:"total"`
	Books []struct {
		ISBN              string `json:"isbn"`
		Title             string `json:"title"`
		QuantityAvailable int    `json:"quantity_available"`
	} `json:"books"`
}

// PostJSON 发送POST请求并解析统一响应
func PostJSON(t *testing.T, url string, data interface{}) *Response {
	t.Helper()
	jsonData, err := json.Marshal(data)
	require.NoError(t, err, "JSON序列化失败")

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	require.NoError(t, err, "创建HTTP请求失败")
	req.Header.Set("Content-Type", "application/json")

	return doRequest(t, req)
}

// GetJSON 发送GET请求并解析统一响应
func GetJSON(t *testing.T, url string) *Response {
	t.Helper()
	req, err := http.NewRequest("GET", url, nil)
	require.NoError(t, err, "创建HTTP请求失败")

	return doRequest(t, req)
}

// DeleteJSON 发送DELETE请求并解析统一响应
func DeleteJSON(t *testing.T, url string) *Response {
	t.Helper()
	req, err := http.NewRequest("DELETE", url, nil)
	require.NoError(t, err, "创建HTTP请求失败")

	return doRequest(t, req)
}

func doRequest(t *testing.T, req *http.Request) *Response {
	t.Helper()
	client := &http.Client{Timeout: Timeout}
	resp, err := client.Do(req)
	require.NoError(t, err, "发送HTTP请求失败")
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取响应体失败")

	var result Response
	err = json.Unmarshal(body, &result)
	require.NoError(t, err, "解析JSON响应失败: %s", string(body))

	return &result
}

// GenerateTestISBN 生成唯一的测试ISBN(978 + 时间戳后10位)
func GenerateTestISBN() string {
	return fmt.Sprintf("978%010d", time.Now().UnixNano()%10000000000)
}

// Eventually 轮询直到条件满足或超时
// 事件管道是异步的,断言前需要等待收敛
func Eventually(t *testing.T, timeout time.Duration, msg string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("等待超时: %s", msg)
}
