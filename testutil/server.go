package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
)

// CapturedRequest 记录测试服务器收到的最后一个请求
type CapturedRequest struct {
	mu       sync.Mutex
	method   string
	path     string
	rawQuery string
	header   http.Header
	body     []byte
	hits     atomic.Int64
}

func (c *CapturedRequest) record(r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	c.mu.Lock()
	c.method = r.Method
	c.path = r.URL.Path
	c.rawQuery = r.URL.RawQuery
	c.header = r.Header.Clone()
	c.body = body
	c.mu.Unlock()
	c.hits.Add(1)
}

// Hits 返回收到的请求数
func (c *CapturedRequest) Hits() int { return int(c.hits.Load()) }

// Method 返回请求方法
func (c *CapturedRequest) Method() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.method
}

// Path 返回请求路径
func (c *CapturedRequest) Path() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.path
}

// Query 返回原始查询串
func (c *CapturedRequest) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rawQuery
}

// Header 返回请求头
func (c *CapturedRequest) Header() http.Header {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.header
}

// Body 返回请求体
func (c *CapturedRequest) Body() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.body
}

// JSONServer 启动返回固定状态码与响应体的服务器
func JSONServer(t *testing.T, status int, body string, headers map[string]string) (*httptest.Server, *CapturedRequest) {
	t.Helper()
	captured := &CapturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.record(r)
		for k, v := range headers {
			w.Header().Set(k, v)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

// SSEServer 启动按给定分块写出并逐块 flush 的流式服务器.
// 分块原样写出, 不会补充换行, 便于测试跨块拆分的行.
func SSEServer(t *testing.T, chunks []string) (*httptest.Server, *CapturedRequest) {
	t.Helper()
	captured := &CapturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.record(r)
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		flusher, _ := w.(http.Flusher)
		for _, chunk := range chunks {
			_, _ = io.WriteString(w, chunk)
			if flusher != nil {
				flusher.Flush()
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

// HangingSSEServer 写出 chunks 后一直挂起, 直到客户端断开.
func HangingSSEServer(t *testing.T, chunks []string) (*httptest.Server, *CapturedRequest) {
	t.Helper()
	captured := &CapturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.record(r)
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		flusher, _ := w.(http.Flusher)
		for _, chunk := range chunks {
			_, _ = io.WriteString(w, chunk)
			if flusher != nil {
				flusher.Flush()
			}
		}
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}
