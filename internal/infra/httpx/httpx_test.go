package httpx

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewCrawlClient_ProxyDisablesKeepAlive(t *testing.T) {
	c, err := NewCrawlClient("http://127.0.0.1:8080")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	tr, ok := c.Transport.(*Transport)
	if !ok {
		t.Fatalf("期望 *Transport，实际 %T", c.Transport)
	}
	if tr.Base.Proxy == nil {
		t.Fatalf("期望启用代理，但 Proxy=nil")
	}
	if !tr.Base.DisableKeepAlives || !tr.DisableKeepAlives {
		t.Fatalf("代理模式应禁用 keep-alive")
	}
	if tr.RetryMax != defaultCrawlRetry {
		t.Fatalf("抓取 client 应保留有界重试，实际 RetryMax=%d", tr.RetryMax)
	}
}

func TestNewCrawlClient_InvalidProxyURL(t *testing.T) {
	if _, err := NewCrawlClient("http://[::1"); err == nil {
		t.Fatalf("期望错误，但得到 nil")
	}
}

func TestNewProbeClient_NoRetry(t *testing.T) {
	c := NewProbeClient(time.Second)
	tr := c.Transport.(*Transport)
	if tr.RetryMax != 0 {
		t.Fatalf("探测 client 不应重试，实际 RetryMax=%d", tr.RetryMax)
	}
	if tr.Base.Proxy != nil {
		t.Fatalf("探测 client 不应走代理")
	}
	if c.Timeout != 2*time.Second {
		t.Fatalf("兜底超时应为 2 倍，实际 %s", c.Timeout)
	}
}

func TestTransport_SetsUserAgentAndDoesNotRetryStatus(t *testing.T) {
	var hits int32
	var gotUA atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		gotUA.Store(r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c, err := NewCrawlClient("")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	resp, err := c.Get(srv.URL + "/x.jpg")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("期望 404，实际 %d", resp.StatusCode)
	}
	// 重试只针对传输层错误：HTTP 404 不重试。
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("期望 1 次请求，实际 %d", n)
	}
	if ua, _ := gotUA.Load().(string); ua != UserAgent {
		t.Fatalf("UA 不符合预期：%q", ua)
	}
}
