package httpx

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultCrawlTimeout = 20 * time.Second
	defaultCrawlRetry   = 2

	// UserAgent 标识本工具发出的请求，便于在访问日志中过滤掉 audit 流量。
	UserAgent = "vitrina-audit/1.0 (+https://github.com/John-Robertt/vitrina)"
)

// Transport 把"UA + keep-alive 策略 + 有界重试"固化为统一策略。
//
// 上层（crawler / checker）只负责"请求什么 + 如何判定结果"，不关心网络策略细节。
type Transport struct {
	Base *http.Transport

	UserAgent string

	// RetryMax 表示最大重试次数（不含首次尝试）。探测客户端必须为 0：
	// 同一候选在一次挂载周期内不重试。
	RetryMax int

	// DisableKeepAlives 决定是否对 Request 设置 Close=true（额外保险）。
	DisableKeepAlives bool
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	if t.Base == nil {
		return nil, errors.New("nil base transport")
	}

	// 只对"可重放"的请求做重试：GET/HEAD 且无 body。
	canRetry := (req.Method == http.MethodGet || req.Method == http.MethodHead) && req.Body == nil
	max := t.RetryMax
	if max < 0 || !canRetry {
		max = 0
	}

	var lastErr error
	for attempt := 0; attempt <= max; attempt++ {
		r := req.Clone(req.Context())
		if r.Header.Get("User-Agent") == "" && t.UserAgent != "" {
			r.Header.Set("User-Agent", t.UserAgent)
		}
		if t.DisableKeepAlives {
			r.Close = true
		}

		resp, err := t.Base.RoundTrip(r)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if req.Context().Err() != nil {
			// ctx 已取消/超时：不再重试。
			return nil, lastErr
		}
	}
	return nil, lastErr
}

// NewCrawlClient 构造 audit 抓取页面用的 client。
//
// 规则：
// - proxyURL 非空：走代理，且禁用 keep-alive
// - 有界重试（仅传输层错误，不看状态码）+ 总超时
func NewCrawlClient(proxyURL string) (*http.Client, error) {
	base, disableKA, err := newBase(strings.TrimSpace(proxyURL))
	if err != nil {
		return nil, err
	}
	return &http.Client{
		Transport: &Transport{
			Base:              base,
			UserAgent:         UserAgent,
			RetryMax:          defaultCrawlRetry,
			DisableKeepAlives: disableKA,
		},
		Timeout: defaultCrawlTimeout,
	}, nil
}

// NewProbeClient 构造候选图片探测用的 client。
//
// 规则：
// - 不重试（失败即换下一个候选）
// - 不跟随重定向之外的任何"聪明"处理；单次等待上限由调用方 ctx 控制，
//   client.Timeout 只是兜底（取 2 倍 timeout）
func NewProbeClient(timeout time.Duration) *http.Client {
	base, _, _ := newBase("")
	base.MaxIdleConnsPerHost = 8
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &http.Client{
		Transport: &Transport{
			Base:      base,
			UserAgent: UserAgent,
			RetryMax:  0,
		},
		Timeout: 2 * timeout,
	}
}

func newBase(proxyURL string) (*http.Transport, bool, error) {
	base := &http.Transport{
		Proxy:                 nil,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
	}
	if proxyURL == "" {
		return base, false, nil
	}
	u, err := url.Parse(proxyURL)
	if err != nil {
		return nil, false, err
	}
	base.Proxy = http.ProxyURL(u)
	// proxy 模式强制每请求新连接。
	base.DisableKeepAlives = true
	return base, true, nil
}
