package main

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/John-Robertt/vitrina/internal/audit"
	"github.com/John-Robertt/vitrina/internal/domain"
)

var _ audit.Observer = (*progressUI)(nil)

// progressUI 是审计过程的终端进度输出。
//
// 所有过程信息写到 stderr，stdout 只留给 AuditReport JSON。
// 长时间没有页面完成时，ticker 会定期补一行进度。
type progressUI struct {
	w io.Writer

	mu          sync.Mutex
	startedAt   time.Time
	lastPrinted time.Time

	done  int
	known int
	fail  int
	slots int

	keepaliveThreshold time.Duration
	tickerInterval     time.Duration

	stopCh        chan struct{}
	tickerStarted bool
}

func newProgressUI(w io.Writer) *progressUI {
	return &progressUI{
		w:                  w,
		keepaliveThreshold: 6 * time.Second,
		tickerInterval:     2 * time.Second,
	}
}

func (p *progressUI) OnStart(opts audit.Options) {
	now := time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.startedAt.IsZero() {
		p.startedAt = now
	}

	fmt.Fprintf(p.w, "[%s] vitrina audit\n", now.Format("15:04:05"))
	fmt.Fprintln(p.w, "配置（生效）:")
	fmt.Fprintf(p.w, "  base: %s\n", formatBase(opts.Base))
	fmt.Fprintf(p.w, "  concurrency: %d\n", opts.Concurrency)
	fmt.Fprintf(p.w, "  max_pages: %d\n", opts.MaxPages)
	fmt.Fprintln(p.w)

	p.lastPrinted = time.Now()
	if !p.tickerStarted {
		p.startTickerLocked()
	}
}

func (p *progressUI) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch name {
	case "crawl":
		p.stopTickerLocked()
		fmt.Fprintf(p.w, "抓取: pages=%d slots=%d (%s)\n",
			intField(fields, "pages"), intField(fields, "slots"), formatShortDuration(dur),
		)
	case "verify":
		fmt.Fprintf(p.w, "核验: images=%d broken=%d (%s)\n",
			intField(fields, "images"), intField(fields, "broken"), formatShortDuration(dur),
		)
	default:
		fmt.Fprintf(p.w, "%s (%s)\n", name, formatShortDuration(dur))
	}
	p.lastPrinted = time.Now()
}

func (p *progressUI) OnPageDone(idx, known int, page domain.PageResult, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done = idx
	p.known = known
	p.slots += page.Slots

	if page.Status == domain.PageStatusFailed {
		p.fail++
		fmt.Fprintf(p.w, "[%d/%d] %s FAIL %s: %s (%s)\n",
			idx, known, page.URL, page.ErrorCode, truncate(page.ErrorMsg, 160), formatShortDuration(dur),
		)
	} else {
		fmt.Fprintf(p.w, "[%d/%d] %s OK slots=%d (%s)\n",
			idx, known, page.URL, page.Slots, formatShortDuration(dur),
		)
	}
	p.lastPrinted = time.Now()
}

func (p *progressUI) startTickerLocked() {
	p.stopCh = make(chan struct{})
	p.tickerStarted = true

	interval := p.tickerInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	threshold := p.keepaliveThreshold
	if threshold <= 0 {
		threshold = 6 * time.Second
	}
	stopCh := p.stopCh

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-t.C:
				p.mu.Lock()
				if time.Since(p.lastPrinted) > threshold {
					fmt.Fprintf(p.w, "进度: pages=%d/%d fail=%d slots=%d elapsed=%s\n",
						p.done, p.known, p.fail, p.slots, formatElapsed(time.Since(p.startedAt)),
					)
					p.lastPrinted = time.Now()
				}
				p.mu.Unlock()
			case <-stopCh:
				return
			}
		}
	}()
}

func (p *progressUI) stopTickerLocked() {
	if p.tickerStarted {
		close(p.stopCh)
		p.tickerStarted = false
	}
}

// Close 停止 keepalive ticker（crawl 阶段没有正常结束时也要调用）。
func (p *progressUI) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopTickerLocked()
}

// formatBase 隐去 base 里的账号信息。
func formatBase(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return truncate(raw, 120)
	}
	if u.User == nil {
		return u.String()
	}
	// url.User 会转义 '*'，这里手工拼出打码后的前缀。
	u.User = nil
	return strings.Replace(u.String(), "://", "://***@", 1)
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	sec := int(d.Seconds())
	h := sec / 3600
	m := (sec % 3600) / 60
	s := sec % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func intField(fields map[string]any, key string) int {
	if fields == nil {
		return 0
	}
	switch x := fields[key].(type) {
	case int:
		return x
	case int64:
		return int(x)
	case uint64:
		return int(x)
	default:
		return 0
	}
}
