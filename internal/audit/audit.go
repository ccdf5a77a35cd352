// Package audit 抓取运行中的站点，核对每个渲染出来的图片槽位是否真的能加载。
package audit

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/John-Robertt/vitrina/internal/assets"
	"github.com/John-Robertt/vitrina/internal/config"
	"github.com/John-Robertt/vitrina/internal/domain"
	"github.com/John-Robertt/vitrina/internal/i18n"
)

// Options 是一次审计的输入。
type Options struct {
	// Base 是站点根 URL，例如 http://127.0.0.1:8080。
	Base        string
	Concurrency int
	MaxPages    int
}

// OptionsFrom 从生效配置构造 Options；base 由 CLI 提供。
func OptionsFrom(eff config.EffectiveConfig, base string) Options {
	return Options{
		Base:        base,
		Concurrency: eff.AuditConcurrency,
		MaxPages:    eff.AuditMaxPages,
	}
}

func (o Options) workers() int {
	if o.Concurrency < 1 {
		return 1
	}
	return o.Concurrency
}

func (o Options) maxPages() int {
	if o.MaxPages < 1 {
		return config.DefaultMaxPages
	}
	return o.MaxPages
}

type pageOutcome struct {
	result domain.PageResult
	slots  []renderedSlot
	links  []string
}

// Execute 执行一次审计并返回对外稳定的 AuditReport。
// 单个页面/图片失败只降级为对应条目的失败，不影响其它条目。
func Execute(ctx context.Context, opts Options, client *http.Client, obs Observer) domain.AuditReport {
	if obs == nil {
		obs = nopObserver{}
	}
	if client == nil {
		client = http.DefaultClient
	}
	obs.OnStart(opts)

	rep := domain.AuditReport{
		Base:      strings.TrimRight(strings.TrimSpace(opts.Base), "/"),
		StartedAt: time.Now().UTC(),
	}

	base, err := url.Parse(rep.Base)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		rep.Pages = append(rep.Pages, domain.PageResult{
			URL:       rep.Base,
			Status:    domain.PageStatusFailed,
			ErrorCode: domain.ErrCodeConfigInvalid,
			ErrorMsg:  fmt.Sprintf("base 必须是 http/https 绝对 URL：%q", opts.Base),
		})
		rep.FinishedAt = time.Now().UTC()
		rep.Finalize()
		return rep
	}

	crawlStarted := time.Now()
	pages := crawl(ctx, base, opts, client, obs)
	var found []domain.SlotResult
	for _, p := range pages {
		rep.Pages = append(rep.Pages, p.result)
		for i, s := range p.slots {
			id := s.ID
			if id == "" {
				id = "#" + strconv.Itoa(i)
			}
			found = append(found, domain.SlotResult{Page: p.result.URL, Slot: id, State: s.State, Src: s.Src})
		}
	}
	obs.OnPhaseDone("crawl", map[string]any{
		"pages": len(rep.Pages),
		"slots": len(found),
	}, time.Since(crawlStarted))

	verifyStarted := time.Now()
	checker := assets.HTTPChecker{Client: client, BaseURL: rep.Base}
	imgErrs := verifyImages(ctx, checker, found, opts.workers())
	broken := 0
	for i := range found {
		classify(&found[i], imgErrs)
		if found[i].Status == domain.SlotBroken {
			broken++
		}
	}
	rep.Slots = found
	obs.OnPhaseDone("verify", map[string]any{
		"images": len(imgErrs),
		"broken": broken,
	}, time.Since(verifyStarted))

	rep.FinishedAt = time.Now().UTC()
	rep.Finalize()
	return rep
}

// crawl 按层广度优先抓取；同一层内页面并发抓取，最多 MaxPages 个页面。
func crawl(ctx context.Context, base *url.URL, opts Options, client *http.Client, obs Observer) []pageOutcome {
	limit := opts.maxPages()
	seen := make(map[string]bool)
	var frontier []string
	for _, l := range i18n.Supported {
		u := base.ResolveReference(&url.URL{Path: "/" + string(l) + "/"}).String()
		if !seen[u] {
			seen[u] = true
			frontier = append(frontier, u)
		}
	}

	var (
		mu   sync.Mutex
		out  []pageOutcome
		done int
	)
	for len(frontier) > 0 && len(out) < limit && ctx.Err() == nil {
		if room := limit - len(out); len(frontier) > room {
			frontier = frontier[:room]
		}

		level := make([]pageOutcome, len(frontier))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(opts.workers())
		for i, pageURL := range frontier {
			g.Go(func() error {
				started := time.Now()
				level[i] = visit(gctx, base, pageURL, client)
				mu.Lock()
				done++
				idx, known := done, len(seen)
				mu.Unlock()
				obs.OnPageDone(idx, known, level[i].result, time.Since(started))
				return nil
			})
		}
		_ = g.Wait()

		var next []string
		mu.Lock()
		for _, p := range level {
			out = append(out, p)
			for _, l := range p.links {
				if !seen[l] {
					seen[l] = true
					next = append(next, l)
				}
			}
		}
		mu.Unlock()
		frontier = next
	}
	return out
}

func visit(ctx context.Context, base *url.URL, pageURL string, client *http.Client) pageOutcome {
	res := domain.PageResult{URL: relative(base, pageURL), Status: domain.PageStatusOK}

	html, err := fetchPage(ctx, client, pageURL)
	if err != nil {
		res.Status = domain.PageStatusFailed
		res.ErrorCode = domain.ErrCodeFetchFailed
		res.ErrorMsg = err.Error()
		return pageOutcome{result: res}
	}
	page, err := url.Parse(pageURL)
	if err != nil {
		res.Status = domain.PageStatusFailed
		res.ErrorCode = domain.ErrCodeParseFailed
		res.ErrorMsg = err.Error()
		return pageOutcome{result: res}
	}
	parsed, err := parsePage(base, page, html)
	if err != nil {
		res.Status = domain.PageStatusFailed
		res.ErrorCode = domain.ErrCodeParseFailed
		res.ErrorMsg = err.Error()
		return pageOutcome{result: res}
	}
	res.Slots = len(parsed.Slots)
	return pageOutcome{result: res, slots: parsed.Slots, links: parsed.Links}
}

// relative 把站内 URL 缩短为 path?query，报告里更易读。
func relative(base *url.URL, raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host != base.Host {
		return raw
	}
	return u.RequestURI()
}

// verifyImages 对所有 image 槽位的 src 去重后用 worker pool 逐个核验。
// 返回 src -> 错误（nil 表示可加载）。
func verifyImages(ctx context.Context, checker assets.HTTPChecker, slots []domain.SlotResult, workers int) map[string]error {
	var srcs []string
	uniq := make(map[string]bool)
	for _, s := range slots {
		if s.State == "image" && s.Src != "" && !uniq[s.Src] {
			uniq[s.Src] = true
			srcs = append(srcs, s.Src)
		}
	}

	type result struct {
		src string
		err error
	}
	jobs := make(chan string)
	results := make(chan result, len(srcs))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for src := range jobs {
				results <- result{src: src, err: checker.Check(ctx, src)}
			}
		}()
	}
	go func() {
		for _, src := range srcs {
			jobs <- src
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	out := make(map[string]error, len(srcs))
	for r := range results {
		out[r.src] = r.err
	}
	return out
}

// classify 把渲染状态与核验结果合成最终的槽位状态。
func classify(s *domain.SlotResult, imgErrs map[string]error) {
	switch s.State {
	case "image":
		if s.Src == "" {
			s.Status = domain.SlotBroken
			s.ErrorCode = domain.ErrCodeParseFailed
			s.ErrorMsg = "img 缺少 src"
			return
		}
		if err := imgErrs[s.Src]; err != nil {
			s.Status = domain.SlotBroken
			s.ErrorCode = domain.ErrCodeImageFailed
			s.ErrorMsg = err.Error()
			return
		}
		s.Status = domain.SlotDisplayed
	case "placeholder":
		if s.Src != "" {
			s.Status = domain.SlotBroken
			s.ErrorCode = domain.ErrCodeParseFailed
			s.ErrorMsg = "占位面板不应渲染 img"
			return
		}
		s.Status = domain.SlotPlaceholder
	case "loading":
		s.Status = domain.SlotLoading
	default:
		s.Status = domain.SlotBroken
		s.ErrorCode = domain.ErrCodeParseFailed
		s.ErrorMsg = fmt.Sprintf("未知 data-state：%q", s.State)
	}
}
