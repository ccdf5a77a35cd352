package audit

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/vitrina/internal/assets"
	"github.com/John-Robertt/vitrina/internal/i18n"
)

const maxPageBytes = 4 << 20

// renderedSlot 是页面上一个 figure.slot 的解析结果。
type renderedSlot struct {
	ID    string
	State string
	Src   string
}

type parsedPage struct {
	Links []string
	Slots []renderedSlot
}

// fetchPage 抓取 HTML 页面；非 2xx 返回 *assets.StatusError。
func fetchPage(ctx context.Context, c *http.Client, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html")
	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &assets.StatusError{URL: pageURL, StatusCode: resp.StatusCode}
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if mt, _, err := mime.ParseMediaType(ct); err == nil && mt != "text/html" {
			return nil, fmt.Errorf("不是 HTML 页面：%s", mt)
		}
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
}

// parsePage 用 goquery 提取同源站内链接与全部图片槽位。
func parsePage(base, page *url.URL, html []byte) (parsedPage, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return parsedPage{}, err
	}

	var out parsedPage
	seen := make(map[string]bool)
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if u, ok := normalizeLink(base, page, href); ok && !seen[u] {
			seen[u] = true
			out.Links = append(out.Links, u)
		}
	})

	doc.Find("figure.slot").Each(func(_ int, s *goquery.Selection) {
		rs := renderedSlot{
			ID:    strings.TrimSpace(s.AttrOr("data-slot", "")),
			State: strings.TrimSpace(s.AttrOr("data-state", "")),
		}
		if img := s.Find("img").First(); img.Length() > 0 {
			rs.Src = strings.TrimSpace(img.AttrOr("src", ""))
		}
		out.Slots = append(out.Slots, rs)
	})
	return out, nil
}

// normalizeLink 只保留同源、位于语言前缀下的页面链接。
// 查询串只保留 slide（轮播的每一张都是独立可审计的页面状态），灯箱/按键参数丢弃。
func normalizeLink(base, page *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}
	u, err := page.Parse(href)
	if err != nil {
		return "", false
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host != base.Host {
		return "", false
	}
	if !underLangPrefix(u.Path) {
		return "", false
	}

	slide := u.Query().Get("slide")
	u.RawQuery = ""
	u.Fragment = ""
	u.RawFragment = ""
	if slide != "" && slide != "0" {
		u.RawQuery = "slide=" + url.QueryEscape(slide)
	}
	return u.String(), true
}

func underLangPrefix(p string) bool {
	for _, l := range i18n.Supported {
		if strings.HasPrefix(p, "/"+string(l)+"/") {
			return true
		}
	}
	return false
}
