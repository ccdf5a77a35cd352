package web

import (
	"context"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/John-Robertt/vitrina/internal/carousel"
	"github.com/John-Robertt/vitrina/internal/domain"
	"github.com/John-Robertt/vitrina/internal/i18n"
	"github.com/John-Robertt/vitrina/internal/probe"
	"github.com/John-Robertt/vitrina/internal/resolve"
)

const staticPrefix = "/static"

// slotView 是模板里的一个 figure.slot。
type slotView struct {
	ID     string
	Policy string
	State  string
	Src    string
	Alt    string
	// 占位面板 / loading 的文案；不包含任何文件路径。
	Title    string
	Subtitle string

	machine *probe.Machine
	ph      probe.Placeholder
}

func (v *slotView) apply(d probe.Display) {
	v.State = d.Kind.String()
	v.Src = ""
	switch d.Kind {
	case probe.DisplayImage:
		v.Src = staticPrefix + d.Src
	case probe.DisplayPlaceholder:
		v.Title = d.Placeholder.Title
		v.Subtitle = d.Placeholder.Subtitle
	}
}

// newSlot 为 policy 下的单个 Location 建立槽位（卡片 / 横幅用）。
func (s *Server) newSlot(id string, policy domain.SlotPolicy, loc domain.Location, lang i18n.Lang, alt string) *slotView {
	return s.slotFor(id, policy, probe.New(s.cache.Resolve(loc)), lang, alt)
}

func (s *Server) slotFor(id string, policy domain.SlotPolicy, m *probe.Machine, lang i18n.Lang, alt string) *slotView {
	return &slotView{
		ID:       id,
		Policy:   policy.String(),
		State:    probe.DisplayLoading.String(),
		Alt:      alt,
		Subtitle: i18n.T(lang, "image.loading"),
		machine:  m,
		ph:       probe.Placeholder{Title: alt, Subtitle: i18n.T(lang, "image.pending")},
	}
}

func (s *Server) heroSlot(id, base string, lang i18n.Lang, alt string) *slotView {
	return s.newSlot(id, domain.PolicyHero, resolve.ForPolicy(domain.PolicyHero, base, 0)[0], lang, alt)
}

func (s *Server) cardSlot(id, base string, count int, lang i18n.Lang, alt string) *slotView {
	return s.newSlot(id, domain.PolicyCard, resolve.ForPolicy(domain.PolicyCard, base, s.galleryCount(count))[0], lang, alt)
}

func (s *Server) galleryCount(n int) int {
	if n < 0 {
		return 0
	}
	if n > s.cfg.GalleryMax {
		return s.cfg.GalleryMax
	}
	return n
}

// probeAll 并发探测一个页面的全部槽位；每个槽位内部严格顺序。
// ctx 结束时尚未定论的槽位保持 loading。
func (s *Server) probeAll(ctx context.Context, slots ...*slotView) {
	g, gctx := errgroup.WithContext(ctx)
	for _, v := range slots {
		if v == nil || v.machine == nil {
			continue
		}
		g.Go(func() error {
			snap := s.prober.Run(gctx, v.machine)
			v.apply(probe.View(snap, v.ph))
			return nil
		})
	}
	_ = g.Wait()
}

type dotView struct {
	URL    string
	Label  string
	Active bool
}

// carouselView 是详情轮播的视图。控制条与图片是兄弟节点，永不嵌在链接里。
type carouselView struct {
	ID         string
	Slot       *slotView
	Index      int
	Len        int
	NavEnabled bool
	Lightbox   bool
	Position   string
	PrevURL    string
	NextURL    string
	OpenURL    string
	CloseURL   string
	KeyURL     string
	PrevLabel  string
	NextLabel  string
	OpenLabel  string
	CloseLabel string
	Dots       []dotView
}

// carouselQuery 是详情轮播的 URL 状态：?slide=N&lightbox=1&key=K。
type carouselQuery struct {
	Slide    int
	Lightbox bool
	Key      string
}

func parseCarouselQuery(q map[string][]string) carouselQuery {
	get := func(k string) string {
		if v := q[k]; len(v) > 0 {
			return v[0]
		}
		return ""
	}
	cq := carouselQuery{Key: get("key")}
	if n, err := strconv.Atoi(get("slide")); err == nil {
		cq.Slide = n
	}
	cq.Lightbox = get("lightbox") == "1"
	return cq
}

func slideURL(base string, i int, lightbox bool) string {
	u := base + "?slide=" + strconv.Itoa(i)
	if lightbox {
		u += "&lightbox=1"
	}
	return u
}

// buildCarousel 按 URL 状态恢复轮播。返回的 redirect 非空时表示按键被处理，
// 调用方应跳转到规范化后的 URL。
func (s *Server) buildCarousel(id, base string, locs []domain.Location, q carouselQuery, lang i18n.Lang, alt string) (*carouselView, string) {
	c := carousel.New(locs, s.cache.Resolve)
	c.Select(q.Slide)
	if q.Lightbox {
		c.Open()
	}
	if q.Key != "" {
		c.HandleKey(q.Key)
		return nil, slideURL(base, c.ActiveIndex(), c.IsOpen())
	}

	active := c.Active()
	if active == nil {
		return nil, ""
	}
	idx := c.ActiveIndex()
	cv := &carouselView{
		ID:         id,
		Slot:       s.slotFor(id+"-"+strconv.Itoa(idx), domain.PolicyDetail, active.Probe, lang, alt),
		Index:      idx,
		Len:        c.Len(),
		NavEnabled: c.NavEnabled(),
		Lightbox:   c.IsOpen(),
		Position:   i18n.T(lang, "carousel.position", idx+1, c.Len()),
		PrevURL:    slideURL(base, c.Neighbor(carousel.Prev), c.IsOpen()),
		NextURL:    slideURL(base, c.Neighbor(carousel.Next), c.IsOpen()),
		OpenURL:    slideURL(base, idx, true),
		CloseURL:   slideURL(base, idx, false),
		KeyURL:     slideURL(base, idx, true),
		PrevLabel:  i18n.T(lang, "carousel.prev"),
		NextLabel:  i18n.T(lang, "carousel.next"),
		OpenLabel:  i18n.T(lang, "carousel.open"),
		CloseLabel: i18n.T(lang, "carousel.close"),
	}
	if cv.NavEnabled {
		cv.Dots = make([]dotView, c.Len())
		for i := range cv.Dots {
			cv.Dots[i] = dotView{URL: slideURL(base, i, c.IsOpen()), Label: strconv.Itoa(i + 1), Active: i == idx}
		}
	}
	return cv, ""
}
