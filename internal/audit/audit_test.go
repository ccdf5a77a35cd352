package audit

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/John-Robertt/vitrina/internal/content"
	"github.com/John-Robertt/vitrina/internal/domain"
	"github.com/John-Robertt/vitrina/internal/web"
)

type recordObserver struct {
	mu sync.Mutex

	startCalls int
	phases     []string
	pages      []string
}

func (o *recordObserver) OnStart(Options) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.startCalls++
}

func (o *recordObserver) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.phases = append(o.phases, name)
}

func (o *recordObserver) OnPageDone(idx, known int, page domain.PageResult, dur time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pages = append(o.pages, page.URL)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("encode png 失败：%v", err)
	}
	return buf.Bytes()
}

const esHome = `<!DOCTYPE html><html><body>
<a href="/es/p2">p2</a>
<a href="/es/p2?slide=0&amp;lightbox=1#top">p2 again</a>
<a href="https://other.test/es/x">external</a>
<a href="/static/ok.png">asset</a>
<a href="#top">top</a>
<a href="/en/missing">missing</a>
<figure class="slot" data-slot="hero" data-state="image"><img src="/static/ok.png" alt=""></figure>
<figure class="slot" data-slot="card-1" data-state="image"><img src="/static/missing.png" alt=""></figure>
<figure class="slot" data-slot="card-2" data-state="placeholder"><div class="placeholder">x</div></figure>
<figure class="slot" data-slot="card-3" data-state="loading"><div class="loading">…</div></figure>
<figure class="slot" data-slot="card-10" data-state="placeholder"><img src="/static/ok.png"></figure>
</body></html>`

const enHome = `<!DOCTYPE html><html><body>
<a href="/es/">es</a>
<figure class="slot" data-slot="hero" data-state="image"><img src="/static/ok.png" alt=""></figure>
</body></html>`

const p2 = `<!DOCTYPE html><html><body>
<a href="/es/p2?slide=2&amp;lightbox=1">next</a>
<figure class="slot" data-slot="slide" data-state="image"><img src="/static/soft.jpg" alt=""></figure>
</body></html>`

func fakeSite(t *testing.T) *httptest.Server {
	img := pngBytes(t)
	mux := http.NewServeMux()
	html := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(body))
		}
	}
	mux.HandleFunc("/es/{$}", html(esHome))
	mux.HandleFunc("/en/{$}", html(enHome))
	mux.HandleFunc("/es/p2", html(p2))
	mux.HandleFunc("/static/ok.png", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write(img) })
	// 软 404：200 + HTML。
	mux.HandleFunc("/static/soft.jpg", html("<html>gone</html>"))
	mux.HandleFunc("/", http.NotFound)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestExecute_ClassifiesSlots(t *testing.T) {
	srv := fakeSite(t)
	obs := &recordObserver{}

	rep := Execute(context.Background(), Options{Base: srv.URL + "/", Concurrency: 3, MaxPages: 50}, srv.Client(), obs)

	if rep.Base != srv.URL {
		t.Fatalf("base 应去掉末尾 /，实际 %q", rep.Base)
	}
	var gotPages []string
	for _, p := range rep.Pages {
		gotPages = append(gotPages, p.URL)
	}
	wantPages := []string{"/en/", "/en/missing", "/es/", "/es/p2", "/es/p2?slide=2"}
	if diff := cmp.Diff(wantPages, gotPages); diff != "" {
		t.Fatalf("页面列表不符合预期 (-want +got):\n%s", diff)
	}
	if rep.Pages[1].Status != domain.PageStatusFailed || rep.Pages[1].ErrorCode != domain.ErrCodeFetchFailed {
		t.Fatalf("404 页面应记为 fetch_failed，实际 %+v", rep.Pages[1])
	}

	want := domain.AuditSummary{Pages: 5, PagesFailed: 1, Slots: 8, Displayed: 2, Placeholder: 1, Loading: 1, Broken: 4}
	if diff := cmp.Diff(want, rep.Summary); diff != "" {
		t.Fatalf("summary 不符合预期 (-want +got):\n%s", diff)
	}

	// 自然序：card-2 在 card-10 之前。
	var esSlots []string
	for _, s := range rep.Slots {
		if s.Page == "/es/" {
			esSlots = append(esSlots, s.Slot+":"+s.Status)
		}
	}
	wantES := []string{"card-1:broken", "card-2:placeholder", "card-3:loading", "card-10:broken", "hero:displayed"}
	if diff := cmp.Diff(wantES, esSlots); diff != "" {
		t.Fatalf("/es/ 槽位不符合预期 (-want +got):\n%s", diff)
	}

	if obs.startCalls != 1 {
		t.Fatalf("OnStart 应调用 1 次，实际 %d", obs.startCalls)
	}
	if diff := cmp.Diff([]string{"crawl", "verify"}, obs.phases); diff != "" {
		t.Fatalf("阶段事件不符合预期 (-want +got):\n%s", diff)
	}
	if len(obs.pages) != len(rep.Pages) {
		t.Fatalf("OnPageDone 次数应等于页面数：%d != %d", len(obs.pages), len(rep.Pages))
	}
}

func TestExecute_MaxPages(t *testing.T) {
	srv := fakeSite(t)
	rep := Execute(context.Background(), Options{Base: srv.URL, MaxPages: 1}, srv.Client(), nil)
	if len(rep.Pages) != 1 || rep.Pages[0].URL != "/es/" {
		t.Fatalf("期望只抓取 /es/，实际 %+v", rep.Pages)
	}
}

func TestExecute_InvalidBase(t *testing.T) {
	rep := Execute(context.Background(), Options{Base: "localhost:8080"}, nil, nil)
	if rep.Summary.PagesFailed != 1 || rep.Pages[0].ErrorCode != domain.ErrCodeConfigInvalid {
		t.Fatalf("非法 base 应得到 config_invalid，实际 %+v", rep.Pages)
	}
}

func TestNormalizeLink(t *testing.T) {
	srv := fakeSite(t)
	base := mustParse(t, srv.URL)
	page := mustParse(t, srv.URL+"/es/divisions/aquaculture")

	cases := map[string]string{
		"paddle-aerators":                   srv.URL + "/es/divisions/paddle-aerators",
		"/en/about?lightbox=1&key=Escape":   srv.URL + "/en/about",
		"/en/about?slide=3&lightbox=1#frag": srv.URL + "/en/about?slide=3",
		"/es/divisions/aquaculture?slide=0": srv.URL + "/es/divisions/aquaculture",
	}
	for in, want := range cases {
		got, ok := normalizeLink(base, page, in)
		if !ok || got != want {
			t.Fatalf("normalizeLink(%q)=%q,%v 期望 %q", in, got, ok, want)
		}
	}
	for _, in := range []string{"", "#x", "/static/a.png", "/fr/", "https://evil.test/es/", "mailto:a@b.c"} {
		if got, ok := normalizeLink(base, page, in); ok {
			t.Fatalf("normalizeLink(%q) 应被过滤，实际 %q", in, got)
		}
	}
}

func TestExecute_AgainstRenderedSite(t *testing.T) {
	site, err := content.Default()
	if err != nil {
		t.Fatalf("内置内容应合法：%v", err)
	}
	img := pngBytes(t)
	fsys := fstest.MapFS{
		"img/home/hero.png":                        {Data: img},
		"img/aquaculture/01.png":                   {Data: img},
		"img/aquaculture/paddle-aerators/hero.jpg": {Data: []byte("nope")},
		"img/aquaculture/paddle-aerators/hero.png": {Data: img},
		"img/aquaculture/paddle-aerators/01.png":   {Data: img},
		"img/about/3.png":                          {Data: img},
	}
	s, err := web.New(web.Options{Content: content.NewStore(site), Assets: fsys})
	if err != nil {
		t.Fatalf("构造站点失败：%v", err)
	}
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	rep := Execute(context.Background(), Options{Base: srv.URL, Concurrency: 4, MaxPages: 1000}, srv.Client(), nil)

	if rep.Summary.PagesFailed != 0 {
		t.Fatalf("不期望失败页面：%+v", rep.Pages)
	}
	if rep.Summary.Broken != 0 {
		for _, sl := range rep.Slots {
			if sl.Status == domain.SlotBroken {
				t.Errorf("broken 槽位：%+v", sl)
			}
		}
		t.Fatalf("渲染出来的图片都应可加载，broken=%d", rep.Summary.Broken)
	}
	if rep.Summary.Displayed == 0 || rep.Summary.Placeholder == 0 {
		t.Fatalf("期望同时存在图片与占位，实际 %+v", rep.Summary)
	}
	if rep.Summary.Loading != 0 {
		t.Fatalf("本地资源探测不应留下 loading，实际 %d", rep.Summary.Loading)
	}

	var aboutSlide3 bool
	for _, sl := range rep.Slots {
		if sl.Page == "/es/about?slide=3" && sl.Src == "/static/img/about/3.png" && sl.Status == domain.SlotDisplayed {
			aboutSlide3 = true
		}
	}
	if !aboutSlide3 {
		t.Fatalf("应通过轮播链接抓到 /es/about?slide=3 的图片")
	}
}

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("解析 URL 失败：%v", err)
	}
	return u
}
