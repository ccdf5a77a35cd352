// Package web 是服务端渲染的站点：路由、页面、图片槽位的探测与呈现。
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/John-Robertt/vitrina/internal/assets"
	"github.com/John-Robertt/vitrina/internal/config"
	"github.com/John-Robertt/vitrina/internal/content"
	"github.com/John-Robertt/vitrina/internal/i18n"
	"github.com/John-Robertt/vitrina/internal/probe"
	"github.com/John-Robertt/vitrina/internal/resolve"
)

//go:embed templates/*.html static/*
var embedded embed.FS

var pageNames = []string{"home", "division", "product", "about", "contact", "error"}

// Options 是构造 Server 所需的依赖。零值字段使用合理默认。
type Options struct {
	Config  config.EffectiveConfig
	Content *content.Store
	// Assets 是资源根目录（/static 下的文件），同时用于探测与静态服务。
	Assets fs.FS
	Cache  *resolve.Cache
	// Prober.Checker 为空时使用 assets.FSChecker{FS: Assets}。
	Prober probe.Prober
	Logger *zap.Logger
}

type Server struct {
	cfg    config.EffectiveConfig
	store  *content.Store
	assets fs.FS
	cache  *resolve.Cache
	prober probe.Prober
	log    *zap.Logger
	pages  map[string]*template.Template
	now    func() time.Time
}

func New(opts Options) (*Server, error) {
	if opts.Content == nil {
		return nil, fmt.Errorf("web: 缺少 content store")
	}
	if opts.Assets == nil {
		return nil, fmt.Errorf("web: 缺少资源目录")
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	cfg := opts.Config
	if cfg.DefaultLang == "" {
		cfg.DefaultLang = i18n.Default
	}
	if cfg.GalleryMax <= 0 {
		cfg.GalleryMax = config.DefaultGalleryMax
	}

	cache := opts.Cache
	if cache == nil {
		c, err := resolve.NewCache(resolve.Resolver{Extensions: cfg.ProbeExtensions}, 0)
		if err != nil {
			return nil, err
		}
		cache = c
	}

	p := opts.Prober
	if p.Checker == nil {
		p.Checker = assets.FSChecker{FS: opts.Assets}
	}
	if p.Timeout <= 0 {
		p.Timeout = cfg.ProbeTimeout
	}
	if p.Logger == nil {
		p.Logger = log.Named("probe")
	}

	pages, err := parsePages()
	if err != nil {
		return nil, err
	}

	return &Server{
		cfg:    cfg,
		store:  opts.Content,
		assets: opts.Assets,
		cache:  cache,
		prober: p,
		log:    log,
		pages:  pages,
		now:    time.Now,
	}, nil
}

func parsePages() (map[string]*template.Template, error) {
	funcs := template.FuncMap{
		"t": func(lang i18n.Lang, key string, args ...any) string { return i18n.T(lang, key, args...) },
	}
	out := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(embedded,
			"templates/layout.html",
			"templates/partials.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("解析模板 %s 失败：%w", name, err)
		}
		out[name] = t
	}
	return out, nil
}

// Handler 返回带中间件的完整 http.Handler。
func (s *Server) Handler() http.Handler {
	return s.withRequestID(s.withAccessLog(s.withRecover(s.routes())))
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /static/", http.StripPrefix("/static", http.FileServerFS(s.assets)))

	site, _ := fs.Sub(embedded, "static")
	mux.Handle("GET /assets/", http.StripPrefix("/assets", http.FileServerFS(site)))

	for _, l := range i18n.Supported {
		prefix := "/" + string(l)
		mux.HandleFunc("GET "+prefix, func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, prefix+"/", http.StatusMovedPermanently)
		})
		mux.HandleFunc("GET "+prefix+"/{$}", s.lang(l, s.handleHome))
		mux.HandleFunc("GET "+prefix+"/divisions/{division}", s.lang(l, s.handleDivision))
		mux.HandleFunc("GET "+prefix+"/divisions/{division}/{product}", s.lang(l, s.handleProduct))
		mux.HandleFunc("GET "+prefix+"/about", s.lang(l, s.handleAbout))
		mux.HandleFunc("GET "+prefix+"/contact", s.lang(l, s.handleContact))
	}
	mux.HandleFunc("/", s.handleNotFound)
	return mux
}

type langHandler func(w http.ResponseWriter, r *http.Request, lang i18n.Lang)

// lang 绑定路由语言，并在偏好不同时刷新语言 cookie。
func (s *Server) lang(l i18n.Lang, h langHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(i18n.CookieName); err != nil || c.Value != string(l) {
			i18n.Remember(w, l)
		}
		h(w, r, l)
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	l := i18n.FromRequest(r, s.cfg.DefaultLang)
	w.Header().Add("Vary", "Accept-Language")
	w.Header().Add("Vary", "Cookie")
	http.Redirect(w, r, "/"+string(l)+"/", http.StatusFound)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.renderError(w, r, s.requestLang(r), http.StatusNotFound)
}

// requestLang 优先使用路径里的语言段，其次是请求偏好。
func (s *Server) requestLang(r *http.Request) i18n.Lang {
	seg := strings.TrimPrefix(r.URL.Path, "/")
	if i := strings.IndexByte(seg, '/'); i >= 0 {
		seg = seg[:i]
	}
	if l, ok := i18n.Parse(seg); ok && string(l) == seg {
		return l
	}
	return i18n.FromRequest(r, s.cfg.DefaultLang)
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, lang i18n.Lang, status int) {
	key := "error.notfound"
	if status >= 500 {
		key = "error.internal"
	}
	pd := s.page(r, lang, i18n.T(lang, key), "", errorBody{Status: status, Message: i18n.T(lang, key)})
	s.render(w, r, "error", pd, status)
}

// render 先渲染到缓冲区，模板出错时返回 500 而不是半截页面。
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data pageData, status int) {
	t, ok := s.pages[name]
	if !ok {
		s.log.Error("模板不存在", zap.String("template", name), zap.String("request_id", RequestID(r.Context())))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		s.log.Error("模板渲染失败", zap.String("template", name), zap.String("request_id", RequestID(r.Context())), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
