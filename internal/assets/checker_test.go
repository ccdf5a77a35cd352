package assets

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/John-Robertt/vitrina/internal/infra/imgx"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 3, 2))); err != nil {
		t.Fatalf("encode png 失败：%v", err)
	}
	return buf.Bytes()
}

func TestFSChecker(t *testing.T) {
	fsys := fstest.MapFS{
		"img/aqua/01.png":  {Data: pngBytes(t)},
		"img/aqua/01.jpg":  {Data: []byte("not really a jpeg")},
		"img/aqua/02.webp": {Mode: fs.ModeDir},
	}
	c := FSChecker{FS: fsys}
	ctx := context.Background()

	if err := c.Check(ctx, "/img/aqua/01.png"); err != nil {
		t.Fatalf("期望可用，实际：%v", err)
	}
	if err := c.Check(ctx, "/img/aqua/01.jpg"); !errors.Is(err, imgx.ErrNotImage) {
		t.Fatalf("扩展名对但内容不可解码应失败，实际：%v", err)
	}
	if err := c.Check(ctx, "/img/aqua/1.png"); !IsNotFound(err) {
		t.Fatalf("不存在的文件应为 not found，实际：%v", err)
	}
	if err := c.Check(ctx, "/img/aqua/02.webp"); !errors.Is(err, ErrIsDir) {
		t.Fatalf("目录应返回 ErrIsDir，实际：%v", err)
	}
	if err := c.Check(ctx, "/"); !errors.Is(err, ErrOutsideRoot) {
		t.Fatalf("根目录应返回 ErrOutsideRoot，实际：%v", err)
	}
}

func TestFSChecker_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := FSChecker{FS: fstest.MapFS{"a.png": {Data: pngBytes(t)}}}
	if err := c.Check(ctx, "/a.png"); !errors.Is(err, context.Canceled) {
		t.Fatalf("已取消的 ctx 应直接失败，实际：%v", err)
	}
}

func TestHTTPChecker(t *testing.T) {
	img := pngBytes(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/static/img/01.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(img)
		case "/static/img/soft404.jpg":
			// 某些静态托管对缺失文件返回 200 + HTML。
			_, _ = w.Write([]byte("<html>not found</html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := HTTPChecker{Client: srv.Client(), BaseURL: srv.URL + "/static/"}
	ctx := context.Background()

	if err := c.Check(ctx, "/img/01.png"); err != nil {
		t.Fatalf("期望可用，实际：%v", err)
	}
	if err := c.Check(ctx, "/img/soft404.jpg"); !errors.Is(err, imgx.ErrNotImage) {
		t.Fatalf("200 + HTML 应判定为不可解码，实际：%v", err)
	}
	err := c.Check(ctx, "/img/missing.jpg")
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusNotFound || !IsNotFound(err) {
		t.Fatalf("期望 404 StatusError，实际：%v", err)
	}
}

func TestHTTPChecker_URL(t *testing.T) {
	c := HTTPChecker{BaseURL: "http://h/static/"}
	if got := c.URL("/img/a.jpg"); got != "http://h/static/img/a.jpg" {
		t.Fatalf("URL 拼接不符合预期：%q", got)
	}
	if got := c.URL("img/a.jpg"); got != "http://h/static/img/a.jpg" {
		t.Fatalf("缺少前导 / 时也应正确拼接：%q", got)
	}
	if got := c.URL("https://cdn.test/a.jpg"); got != "https://cdn.test/a.jpg" {
		t.Fatalf("绝对 URL 应原样返回：%q", got)
	}
}
