package assets

import (
	"context"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/John-Robertt/vitrina/internal/infra/imgx"
	"github.com/John-Robertt/vitrina/internal/probe"
)

var (
	_ probe.Checker = FSChecker{}
	_ probe.Checker = HTTPChecker{}
)

// FSChecker 在本地资源目录上判定候选是否可用：存在、是普通文件、头部可解码。
//
// 候选路径以 '/' 开头且相对资源根目录；fs.FS 要求去掉前导 '/'。
type FSChecker struct {
	FS       fs.FS
	MaxBytes int64
}

func (c FSChecker) Check(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, err := fsName(p)
	if err != nil {
		return err
	}

	f, err := c.FS.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return err
	}
	if fi.IsDir() {
		return ErrIsDir
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err = imgx.SniffReader(f, c.MaxBytes)
	return err
}

func fsName(p string) (string, error) {
	name := strings.TrimPrefix(path.Clean("/"+strings.TrimSpace(p)), "/")
	if name == "" || !fs.ValidPath(name) {
		return "", ErrOutsideRoot
	}
	return name, nil
}

// HTTPChecker 通过 HTTP GET 判定候选是否可用：2xx 且响应体头部可解码。
//
// BaseURL 形如 "http://127.0.0.1:8080/static"；候选路径直接拼在其后。
type HTTPChecker struct {
	Client   *http.Client
	BaseURL  string
	MaxBytes int64
}

func (c HTTPChecker) Check(ctx context.Context, p string) error {
	u := c.URL(p)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{URL: u, StatusCode: resp.StatusCode}
	}
	_, err = imgx.SniffReader(resp.Body, c.MaxBytes)
	return err
}

// URL 返回候选对应的绝对 URL。p 若本身是绝对 URL 则原样返回。
func (c HTTPChecker) URL(p string) string {
	if u, err := url.Parse(p); err == nil && u.IsAbs() {
		return p
	}
	base := strings.TrimRight(c.BaseURL, "/")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return base + p
}
