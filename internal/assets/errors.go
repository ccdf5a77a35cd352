package assets

import (
	"errors"
	"fmt"
	"io/fs"
)

// ErrIsDir 表示候选路径指向的是目录。
var ErrIsDir = errors.New("候选路径是目录")

// ErrOutsideRoot 表示候选路径试图逃出资源根目录。
var ErrOutsideRoot = errors.New("候选路径越出资源根目录")

// StatusError 表示资源服务器返回了非 2xx 的 HTTP 状态码。
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	if e == nil {
		return "HTTP status error"
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.URL)
}

// IsNotFound 判断 err 是否表示"资源不存在"（本地不存在或 HTTP 404/410）。
func IsNotFound(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == 404 || se.StatusCode == 410
	}
	return errors.Is(err, fs.ErrNotExist)
}
