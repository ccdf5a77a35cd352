package imgx

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // 注册 JPEG 解码器
	_ "image/png"  // 注册 PNG 解码器
	"io"

	_ "golang.org/x/image/webp" // 注册 WebP 解码器（标准库不含）
)

// DefaultMaxBytes 是判定"可解码"时最多读取的字节数。
// DecodeConfig 只需要文件头，这里留足余量给带大块 EXIF 的 JPEG。
const DefaultMaxBytes = 1 << 20

// ErrNotImage 表示内容不是可识别的图片（含空内容与截断文件头）。
var ErrNotImage = errors.New("不是可解码的图片")

// Info 是图片头信息。
type Info struct {
	Format string // "jpeg" / "png" / "webp"
	Width  int
	Height int
}

// Sniff 判断 data 是否是可解码的图片（只解析头部，不解码像素）。
//
// 约束：
// - 支持 JPEG/PNG/WebP（与候选扩展名集合一致）
// - 宽或高为 0 视为无效
func Sniff(data []byte) (Info, error) {
	if len(data) == 0 {
		return Info{}, ErrNotImage
	}
	return SniffReader(bytes.NewReader(data), int64(len(data)))
}

// SniffReader 与 Sniff 相同，但最多从 r 读取 max 字节（max<=0 使用 DefaultMaxBytes）。
func SniffReader(r io.Reader, max int64) (Info, error) {
	if max <= 0 {
		max = DefaultMaxBytes
	}
	cfg, format, err := image.DecodeConfig(io.LimitReader(r, max))
	if err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Info{}, fmt.Errorf("%w: 尺寸无效 %dx%d", ErrNotImage, cfg.Width, cfg.Height)
	}
	return Info{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}
