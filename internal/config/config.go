package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/John-Robertt/vitrina/internal/i18n"
	"github.com/John-Robertt/vitrina/internal/probe"
	"github.com/John-Robertt/vitrina/internal/resolve"
)

const (
	// ErrCodeNotFound 表示显式指定的配置文件不存在。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
)

// FileName 是工作目录下自动发现的配置文件名。
const FileName = "vitrina.yaml"

const (
	DefaultListen       = ":8080"
	DefaultAssetRoot    = "./static"
	DefaultProbeTimeout = probe.DefaultTimeout
	DefaultMaxInflight  = 8
	DefaultGalleryMax   = 12
	DefaultConcurrency  = 4
	DefaultMaxPages     = 200
	DefaultLogLevel     = "info"
)

// CLIArgs 是 CLI 暴露的覆盖项，保留“是否显式指定”的信息。
// 这能保证覆盖优先级可实现：例如 --verbose=false 必须能覆盖 log.level=debug。
type CLIArgs struct {
	// ConfigPath 非空时必须存在；为空时尝试 <cwd>/vitrina.yaml（可选）。
	ConfigPath string

	Listen    string
	ListenSet bool

	AssetRoot    string
	AssetRootSet bool

	Concurrency    int
	ConcurrencySet bool

	Verbose    bool
	VerboseSet bool
}

// FileConfig 对应 vitrina.yaml 的解析结构。
type FileConfig struct {
	Listen      string        `yaml:"listen"`
	AssetRoot   string        `yaml:"asset_root"`
	ContentPath string        `yaml:"content_path"`
	DefaultLang string        `yaml:"default_lang"`
	Probe       ProbeConfig   `yaml:"probe"`
	Gallery     GalleryConfig `yaml:"gallery"`
	Audit       AuditConfig   `yaml:"audit"`
	Log         LogConfig     `yaml:"log"`
}

type ProbeConfig struct {
	Timeout     string   `yaml:"timeout"`
	Extensions  []string `yaml:"extensions"`
	MaxInflight int      `yaml:"max_inflight"`
}

type GalleryConfig struct {
	MaxCount int `yaml:"max_count"`
}

type AuditConfig struct {
	Concurrency int    `yaml:"concurrency"`
	MaxPages    int    `yaml:"max_pages"`
	ProxyURL    string `yaml:"proxy_url"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// EffectiveConfig 是合并并做最小规范化后的最终配置（实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	// Source 是实际读取的配置文件；未读取任何文件时为空。
	Source string

	Listen      string
	AssetRoot   string
	ContentPath string
	DefaultLang i18n.Lang

	ProbeTimeout    time.Duration
	ProbeExtensions []string
	MaxInflight     int
	GalleryMax      int

	AuditConcurrency int
	AuditMaxPages    int
	AuditProxyURL    string

	LogLevel       string
	LogDevelopment bool
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 发现并读取配置文件，然后与 CLI 参数合并为最终配置。
//
// 发现规则（固定）：
// 1) CLI 提供 --config：必须存在
// 2) 否则尝试 <cwd>/vitrina.yaml（可选，不存在则全部取默认值）
//
// 覆盖优先级（固定）：CLI（显式指定时）> 配置文件 > 内置默认。
// 相对路径（asset_root / content_path）以配置文件所在目录为基准；无配置文件时以 cwd 为基准。
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	var (
		cfgPath  string
		required bool
	)
	if strings.TrimSpace(cli.ConfigPath) != "" {
		cfgPath = absCleanFrom(cwdAbs, cli.ConfigPath)
		required = true
	} else {
		cfgPath = filepath.Join(cwdAbs, FileName)
	}

	fc, exists, err := readFileConfig(cfgPath)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	if !exists && required {
		return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
	}

	base := cwdAbs
	source := ""
	if exists {
		base = filepath.Dir(cfgPath)
		source = cfgPath
	}
	eff, err := merge(cwdAbs, base, cli, fc)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	eff.Source = source
	return eff, nil
}

func merge(cwd, base string, cli CLIArgs, fc FileConfig) (EffectiveConfig, error) {
	eff := EffectiveConfig{
		Listen:         DefaultListen,
		AssetRoot:      absCleanFrom(cwd, DefaultAssetRoot),
		DefaultLang:    i18n.Default,
		LogLevel:       DefaultLogLevel,
		LogDevelopment: fc.Log.Development,
	}

	// listen：CLI > config > 默认
	if cli.ListenSet {
		eff.Listen = strings.TrimSpace(cli.Listen)
	} else if s := strings.TrimSpace(fc.Listen); s != "" {
		eff.Listen = s
	}
	if eff.Listen == "" {
		return EffectiveConfig{}, fmt.Errorf("listen 不能为空")
	}

	// asset_root：CLI（以 cwd 为基准）> config（以配置文件目录为基准）> 默认
	if cli.AssetRootSet {
		eff.AssetRoot = absCleanFrom(cwd, cli.AssetRoot)
	} else if s := strings.TrimSpace(fc.AssetRoot); s != "" {
		eff.AssetRoot = absCleanFrom(base, s)
	}
	if eff.AssetRoot == "" {
		return EffectiveConfig{}, fmt.Errorf("asset_root 不能为空")
	}

	if s := strings.TrimSpace(fc.ContentPath); s != "" {
		eff.ContentPath = absCleanFrom(base, s)
	}

	if s := strings.TrimSpace(fc.DefaultLang); s != "" {
		l, ok := i18n.Parse(s)
		if !ok {
			return EffectiveConfig{}, fmt.Errorf("default_lang 只能是 es 或 en，实际是 %q", s)
		}
		eff.DefaultLang = l
	}

	eff.ProbeTimeout = DefaultProbeTimeout
	if s := strings.TrimSpace(fc.Probe.Timeout); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return EffectiveConfig{}, fmt.Errorf("probe.timeout 无效：%w", err)
		}
		eff.ProbeTimeout = clampDuration(d, 100*time.Millisecond, 30*time.Second)
	}

	exts, err := normalizeExtensions(fc.Probe.Extensions)
	if err != nil {
		return EffectiveConfig{}, err
	}
	eff.ProbeExtensions = exts

	eff.MaxInflight = clampInt(orDefault(fc.Probe.MaxInflight, DefaultMaxInflight), 1, 64)
	eff.GalleryMax = clampInt(orDefault(fc.Gallery.MaxCount, DefaultGalleryMax), 1, 32)

	// audit.concurrency：CLI > config > 默认；范围 [1, 32]，超出截断。
	concurrency := orDefault(fc.Audit.Concurrency, DefaultConcurrency)
	if cli.ConcurrencySet {
		concurrency = cli.Concurrency
	}
	eff.AuditConcurrency = clampInt(concurrency, 1, 32)
	eff.AuditMaxPages = orDefault(fc.Audit.MaxPages, DefaultMaxPages)
	if eff.AuditMaxPages < 1 {
		eff.AuditMaxPages = 1
	}

	if s := strings.TrimSpace(fc.Audit.ProxyURL); s != "" {
		if _, err := url.Parse(s); err != nil {
			return EffectiveConfig{}, fmt.Errorf("audit.proxy_url 无效：%w", err)
		}
		eff.AuditProxyURL = s
	}

	// log.level：--verbose > config > 默认
	if s := strings.ToLower(strings.TrimSpace(fc.Log.Level)); s != "" {
		eff.LogLevel = s
	}
	if cli.VerboseSet {
		if cli.Verbose {
			eff.LogLevel = "debug"
		} else if eff.LogLevel == "debug" {
			eff.LogLevel = DefaultLogLevel
		}
	}
	switch eff.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return EffectiveConfig{}, fmt.Errorf("log.level 只能是 debug/info/warn/error，实际是 %q", eff.LogLevel)
	}

	return eff, nil
}

// normalizeExtensions 去掉前导 '.'、转小写并去重；为空时使用默认顺序。
func normalizeExtensions(in []string) ([]string, error) {
	if len(in) == 0 {
		return append([]string(nil), resolve.DefaultExtensions...), nil
	}
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, e := range in {
		e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
		if e == "" || strings.ContainsAny(e, "/. ") {
			return nil, fmt.Errorf("probe.extensions 含非法扩展名 %q", e)
		}
		if seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out, nil
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampDuration(d, lo, hi time.Duration) time.Duration {
	if d < lo {
		return lo
	}
	if d > hi {
		return hi
	}
	return d
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
// - p 若已是绝对路径：直接 Clean
// - p 若是相对路径：Join(base, p) 后 Clean
func absCleanFrom(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = filepath.Clean(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig 读取并解析 YAML 配置文件。未知字段视为错误。
// 返回值 exists 表示该文件是否存在（不存在不算错误）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		// 空文件等价于全部默认。
		if errors.Is(err, io.EOF) {
			return FileConfig{}, true, nil
		}
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
