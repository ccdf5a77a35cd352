package i18n

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// Lang 是站点支持的界面语言。
type Lang string

const (
	ES Lang = "es"
	EN Lang = "en"
)

// Default 是站点的主语言（内容以西语为准，英文为译文）。
const Default = ES

// CookieName 保存用户的语言偏好：这是站点唯一持久化的状态。
const CookieName = "lang"

// Supported 按优先级列出所有语言（也决定语言切换器的顺序）。
var Supported = []Lang{ES, EN}

// Parse 解析 "es" / "EN" / "es-MX" 之类的输入。
func Parse(s string) (Lang, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexAny(s, "-_"); i > 0 {
		s = s[:i]
	}
	switch Lang(s) {
	case ES:
		return ES, true
	case EN:
		return EN, true
	default:
		return "", false
	}
}

// Other 返回另一种语言（语言切换链接用）。
func (l Lang) Other() Lang {
	if l == EN {
		return ES
	}
	return EN
}

var matcher = language.NewMatcher([]language.Tag{language.Spanish, language.English})

// Negotiate 根据 Accept-Language 选择语言；无法判断时回退到 fallback。
func Negotiate(acceptLanguage string, fallback Lang) Lang {
	if strings.TrimSpace(acceptLanguage) == "" {
		return fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return fallback
	}
	if idx == 1 {
		return EN
	}
	return ES
}

// FromRequest 决定请求的首选语言：cookie > Accept-Language > fallback。
func FromRequest(r *http.Request, fallback Lang) Lang {
	if c, err := r.Cookie(CookieName); err == nil {
		if l, ok := Parse(c.Value); ok {
			return l
		}
	}
	return Negotiate(r.Header.Get("Accept-Language"), fallback)
}

// Remember 把语言偏好写入 cookie（一年）。
func Remember(w http.ResponseWriter, l Lang) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    string(l),
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// T 返回 key 在 lang 下的文案；缺失时回退到西语，再缺失则返回 key 本身。
// args 非空时按 fmt.Sprintf 格式化。
func T(lang Lang, key string, args ...any) string {
	s, ok := lookup(lang, key)
	if !ok {
		s, ok = lookup(Default, key)
	}
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(s, args...)
	}
	return s
}

func lookup(lang Lang, key string) (string, bool) {
	m, ok := messages[lang]
	if !ok {
		return "", false
	}
	s, ok := m[key]
	return s, ok
}
