// Package contact 构造联系渠道的深链接：WhatsApp、mailto 与网页邮箱的撰写页。
//
// 所有函数在地址/号码为空时返回空字符串，调用方据此跳过该链接。
package contact

import (
	"net/url"
	"strings"
)

const (
	whatsAppBase = "https://wa.me/"
	gmailBase    = "https://mail.google.com/mail/"
	outlookBase  = "https://outlook.office.com/mail/deeplink/compose"
)

// Digits 只保留号码中的数字（wa.me 要求纯数字的国际格式）。
func Digits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// WhatsApp 返回 https://wa.me/<digits>?text=<message>。
func WhatsApp(phone, message string) string {
	d := Digits(phone)
	if d == "" {
		return ""
	}
	u := whatsAppBase + d
	if message = strings.TrimSpace(message); message != "" {
		u += "?text=" + escape(message)
	}
	return u
}

// Mailto 按 RFC 6068 构造 mailto 链接：空格编码为 %20 而不是 '+'。
func Mailto(addr, subject, body string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return ""
	}
	var q []string
	if subject != "" {
		q = append(q, "subject="+escape(subject))
	}
	if body != "" {
		q = append(q, "body="+escape(body))
	}
	u := "mailto:" + escapeAddr(addr)
	if len(q) > 0 {
		u += "?" + strings.Join(q, "&")
	}
	return u
}

// GmailCompose 返回 Gmail 网页版撰写页链接。
func GmailCompose(addr, subject, body string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return ""
	}
	v := url.Values{}
	v.Set("view", "cm")
	v.Set("fs", "1")
	v.Set("to", addr)
	if subject != "" {
		v.Set("su", subject)
	}
	if body != "" {
		v.Set("body", body)
	}
	return gmailBase + "?" + v.Encode()
}

// OutlookCompose 返回 Outlook 网页版撰写页链接。
func OutlookCompose(addr, subject, body string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return ""
	}
	v := url.Values{}
	v.Set("to", addr)
	if subject != "" {
		v.Set("subject", subject)
	}
	if body != "" {
		v.Set("body", body)
	}
	return outlookBase + "?" + v.Encode()
}

// escape 对查询值做百分号编码，空格输出 %20。
// QueryEscape 会把字面 '+' 编成 %2B，所以替换剩下的 '+' 是安全的。
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// escapeAddr 保留 '@'，其余按查询值规则编码。
func escapeAddr(addr string) string {
	return strings.ReplaceAll(escape(addr), "%40", "@")
}
