package contact

import (
	"net/url"
	"testing"
)

func TestWhatsApp(t *testing.T) {
	got := WhatsApp("+52 (55) 1234-5678", "Hola, me interesa A&B = 100%")
	want := "https://wa.me/525512345678?text=Hola%2C%20me%20interesa%20A%26B%20%3D%20100%25"
	if got != want {
		t.Fatalf("期望 %q，实际 %q", want, got)
	}
	if got := WhatsApp("+52 55", ""); got != "https://wa.me/5255" {
		t.Fatalf("空消息不应带 text 参数：%q", got)
	}
	if got := WhatsApp("  ", "hola"); got != "" {
		t.Fatalf("无数字号码应返回空串：%q", got)
	}
}

func TestMailto(t *testing.T) {
	got := Mailto("ventas@example.com", "Consulta: bombas", "Línea 1\nC++")
	want := "mailto:ventas@example.com?subject=Consulta%3A%20bombas&body=L%C3%ADnea%201%0AC%2B%2B"
	if got != want {
		t.Fatalf("期望 %q，实际 %q", want, got)
	}
	if got := Mailto("a@b.c", "", ""); got != "mailto:a@b.c" {
		t.Fatalf("无 subject/body 时不应带查询串：%q", got)
	}
	if got := Mailto("", "x", "y"); got != "" {
		t.Fatalf("空地址应返回空串：%q", got)
	}
}

func TestWebMailCompose(t *testing.T) {
	g := GmailCompose("ventas@example.com", "Consulta", "Hola mundo")
	u, err := url.Parse(g)
	if err != nil {
		t.Fatalf("Gmail 链接不可解析：%v", err)
	}
	q := u.Query()
	if u.Host != "mail.google.com" || q.Get("view") != "cm" || q.Get("to") != "ventas@example.com" ||
		q.Get("su") != "Consulta" || q.Get("body") != "Hola mundo" {
		t.Fatalf("Gmail 链接不符合预期：%q", g)
	}

	o := OutlookCompose("ventas@example.com", "Consulta", "Hola mundo")
	u, err = url.Parse(o)
	if err != nil {
		t.Fatalf("Outlook 链接不可解析：%v", err)
	}
	q = u.Query()
	if u.Host != "outlook.office.com" || q.Get("to") != "ventas@example.com" ||
		q.Get("subject") != "Consulta" || q.Get("body") != "Hola mundo" {
		t.Fatalf("Outlook 链接不符合预期：%q", o)
	}

	if GmailCompose("", "a", "b") != "" || OutlookCompose(" ", "a", "b") != "" {
		t.Fatalf("空地址应返回空串")
	}
}
