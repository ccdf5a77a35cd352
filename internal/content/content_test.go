package content

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/John-Robertt/vitrina/internal/i18n"
)

func TestDefault_Valid(t *testing.T) {
	s, err := Default()
	if err != nil {
		t.Fatalf("内置内容应合法：%v", err)
	}
	want := []string{"aquaculture", "agriculture", "packaging", "logistics"}
	if len(s.Divisions) != len(want) {
		t.Fatalf("期望 %d 个事业部，实际 %d", len(want), len(s.Divisions))
	}
	for i, slug := range want {
		if s.Divisions[i].Slug != slug {
			t.Fatalf("divisions[%d] 期望 %q，实际 %q", i, slug, s.Divisions[i].Slug)
		}
		if s.Divisions[i].Count != 4 {
			t.Fatalf("divisions[%d].count 期望 4，实际 %d", i, s.Divisions[i].Count)
		}
		for _, p := range s.Divisions[i].Products {
			if p.Name.In(i18n.EN) == "" || p.Name.In(i18n.ES) == "" {
				t.Fatalf("产品 %q 缺少文案", p.Slug)
			}
		}
	}
	d, ok := s.Division("packaging")
	if !ok {
		t.Fatalf("应能找到 packaging")
	}
	if _, ok := d.Product("vacuum-bags"); !ok {
		t.Fatalf("应能找到 vacuum-bags")
	}
	if _, ok := s.Division("mining"); ok {
		t.Fatalf("不存在的事业部应返回 false")
	}
}

func TestText_InFallsBackToSpanish(t *testing.T) {
	tx := Text{i18n.ES: "Hola"}
	if got := tx.In(i18n.EN); got != "Hola" {
		t.Fatalf("期望回退到西语，实际 %q", got)
	}
	tx[i18n.EN] = "Hello"
	if got := tx.In(i18n.EN); got != "Hello" {
		t.Fatalf("期望 Hello，实际 %q", got)
	}
}

func TestValidate_CollectsErrors(t *testing.T) {
	s, err := Default()
	if err != nil {
		t.Fatalf("内置内容应合法：%v", err)
	}
	s.Divisions = s.Divisions[:3]
	s.Divisions[1].Slug = s.Divisions[0].Slug
	s.Divisions[2].Products[0].Count = -1
	s.Divisions[0].Count = -1
	s.Divisions[2].Products[1].Slug = "Not A Slug"

	err = s.Validate()
	if err == nil {
		t.Fatalf("期望校验失败")
	}
	for _, want := range []string{"恰好 4 个", "slug 重复", "count 不能为负数", "slug 非法", "divisions[0].count 不能为负数"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("错误信息应包含 %q，实际：%v", want, err)
		}
	}
}

func TestLoad_EmptyPathUsesEmbedded(t *testing.T) {
	s, err := Load("")
	if err != nil || s.Company.Name == "" {
		t.Fatalf("空路径应返回内置内容：%v", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("不存在的文件应返回错误")
	}
}

func writeSite(t *testing.T, path, companyName string) {
	t.Helper()
	s, err := Default()
	if err != nil {
		t.Fatalf("内置内容应合法：%v", err)
	}
	s.Company.Name = companyName
	b, err := yaml.Marshal(s)
	if err != nil {
		t.Fatalf("marshal 失败：%v", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatalf("写入失败：%v", err)
	}
}

func TestStore_ReloadKeepsPreviousOnError(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "site.yaml")
	writeSite(t, p, "Uno")

	st := NewStore(nil)
	if err := st.Reload(p); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if st.Site().Company.Name != "Uno" {
		t.Fatalf("期望 Uno，实际 %q", st.Site().Company.Name)
	}

	if err := os.WriteFile(p, []byte("divisions: [}"), 0o644); err != nil {
		t.Fatalf("写入失败：%v", err)
	}
	if err := st.Reload(p); err == nil {
		t.Fatalf("无效内容应返回错误")
	}
	if st.Site().Company.Name != "Uno" {
		t.Fatalf("失败时应保留旧快照，实际 %q", st.Site().Company.Name)
	}
}

func TestStore_Watch(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "site.yaml")
	writeSite(t, p, "Uno")

	s, err := Load(p)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	st := NewStore(s)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- st.Watch(ctx, p, nil) }()
	defer func() {
		cancel()
		if err := <-done; err != nil {
			t.Fatalf("Watch 返回错误：%v", err)
		}
	}()

	// 给监听器一点时间完成注册。
	time.Sleep(100 * time.Millisecond)
	writeSite(t, p, "Dos")

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if st.Site().Company.Name == "Dos" {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("期望热加载为 Dos，实际 %q", st.Site().Company.Name)
}
