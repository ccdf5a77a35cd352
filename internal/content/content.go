// Package content 是站点的静态内容：公司信息、四个事业部及其产品、关于我们的图集。
//
// 内容以 YAML 描述；内置一份（site.yaml），也可以在运行时用外部文件覆盖。
package content

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/John-Robertt/vitrina/internal/i18n"
)

//go:embed site.yaml
var embedded []byte

// DivisionCount 是站点固定的事业部数量。
const DivisionCount = 4

var slugRe = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Text 是一段多语言文案。
type Text map[i18n.Lang]string

// In 返回 lang 下的文案；缺失时回退到默认语言。
func (t Text) In(lang i18n.Lang) string {
	if s := strings.TrimSpace(t[lang]); s != "" {
		return s
	}
	return strings.TrimSpace(t[i18n.Default])
}

type Site struct {
	Company   Company    `yaml:"company"`
	Divisions []Division `yaml:"divisions"`
	About     About      `yaml:"about"`
}

type Company struct {
	Name     string `yaml:"name"`
	Tagline  Text   `yaml:"tagline"`
	Phone    string `yaml:"phone"`
	WhatsApp string `yaml:"whatsapp"`
	Email    string `yaml:"email"`
	Address  Text   `yaml:"address"`
	// Hero 是首页横幅图所在目录。
	Hero string `yaml:"hero"`
}

type Division struct {
	Slug    string `yaml:"slug"`
	Name    Text   `yaml:"name"`
	Summary Text   `yaml:"summary"`
	// Images 是事业部图片目录（横幅与卡片图都从这里解析）。
	Images   string    `yaml:"images"`
	// Count 是卡片图库的编号图数量。
	Count    int       `yaml:"count"`
	Products []Product `yaml:"products"`
}

type Product struct {
	Slug        string `yaml:"slug"`
	Name        Text   `yaml:"name"`
	Description Text   `yaml:"description"`
	Images      string `yaml:"images"`
	Count       int    `yaml:"count"`
}

type About struct {
	Body   Text   `yaml:"body"`
	Images string `yaml:"images"`
	Count  int    `yaml:"count"`
}

// Division 按 slug 查找事业部。
func (s *Site) Division(slug string) (*Division, bool) {
	for i := range s.Divisions {
		if s.Divisions[i].Slug == slug {
			return &s.Divisions[i], true
		}
	}
	return nil, false
}

// Product 按 slug 查找产品。
func (d *Division) Product(slug string) (*Product, bool) {
	for i := range d.Products {
		if d.Products[i].Slug == slug {
			return &d.Products[i], true
		}
	}
	return nil, false
}

// Default 返回内置内容。
func Default() (*Site, error) {
	return Parse(embedded)
}

// Load 读取 path 指向的内容文件；path 为空时返回内置内容。
func Load(path string) (*Site, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s：%w", path, err)
	}
	return s, nil
}

// Parse 解析并校验 YAML 内容。
func Parse(b []byte) (*Site, error) {
	var s Site
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate 检查结构约束，返回所有问题的合并错误。
func (s *Site) Validate() error {
	var errs []error
	if strings.TrimSpace(s.Company.Name) == "" {
		errs = append(errs, errors.New("company.name 不能为空"))
	}
	if len(s.Divisions) != DivisionCount {
		errs = append(errs, fmt.Errorf("divisions 必须恰好 %d 个，实际 %d 个", DivisionCount, len(s.Divisions)))
	}

	seen := make(map[string]bool, len(s.Divisions))
	for i, d := range s.Divisions {
		where := fmt.Sprintf("divisions[%d]", i)
		if !slugRe.MatchString(d.Slug) {
			errs = append(errs, fmt.Errorf("%s.slug 非法：%q", where, d.Slug))
		} else if seen[d.Slug] {
			errs = append(errs, fmt.Errorf("%s.slug 重复：%q", where, d.Slug))
		}
		seen[d.Slug] = true
		if d.Name.In(i18n.Default) == "" {
			errs = append(errs, fmt.Errorf("%s.name 缺少 %s 文案", where, i18n.Default))
		}
		if d.Count < 0 {
			errs = append(errs, fmt.Errorf("%s.count 不能为负数：%d", where, d.Count))
		}

		pseen := make(map[string]bool, len(d.Products))
		for j, p := range d.Products {
			pwhere := fmt.Sprintf("%s.products[%d]", where, j)
			if !slugRe.MatchString(p.Slug) {
				errs = append(errs, fmt.Errorf("%s.slug 非法：%q", pwhere, p.Slug))
			} else if pseen[p.Slug] {
				errs = append(errs, fmt.Errorf("%s.slug 重复：%q", pwhere, p.Slug))
			}
			pseen[p.Slug] = true
			if p.Name.In(i18n.Default) == "" {
				errs = append(errs, fmt.Errorf("%s.name 缺少 %s 文案", pwhere, i18n.Default))
			}
			if p.Count < 0 {
				errs = append(errs, fmt.Errorf("%s.count 不能为负数：%d", pwhere, p.Count))
			}
		}
	}
	if s.About.Count < 0 {
		errs = append(errs, fmt.Errorf("about.count 不能为负数：%d", s.About.Count))
	}
	return errors.Join(errs...)
}
