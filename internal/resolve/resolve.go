package resolve

import (
	"path"
	"strconv"
	"strings"

	"github.com/John-Robertt/vitrina/internal/domain"
)

// DefaultExtensions 是扩展名偏好顺序（固定）：真实文件最可能是 jpg。
var DefaultExtensions = []string{"jpg", "jpeg", "png", "webp"}

// Resolver 把 Location 展开为 CandidateList。
//
// 约束：
// - 纯函数：同一输入永远得到同一输出，不读文件、不打网络
// - 同一序号：补零形式（01）的全部扩展名排在裸序号（1）之前
// - 非法/空输入不报错，直接得到空列表（由探测端视为 exhausted）
type Resolver struct {
	// Extensions 为空时使用 DefaultExtensions。
	Extensions []string
}

// Resolve 使用默认扩展名集合展开 loc。
func Resolve(loc domain.Location) domain.CandidateList {
	return Resolver{}.Resolve(loc)
}

// MaxCandidates 是单个槽位候选列表的上限，超出部分截掉。
const MaxCandidates = 32

func (r Resolver) Resolve(loc domain.Location) domain.CandidateList {
	list := r.expand(loc)
	if len(list) > MaxCandidates {
		list = list[:MaxCandidates:MaxCandidates]
	}
	return list
}

func (r Resolver) expand(loc domain.Location) domain.CandidateList {
	switch loc.Kind {
	case domain.KindNamed:
		return r.named(loc.Path)
	case domain.KindIndexed:
		dir, ok := normalizeDir(loc.Path)
		if !ok || loc.Index < 1 {
			return domain.CandidateList{}
		}
		return r.indexed(dir, loc.Index, nil)
	case domain.KindGallery:
		return r.gallery(loc.Path, loc.Count, loc.Hero)
	default:
		return domain.CandidateList{}
	}
}

func (r Resolver) exts() []string {
	if len(r.Extensions) == 0 {
		return DefaultExtensions
	}
	return r.Extensions
}

func (r Resolver) named(p string) domain.CandidateList {
	p, ok := normalizeDir(p)
	if !ok {
		return domain.CandidateList{}
	}
	p = r.stripExt(p)
	if p == "/" || strings.HasSuffix(p, "/") {
		return domain.CandidateList{}
	}

	out := make(domain.CandidateList, 0, len(r.exts()))
	for _, ext := range r.exts() {
		out = append(out, p+"."+ext)
	}
	return out
}

func (r Resolver) indexed(dir string, i int, seen map[string]struct{}) domain.CandidateList {
	if seen == nil {
		seen = make(map[string]struct{}, 2*len(r.exts()))
	}
	forms := []string{pad2(i), strconv.Itoa(i)}

	out := make(domain.CandidateList, 0, len(forms)*len(r.exts()))
	for _, f := range forms {
		for _, ext := range r.exts() {
			c := join(dir, f+"."+ext)
			// i >= 10 时两种形式相同：只保留第一次出现。
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

func (r Resolver) gallery(p string, count int, hero bool) domain.CandidateList {
	dir, ok := normalizeDir(p)
	if !ok {
		return domain.CandidateList{}
	}

	out := domain.CandidateList{}
	seen := map[string]struct{}{}
	if hero {
		for _, c := range r.named(join(dir, "hero")) {
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	for i := 1; i <= count; i++ {
		out = append(out, r.indexed(dir, i, seen)...)
	}
	return out
}

func (r Resolver) stripExt(p string) string {
	ext := path.Ext(p)
	if ext == "" {
		return p
	}
	e := strings.ToLower(strings.TrimPrefix(ext, "."))
	if isKnownExt(e, DefaultExtensions) || isKnownExt(e, r.Extensions) {
		return strings.TrimSuffix(p, ext)
	}
	return p
}

func isKnownExt(e string, set []string) bool {
	for _, x := range set {
		if strings.EqualFold(e, x) {
			return true
		}
	}
	return false
}

// normalizeDir：去空白、补前导 '/'、去尾部 '/'、折叠重复分隔符。
// 返回 ok=false 表示输入为空（或只剩根目录）。
func normalizeDir(p string) (string, bool) {
	p = strings.TrimSpace(p)
	if p == "" {
		return "", false
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	p = path.Clean(p)
	if p == "/" {
		return "", false
	}
	return p, true
}

func join(dir, name string) string {
	return strings.TrimSuffix(dir, "/") + "/" + name
}

func pad2(i int) string {
	if i < 10 {
		return "0" + strconv.Itoa(i)
	}
	return strconv.Itoa(i)
}

// ForPolicy 按调用点类别把内容配置（base 目录 + 图片数量）展开为槽位 Location 列表。
//
// - PolicyHero：一个具名 hero
// - PolicyCard：一个 gallery（只含编号图，不含 hero）
// - PolicyDetail：第 0 张 hero，其后每个编号一张
func ForPolicy(policy domain.SlotPolicy, base string, count int) []domain.Location {
	hero := ""
	if dir, ok := normalizeDir(base); ok {
		hero = join(dir, "hero")
	}

	switch policy {
	case domain.PolicyHero:
		return []domain.Location{domain.Named(hero)}
	case domain.PolicyCard:
		return []domain.Location{domain.Gallery(base, count, false)}
	case domain.PolicyDetail:
		if count < 0 {
			count = 0
		}
		locs := make([]domain.Location, 0, count+1)
		locs = append(locs, domain.Named(hero))
		for i := 1; i <= count; i++ {
			locs = append(locs, domain.Indexed(base, i))
		}
		return locs
	default:
		return nil
	}
}
