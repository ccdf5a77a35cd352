package domain

// LocationKind 区分调用方给出的三种图片位置形态。
type LocationKind int

const (
	// KindNamed 是单个具名资源（例如 hero），路径可带或不带扩展名。
	KindNamed LocationKind = iota + 1
	// KindIndexed 是目录 + 1 基序号（01.jpg / 1.jpg ...）。
	KindIndexed
	// KindGallery 是目录 + 数量（可选前置 hero），展开后拼成一个候选列表。
	KindGallery
)

func (k LocationKind) String() string {
	switch k {
	case KindNamed:
		return "named"
	case KindIndexed:
		return "indexed"
	case KindGallery:
		return "gallery"
	default:
		return "unknown"
	}
}

// Location 是调用方的"意图"：一个目录或一个具名资源，尚未展开为具体文件。
//
// 不变量：Location 是值类型且可比较，可直接作为 map / LRU 的 key。
type Location struct {
	Kind  LocationKind
	Path  string
	Index int  // 仅 KindIndexed
	Count int  // 仅 KindGallery
	Hero  bool // 仅 KindGallery：是否前置 hero 候选
}

func Named(path string) Location { return Location{Kind: KindNamed, Path: path} }

func Indexed(dir string, index int) Location {
	return Location{Kind: KindIndexed, Path: dir, Index: index}
}

func Gallery(dir string, count int, hero bool) Location {
	return Location{Kind: KindGallery, Path: dir, Count: count, Hero: hero}
}

// CandidateList 是按偏好排序的具体路径列表（相对资源根目录，'/' 开头）。
// 同一个 Location 必然得到同一个 CandidateList。
type CandidateList []string

// SlotPolicy 是按调用点类别固定的 hero 取舍策略。
type SlotPolicy int

const (
	// PolicyHero：只探测 {base}/hero.{ext}。
	PolicyHero SlotPolicy = iota + 1
	// PolicyCard：卡片位，只用编号图，不含 hero，合并为一个槽位。
	PolicyCard
	// PolicyDetail：详情轮播，第 0 张为 hero，其后每个编号一张。
	PolicyDetail
)

func (p SlotPolicy) String() string {
	switch p {
	case PolicyHero:
		return "hero"
	case PolicyCard:
		return "card"
	case PolicyDetail:
		return "detail"
	default:
		return "unknown"
	}
}
