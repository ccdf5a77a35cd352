package carousel

import (
	"github.com/John-Robertt/vitrina/internal/domain"
	"github.com/John-Robertt/vitrina/internal/probe"
)

// Direction 是手动翻页方向。
type Direction int

const (
	Prev Direction = -1
	Next Direction = 1
)

// 灯箱模式下识别的按键名（与浏览器 KeyboardEvent.key 一致）。
const (
	KeyEscape     = "Escape"
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowRight = "ArrowRight"
)

// ResolveFunc 把 Location 展开为候选列表（通常是 resolve.Cache.Resolve）。
type ResolveFunc func(domain.Location) domain.CandidateList

// Slide 是轮播中的一张：自己的 Location、候选列表与独立的探测状态机。
type Slide struct {
	Location   domain.Location
	Candidates domain.CandidateList
	Probe      *probe.Machine
}

// Carousel 把多张 Slide 组合成可翻页的单元。
//
// 约束：
// - active 指针独立于每张 Slide 的探测进度
// - 切换到某张 Slide 时该 Slide 从候选 0 重新探测（不跨导航缓存）
// - 只有 1 张（或 0 张）时导航不可用，Advance 为 no-op
//
// Carousel 不加锁：它属于单个渲染请求 / 单个 UI 实例。
type Carousel struct {
	resolve  ResolveFunc
	slides   []*Slide
	active   int
	lightbox bool
}

func New(locs []domain.Location, fn ResolveFunc) *Carousel {
	c := &Carousel{resolve: fn}
	c.SetLocations(locs)
	return c
}

// SetLocations 替换全部输入：active 回到 0，每张 Slide 重新开始探测。
func (c *Carousel) SetLocations(locs []domain.Location) {
	slides := make([]*Slide, 0, len(locs))
	for _, loc := range locs {
		var list domain.CandidateList
		if c.resolve != nil {
			list = c.resolve(loc)
		}
		slides = append(slides, &Slide{
			Location:   loc,
			Candidates: list,
			Probe:      probe.New(list),
		})
	}
	c.slides = slides
	c.active = 0
}

func (c *Carousel) Len() int { return len(c.slides) }

func (c *Carousel) NavEnabled() bool { return len(c.slides) > 1 }

func (c *Carousel) ActiveIndex() int { return c.active }

// Active 返回当前 Slide；空轮播返回 nil。
func (c *Carousel) Active() *Slide {
	if len(c.slides) == 0 {
		return nil
	}
	return c.slides[c.active]
}

func (c *Carousel) Slides() []*Slide { return c.slides }

// Advance 按方向移动一格（首尾环绕）。导航不可用时返回 false。
func (c *Carousel) Advance(dir Direction) bool {
	if !c.NavEnabled() {
		return false
	}
	delta := 1
	if dir == Prev {
		delta = -1
	}
	return c.Select(c.active + delta)
}

// Select 直接跳到第 i 张（对长度取模，允许负数）。
func (c *Carousel) Select(i int) bool {
	n := len(c.slides)
	if n == 0 {
		return false
	}
	c.active = ((i % n) + n) % n
	c.slides[c.active].Probe.Restart()
	return true
}

// Neighbor 返回从当前位置按方向移动后的下标（不修改状态，用于生成翻页链接）。
func (c *Carousel) Neighbor(dir Direction) int {
	n := len(c.slides)
	if n <= 1 {
		return c.active
	}
	delta := 1
	if dir == Prev {
		delta = -1
	}
	return (c.active + delta + n) % n
}

func (c *Carousel) Open()        { c.lightbox = true }
func (c *Carousel) Close()       { c.lightbox = false }
func (c *Carousel) IsOpen() bool { return c.lightbox }

// HandleKey 处理灯箱内的按键：Escape 关闭，左右方向键翻页。
// 灯箱未打开时不消费任何按键。返回值表示按键是否被消费。
func (c *Carousel) HandleKey(key string) bool {
	if !c.lightbox {
		return false
	}
	switch key {
	case KeyEscape:
		c.Close()
		return true
	case KeyArrowLeft:
		return c.Advance(Prev)
	case KeyArrowRight:
		return c.Advance(Next)
	default:
		return false
	}
}
