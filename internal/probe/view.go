package probe

// DisplayKind 是槽位在任一时刻唯一的呈现形态。
type DisplayKind int

const (
	DisplayLoading DisplayKind = iota
	DisplayImage
	DisplayPlaceholder
)

func (k DisplayKind) String() string {
	switch k {
	case DisplayLoading:
		return "loading"
	case DisplayImage:
		return "image"
	case DisplayPlaceholder:
		return "placeholder"
	default:
		return "unknown"
	}
}

// Placeholder 是候选耗尽后的品牌占位面板（只有文案，没有路径）。
type Placeholder struct {
	Title    string
	Subtitle string
}

// Display 是渲染层消费的视图模型。
//
// 不变量：Kind==DisplayImage 时 Src 非空；其它形态 Src 必为空，
// 占位面板永远不会暴露原始文件路径。
type Display struct {
	Kind        DisplayKind
	Src         string
	Placeholder Placeholder
}

// View 把状态快照映射为视图。
func View(s Snapshot, ph Placeholder) Display {
	switch s.State {
	case StateDisplayed:
		if s.Path != "" {
			return Display{Kind: DisplayImage, Src: s.Path}
		}
		return Display{Kind: DisplayPlaceholder, Placeholder: ph}
	case StateExhausted:
		return Display{Kind: DisplayPlaceholder, Placeholder: ph}
	default:
		return Display{Kind: DisplayLoading, Placeholder: ph}
	}
}
