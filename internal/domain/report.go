package domain

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/maruel/natural"
)

const (
	SlotDisplayed   = "displayed"
	SlotPlaceholder = "placeholder"
	SlotLoading     = "loading"
	SlotBroken      = "broken"
)

const (
	PageStatusOK     = "ok"
	PageStatusFailed = "failed"
)

const (
	ErrCodeFetchFailed   = "fetch_failed"
	ErrCodeParseFailed   = "parse_failed"
	ErrCodeImageFailed   = "image_failed"
	ErrCodeConfigInvalid = "config_invalid"
)

// AuditReport 是 audit 的对外稳定输出（report 文件 / stdout JSON）。
type AuditReport struct {
	Base string `json:"base"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary AuditSummary `json:"summary"`
	Pages   []PageResult `json:"pages"`
	Slots   []SlotResult `json:"slots"`
}

type AuditSummary struct {
	Pages       int `json:"pages"`
	PagesFailed int `json:"pages_failed"`
	Slots       int `json:"slots"`
	Displayed   int `json:"displayed"`
	Placeholder int `json:"placeholder"`
	Loading     int `json:"loading"`
	Broken      int `json:"broken"`
}

type PageResult struct {
	URL       string `json:"url"`
	Status    string `json:"status"`
	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`
	Slots     int    `json:"slots"`
}

type SlotResult struct {
	Page   string `json:"page"`
	Slot   string `json:"slot"`
	State  string `json:"state"`
	Src    string `json:"src"`
	Status string `json:"status"`

	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`
}

// Finalize 做三件事：
// 1) 时间统一为 UTC
// 2) pages / slots 稳定排序（自然序：/2 排在 /10 之前）
// 3) summary 由明细计算得出
func (r *AuditReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	sort.SliceStable(r.Pages, func(i, j int) bool {
		return natural.Less(r.Pages[i].URL, r.Pages[j].URL)
	})
	sort.SliceStable(r.Slots, func(i, j int) bool {
		a, b := r.Slots[i], r.Slots[j]
		if a.Page != b.Page {
			return natural.Less(a.Page, b.Page)
		}
		return natural.Less(a.Slot, b.Slot)
	})

	var s AuditSummary
	s.Pages = len(r.Pages)
	for _, p := range r.Pages {
		if p.Status == PageStatusFailed {
			s.PagesFailed++
		}
	}
	s.Slots = len(r.Slots)
	for _, it := range r.Slots {
		switch it.Status {
		case SlotDisplayed:
			s.Displayed++
		case SlotPlaceholder:
			s.Placeholder++
		case SlotLoading:
			s.Loading++
		case SlotBroken:
			s.Broken++
		}
	}
	r.Summary = s
}

// MarshalJSON 保证 nil 切片输出为 []，避免下游把 null 当作异常。
func (r AuditReport) MarshalJSON() ([]byte, error) {
	type Alias AuditReport
	a := Alias(r)
	if a.Pages == nil {
		a.Pages = []PageResult{}
	}
	if a.Slots == nil {
		a.Slots = []SlotResult{}
	}
	return json.Marshal(a)
}
