package audit

import (
	"time"

	"github.com/John-Robertt/vitrina/internal/domain"
)

// Observer 用于把“审计进度/阶段/页面结果”从核心执行流程中解耦出来。
//
// 约束：
// - audit 包只负责发事件，不做任何输出（避免污染 stdout 的 JSON 契约）。
// - Observer 的实现必须并发安全：事件可能来自多个 goroutine。
type Observer interface {
	// OnStart 在 Execute 开始时调用。
	OnStart(opts Options)
	// OnPhaseDone 在阶段结束时调用（crawl / verify）。
	OnPhaseDone(name string, fields map[string]any, dur time.Duration)
	// OnPageDone 在某个页面抓取并解析完成时调用。known 是目前已发现的页面数（含已完成）。
	OnPageDone(idx, known int, page domain.PageResult, dur time.Duration)
}

type nopObserver struct{}

func (nopObserver) OnStart(Options) {}
func (nopObserver) OnPhaseDone(string, map[string]any, time.Duration) {}
func (nopObserver) OnPageDone(int, int, domain.PageResult, time.Duration) {}
