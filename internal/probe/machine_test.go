package probe

import (
	"testing"

	"github.com/John-Robertt/vitrina/internal/domain"
)

func list(paths ...string) domain.CandidateList { return domain.CandidateList(paths) }

func TestMachine_EmptyListExhaustedImmediately(t *testing.T) {
	m := New(nil)
	s := m.Snapshot()
	if s.State != StateExhausted {
		t.Fatalf("空列表应直接 exhausted，实际 %s", s.State)
	}
	if _, ok := m.Begin(); ok {
		t.Fatalf("exhausted 状态不应再发出探测")
	}
	d := View(s, Placeholder{Title: "Acuicultura"})
	if d.Kind != DisplayPlaceholder || d.Src != "" || d.Placeholder.Title != "Acuicultura" {
		t.Fatalf("空列表应渲染占位面板：%+v", d)
	}
}

func TestMachine_FirstSuccessWins(t *testing.T) {
	m := New(list("/a/01.jpg", "/a/01.jpeg", "/a/01.png", "/a/01.webp"))

	for i, ok := range []bool{false, false, true} {
		a, issued := m.Begin()
		if !issued {
			t.Fatalf("第 %d 次 Begin 应发出探测", i)
		}
		if a.Index != i {
			t.Fatalf("期望探测 index=%d，实际 %d", i, a.Index)
		}
		if !m.Report(a, ok) {
			t.Fatalf("当前凭据的结果不应被丢弃")
		}
	}

	s := m.Snapshot()
	if s.State != StateDisplayed || s.Index != 2 || s.Path != "/a/01.png" {
		t.Fatalf("期望 Displayed(2)，实际 %+v", s)
	}
	if _, ok := m.Begin(); ok {
		t.Fatalf("Displayed 是终态，不应再探测 index 3")
	}
	if s.Attempts != 3 {
		t.Fatalf("期望 3 次探测，实际 %d", s.Attempts)
	}
}

func TestMachine_AllFailExhausted(t *testing.T) {
	m := New(list("/a/01.jpg", "/a/1.jpg"))
	for {
		a, ok := m.Begin()
		if !ok {
			break
		}
		m.Report(a, false)
	}
	s := m.Snapshot()
	if s.State != StateExhausted {
		t.Fatalf("全部失败应 exhausted，实际 %s", s.State)
	}
	d := View(s, Placeholder{Title: "T", Subtitle: "S"})
	if d.Kind != DisplayPlaceholder || d.Src != "" {
		t.Fatalf("exhausted 必须渲染占位面板且不含路径：%+v", d)
	}
}

func TestMachine_NoSecondAttemptBeforeOutcome(t *testing.T) {
	m := New(list("/a/01.jpg", "/a/1.jpg"))
	if _, ok := m.Begin(); !ok {
		t.Fatalf("应发出第一次探测")
	}
	if _, ok := m.Begin(); ok {
		t.Fatalf("第一次结果未知前不应发出第二次探测")
	}
}

func TestMachine_ResetOnInputChange(t *testing.T) {
	m := New(list("/a/01.jpg", "/a/1.jpg", "/a/01.png"))
	for _, ok := range []bool{false, false, true} {
		a, _ := m.Begin()
		m.Report(a, ok)
	}
	if s := m.Snapshot(); s.State != StateDisplayed || s.Index != 2 {
		t.Fatalf("前置条件失败：%+v", s)
	}

	m.Reset(list("/b/01.jpg", "/b/1.jpg"))
	s := m.Snapshot()
	if s.State != StateProbing || s.Index != 0 || s.Attempts != 0 || s.Candidates != 2 {
		t.Fatalf("Reset 后应为 Probing(0)：%+v", s)
	}
	a, ok := m.Begin()
	if !ok || a.Path != "/b/01.jpg" {
		t.Fatalf("Reset 后应从 B 的第 0 个候选开始：%+v ok=%v", a, ok)
	}

	m.Reset(nil)
	if s := m.Snapshot(); s.State != StateExhausted {
		t.Fatalf("Reset 为空列表应 exhausted：%+v", s)
	}
}

func TestMachine_StaleCallbackIgnored(t *testing.T) {
	m := New(list("/a/01.jpg", "/a/1.jpg"))
	staleA, _ := m.Begin()

	m.Reset(list("/b/01.jpg", "/b/1.jpg"))

	// A 的成功回调迟到：不得把 B 置为 Displayed。
	if m.Report(staleA, true) {
		t.Fatalf("过期回调不应被接受")
	}
	s := m.Snapshot()
	if s.State != StateProbing || s.Index != 0 || s.Path != "" {
		t.Fatalf("过期回调污染了 B 的状态：%+v", s)
	}

	// A 的失败回调迟到：同样不得推进 B。
	b0, _ := m.Begin()
	if m.Report(staleA, false) {
		t.Fatalf("过期失败回调不应被接受")
	}
	if s := m.Snapshot(); s.Index != 0 {
		t.Fatalf("过期失败回调推进了 B：%+v", s)
	}
	if !m.Report(b0, true) {
		t.Fatalf("B 的当前凭据应被接受")
	}
	if s := m.Snapshot(); s.State != StateDisplayed || s.Path != "/b/01.jpg" {
		t.Fatalf("期望 B Displayed(0)：%+v", s)
	}
}

func TestMachine_ReportTwiceIgnored(t *testing.T) {
	m := New(list("/a/01.jpg", "/a/1.jpg", "/a/01.png"))
	a, _ := m.Begin()
	m.Report(a, false)
	if m.Report(a, false) {
		t.Fatalf("同一凭据重复回报应被忽略")
	}
	if s := m.Snapshot(); s.Index != 1 {
		t.Fatalf("重复回报不应跳过候选：%+v", s)
	}
}

func TestMachine_RestartReprobesFromZero(t *testing.T) {
	m := New(list("/a/01.jpg", "/a/1.jpg"))
	a, _ := m.Begin()
	m.Report(a, false)
	a, _ = m.Begin()
	m.Report(a, true)

	gen := m.Snapshot().Generation
	m.Restart()
	s := m.Snapshot()
	if s.State != StateProbing || s.Index != 0 || s.Generation != gen+1 {
		t.Fatalf("Restart 应回到 Probing(0) 且 generation+1：%+v", s)
	}
}

func TestView_LoadingHasNoSrc(t *testing.T) {
	m := New(list("/a/01.jpg"))
	d := View(m.Snapshot(), Placeholder{Title: "x"})
	if d.Kind != DisplayLoading || d.Src != "" {
		t.Fatalf("Probing 状态应渲染 loading：%+v", d)
	}
}

func TestView_DisplayedAndExhausted(t *testing.T) {
	ph := Placeholder{Title: "Acuicultura", Subtitle: "Imagen no disponible"}

	m := New(list("/a/01.jpg", "/a/1.jpg"))
	a, _ := m.Begin()
	m.Report(a, false)
	a, _ = m.Begin()
	m.Report(a, true)
	d := View(m.Snapshot(), ph)
	if d.Kind != DisplayImage || d.Src != "/a/1.jpg" {
		t.Fatalf("期望显示 /a/1.jpg，实际 %+v", d)
	}

	m.Reset(list("/b/01.jpg"))
	a, _ = m.Begin()
	m.Report(a, false)
	d = View(m.Snapshot(), ph)
	if d.Kind != DisplayPlaceholder || d.Src != "" || d.Placeholder != ph {
		t.Fatalf("耗尽后应渲染占位面板且不带路径，实际 %+v", d)
	}
}
