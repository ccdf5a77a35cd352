package probe

import (
	"sync"

	"github.com/John-Robertt/vitrina/internal/domain"
)

// State 是单个图片槽位的探测状态。
type State int

const (
	StateIdle State = iota
	StateProbing
	StateDisplayed
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateProbing:
		return "probing"
	case StateDisplayed:
		return "displayed"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Attempt 是一次候选探测的凭据。Report 时必须原样交回，
// Generation/Index 不匹配的结果一律视为过期回调并丢弃。
type Attempt struct {
	Generation uint64
	Index      int
	Path       string
}

// Snapshot 是某一时刻的只读状态。
type Snapshot struct {
	State      State
	Index      int
	Path       string // 仅 StateDisplayed 时非空
	Generation uint64
	Attempts   int // 当前 generation 内已发出的探测次数
	Candidates int
}

// Machine 是每个槽位独占的顺序探测状态机。
//
// 约束：
// - 严格按列表顺序：i 的结果未知前绝不发出 i+1
// - 失败的候选在同一 generation 内不重试
// - Reset 无条件回到 Probing(0)（空列表则直接 Exhausted），旧 generation 的回调全部失效
//
// 结果回调可能来自其它 goroutine，因此内部加锁；不同槽位之间不共享任何状态。
type Machine struct {
	mu sync.Mutex

	list       domain.CandidateList
	generation uint64
	index      int
	state      State
	inflight   bool
	attempts   int
}

// New 创建状态机并立即进入初始状态。
func New(list domain.CandidateList) *Machine {
	m := &Machine{}
	m.Reset(list)
	return m
}

// Reset 用新的候选列表重新开始，丢弃任何在途探测。
func (m *Machine) Reset(list domain.CandidateList) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.list = append(domain.CandidateList(nil), list...)
	m.generation++
	m.index = 0
	m.inflight = false
	m.attempts = 0
	if len(m.list) == 0 {
		m.state = StateExhausted
		return
	}
	m.state = StateProbing
}

// Restart 以当前列表重新探测（轮播切回某张幻灯片时使用）。
func (m *Machine) Restart() {
	m.mu.Lock()
	list := m.list
	m.mu.Unlock()
	m.Reset(list)
}

// Begin 发出当前候选的探测凭据。
// 非 Probing 状态、或上一次探测结果尚未回报时返回 ok=false。
func (m *Machine) Begin() (Attempt, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateProbing || m.inflight {
		return Attempt{}, false
	}
	m.inflight = true
	m.attempts++
	return Attempt{
		Generation: m.generation,
		Index:      m.index,
		Path:       m.list[m.index],
	}, true
}

// Report 回报一次探测结果；返回 false 表示该结果已过期（被 Reset 取代）并被忽略。
func (m *Machine) Report(a Attempt, ok bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if a.Generation != m.generation || a.Index != m.index || m.state != StateProbing || !m.inflight {
		return false
	}
	m.inflight = false

	if ok {
		m.state = StateDisplayed
		return true
	}
	if m.index+1 < len(m.list) {
		m.index++
		return true
	}
	m.state = StateExhausted
	return true
}

// abandon 撤回一个尚未得到结果的凭据，使同一候选可以被下一次 Run 重新发出。
// 这不是重试：该候选的结果从未被观察到。
func (m *Machine) abandon(a Attempt) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.Generation == m.generation && a.Index == m.index && m.inflight {
		m.inflight = false
		m.attempts--
	}
}

func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Snapshot{
		State:      m.state,
		Index:      m.index,
		Generation: m.generation,
		Attempts:   m.attempts,
		Candidates: len(m.list),
	}
	if m.state == StateDisplayed {
		s.Path = m.list[m.index]
	}
	return s
}

// Candidates 返回当前列表的副本。
func (m *Machine) Candidates() domain.CandidateList {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append(domain.CandidateList(nil), m.list...)
}
