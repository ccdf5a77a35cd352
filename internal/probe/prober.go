package probe

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// DefaultTimeout 是单个候选的等待上限：慢 404 不能拖住整条顺序链。
const DefaultTimeout = 2500 * time.Millisecond

// Checker 判断某个候选路径是否能加载为图片（nil 表示可用）。
// 实现必须尊重 ctx：超时即失败。
type Checker interface {
	Check(ctx context.Context, path string) error
}

// CheckerFunc 让普通函数满足 Checker。
type CheckerFunc func(ctx context.Context, path string) error

func (f CheckerFunc) Check(ctx context.Context, path string) error { return f(ctx, path) }

// Limiter 限制跨槽位同时在途的探测数量。它只是资源礼让，不影响正确性。
type Limiter struct {
	sem *semaphore.Weighted
}

// NewLimiter 返回最多允许 n 个并发探测的 Limiter；n <= 0 表示不限。
func NewLimiter(n int) *Limiter {
	if n <= 0 {
		return nil
	}
	return &Limiter{sem: semaphore.NewWeighted(int64(n))}
}

func (l *Limiter) acquire(ctx context.Context) error {
	if l == nil {
		return nil
	}
	return l.sem.Acquire(ctx, 1)
}

func (l *Limiter) release() {
	if l == nil {
		return
	}
	l.sem.Release(1)
}

// Prober 驱动 Machine：一次只发一个候选，等结果回来再决定下一步。
type Prober struct {
	Checker Checker
	Timeout time.Duration
	Limiter *Limiter
	Logger  *zap.Logger
}

func (p Prober) timeout() time.Duration {
	if p.Timeout <= 0 {
		return DefaultTimeout
	}
	return p.Timeout
}

func (p Prober) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

// Run 顺序探测直到 Displayed / Exhausted。
//
// 以下情况提前返回（状态保持 Probing，由渲染端显示 loading）：
// - ctx 被取消
// - 本轮发出的凭据已过期（槽位被 Reset，新 generation 由新的 Run 负责）
//
// Run 从不返回错误：候选失败只推进状态机。
func (p Prober) Run(ctx context.Context, m *Machine) Snapshot {
	log := p.logger()
	for {
		a, ok := m.Begin()
		if !ok {
			return m.Snapshot()
		}

		if err := p.Limiter.acquire(ctx); err != nil {
			// 未真正发出探测：作废本次凭据，保持 Probing。
			m.abandon(a)
			return m.Snapshot()
		}
		err := p.checkOne(ctx, a.Path)
		p.Limiter.release()

		if ctx.Err() != nil {
			m.abandon(a)
			return m.Snapshot()
		}

		if err != nil {
			log.Debug("候选加载失败", zap.String("path", a.Path), zap.Int("index", a.Index), zap.Error(err))
		}
		if !m.Report(a, err == nil) {
			log.Debug("丢弃过期探测结果", zap.String("path", a.Path), zap.Uint64("generation", a.Generation))
			return m.Snapshot()
		}

		s := m.Snapshot()
		switch s.State {
		case StateDisplayed:
			return s
		case StateExhausted:
			log.Info("候选全部失败，改用占位面板", zap.Int("candidates", s.Candidates))
			return s
		}
	}
}

func (p Prober) checkOne(ctx context.Context, path string) error {
	cctx, cancel := context.WithTimeout(ctx, p.timeout())
	defer cancel()

	// Checker 可能不理会 ctx：放到 goroutine 里，超时后不再等待。
	done := make(chan error, 1)
	go func() { done <- p.Checker.Check(cctx, path) }()

	select {
	case err := <-done:
		return err
	case <-cctx.Done():
		return cctx.Err()
	}
}
