package content

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Store 持有当前内容快照；读者拿到的 *Site 不会被修改，只会被整体替换。
type Store struct {
	cur atomic.Pointer[Site]
}

func NewStore(s *Site) *Store {
	st := &Store{}
	st.cur.Store(s)
	return st
}

// Site 返回当前快照。
func (st *Store) Site() *Site { return st.cur.Load() }

// Replace 用新快照替换当前快照。
func (st *Store) Replace(s *Site) {
	if s != nil {
		st.cur.Store(s)
	}
}

// Reload 重新读取 path；失败时保留旧快照并返回错误。
func (st *Store) Reload(path string) error {
	s, err := Load(path)
	if err != nil {
		return err
	}
	st.Replace(s)
	return nil
}

const watchDebounce = 300 * time.Millisecond

// Watch 监听 path 所在目录，文件变化稳定后重新加载内容，直到 ctx 结束。
//
// 监听目录而不是文件本身：编辑器常以“写临时文件 + rename”的方式保存。
// 新内容无效时保留旧快照并记录 warn。
func (st *Store) Watch(ctx context.Context, path string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	tick := time.NewTicker(watchDebounce / 3)
	defer tick.Stop()

	var pending time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				pending = time.Now()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("内容文件监听出错", zap.Error(err))
		case <-tick.C:
			if pending.IsZero() || time.Since(pending) < watchDebounce {
				continue
			}
			pending = time.Time{}
			if err := st.Reload(abs); err != nil {
				logger.Warn("内容重新加载失败，保留旧内容", zap.String("path", abs), zap.Error(err))
				continue
			}
			logger.Info("内容已重新加载", zap.String("path", abs))
		}
	}
}
