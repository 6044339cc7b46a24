// 包 session：已挂载地图表面的宿主侧注册表
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"been-map/internal/logger"
	"been-map/internal/metrics"
	"been-map/internal/surface"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("session: not found")

// Factory：为新会话创建地图表面
type Factory func() *surface.Surface

// 文档注释：会话条目
// 背景：每个会话独占一个 Surface；条目锁保证同一会话的事件串行执行、互不交错。
type entry struct {
	mu       sync.Mutex
	surface  *surface.Surface
	lastSeen time.Time
}

// 文档注释：会话注册表
// 背景：负责挂载/卸载与空闲回收；不同会话之间互不阻塞。
// 约束：空闲超过 ttl 的会话由 Start 启动的循环卸载；ttl <= 0 时不回收；线程安全读写。
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	factory  Factory
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
}

func NewRegistry(factory Factory, ttl time.Duration) *Registry {
	interval := ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	return &Registry{
		sessions: make(map[string]*entry),
		factory:  factory,
		ttl:      ttl,
		interval: interval,
		now:      time.Now,
	}
}

// Mount：创建会话并返回 id
func (r *Registry) Mount() string {
	id := uuid.NewString()
	e := &entry{surface: r.factory(), lastSeen: r.now()}
	r.mu.Lock()
	r.sessions[id] = e
	n := len(r.sessions)
	r.mu.Unlock()
	metrics.SessionsActive.Set(float64(n))
	logger.L().Info("session_mounted", "id", id, "active", n)
	return id
}

// Unmount：卸载会话；不存在时返回 ErrNotFound
func (r *Registry) Unmount(id string) error {
	r.mu.Lock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	n := len(r.sessions)
	r.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	metrics.SessionsActive.Set(float64(n))
	logger.L().Info("session_unmounted", "id", id, "active", n)
	return nil
}

// With：在会话锁内执行 fn 并刷新最近活跃时间
func (r *Registry) With(id string, fn func(*surface.Surface) error) error {
	r.mu.RLock()
	e, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastSeen = r.now()
	return fn(e.surface)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Start：启动空闲回收循环；ctx 取消时停止
func (r *Registry) Start(ctx context.Context) {
	if r.ttl <= 0 {
		return
	}
	t := time.NewTicker(r.interval)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				r.Sweep()
			}
		}
	}()
}

// Sweep：卸载空闲超时的会话，返回卸载数量
func (r *Registry) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.ttl)
	r.mu.Lock()
	var expired []string
	for id, e := range r.sessions {
		// 正在处理事件的会话视为活跃
		if !e.mu.TryLock() {
			continue
		}
		if e.lastSeen.Before(cutoff) {
			expired = append(expired, id)
			delete(r.sessions, id)
		}
		e.mu.Unlock()
	}
	n := len(r.sessions)
	r.mu.Unlock()
	if len(expired) > 0 {
		metrics.SessionsExpiredTotal.Add(float64(len(expired)))
		metrics.SessionsActive.Set(float64(n))
		logger.L().Info("session_sweep", "expired", len(expired), "active", n)
	}
	return len(expired)
}
