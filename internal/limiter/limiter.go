package limiter

import (
	"sync"
	"time"
)

const (
	DefaultMaxRequests = 5
	DefaultWindow      = 60 * time.Second
)

// entry 单个 key 的固定窗口状态
type entry struct {
	count        int
	windowExpiry time.Time
}

// FixedWindowLimiter 按 key（通常是客户端 IP）做固定窗口限流
// 进程内唯一的共享可变状态，Allow 的查改必须在同一把锁内完成，
// 避免两个并发请求同时读到 count < max 而被双双放行
type FixedWindowLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	entries map[string]*entry
	nowFunc func() time.Time
}

// New 创建限流器，max <= 0 或 window <= 0 时使用默认值（5 次 / 60 秒）
func New(max int, window time.Duration) *FixedWindowLimiter {
	if max <= 0 {
		max = DefaultMaxRequests
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &FixedWindowLimiter{
		max:     max,
		window:  window,
		entries: make(map[string]*entry),
		nowFunc: time.Now,
	}
}

// Allow 判断 key 的本次请求是否放行
func (l *FixedWindowLimiter) Allow(key string) bool {
	now := l.nowFunc()

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok || now.After(e.windowExpiry) {
		// 窗口不存在或已过期，重置计数
		l.entries[key] = &entry{count: 1, windowExpiry: now.Add(l.window)}
		return true
	}

	if e.count < l.max {
		e.count++
		return true
	}
	return false
}

// Sweep 清理已过期的窗口条目，返回清理数量
// 由定时任务周期调用，保证 entries 不会无限增长
func (l *FixedWindowLimiter) Sweep() int {
	now := l.nowFunc()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, e := range l.entries {
		if now.After(e.windowExpiry) {
			delete(l.entries, key)
			removed++
		}
	}
	return removed
}

// Size 返回当前跟踪的 key 数量
func (l *FixedWindowLimiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
