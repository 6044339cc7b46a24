// 包 middleware：入口级 HTTP 中间件
package middleware

import (
	"net/http"
	"sync"
	"time"

	"been-map/internal/logger"
)

// 文档注释：令牌桶限流中间件（每秒）
// 背景：事件投递与 SVG 渲染会占用会话锁与 CPU，峰值时在入口限速，避免拖慢全部会话。
// 约束：不做队列排队，仅丢弃并返回 429；每个自然秒重新装满。
type TokenBucket struct {
	capacity int
	tokens   int
	lastSec  int64
	now      func() time.Time
	mu       sync.Mutex
}

// NewTokenBucket：qps<=0 时回退到 200
func NewTokenBucket(qps int) *TokenBucket {
	if qps <= 0 {
		qps = 200
	}
	return &TokenBucket{capacity: qps, tokens: qps, lastSec: time.Now().Unix(), now: time.Now}
}

// Allow：当前秒仍有令牌时消费一个
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	nowSec := tb.now().Unix()
	if tb.lastSec != nowSec {
		tb.lastSec = nowSec
		tb.tokens = tb.capacity
	}
	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// Wrap：enabled 为 false 时原样返回 next
func Wrap(next http.Handler, enabled bool, qps int) http.Handler {
	if !enabled {
		return next
	}
	tb := NewTokenBucket(qps)
	logger.L().Info("rate_limit_enabled", "qps", tb.capacity)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !tb.Allow() {
			logger.L().Debug("rate_limited", "path", r.URL.Path)
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
