package middleware

import (
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"paddock-api/internal/metrics"
)

// 文档注释：令牌桶限流（每秒）
// 背景：上传与面积计算占用 CPU，峰值时对入口限速；按环境变量开关与速率配置。
// 约束：简化实现，不做队列排队，仅丢弃并返回 429。
type TokenBucket struct {
	capacity int
	tokens   int
	lastSec  int64
	mu       sync.Mutex
	now      func() time.Time
}

func NewTokenBucket(qps int) *TokenBucket {
	tb := &TokenBucket{capacity: qps, tokens: qps, now: time.Now}
	tb.lastSec = tb.now().Unix()
	return tb
}

func (tb *TokenBucket) allow() bool {
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

// RateLimit 超出速率的请求返回 429 与 {"detail": ...}
func RateLimit(tb *TokenBucket) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !tb.allow() {
				metrics.RateLimitedTotal.Inc()
				w.Header().Set("content-type", "application/json; charset=utf-8")
				w.Header().Set("retry-after", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"detail":"Too many requests"}` + "\n"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// 文档注释：按环境变量组装公共中间件链（请求 ID → CORS → 可选限流）
// 约束：RATE_LIMIT_ENABLED=true 时启用限流，RATE_LIMIT_QPS 缺省 200。
func Wrap(next http.Handler) http.Handler {
	h := next
	if os.Getenv("RATE_LIMIT_ENABLED") == "true" {
		qps := 200
		if s := os.Getenv("RATE_LIMIT_QPS"); s != "" {
			if n, e := strconv.Atoi(s); e == nil && n > 0 {
				qps = n
			}
		}
		h = RateLimit(NewTokenBucket(qps))(h)
	}
	h = CORSFromEnv()(h)
	return RequestID(h)
}
