package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// rateLimiter 基于滑动窗口的每 IP 限流器
type rateLimiter struct {
	mu          sync.Mutex
	window      time.Duration
	maxAttempts int
	attempts    map[string][]time.Time
}

func newRateLimiter(maxAttempts int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		window:      window,
		maxAttempts: maxAttempts,
		attempts:    make(map[string][]time.Time),
	}
	// 定期清理过期数据
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			rl.mu.Lock()
			cutoff := time.Now().Add(-rl.window)
			for ip, ts := range rl.attempts {
				kept := pruneBefore(ts, cutoff)
				if len(kept) == 0 {
					delete(rl.attempts, ip)
				} else {
					rl.attempts[ip] = kept
				}
			}
			rl.mu.Unlock()
		}
	}()
	return rl
}

// allow 记录一次访问并判断是否放行
func (rl *rateLimiter) allow(ip string) bool {
	now := time.Now()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	kept := pruneBefore(rl.attempts[ip], now.Add(-rl.window))
	if len(kept) >= rl.maxAttempts {
		rl.attempts[ip] = kept
		return false
	}
	rl.attempts[ip] = append(kept, now)
	return true
}

func pruneBefore(ts []time.Time, cutoff time.Time) []time.Time {
	kept := ts[:0]
	for _, t := range ts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

// RateLimit 每 IP 限流中间件，用于登录、密码重置等敏感接口
// 窗口内超过 maxAttempts 次返回 429
func RateLimit(maxAttempts int, window time.Duration) gin.HandlerFunc {
	rl := newRateLimiter(maxAttempts, window)
	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP()) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code":    http.StatusTooManyRequests,
				"message": "请求过于频繁，请稍后再试",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
