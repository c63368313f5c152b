// Package middleware 提供了处理 HTTP 请求的中间件。
package middleware

import (
	"time"

	"osteo-upgrade-go/internal/config"

	"github.com/gin-gonic/gin"
	limiter "github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RateLimiter 创建一个按客户端 IP 限流的中间件。
// 计数器保存在进程内存中，单实例部署下足够。
func RateLimiter(cfg config.RateLimitConfig) gin.HandlerFunc {
	rate := limiter.Rate{
		Period: time.Duration(cfg.WindowMinutes) * time.Minute,
		Limit:  cfg.Requests,
	}
	store := memory.NewStore()
	return mgin.NewMiddleware(limiter.New(store, rate))
}
