package middleware

import (
	"fmt"
	"net/http"
	"time"

	"leisuretimez/pkg/cache"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const throttleWindow = time.Minute

// Throttle limits requests per fixed one-minute window: by user ID for authenticated
// callers (run OptionalAuth first) and by client IP otherwise.
func Throttle(counter cache.Counter, anonPerMinute, userPerMinute int) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := anonPerMinute
		key := "anon:" + c.ClientIP()
		if uid := GetUserID(c); uid != 0 {
			limit = userPerMinute
			key = fmt.Sprintf("user:%d", uid)
		}
		bucket := time.Now().Unix() / int64(throttleWindow.Seconds())
		n, err := counter.Incr(c.Request.Context(), fmt.Sprintf("throttle:%s:%d", key, bucket), throttleWindow)
		if err != nil {
			// counter backend down: let the request through
			log.WithError(err).Warn("throttle counter")
			c.Next()
			return
		}
		if n > int64(limit) {
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
