package sentry

import (
	"github.com/gin-gonic/gin"
)

// GinRecovery 上报 panic 后重新抛出，由外层 Recovery 中间件返回 500
func GinRecovery(c *Client) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				c.RecoverWithContext(ctx.Request.Context(), r, map[string]string{
					"route":  ctx.FullPath(),
					"method": ctx.Request.Method,
				})
				panic(r)
			}
		}()
		ctx.Next()
	}
}
