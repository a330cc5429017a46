package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/petpark/pkg/logger"
	weberrors "github.com/lk2023060901/petpark/pkg/web/errors"
)

// Response 统一响应结构
type Response struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Data      any    `json:"data"`
	RequestID string `json:"request_id,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Code:      weberrors.CodeOK,
		Message:   "ok",
		Data:      data,
		RequestID: logger.RequestIDFromContext(c.Request.Context()),
	})
}

// Error 错误响应，HTTP 状态由业务码推导
func Error(c *gin.Context, code int, message string) {
	ErrorWithData(c, code, message, nil)
}

// ErrorWithData 错误响应并携带数据 (例如校验失败明细、剩余冷却时间)
func ErrorWithData(c *gin.Context, code int, message string, data any) {
	c.AbortWithStatusJSON(weberrors.CodeToStatus(code), Response{
		Code:      code,
		Message:   message,
		Data:      data,
		RequestID: logger.RequestIDFromContext(c.Request.Context()),
	})
}
