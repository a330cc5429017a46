package web

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	weberrors "github.com/lk2023060901/petpark/pkg/web/errors"
)

// FieldError 参数校验失败明细
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// BindJSON 绑定并校验 JSON 请求体，失败时已写出响应并返回 false
func BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			details := make([]FieldError, 0, len(verrs))
			for _, fe := range verrs {
				details = append(details, FieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()})
			}
			ErrorWithData(c, weberrors.CodeInvalidParams, "invalid request parameters", details)
			return false
		}
		Error(c, weberrors.CodeInvalidParams, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// PathInt64 解析路径参数为 int64，失败时已写出响应
func PathInt64(c *gin.Context, name string) (int64, bool) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || v <= 0 {
		Error(c, weberrors.CodeInvalidParams, "invalid path parameter: "+name)
		return 0, false
	}
	return v, true
}

// QueryInt 获取整数查询参数，缺省或非法时返回 def
func QueryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
