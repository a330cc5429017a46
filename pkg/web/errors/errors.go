package errors

import "net/http"

// 业务错误码
const (
	CodeOK            = 0
	CodeInvalidParams = 40001
	CodeNotFound      = 40004
	CodeConflict      = 40009
	CodeRateLimited   = 40029

	// 进度与奖励引擎的预期拒绝
	CodeInsufficientFunds = 41001
	CodeCooldownActive    = 41002
	CodeValidationFailed  = 41003
	CodeAlreadySignedIn   = 41004

	CodeInternalError = 50000
)

// CodeToStatus 将业务错误码映射为 HTTP 状态码
func CodeToStatus(code int) int {
	switch code {
	case CodeOK:
		return http.StatusOK
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeCooldownActive, CodeAlreadySignedIn:
		return http.StatusConflict
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeInsufficientFunds, CodeValidationFailed:
		return http.StatusUnprocessableEntity
	}
	if code >= 50000 {
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}
