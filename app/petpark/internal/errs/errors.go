// Package errs 定义引擎的错误分类。
//
// 预期内的拒绝 (NotFound / InsufficientFunds / CooldownActive / ValidationFailed)
// 由调用方转换为业务结果返回；Configuration / System 错误记录日志后以通用失败返回。
package errs

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	// ErrNotFound 宠物、规则、钱包等不存在
	ErrNotFound = errors.New("not found")

	// ErrInsufficientFunds 积分余额不足
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrCooldownActive 冷却中
	ErrCooldownActive = errors.New("cooldown active")

	// ErrValidationFailed 规则或档位校验失败
	ErrValidationFailed = errors.New("validation failed")

	// ErrAlreadySignedIn 今日已签到
	ErrAlreadySignedIn = errors.New("already signed in today")

	// ErrConfiguration 配置错误，例如档位缺口或公式无法解析
	ErrConfiguration = errors.New("configuration error")

	// ErrConcurrentUpdate 行版本不一致，写入期间记录被并发修改
	ErrConcurrentUpdate = errors.New("concurrent update")

	// ErrSystem 存储不可用等意外错误
	ErrSystem = errors.New("system error")
)

// Violation 单条校验失败
type Violation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// CooldownError 冷却未结束，Remaining 为剩余分钟数
type CooldownError struct {
	Remaining int
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("cooldown active, %d minute(s) remaining", e.Remaining)
}

func (e *CooldownError) Is(target error) bool {
	return target == ErrCooldownActive
}

// ValidationError 携带全部校验失败项
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// Configuration 将 err 标记为配置错误
func Configuration(err error, format string, args ...any) error {
	return errors.Mark(errors.Wrapf(err, format, args...), ErrConfiguration)
}

// Configurationf 创建配置错误
func Configurationf(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrConfiguration)
}

// System 将 err 标记为系统错误，已分类的错误原样返回
func System(err error, msg string) error {
	if err == nil {
		return nil
	}
	if IsExpected(err) || errors.Is(err, ErrConfiguration) || errors.Is(err, ErrSystem) {
		return errors.Wrap(err, msg)
	}
	return errors.Mark(errors.Wrap(err, msg), ErrSystem)
}

// NotFoundf 创建带上下文的 NotFound 错误
func NotFoundf(format string, args ...any) error {
	return errors.Wrapf(ErrNotFound, format, args...)
}

// IsExpected 是否为预期内的业务拒绝
func IsExpected(err error) bool {
	return errors.IsAny(err,
		ErrNotFound,
		ErrInsufficientFunds,
		ErrCooldownActive,
		ErrValidationFailed,
		ErrAlreadySignedIn,
	)
}

// Reason 预期拒绝的分类名，用于结果与指标标签
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrCooldownActive):
		return "cooldown_active"
	case errors.Is(err, ErrValidationFailed):
		return "validation_failed"
	case errors.Is(err, ErrAlreadySignedIn):
		return "already_signed_in"
	case errors.Is(err, ErrConfiguration):
		return "configuration_error"
	case errors.Is(err, ErrConcurrentUpdate):
		return "concurrent_update"
	default:
		return "system_error"
	}
}
