package validation

import (
	"fmt"

	"github.com/lk2023060901/petpark/app/petpark/internal/errs"
)

// Violation 单条校验失败
type Violation = errs.Violation

// Result 汇总全部校验失败项
type Result struct {
	Violations []Violation `json:"violations"`
}

// Add 追加一条失败
func (r *Result) Add(field, rule, format string, args ...any) {
	r.Violations = append(r.Violations, Violation{
		Field:   field,
		Rule:    rule,
		Message: fmt.Sprintf(format, args...),
	})
}

// Merge 合并另一结果，字段名加前缀
func (r *Result) Merge(prefix string, other *Result) {
	if other == nil {
		return
	}
	for _, v := range other.Violations {
		if prefix != "" {
			v.Field = prefix + "." + v.Field
		}
		r.Violations = append(r.Violations, v)
	}
}

// Valid 是否全部通过
func (r *Result) Valid() bool {
	return len(r.Violations) == 0
}

// Err 未通过时返回 *errs.ValidationError
func (r *Result) Err() error {
	if r.Valid() {
		return nil
	}
	return &errs.ValidationError{Violations: r.Violations}
}
