// Package formula 升级经验曲线：分段档位，每段为线性、二次或指数公式。
package formula

import (
	"math"
	"strconv"

	"github.com/lk2023060901/petpark/app/petpark/internal/model"
)

// Type 公式类型
type Type string

const (
	TypeLinear      Type = model.FormulaLinear
	TypeQuadratic   Type = model.FormulaQuadratic
	TypeExponential Type = model.FormulaExponential
)

// Formula 已解析的公式，只有 Linear / Quadratic / Exponential 三种实现
type Formula interface {
	Type() Type
	Eval(level int) float64
	String() string

	sealed()
}

// Linear A*level + B
type Linear struct {
	A, B float64
}

func (Linear) Type() Type { return TypeLinear }

func (f Linear) Eval(level int) float64 {
	return f.A*float64(level) + f.B
}

func (f Linear) String() string {
	return num(f.A) + " * level" + signed(f.B)
}

func (Linear) sealed() {}

// Quadratic A*level^2 + B
type Quadratic struct {
	A, B float64
}

func (Quadratic) Type() Type { return TypeQuadratic }

func (f Quadratic) Eval(level int) float64 {
	l := float64(level)
	return f.A*l*l + f.B
}

func (f Quadratic) String() string {
	return num(f.A) + " * level^2" + signed(f.B)
}

func (Quadratic) sealed() {}

// Exponential A*Base^level
type Exponential struct {
	A, Base float64
}

func (Exponential) Type() Type { return TypeExponential }

func (f Exponential) Eval(level int) float64 {
	return f.A * math.Pow(f.Base, float64(level))
}

func (f Exponential) String() string {
	return num(f.A) + " * (" + num(f.Base) + "^level)"
}

func (Exponential) sealed() {}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func signed(v float64) string {
	switch {
	case v > 0:
		return " + " + num(v)
	case v < 0:
		return " - " + num(-v)
	default:
		return ""
	}
}
