package formula

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/lk2023060901/petpark/app/petpark/internal/errs"
)

const number = `(\d+(?:\.\d+)?)`

// 表达式在去除空白与括号后匹配，系数可省略 ("level + 5" 即 A=1)
var patterns = map[Type]*regexp.Regexp{
	TypeLinear:      regexp.MustCompile(`^(?:` + number + `\*)?level(?:([+-])` + number + `)?$`),
	TypeQuadratic:   regexp.MustCompile(`^(?:` + number + `\*)?level\^2(?:([+-])` + number + `)?$`),
	TypeExponential: regexp.MustCompile(`^(?:` + number + `\*)?` + number + `\^level$`),
}

// Parse 将配置中的公式字符串解析为对应类型的 Formula
//
//	linear:      "40 * level + 60"
//	quadratic:   "0.8 * level^2 + 380"
//	exponential: "285.69 * (1.06^level)"
func Parse(typ Type, expr string) (Formula, error) {
	re, ok := patterns[typ]
	if !ok {
		return nil, errs.Configurationf("unknown formula type %q", typ)
	}

	norm := normalize(expr)
	m := re.FindStringSubmatch(norm)
	if m == nil {
		for other, ore := range patterns {
			if other != typ && ore.MatchString(norm) {
				return nil, errs.Configurationf("formula %q is %s, declared as %s", expr, other, typ)
			}
		}
		return nil, errs.Configurationf("malformed %s formula %q", typ, expr)
	}

	switch typ {
	case TypeLinear:
		a, b := coefficient(m[1]), offset(m[2], m[3])
		return Linear{A: a, B: b}, nil
	case TypeQuadratic:
		a, b := coefficient(m[1]), offset(m[2], m[3])
		return Quadratic{A: a, B: b}, nil
	default:
		a, base := coefficient(m[1]), coefficient(m[2])
		if base <= 0 || math.IsInf(base, 0) {
			return nil, errs.Configurationf("exponential base must be positive in %q", expr)
		}
		return Exponential{A: a, Base: base}, nil
	}
}

// MustParse 解析失败时 panic，仅用于测试与常量初始化
func MustParse(typ Type, expr string) Formula {
	f, err := Parse(typ, expr)
	if err != nil {
		panic(err)
	}
	return f
}

func normalize(expr string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '(', ')':
			return -1
		}
		return r
	}, strings.ToLower(expr))
}

func coefficient(s string) float64 {
	if s == "" {
		return 1
	}
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func offset(sign, s string) float64 {
	if s == "" {
		return 0
	}
	v, _ := strconv.ParseFloat(s, 64)
	if sign == "-" {
		return -v
	}
	return v
}
