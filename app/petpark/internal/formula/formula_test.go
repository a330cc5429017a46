package formula

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/petpark/app/petpark/internal/errs"
	"github.com/lk2023060901/petpark/app/petpark/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		expr string
		want Formula
	}{
		{"linear", TypeLinear, "40 * level + 60", Linear{A: 40, B: 60}},
		{"linear compact", TypeLinear, "40*level+60", Linear{A: 40, B: 60}},
		{"linear negative offset", TypeLinear, "12.5 * level - 3", Linear{A: 12.5, B: -3}},
		{"linear implicit coefficient", TypeLinear, "level + 5", Linear{A: 1, B: 5}},
		{"linear no offset", TypeLinear, "100 * level", Linear{A: 100, B: 0}},
		{"quadratic", TypeQuadratic, "0.8 * level^2 + 380", Quadratic{A: 0.8, B: 380}},
		{"quadratic parenthesized", TypeQuadratic, "0.8 * (level^2) + 380", Quadratic{A: 0.8, B: 380}},
		{"exponential", TypeExponential, "285.69 * (1.06^level)", Exponential{A: 285.69, Base: 1.06}},
		{"exponential bare", TypeExponential, "2^level", Exponential{A: 1, Base: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.typ, tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.typ, got.Type())
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		expr string
	}{
		{"empty", TypeLinear, ""},
		{"garbage", TypeLinear, "forty times level"},
		{"type mismatch", TypeLinear, "0.8 * level^2 + 380"},
		{"exponential as quadratic", TypeQuadratic, "285.69 * (1.06^level)"},
		{"unknown type", Type("cubic"), "level^3"},
		{"zero base", TypeExponential, "10 * 0^level"},
		{"dangling operator", TypeLinear, "40 * level +"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.typ, tt.expr)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errs.ErrConfiguration))
		})
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, f := range []Formula{
		Linear{A: 40, B: 60},
		Linear{A: 2.5, B: -10},
		Quadratic{A: 0.8, B: 380},
		Exponential{A: 285.69, Base: 1.06},
	} {
		parsed, err := Parse(f.Type(), f.String())
		require.NoError(t, err, f.String())
		assert.Equal(t, f, parsed)
		for level := 1; level <= 20; level++ {
			assert.Equal(t, f.Eval(level), parsed.Eval(level))
		}
	}
}

func sampleTiers() []model.LevelUpTier {
	return []model.LevelUpTier{
		{MinLevel: 11, MaxLevel: 30, FormulaType: "quadratic", Formula: "0.8 * level^2 + 380", RewardPoints: 20},
		{MinLevel: 1, MaxLevel: 10, FormulaType: "linear", Formula: "40 * level + 60", RewardPoints: 10},
		{MinLevel: 31, MaxLevel: -1, FormulaType: "exponential", Formula: "285.69 * (1.06^level)", RewardPoints: 50},
	}
}

func TestEvaluate(t *testing.T) {
	set, err := Compile(1, sampleTiers())
	require.NoError(t, err)
	assert.Equal(t, 1, set.Tiers[0].MinLevel)

	tests := []struct {
		level int
		want  int64
	}{
		{1, 100},
		{3, 180},
		{4, 220},
		{10, 460},
		{11, 477},  // 0.8*121+380 = 476.8
		{20, 700},  // 0.8*400+380
		{31, 1739}, // 285.69*1.06^31 = 1739.3
	}
	for _, tt := range tests {
		got, err := RequiredExp(set, tt.level)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "level %d", tt.level)

		again, _ := RequiredExp(set, tt.level)
		assert.Equal(t, got, again)
	}

	tier, err := set.TierFor(500)
	require.NoError(t, err)
	assert.Equal(t, int64(50), tier.RewardPoints)
}

func TestEvaluate_NoMatchingTier(t *testing.T) {
	set, err := Compile(1, []model.LevelUpTier{
		{MinLevel: 1, MaxLevel: 10, FormulaType: "linear", Formula: "40 * level + 60"},
		{MinLevel: 12, MaxLevel: -1, FormulaType: "linear", Formula: "50 * level"},
	})
	require.NoError(t, err)

	_, err = Evaluate(set, 11)
	assert.True(t, errors.Is(err, ErrNoMatchingTier))
	assert.True(t, errors.Is(err, errs.ErrConfiguration))

	_, err = Evaluate(nil, 1)
	assert.True(t, errors.Is(err, ErrNoMatchingTier))
}

func TestRequiredExp_NonPositive(t *testing.T) {
	set, err := Compile(1, []model.LevelUpTier{
		{MinLevel: 1, MaxLevel: -1, FormulaType: "linear", Formula: "0 * level + 0"},
	})
	require.NoError(t, err)

	_, err = RequiredExp(set, 1)
	assert.True(t, errors.Is(err, errs.ErrConfiguration))
}

func TestCompile_InvalidFormula(t *testing.T) {
	_, err := Compile(1, []model.LevelUpTier{
		{MinLevel: 1, MaxLevel: -1, FormulaType: "linear", Formula: "0.8 * level^2 + 380"},
	})
	assert.True(t, errors.Is(err, errs.ErrConfiguration))
}

func TestEvaluator_Memoizes(t *testing.T) {
	set, err := Compile(7, sampleTiers())
	require.NoError(t, err)

	e := NewEvaluator(16)
	for i := 0; i < 3; i++ {
		v, err := e.RequiredExp(set, 3)
		require.NoError(t, err)
		assert.Equal(t, int64(180), v)
	}
	stats := e.Stats()
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, uint64(2), stats.Hits)

	// 新版本不复用旧结果
	set2, err := Compile(8, []model.LevelUpTier{
		{MinLevel: 1, MaxLevel: -1, FormulaType: "linear", Formula: "10 * level"},
	})
	require.NoError(t, err)
	v, err := e.RequiredExp(set2, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(30), v)
}
