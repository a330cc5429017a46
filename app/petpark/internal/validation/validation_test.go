package validation

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/petpark/app/petpark/internal/errs"
	"github.com/lk2023060901/petpark/app/petpark/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) *Service {
	t.Helper()
	s, err := New()
	require.NoError(t, err)
	return s
}

func validRule() model.InteractionRule {
	return model.InteractionRule{
		InteractionType: "feed",
		DisplayName:     "Feed",
		PointsCost:      50,
		HappinessGain:   10,
		ExpGain:         20,
		CooldownMinutes: 30,
		IsActive:        true,
	}
}

func fields(r *Result) []string {
	out := make([]string, 0, len(r.Violations))
	for _, v := range r.Violations {
		out = append(out, v.Field+":"+v.Rule)
	}
	return out
}

func TestValidateRule(t *testing.T) {
	s := newService(t)

	tests := []struct {
		name   string
		mutate func(r *model.InteractionRule)
		want   []string
	}{
		{"valid", func(r *model.InteractionRule) {}, nil},
		{"free rule skips ratio", func(r *model.InteractionRule) { r.PointsCost = 0; r.ExpGain = 1000 }, nil},
		{"bad identifier", func(r *model.InteractionRule) { r.InteractionType = "Feed-Me" }, []string{"interaction_type:identifier"}},
		{"identifier too short", func(r *model.InteractionRule) { r.InteractionType = "f" }, []string{"interaction_type:identifier"}},
		{"empty display name", func(r *model.InteractionRule) { r.DisplayName = "" }, []string{"display_name:required"}},
		{"cost too high", func(r *model.InteractionRule) { r.PointsCost = 10001 }, []string{"points_cost:lte"}},
		{"cooldown too long", func(r *model.InteractionRule) { r.CooldownMinutes = 1441 }, []string{"cooldown_minutes:lte"}},
		{"negative cooldown", func(r *model.InteractionRule) { r.CooldownMinutes = -1 }, []string{"cooldown_minutes:gte"}},
		{"happiness ratio", func(r *model.InteractionRule) { r.PointsCost = 5; r.HappinessGain = 11; r.ExpGain = 25 }, []string{"happiness_gain:ratio"}},
		{"exp ratio", func(r *model.InteractionRule) { r.PointsCost = 10; r.ExpGain = 51 }, []string{"exp_gain:ratio"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRule()
			tt.mutate(&r)
			res := s.ValidateRule(&r)
			if tt.want == nil {
				assert.True(t, res.Valid(), fields(res))
				assert.NoError(t, res.Err())
				return
			}
			assert.ElementsMatch(t, tt.want, fields(res))
		})
	}
}

func TestValidateRule_ReportsAllViolations(t *testing.T) {
	s := newService(t)
	r := model.InteractionRule{
		InteractionType: "9lives",
		PointsCost:      -1,
		HappinessGain:   101,
		ExpGain:         5000,
		CooldownMinutes: 5000,
	}

	res := s.ValidateRule(&r)
	assert.ElementsMatch(t, []string{
		"interaction_type:identifier",
		"display_name:required",
		"points_cost:gte",
		"happiness_gain:lte",
		"exp_gain:lte",
		"cooldown_minutes:lte",
	}, fields(res))

	err := res.Err()
	assert.True(t, errors.Is(err, errs.ErrValidationFailed))
	var ve *errs.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Len(t, ve.Violations, 6)
}

func TestValidateTierSet(t *testing.T) {
	s := newService(t)

	good := []model.LevelUpTier{
		{MinLevel: 11, MaxLevel: -1, FormulaType: "quadratic", Formula: "0.8 * level^2 + 380", RewardPoints: 20},
		{MinLevel: 1, MaxLevel: 10, FormulaType: "linear", Formula: "40 * level + 60", RewardPoints: 10},
	}
	assert.True(t, s.ValidateTierSet(good).Valid())

	tests := []struct {
		name  string
		tiers []model.LevelUpTier
		want  []string
	}{
		{"empty", nil, []string{"tiers:required"}},
		{
			"does not start at 1",
			[]model.LevelUpTier{{MinLevel: 2, MaxLevel: -1, FormulaType: "linear", Formula: "level + 1"}},
			[]string{"tiers:start"},
		},
		{
			"gap",
			[]model.LevelUpTier{
				{MinLevel: 1, MaxLevel: 5, FormulaType: "linear", Formula: "level + 1"},
				{MinLevel: 7, MaxLevel: -1, FormulaType: "linear", Formula: "level + 1"},
			},
			[]string{"tiers:gap"},
		},
		{
			"overlap",
			[]model.LevelUpTier{
				{MinLevel: 1, MaxLevel: 5, FormulaType: "linear", Formula: "level + 1"},
				{MinLevel: 5, MaxLevel: -1, FormulaType: "linear", Formula: "level + 1"},
			},
			[]string{"tiers:overlap"},
		},
		{
			"unbounded in the middle",
			[]model.LevelUpTier{
				{MinLevel: 1, MaxLevel: -1, FormulaType: "linear", Formula: "level + 1"},
				{MinLevel: 10, MaxLevel: -1, FormulaType: "linear", Formula: "level + 1"},
			},
			[]string{"tiers:unbounded"},
		},
		{
			"last bounded",
			[]model.LevelUpTier{{MinLevel: 1, MaxLevel: 10, FormulaType: "linear", Formula: "level + 1"}},
			[]string{"tiers:unbounded"},
		},
		{
			"per tier errors",
			[]model.LevelUpTier{
				{MinLevel: 1, MaxLevel: 0, FormulaType: "linear", Formula: "0.8 * level^2", RewardPoints: 100001},
				{MinLevel: 1, MaxLevel: -1, FormulaType: "cubic", Formula: "level^3"},
			},
			[]string{
				"tiers[0].max_level:range",
				"tiers[0].formula:formula",
				"tiers[0].reward_points:lte",
				"tiers[1].type:oneof",
				"tiers[1].formula:formula",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ElementsMatch(t, tt.want, fields(s.ValidateTierSet(tt.tiers)))
		})
	}
}

func TestValidateColorOption(t *testing.T) {
	s := newService(t)
	assert.True(t, s.ValidateColorOption(&model.ColorOption{Kind: "skin", Name: "Mint", Hex: "#98ff98", PointsCost: 30}).Valid())

	res := s.ValidateColorOption(&model.ColorOption{Kind: "hat", Name: "", Hex: "green", PointsCost: -5})
	assert.ElementsMatch(t, []string{"kind:oneof", "name:required", "hex:hexcolor", "points_cost:gte"}, fields(res))
}
