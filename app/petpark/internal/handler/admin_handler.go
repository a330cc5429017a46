package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/petpark/app/petpark/internal/model"
	"github.com/lk2023060901/petpark/pkg/web"
)

// ReplaceTiersRequest 整体替换档位
type ReplaceTiersRequest struct {
	Tiers []model.LevelUpTier `json:"tiers" binding:"required"`
}

// ListRules GET /api/v1/rules?active_only=
func (h *Handler) ListRules(c *gin.Context) {
	activeOnly, _ := strconv.ParseBool(c.Query("active_only"))
	rules, err := h.rules.ListRules(c.Request.Context(), activeOnly)
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, rules)
}

// GetRule GET /api/v1/rules/:type
func (h *Handler) GetRule(c *gin.Context) {
	rule, err := h.rules.GetRule(c.Request.Context(), c.Param("type"))
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, rule)
}

// CreateRule POST /api/v1/rules
func (h *Handler) CreateRule(c *gin.Context) {
	var rule model.InteractionRule
	if !web.BindJSON(c, &rule) {
		return
	}
	created, err := h.rules.CreateRule(c.Request.Context(), &rule)
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, created)
}

// UpdateRule PUT /api/v1/rules/:type
func (h *Handler) UpdateRule(c *gin.Context) {
	var rule model.InteractionRule
	if !web.BindJSON(c, &rule) {
		return
	}
	updated, err := h.rules.UpdateRule(c.Request.Context(), c.Param("type"), &rule)
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, updated)
}

// DeleteRule DELETE /api/v1/rules/:type
func (h *Handler) DeleteRule(c *gin.Context) {
	if err := h.rules.DeleteRule(c.Request.Context(), c.Param("type")); err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, nil)
}

// ToggleRule POST /api/v1/rules/:type/toggle
func (h *Handler) ToggleRule(c *gin.Context) {
	rule, err := h.rules.ToggleRuleStatus(c.Request.Context(), c.Param("type"))
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, rule)
}

// ListTiers GET /api/v1/tiers
func (h *Handler) ListTiers(c *gin.Context) {
	version, tiers, err := h.tiers.ListTiers(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, gin.H{"version": version, "tiers": tiers})
}

// ReplaceTiers PUT /api/v1/tiers
func (h *Handler) ReplaceTiers(c *gin.Context) {
	var req ReplaceTiersRequest
	if !web.BindJSON(c, &req) {
		return
	}
	set, err := h.tiers.ReplaceTiers(c.Request.Context(), req.Tiers)
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, gin.H{"version": set.Version, "tiers": req.Tiers})
}

// ListColorOptions GET /api/v1/color-options?kind=&active_only=
func (h *Handler) ListColorOptions(c *gin.Context) {
	activeOnly, _ := strconv.ParseBool(c.Query("active_only"))
	opts, err := h.colors.ListColorOptions(c.Request.Context(), model.ColorKind(c.Query("kind")), activeOnly)
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, opts)
}

// CreateColorOption POST /api/v1/color-options
func (h *Handler) CreateColorOption(c *gin.Context) {
	var opt model.ColorOption
	if !web.BindJSON(c, &opt) {
		return
	}
	created, err := h.colors.CreateColorOption(c.Request.Context(), &opt)
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, created)
}
