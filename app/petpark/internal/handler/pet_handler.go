package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/petpark/app/petpark/internal/model"
	"github.com/lk2023060901/petpark/app/petpark/internal/service"
	"github.com/lk2023060901/petpark/pkg/web"
	weberrors "github.com/lk2023060901/petpark/pkg/web/errors"
)

// CreatePetRequest 创建宠物
type CreatePetRequest struct {
	UserID int64  `json:"user_id" binding:"required,gt=0"`
	Name   string `json:"name" binding:"required,max=20"`
}

// InteractionRequest 互动请求
type InteractionRequest struct {
	InteractionType string `json:"interaction_type" binding:"required,identifier"`
	UserID          int64  `json:"user_id" binding:"required,gt=0"`
}

// AppearanceRequest 外观修改请求
type AppearanceRequest struct {
	UserID        int64  `json:"user_id" binding:"required,gt=0"`
	Kind          string `json:"kind" binding:"required,oneof=skin background"`
	ColorOptionID int64  `json:"color_option_id" binding:"required,gt=0"`
}

// GamePlayRequest 小游戏结算请求
type GamePlayRequest struct {
	UserID       int64  `json:"user_id" binding:"required,gt=0"`
	GameType     string `json:"game_type" binding:"required,max=32"`
	ExpGained    int64  `json:"exp_gained" binding:"gte=0,lte=1000"`
	PointsGained int64  `json:"points_gained" binding:"gte=0,lte=10000"`
}

// AdjustRequest 管理员调整奖励，两项都必须给出
type AdjustRequest struct {
	ExpGained    *int64 `json:"exp_gained" binding:"required,gte=0,lte=1000"`
	PointsGained *int64 `json:"points_gained" binding:"required,gte=0,lte=10000"`
}

// CreatePet POST /api/v1/pets
func (h *Handler) CreatePet(c *gin.Context) {
	var req CreatePetRequest
	if !web.BindJSON(c, &req) {
		return
	}
	res, err := h.progression.CreatePet(c.Request.Context(), req.UserID, req.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, res)
}

// Interact POST /api/v1/pets/:id/interactions
// 预期内的拒绝以对应错误码返回，data 中携带完整结果
func (h *Handler) Interact(c *gin.Context) {
	petID, ok := web.PathInt64(c, "id")
	if !ok {
		return
	}
	var req InteractionRequest
	if !web.BindJSON(c, &req) {
		return
	}

	res, err := h.progression.CalculateInteractionBonus(c.Request.Context(), petID, req.InteractionType, req.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !res.Success {
		web.ErrorWithData(c, rejectionCode(res.Reason), res.Message, res)
		return
	}
	web.Success(c, res)
}

func rejectionCode(reason string) int {
	switch reason {
	case "not_found":
		return weberrors.CodeNotFound
	case "insufficient_funds":
		return weberrors.CodeInsufficientFunds
	case "cooldown_active":
		return weberrors.CodeCooldownActive
	case "validation_failed":
		return weberrors.CodeValidationFailed
	default:
		return weberrors.CodeInternalError
	}
}

// ListInteractions GET /api/v1/pets/:id/interactions?user_id=
func (h *Handler) ListInteractions(c *gin.Context) {
	petID, ok := web.PathInt64(c, "id")
	if !ok {
		return
	}
	userID, ok := queryInt64(c, "user_id")
	if !ok {
		return
	}

	list, err := h.progression.AvailableInteractions(c.Request.Context(), petID, userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, list)
}

// GetProgress GET /api/v1/pets/:id/progress
func (h *Handler) GetProgress(c *gin.Context) {
	petID, ok := web.PathInt64(c, "id")
	if !ok {
		return
	}
	res, err := h.progression.GetPetProgress(c.Request.Context(), petID)
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, res)
}

// ChangeAppearance POST /api/v1/pets/:id/appearance
func (h *Handler) ChangeAppearance(c *gin.Context) {
	petID, ok := web.PathInt64(c, "id")
	if !ok {
		return
	}
	var req AppearanceRequest
	if !web.BindJSON(c, &req) {
		return
	}

	res, err := h.progression.ChangeAppearance(c.Request.Context(), petID, req.UserID, model.ColorKind(req.Kind), req.ColorOptionID)
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, res)
}

// RecordGamePlay POST /api/v1/pets/:id/plays
func (h *Handler) RecordGamePlay(c *gin.Context) {
	petID, ok := web.PathInt64(c, "id")
	if !ok {
		return
	}
	var req GamePlayRequest
	if !web.BindJSON(c, &req) {
		return
	}

	res, err := h.progression.RecordGamePlay(c.Request.Context(), petID, req.UserID, req.GameType, req.ExpGained, req.PointsGained)
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, res)
}

// AdjustGameReward POST /api/v1/plays/:id/adjust
func (h *Handler) AdjustGameReward(c *gin.Context) {
	playID, ok := web.PathInt64(c, "id")
	if !ok {
		return
	}
	var req AdjustRequest
	if !web.BindJSON(c, &req) {
		return
	}

	res, err := h.progression.AdjustGameReward(c.Request.Context(), playID, *req.ExpGained, *req.PointsGained)
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, res)
}

// SignIn POST /api/v1/users/:id/sign-in
func (h *Handler) SignIn(c *gin.Context) {
	userID, ok := web.PathInt64(c, "id")
	if !ok {
		return
	}
	res, err := h.progression.SignIn(c.Request.Context(), userID, time.Now())
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, res)
}

// ListLedger GET /api/v1/users/:id/ledger?limit=&offset=
func (h *Handler) ListLedger(c *gin.Context) {
	userID, ok := web.PathInt64(c, "id")
	if !ok {
		return
	}
	limit := web.QueryInt(c, "limit", service.DefaultLedgerLimit)
	offset := web.QueryInt(c, "offset", 0)

	entries, err := h.progression.ListLedger(c.Request.Context(), userID, limit, offset)
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, gin.H{"entries": entries, "limit": limit, "offset": offset})
}
