// Package handler HTTP 接口，只负责参数绑定与错误码映射，业务逻辑在 service 中。
package handler

import (
	"context"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/petpark/app/petpark/internal/errs"
	"github.com/lk2023060901/petpark/app/petpark/internal/service"
	"github.com/lk2023060901/petpark/pkg/logger"
	"github.com/lk2023060901/petpark/pkg/web"
	weberrors "github.com/lk2023060901/petpark/pkg/web/errors"
)

// ErrorReporter 上报未预期的错误，pkg/sentry.Client 实现了该接口
type ErrorReporter interface {
	CaptureError(ctx context.Context, err error, tags map[string]string) *sentry.EventID
}

// Option Handler 选项
type Option func(*Handler)

// WithErrorReporter 设置错误上报
func WithErrorReporter(r ErrorReporter) Option {
	return func(h *Handler) { h.reporter = r }
}

// Handler 聚合全部接口
type Handler struct {
	logger      logger.Logger
	reporter    ErrorReporter
	progression *service.ProgressionService
	rules       *service.RuleService
	tiers       *service.TierService
	colors      *service.ColorOptionService
}

// NewHandler 创建 HTTP 接口
func NewHandler(
	l logger.Logger,
	progression *service.ProgressionService,
	rules *service.RuleService,
	tiers *service.TierService,
	colors *service.ColorOptionService,
	opts ...Option,
) *Handler {
	h := &Handler{
		logger:      l.Named("handler"),
		progression: progression,
		rules:       rules,
		tiers:       tiers,
		colors:      colors,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register 注册路由，write 作用于所有写接口 (例如限流)
func (h *Handler) Register(r gin.IRouter, write ...gin.HandlerFunc) {
	api := r.Group("/api/v1")
	w := func(fn gin.HandlerFunc) []gin.HandlerFunc {
		return append(write[:len(write):len(write)], fn)
	}

	pets := api.Group("/pets")
	{
		pets.POST("", w(h.CreatePet)...)
		pets.GET("/:id/progress", h.GetProgress)
		pets.GET("/:id/interactions", h.ListInteractions)
		pets.POST("/:id/interactions", w(h.Interact)...)
		pets.POST("/:id/appearance", w(h.ChangeAppearance)...)
		pets.POST("/:id/plays", w(h.RecordGamePlay)...)
	}

	api.POST("/plays/:id/adjust", w(h.AdjustGameReward)...)

	users := api.Group("/users")
	{
		users.POST("/:id/sign-in", w(h.SignIn)...)
		users.GET("/:id/ledger", h.ListLedger)
	}

	rules := api.Group("/rules")
	{
		rules.GET("", h.ListRules)
		rules.POST("", w(h.CreateRule)...)
		rules.GET("/:type", h.GetRule)
		rules.PUT("/:type", w(h.UpdateRule)...)
		rules.DELETE("/:type", w(h.DeleteRule)...)
		rules.POST("/:type/toggle", w(h.ToggleRule)...)
	}

	api.GET("/tiers", h.ListTiers)
	api.PUT("/tiers", w(h.ReplaceTiers)...)

	api.GET("/color-options", h.ListColorOptions)
	api.POST("/color-options", w(h.CreateColorOption)...)
}

// fail 按错误分类写出响应
func (h *Handler) fail(c *gin.Context, err error) {
	var (
		ve *errs.ValidationError
		cd *errs.CooldownError
	)
	switch {
	case errors.As(err, &ve):
		web.ErrorWithData(c, weberrors.CodeValidationFailed, "validation failed", ve.Violations)
	case errors.As(err, &cd):
		web.ErrorWithData(c, weberrors.CodeCooldownActive, cd.Error(), gin.H{"remaining_cooldown": cd.Remaining})
	case errors.Is(err, errs.ErrNotFound):
		web.Error(c, weberrors.CodeNotFound, err.Error())
	case errors.Is(err, errs.ErrInsufficientFunds):
		web.Error(c, weberrors.CodeInsufficientFunds, err.Error())
	case errors.Is(err, errs.ErrAlreadySignedIn):
		web.Error(c, weberrors.CodeAlreadySignedIn, err.Error())
	case errors.Is(err, errs.ErrConcurrentUpdate):
		web.Error(c, weberrors.CodeConflict, "resource was modified concurrently, retry")
	default:
		h.logger.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.FullPath(), "error", err)
		if h.reporter != nil {
			h.reporter.CaptureError(c.Request.Context(), err, map[string]string{"route": c.FullPath()})
		}
		web.Error(c, weberrors.CodeInternalError, "internal error")
	}
}

// queryInt64 必填的正整数查询参数，失败时已写出响应
func queryInt64(c *gin.Context, key string) (int64, bool) {
	v, err := strconv.ParseInt(c.Query(key), 10, 64)
	if err != nil || v <= 0 {
		web.Error(c, weberrors.CodeInvalidParams, "invalid query parameter: "+key)
		return 0, false
	}
	return v, true
}
