package service

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/petpark/app/petpark/internal/errs"
	"github.com/lk2023060901/petpark/app/petpark/internal/model"
	"github.com/lk2023060901/petpark/app/petpark/internal/store"
	"github.com/lk2023060901/petpark/app/petpark/internal/validation"
	"github.com/lk2023060901/petpark/pkg/idgen"
	"github.com/lk2023060901/petpark/pkg/logger"
)

// ColorOptionService 外观颜色选项管理
type ColorOptionService struct {
	logger    logger.Logger
	store     store.Store
	validator *validation.Service
	ids       idgen.Generator
}

// NewColorOptionService 创建颜色选项服务
func NewColorOptionService(l logger.Logger, st store.Store, v *validation.Service, ids idgen.Generator) *ColorOptionService {
	return &ColorOptionService{
		logger:    l.Named("service.color"),
		store:     st,
		validator: v,
		ids:       ids,
	}
}

// CreateColorOption 校验后创建
func (s *ColorOptionService) CreateColorOption(ctx context.Context, opt *model.ColorOption) (*model.ColorOption, error) {
	if err := s.validator.ValidateColorOption(opt).Err(); err != nil {
		return nil, err
	}

	id, err := s.ids.NextID()
	if err != nil {
		return nil, errs.System(errors.Wrap(err, "failed to generate color option id"), "failed to create color option")
	}
	opt.ID = id
	opt.CreatedAt = time.Now()

	err = s.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.ColorOptions().Create(ctx, opt)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create color option", "name", opt.Name, "error", err)
		return nil, errs.System(err, "failed to create color option")
	}
	return opt, nil
}

// ListColorOptions kind 为空时返回全部类型
func (s *ColorOptionService) ListColorOptions(ctx context.Context, kind model.ColorKind, activeOnly bool) ([]*model.ColorOption, error) {
	if kind != "" && !kind.Valid() {
		return nil, &errs.ValidationError{Violations: []errs.Violation{{
			Field: "kind", Rule: "oneof", Message: "must be one of [skin background]",
		}}}
	}

	var opts []*model.ColorOption
	err := s.store.View(ctx, func(ctx context.Context, tx store.Tx) error {
		var err error
		opts, err = tx.ColorOptions().List(ctx, kind, activeOnly)
		return err
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list color options", "kind", kind, "error", err)
		return nil, errs.System(err, "failed to list color options")
	}
	return opts, nil
}
