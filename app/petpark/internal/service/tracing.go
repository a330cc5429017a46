package service

import (
	"context"

	"github.com/lk2023060901/petpark/app/petpark/internal/errs"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func (s *ProgressionService) startSpan(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "progression."+op, trace.WithAttributes(attrs...))
}

// markSpan 预期内的拒绝只记录原因，其余标记为错误
func markSpan(span trace.Span, err error) {
	if err == nil || !span.IsRecording() {
		return
	}
	span.SetAttributes(attribute.String("reason", errs.Reason(err)))
	if errs.IsExpected(err) {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
