package interaction

import (
	"context"

	"go.uber.org/zap"
)

// ZapSink 把交互记录结构化写入 zap。默认 Sink 实现。
type ZapSink struct {
	logger *zap.Logger
}

// NewZapSink 创建 zap 接收器。
func NewZapSink(logger *zap.Logger) *ZapSink {
	return &ZapSink{logger: logger.With(zap.String("component", "interaction"))}
}

// Log 写入一条记录。错误记录用 Warn 级别，其余 Info。
func (s *ZapSink) Log(_ context.Context, rec *Record) {
	fields := []zap.Field{
		zap.String("interaction_id", rec.ID),
		zap.Time("timestamp", rec.Timestamp),
		zap.String("api", rec.API),
		zap.String("endpoint", rec.Endpoint),
	}
	if rec.Request != nil {
		fields = append(fields, zap.Any("request", rec.Request))
	}
	if rec.Response != nil {
		fields = append(fields, zap.Any("response", rec.Response))
	}
	if len(rec.Metadata) > 0 {
		fields = append(fields, zap.Any("metadata", rec.Metadata))
	}

	if rec.Error != nil {
		fields = append(fields,
			zap.String("error", rec.Error.Message),
			zap.Int("error_status", rec.Error.Status),
			zap.String("error_type", rec.Error.Type),
			zap.String("error_code", rec.Error.Code))
		s.logger.Warn("interaction", fields...)
		return
	}
	s.logger.Info("interaction", fields...)
}
