package logger

import (
	"context"
	"time"

	ctxutil "github.com/VidyaQuest-Labs/portal/pkg/context"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ContextLogBuilder accumulates fields for a single log entry, enriched
// with whatever request metadata the context carries.
type ContextLogBuilder struct {
	ctx     context.Context
	level   zapcore.Level
	fields  []zap.Field
	message string
}

func newContextBuilder(ctx context.Context, level zapcore.Level, message string) *ContextLogBuilder {
	clb := &ContextLogBuilder{
		ctx:     ctx,
		level:   level,
		fields:  make([]zap.Field, 0, 12),
		message: message,
	}
	clb.extractContextFields()
	return clb
}

// extractContextFields pulls common tracking fields out of the context
func (clb *ContextLogBuilder) extractContextFields() {
	if clb.ctx == nil {
		return
	}

	if requestID := ctxutil.GetRequestID(clb.ctx); requestID != "" {
		clb.fields = append(clb.fields, zap.String("request_id", requestID))
	}

	if clientIP := ctxutil.GetClientIP(clb.ctx); clientIP != "" {
		clb.fields = append(clb.fields, zap.String("client_ip", clientIP))
	}

	if userAgent := ctxutil.GetUserAgent(clb.ctx); userAgent != "" {
		clb.fields = append(clb.fields, zap.String("user_agent", userAgent))
	}

	if subject := ctxutil.GetSubject(clb.ctx); subject != "" {
		clb.fields = append(clb.fields, zap.String("subject", subject))
	}

	if userID := ctxutil.GetUserID(clb.ctx); userID != nil {
		switch v := userID.(type) {
		case string:
			clb.fields = append(clb.fields, zap.String("user_id", v))
		case uint:
			clb.fields = append(clb.fields, zap.Uint("user_id", v))
		case int:
			clb.fields = append(clb.fields, zap.Int("user_id", v))
		default:
			clb.fields = append(clb.fields, zap.Any("user_id", userID))
		}
	}

	if module := ctxutil.GetModule(clb.ctx); module != "" {
		clb.fields = append(clb.fields, zap.String("module", module))
	}

	if function := ctxutil.GetFunction(clb.ctx); function != "" {
		clb.fields = append(clb.fields, zap.String("function", function))
	}
}

// Field methods
func (clb *ContextLogBuilder) String(key, value string) *ContextLogBuilder {
	clb.fields = append(clb.fields, zap.String(key, value))
	return clb
}

func (clb *ContextLogBuilder) Int(key string, value int) *ContextLogBuilder {
	clb.fields = append(clb.fields, zap.Int(key, value))
	return clb
}

func (clb *ContextLogBuilder) Int64(key string, value int64) *ContextLogBuilder {
	clb.fields = append(clb.fields, zap.Int64(key, value))
	return clb
}

func (clb *ContextLogBuilder) Uint(key string, value uint) *ContextLogBuilder {
	clb.fields = append(clb.fields, zap.Uint(key, value))
	return clb
}

func (clb *ContextLogBuilder) Bool(key string, value bool) *ContextLogBuilder {
	clb.fields = append(clb.fields, zap.Bool(key, value))
	return clb
}

func (clb *ContextLogBuilder) Duration(value time.Duration) *ContextLogBuilder {
	clb.fields = append(clb.fields, zap.Duration("duration", value))
	return clb
}

func (clb *ContextLogBuilder) Err(err error) *ContextLogBuilder {
	if err != nil {
		clb.fields = append(clb.fields, zap.Error(err))
	}
	return clb
}

func (clb *ContextLogBuilder) Any(key string, value interface{}) *ContextLogBuilder {
	clb.fields = append(clb.fields, zap.Any(key, value))
	return clb
}

// Log writes the accumulated entry
func (clb *ContextLogBuilder) Log() {
	switch clb.level {
	case zapcore.DebugLevel:
		GetLogger().Debug(clb.message, clb.fields...)
	case zapcore.InfoLevel:
		GetLogger().Info(clb.message, clb.fields...)
	case zapcore.WarnLevel:
		GetLogger().Warn(clb.message, clb.fields...)
	case zapcore.ErrorLevel:
		GetLogger().Error(clb.message, clb.fields...)
	}
}

// Global context logger helper functions
func DebugWithContext(ctx context.Context, message string) *ContextLogBuilder {
	return newContextBuilder(ctx, zapcore.DebugLevel, message)
}

func InfoWithContext(ctx context.Context, message string) *ContextLogBuilder {
	return newContextBuilder(ctx, zapcore.InfoLevel, message)
}

func WarnWithContext(ctx context.Context, message string) *ContextLogBuilder {
	return newContextBuilder(ctx, zapcore.WarnLevel, message)
}

func ErrorWithContext(ctx context.Context, message string) *ContextLogBuilder {
	return newContextBuilder(ctx, zapcore.ErrorLevel, message)
}
