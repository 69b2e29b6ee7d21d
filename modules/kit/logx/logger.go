package logx

import (
	"context"

	"go.uber.org/zap"
)

// Logger 是跨包复用的最小日志接口。
//
// 约束：
// - 保持 API 极简，只承载结构化字段 + ctx 透传（trace/span）
// - 引擎包（hex/entity/rules）不依赖日志，日志只出现在会话、中继、归档这些外层
type Logger interface {
	Info(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
	Debug(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	With(fields ...zap.Field) Logger
	WithContext(ctx context.Context) Logger
}

// Nop 返回丢弃所有输出的 Logger，测试与未注入日志时使用。
func Nop() Logger {
	return NewZapLogger(nil)
}
