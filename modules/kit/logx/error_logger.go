package logx

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

const (
	maxCauseDepth  = 20
	maxStackFrames = 32
)

// ErrorLog 是 BuildErrorLog 的输出，字段均可为空。
type ErrorLog struct {
	Error      string
	Code       string
	Msg        string
	Reason     string
	Data       map[string]any
	CauseChain []string
	Origin     string
	Stack      string
}

// BuildErrorLog 把错误码、语义、上下文、cause 链和发生处栈提取成便于阅读的结构，
// 会话层、中继、归档写库失败时统一用它打印。
//
// 只依赖小接口（CodeText/Msg/Data/Reason/Stack），不直接依赖 errx，
// 其他包自定义的错误类型只要实现其中一部分就能被提取。
func BuildErrorLog(err error) ErrorLog {
	if err == nil {
		return ErrorLog{}
	}
	out := ErrorLog{Error: err.Error()}

	if v, ok := as[interface{ CodeText() string }](err); ok {
		out.Code = v.CodeText()
	}
	if v, ok := as[interface{ Msg() string }](err); ok {
		out.Msg = v.Msg()
	}
	if v, ok := as[interface{ Data() map[string]any }](err); ok {
		out.Data = v.Data()
	}
	if v, ok := as[interface{ Reason() string }](err); ok {
		out.Reason = v.Reason()
	}
	if v, ok := as[interface{ Stack() []uintptr }](err); ok {
		out.Origin, out.Stack = formatStack(v.Stack(), maxStackFrames)
	}
	out.CauseChain = buildCauseChain(err, maxCauseDepth)
	return out
}

func as[T any](err error) (T, bool) {
	var target T
	ok := errors.As(err, &target)
	return target, ok
}

func buildCauseChain(err error, maxDepth int) []string {
	if err == nil || maxDepth <= 0 {
		return nil
	}
	var out []string
	for cur, i := errors.Unwrap(err), 0; cur != nil && i < maxDepth; cur, i = errors.Unwrap(cur), i+1 {
		out = append(out, fmt.Sprintf("%T: %v", cur, cur))
	}
	return out
}

func formatStack(pcs []uintptr, maxFrames int) (originCaller string, stack string) {
	if len(pcs) == 0 || maxFrames <= 0 {
		return "", ""
	}
	frames := runtime.CallersFrames(pcs)
	lines := make([]string, 0, maxFrames)
	for len(lines) < maxFrames {
		f, more := frames.Next()
		if f.Function == "" && f.File == "" && f.Line == 0 {
			break
		}
		lines = append(lines, fmt.Sprintf("%s %s:%d", f.Function, f.File, f.Line))
		if !more {
			break
		}
	}
	if len(lines) == 0 {
		return "", ""
	}
	return lines[0], strings.Join(lines, "\n")
}
