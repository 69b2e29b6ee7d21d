package errx

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Is_只按code比较语义(t *testing.T) {
	e1 := NewBiz(CodeProtoDecode, "x").WithData("k", "v").WithCause(errors.New("cause1"))
	e2 := ErrProtoDecode.WithData("k2", "v2").WithCause(errors.New("cause2"))
	if !errors.Is(e1, e2) {
		t.Fatalf("期望 errors.Is(e1, e2)==true（只按 code 判断语义），e1=%v e2=%v", e1, e2)
	}
	if errors.Is(e1, ErrProtoSequence) {
		t.Fatalf("期望不同 code 不相等")
	}
}

func TestError_语义错误不捕获栈_但保留cause链(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := ErrProtoDecode.WithCause(cause)
	if got := err.Stack(); got != nil {
		t.Fatalf("期望语义类错误不捕获栈，got=%v", got)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("期望 cause 链不丢，err=%v", err)
	}
}

func TestError_系统错误捕获一次栈_且不重复捕获(t *testing.T) {
	cause := errors.New("connection reset")
	sys := Wrap(CodeUnavailable, "中继不可用", cause)
	if got := sys.Stack(); len(got) == 0 {
		t.Fatalf("期望系统错误捕获栈，got=%v", got)
	}

	sys2 := NewSys(CodeInternal, "会话异常").WithCause(sys)
	if got := sys2.Stack(); got != nil {
		t.Fatalf("期望上层系统错误不重复捕获栈，got=%v", got)
	}
}

func TestError_Data_防止外部map污染(t *testing.T) {
	m := map[string]any{"k": "v"}
	err := NewBiz("BIZ_X", "").WithDataMap(m)
	m["k"] = "mutated"
	if got := err.Data()["k"]; got != "v" {
		t.Fatalf("期望构造时复制 data；got=%v", got)
	}
	if ErrProtoDecode.Data() != nil {
		t.Fatalf("期望哨兵错误不被 WithData 污染")
	}
}

func TestCodeOf_沿错误链取码(t *testing.T) {
	err := fmt.Errorf("decode envelope: %w", ErrProtoDecode.WithData("field", "type"))
	if got := CodeOf(err); got != CodeProtoDecode {
		t.Fatalf("期望 CodeOf=%s, got=%s", CodeProtoDecode, got)
	}
	if got := CodeOf(errors.New("plain")); got != "" {
		t.Fatalf("期望普通错误 CodeOf 为空, got=%s", got)
	}
}
