package logx

import (
	"context"
	"errors"
	"testing"

	"DeepHabitat/modules/kit/errx"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestBuildErrorLog_能提取语义与栈(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	e := errx.NewSys("SYS_UNAVAILABLE", "中继不可用").
		WithData("topic", "room-1").
		WithCause(cause)

	meta := BuildErrorLog(e)
	if meta.Error == "" || meta.Code == "" || meta.Msg == "" {
		t.Fatalf("期望 Error/Code/Msg 非空, meta=%+v", meta)
	}
	if meta.Data == nil || meta.Data["topic"] != "room-1" {
		t.Fatalf("期望 meta.Data 包含 topic=room-1, got=%v", meta.Data)
	}
	if len(meta.CauseChain) == 0 {
		t.Fatalf("期望 meta.CauseChain 非空")
	}
	if meta.Origin == "" || meta.Stack == "" {
		t.Fatalf("期望 meta.Origin/meta.Stack 非空 origin=%q stack=%q", meta.Origin, meta.Stack)
	}
}

func TestReportBiz_异常日志按WARN输出(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewZapLogger(zap.New(core))

	ReportBizWithLoggerContext(context.Background(), l, NewAnomalyLog("lockstep.turn", "PAST_TURN", "回合已结算"))
	ReportBizWithLoggerContext(context.Background(), l, NewBizLog("rules.reject", "NOT_OWNER", ""))

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("期望 2 条日志, got=%d", len(entries))
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Fatalf("期望异常日志为 WARN, got=%v", entries[0].Level)
	}
	if entries[1].Level != zapcore.InfoLevel {
		t.Fatalf("期望普通拒绝为 INFO, got=%v", entries[1].Level)
	}
}
