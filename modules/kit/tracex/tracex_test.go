package tracex

import (
	"context"
	"testing"
)

func TestTraceID_RoundTrip(t *testing.T) {
	ctx := WithTraceID(context.Background(), "t-1")
	if got, ok := TraceIDFrom(ctx); !ok || got != "t-1" {
		t.Fatalf("期望 TraceIDFrom round-trip 成功，got=%q ok=%v", got, ok)
	}
}

func TestTopic_空值视为不存在(t *testing.T) {
	ctx := WithTopic(context.Background(), "")
	if _, ok := TopicFrom(ctx); ok {
		t.Fatalf("期望空 topic 视为不存在")
	}
	ctx = WithTopic(ctx, "room-7")
	if got, ok := TopicFrom(ctx); !ok || got != "room-7" {
		t.Fatalf("期望 topic=room-7, got=%q ok=%v", got, ok)
	}
	if len(NewTraceID()) != 32 {
		t.Fatalf("期望 trace_id 为 32 位 hex")
	}
}
