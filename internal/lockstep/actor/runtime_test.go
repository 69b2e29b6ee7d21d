package actor

import (
	"context"
	"sync"
	"testing"
	"time"

	"DeepHabitat/internal/game/command"
	"DeepHabitat/internal/game/entity"
	grid "DeepHabitat/internal/game/hex"
	"DeepHabitat/internal/lockstep"
)

// pipe 把一端发出的帧直接投递给另一端，模拟不回显的中继。
type pipe struct {
	mu   sync.Mutex
	peer *Runtime
}

func (p *pipe) Send(_ context.Context, frame []byte) error {
	p.mu.Lock()
	peer := p.peer
	p.mu.Unlock()
	if peer != nil {
		peer.Post(frame)
	}
	return nil
}

func (p *pipe) connect(r *Runtime) {
	p.mu.Lock()
	p.peer = r
	p.mu.Unlock()
}

func waitFor[T lockstep.Event](t *testing.T, ch <-chan lockstep.Event) T {
	t.Helper()
	timeout := time.After(3 * time.Second)
	for {
		select {
		case e, ok := <-ch:
			if !ok {
				t.Fatalf("事件流已关闭")
			}
			if v, match := e.(T); match {
				return v
			}
		case <-timeout:
			var zero T
			t.Fatalf("等待事件 %T 超时", zero)
		}
	}
}

func TestRuntime_两端经邮箱完成一回合(t *testing.T) {
	toGuest, toHost := &pipe{}, &pipe{}
	host := NewRuntime(lockstep.Config{Topic: "room", Seeds: func() int64 { return 5 }}, toGuest, time.Second)
	guest := NewRuntime(lockstep.Config{Topic: "room"}, toHost, time.Second)
	defer host.Shutdown()
	defer guest.Shutdown()

	ctx := context.Background()
	// host 先进入 topic，此时没有其他订阅者，Join 无人收到
	if err := host.Join(ctx); err != nil {
		t.Fatalf("host join err=%v", err)
	}
	toGuest.connect(guest)
	toHost.connect(host)
	if err := guest.Join(ctx); err != nil {
		t.Fatalf("guest join err=%v", err)
	}
	hs := waitFor[lockstep.Started](t, host.Subscribe())
	gs := waitFor[lockstep.Started](t, guest.Subscribe())
	if hs.Role != entity.Player1 || gs.Role != entity.Player2 || gs.Seed != 5 {
		t.Fatalf("角色或种子不对: host=%+v guest=%+v", hs, gs)
	}

	if err := host.Submit(ctx, command.Empty().Build(grid.Coord{X: 0, Y: 0}, entity.Buildable{})); err == nil {
		t.Fatalf("无法编码的指令应返回错误")
	}
	if err := host.Submit(ctx, command.Empty().Move(1, grid.Coord{X: -3, Y: -2})); err != nil {
		t.Fatalf("host submit err=%v", err)
	}
	if err := guest.Submit(ctx, command.Empty()); err != nil {
		t.Fatalf("guest submit err=%v", err)
	}
	hr := waitFor[lockstep.Resolved](t, host.Subscribe())
	gr := waitFor[lockstep.Resolved](t, guest.Subscribe())
	if hr.Digest != gr.Digest || hr.Turn != 1 {
		t.Fatalf("双方结算不一致: host=%s guest=%s", hr.Digest, gr.Digest)
	}
	snap, err := host.Snapshot(ctx)
	if err != nil || snap.Game.Turn != 2 {
		t.Fatalf("期望快照进入第 2 回合, got=%d err=%v", snap.Game.Turn, err)
	}
}

func TestRuntime_超时时间取上下文与默认值的较小者(t *testing.T) {
	r := &Runtime{timeout: time.Second}
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if got := r.timeoutFromContext(ctx); got > 100*time.Millisecond {
		t.Fatalf("期望不超过 100ms, got=%v", got)
	}
	if got := r.timeoutFromContext(context.Background()); got != time.Second {
		t.Fatalf("期望默认 1s, got=%v", got)
	}
}
