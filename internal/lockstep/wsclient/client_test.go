package wsclient

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"DeepHabitat/internal/game/command"
	"DeepHabitat/internal/game/entity"
	"DeepHabitat/internal/lockstep"
	"DeepHabitat/internal/lockstep/actor"
	"DeepHabitat/internal/relay"
	"DeepHabitat/internal/shared/serverconfig"
	"DeepHabitat/modules/kit/errx"

	"github.com/gin-gonic/gin"
)

func startRelay(t *testing.T, cfg serverconfig.RelayConfig, secret string) (*relay.Relay, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := relay.New(cfg, []byte(secret), nil)
	srv := httptest.NewServer(relay.NewHttpServer(r).Handler())
	t.Cleanup(srv.Close)
	return r, srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
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

func waitRoom(t *testing.T, r *relay.Relay, topic string, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if r.Rooms().Counts()[topic] == n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("期望 topic=%s 有 %d 个订阅者", topic, n)
}

type peer struct {
	client  *Client
	runtime *actor.Runtime
}

func connect(t *testing.T, ctx context.Context, url string, cfg lockstep.Config) *peer {
	t.Helper()
	c, err := Dial(ctx, Options{URL: url})
	if err != nil {
		t.Fatalf("dial err=%v", err)
	}
	rt := actor.NewRuntime(cfg, c, time.Second)
	go func() { _ = c.Run(ctx, rt.Post) }()
	t.Cleanup(func() {
		c.Close()
		rt.Shutdown()
	})
	return &peer{client: c, runtime: rt}
}

func TestClient_两端经中继完成一回合(t *testing.T) {
	r, srv := startRelay(t, serverconfig.RelayConfig{}, "")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	host := connect(t, ctx, wsURL(srv), lockstep.Config{Topic: "abyss", Seeds: func() int64 { return 11 }})
	if err := host.runtime.Join(ctx); err != nil {
		t.Fatalf("host join err=%v", err)
	}
	waitRoom(t, r, "abyss", 1)

	guest := connect(t, ctx, wsURL(srv), lockstep.Config{Topic: "abyss"})
	if err := guest.runtime.Join(ctx); err != nil {
		t.Fatalf("guest join err=%v", err)
	}
	hs := waitFor[lockstep.Started](t, host.runtime.Subscribe())
	gs := waitFor[lockstep.Started](t, guest.runtime.Subscribe())
	if hs.Role != entity.Player1 || gs.Role != entity.Player2 || gs.Seed != 11 {
		t.Fatalf("角色或种子不对: host=%+v guest=%+v", hs, gs)
	}

	if err := host.runtime.Submit(ctx, command.Empty()); err != nil {
		t.Fatalf("host submit err=%v", err)
	}
	if err := guest.runtime.Submit(ctx, command.Empty()); err != nil {
		t.Fatalf("guest submit err=%v", err)
	}
	hr := waitFor[lockstep.Resolved](t, host.runtime.Subscribe())
	gr := waitFor[lockstep.Resolved](t, guest.runtime.Subscribe())
	if hr.Digest != gr.Digest {
		t.Fatalf("双方结算不一致: host=%s guest=%s", hr.Digest, gr.Digest)
	}
}

func TestClient_关闭后发送失败且Run返回(t *testing.T) {
	_, srv := startRelay(t, serverconfig.RelayConfig{}, "")
	ctx := context.Background()
	c, err := Dial(ctx, Options{URL: wsURL(srv)})
	if err != nil {
		t.Fatalf("dial err=%v", err)
	}
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, func([]byte) {}) }()

	c.Close()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("期望主动关闭时 Run 返回 nil, got=%v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("期望 Run 在关闭后返回")
	}
	if err := c.Send(ctx, []byte(`{}`)); !errors.Is(err, errx.ErrUnavailable) {
		t.Fatalf("期望关闭后 Send 返回 SERVICE_UNAVAILABLE, got=%v", err)
	}
}

func TestFetchToken_鉴权中继(t *testing.T) {
	_, srv := startRelay(t, serverconfig.RelayConfig{NeedAuth: true, TokenTTL: time.Minute}, "secret")
	ctx := context.Background()

	if _, err := Dial(ctx, Options{URL: wsURL(srv)}); !errors.Is(err, errx.ErrUnauthorized) {
		t.Fatalf("期望无令牌时 UNAUTHORIZED, got=%v", err)
	}
	token, err := FetchToken(ctx, srv.URL+"/token", "abyss")
	if err != nil {
		t.Fatalf("FetchToken err=%v", err)
	}
	c, err := Dial(ctx, Options{URL: wsURL(srv), Token: token})
	if err != nil {
		t.Fatalf("期望持有令牌可连接, err=%v", err)
	}
	c.Close()

	if _, err := FetchToken(ctx, srv.URL+"/token", ""); !errors.Is(err, errx.ErrUnauthorized) {
		t.Fatalf("期望空 topic 申请失败, got=%v", err)
	}
}
