package actor

import (
	"context"
	"errors"
	"time"

	"DeepHabitat/internal/game/command"
	"DeepHabitat/internal/lockstep"
	"DeepHabitat/modules/kit/errx"
	"DeepHabitat/modules/kit/logx"

	protoactor "github.com/asynkron/protoactor-go/actor"
)

const (
	defaultAskTimeout = 3 * time.Second
	eventBuffer       = 256
)

// Runtime 在 protoactor 里托管一个锁步会话。
type Runtime struct {
	system  *protoactor.ActorSystem
	root    *protoactor.RootContext
	pid     *protoactor.PID
	events  chan lockstep.Event
	timeout time.Duration
}

func NewRuntime(cfg lockstep.Config, outbox Outbox, askTimeout time.Duration) *Runtime {
	if askTimeout <= 0 {
		askTimeout = defaultAskTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logx.Nop()
	}

	events := make(chan lockstep.Event, eventBuffer)
	session := lockstep.NewSession(cfg)
	system := protoactor.NewActorSystem()
	root := system.Root
	props := protoactor.PropsFromProducer(func() protoactor.Actor {
		return NewSessionActor(session, cfg.Topic, outbox, events, logger)
	})
	pid := root.Spawn(props)

	return &Runtime{
		system:  system,
		root:    root,
		pid:     pid,
		events:  events,
		timeout: askTimeout,
	}
}

// Subscribe 返回会话事件流，Shutdown 后关闭。
func (r *Runtime) Subscribe() <-chan lockstep.Event {
	return r.events
}

// Join 广播 Join。
func (r *Runtime) Join(ctx context.Context) error {
	_, err := r.request(joinReq{}, r.timeoutFromContext(ctx))
	return err
}

// Submit 提交本地当前回合指令；指令无法编码时返回错误，本回合仍可重新提交。
func (r *Runtime) Submit(ctx context.Context, c command.Commands) error {
	res, err := r.request(submitReq{Commands: c}, r.timeoutFromContext(ctx))
	if err != nil {
		return err
	}
	if resp, ok := res.(submitResp); ok {
		return resp.Err
	}
	return nil
}

// Deliver 投递一帧中继消息并等待处理完成。
func (r *Runtime) Deliver(ctx context.Context, frame []byte) error {
	_, err := r.request(deliverReq{Frame: frame}, r.timeoutFromContext(ctx))
	return err
}

// Post 投递一帧但不等待，读循环用它避免被邮箱拖慢。
func (r *Runtime) Post(frame []byte) {
	if r == nil || r.root == nil || r.pid == nil {
		return
	}
	r.root.Send(r.pid, deliverReq{Frame: frame})
}

func (r *Runtime) Snapshot(ctx context.Context) (lockstep.Snapshot, error) {
	res, err := r.request(snapshotReq{}, r.timeoutFromContext(ctx))
	if err != nil {
		return lockstep.Snapshot{}, err
	}
	snap, ok := res.(lockstep.Snapshot)
	if !ok {
		return lockstep.Snapshot{}, errx.ErrInternal.WithCause(errors.New("unexpected snapshot response"))
	}
	return snap, nil
}

func (r *Runtime) Shutdown() {
	if r == nil {
		return
	}
	if r.root != nil && r.pid != nil {
		_ = r.root.StopFuture(r.pid).Wait()
	}
	if r.system != nil {
		r.system.Shutdown()
	}
}

func (r *Runtime) request(msg any, timeout time.Duration) (any, error) {
	if r == nil || r.root == nil || r.pid == nil {
		return nil, errx.ErrUnavailable.WithCause(errors.New("session runtime is not initialized"))
	}
	res, err := r.root.RequestFuture(r.pid, msg, timeout).Result()
	if errors.Is(err, protoactor.ErrTimeout) {
		return nil, errx.ErrTimeout.WithCause(err)
	}
	if err != nil {
		return nil, errx.ErrUnavailable.WithCause(err)
	}
	return res, nil
}

func (r *Runtime) timeoutFromContext(ctx context.Context) time.Duration {
	if r == nil || r.timeout <= 0 {
		return defaultAskTimeout
	}
	if ctx == nil {
		return r.timeout
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		return r.timeout
	}
	remain := time.Until(deadline)
	if remain <= 0 {
		return time.Millisecond
	}
	if remain < r.timeout {
		return remain
	}
	return r.timeout
}
