package actor

import (
	"context"

	"DeepHabitat/internal/game/command"
	"DeepHabitat/internal/lockstep"
	"DeepHabitat/internal/protocol"
	"DeepHabitat/modules/kit/logx"
	"DeepHabitat/modules/kit/tracex"

	protoactor "github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

// Outbox 把编码好的帧发往中继。
type Outbox interface {
	Send(ctx context.Context, frame []byte) error
}

type joinReq struct{}

type submitReq struct {
	Commands command.Commands
}

type deliverReq struct {
	Frame []byte
}

type snapshotReq struct{}

type ack struct{}

type submitResp struct {
	Err error
}

// SessionActor 把会话的所有输入串行化到一个邮箱里。
type SessionActor struct {
	session *lockstep.Session
	topic   string
	outbox  Outbox
	events  chan lockstep.Event
	logger  logx.Logger
}

func NewSessionActor(session *lockstep.Session, topic string, outbox Outbox, events chan lockstep.Event, logger logx.Logger) *SessionActor {
	if logger == nil {
		logger = logx.Nop()
	}
	return &SessionActor{session: session, topic: topic, outbox: outbox, events: events, logger: logger}
}

func (a *SessionActor) Receive(ctx protoactor.Context) {
	switch msg := ctx.Message().(type) {
	case *protoactor.Started:
		a.logger.Debug("session actor started", zap.String("topic", a.topic))
	case *protoactor.Stopping:
		close(a.events)
	case joinReq:
		a.send(a.session.Join())
		ctx.Respond(ack{})
	case submitReq:
		msgs, err := a.session.Submit(msg.Commands)
		a.send(msgs)
		a.publish()
		ctx.Respond(submitResp{Err: err})
	case deliverReq:
		a.send(a.session.HandleRaw(msg.Frame))
		a.publish()
		if ctx.Sender() != nil {
			ctx.Respond(ack{})
		}
	case snapshotReq:
		ctx.Respond(a.session.Snapshot())
	}
}

func (a *SessionActor) send(msgs []protocol.Message) {
	if len(msgs) == 0 || a.outbox == nil {
		return
	}
	ctx := tracex.WithTopic(context.Background(), a.topic)
	for _, m := range msgs {
		frame, err := protocol.EncodeNetworkMessage(protocol.Envelope{Topic: a.topic, Payload: m})
		if err == nil {
			err = a.outbox.Send(ctx, frame)
		}
		if err != nil {
			logx.ReportSysErrorWithLoggerContext(ctx, a.logger, logx.NewSysLog("lockstep.send", err), zap.String("type", m.Type()))
			a.offer(lockstep.Failure{Err: err})
		}
	}
}

func (a *SessionActor) publish() {
	for _, e := range a.session.Events() {
		a.offer(e)
	}
}

// offer 不阻塞邮箱；订阅方跟不上时丢弃并告警。
func (a *SessionActor) offer(e lockstep.Event) {
	select {
	case a.events <- e:
	default:
		a.logger.Warn("session event dropped", zap.String("topic", a.topic), zap.String("event", eventName(e)))
	}
}

func eventName(e lockstep.Event) string {
	switch e.(type) {
	case lockstep.Started:
		return "started"
	case lockstep.Resolved:
		return "resolved"
	case lockstep.Finished:
		return "finished"
	case lockstep.Failure:
		return "failure"
	default:
		return "unknown"
	}
}
