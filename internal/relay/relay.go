// Package relay 是按 topic 转发原始帧的中继：只读 topic 字段，不解析也不缓存对局内容。
package relay

import (
	"context"
	"net/http"
	"strings"

	"DeepHabitat/internal/protocol"
	"DeepHabitat/internal/shared/security"
	"DeepHabitat/internal/shared/serverconfig"
	"DeepHabitat/internal/shared/transport/ws"
	"DeepHabitat/modules/kit/errx"
	"DeepHabitat/modules/kit/logx"
	"DeepHabitat/modules/kit/tracex"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// 丢帧原因码，写在 WARN 日志的 reason 字段。
const (
	dropNoTopic       = "no_topic"
	dropTopicMismatch = "topic_mismatch"
	dropClaimMismatch = "claim_mismatch"
	dropRateLimited   = "rate_limited"
	dropQueueFull     = "queue_full"
)

type Relay struct {
	cfg    serverconfig.RelayConfig
	secret []byte
	rooms  *Rooms
	ws     *ws.Server
	log    logx.Logger
}

func New(cfg serverconfig.RelayConfig, secret []byte, l logx.Logger) *Relay {
	if l == nil {
		l = logx.Nop()
	}
	r := &Relay{
		cfg:    cfg,
		secret: secret,
		rooms:  NewRooms(),
		log:    l,
	}
	r.ws = ws.NewServer(r.handleFrame, ws.Options{
		WriteWait: cfg.WriteWait,
		PongWait:  cfg.PongWait,
		SendQueue: cfg.SendQueue,
		MaxFrame:  cfg.MaxFrame,
	}, l)
	r.ws.OnAccept(r.accept)
	r.ws.OnConnect(r.onConnect)
	return r
}

func (r *Relay) Rooms() *Rooms {
	return r.rooms
}

// WS 返回 websocket 升级处理器。
func (r *Relay) WS() http.Handler {
	return r.ws
}

func (r *Relay) accept(req *http.Request) (map[string]any, error) {
	if !r.cfg.NeedAuth {
		return nil, nil
	}
	token := req.URL.Query().Get("token")
	if token == "" {
		token = strings.TrimPrefix(req.Header.Get("Authorization"), "Bearer ")
	}
	if token == "" {
		return nil, errx.ErrUnauthorized.WithData("reason", "token_missing")
	}
	claims, err := security.ParseToken(r.secret, token)
	if err != nil {
		return nil, errx.ErrUnauthorized.WithData("reason", "token_invalid").WithCause(err)
	}
	return map[string]any{ws.ConnKeyClaimTopic: claims.Topic}, nil
}

func (r *Relay) onConnect(conn ws.WSConn) {
	limit := rate.Inf
	if r.cfg.RatePerSec > 0 {
		limit = rate.Limit(r.cfg.RatePerSec)
	}
	burst := r.cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	conn.SetProperty(ws.ConnKeyLimiter, rate.NewLimiter(limit, burst))
}

// handleFrame 在连接读协程内执行：首帧订阅，之后只转发同 topic 的帧。
func (r *Relay) handleFrame(conn ws.WSConn, frame []byte) {
	if lim, ok := conn.GetProperty(ws.ConnKeyLimiter).(*rate.Limiter); ok && !lim.Allow() {
		r.drop(context.Background(), conn, dropRateLimited, "")
		return
	}

	topic, err := protocol.PeekTopic(frame)
	if err != nil {
		r.drop(context.Background(), conn, dropNoTopic, "")
		return
	}
	ctx := tracex.WithTopic(context.Background(), topic)

	if claim, ok := conn.GetProperty(ws.ConnKeyClaimTopic).(string); ok && claim != topic {
		r.drop(ctx, conn, dropClaimMismatch, claim)
		return
	}
	if !r.rooms.Subscribe(topic, conn) {
		bound, _ := r.rooms.TopicOf(conn)
		r.drop(ctx, conn, dropTopicMismatch, bound)
		return
	}

	delivered, dropped := r.rooms.Broadcast(topic, conn, frame)
	for _, id := range dropped {
		logx.ReportBizWithLoggerContext(ctx, r.log, logx.NewAnomalyLog("relay.forward", dropQueueFull, "订阅者发送队列已满，丢弃该帧"),
			zap.String("from", conn.ID()),
			zap.String("to", id),
		)
	}
	r.log.WithContext(ctx).Debug("relay forward",
		zap.String("from", conn.ID()),
		zap.Int("delivered", delivered),
		zap.Int("bytes", len(frame)),
	)
}

func (r *Relay) drop(ctx context.Context, conn ws.WSConn, reason, detail string) {
	fields := []zap.Field{zap.String("conn_id", conn.ID())}
	if detail != "" {
		fields = append(fields, zap.String("detail", detail))
	}
	logx.ReportBizWithLoggerContext(ctx, r.log, logx.NewAnomalyLog("relay.frame", reason, "丢弃入站帧"), fields...)
}
