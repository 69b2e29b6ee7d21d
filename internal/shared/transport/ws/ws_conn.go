package ws

import "time"

// WSConn 是中继视角的一条客户端连接：只收发原始文本帧，不理解帧内容。
type WSConn interface {
	// ID 是连接级唯一标识（uuid），用于房间登记与日志关联。
	ID() string
	SetProperty(key string, value any)
	GetProperty(key string) any
	RemoveProperty(key string)
	Addr() string
	// Push 非阻塞入队一帧；队列已满或连接已关闭时返回 false，帧被丢弃。
	Push(frame []byte) bool
	Close()
	// Done 用于感知连接生命周期结束（连接关闭时该 channel 会被关闭）
	Done() <-chan struct{}
}

// FrameHandler 在读协程里被调用，处理一帧入站文本。
type FrameHandler func(conn WSConn, frame []byte)

// Options 控制单连接的读写行为。
type Options struct {
	WriteWait time.Duration
	PongWait  time.Duration
	SendQueue int
	MaxFrame  int64
}

func (o Options) withDefaults() Options {
	if o.WriteWait <= 0 {
		o.WriteWait = 10 * time.Second
	}
	if o.PongWait <= 0 {
		o.PongWait = 60 * time.Second
	}
	if o.SendQueue <= 0 {
		o.SendQueue = 64
	}
	if o.MaxFrame <= 0 {
		o.MaxFrame = 64 << 10
	}
	return o
}

// pingPeriod 必须小于 PongWait，否则对端来不及回 pong。
func (o Options) pingPeriod() time.Duration {
	return o.PongWait * 9 / 10
}

const (
	ConnKeyTopic      = "topic"
	ConnKeyClaimTopic = "claim_topic"
	ConnKeyLimiter    = "limiter"
)
