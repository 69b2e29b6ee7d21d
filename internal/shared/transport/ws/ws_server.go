package ws

import (
	"DeepHabitat/modules/kit/logx"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WsServer 是一条已升级的连接：一个读协程、一个写协程，写入只经过 outChan。
type WsServer struct {
	id       string
	conn     *websocket.Conn
	handler  FrameHandler
	outChan  chan []byte
	opts     Options
	property map[string]any
	sync.RWMutex
	done      chan struct{}
	closeOnce sync.Once
	log       logx.Logger
}

func NewWsServer(wsConn *websocket.Conn, handler FrameHandler, opts Options, l logx.Logger) *WsServer {
	opts = opts.withDefaults()
	id := uuid.NewString()
	if l == nil {
		l = logx.Nop()
	}
	return &WsServer{
		id:       id,
		conn:     wsConn,
		handler:  handler,
		outChan:  make(chan []byte, opts.SendQueue),
		opts:     opts,
		property: make(map[string]any),
		done:     make(chan struct{}),
		log:      l.With(zap.String("conn_id", id)),
	}
}

func (s *WsServer) ID() string {
	return s.id
}

func (s *WsServer) SetProperty(key string, value any) {
	s.Lock()
	defer s.Unlock()
	s.property[key] = value
}

func (s *WsServer) GetProperty(key string) any {
	s.RLock()
	defer s.RUnlock()
	return s.property[key]
}

func (s *WsServer) RemoveProperty(key string) {
	s.Lock()
	defer s.Unlock()
	delete(s.property, key)
}

func (s *WsServer) Addr() string {
	return s.conn.RemoteAddr().String()
}

func (s *WsServer) Push(frame []byte) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.outChan <- frame:
		return true
	default:
		return false
	}
}

func (s *WsServer) Run() {
	go s.readMsgLoop()
	go s.writeMsgLoop()
}

func (s *WsServer) readMsgLoop() {
	defer func() {
		if err := recover(); err != nil {
			e := fmt.Sprintf("%v", err)
			s.log.Error("ws readMsgLoop panic", zap.String("err", e))
		}
		s.Close()
	}()
	s.conn.SetReadLimit(s.opts.MaxFrame)
	_ = s.conn.SetReadDeadline(time.Now().Add(s.opts.PongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.opts.PongWait))
	})
	for {
		kind, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Warn("ws_server read msg", zap.Error(err))
			} else {
				s.log.Debug("ws_server conn closed", zap.Error(err))
			}
			return
		}
		// 协议帧是 JSON 文本，二进制帧直接丢弃
		if kind != websocket.TextMessage {
			s.log.Warn("ws_server drop non-text frame", zap.Int("kind", kind))
			continue
		}
		if s.handler != nil {
			s.handler(s, data)
		}
	}
}

func (s *WsServer) writeMsgLoop() {
	ticker := time.NewTicker(s.opts.pingPeriod())
	defer func() {
		ticker.Stop()
		s.Close()
	}()
	for {
		select {
		case frame := <-s.outChan:
			if err := s.write(websocket.TextMessage, frame); err != nil {
				s.log.Warn("ws_server write error", zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := s.write(websocket.PingMessage, nil); err != nil {
				s.log.Debug("ws_server ping error", zap.Error(err))
				return
			}
		case <-s.done:
			return
		}
	}
}

func (s *WsServer) write(kind int, data []byte) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(s.opts.WriteWait))
	return s.conn.WriteMessage(kind, data)
}

func (s *WsServer) Close() {
	s.closeOnce.Do(func() {
		_ = s.conn.Close()
		close(s.done)
	})
}

func (s *WsServer) Done() <-chan struct{} {
	return s.done
}
