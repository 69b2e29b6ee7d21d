package ws

import (
	"DeepHabitat/modules/kit/logx"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// AcceptFunc 在升级之前调用：返回的属性会写入连接；返回错误时拒绝升级。
type AcceptFunc func(r *http.Request) (map[string]any, error)

// ConnectFunc 在连接开始读写之前调用。
type ConnectFunc func(conn WSConn)

type Server struct {
	handler   FrameHandler
	accept    AcceptFunc
	onConnect ConnectFunc
	opts      Options
	log       logx.Logger
}

func NewServer(handler FrameHandler, opts Options, l logx.Logger) *Server {
	if l == nil {
		l = logx.Nop()
	}
	return &Server{
		handler: handler,
		opts:    opts,
		log:     l,
	}
}

func (s *Server) OnAccept(fn AcceptFunc) {
	s.accept = fn
}

func (s *Server) OnConnect(fn ConnectFunc) {
	s.onConnect = fn
}

func (s *Server) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	var props map[string]any
	if s.accept != nil {
		p, err := s.accept(req)
		if err != nil {
			s.log.Warn("websocket accept rejected", zap.String("addr", req.RemoteAddr), zap.Error(err))
			http.Error(resp, "unauthorized", http.StatusUnauthorized)
			return
		}
		props = p
	}

	upgrader := websocket.Upgrader{
		// 允许所有CORS跨域请求
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	wsConn, err := upgrader.Upgrade(resp, req, nil)
	if err != nil {
		s.log.Error("websocket upgrade error", zap.Error(err))
		return
	}

	wsServer := NewWsServer(wsConn, s.handler, s.opts, s.log)
	for k, v := range props {
		wsServer.SetProperty(k, v)
	}
	s.log.Info("websocket upgrade success", zap.String("conn_id", wsServer.ID()), zap.String("addr", wsServer.Addr()))
	if s.onConnect != nil {
		s.onConnect(wsServer)
	}
	wsServer.Run()
}
