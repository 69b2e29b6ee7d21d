// Package wsclient 是对局客户端到中继的 websocket 连接。
package wsclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"DeepHabitat/modules/kit/errx"
	"DeepHabitat/modules/kit/logx"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const defaultWriteWait = 10 * time.Second

type Options struct {
	URL       string
	Token     string
	WriteWait time.Duration
	Logger    logx.Logger
}

// Client 实现会话的 Outbox：写入串行化，读循环把入站帧交给 sink。
type Client struct {
	conn      *websocket.Conn
	writeMu   sync.Mutex
	writeWait time.Duration
	log       logx.Logger
	done      chan struct{}
	closeOnce sync.Once
}

func Dial(ctx context.Context, opts Options) (*Client, error) {
	u, err := url.Parse(opts.URL)
	if err != nil {
		return nil, errx.ErrReqParamERR.WithData("relay_url", opts.URL).WithCause(err)
	}
	if opts.Token != "" {
		q := u.Query()
		q.Set("token", opts.Token)
		u.RawQuery = q.Encode()
	}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return nil, errx.ErrUnauthorized.WithCause(err)
		}
		return nil, errx.ErrUnavailable.WithData("relay_url", opts.URL).WithCause(err)
	}
	l := opts.Logger
	if l == nil {
		l = logx.Nop()
	}
	ww := opts.WriteWait
	if ww <= 0 {
		ww = defaultWriteWait
	}
	return &Client{
		conn:      conn,
		writeWait: ww,
		log:       l,
		done:      make(chan struct{}),
	}, nil
}

// Send 写一帧文本。ctx 带截止时间时以其为写超时。
func (c *Client) Send(ctx context.Context, frame []byte) error {
	select {
	case <-c.done:
		return errx.ErrUnavailable.WithCause(errors.New("relay connection closed"))
	default:
	}
	deadline := time.Now().Add(c.writeWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(deadline)
	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return errx.ErrUnavailable.WithCause(err)
	}
	return nil
}

// Run 阻塞读取直到连接关闭或 ctx 取消。正常关闭返回 nil。
func (c *Client) Run(ctx context.Context, sink func(frame []byte)) error {
	stop := context.AfterFunc(ctx, c.Close)
	defer stop()
	defer c.Close()
	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			select {
			case <-c.done:
				return nil
			default:
			}
			return errx.ErrUnavailable.WithCause(err)
		}
		if kind != websocket.TextMessage {
			c.log.Warn("wsclient drop non-text frame", zap.Int("kind", kind))
			continue
		}
		sink(data)
	}
}

func (c *Client) Close() {
	c.closeOnce.Do(func() {
		// 先关 done，读循环据此把随后的读错误视为正常关闭
		close(c.done)
		c.writeMu.Lock()
		_ = c.conn.SetWriteDeadline(time.Now().Add(time.Second))
		_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMu.Unlock()
		_ = c.conn.Close()
	})
}

func (c *Client) Done() <-chan struct{} {
	return c.done
}

type tokenResp struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		Token string `json:"token"`
	} `json:"data"`
}

// FetchToken 向中继的 /token 申请 topic 令牌。
func FetchToken(ctx context.Context, tokenURL, topic string) (string, error) {
	body, _ := json.Marshal(map[string]string{"topic": topic})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, bytes.NewReader(body))
	if err != nil {
		return "", errx.ErrReqParamERR.WithData("token_url", tokenURL).WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", errx.ErrUnavailable.WithData("token_url", tokenURL).WithCause(err)
	}
	defer resp.Body.Close()

	var out tokenResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", errx.ErrUnavailable.WithCause(fmt.Errorf("decode token response: %w", err))
	}
	if out.Code != 0 || out.Data.Token == "" {
		return "", errx.ErrUnauthorized.WithData("code", out.Code).WithData("msg", out.Msg)
	}
	return out.Data.Token, nil
}
