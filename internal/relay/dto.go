package relay

// Result 是中继 HTTP 接口的统一响应体；access 日志从 code 字段提取业务码。
type Result struct {
	Code int    `json:"code"`
	Msg  string `json:"msg,omitempty"`
	Data any    `json:"data,omitempty"`
}

func Success(code int, data any) Result {
	return Result{Code: code, Data: data}
}

func Error(code int, msg string) Result {
	return Result{Code: code, Msg: msg}
}

type TokenReq struct {
	Topic string `json:"topic" binding:"required"`
}

type TokenResp struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

type RoomsResp struct {
	Rooms map[string]int `json:"rooms"`
}
