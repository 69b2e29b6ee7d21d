package transport

// BizCode 表示业务码的强类型封装，用于在日志上下文中减少误传风险。
type BizCode int

// 中继 HTTP 接口与访问日志共用的业务码，取值对齐 HTTP 状态码便于排障。
const (
	OK           = 0
	InvalidParam = 400
	Unauthorized = 401
	NotFound     = 404
	RateLimited  = 429
	SystemError  = 500
)
