package relay

import (
	"context"

	"DeepHabitat/internal/shared/transport"
	"DeepHabitat/modules/kit/errx"
)

func mapErrToClientCode(err error) int {
	if err == nil {
		return transport.OK
	}
	switch errx.CodeOf(err) {
	case errx.CodeReqParamError:
		return transport.InvalidParam
	case errx.CodeUnauthorized:
		return transport.Unauthorized
	case errx.CodeRateLimited:
		return transport.RateLimited
	case errx.CodeNotFound:
		return transport.NotFound
	default:
		return transport.SystemError
	}
}

// HandleError 把错误映射为对外业务码与文案，并把 reason 记到 access 日志。
func HandleError(ctx context.Context, err error) (int, string) {
	var reason string
	if v, ok := err.(interface{ Reason() string }); ok {
		reason = v.Reason()
	}
	if reason == "" {
		reason = string(errx.CodeOf(err))
	}
	transport.SetErrorReason(ctx, reason)

	code := mapErrToClientCode(err)
	if code == transport.SystemError {
		return code, "系统繁忙，请稍后重试"
	}
	if e, ok := err.(*errx.Error); ok && e.Msg() != "" {
		return code, e.Msg()
	}
	return code, "请求失败"
}
