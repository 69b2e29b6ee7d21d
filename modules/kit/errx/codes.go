package errx

// 跨包统一的错误码。
//
// 约束：
// - 系统类错误码用于技术故障归一化（连接断开、存储不可用等），便于告警与排障
// - 对局语义类错误码（解码失败、时序异常、坐标越界）同样集中在这里，协议层与引擎层共用
// - 校验拒绝（非法移动、非法建造）不是错误，不在这里定义，见 rules.Rejection

const (
	// CodeInternal 表示不可预期的内部错误（兜底）。
	CodeInternal Code = "INTERNAL_ERROR"
	// CodeUnavailable 表示依赖不可用（中继断开、数据库不可达等）。
	CodeUnavailable Code = "SERVICE_UNAVAILABLE"
	// CodeTimeout 表示请求/依赖调用超时。
	CodeTimeout Code = "TIMEOUT"
	// CodeRateLimited 表示被中继限流。
	CodeRateLimited Code = "RATE_LIMITED"
	// CodeReqParamError 表示请求参数错误。
	CodeReqParamError Code = "CODE_REQ_PARAM_ERROR"
	// CodeUnauthorized 表示令牌缺失或无效。
	CodeUnauthorized Code = "UNAUTHORIZED"
	// CodeNotFound 表示记录不存在。
	CodeNotFound Code = "NOT_FOUND"

	// CodeProtoDecode 表示网络消息解码失败（未知判别字段、重复键、结构错误）。
	CodeProtoDecode Code = "PROTO_DECODE"
	// CodeProtoSequence 表示协议时序异常（错误回合号、重复 StartGame）。
	CodeProtoSequence Code = "PROTO_SEQUENCE"
	// CodeGridOutOfRange 表示坐标超出网格半径。
	CodeGridOutOfRange Code = "GRID_OUT_OF_RANGE"
	// CodeConfigInvalid 表示配置内容非法。
	CodeConfigInvalid Code = "CONFIG_INVALID"
	// CodeInvariant 表示世界状态不变量被破坏（属于引擎缺陷）。
	CodeInvariant Code = "INVARIANT_VIOLATION"
)

// 统一哨兵错误（允许 WithData/WithCause 派生新对象）。
var (
	ErrInternal     = NewSys(CodeInternal, "内部错误")
	ErrUnavailable  = NewSys(CodeUnavailable, "服务不可用")
	ErrTimeout      = NewSys(CodeTimeout, "请求超时")
	ErrRateLimited  = NewSys(CodeRateLimited, "消息过于频繁")
	ErrReqParamERR  = NewSys(CodeReqParamError, "请求参数错误")
	ErrUnauthorized = NewBiz(CodeUnauthorized, "令牌无效")
	ErrNotFound     = NewBiz(CodeNotFound, "记录不存在")

	ErrProtoDecode    = NewBiz(CodeProtoDecode, "网络消息解码失败")
	ErrProtoSequence  = NewBiz(CodeProtoSequence, "协议时序异常")
	ErrGridOutOfRange = NewBiz(CodeGridOutOfRange, "坐标超出网格范围")
	ErrConfigInvalid  = NewSys(CodeConfigInvalid, "配置非法")
	ErrInvariant      = NewSys(CodeInvariant, "世界状态不变量被破坏")
)
