package relay

import (
	"fmt"
	nethttp "net/http"
	"time"

	"DeepHabitat/internal/shared/security"
	"DeepHabitat/internal/shared/transport"
	transporthttp "DeepHabitat/internal/shared/transport/http"
	"DeepHabitat/modules/kit/errx"

	"github.com/gin-gonic/gin"
)

// NewHttpServer 构造中继的 HTTP 服务：/ws、/rooms、/token 以及公共的 /healthz。
func NewHttpServer(r *Relay) *transporthttp.Server {
	engine := gin.New()
	engine.Use(gin.Recovery())
	addr := fmt.Sprintf("%s:%d", r.cfg.Host, r.cfg.Port)
	srv := transporthttp.NewHttpServer(addr, engine, r.log)
	r.RegisterRoutes(srv.Group())
	return srv
}

func (r *Relay) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/ws", gin.WrapH(r.ws))
	group.GET("/rooms", r.listRooms)
	group.POST("/token", r.issueToken)
}

func (r *Relay) listRooms(c *gin.Context) {
	c.JSON(nethttp.StatusOK, Success(transport.OK, RoomsResp{Rooms: r.rooms.Counts()}))
}

func (r *Relay) issueToken(c *gin.Context) {
	ctx := c.Request.Context()

	var req TokenReq
	if err := c.ShouldBindJSON(&req); err != nil {
		r.fail(c, transport.InvalidParam, "参数有误")
		return
	}

	ttl := r.cfg.TokenTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	token, err := security.Award(r.secret, req.Topic, ttl)
	if err != nil {
		code, msg := HandleError(ctx, errx.Wrap(errx.CodeInternal, "签发令牌失败", err))
		r.fail(c, code, msg)
		return
	}
	c.JSON(nethttp.StatusOK, Success(transport.OK, TokenResp{Token: token, ExpiresIn: int64(ttl / time.Second)}))
}

func (r *Relay) fail(c *gin.Context, code int, msg string) {
	c.JSON(nethttp.StatusOK, Error(code, msg))
}
