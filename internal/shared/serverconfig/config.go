package serverconfig

import (
	"os"
	"time"

	"DeepHabitat/internal/shared/config"
)

const defaultConfigRelPath = "configs/conf.yml"

var Conf Config

// Load 加载 configs/conf.yml 并补齐缺省值。
func Load() {
	LoadFrom(defaultConfigRelPath)
}

// LoadFrom 从指定路径加载，path 规则同 config.Load。
func LoadFrom(path string) {
	config.Load(path, &Conf)
	Conf.ApplyDefaults()
	// 环境变量优先；若未设置则回填配置中的 jwt_secret，兼容本地开发场景。
	if os.Getenv("JWT_SECRET") == "" && Conf.JWTSecret != "" {
		_ = os.Setenv("JWT_SECRET", Conf.JWTSecret)
	}
}

// ApplyDefaults 为未配置的字段填入缺省值。
func (c *Config) ApplyDefaults() {
	r := &c.Relay
	if r.Host == "" {
		r.Host = "0.0.0.0"
	}
	if r.Port == 0 {
		r.Port = 8004
	}
	if r.RatePerSec <= 0 {
		r.RatePerSec = 20
	}
	if r.Burst <= 0 {
		r.Burst = 40
	}
	if r.WriteWait <= 0 {
		r.WriteWait = 10 * time.Second
	}
	if r.PongWait <= 0 {
		r.PongWait = 60 * time.Second
	}
	if r.SendQueue <= 0 {
		r.SendQueue = 64
	}
	if r.MaxFrame <= 0 {
		r.MaxFrame = 64 << 10
	}
	if r.TokenTTL <= 0 {
		r.TokenTTL = time.Hour
	}
	if c.Client.AskTimeout <= 0 {
		c.Client.AskTimeout = 3 * time.Second
	}
	if c.Archive.Driver == "" {
		c.Archive.Driver = "memory"
	}
}

// Secret 返回令牌签名密钥：JWT_SECRET 环境变量优先，其次是配置中的 jwt_secret。
func Secret() []byte {
	if s := os.Getenv("JWT_SECRET"); s != "" {
		return []byte(s)
	}
	return []byte(Conf.JWTSecret)
}
