package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrJWTSecretMissing = errors.New("jwt secret is not set")
	ErrTopicMissing     = errors.New("token topic is empty")
)

// Claims 把令牌限定在一个 topic 上：持有者只能在该 topic 上收发。
type Claims struct {
	Topic string `json:"topic"`
	jwt.RegisteredClaims
}

// Award 为 topic 签发 HS256 令牌，ttl<=0 时默认 1 小时。
func Award(secret []byte, topic string, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", ErrJWTSecretMissing
	}
	if topic == "" {
		return "", ErrTopicMissing
	}
	if ttl <= 0 {
		ttl = time.Hour
	}

	now := time.Now()
	claims := &Claims{
		Topic: topic,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseToken 解析并验证 Token。
func ParseToken(secret []byte, tokenStr string) (*Claims, error) {
	if len(secret) == 0 {
		return nil, ErrJWTSecretMissing
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if token == nil || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.Topic == "" {
		return nil, ErrTopicMissing
	}
	return claims, nil
}
