package security

import (
	"errors"
	"testing"
	"time"
)

func TestAward_缺少密钥应失败(t *testing.T) {
	if _, err := Award(nil, "room", time.Minute); !errors.Is(err, ErrJWTSecretMissing) {
		t.Fatalf("期望密钥为空时 Award 返回 ErrJWTSecretMissing, got=%v", err)
	}
	if _, err := Award([]byte("k"), "", time.Minute); !errors.Is(err, ErrTopicMissing) {
		t.Fatalf("期望 topic 为空时 Award 返回 ErrTopicMissing, got=%v", err)
	}
}

func TestAwardParse_正常签发并解析(t *testing.T) {
	secret := []byte("test-secret-123")

	token, err := Award(secret, "room-42", time.Minute)
	if err != nil {
		t.Fatalf("Award err=%v", err)
	}
	if token == "" {
		t.Fatalf("期望 token 非空")
	}

	claims, err := ParseToken(secret, token)
	if err != nil {
		t.Fatalf("ParseToken err=%v", err)
	}
	if claims.Topic != "room-42" {
		t.Fatalf("期望 claims.Topic==room-42, got=%v", claims.Topic)
	}
}

func TestParseToken_密钥不符或过期应失败(t *testing.T) {
	token, err := Award([]byte("a"), "room", time.Minute)
	if err != nil {
		t.Fatalf("Award err=%v", err)
	}
	if _, err := ParseToken([]byte("b"), token); err == nil {
		t.Fatalf("期望密钥不符时解析失败")
	}

	expired, err := Award([]byte("a"), "room", time.Nanosecond)
	if err != nil {
		t.Fatalf("Award err=%v", err)
	}
	time.Sleep(1100 * time.Millisecond)
	if _, err := ParseToken([]byte("a"), expired); err == nil {
		t.Fatalf("期望过期令牌解析失败")
	}
}
