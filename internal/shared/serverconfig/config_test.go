package serverconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFrom_缺省值与时长解析(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.yml")
	raw := "relay:\n  port: 9100\n  write_wait: 2s\narchive:\n  driver: mongodb\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write err=%v", err)
	}
	Conf = Config{}
	LoadFrom(path)
	if Conf.Relay.Port != 9100 || Conf.Relay.WriteWait != 2*time.Second {
		t.Fatalf("期望读取配置值, got=%+v", Conf.Relay)
	}
	if Conf.Relay.SendQueue != 64 || Conf.Relay.PongWait != 60*time.Second {
		t.Fatalf("期望补齐缺省值, got=%+v", Conf.Relay)
	}
	if Conf.Archive.Driver != "mongodb" {
		t.Fatalf("期望 driver=mongodb, got=%q", Conf.Archive.Driver)
	}
}

func TestSecret_环境变量优先(t *testing.T) {
	Conf = Config{JWTSecret: "from-conf"}
	t.Setenv("JWT_SECRET", "")
	if got := string(Secret()); got != "from-conf" {
		t.Fatalf("期望回退到配置值, got=%q", got)
	}
	t.Setenv("JWT_SECRET", "from-env")
	if got := string(Secret()); got != "from-env" {
		t.Fatalf("期望环境变量优先, got=%q", got)
	}
}
