package db

import (
	"testing"

	"DeepHabitat/internal/shared/serverconfig"
)

func TestDSN_缺省字符集(t *testing.T) {
	got := DSN(serverconfig.MySQLConfig{User: "u", Password: "p", Host: "127.0.0.1", Port: 3306, DBName: "deep"})
	want := "u:p@tcp(127.0.0.1:3306)/deep?charset=utf8mb4&parseTime=True&loc=Local"
	if got != want {
		t.Fatalf("want=%s got=%s", want, got)
	}
}
