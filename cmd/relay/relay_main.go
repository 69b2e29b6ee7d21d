package main

import (
	"DeepHabitat/internal/relay"
	"DeepHabitat/internal/shared/logs"
	"DeepHabitat/internal/shared/serverconfig"
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func main() {
	serverconfig.Load()
	if err := logs.Init("relay", serverconfig.Conf.Log); err != nil {
		panic(err)
	}
	defer logs.Sync()
	logs.Info("conf", zap.Any("relay", serverconfig.Conf.Relay))

	cfg := serverconfig.Conf.Relay
	secret := serverconfig.Secret()
	if cfg.NeedAuth && len(secret) == 0 {
		logs.Fatal("relay.need_auth 已开启但未配置 JWT_SECRET")
	}

	r := relay.New(cfg, secret, logs.Logger())
	httpServer := relay.NewHttpServer(r)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logs.Info("relay listening", zap.String("addr", httpServer.Addr()))
		if err := httpServer.Start(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			errCh <- fmt.Errorf("relay server start failed: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		logs.Info("收到退出信号，准备优雅退出")
	case err := <-errCh:
		if err != nil {
			logs.Error("服务异常退出", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
}
