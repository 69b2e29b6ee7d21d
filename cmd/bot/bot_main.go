package main

import (
	"DeepHabitat/internal/archive/dc"
	"DeepHabitat/internal/archive/infra"
	"DeepHabitat/internal/bot"
	"DeepHabitat/internal/game/rules"
	"DeepHabitat/internal/lockstep"
	"DeepHabitat/internal/lockstep/actor"
	"DeepHabitat/internal/lockstep/wsclient"
	"DeepHabitat/internal/shared/logs"
	"DeepHabitat/internal/shared/serverconfig"
	"DeepHabitat/internal/shared/utils"
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	configPath := pflag.String("config", "", "配置文件路径，默认向上查找 configs/conf.yml")
	topic := pflag.String("topic", "", "覆盖 client.topic")
	maxTurns := pflag.Int("max-turns", 0, "覆盖 client.max_turns")
	node := pflag.Int64("node", 1, "对局 id 生成器的节点号，同库多进程需不同")
	pflag.Parse()

	serverconfig.LoadFrom(*configPath)
	if err := logs.Init("bot", serverconfig.Conf.Log); err != nil {
		panic(err)
	}
	defer logs.Sync()

	cfg := serverconfig.Conf.Client
	if *topic != "" {
		cfg.Topic = *topic
	}
	if *maxTurns > 0 {
		cfg.MaxTurns = *maxTurns
	}
	logs.Info("conf", zap.Any("client", cfg), zap.String("archive", serverconfig.Conf.Archive.Driver))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := infra.NewRepository(ctx, serverconfig.Conf.Archive, logs.L())
	if err != nil {
		logs.Fatal("open archive failed", zap.Error(err))
	}
	ids, err := utils.NewSnowflake(*node)
	if err != nil {
		logs.Fatal("init snowflake failed", zap.Error(err))
	}
	writer := dc.NewMatchDC(repo, ids, logs.Logger())

	var token string
	if cfg.TokenURL != "" {
		token, err = wsclient.FetchToken(ctx, cfg.TokenURL, cfg.Topic)
		if err != nil {
			logs.Fatal("fetch token failed", zap.Error(err))
		}
	}
	client, err := wsclient.Dial(ctx, wsclient.Options{URL: cfg.RelayURL, Token: token, Logger: logs.Logger()})
	if err != nil {
		logs.Fatal("dial relay failed", zap.Error(err), zap.String("relay_url", cfg.RelayURL))
	}

	rt := actor.NewRuntime(lockstep.Config{
		Topic:            cfg.Topic,
		AssertInvariants: serverconfig.Conf.Game.AssertInvariants,
		Engine:           rules.NewEngine(),
		Archiver:         writer,
		Logger:           logs.Logger(),
	}, client, cfg.AskTimeout)

	go func() {
		if err := client.Run(ctx, rt.Post); err != nil {
			logs.Error("relay connection lost", zap.Error(err))
			stop()
		}
	}()

	res, err := bot.Play(ctx, rt, cfg.MaxTurns, logs.Logger())
	if err != nil {
		logs.Error("bot play failed", zap.Error(err))
	}
	logs.Info("bot done",
		zap.Int("turns", res.Turns),
		zap.String("outcome", res.Outcome.String()),
		zap.String("digest", res.Digest),
		zap.Bool("finished", res.Finished),
	)

	client.Close()
	rt.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := writer.Close(shutdownCtx); err != nil {
		logs.Error("archive drain failed", zap.Error(err))
	}
	_ = closeRepo(shutdownCtx)
}
