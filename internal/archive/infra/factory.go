package infra

import (
	"context"
	"fmt"

	"DeepHabitat/internal/archive/infra/memory"
	"DeepHabitat/internal/archive/infra/mongodb"
	"DeepHabitat/internal/archive/infra/mysql"
	"DeepHabitat/internal/archive/port"
	"DeepHabitat/internal/shared/infrastructure/db"
	mongoinfra "DeepHabitat/internal/shared/infrastructure/mongo"
	"DeepHabitat/internal/shared/serverconfig"
	"DeepHabitat/modules/kit/errx"

	"go.uber.org/zap"
)

const (
	DriverMemory  = "memory"
	DriverMongoDB = "mongodb"
	DriverMySQL   = "mysql"
)

// CloseFunc 释放存储连接。
type CloseFunc func(ctx context.Context) error

// NewRepository 按 archive.driver 打开归档存储。
func NewRepository(ctx context.Context, cfg serverconfig.ArchiveConfig, l *zap.Logger) (port.MatchRepository, CloseFunc, error) {
	noop := func(context.Context) error { return nil }
	switch cfg.Driver {
	case "", DriverMemory:
		return memory.NewMatchRepository(), noop, nil
	case DriverMongoDB:
		client, err := mongoinfra.Open(cfg.MongoDB, l)
		if err != nil {
			return nil, nil, err
		}
		repo := mongodb.NewMatchRepository(client.Database(cfg.MongoDB.Database))
		return repo, func(ctx context.Context) error { return client.Disconnect(ctx) }, nil
	case DriverMySQL:
		gdb, err := db.Open(cfg.MySQL)
		if err != nil {
			return nil, nil, err
		}
		repo := mysql.NewMatchRepository(gdb)
		if err := repo.Migrate(ctx); err != nil {
			return nil, nil, err
		}
		closeFn := func(context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		}
		return repo, closeFn, nil
	default:
		return nil, nil, errx.ErrConfigInvalid.WithCause(fmt.Errorf("unknown archive driver %q", cfg.Driver))
	}
}
