package port

import (
	"context"

	"DeepHabitat/internal/archive"
)

// MatchRepository 按 id 覆盖写入与读取对局归档；Load 未找到时返回 errx.ErrNotFound。
type MatchRepository interface {
	Save(ctx context.Context, rec *archive.MatchRecord) error
	Load(ctx context.Context, id int64) (*archive.MatchRecord, error)
}
