package memory

import (
	"context"
	"sync"

	"DeepHabitat/internal/archive"
	"DeepHabitat/modules/kit/errx"
)

// MatchRepository 是进程内归档，测试与未配置数据库时使用。
type MatchRepository struct {
	mu      sync.RWMutex
	matches map[int64]archive.MatchRecord
}

func NewMatchRepository() *MatchRepository {
	return &MatchRepository{matches: make(map[int64]archive.MatchRecord)}
}

func (r *MatchRepository) Save(_ context.Context, rec *archive.MatchRecord) error {
	if rec == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matches[rec.ID] = rec.Clone()
	return nil
}

func (r *MatchRepository) Load(_ context.Context, id int64) (*archive.MatchRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.matches[id]
	if !ok {
		return nil, errx.ErrNotFound.WithData("match_id", id)
	}
	out := rec.Clone()
	return &out, nil
}

// Len 返回已保存条数。
func (r *MatchRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.matches)
}
