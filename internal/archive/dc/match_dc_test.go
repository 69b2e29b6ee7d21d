package dc

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"DeepHabitat/internal/archive"
	"DeepHabitat/internal/archive/infra/memory"
	"DeepHabitat/internal/shared/utils"
)

type flakyRepo struct {
	mu    sync.Mutex
	fails int
	saved []int64
}

func (r *flakyRepo) Save(_ context.Context, rec *archive.MatchRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fails > 0 {
		r.fails--
		return errors.New("db down")
	}
	r.saved = append(r.saved, rec.ID)
	return nil
}

func (r *flakyRepo) Load(context.Context, int64) (*archive.MatchRecord, error) {
	return nil, errors.New("not implemented")
}

func TestMatchDC_分配id并在关闭时写完(t *testing.T) {
	repo := memory.NewMatchRepository()
	ids, _ := utils.NewSnowflake(1)
	d := NewMatchDC(repo, ids, nil)
	var got []int64
	for i := 0; i < 3; i++ {
		id := d.Submit(archive.MatchRecord{Topic: "room", Seed: int64(i)})
		if id == 0 {
			t.Fatalf("期望分配非零 id")
		}
		got = append(got, id)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := d.Close(ctx); err != nil {
		t.Fatalf("Close err=%v", err)
	}
	if repo.Len() != 3 {
		t.Fatalf("期望写入 3 条, got=%d", repo.Len())
	}
	rec, err := repo.Load(context.Background(), got[1])
	if err != nil || rec.Seed != 1 || rec.FinishedAt.IsZero() {
		t.Fatalf("读取归档不对, got=%+v err=%v", rec, err)
	}
	if d.Submit(archive.MatchRecord{}) != 0 {
		t.Fatalf("关闭后不应再接收")
	}
}

func TestMatchDC_写库失败重试(t *testing.T) {
	repo := &flakyRepo{fails: 2}
	d := NewMatchDC(repo, nil, nil)
	d.Submit(archive.MatchRecord{ID: 42})
	deadline := time.Now().Add(2 * time.Second)
	for {
		repo.mu.Lock()
		n := len(repo.saved)
		repo.mu.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("重试后应写入成功")
		}
		time.Sleep(10 * time.Millisecond)
	}
	_ = d.Close(context.Background())
	if repo.saved[0] != 42 {
		t.Fatalf("期望写入 id=42, got=%v", repo.saved)
	}
}
