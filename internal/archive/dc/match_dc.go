package dc

import (
	"context"
	"sync"
	"time"

	"DeepHabitat/internal/archive"
	"DeepHabitat/internal/archive/port"
	"DeepHabitat/internal/shared/utils"
	"DeepHabitat/modules/kit/errx"
	"DeepHabitat/modules/kit/logx"

	"go.uber.org/zap"
)

const retryBackoff = 200 * time.Millisecond

// MatchDC 是对局归档的异步写入器：Submit 只入队，写库在独立 goroutine 上进行，不阻塞对局。
// 写库失败时重排，Close 时把剩余的写完一轮。
type MatchDC struct {
	repo   port.MatchRepository
	ids    *utils.Snowflake
	logger logx.Logger

	mu      sync.Mutex
	pending map[int64]*archive.MatchRecord
	order   []int64
	closed  bool

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
}

func NewMatchDC(repo port.MatchRepository, ids *utils.Snowflake, logger logx.Logger) *MatchDC {
	if logger == nil {
		logger = logx.Nop()
	}
	d := &MatchDC{
		repo:    repo,
		ids:     ids,
		logger:  logger,
		pending: make(map[int64]*archive.MatchRecord),
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go d.writerLoop()
	return d
}

// Submit 入队一条归档；ID 为零时分配雪花 id，返回最终 id。关闭后返回 0。
func (d *MatchDC) Submit(rec archive.MatchRecord) int64 {
	rec = rec.Clone()
	if rec.ID == 0 && d.ids != nil {
		rec.ID = d.ids.NextID()
	}
	if rec.FinishedAt.IsZero() {
		rec.FinishedAt = time.Now()
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return 0
	}
	d.enqueueLocked(&rec)
	d.mu.Unlock()

	d.signal()
	return rec.ID
}

// Pending 返回尚未写入的条数。
func (d *MatchDC) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.order)
}

func (d *MatchDC) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.stop)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return errx.ErrTimeout.WithCause(ctx.Err())
	}
}

// enqueueLocked 同 id 后到覆盖先到，顺序保持首次入队的位置。
func (d *MatchDC) enqueueLocked(rec *archive.MatchRecord) {
	if _, ok := d.pending[rec.ID]; !ok {
		d.order = append(d.order, rec.ID)
	}
	d.pending[rec.ID] = rec
}

func (d *MatchDC) signal() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *MatchDC) popPending() *archive.MatchRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.order) == 0 {
		return nil
	}
	id := d.order[0]
	d.order = d.order[1:]
	rec := d.pending[id]
	delete(d.pending, id)
	return rec
}

func (d *MatchDC) requeueOnError(rec *archive.MatchRecord) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	// 已有同 id 的新版本时以新版本为准
	if _, ok := d.pending[rec.ID]; !ok {
		d.enqueueLocked(rec)
	}
	return true
}

func (d *MatchDC) writerLoop() {
	defer close(d.done)

	for {
		select {
		case <-d.wake:
			d.consumePending()
		case <-d.stop:
			d.consumePending()
			return
		}
	}
}

func (d *MatchDC) consumePending() {
	for {
		rec := d.popPending()
		if rec == nil {
			return
		}
		ctx := context.Background()
		if d.repo == nil {
			continue
		}
		if err := d.repo.Save(ctx, rec); err != nil {
			logx.ReportSysErrorWithLoggerContext(ctx, d.logger, logx.NewSysLog("archive.save", err), zap.Int64("match_id", rec.ID))
			if !d.requeueOnError(rec) {
				continue
			}
			time.Sleep(retryBackoff)
			continue
		}
		d.logger.Info("match archived", zap.Int64("match_id", rec.ID), zap.Int("turns", len(rec.Turns)), zap.String("outcome", rec.Outcome))
	}
}
