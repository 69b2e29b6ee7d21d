package bot

import (
	"context"

	"DeepHabitat/internal/game/command"
	"DeepHabitat/internal/game/rules"
	"DeepHabitat/internal/lockstep"
	"DeepHabitat/modules/kit/errx"
	"DeepHabitat/modules/kit/logx"

	"go.uber.org/zap"
)

// Runtime 是 bot 驱动的会话，*actor.Runtime 实现它。
type Runtime interface {
	Join(ctx context.Context) error
	Submit(ctx context.Context, c command.Commands) error
	Subscribe() <-chan lockstep.Event
}

// Result 是一次 Play 的结果。
type Result struct {
	Turns   int
	Outcome rules.Outcome
	Digest  string
	// Finished 为 false 表示因回合上限或 ctx 取消提前停下。
	Finished bool
}

// Play 进入 topic 并逐回合提交 Strategy 的指令，直到对局结束、达到 maxTurns（<=0 不限）或 ctx 取消。
func Play(ctx context.Context, rt Runtime, maxTurns int, l logx.Logger) (Result, error) {
	if l == nil {
		l = logx.Nop()
	}
	if err := rt.Join(ctx); err != nil {
		return Result{}, err
	}

	var (
		strategy *Strategy
		res      = Result{Outcome: rules.Ongoing()}
	)
	events := rt.Subscribe()
	for {
		select {
		case <-ctx.Done():
			return res, nil
		case e, ok := <-events:
			if !ok {
				return res, errx.ErrUnavailable.WithData("reason", "session_closed")
			}
			switch ev := e.(type) {
			case lockstep.Started:
				strategy = New(ev.Role)
				l.Info("bot started", zap.String("role", ev.Role.String()), zap.Int64("seed", ev.Seed))
				if err := rt.Submit(ctx, strategy.Plan(ev.Game)); err != nil {
					return res, err
				}
			case lockstep.Resolved:
				res.Turns, res.Outcome, res.Digest = ev.Turn, ev.Outcome, ev.Digest
				if len(ev.Report.Rejected) > 0 {
					l.Debug("bot commands rejected", zap.Int("turn", ev.Turn), zap.Int("count", len(ev.Report.Rejected)))
				}
				if ev.Outcome.IsOver() {
					continue
				}
				if maxTurns > 0 && ev.Turn >= maxTurns {
					l.Info("bot reached turn limit", zap.Int("turn", ev.Turn))
					return res, nil
				}
				if strategy == nil {
					continue
				}
				if err := rt.Submit(ctx, strategy.Plan(ev.Game)); err != nil {
					return res, err
				}
			case lockstep.Finished:
				res.Outcome, res.Finished = ev.Outcome, true
				l.Info("bot finished", zap.String("outcome", ev.Outcome.String()), zap.Int("turns", res.Turns))
				return res, nil
			case lockstep.Failure:
				l.Warn("bot session failure", zap.Error(ev.Err))
			}
		}
	}
}
