package archive

import (
	"errors"
	"testing"

	"DeepHabitat/internal/game/command"
	"DeepHabitat/internal/game/entity"
	grid "DeepHabitat/internal/game/hex"
	"DeepHabitat/internal/game/rules"
	"DeepHabitat/modules/kit/errx"
)

func playRecord(t *testing.T, seed int64) MatchRecord {
	t.Helper()
	g := entity.Init(seed)
	steps := []command.Commands{
		command.Empty().Move(1, grid.Coord{X: -3, Y: -2}),
		command.Empty().Move(1, grid.Coord{X: -3, Y: -1}),
		command.Empty(),
	}
	rec := MatchRecord{Topic: "room", Seed: seed, Role: entity.Player1.String()}
	for _, p1 := range steps {
		res := rules.Resolve(g, p1, command.Empty())
		tl, err := NewTurnLog(g.Turn, p1, command.Empty(), res.Game.Digest())
		if err != nil {
			t.Fatalf("NewTurnLog err=%v", err)
		}
		rec.Turns = append(rec.Turns, tl)
		g = res.Game
	}
	rec.FinalDigest = g.Digest()
	return rec
}

func TestReplay_重放得到相同终局(t *testing.T) {
	rec := playRecord(t, 77)
	g, _, err := Replay(rec, nil)
	if err != nil {
		t.Fatalf("Replay err=%v", err)
	}
	if g.Turn != 4 {
		t.Fatalf("期望 Turn=4, got=%d", g.Turn)
	}
	if _, ok := entity.HabitatAt(grid.Coord{X: -3, Y: -1}, g.Grid); !ok {
		t.Fatalf("重放后应已建立栖息地")
	}
}

func TestReplay_摘要不一致报失步(t *testing.T) {
	rec := playRecord(t, 77)
	rec.Seed = 78
	rec.Turns[0].Digest = "bad"
	_, _, err := Replay(rec, nil)
	if !errors.Is(err, errx.ErrInvariant) {
		t.Fatalf("期望 INVARIANT_VIOLATION, got=%v", err)
	}
}
