package rules

import (
	"fmt"

	"DeepHabitat/internal/game/entity"
)

type outcomeKind uint8

const (
	outcomeOngoing outcomeKind = iota
	outcomeDraw
	outcomeVictory
)

// Outcome 是每回合结算后的对局状态：进行中、平局，或某一方获胜。
type Outcome struct {
	kind   outcomeKind
	winner entity.Player
}

func Ongoing() Outcome { return Outcome{kind: outcomeOngoing} }

func Draw() Outcome { return Outcome{kind: outcomeDraw} }

func Victory(p entity.Player) Outcome { return Outcome{kind: outcomeVictory, winner: p} }

// IsOver 表示对局已结束。
func (o Outcome) IsOver() bool {
	return o.kind != outcomeOngoing
}

func (o Outcome) IsDraw() bool {
	return o.kind == outcomeDraw
}

// Winner 返回胜者；平局或进行中返回 false。
func (o Outcome) Winner() (entity.Player, bool) {
	return o.winner, o.kind == outcomeVictory
}

func (o Outcome) String() string {
	switch o.kind {
	case outcomeDraw:
		return "draw"
	case outcomeVictory:
		return fmt.Sprintf("victory:%s", o.winner)
	default:
		return "ongoing"
	}
}

// Eliminated 表示玩家既没有栖息地也没有殖民潜艇。
func Eliminated(p entity.Player, g entity.Game) bool {
	return len(entity.HabitatsForPlayer(p, g)) == 0 && entity.CountColonySubs(p, g.Grid) == 0
}

// Evaluate 根据双方是否出局计算对局状态。
func Evaluate(g entity.Game) Outcome {
	out1, out2 := Eliminated(entity.Player1, g), Eliminated(entity.Player2, g)
	switch {
	case out1 && out2:
		return Draw()
	case out1:
		return Victory(entity.Player2)
	case out2:
		return Victory(entity.Player1)
	default:
		return Ongoing()
	}
}
