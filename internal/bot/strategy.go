// Package bot 是无界面的指令生成者：从快照确定性地算出本方每回合指令。
package bot

import (
	"fmt"

	"DeepHabitat/internal/game/command"
	"DeepHabitat/internal/game/entity"
	grid "DeepHabitat/internal/game/hex"
)

// colonyTarget 是殖民潜艇继续扩张的栖息地数量上限。
const colonyTarget = 2

// Strategy 只读快照，不保留跨回合状态；同一快照总是得到同一份指令。
type Strategy struct {
	player entity.Player
}

func New(p entity.Player) *Strategy {
	return &Strategy{player: p}
}

func (s *Strategy) Player() entity.Player {
	return s.player
}

// Plan 生成本回合指令：殖民潜艇去最近的空山地并停驻，进攻单位逼近最近的敌方目标，
// 空闲栖息地排产，未定名的栖息地定名。
func (s *Strategy) Plan(g entity.Game) command.Commands {
	cmds := command.Empty()
	units := entity.FriendlyUnitDict(s.player, g.Grid)
	free := freeMountains(g.Grid)
	targets := enemyTargets(s.player, g.Grid)

	for _, id := range entity.SortedUnitIDs(units) {
		l := units[id]
		var goal []grid.Coord
		if l.Unit.CanFound() {
			if isFreeMountain(l.Coord, g.Grid) {
				continue
			}
			goal = free
		} else {
			goal = targets
		}
		to, ok := stepTowards(l.Coord, goal, g.Grid)
		if ok {
			cmds = cmds.Move(id, to)
		}
	}

	habitats := entity.HabitatsForPlayer(s.player, g)
	for _, ph := range habitats {
		if ph.Habitat.Producing == nil {
			what := entity.BuildSubmarine(entity.AttackSub)
			if len(habitats) < colonyTarget {
				what = entity.BuildSubmarine(entity.ColonySub)
			}
			cmds = cmds.Build(ph.Coord, what)
		}
		if !ph.Habitat.Name.IsFinal() {
			cmds = cmds.Name(ph.Habitat.ID, finalNameFor(s.player, ph.Habitat.ID))
		}
	}
	return cmds
}

func finalNameFor(p entity.Player, id entity.UnitID) entity.FinalName {
	return entity.FinalName{
		Full:         fmt.Sprintf("Deep Habitat %d (%s)", id, p),
		Abbreviation: fmt.Sprintf("DH%d", id),
	}
}

func isFreeMountain(c grid.Coord, g grid.Grid[entity.Tile]) bool {
	t, ok := g.Get(c)
	if !ok || !t.Fixed.IsMountain() {
		return false
	}
	_, taken := t.Fixed.Habitat()
	return !taken
}

func freeMountains(g grid.Grid[entity.Tile]) []grid.Coord {
	return grid.Foldl(g, func(c grid.Coord, t entity.Tile, acc []grid.Coord) []grid.Coord {
		if isFreeMountain(c, g) {
			acc = append(acc, c)
		}
		return acc
	}, nil)
}

// enemyTargets 返回敌方栖息地与敌方单位所在坐标，按网格顺序。
func enemyTargets(p entity.Player, g grid.Grid[entity.Tile]) []grid.Coord {
	enemy := p.Opponent()
	return grid.Foldl(g, func(c grid.Coord, t entity.Tile, acc []grid.Coord) []grid.Coord {
		if h, ok := t.Fixed.Habitat(); ok && h.Player == enemy {
			return append(acc, c)
		}
		if t.Owners()[enemy] {
			acc = append(acc, c)
		}
		return acc
	}, nil)
}

// nearest 取距离最小的目标，同距离取网格顺序靠前者。
func nearest(from grid.Coord, goals []grid.Coord) (grid.Coord, bool) {
	var best grid.Coord
	found := false
	for _, c := range goals {
		if !found || grid.Distance(from, c) < grid.Distance(from, best) {
			best, found = c, true
		}
	}
	return best, found
}

// stepTowards 返回朝最近目标前进一步的相邻格；已在目标上或无目标时返回 false。
func stepTowards(from grid.Coord, goals []grid.Coord, g grid.Grid[entity.Tile]) (grid.Coord, bool) {
	target, ok := nearest(from, goals)
	if !ok || target == from {
		return grid.Coord{}, false
	}
	best := from
	for _, n := range grid.Neighbors(from) {
		if !g.Contains(n) {
			continue
		}
		if grid.Distance(n, target) < grid.Distance(best, target) {
			best = n
		}
	}
	return best, best != from
}
