// Package rules 是回合结算引擎：纯函数、单线程、确定性。
//
// 结算顺序固定：校验 -> 移动 -> 战斗 -> 建立栖息地 -> 建造指令 -> 生产 -> 定名 -> 回合数加一。
// 同样的快照与双方指令，任何机器上都得到逐位相同的结果（包括随机数状态）。
package rules

import (
	"sort"
	"strconv"

	"DeepHabitat/internal/game/command"
	"DeepHabitat/internal/game/entity"
	grid "DeepHabitat/internal/game/hex"
	"DeepHabitat/internal/shared/gameconfig/buildable"
)

// Result 是一回合结算的输出。
type Result struct {
	Game    entity.Game
	Outcome Outcome
	Report  Report
}

// Engine 持有可替换的战斗与建造策略。
type Engine struct {
	combat     CombatPolicy
	build      BuildPolicy
	baseOutput int
}

type Option func(*Engine)

func WithCombatPolicy(p CombatPolicy) Option {
	return func(e *Engine) {
		if p != nil {
			e.combat = p
		}
	}
}

func WithBuildPolicy(p BuildPolicy) Option {
	return func(e *Engine) {
		if p != nil {
			e.build = p
		}
	}
}

// WithBaseOutput 覆盖栖息地基础产能（测试用）。
func WithBaseOutput(v int) Option {
	return func(e *Engine) {
		if v > 0 {
			e.baseOutput = v
		}
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		combat:     WeightedCombat,
		build:      AcceptAll,
		baseOutput: buildable.Conf.BaseOutput,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = NewEngine()

// Resolve 使用默认策略结算一回合。
func Resolve(g entity.Game, p1, p2 command.Commands) Result {
	return defaultEngine.Resolve(g, p1, p2)
}

type validMove struct {
	id       entity.UnitID
	from, to grid.Coord
}

type validBuild struct {
	player entity.Player
	at     grid.Coord
	what   entity.Buildable
}

type validNaming struct {
	player entity.Player
	id     entity.UnitID
	name   entity.FinalName
}

type turn struct {
	engine  *Engine
	game    entity.Game
	report  Report
	moves   []validMove
	builds  []validBuild
	namings []validNaming
	moved   map[entity.UnitID]bool
}

// Resolve 结算一回合；入参不会被修改。
func (e *Engine) Resolve(g entity.Game, p1, p2 command.Commands) Result {
	t := &turn{engine: e, game: g.Clone(), moved: map[entity.UnitID]bool{}}

	pre := g.Grid
	t.validate(pre, entity.Player1, p1)
	t.validate(pre, entity.Player2, p2)

	t.applyMoves()
	t.resolveCombat()
	t.found()
	t.applyBuilds()
	t.produce()
	t.applyNamings()

	t.game.Turn++
	return Result{Game: t.game, Outcome: Evaluate(t.game), Report: t.report}
}

func (t *turn) reject(p entity.Player, kind RejectKind, key string, reason RejectReason) {
	t.report.Rejected = append(t.report.Rejected, Rejection{Player: p, Kind: kind, Key: key, Reason: reason})
}

// validate 按回合开始时的快照校验一方的指令。
func (t *turn) validate(pre grid.Grid[entity.Tile], p entity.Player, cmds command.Commands) {
	units := entity.UnitDict(pre)
	for _, id := range cmds.MoveIDs() {
		to := cmds.Moves[id]
		key := strconv.Itoa(int(id))
		l, ok := units[id]
		switch {
		case !ok:
			t.reject(p, RejectMove, key, ReasonUnitMissing)
		case l.Unit.Player != p:
			t.reject(p, RejectMove, key, ReasonNotOwner)
		case !pre.Contains(to):
			t.reject(p, RejectMove, key, ReasonOutOfGrid)
		case !grid.Adjacent(l.Coord, to):
			t.reject(p, RejectMove, key, ReasonNotAdjacent)
		default:
			t.moves = append(t.moves, validMove{id: id, from: l.Coord, to: to})
		}
	}

	for _, at := range cmds.BuildCoords() {
		what := cmds.BuildOrders[at]
		key := at.String()
		h, ok := entity.HabitatAt(at, pre)
		switch {
		case !ok:
			t.reject(p, RejectBuild, key, ReasonNoHabitat)
		case h.Player != p:
			t.reject(p, RejectBuild, key, ReasonNotOwner)
		case !what.Valid():
			t.reject(p, RejectBuild, key, ReasonInvalidBuildable)
		case what.Kind() == entity.KindBuilding && hasBuilding(h, what):
			t.reject(p, RejectBuild, key, ReasonAlreadyBuilt)
		case !t.engine.build.Allow(p, h, what):
			t.reject(p, RejectBuild, key, ReasonPolicy)
		default:
			t.builds = append(t.builds, validBuild{player: p, at: at, what: what})
		}
	}

	habitats := habitatsByID(pre)
	for _, id := range cmds.NamingIDs() {
		name := cmds.HabitatNamings[id]
		key := strconv.Itoa(int(id))
		ph, ok := habitats[id]
		switch {
		case !ok:
			t.reject(p, RejectNaming, key, ReasonNoHabitat)
		case ph.Habitat.Player != p:
			t.reject(p, RejectNaming, key, ReasonNotOwner)
		case ph.Habitat.Name.IsFinal():
			t.reject(p, RejectNaming, key, ReasonAlreadyFinal)
		case name.Full == "" || name.Abbreviation == "":
			t.reject(p, RejectNaming, key, ReasonEmptyName)
		default:
			t.namings = append(t.namings, validNaming{player: p, id: id, name: name})
		}
	}
}

func hasBuilding(h entity.Habitat, what entity.Buildable) bool {
	b, _ := what.Building()
	return h.HasBuilding(b)
}

func habitatsByID(g grid.Grid[entity.Tile]) map[entity.UnitID]entity.PlacedHabitat {
	out := make(map[entity.UnitID]entity.PlacedHabitat)
	for _, ph := range entity.AllHabitats(g) {
		out[ph.Habitat.ID] = ph
	}
	return out
}

// applyMoves 按 id 升序执行双方移动；起点都取自同一份移动前快照，互换位置的单位彼此穿过。
func (t *turn) applyMoves() {
	moves := sortMoves(t.moves)
	for _, m := range moves {
		t.game.Grid = entity.MoveUnit(m.id, m.from, m.to, t.game.Grid)
		t.moved[m.id] = true
	}
}

func sortMoves(in []validMove) []validMove {
	out := make([]validMove, len(in))
	copy(out, in)
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// resolveCombat 按网格顺序处理每个同时有双方单位的格子，随后结算栖息地易主。
func (t *turn) resolveCombat() {
	for _, c := range t.game.Grid.Coords() {
		tile, _ := t.game.Grid.Get(c)
		if !tile.Contested() {
			continue
		}
		s1, s2 := t.strength(tile, entity.Player1), t.strength(tile, entity.Player2)
		winner, next := t.engine.combat.Decide(s1, s2, t.game.RandomSeed)
		t.game.RandomSeed = next
		if !winner.Valid() {
			winner = entity.Player1
		}
		battle := Battle{Coord: c, Strength1: s1, Strength2: s2, Winner: winner}
		for _, u := range tile.SortedUnits() {
			if u.Player != winner {
				tile = tile.WithoutUnit(u.ID)
				battle.Losses = append(battle.Losses, u.ID)
			}
		}
		t.game.Grid = t.game.Grid.Set(c, tile)
		t.report.Battles = append(t.report.Battles, battle)
	}

	for _, ph := range entity.AllHabitats(t.game.Grid) {
		tile, _ := t.game.Grid.Get(ph.Coord)
		owners := tile.Owners()
		if len(owners) == 0 || owners[ph.Habitat.Player] {
			continue
		}
		occupier := ph.Habitat.Player.Opponent()
		t.game.Grid = entity.UpdateHabitat(ph.Coord, func(h entity.Habitat) entity.Habitat {
			h.Player = occupier
			return h.ClearProducing()
		}, t.game.Grid)
		t.report.Captured = append(t.report.Captured, ph.Habitat.ID)
	}
}

// strength 是一方在格子上的战斗力；守卫自己栖息地时加上建筑防御。
func (t *turn) strength(tile entity.Tile, p entity.Player) int {
	s := 0
	present := false
	for _, u := range tile.Units {
		if u.Player == p {
			s += u.Strength()
			present = true
		}
	}
	if h, ok := tile.Fixed.Habitat(); ok && present && h.Player == p {
		s += h.Defence()
	}
	return s
}

// found 让原地未动、站在空山地上的殖民潜艇建立栖息地，同格多艘时 id 最小者建立。
func (t *turn) found() {
	for _, c := range t.game.Grid.Coords() {
		tile, _ := t.game.Grid.Get(c)
		if !tile.Fixed.IsMountain() || tile.Contested() {
			continue
		}
		if _, taken := tile.Fixed.Habitat(); taken {
			continue
		}
		for _, u := range tile.SortedUnits() {
			if !u.CanFound() || t.moved[u.ID] {
				continue
			}
			tile = tile.WithoutUnit(u.ID).WithHabitat(entity.NewHabitat(u))
			t.game.Grid = t.game.Grid.Set(c, tile)
			t.report.Founded = append(t.report.Founded, u.ID)
			break
		}
	}
}

// applyBuilds 设置生产项；栖息地已易主的指令作废。
func (t *turn) applyBuilds() {
	for _, b := range t.builds {
		h, ok := entity.HabitatAt(b.at, t.game.Grid)
		if !ok || h.Player != b.player {
			t.reject(b.player, RejectBuild, b.at.String(), ReasonOwnerChanged)
			continue
		}
		t.game.Grid = entity.UpdateHabitat(b.at, func(h entity.Habitat) entity.Habitat {
			return h.WithProducing(b.what)
		}, t.game.Grid)
	}
}

// produce 按网格顺序为每个在产的栖息地累加产能，达到造价即完成。
func (t *turn) produce() {
	for _, ph := range entity.AllHabitats(t.game.Grid) {
		h := ph.Habitat
		if h.Producing == nil {
			continue
		}
		what := *h.Producing
		h.Produced += h.Output(t.engine.baseOutput)
		if h.Produced < what.Cost() {
			t.game.Grid = entity.UpdateHabitat(ph.Coord, func(entity.Habitat) entity.Habitat { return h }, t.game.Grid)
			continue
		}

		done := Completion{Habitat: h.ID, Coord: ph.Coord, Buildable: what}
		if sub, ok := what.Submarine(); ok {
			var id entity.UnitID
			id, t.game = t.game.AllocUnitID()
			t.game.Grid = entity.PlaceUnit(ph.Coord, entity.Unit{ID: id, Player: h.Player, Class: sub}, t.game.Grid)
			done.Spawned = id
		} else if b, ok := what.Building(); ok {
			h = h.WithBuilding(b)
		}
		h = h.ClearProducing()
		t.game.Grid = entity.UpdateHabitat(ph.Coord, func(entity.Habitat) entity.Habitat { return h }, t.game.Grid)
		t.report.Completed = append(t.report.Completed, done)
	}
}

// applyNamings 为仍归原主且仍是草稿的栖息地定名。
func (t *turn) applyNamings() {
	habitats := habitatsByID(t.game.Grid)
	for _, n := range t.namings {
		ph, ok := habitats[n.id]
		if !ok || ph.Habitat.Player != n.player {
			t.reject(n.player, RejectNaming, strconv.Itoa(int(n.id)), ReasonOwnerChanged)
			continue
		}
		if ph.Habitat.Name.IsFinal() {
			continue
		}
		t.game.Grid = entity.UpdateHabitat(ph.Coord, func(h entity.Habitat) entity.Habitat {
			h.Name = h.Name.Finalize(n.name)
			return h
		}, t.game.Grid)
		t.report.Named = append(t.report.Named, n.id)
	}
}
