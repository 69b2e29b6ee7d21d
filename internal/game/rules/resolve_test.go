package rules

import (
	"reflect"
	"testing"

	"DeepHabitat/internal/game/command"
	"DeepHabitat/internal/game/entity"
	grid "DeepHabitat/internal/game/hex"
	"DeepHabitat/internal/game/rng"
)

var (
	mountainP1 = grid.Coord{X: -3, Y: -1}
	mountainP2 = grid.Coord{X: 3, Y: 1}
)

// withHabitat 把 1 号殖民潜艇直接换成 (-3,-1) 上的玩家一栖息地。
func withHabitat(t *testing.T, seed int64) entity.Game {
	t.Helper()
	g := entity.Init(seed)
	g.Grid = entity.RemoveUnit(entity.Player1Start, 1, g.Grid)
	tile, _ := g.Grid.Get(mountainP1)
	g.Grid = g.Grid.Set(mountainP1, tile.WithHabitat(entity.NewHabitat(entity.Unit{ID: 1, Player: entity.Player1, Class: entity.ColonySub})))
	if err := entity.CheckInvariants(g); err != nil {
		t.Fatalf("构造快照不变量失败: %v", err)
	}
	return g
}

func place(g entity.Game, at grid.Coord, p entity.Player, class entity.Submarine) (entity.UnitID, entity.Game) {
	id, g := g.AllocUnitID()
	g.Grid = entity.PlaceUnit(at, entity.Unit{ID: id, Player: p, Class: class}, g.Grid)
	return id, g
}

func habitat(t *testing.T, g entity.Game, at grid.Coord) entity.Habitat {
	t.Helper()
	h, ok := entity.HabitatAt(at, g.Grid)
	if !ok {
		t.Fatalf("期望 %v 上有栖息地", at)
	}
	return h
}

func TestResolve_首回合移动一步(t *testing.T) {
	g := entity.Init(11)
	to := grid.Coord{X: -3, Y: -2}
	res := Resolve(g, command.Empty().Move(1, to), command.Empty())
	if res.Game.Turn != 2 {
		t.Fatalf("期望 Turn=2, got=%d", res.Game.Turn)
	}
	l, ok := entity.FindUnit(1, res.Game.Grid)
	if !ok || l.Coord != to {
		t.Fatalf("期望 1 号单位位于 %v, got=%v", to, l.Coord)
	}
	src, _ := res.Game.Grid.Get(entity.Player1Start)
	if _, still := src.Units[1]; still {
		t.Fatalf("1 号单位不应留在起点")
	}
	if g.Turn != 1 {
		t.Fatalf("入参快照不应被修改")
	}
	if res.Outcome.IsOver() {
		t.Fatalf("对局不应结束, got=%s", res.Outcome)
	}
}

func TestResolve_确定性(t *testing.T) {
	g := withHabitat(t, 99)
	_, g = place(g, grid.Coord{X: 0, Y: 1}, entity.Player1, entity.AttackSub)
	_, g = place(g, grid.Coord{X: 1, Y: 1}, entity.Player2, entity.AttackSub)
	p1 := command.Empty().Move(3, grid.Coord{X: 1, Y: 0}).Build(mountainP1, entity.BuildSubmarine(entity.Scout))
	p2 := command.Empty().Move(4, grid.Coord{X: 1, Y: 0})

	a := Resolve(g, p1, p2)
	b := Resolve(g, p1, p2)
	if a.Game.Digest() != b.Game.Digest() || a.Game.RandomSeed != b.Game.RandomSeed {
		t.Fatalf("同输入结算结果应一致")
	}
	if !reflect.DeepEqual(a.Report, b.Report) {
		t.Fatalf("同输入结算报告应一致")
	}
	if len(a.Report.Battles) != 1 {
		t.Fatalf("期望一次遭遇战, got=%d", len(a.Report.Battles))
	}
	if a.Game.RandomSeed == g.RandomSeed {
		t.Fatalf("遭遇战应消耗随机数")
	}
}

func TestResolve_回合数单调递增(t *testing.T) {
	g := entity.Init(5)
	for i := 0; i < 10; i++ {
		next := Resolve(g, command.Empty(), command.Empty()).Game
		if next.Turn != g.Turn+1 {
			t.Fatalf("期望 Turn=%d, got=%d", g.Turn+1, next.Turn)
		}
		g = next
	}
}

func TestResolve_非本方单位的移动被作废(t *testing.T) {
	g := entity.Init(2)
	res := Resolve(g,
		command.Empty().Move(2, grid.Coord{X: 3, Y: 2}).Move(1, grid.Coord{X: -2, Y: -2}),
		command.Empty().Move(1, grid.Coord{X: -3, Y: -2}).Move(42, grid.Coord{}).Move(2, grid.Coord{X: 7, Y: 0}),
	)
	if l, _ := entity.FindUnit(1, res.Game.Grid); l.Coord != entity.Player1Start {
		t.Fatalf("1 号单位不应移动, got=%v", l.Coord)
	}
	if l, _ := entity.FindUnit(2, res.Game.Grid); l.Coord != entity.Player2Start {
		t.Fatalf("2 号单位不应移动, got=%v", l.Coord)
	}
	want := map[RejectReason]int{ReasonNotOwner: 2, ReasonNotAdjacent: 1, ReasonUnitMissing: 1, ReasonOutOfGrid: 1}
	got := map[RejectReason]int{}
	for _, r := range res.Report.Rejected {
		got[r.Reason]++
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("期望作废原因=%v, got=%v", want, got)
	}
}

func TestResolve_互换位置的单位彼此穿过(t *testing.T) {
	g := entity.Init(3)
	a, b := grid.Coord{X: 0, Y: 1}, grid.Coord{X: 0, Y: 2}
	g.Grid = entity.MoveUnit(1, entity.Player1Start, a, g.Grid)
	g.Grid = entity.MoveUnit(2, entity.Player2Start, b, g.Grid)
	res := Resolve(g, command.Empty().Move(1, b), command.Empty().Move(2, a))
	if l, _ := entity.FindUnit(1, res.Game.Grid); l.Coord != b {
		t.Fatalf("期望 1 号到达 %v, got=%v", b, l.Coord)
	}
	if l, _ := entity.FindUnit(2, res.Game.Grid); l.Coord != a {
		t.Fatalf("期望 2 号到达 %v, got=%v", a, l.Coord)
	}
	if len(res.Report.Battles) != 0 {
		t.Fatalf("互换位置不应触发战斗")
	}
}

func TestResolve_殖民潜艇原地驻留后建立栖息地(t *testing.T) {
	g := entity.Init(4)
	g = Resolve(g, command.Empty().Move(1, grid.Coord{X: -3, Y: -2}), command.Empty()).Game
	g = Resolve(g, command.Empty().Move(1, mountainP1), command.Empty()).Game
	if _, ok := entity.HabitatAt(mountainP1, g.Grid); ok {
		t.Fatalf("移动当回合不应建立栖息地")
	}
	res := Resolve(g, command.Empty(), command.Empty())
	h := habitat(t, res.Game, mountainP1)
	if h.ID != 1 || h.Player != entity.Player1 || h.Name.Display() != "Habitat 1" {
		t.Fatalf("期望 1 号栖息地归玩家一且名为 Habitat 1, got=%+v", h)
	}
	if _, ok := entity.FindUnit(1, res.Game.Grid); ok {
		t.Fatalf("建立栖息地后殖民潜艇应消失")
	}
	if res.Outcome.IsOver() {
		t.Fatalf("有栖息地的玩家不算出局")
	}
	if err := entity.CheckInvariants(res.Game); err != nil {
		t.Fatalf("不变量失败: %v", err)
	}
}

func TestResolve_重复下达同一建造指令累积到完成(t *testing.T) {
	g := withHabitat(t, 8)
	order := command.Empty().Build(mountainP1, entity.BuildSubmarine(entity.ColonySub))
	cost := entity.BuildSubmarine(entity.ColonySub).Cost()
	last := -1
	for turn := 0; ; turn++ {
		if turn > cost {
			t.Fatalf("超过 %d 回合仍未完成", cost)
		}
		before := g.NextUnitID
		res := Resolve(g, order, command.Empty())
		if err := entity.CheckInvariants(res.Game); err != nil {
			t.Fatalf("不变量失败: %v", err)
		}
		h := habitat(t, res.Game, mountainP1)
		if len(res.Report.Completed) == 0 {
			if h.Producing == nil || *h.Producing != entity.BuildSubmarine(entity.ColonySub) {
				t.Fatalf("生产项不应改变, got=%v", h.Producing)
			}
			if h.Produced <= last || h.Produced > cost-1 {
				t.Fatalf("进度应单调递增且小于造价, last=%d got=%d", last, h.Produced)
			}
			last = h.Produced
			g = res.Game
			continue
		}
		if h.Produced != 0 || h.Producing != nil {
			t.Fatalf("完成后进度应清零, got=%d %v", h.Produced, h.Producing)
		}
		spawned := res.Report.Completed[0].Spawned
		if spawned != before || res.Game.NextUnitID != before+1 {
			t.Fatalf("期望新单位 id=%d, got=%d next=%d", before, spawned, res.Game.NextUnitID)
		}
		l, ok := entity.FindUnit(spawned, res.Game.Grid)
		if !ok || l.Coord != mountainP1 || l.Unit.Class != entity.ColonySub || l.Unit.Player != entity.Player1 {
			t.Fatalf("新单位应出现在栖息地上, got=%+v", l)
		}
		return
	}
}

func TestResolve_更换生产项清零进度(t *testing.T) {
	g := withHabitat(t, 8)
	g = Resolve(g, command.Empty().Build(mountainP1, entity.BuildBuilding(entity.Reactor)), command.Empty()).Game
	if h := habitat(t, g, mountainP1); h.Produced != 10 {
		t.Fatalf("期望进度 10, got=%d", h.Produced)
	}
	g = Resolve(g, command.Empty().Build(mountainP1, entity.BuildSubmarine(entity.AttackSub)), command.Empty()).Game
	if h := habitat(t, g, mountainP1); h.Produced != 10 || h.Producing.Name() != "AttackSub" {
		t.Fatalf("换生产项后应从零重新累积, got=%d %v", h.Produced, h.Producing)
	}
}

func TestResolve_建筑完成与重复建筑作废(t *testing.T) {
	g := withHabitat(t, 8)
	order := command.Empty().Build(mountainP1, entity.BuildBuilding(entity.Dock))
	for i := 0; i < 3; i++ {
		g = Resolve(g, order, command.Empty()).Game
	}
	if h := habitat(t, g, mountainP1); !h.HasBuilding(entity.Dock) || h.Producing != nil {
		t.Fatalf("期望 Dock 建成, got=%+v", h)
	}
	res := Resolve(g, order, command.Empty())
	if len(res.Report.Rejected) != 1 || res.Report.Rejected[0].Reason != ReasonAlreadyBuilt {
		t.Fatalf("期望重复建筑被作废, got=%+v", res.Report.Rejected)
	}
	res = Resolve(g, command.Empty(), command.Empty().Build(mountainP1, entity.BuildSubmarine(entity.Scout)))
	if len(res.Report.Rejected) != 1 || res.Report.Rejected[0].Reason != ReasonNotOwner {
		t.Fatalf("期望对手的建造指令被作废, got=%+v", res.Report.Rejected)
	}
}

func TestResolve_定名只能一次(t *testing.T) {
	g := withHabitat(t, 8)
	res := Resolve(g, command.Empty().Name(1, entity.FinalName{Full: "Abyss", Abbreviation: "ABY"}), command.Empty())
	if h := habitat(t, res.Game, mountainP1); h.Name.Display() != "Abyss" || !h.Name.IsFinal() {
		t.Fatalf("期望定名 Abyss, got=%q", h.Name.Display())
	}
	again := Resolve(res.Game, command.Empty().Name(1, entity.FinalName{Full: "Trench", Abbreviation: "TRN"}), command.Empty())
	if h := habitat(t, again.Game, mountainP1); h.Name.Display() != "Abyss" {
		t.Fatalf("定稿后不应再改名, got=%q", h.Name.Display())
	}
	if len(again.Report.Rejected) != 1 || again.Report.Rejected[0].Reason != ReasonAlreadyFinal {
		t.Fatalf("期望 already_final, got=%+v", again.Report.Rejected)
	}
	empty := Resolve(g, command.Empty().Name(1, entity.FinalName{Full: "X"}), command.Empty())
	if h := habitat(t, empty.Game, mountainP1); h.Name.IsFinal() {
		t.Fatalf("缩写为空不应定名")
	}
}

func TestResolve_遭遇战失败方单位被移除(t *testing.T) {
	g := entity.Init(6)
	id3, g := place(g, grid.Coord{X: 0, Y: 1}, entity.Player1, entity.AttackSub)
	id4, g := place(g, grid.Coord{X: 1, Y: 1}, entity.Player2, entity.Scout)
	alwaysP2 := CombatPolicyFunc(func(_, _ int, seed rng.Seed) (entity.Player, rng.Seed) { return entity.Player2, seed })
	res := NewEngine(WithCombatPolicy(alwaysP2)).Resolve(g,
		command.Empty().Move(id3, grid.Coord{X: 1, Y: 0}),
		command.Empty().Move(id4, grid.Coord{X: 1, Y: 0}),
	)
	if _, ok := entity.FindUnit(id3, res.Game.Grid); ok {
		t.Fatalf("失败方单位应被移除")
	}
	if l, ok := entity.FindUnit(id4, res.Game.Grid); !ok || l.Coord != (grid.Coord{X: 1, Y: 0}) {
		t.Fatalf("胜方单位应留在战场")
	}
	b := res.Report.Battles[0]
	if b.Strength1 != 3 || b.Strength2 != 1 || b.Winner != entity.Player2 {
		t.Fatalf("战斗记录不对, got=%+v", b)
	}
}

func TestResolve_无人防守的栖息地易主(t *testing.T) {
	g := withHabitat(t, 8)
	g = Resolve(g, command.Empty().Build(mountainP1, entity.BuildBuilding(entity.Reactor)), command.Empty()).Game
	raider, g := place(g, grid.Coord{X: -2, Y: -1}, entity.Player2, entity.AttackSub)
	res := Resolve(g, command.Empty(), command.Empty().Move(raider, mountainP1))
	h := habitat(t, res.Game, mountainP1)
	if h.Player != entity.Player2 || h.ID != 1 || h.Name.Display() != "Habitat 1" {
		t.Fatalf("期望栖息地归玩家二且保留 id 与名称, got=%+v", h)
	}
	if h.Producing != nil || h.Produced != 0 {
		t.Fatalf("易主后生产队列应清空, got=%v %d", h.Producing, h.Produced)
	}
	if len(res.Report.Captured) != 1 {
		t.Fatalf("期望记录一次易主")
	}
	if winner, ok := res.Outcome.Winner(); !ok || winner != entity.Player2 {
		t.Fatalf("玩家一失去唯一栖息地且无殖民潜艇应判负, got=%s", res.Outcome)
	}
}

func TestResolve_守军全灭后栖息地易主(t *testing.T) {
	g := withHabitat(t, 8)
	guard, g := place(g, mountainP1, entity.Player1, entity.Scout)
	raider, g := place(g, grid.Coord{X: -2, Y: -1}, entity.Player2, entity.AttackSub)
	alwaysP2 := CombatPolicyFunc(func(_, _ int, seed rng.Seed) (entity.Player, rng.Seed) { return entity.Player2, seed })
	res := NewEngine(WithCombatPolicy(alwaysP2)).Resolve(g, command.Empty(), command.Empty().Move(raider, mountainP1))

	if _, ok := entity.FindUnit(guard, res.Game.Grid); ok {
		t.Fatalf("守军应被消灭")
	}
	if l, ok := entity.FindUnit(raider, res.Game.Grid); !ok || l.Coord != mountainP1 {
		t.Fatalf("攻方应占据栖息地格子")
	}
	h := habitat(t, res.Game, mountainP1)
	if h.Player != entity.Player2 || h.ID != 1 {
		t.Fatalf("期望栖息地归玩家二, got=%+v", h)
	}
	if len(res.Report.Battles) != 1 || !reflect.DeepEqual(res.Report.Battles[0].Losses, []entity.UnitID{guard}) {
		t.Fatalf("期望一场战斗且只损失守军, got=%+v", res.Report.Battles)
	}
	if !reflect.DeepEqual(res.Report.Captured, []entity.UnitID{1}) {
		t.Fatalf("期望记录 1 号栖息地易主, got=%v", res.Report.Captured)
	}
}

func TestResolve_多处遭遇战按网格顺序抽随机数(t *testing.T) {
	g := entity.Init(11)
	a, b := grid.Coord{X: 0, Y: 1}, grid.Coord{X: 1, Y: 0}
	_, g = place(g, a, entity.Player1, entity.AttackSub)
	_, g = place(g, a, entity.Player2, entity.Scout)
	_, g = place(g, b, entity.Player1, entity.Scout)
	_, g = place(g, b, entity.Player2, entity.Scout)

	order := map[grid.Coord]int{}
	for i, c := range g.Grid.Coords() {
		order[c] = i
	}
	first, second := a, b
	if order[b] < order[a] {
		first, second = b, a
	}

	type draw struct {
		s1, s2 int
		seed   rng.Seed
	}
	var draws []draw
	spy := CombatPolicyFunc(func(s1, s2 int, seed rng.Seed) (entity.Player, rng.Seed) {
		draws = append(draws, draw{s1, s2, seed})
		return WeightedCombat.Decide(s1, s2, seed)
	})
	res := NewEngine(WithCombatPolicy(spy)).Resolve(g, command.Empty(), command.Empty())

	if len(draws) != 2 || len(res.Report.Battles) != 2 {
		t.Fatalf("期望两场遭遇战, draws=%d battles=%d", len(draws), len(res.Report.Battles))
	}
	if res.Report.Battles[0].Coord != first || res.Report.Battles[1].Coord != second {
		t.Fatalf("战斗应按网格顺序结算, got=%v %v", res.Report.Battles[0].Coord, res.Report.Battles[1].Coord)
	}
	for i, bt := range res.Report.Battles {
		if draws[i].s1 != bt.Strength1 || draws[i].s2 != bt.Strength2 {
			t.Fatalf("第 %d 次抽签应对应第 %d 场战斗, draw=%+v battle=%+v", i, i, draws[i], bt)
		}
	}
	if draws[0].seed != g.RandomSeed {
		t.Fatalf("第一次抽签应使用回合开始时的种子")
	}
	_, afterFirst := WeightedCombat.Decide(draws[0].s1, draws[0].s2, draws[0].seed)
	if draws[1].seed != afterFirst {
		t.Fatalf("第二次抽签应接着第一次之后的种子")
	}
	_, afterSecond := WeightedCombat.Decide(draws[1].s1, draws[1].s2, draws[1].seed)
	if res.Game.RandomSeed != afterSecond {
		t.Fatalf("结算后的种子应是两次抽签之后的状态")
	}
}

func TestResolve_船坞为守军加防御(t *testing.T) {
	g := withHabitat(t, 8)
	tile, _ := g.Grid.Get(mountainP1)
	h, _ := tile.Fixed.Habitat()
	g.Grid = g.Grid.Set(mountainP1, tile.WithHabitat(h.WithBuilding(entity.Dock)))
	_, g = place(g, mountainP1, entity.Player1, entity.Scout)
	raider, g := place(g, grid.Coord{X: -2, Y: -1}, entity.Player2, entity.Scout)
	var seen [2]int
	spy := CombatPolicyFunc(func(s1, s2 int, seed rng.Seed) (entity.Player, rng.Seed) {
		seen = [2]int{s1, s2}
		return entity.Player1, seed
	})
	NewEngine(WithCombatPolicy(spy)).Resolve(g, command.Empty(), command.Empty().Move(raider, mountainP1))
	if seen != [2]int{2, 1} {
		t.Fatalf("期望守方战斗力 2 攻方 1, got=%v", seen)
	}
}

func TestWeightedCombat(t *testing.T) {
	seed := rng.Initial(1)
	for i := 0; i < 50; i++ {
		var w entity.Player
		w, seed = WeightedCombat.Decide(4, 0, seed)
		if w != entity.Player1 {
			t.Fatalf("对方战斗力为零时应必胜")
		}
		w, seed = WeightedCombat.Decide(0, 4, seed)
		if w != entity.Player2 {
			t.Fatalf("己方战斗力为零时应必败")
		}
	}
	_, next := WeightedCombat.Decide(0, 0, seed)
	if next == seed {
		t.Fatalf("双方为零时仍应消耗一次随机数")
	}
}

func TestBuildPolicy_可拒绝建造(t *testing.T) {
	g := withHabitat(t, 8)
	deny := BuildPolicyFunc(func(entity.Player, entity.Habitat, entity.Buildable) bool { return false })
	res := NewEngine(WithBuildPolicy(deny)).Resolve(g, command.Empty().Build(mountainP1, entity.BuildSubmarine(entity.Scout)), command.Empty())
	if h := habitat(t, res.Game, mountainP1); h.Producing != nil {
		t.Fatalf("策略拒绝后不应开始生产")
	}
	if res.Report.Rejected[0].Reason != ReasonPolicy {
		t.Fatalf("期望 policy_rejected, got=%+v", res.Report.Rejected)
	}
}

func TestEvaluate(t *testing.T) {
	g := entity.Init(1)
	if Evaluate(g).IsOver() {
		t.Fatalf("开局不应结束")
	}
	g.Grid = entity.RemoveUnit(entity.Player2Start, 2, g.Grid)
	if w, ok := Evaluate(g).Winner(); !ok || w != entity.Player1 {
		t.Fatalf("期望玩家一获胜")
	}
	g.Grid = entity.RemoveUnit(entity.Player1Start, 1, g.Grid)
	if !Evaluate(g).IsDraw() {
		t.Fatalf("双方出局应为平局")
	}
}
