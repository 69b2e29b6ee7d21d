package rules

import (
	"DeepHabitat/internal/game/entity"
	"DeepHabitat/internal/game/rng"
)

// CombatPolicy 决定一格遭遇战的胜者，随机数必须从 seed 抽取并返回新状态。
type CombatPolicy interface {
	Decide(strength1, strength2 int, seed rng.Seed) (entity.Player, rng.Seed)
}

// CombatPolicyFunc 让普通函数实现 CombatPolicy。
type CombatPolicyFunc func(strength1, strength2 int, seed rng.Seed) (entity.Player, rng.Seed)

func (f CombatPolicyFunc) Decide(s1, s2 int, seed rng.Seed) (entity.Player, rng.Seed) {
	return f(s1, s2, seed)
}

// WeightedCombat 按战斗力加权抽签：抽 r ∈ [0, s1+s2)，r < s1 则玩家一获胜；
// 双方战斗力都为零时掷硬币。
var WeightedCombat CombatPolicy = CombatPolicyFunc(func(s1, s2 int, seed rng.Seed) (entity.Player, rng.Seed) {
	if s1 < 0 {
		s1 = 0
	}
	if s2 < 0 {
		s2 = 0
	}
	if s1+s2 == 0 {
		heads, next := seed.Bool()
		if heads {
			return entity.Player1, next
		}
		return entity.Player2, next
	}
	r, next := seed.Intn(s1 + s2)
	if r < s1 {
		return entity.Player1, next
	}
	return entity.Player2, next
})

// BuildPolicy 在校验阶段决定是否接受一条建造指令。
type BuildPolicy interface {
	Allow(player entity.Player, h entity.Habitat, b entity.Buildable) bool
}

type BuildPolicyFunc func(player entity.Player, h entity.Habitat, b entity.Buildable) bool

func (f BuildPolicyFunc) Allow(p entity.Player, h entity.Habitat, b entity.Buildable) bool {
	return f(p, h, b)
}

// AcceptAll 接受所有建造指令：造价只用累计产能支付，不存在买不起的情况。
var AcceptAll BuildPolicy = BuildPolicyFunc(func(entity.Player, entity.Habitat, entity.Buildable) bool { return true })
