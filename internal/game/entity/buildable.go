package entity

import (
	"fmt"

	"DeepHabitat/internal/shared/gameconfig/buildable"
)

// Submarine 是潜艇型号。
type Submarine uint8

const (
	ColonySub Submarine = iota + 1
	AttackSub
	Scout
)

var submarineNames = map[Submarine]string{
	ColonySub: "ColonySub",
	AttackSub: "AttackSub",
	Scout:     "Scout",
}

func (s Submarine) String() string {
	if n, ok := submarineNames[s]; ok {
		return n
	}
	return fmt.Sprintf("submarine(%d)", uint8(s))
}

// ParseSubmarine 按静态表名称解析型号，未知名称返回 false。
func ParseSubmarine(name string) (Submarine, bool) {
	for s, n := range submarineNames {
		if n == name {
			return s, true
		}
	}
	return 0, false
}

// Stats 返回静态表中的属性；型号合法时一定存在（表与枚举由测试对齐）。
func (s Submarine) Stats() buildable.Stats {
	st, _ := buildable.Conf.Submarine(s.String())
	return st
}

// Building 是栖息地建筑类型。
type Building uint8

const (
	Reactor Building = iota + 1
	Dock
)

var buildingNames = map[Building]string{
	Reactor: "Reactor",
	Dock:    "Dock",
}

func (b Building) String() string {
	if n, ok := buildingNames[b]; ok {
		return n
	}
	return fmt.Sprintf("building(%d)", uint8(b))
}

func ParseBuilding(name string) (Building, bool) {
	for b, n := range buildingNames {
		if n == name {
			return b, true
		}
	}
	return 0, false
}

func (b Building) Stats() buildable.Stats {
	st, _ := buildable.Conf.Building(b.String())
	return st
}

// BuildableKind 区分 Buildable 的两个分支。
type BuildableKind uint8

const (
	KindSubmarine BuildableKind = iota + 1
	KindBuilding
)

// Buildable 是封闭变体：要么是潜艇，要么是建筑。
// 只能通过 BuildSubmarine / BuildBuilding 构造，零值非法。
type Buildable struct {
	kind      BuildableKind
	submarine Submarine
	building  Building
}

func BuildSubmarine(s Submarine) Buildable {
	return Buildable{kind: KindSubmarine, submarine: s}
}

func BuildBuilding(b Building) Buildable {
	return Buildable{kind: KindBuilding, building: b}
}

func (b Buildable) Kind() BuildableKind {
	return b.kind
}

// Submarine 在潜艇分支返回型号。
func (b Buildable) Submarine() (Submarine, bool) {
	return b.submarine, b.kind == KindSubmarine
}

// Building 在建筑分支返回类型。
func (b Buildable) Building() (Building, bool) {
	return b.building, b.kind == KindBuilding
}

func (b Buildable) Valid() bool {
	switch b.kind {
	case KindSubmarine:
		_, ok := submarineNames[b.submarine]
		return ok
	case KindBuilding:
		_, ok := buildingNames[b.building]
		return ok
	default:
		return false
	}
}

// Name 返回静态表名称。
func (b Buildable) Name() string {
	switch b.kind {
	case KindSubmarine:
		return b.submarine.String()
	case KindBuilding:
		return b.building.String()
	default:
		return ""
	}
}

// Cost 返回完成所需的产能点数。
func (b Buildable) Cost() int {
	switch b.kind {
	case KindSubmarine:
		return b.submarine.Stats().Cost
	case KindBuilding:
		return b.building.Stats().Cost
	default:
		return 0
	}
}

func (b Buildable) String() string {
	switch b.kind {
	case KindSubmarine:
		return "submarine:" + b.submarine.String()
	case KindBuilding:
		return "building:" + b.building.String()
	default:
		return "buildable(invalid)"
	}
}
