// Package command 定义一个玩家一回合的指令批次。
//
// 指令只表达意图，合法性在结算时按回合开始的快照校验，非法指令静默作废。
package command

import (
	"sort"

	"DeepHabitat/internal/game/entity"
	grid "DeepHabitat/internal/game/hex"
)

// Commands 是一回合的指令批次；缺省表示不行动。
type Commands struct {
	Moves          map[entity.UnitID]grid.Coord
	BuildOrders    map[grid.Coord]entity.Buildable
	HabitatNamings map[entity.UnitID]entity.FinalName
}

// Empty 返回不含任何指令的批次。
func Empty() Commands {
	return Commands{
		Moves:          map[entity.UnitID]grid.Coord{},
		BuildOrders:    map[grid.Coord]entity.Buildable{},
		HabitatNamings: map[entity.UnitID]entity.FinalName{},
	}
}

// Move 追加一条移动指令；同一单位后写覆盖先写。
func (c Commands) Move(id entity.UnitID, to grid.Coord) Commands {
	next := c.Clone()
	next.Moves[id] = to
	return next
}

// Build 追加一条建造指令。
func (c Commands) Build(at grid.Coord, b entity.Buildable) Commands {
	next := c.Clone()
	next.BuildOrders[at] = b
	return next
}

// Name 追加一条定名指令。
func (c Commands) Name(habitat entity.UnitID, name entity.FinalName) Commands {
	next := c.Clone()
	next.HabitatNamings[habitat] = name
	return next
}

func (c Commands) IsEmpty() bool {
	return len(c.Moves) == 0 && len(c.BuildOrders) == 0 && len(c.HabitatNamings) == 0
}

// Clone 深拷贝；nil map 会被替换成空 map。
func (c Commands) Clone() Commands {
	out := Empty()
	for k, v := range c.Moves {
		out.Moves[k] = v
	}
	for k, v := range c.BuildOrders {
		out.BuildOrders[k] = v
	}
	for k, v := range c.HabitatNamings {
		out.HabitatNamings[k] = v
	}
	return out
}

// Equal 按内容比较。
func (c Commands) Equal(o Commands) bool {
	if len(c.Moves) != len(o.Moves) || len(c.BuildOrders) != len(o.BuildOrders) || len(c.HabitatNamings) != len(o.HabitatNamings) {
		return false
	}
	for k, v := range c.Moves {
		if ov, ok := o.Moves[k]; !ok || ov != v {
			return false
		}
	}
	for k, v := range c.BuildOrders {
		if ov, ok := o.BuildOrders[k]; !ok || ov != v {
			return false
		}
	}
	for k, v := range c.HabitatNamings {
		if ov, ok := o.HabitatNamings[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// MoveIDs 返回升序的移动单位 id。
func (c Commands) MoveIDs() []entity.UnitID {
	ids := make([]entity.UnitID, 0, len(c.Moves))
	for id := range c.Moves {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// BuildCoords 返回按网格顺序排列的建造坐标。
func (c Commands) BuildCoords() []grid.Coord {
	cs := make([]grid.Coord, 0, len(c.BuildOrders))
	for at := range c.BuildOrders {
		cs = append(cs, at)
	}
	sort.Slice(cs, func(i, j int) bool { return cs[i].Less(cs[j]) })
	return cs
}

// NamingIDs 返回升序的定名栖息地 id。
func (c Commands) NamingIDs() []entity.UnitID {
	ids := make([]entity.UnitID, 0, len(c.HabitatNamings))
	for id := range c.HabitatNamings {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
