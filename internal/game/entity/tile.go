package entity

import "sort"

type geologyKind uint8

const (
	geologyDepths geologyKind = iota
	geologyMountain
)

// Geology 是封闭变体：深海（不能建栖息地），或山地（最多一个栖息地）。
type Geology struct {
	kind       geologyKind
	habitat    Habitat
	hasHabitat bool
}

func Depths() Geology {
	return Geology{kind: geologyDepths}
}

// Mountain 构造山地；h 为 nil 表示无人占据。
func Mountain(h *Habitat) Geology {
	g := Geology{kind: geologyMountain}
	if h != nil {
		g.habitat = h.Clone()
		g.hasHabitat = true
	}
	return g
}

func (g Geology) IsMountain() bool {
	return g.kind == geologyMountain
}

// Habitat 返回山地上的栖息地拷贝。
func (g Geology) Habitat() (Habitat, bool) {
	if g.kind != geologyMountain || !g.hasHabitat {
		return Habitat{}, false
	}
	return g.habitat, true
}

// Tile 是一个格子：所在单位 + 地质。
// Units 的键永远等于值的 ID；修改方法写时复制。
type Tile struct {
	Units map[UnitID]Unit
	Fixed Geology
}

func NewTile(fixed Geology) Tile {
	return Tile{Units: map[UnitID]Unit{}, Fixed: fixed}
}

// WithUnit 放入单位，返回新格子。
func (t Tile) WithUnit(u Unit) Tile {
	next := t.copyUnits(1)
	next[u.ID] = u
	t.Units = next
	return t
}

// WithoutUnit 移除单位，返回新格子；不存在时原样返回。
func (t Tile) WithoutUnit(id UnitID) Tile {
	if _, ok := t.Units[id]; !ok {
		return t
	}
	next := t.copyUnits(0)
	delete(next, id)
	t.Units = next
	return t
}

// WithHabitat 在山地上设置栖息地；深海原样返回。
func (t Tile) WithHabitat(h Habitat) Tile {
	if !t.Fixed.IsMountain() {
		return t
	}
	t.Fixed = Mountain(&h)
	return t
}

func (t Tile) copyUnits(extra int) map[UnitID]Unit {
	next := make(map[UnitID]Unit, len(t.Units)+extra)
	for k, v := range t.Units {
		next[k] = v
	}
	return next
}

// SortedUnits 按 id 升序返回单位。
func (t Tile) SortedUnits() []Unit {
	out := make([]Unit, 0, len(t.Units))
	for _, u := range t.Units {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Owners 返回格子上有单位的玩家集合。
func (t Tile) Owners() map[Player]bool {
	out := make(map[Player]bool, 2)
	for _, u := range t.Units {
		out[u.Player] = true
	}
	return out
}

// Contested 表示格子上同时有两个玩家的单位。
func (t Tile) Contested() bool {
	return len(t.Owners()) > 1
}

// Clone 深拷贝。
func (t Tile) Clone() Tile {
	t.Units = t.copyUnits(0)
	if h, ok := t.Fixed.Habitat(); ok {
		t.Fixed = Mountain(&h)
	}
	return t
}
