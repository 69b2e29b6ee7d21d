package entity

import (
	"sort"

	grid "DeepHabitat/internal/game/hex"
)

// Located 是带坐标的单位。
type Located struct {
	Unit  Unit
	Coord grid.Coord
}

// PlacedHabitat 是带坐标的栖息地。
type PlacedHabitat struct {
	Habitat Habitat
	Coord   grid.Coord
}

// HabitatsForPlayer 按网格顺序返回玩家拥有的栖息地。
func HabitatsForPlayer(p Player, g Game) []PlacedHabitat {
	return grid.Foldl(g.Grid, func(c grid.Coord, t Tile, acc []PlacedHabitat) []PlacedHabitat {
		if h, ok := t.Fixed.Habitat(); ok && h.Player == p {
			acc = append(acc, PlacedHabitat{Habitat: h, Coord: c})
		}
		return acc
	}, nil)
}

// AllHabitats 按网格顺序返回全部栖息地。
func AllHabitats(g grid.Grid[Tile]) []PlacedHabitat {
	return grid.Foldl(g, func(c grid.Coord, t Tile, acc []PlacedHabitat) []PlacedHabitat {
		if h, ok := t.Fixed.Habitat(); ok {
			acc = append(acc, PlacedHabitat{Habitat: h, Coord: c})
		}
		return acc
	}, nil)
}

// FindUnit 查找单位所在坐标。
func FindUnit(id UnitID, g grid.Grid[Tile]) (Located, bool) {
	var found Located
	ok := false
	g.Each(func(c grid.Coord, t Tile) bool {
		if u, has := t.Units[id]; has {
			found, ok = Located{Unit: u, Coord: c}, true
			return false
		}
		return true
	})
	return found, ok
}

// UnitDict 返回全部单位按 id 索引。
func UnitDict(g grid.Grid[Tile]) map[UnitID]Located {
	out := make(map[UnitID]Located)
	g.Each(func(c grid.Coord, t Tile) bool {
		for id, u := range t.Units {
			out[id] = Located{Unit: u, Coord: c}
		}
		return true
	})
	return out
}

// FriendlyUnitDict 只返回玩家自己的单位。
func FriendlyUnitDict(p Player, g grid.Grid[Tile]) map[UnitID]Located {
	out := UnitDict(g)
	for id, l := range out {
		if l.Unit.Player != p {
			delete(out, id)
		}
	}
	return out
}

// SortedUnitIDs 返回升序 id。
func SortedUnitIDs(units map[UnitID]Located) []UnitID {
	ids := make([]UnitID, 0, len(units))
	for id := range units {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// HabitatAt 返回坐标上的栖息地。
func HabitatAt(c grid.Coord, g grid.Grid[Tile]) (Habitat, bool) {
	t, ok := g.Get(c)
	if !ok {
		return Habitat{}, false
	}
	return t.Fixed.Habitat()
}

// UpdateHabitat 对坐标上的栖息地应用 fn；没有栖息地时原样返回。
func UpdateHabitat(c grid.Coord, fn func(Habitat) Habitat, g grid.Grid[Tile]) grid.Grid[Tile] {
	t, ok := g.Get(c)
	if !ok {
		return g
	}
	h, ok := t.Fixed.Habitat()
	if !ok {
		return g
	}
	return g.Set(c, t.WithHabitat(fn(h)))
}

// PlaceUnit 把单位放到坐标上。
func PlaceUnit(c grid.Coord, u Unit, g grid.Grid[Tile]) grid.Grid[Tile] {
	return g.Update(c, func(t Tile) Tile { return t.WithUnit(u) })
}

// RemoveUnit 从坐标上移除单位。
func RemoveUnit(c grid.Coord, id UnitID, g grid.Grid[Tile]) grid.Grid[Tile] {
	return g.Update(c, func(t Tile) Tile { return t.WithoutUnit(id) })
}

// MoveUnit 把单位从 from 移到 to；任一坐标不在网格内或单位不在 from 时原样返回。
func MoveUnit(id UnitID, from, to grid.Coord, g grid.Grid[Tile]) grid.Grid[Tile] {
	src, ok := g.Get(from)
	if !ok || !g.Contains(to) {
		return g
	}
	u, ok := src.Units[id]
	if !ok {
		return g
	}
	return PlaceUnit(to, u, RemoveUnit(from, id, g))
}

// CountColonySubs 返回玩家的殖民潜艇数量。
func CountColonySubs(p Player, g grid.Grid[Tile]) int {
	n := 0
	for _, l := range FriendlyUnitDict(p, g) {
		if l.Unit.CanFound() {
			n++
		}
	}
	return n
}
