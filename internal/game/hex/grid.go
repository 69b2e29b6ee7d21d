package hex

import (
	"sort"

	"DeepHabitat/modules/kit/errx"
)

// Grid 是半径固定的稠密六边形网格：半径内每个坐标恰好有一个值。
//
// Grid 按值语义使用：Update/Set 返回新网格，接收者不变。
// 构造之后拓扑（半径、坐标集合）不再变化。
type Grid[T any] struct {
	radius int
	coords []Coord
	cells  map[Coord]T
}

// Override 是 FromList 的单个覆盖项。
type Override[T any] struct {
	Coord Coord
	Tile  T
}

// FromList 构造半径为 radius 的网格，未指定坐标填 defaultTile，再应用 overrides。
// 覆盖坐标超出半径时返回 GRID_OUT_OF_RANGE。
func FromList[T any](radius int, defaultTile T, overrides []Override[T]) (Grid[T], error) {
	if radius < 0 {
		return Grid[T]{}, errx.ErrGridOutOfRange.WithData("radius", radius)
	}
	coords := ring(radius)
	cells := make(map[Coord]T, len(coords))
	for _, c := range coords {
		cells[c] = defaultTile
	}
	for _, o := range overrides {
		if Length(o.Coord) > radius {
			return Grid[T]{}, errx.ErrGridOutOfRange.WithData("coord", o.Coord.String()).WithData("radius", radius)
		}
		cells[o.Coord] = o.Tile
	}
	return Grid[T]{radius: radius, coords: coords, cells: cells}, nil
}

func ring(radius int) []Coord {
	var out []Coord
	for x := -radius; x <= radius; x++ {
		for y := -radius; y <= radius; y++ {
			c := Coord{X: x, Y: y}
			if Length(c) <= radius {
				out = append(out, c)
			}
		}
	}
	// 构造顺序已是 X、Y 升序，这里显式排序保证与 Less 一致。
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

func (g Grid[T]) Radius() int {
	return g.radius
}

// Len 返回格子数量。
func (g Grid[T]) Len() int {
	return len(g.coords)
}

func (g Grid[T]) Contains(c Coord) bool {
	_, ok := g.cells[c]
	return ok
}

func (g Grid[T]) Get(c Coord) (T, bool) {
	v, ok := g.cells[c]
	return v, ok
}

// Coords 返回稳定顺序的坐标列表拷贝。
func (g Grid[T]) Coords() []Coord {
	out := make([]Coord, len(g.coords))
	copy(out, g.coords)
	return out
}

// Update 对坐标 c 的值应用 fn，返回新网格；坐标不存在时原样返回。
func (g Grid[T]) Update(c Coord, fn func(T) T) Grid[T] {
	v, ok := g.cells[c]
	if !ok {
		return g
	}
	next := g.shallowCopy()
	next.cells[c] = fn(v)
	return next
}

// Set 替换坐标 c 的值；坐标不存在时原样返回。
func (g Grid[T]) Set(c Coord, v T) Grid[T] {
	return g.Update(c, func(T) T { return v })
}

// Map 对每个格子应用 fn，返回新网格。
func (g Grid[T]) Map(fn func(Coord, T) T) Grid[T] {
	next := g.shallowCopy()
	for _, c := range g.coords {
		next.cells[c] = fn(c, g.cells[c])
	}
	return next
}

// Each 按稳定顺序遍历；fn 返回 false 时提前结束。
func (g Grid[T]) Each(fn func(Coord, T) bool) {
	for _, c := range g.coords {
		if !fn(c, g.cells[c]) {
			return
		}
	}
}

// Foldr 从稳定顺序的末尾向前折叠。
func Foldr[T, A any](g Grid[T], fn func(Coord, T, A) A, acc A) A {
	for i := len(g.coords) - 1; i >= 0; i-- {
		c := g.coords[i]
		acc = fn(c, g.cells[c], acc)
	}
	return acc
}

// Foldl 从稳定顺序的开头向后折叠。
func Foldl[T, A any](g Grid[T], fn func(Coord, T, A) A, acc A) A {
	for _, c := range g.coords {
		acc = fn(c, g.cells[c], acc)
	}
	return acc
}

// shallowCopy 复制格子映射；坐标切片在拓扑不变的前提下共享。
func (g Grid[T]) shallowCopy() Grid[T] {
	cells := make(map[Coord]T, len(g.cells))
	for k, v := range g.cells {
		cells[k] = v
	}
	return Grid[T]{radius: g.radius, coords: g.coords, cells: cells}
}
