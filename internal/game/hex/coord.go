// Package hex 提供轴向坐标的六边形网格容器，只负责寻址与邻接，不含任何对局语义。
//
// 坐标 (X, Y) 是轴向坐标，隐含的第三个立方坐标为 -X-Y。
package hex

import "fmt"

type Coord struct {
	X int
	Y int
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Add 返回坐标平移后的结果。
func (c Coord) Add(d Coord) Coord {
	return Coord{X: c.X + d.X, Y: c.Y + d.Y}
}

// Z 返回隐含的第三个立方坐标。
func (c Coord) Z() int {
	return -c.X - c.Y
}

// Less 定义网格的稳定遍历顺序：先 X 升序，再 Y 升序。
func (c Coord) Less(o Coord) bool {
	if c.X != o.X {
		return c.X < o.X
	}
	return c.Y < o.Y
}

// Directions 是六个相邻方向，顺序固定。
var Directions = [6]Coord{
	{X: 1, Y: 0},
	{X: 1, Y: -1},
	{X: 0, Y: -1},
	{X: -1, Y: 0},
	{X: -1, Y: 1},
	{X: 0, Y: 1},
}

// Neighbors 返回六个相邻坐标（不检查是否在网格内）。
func Neighbors(c Coord) [6]Coord {
	var out [6]Coord
	for i, d := range Directions {
		out[i] = c.Add(d)
	}
	return out
}

// Distance 返回两点之间的六边形步数。
func Distance(a, b Coord) int {
	return Length(Coord{X: a.X - b.X, Y: a.Y - b.Y})
}

// Length 返回坐标到原点的步数。
func Length(c Coord) int {
	return max(abs(c.X), abs(c.Y), abs(c.Z()))
}

// Adjacent 表示两点恰好相邻。
func Adjacent(a, b Coord) bool {
	return Distance(a, b) == 1
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
