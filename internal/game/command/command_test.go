package command

import (
	"testing"

	"DeepHabitat/internal/game/entity"
	grid "DeepHabitat/internal/game/hex"
)

func TestCommands_追加不修改原批次(t *testing.T) {
	base := Empty()
	next := base.Move(1, grid.Coord{X: 1, Y: 0}).Build(grid.Coord{}, entity.BuildSubmarine(entity.Scout))
	if !base.IsEmpty() {
		t.Fatalf("原批次不应被修改")
	}
	if len(next.Moves) != 1 || len(next.BuildOrders) != 1 {
		t.Fatalf("期望一条移动一条建造, got=%+v", next)
	}
}

func TestCommands_有序遍历与比较(t *testing.T) {
	c := Empty().Move(5, grid.Coord{}).Move(2, grid.Coord{}).Move(9, grid.Coord{})
	ids := c.MoveIDs()
	if len(ids) != 3 || ids[0] != 2 || ids[1] != 5 || ids[2] != 9 {
		t.Fatalf("期望升序 id, got=%v", ids)
	}
	if !c.Equal(c.Clone()) {
		t.Fatalf("克隆应相等")
	}
	if c.Equal(c.Move(2, grid.Coord{X: 1})) {
		t.Fatalf("目标不同不应相等")
	}
	var zero Commands
	if !zero.Clone().Equal(Empty()) {
		t.Fatalf("零值克隆应等于空批次")
	}
}
