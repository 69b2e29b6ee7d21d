package entity

// UnitID 唯一、单调分配、永不复用；栖息地继承建立它的殖民潜艇的 id。
type UnitID int

// Unit 是玩家的一艘潜艇。
type Unit struct {
	ID     UnitID    `json:"id"`
	Player Player    `json:"player"`
	Class  Submarine `json:"class"`
}

// Strength 返回战斗力。
func (u Unit) Strength() int {
	return u.Class.Stats().Strength
}

// CanFound 表示能否建立栖息地。
func (u Unit) CanFound() bool {
	return u.Class.Stats().Colony
}
