package entity

import "strconv"

// FinalName 是定稿后的栖息地名称。
type FinalName struct {
	Full         string `json:"full"`
	Abbreviation string `json:"abbreviation"`
}

// HabitatName 是封闭变体：可编辑草稿，或不可再改的定稿。
// 草稿 -> 定稿是单向转换。
type HabitatName struct {
	draft     string
	final     FinalName
	finalized bool
}

func DraftName(s string) HabitatName {
	return HabitatName{draft: s}
}

// Draft 返回草稿内容；已定稿时返回空。
func (n HabitatName) Draft() string {
	if n.finalized {
		return ""
	}
	return n.draft
}

// WithDraft 修改草稿；已定稿时原样返回。
func (n HabitatName) WithDraft(s string) HabitatName {
	if n.finalized {
		return n
	}
	return HabitatName{draft: s}
}

func (n HabitatName) Final() (FinalName, bool) {
	return n.final, n.finalized
}

func (n HabitatName) IsFinal() bool {
	return n.finalized
}

// Finalize 定稿；已定稿时原样返回。
func (n HabitatName) Finalize(f FinalName) HabitatName {
	if n.finalized {
		return n
	}
	return HabitatName{final: f, finalized: true}
}

// Display 返回展示用名称。
func (n HabitatName) Display() string {
	if n.finalized {
		return n.final.Full
	}
	return n.draft
}

// DefaultHabitatName 是新栖息地的草稿名。
func DefaultHabitatName(id UnitID) HabitatName {
	return DraftName("Habitat " + strconv.Itoa(int(id)))
}

// Habitat 是山地上的玩家生产点。
//
// 按值使用：修改方法都返回新值，Buildings 切片写时复制。
type Habitat struct {
	Name      HabitatName
	Player    Player
	ID        UnitID
	Buildings []Building
	Producing *Buildable
	Produced  int
}

// NewHabitat 由殖民潜艇建立栖息地，继承其 id 与归属。
func NewHabitat(founder Unit) Habitat {
	return Habitat{
		Name:   DefaultHabitatName(founder.ID),
		Player: founder.Player,
		ID:     founder.ID,
	}
}

func (h Habitat) HasBuilding(b Building) bool {
	for _, have := range h.Buildings {
		if have == b {
			return true
		}
	}
	return false
}

// CountBuilding 返回某类建筑数量。
func (h Habitat) CountBuilding(b Building) int {
	n := 0
	for _, have := range h.Buildings {
		if have == b {
			n++
		}
	}
	return n
}

// WithBuilding 追加建筑，返回新值。
func (h Habitat) WithBuilding(b Building) Habitat {
	next := make([]Building, len(h.Buildings), len(h.Buildings)+1)
	copy(next, h.Buildings)
	h.Buildings = append(next, b)
	return h
}

// WithProducing 设置生产项；与当前项相同则保留进度，否则清零。
func (h Habitat) WithProducing(b Buildable) Habitat {
	if h.Producing != nil && *h.Producing == b {
		return h
	}
	v := b
	h.Producing = &v
	h.Produced = 0
	return h
}

// ClearProducing 清空生产队列与进度。
func (h Habitat) ClearProducing() Habitat {
	h.Producing = nil
	h.Produced = 0
	return h
}

// Output 返回每回合产能：基础产能 + 建筑加成。
func (h Habitat) Output(base int) int {
	out := base
	for _, b := range h.Buildings {
		out += b.Stats().Output
	}
	return out
}

// Defence 返回守军的额外战斗力。
func (h Habitat) Defence() int {
	d := 0
	for _, b := range h.Buildings {
		d += b.Stats().Defence
	}
	return d
}

// Clone 深拷贝。
func (h Habitat) Clone() Habitat {
	if h.Buildings != nil {
		bs := make([]Building, len(h.Buildings))
		copy(bs, h.Buildings)
		h.Buildings = bs
	}
	if h.Producing != nil {
		p := *h.Producing
		h.Producing = &p
	}
	return h
}
