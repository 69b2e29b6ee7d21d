package entity

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	grid "DeepHabitat/internal/game/hex"
	"DeepHabitat/internal/game/rng"
)

// GridRadius 是固定地图半径。
const GridRadius = 6

// 开局双方殖民潜艇位置，关于原点镜像。
var (
	Player1Start = grid.Coord{X: -4, Y: -2}
	Player2Start = grid.Coord{X: 4, Y: 2}
)

// Mountains 是开局固定的山地坐标，关于原点对称。
var Mountains = []grid.Coord{
	{X: 0, Y: 0},
	{X: -3, Y: -1},
	{X: 3, Y: 1},
	{X: -2, Y: 3},
	{X: 2, Y: -3},
	{X: -5, Y: 1},
	{X: 5, Y: -1},
}

// Game 是一回合的完整快照，每回合整体替换。
type Game struct {
	Grid       grid.Grid[Tile]
	Turn       int
	NextUnitID UnitID
	RandomSeed rng.Seed
}

// Init 构造开局状态。
func Init(seed int64) Game {
	overrides := make([]grid.Override[Tile], 0, len(Mountains)+2)
	for _, c := range Mountains {
		overrides = append(overrides, grid.Override[Tile]{Coord: c, Tile: NewTile(Mountain(nil))})
	}
	overrides = append(overrides,
		grid.Override[Tile]{Coord: Player1Start, Tile: NewTile(Depths()).WithUnit(Unit{ID: 1, Player: Player1, Class: ColonySub})},
		grid.Override[Tile]{Coord: Player2Start, Tile: NewTile(Depths()).WithUnit(Unit{ID: 2, Player: Player2, Class: ColonySub})},
	)
	g, err := grid.FromList(GridRadius, NewTile(Depths()), overrides)
	if err != nil {
		// 开局坐标是常量，越界只可能是代码错误
		panic(err)
	}
	// 默认格子共享同一个空 map，这里统一拆开
	g = g.Map(func(_ grid.Coord, t Tile) Tile { return t.Clone() })
	return Game{
		Grid:       g,
		Turn:       1,
		NextUnitID: 3,
		RandomSeed: rng.Initial(seed),
	}
}

// Clone 深拷贝，调用方可以随意修改返回值。
func (g Game) Clone() Game {
	g.Grid = g.Grid.Map(func(_ grid.Coord, t Tile) Tile { return t.Clone() })
	return g
}

// AllocUnitID 分配新单位 id，返回新快照。
func (g Game) AllocUnitID() (UnitID, Game) {
	id := g.NextUnitID
	g.NextUnitID++
	return id, g
}

type snapshotUnit struct {
	ID     UnitID `json:"id"`
	Player Player `json:"player"`
	Class  string `json:"class"`
}

type snapshotHabitat struct {
	ID        UnitID     `json:"id"`
	Player    Player     `json:"player"`
	Draft     string     `json:"draft,omitempty"`
	Final     *FinalName `json:"final,omitempty"`
	Buildings []string   `json:"buildings"`
	Producing string     `json:"producing,omitempty"`
	Produced  int        `json:"produced"`
}

type snapshotTile struct {
	X        int              `json:"x"`
	Y        int              `json:"y"`
	Mountain bool             `json:"mountain"`
	Habitat  *snapshotHabitat `json:"habitat,omitempty"`
	Units    []snapshotUnit   `json:"units"`
}

type snapshot struct {
	Turn       int            `json:"turn"`
	NextUnitID UnitID         `json:"next_unit_id"`
	Seed       uint64         `json:"seed"`
	Tiles      []snapshotTile `json:"tiles"`
}

// Canonical 返回稳定的 JSON 编码：格子按网格顺序、单位按 id 升序。
func (g Game) Canonical() []byte {
	s := snapshot{Turn: g.Turn, NextUnitID: g.NextUnitID, Seed: g.RandomSeed.State}
	g.Grid.Each(func(c grid.Coord, t Tile) bool {
		st := snapshotTile{X: c.X, Y: c.Y, Mountain: t.Fixed.IsMountain(), Units: []snapshotUnit{}}
		for _, u := range t.SortedUnits() {
			st.Units = append(st.Units, snapshotUnit{ID: u.ID, Player: u.Player, Class: u.Class.String()})
		}
		if h, ok := t.Fixed.Habitat(); ok {
			sh := &snapshotHabitat{ID: h.ID, Player: h.Player, Draft: h.Name.Draft(), Produced: h.Produced, Buildings: []string{}}
			if f, final := h.Name.Final(); final {
				sh.Final = &f
			}
			for _, b := range h.Buildings {
				sh.Buildings = append(sh.Buildings, b.String())
			}
			if h.Producing != nil {
				sh.Producing = h.Producing.String()
			}
			st.Habitat = sh
		}
		s.Tiles = append(s.Tiles, st)
		return true
	})
	raw, err := json.Marshal(s)
	if err != nil {
		// 快照只含基础类型，玩家值非法时才会失败
		panic(err)
	}
	return raw
}

// Digest 是 Canonical 的 SHA-256，用于双端比对是否失步。
func (g Game) Digest() string {
	sum := sha256.Sum256(g.Canonical())
	return hex.EncodeToString(sum[:])
}
