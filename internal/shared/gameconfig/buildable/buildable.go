package buildable

import (
	_ "embed"
	"fmt"

	"DeepHabitat/internal/shared/config"
)

// 静态表随二进制一起编译，保证对局双方使用完全一致的造价与属性。
//
//go:embed buildable.json
var rawTable []byte

// Stats 是一行可建造项属性。
type Stats struct {
	Name     string `mapstructure:"name"`
	Cost     int    `mapstructure:"cost"`
	Strength int    `mapstructure:"strength"` // 潜艇战斗力
	Colony   bool   `mapstructure:"colony"`   // 能否建立栖息地
	Output   int    `mapstructure:"output"`   // 建筑每回合额外产能
	Defence  int    `mapstructure:"defence"`  // 建筑给守军的额外战斗力
}

type table struct {
	Title      string  `mapstructure:"title"`
	BaseOutput int     `mapstructure:"base_output"`
	Submarines []Stats `mapstructure:"submarines"`
	Buildings  []Stats `mapstructure:"buildings"`

	submarineByName map[string]Stats
	buildingByName  map[string]Stats
}

// Conf 在包初始化时从内嵌 JSON 加载，读多写零。
var Conf = mustLoad(rawTable)

func mustLoad(raw []byte) *table {
	t := &table{}
	if err := config.LoadBytes(raw, "json", t); err != nil {
		panic(fmt.Errorf("load buildable table failed: %w", err))
	}
	if err := t.index(); err != nil {
		panic(err)
	}
	return t
}

func (t *table) index() error {
	t.submarineByName = make(map[string]Stats, len(t.Submarines))
	t.buildingByName = make(map[string]Stats, len(t.Buildings))
	for _, s := range t.Submarines {
		if err := check(s, t.submarineByName); err != nil {
			return err
		}
		t.submarineByName[s.Name] = s
	}
	for _, s := range t.Buildings {
		if err := check(s, t.buildingByName); err != nil {
			return err
		}
		t.buildingByName[s.Name] = s
	}
	if t.BaseOutput <= 0 {
		return fmt.Errorf("buildable table: base_output must be positive, got %d", t.BaseOutput)
	}
	return nil
}

func check(s Stats, seen map[string]Stats) error {
	if s.Name == "" {
		return fmt.Errorf("buildable table: empty name")
	}
	if s.Cost <= 0 {
		return fmt.Errorf("buildable table: %s cost must be positive, got %d", s.Name, s.Cost)
	}
	if _, dup := seen[s.Name]; dup {
		return fmt.Errorf("buildable table: duplicate name %s", s.Name)
	}
	return nil
}

// Submarine 按名称查潜艇属性。
func (t *table) Submarine(name string) (Stats, bool) {
	s, ok := t.submarineByName[name]
	return s, ok
}

// Building 按名称查建筑属性。
func (t *table) Building(name string) (Stats, bool) {
	s, ok := t.buildingByName[name]
	return s, ok
}
