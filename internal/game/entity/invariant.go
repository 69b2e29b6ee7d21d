package entity

import (
	"fmt"

	grid "DeepHabitat/internal/game/hex"
	"DeepHabitat/modules/kit/errx"
)

// CheckInvariants 校验快照的结构不变量，返回第一个违反项。
func CheckInvariants(g Game) error {
	if g.Turn < 1 {
		return violation("turn", fmt.Sprintf("turn %d < 1", g.Turn))
	}
	seen := make(map[UnitID]grid.Coord)
	var err error
	g.Grid.Each(func(c grid.Coord, t Tile) bool {
		for key, u := range t.Units {
			if key != u.ID {
				err = violation("unit_key", fmt.Sprintf("tile %s key %d holds unit %d", c, key, u.ID))
				return false
			}
			if !u.Player.Valid() {
				err = violation("unit_player", fmt.Sprintf("unit %d has invalid player", u.ID))
				return false
			}
			if at, dup := seen[u.ID]; dup {
				err = violation("unit_unique", fmt.Sprintf("unit %d at %s and %s", u.ID, at, c))
				return false
			}
			if u.ID >= g.NextUnitID {
				err = violation("unit_alloc", fmt.Sprintf("unit %d >= next id %d", u.ID, g.NextUnitID))
				return false
			}
			seen[u.ID] = c
		}
		h, ok := t.Fixed.Habitat()
		if !ok {
			return true
		}
		if at, dup := seen[h.ID]; dup {
			err = violation("habitat_unique", fmt.Sprintf("habitat id %d collides with unit at %s", h.ID, at))
			return false
		}
		seen[h.ID] = c
		if h.Producing != nil {
			if !h.Producing.Valid() {
				err = violation("habitat_producing", fmt.Sprintf("habitat %d producing invalid buildable", h.ID))
				return false
			}
			if h.Produced < 0 || h.Produced >= h.Producing.Cost() {
				err = violation("habitat_progress", fmt.Sprintf("habitat %d produced %d of %d", h.ID, h.Produced, h.Producing.Cost()))
				return false
			}
		} else if h.Produced != 0 {
			err = violation("habitat_progress", fmt.Sprintf("idle habitat %d has progress %d", h.ID, h.Produced))
			return false
		}
		return true
	})
	return err
}

func violation(reason, msg string) error {
	return errx.ErrInvariant.WithData("reason", reason).WithData("detail", msg)
}
