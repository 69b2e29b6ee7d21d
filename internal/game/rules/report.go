package rules

import (
	"DeepHabitat/internal/game/entity"
	grid "DeepHabitat/internal/game/hex"
)

// RejectKind 标识被作废指令的种类。
type RejectKind string

const (
	RejectMove   RejectKind = "move"
	RejectBuild  RejectKind = "build"
	RejectNaming RejectKind = "naming"
)

// RejectReason 是作废原因码，实现 errx.Reason。
type RejectReason string

const (
	ReasonUnitMissing      RejectReason = "unit_missing"
	ReasonNotOwner         RejectReason = "not_owner"
	ReasonOutOfGrid        RejectReason = "out_of_grid"
	ReasonNotAdjacent      RejectReason = "not_adjacent"
	ReasonNoHabitat        RejectReason = "no_habitat"
	ReasonInvalidBuildable RejectReason = "invalid_buildable"
	ReasonAlreadyBuilt     RejectReason = "already_built"
	ReasonPolicy           RejectReason = "policy_rejected"
	ReasonAlreadyFinal     RejectReason = "already_final"
	ReasonEmptyName        RejectReason = "empty_name"
	ReasonOwnerChanged     RejectReason = "owner_changed"
)

func (r RejectReason) ReasonCode() string { return string(r) }

// Rejection 记录一条被静默作废的指令，Key 是指令在批次里的键。
type Rejection struct {
	Player entity.Player
	Kind   RejectKind
	Key    string
	Reason RejectReason
}

// Battle 记录一次遭遇战。
type Battle struct {
	Coord     grid.Coord
	Strength1 int
	Strength2 int
	Winner    entity.Player
	Losses    []entity.UnitID
}

// Completion 记录一次生产完成。
type Completion struct {
	Habitat   entity.UnitID
	Coord     grid.Coord
	Buildable entity.Buildable
	// Spawned 只在潜艇完成时非零。
	Spawned entity.UnitID
}

// Report 是一回合结算的过程记录，只用于日志与展示，不参与状态。
type Report struct {
	Rejected  []Rejection
	Battles   []Battle
	Captured  []entity.UnitID
	Founded   []entity.UnitID
	Completed []Completion
	Named     []entity.UnitID
}
