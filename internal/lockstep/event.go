package lockstep

import (
	"DeepHabitat/internal/archive"
	"DeepHabitat/internal/game/entity"
	"DeepHabitat/internal/game/rules"
)

// Phase 是会话所处阶段。结算在一次调用内完成，不单独停留。
type Phase uint8

const (
	PhaseLobby Phase = iota
	PhaseAwaiting
	PhaseGameOver
)

func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "lobby"
	case PhaseAwaiting:
		return "awaiting_both_commands"
	case PhaseGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// Event 是会话向上层（UI、bot）发布的通知。
type Event interface {
	isEvent()
}

// Started 表示对局开始，Role 是本地玩家。
type Started struct {
	Role entity.Player
	Seed int64
	Game entity.Game
}

// Resolved 表示一回合结算完成。
type Resolved struct {
	Turn    int
	Game    entity.Game
	Outcome rules.Outcome
	Report  rules.Report
	Digest  string
}

// Finished 表示对局结束，Record 已交给归档。
type Finished struct {
	Outcome rules.Outcome
	Record  archive.MatchRecord
}

// Failure 表示会话级故障（如解码失败），会话停留在原阶段。
type Failure struct {
	Err error
}

func (Started) isEvent() {}

func (Resolved) isEvent() {}

func (Finished) isEvent() {}

func (Failure) isEvent() {}

// Snapshot 是会话对外可见的状态拷贝。
type Snapshot struct {
	Phase   Phase
	Role    entity.Player
	Game    entity.Game
	Outcome rules.Outcome
	// Submitted 表示本地已提交当前回合指令。
	Submitted bool
	// PeerBuffered 是已收到但尚未结算的对手回合数。
	PeerBuffered int
}
