package archive

import (
	"fmt"

	"DeepHabitat/internal/game/command"
	"DeepHabitat/internal/game/entity"
	"DeepHabitat/internal/game/rules"
	"DeepHabitat/internal/protocol"
	"DeepHabitat/modules/kit/errx"
)

// NewTurnLog 把一回合的双方指令与结算摘要编码成归档行。
func NewTurnLog(turn int, p1, p2 command.Commands, digest string) (TurnLog, error) {
	raw1, err := protocol.MarshalCommands(p1)
	if err != nil {
		return TurnLog{}, err
	}
	raw2, err := protocol.MarshalCommands(p2)
	if err != nil {
		return TurnLog{}, err
	}
	return TurnLog{Turn: turn, Player1: string(raw1), Player2: string(raw2), Digest: digest}, nil
}

// Replay 从种子开始重放归档，逐回合比对摘要；任何一回合不一致都返回 INVARIANT_VIOLATION。
func Replay(rec MatchRecord, engine *rules.Engine) (entity.Game, rules.Outcome, error) {
	if engine == nil {
		engine = rules.NewEngine()
	}
	g := entity.Init(rec.Seed)
	out := rules.Ongoing()
	for _, t := range rec.Turns {
		if t.Turn != g.Turn {
			return g, out, desync("turn_gap", fmt.Sprintf("expected turn %d, log has %d", g.Turn, t.Turn))
		}
		p1, err := protocol.UnmarshalCommands([]byte(t.Player1))
		if err != nil {
			return g, out, err
		}
		p2, err := protocol.UnmarshalCommands([]byte(t.Player2))
		if err != nil {
			return g, out, err
		}
		res := engine.Resolve(g, p1, p2)
		if t.Digest != "" && res.Game.Digest() != t.Digest {
			return g, out, desync("digest_mismatch", fmt.Sprintf("turn %d digest differs", t.Turn))
		}
		g, out = res.Game, res.Outcome
	}
	if rec.FinalDigest != "" && g.Digest() != rec.FinalDigest {
		return g, out, desync("final_digest_mismatch", "final digest differs")
	}
	return g, out, nil
}

func desync(reason, detail string) error {
	return errx.ErrInvariant.WithData("reason", reason).WithData("detail", detail)
}
