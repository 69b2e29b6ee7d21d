package entity

import "fmt"

// Player 是封闭枚举：一局只有两个玩家。
type Player uint8

const (
	Player1 Player = iota + 1
	Player2
)

// Players 是固定的玩家遍历顺序。
var Players = [2]Player{Player1, Player2}

func (p Player) Valid() bool {
	return p == Player1 || p == Player2
}

// Opponent 返回对手；非法值返回 0。
func (p Player) Opponent() Player {
	switch p {
	case Player1:
		return Player2
	case Player2:
		return Player1
	default:
		return 0
	}
}

func (p Player) String() string {
	switch p {
	case Player1:
		return "player1"
	case Player2:
		return "player2"
	default:
		return fmt.Sprintf("player(%d)", uint8(p))
	}
}

func (p Player) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid player %d", uint8(p))
	}
	return []byte(p.String()), nil
}

func (p *Player) UnmarshalText(b []byte) error {
	switch string(b) {
	case "player1":
		*p = Player1
	case "player2":
		*p = Player2
	default:
		return fmt.Errorf("unknown player %q", string(b))
	}
	return nil
}
