// Package archive 在对局结束后异步保存种子、双方逐回合指令和结果，可用于复盘与失步排查。
package archive

import "time"

// TurnLog 是一回合的输入与结算后摘要；指令为 protocol.MarshalCommands 的紧凑 JSON。
type TurnLog struct {
	Turn    int    `json:"turn"`
	Player1 string `json:"player1"`
	Player2 string `json:"player2"`
	Digest  string `json:"digest"`
}

// MatchRecord 是一局的完整归档。
type MatchRecord struct {
	ID          int64
	Topic       string
	Seed        int64
	Role        string
	Turns       []TurnLog
	Outcome     string
	FinalDigest string
	FinishedAt  time.Time
}

// Clone 深拷贝。
func (r MatchRecord) Clone() MatchRecord {
	if r.Turns != nil {
		turns := make([]TurnLog, len(r.Turns))
		copy(turns, r.Turns)
		r.Turns = turns
	}
	return r
}
