// Package protocol 是客户端之间经中继转发的消息格式。
//
// 中继只读取 topic，payload 对中继不透明。字典字段一律编码为 [key, value] 二元数组。
package protocol

import "DeepHabitat/internal/game/command"

const (
	TypeJoin      = "join"
	TypeStartGame = "start-game"
	TypeTurn      = "turn"
)

// Message 是封闭变体：Join、StartGame、Turn。
type Message interface {
	Type() string
	isMessage()
}

// Join 宣告自己进入 topic。
type Join struct{}

// StartGame 由主机发出，携带双方共用的随机种子。
type StartGame struct {
	Seed int64
}

// Turn 携带发送方一回合的指令批次；回合号由到达顺序决定，不在线上传输。
type Turn struct {
	Commands command.Commands
}

func (Join) Type() string { return TypeJoin }
func (StartGame) Type() string { return TypeStartGame }
func (Turn) Type() string { return TypeTurn }

func (Join) isMessage() {}
func (StartGame) isMessage() {}
func (Turn) isMessage() {}

// Envelope 是线上的一帧。
type Envelope struct {
	Topic   string
	Payload Message
}

// Equal 按内容比较两帧。
func (e Envelope) Equal(o Envelope) bool {
	if e.Topic != o.Topic {
		return false
	}
	switch m := e.Payload.(type) {
	case Join:
		_, ok := o.Payload.(Join)
		return ok
	case StartGame:
		om, ok := o.Payload.(StartGame)
		return ok && m.Seed == om.Seed
	case Turn:
		om, ok := o.Payload.(Turn)
		return ok && m.Commands.Equal(om.Commands)
	default:
		return e.Payload == nil && o.Payload == nil
	}
}
