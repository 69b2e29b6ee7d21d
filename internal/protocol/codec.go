package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"DeepHabitat/internal/game/command"
	"DeepHabitat/internal/game/entity"
	grid "DeepHabitat/internal/game/hex"
	"DeepHabitat/modules/kit/errx"
)

// decodeReason 是解码失败的原因码。
type decodeReason string

const (
	reasonSyntax        decodeReason = "syntax"
	reasonUnknownType   decodeReason = "unknown_type"
	reasonUnknownName   decodeReason = "unknown_name"
	reasonMissingField  decodeReason = "missing_field"
	reasonDuplicateKey  decodeReason = "duplicate_key"
	reasonBadPair       decodeReason = "bad_pair"
	reasonBadCoord      decodeReason = "bad_coord"
	reasonUnexpectedVal decodeReason = "unexpected_value"
)

func (r decodeReason) ReasonCode() string { return string(r) }

func decodeErr(reason decodeReason, format string, args ...any) error {
	return errx.ErrProtoDecode.WithReason(reason).WithCause(fmt.Errorf(format, args...))
}

const (
	tagSubmarine = "submarine"
	tagBuilding  = "building"
)

type wireEnvelope struct {
	Topic   *string         `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}

type wirePayload struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
}

type wireStart struct {
	Seed *int64 `json:"seed"`
}

type wireTurn struct {
	Moves          *[]json.RawMessage `json:"moves"`
	BuildOrders    *[]json.RawMessage `json:"build_orders"`
	HabitatNamings *[]json.RawMessage `json:"habitat_namings"`
}

type wireBuildable struct {
	Type    string `json:"type"`
	Payload string `json:"payload"`
}

type wireName struct {
	Full         *string `json:"full"`
	Abbreviation *string `json:"abbreviation"`
}

// EncodeNetworkMessage 编码一帧，外层两空格缩进；字典按键排序输出，同一消息编码结果稳定。
func EncodeNetworkMessage(env Envelope) ([]byte, error) {
	payload, err := encodePayload(env.Payload)
	if err != nil {
		return nil, err
	}
	out := struct {
		Topic   string `json:"topic"`
		Payload any    `json:"payload"`
	}{Topic: env.Topic, Payload: payload}
	return json.MarshalIndent(out, "", "  ")
}

func encodePayload(m Message) (any, error) {
	switch v := m.(type) {
	case Join:
		return struct {
			Type string `json:"type"`
		}{Type: TypeJoin}, nil
	case StartGame:
		return struct {
			Type  string `json:"type"`
			Value any    `json:"value"`
		}{Type: TypeStartGame, Value: struct {
			Seed int64 `json:"seed"`
		}{Seed: v.Seed}}, nil
	case Turn:
		value, err := encodeCommands(v.Commands)
		if err != nil {
			return nil, err
		}
		return struct {
			Type  string `json:"type"`
			Value any    `json:"value"`
		}{Type: TypeTurn, Value: value}, nil
	default:
		return nil, errx.ErrReqParamERR.WithCause(fmt.Errorf("cannot encode message %T", m))
	}
}

func encodeCoord(c grid.Coord) [2]int {
	return [2]int{c.X, c.Y}
}

func encodeCommands(c command.Commands) (any, error) {
	moves := make([][2]any, 0, len(c.Moves))
	for _, id := range c.MoveIDs() {
		moves = append(moves, [2]any{int(id), encodeCoord(c.Moves[id])})
	}
	builds := make([][2]any, 0, len(c.BuildOrders))
	for _, at := range c.BuildCoords() {
		tag, err := encodeBuildable(c.BuildOrders[at])
		if err != nil {
			return nil, err
		}
		builds = append(builds, [2]any{encodeCoord(at), tag})
	}
	namings := make([][2]any, 0, len(c.HabitatNamings))
	for _, id := range c.NamingIDs() {
		n := c.HabitatNamings[id]
		namings = append(namings, [2]any{int(id), struct {
			Full         string `json:"full"`
			Abbreviation string `json:"abbreviation"`
		}{Full: n.Full, Abbreviation: n.Abbreviation}})
	}
	return struct {
		Moves          [][2]any `json:"moves"`
		BuildOrders    [][2]any `json:"build_orders"`
		HabitatNamings [][2]any `json:"habitat_namings"`
	}{Moves: moves, BuildOrders: builds, HabitatNamings: namings}, nil
}

func encodeBuildable(b entity.Buildable) (wireBuildable, error) {
	switch b.Kind() {
	case entity.KindSubmarine:
		return wireBuildable{Type: tagSubmarine, Payload: b.Name()}, nil
	case entity.KindBuilding:
		return wireBuildable{Type: tagBuilding, Payload: b.Name()}, nil
	default:
		return wireBuildable{}, errx.ErrReqParamERR.WithCause(fmt.Errorf("cannot encode %s", b))
	}
}

// DecodeNetworkMessage 严格解码一帧：任何层级的未知判别字段、未知名称、多余字段、重复键都让整帧失败。
func DecodeNetworkMessage(raw []byte) (Envelope, error) {
	var env wireEnvelope
	if err := strictUnmarshal(raw, &env); err != nil {
		return Envelope{}, err
	}
	if env.Topic == nil {
		return Envelope{}, decodeErr(reasonMissingField, "missing topic")
	}
	if env.Payload == nil {
		return Envelope{}, decodeErr(reasonMissingField, "missing payload")
	}
	msg, err := decodePayload(env.Payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Topic: *env.Topic, Payload: msg}, nil
}

// PeekTopic 只读取 topic，中继用它路由。
func PeekTopic(raw []byte) (string, error) {
	var head struct {
		Topic *string `json:"topic"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return "", decodeErr(reasonSyntax, "%v", err)
	}
	if head.Topic == nil || *head.Topic == "" {
		return "", decodeErr(reasonMissingField, "missing topic")
	}
	return *head.Topic, nil
}

func decodePayload(raw json.RawMessage) (Message, error) {
	var p wirePayload
	if err := strictUnmarshal(raw, &p); err != nil {
		return nil, err
	}
	switch p.Type {
	case TypeJoin:
		if !isAbsent(p.Value) {
			return nil, decodeErr(reasonUnexpectedVal, "join carries no value")
		}
		return Join{}, nil
	case TypeStartGame:
		if isAbsent(p.Value) {
			return nil, decodeErr(reasonMissingField, "start-game without value")
		}
		var v wireStart
		if err := strictUnmarshal(p.Value, &v); err != nil {
			return nil, err
		}
		if v.Seed == nil {
			return nil, decodeErr(reasonMissingField, "start-game without seed")
		}
		return StartGame{Seed: *v.Seed}, nil
	case TypeTurn:
		if isAbsent(p.Value) {
			return nil, decodeErr(reasonMissingField, "turn without value")
		}
		cmds, err := decodeCommands(p.Value)
		if err != nil {
			return nil, err
		}
		return Turn{Commands: cmds}, nil
	default:
		return nil, decodeErr(reasonUnknownType, "unknown payload type %q", p.Type)
	}
}

func decodeCommands(raw json.RawMessage) (command.Commands, error) {
	var w wireTurn
	if err := strictUnmarshal(raw, &w); err != nil {
		return command.Commands{}, err
	}
	if w.Moves == nil || w.BuildOrders == nil || w.HabitatNamings == nil {
		return command.Commands{}, decodeErr(reasonMissingField, "turn value needs moves, build_orders and habitat_namings")
	}
	out := command.Empty()

	for _, pair := range *w.Moves {
		k, v, err := splitPair(pair)
		if err != nil {
			return command.Commands{}, err
		}
		var id int
		if err := strictUnmarshal(k, &id); err != nil {
			return command.Commands{}, err
		}
		to, err := decodeCoord(v)
		if err != nil {
			return command.Commands{}, err
		}
		if _, dup := out.Moves[entity.UnitID(id)]; dup {
			return command.Commands{}, decodeErr(reasonDuplicateKey, "duplicate move for unit %d", id)
		}
		out.Moves[entity.UnitID(id)] = to
	}

	for _, pair := range *w.BuildOrders {
		k, v, err := splitPair(pair)
		if err != nil {
			return command.Commands{}, err
		}
		at, err := decodeCoord(k)
		if err != nil {
			return command.Commands{}, err
		}
		b, err := decodeBuildable(v)
		if err != nil {
			return command.Commands{}, err
		}
		if _, dup := out.BuildOrders[at]; dup {
			return command.Commands{}, decodeErr(reasonDuplicateKey, "duplicate build order at %s", at)
		}
		out.BuildOrders[at] = b
	}

	for _, pair := range *w.HabitatNamings {
		k, v, err := splitPair(pair)
		if err != nil {
			return command.Commands{}, err
		}
		var id int
		if err := strictUnmarshal(k, &id); err != nil {
			return command.Commands{}, err
		}
		var n wireName
		if err := strictUnmarshal(v, &n); err != nil {
			return command.Commands{}, err
		}
		if n.Full == nil || n.Abbreviation == nil {
			return command.Commands{}, decodeErr(reasonMissingField, "naming needs full and abbreviation")
		}
		if _, dup := out.HabitatNamings[entity.UnitID(id)]; dup {
			return command.Commands{}, decodeErr(reasonDuplicateKey, "duplicate naming for habitat %d", id)
		}
		out.HabitatNamings[entity.UnitID(id)] = entity.FinalName{Full: *n.Full, Abbreviation: *n.Abbreviation}
	}
	return out, nil
}

func splitPair(raw json.RawMessage) (json.RawMessage, json.RawMessage, error) {
	var pair []json.RawMessage
	if err := strictUnmarshal(raw, &pair); err != nil {
		return nil, nil, err
	}
	if len(pair) != 2 {
		return nil, nil, decodeErr(reasonBadPair, "pair needs 2 elements, got %d", len(pair))
	}
	return pair[0], pair[1], nil
}

func decodeCoord(raw json.RawMessage) (grid.Coord, error) {
	var xy []int
	if err := strictUnmarshal(raw, &xy); err != nil {
		return grid.Coord{}, err
	}
	if len(xy) != 2 {
		return grid.Coord{}, decodeErr(reasonBadCoord, "coord needs 2 elements, got %d", len(xy))
	}
	return grid.Coord{X: xy[0], Y: xy[1]}, nil
}

func decodeBuildable(raw json.RawMessage) (entity.Buildable, error) {
	var w wireBuildable
	if err := strictUnmarshal(raw, &w); err != nil {
		return entity.Buildable{}, err
	}
	switch w.Type {
	case tagSubmarine:
		s, ok := entity.ParseSubmarine(w.Payload)
		if !ok {
			return entity.Buildable{}, decodeErr(reasonUnknownName, "unknown submarine %q", w.Payload)
		}
		return entity.BuildSubmarine(s), nil
	case tagBuilding:
		b, ok := entity.ParseBuilding(w.Payload)
		if !ok {
			return entity.Buildable{}, decodeErr(reasonUnknownName, "unknown building %q", w.Payload)
		}
		return entity.BuildBuilding(b), nil
	default:
		return entity.Buildable{}, decodeErr(reasonUnknownType, "unknown buildable type %q", w.Type)
	}
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// strictUnmarshal 拒绝未知字段与尾随内容。
func strictUnmarshal(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return decodeErr(reasonSyntax, "%v", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return decodeErr(reasonSyntax, "trailing data after value")
	}
	return nil
}

// MarshalCommands 单独编码一个指令批次（紧凑格式），对局归档用。
func MarshalCommands(c command.Commands) ([]byte, error) {
	v, err := encodeCommands(c)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// UnmarshalCommands 是 MarshalCommands 的逆操作，规则与 DecodeNetworkMessage 相同。
func UnmarshalCommands(raw []byte) (command.Commands, error) {
	return decodeCommands(raw)
}
