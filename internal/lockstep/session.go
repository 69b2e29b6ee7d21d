// Package lockstep 是双端锁步会话：双方各自持有完整快照，只交换每回合指令，收齐后本地确定性结算。
package lockstep

import (
	"context"
	"fmt"
	"time"

	"DeepHabitat/internal/archive"
	"DeepHabitat/internal/game/command"
	"DeepHabitat/internal/game/entity"
	"DeepHabitat/internal/game/rules"
	"DeepHabitat/internal/protocol"
	"DeepHabitat/modules/kit/errx"
	"DeepHabitat/modules/kit/logx"
	"DeepHabitat/modules/kit/tracex"

	"go.uber.org/zap"
)

// SeedSource 为主机生成对局种子。
type SeedSource func() int64

// Resolver 是回合结算，*rules.Engine 实现它。
type Resolver interface {
	Resolve(g entity.Game, p1, p2 command.Commands) rules.Result
}

// Archiver 接收结束后的对局记录，不能阻塞。
type Archiver interface {
	Submit(rec archive.MatchRecord) int64
}

type sequenceReason string

const (
	reasonDuplicateStart  sequenceReason = "duplicate_start_game"
	reasonJoinAfterStart  sequenceReason = "join_after_start"
	reasonTurnBeforeStart sequenceReason = "turn_before_start"
	reasonPastTurn        sequenceReason = "past_turn"
	reasonTurnAfterOver   sequenceReason = "turn_after_game_over"
	reasonDoubleSubmit    sequenceReason = "double_submit"
	reasonSubmitIdle      sequenceReason = "submit_not_awaiting"
)

type Config struct {
	Topic            string
	AssertInvariants bool
	Seeds            SeedSource
	Engine           Resolver
	Archiver         Archiver
	Logger           logx.Logger
}

// Session 是锁步状态机：Lobby -> AwaitingBothCommands(n) -> AwaitingBothCommands(n+1) -> ... -> GameOver。
// 不是并发安全的，由 actor 串行驱动。
type Session struct {
	cfg    Config
	ctx    context.Context
	logger logx.Logger

	phase   Phase
	role    entity.Player
	seed    int64
	game    entity.Game
	outcome rules.Outcome

	local     map[int]command.Commands
	peer      map[int]command.Commands
	peerCount int
	turns     []archive.TurnLog
	events    []Event
}

func NewSession(cfg Config) *Session {
	if cfg.Engine == nil {
		cfg.Engine = rules.NewEngine()
	}
	if cfg.Seeds == nil {
		cfg.Seeds = func() int64 { return time.Now().UnixNano() }
	}
	if cfg.Logger == nil {
		cfg.Logger = logx.Nop()
	}
	return &Session{
		cfg:     cfg,
		ctx:     tracex.WithTopic(context.Background(), cfg.Topic),
		logger:  cfg.Logger,
		phase:   PhaseLobby,
		outcome: rules.Ongoing(),
		local:   make(map[int]command.Commands),
		peer:    make(map[int]command.Commands),
	}
}

// Join 返回进入 topic 时要广播的消息。
func (s *Session) Join() []protocol.Message {
	return []protocol.Message{protocol.Join{}}
}

// HandleRaw 解码一帧再交给 HandleMessage；解码失败记为 Failure，阶段不变。
func (s *Session) HandleRaw(raw []byte) []protocol.Message {
	env, err := protocol.DecodeNetworkMessage(raw)
	if err != nil {
		s.fail("lockstep.decode", err)
		return nil
	}
	return s.HandleMessage(env.Payload)
}

// HandleMessage 处理对手经中继转发来的消息，返回需要广播的消息。
func (s *Session) HandleMessage(m protocol.Message) []protocol.Message {
	switch msg := m.(type) {
	case protocol.Join:
		if s.phase != PhaseLobby {
			s.anomaly(reasonJoinAfterStart, "join ignored after start")
			return nil
		}
		seed := s.cfg.Seeds()
		s.start(entity.Player1, seed)
		return []protocol.Message{protocol.StartGame{Seed: seed}}
	case protocol.StartGame:
		if s.phase != PhaseLobby {
			s.anomaly(reasonDuplicateStart, fmt.Sprintf("start-game seed=%d ignored", msg.Seed))
			return nil
		}
		s.start(entity.Player2, msg.Seed)
		return nil
	case protocol.Turn:
		s.handlePeerTurn(msg.Commands)
		return nil
	default:
		s.fail("lockstep.handle", fmt.Errorf("unexpected message %T", m))
		return nil
	}
}

// Submit 提交本地当前回合的指令，返回需要广播的 Turn。
// 本地保存的是指令经线格式编解码后的值，与对手解码结果一致；无法编码时什么都不保存，阶段不变，可改后重交。
func (s *Session) Submit(c command.Commands) ([]protocol.Message, error) {
	if s.phase != PhaseAwaiting {
		s.anomaly(reasonSubmitIdle, "submit ignored in phase "+s.phase.String())
		return nil, nil
	}
	turn := s.game.Turn
	if _, dup := s.local[turn]; dup {
		s.anomaly(reasonDoubleSubmit, fmt.Sprintf("second submit for turn %d ignored", turn))
		return nil, nil
	}
	wire, err := wireCommands(s.cfg.Topic, c)
	if err != nil {
		logx.ReportSysErrorWithLoggerContext(s.ctx, s.logger, logx.NewSysLog("lockstep.submit", err),
			zap.Int("turn", turn),
		)
		return nil, err
	}
	s.local[turn] = wire
	s.tryResolve()
	return []protocol.Message{protocol.Turn{Commands: wire}}, nil
}

// wireCommands 返回对手收到这批指令后解出的值。
func wireCommands(topic string, c command.Commands) (command.Commands, error) {
	raw, err := protocol.EncodeNetworkMessage(protocol.Envelope{Topic: topic, Payload: protocol.Turn{Commands: c}})
	if err != nil {
		return command.Commands{}, err
	}
	env, err := protocol.DecodeNetworkMessage(raw)
	if err != nil {
		return command.Commands{}, errx.ErrReqParamERR.WithCause(err)
	}
	t, ok := env.Payload.(protocol.Turn)
	if !ok {
		return command.Commands{}, errx.ErrInternal.WithCause(fmt.Errorf("turn decoded as %T", env.Payload))
	}
	return t.Commands, nil
}

// Events 取走积累的事件。
func (s *Session) Events() []Event {
	out := s.events
	s.events = nil
	return out
}

func (s *Session) Snapshot() Snapshot {
	_, submitted := s.local[s.game.Turn]
	return Snapshot{
		Phase:        s.phase,
		Role:         s.role,
		Game:         s.game.Clone(),
		Outcome:      s.outcome,
		Submitted:    s.phase == PhaseAwaiting && submitted,
		PeerBuffered: len(s.peer),
	}
}

func (s *Session) start(role entity.Player, seed int64) {
	s.role = role
	s.seed = seed
	s.game = entity.Init(seed)
	s.phase = PhaseAwaiting
	s.logger.WithContext(s.ctx).Info("game started",
		zap.String("role", role.String()),
		zap.Int64("seed", seed),
	)
	s.emit(Started{Role: role, Seed: seed, Game: s.game.Clone()})
}

// handlePeerTurn 按到达顺序给对手回合编号：第 k 个 Turn 属于第 k 回合。
func (s *Session) handlePeerTurn(c command.Commands) {
	switch s.phase {
	case PhaseLobby:
		s.anomaly(reasonTurnBeforeStart, "turn ignored before start")
		return
	case PhaseGameOver:
		s.anomaly(reasonTurnAfterOver, "turn ignored after game over")
		return
	}
	s.peerCount++
	n := s.peerCount
	// 按到达编号时 n 不会落后于当前回合，这里只兜底
	if n < s.game.Turn {
		s.anomaly(reasonPastTurn, fmt.Sprintf("peer turn %d ignored at turn %d", n, s.game.Turn))
		return
	}
	s.peer[n] = c.Clone()
	s.tryResolve()
}

func (s *Session) tryResolve() {
	for s.phase == PhaseAwaiting {
		turn := s.game.Turn
		mine, ok1 := s.local[turn]
		theirs, ok2 := s.peer[turn]
		if !ok1 || !ok2 {
			return
		}
		p1, p2 := mine, theirs
		if s.role == entity.Player2 {
			p1, p2 = theirs, mine
		}
		res := s.cfg.Engine.Resolve(s.game, p1, p2)
		if s.cfg.AssertInvariants {
			if err := entity.CheckInvariants(res.Game); err != nil {
				panic(err)
			}
		}
		delete(s.local, turn)
		delete(s.peer, turn)

		digest := res.Game.Digest()
		if tl, err := archive.NewTurnLog(turn, p1, p2, digest); err != nil {
			s.fail("lockstep.log_turn", err)
		} else {
			s.turns = append(s.turns, tl)
		}
		s.game = res.Game
		s.outcome = res.Outcome
		s.logger.WithContext(s.ctx).Debug("turn resolved",
			zap.Int("turn", turn),
			zap.String("digest", digest),
			zap.Int("rejected", len(res.Report.Rejected)),
			zap.Int("battles", len(res.Report.Battles)),
		)
		s.emit(Resolved{Turn: turn, Game: res.Game.Clone(), Outcome: res.Outcome, Report: res.Report, Digest: digest})

		if res.Outcome.IsOver() {
			s.finish(digest)
		}
	}
}

func (s *Session) finish(digest string) {
	s.phase = PhaseGameOver
	rec := archive.MatchRecord{
		Topic:       s.cfg.Topic,
		Seed:        s.seed,
		Role:        s.role.String(),
		Turns:       append([]archive.TurnLog(nil), s.turns...),
		Outcome:     s.outcome.String(),
		FinalDigest: digest,
		FinishedAt:  time.Now(),
	}
	if s.cfg.Archiver != nil {
		rec.ID = s.cfg.Archiver.Submit(rec)
	}
	s.logger.WithContext(s.ctx).Info("game over",
		zap.String("outcome", rec.Outcome),
		zap.Int("turns", len(rec.Turns)),
		zap.Int64("match_id", rec.ID),
	)
	s.emit(Finished{Outcome: s.outcome, Record: rec})
}

func (s *Session) emit(e Event) {
	s.events = append(s.events, e)
}

func (s *Session) anomaly(reason sequenceReason, msg string) {
	logx.ReportBizWithLoggerContext(s.ctx, s.logger, logx.NewAnomalyLog("lockstep.sequence", string(reason), msg),
		zap.String("phase", s.phase.String()),
		zap.Int("turn", s.game.Turn),
	)
}

func (s *Session) fail(action string, err error) {
	logx.ReportSysErrorWithLoggerContext(s.ctx, s.logger, logx.NewSysLog(action, err),
		zap.String("phase", s.phase.String()),
	)
	s.emit(Failure{Err: err})
}
