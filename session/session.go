// Package session implements the game session: it turns player commands into rules
// engine calls, tracks the interaction mode and reads the game state back after
// every accepted action.
//
// A Session is not safe for concurrent use. Front ends with more than one
// goroutine must funnel commands through a single owner.
package session

import (
	"fmt"
	"io"
	"log"

	"pocketchess/engine"
	"pocketchess/fixtures"
	"pocketchess/types"
)

// Selection is the piece picked in move mode and its legal destinations.
// Targets is never empty.
type Selection struct {
	Square  types.Square
	Targets []types.Square
}

// HasTarget reports whether sq is one of the selection's destinations.
func (s *Selection) HasTarget(sq types.Square) bool {
	for _, t := range s.Targets {
		if t == sq {
			return true
		}
	}
	return false
}

func (s *Selection) clone() *Selection {
	if s == nil {
		return nil
	}
	out := &Selection{Square: s.Square, Targets: make([]types.Square, len(s.Targets))}
	copy(out.Targets, s.Targets)
	return out
}

// LastMove is the most recent accepted action, for highlighting. From is nil for
// actions without an origin square.
type LastMove struct {
	From *types.Square
	To   types.Square
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the debug logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithFixtures sets the position table used by LoadPosition.
func WithFixtures(r *fixtures.Registry) Option {
	return func(s *Session) {
		if r != nil {
			s.fixtures = r
		}
	}
}

// WithDefaultDropKind sets the kind armed at start and after every reset.
func WithDefaultDropKind(k types.PieceKind) Option {
	return func(s *Session) {
		if k.Valid() {
			s.defaultKind = k
		}
	}
}

// Session is one game against a rules engine.
type Session struct {
	factory     engine.Factory
	cfg         engine.GameConfig
	fixtures    *fixtures.Registry
	defaultKind types.PieceKind
	log         *log.Logger
	hooks       []func(Event)

	eng  engine.RulesEngine
	caps engine.Capabilities

	mode         Mode
	selection    *Selection
	dropKind     types.PieceKind
	lastMove     *LastMove
	lastPromoted *types.PieceKind
	status       string
	gameOver     bool
	result       types.Outcome

	board      types.BoardSnapshot
	pockets    types.Pockets
	turn       types.Color
	moveCounts [2]int
}

// New starts an engine with factory and returns a session in drop mode.
func New(factory engine.Factory, cfg engine.GameConfig, opts ...Option) (*Session, error) {
	s := &Session{
		factory:     factory,
		cfg:         cfg,
		fixtures:    fixtures.Builtin(),
		defaultKind: types.King,
		log:         log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(s)
	}

	eng, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to start engine: %w", err)
	}
	s.install(eng)
	s.start()
	s.status = modeTitle(s.mode)
	return s, nil
}

// install attaches eng and resolves its optional operations once.
func (s *Session) install(eng engine.RulesEngine) {
	s.eng = eng
	s.caps = engine.ProbeCapabilities(eng)
	s.log.Printf("session: engine attached (succeed=%v disguise=%v)", s.caps.SucceedRoyal != nil, s.caps.Disguise != nil)
}

// start puts the session into its initial state and reads the board.
func (s *Session) start() {
	s.mode = DropMode{}
	s.selection = nil
	s.dropKind = s.defaultKind
	s.lastMove = nil
	s.lastPromoted = nil
	s.gameOver = false
	s.result = types.Ongoing
	s.refresh()
}

// Reset replaces the engine with a fresh instance and starts over. On failure the
// current game is kept.
func (s *Session) Reset() error {
	eng, err := s.factory(s.cfg)
	if err != nil {
		s.status = "Reset failed"
		s.log.Printf("session: reset failed: %v", err)
		return fmt.Errorf("reset: %w", err)
	}
	old := s.eng
	s.install(eng)
	if c, ok := old.(engine.Closer); ok {
		c.Close()
	}
	s.start()
	s.status = "Game reset"
	s.emit(Event{Kind: EventReset})
	return nil
}

// Close releases the engine.
func (s *Session) Close() {
	if c, ok := s.eng.(engine.Closer); ok {
		c.Close()
	}
}

// OnEvent registers fn to be called after every accepted action.
func (s *Session) OnEvent(fn func(Event)) {
	s.hooks = append(s.hooks, fn)
}

func (s *Session) emit(ev Event) {
	for _, fn := range s.hooks {
		fn(ev)
	}
}

// refresh reads the whole game state back from the engine and runs the royal
// elimination check. It never fails.
func (s *Session) refresh() {
	s.board = types.NewBoardSnapshot(s.eng.BoardState())
	s.pockets = types.Pockets{
		White: s.eng.Pocket(types.White).Clone(),
		Black: s.eng.Pocket(types.Black).Clone(),
	}
	s.turn = s.eng.TurnColor()
	s.moveCounts = [2]int{s.eng.MoveCount(types.White), s.eng.MoveCount(types.Black)}

	if s.gameOver {
		return
	}
	outcome := DetectRoyalElimination(s.board, s.moveCounts[0]+s.moveCounts[1])
	if !outcome.Terminal() {
		return
	}
	s.gameOver = true
	s.result = outcome
	s.selection = nil
	s.status = "Game over: " + outcome.String()
	s.log.Printf("session: game over: %s", outcome)
	s.emit(Event{Kind: EventGameOver, Outcome: outcome})
}

// reject records a rejection as status and returns it.
func (s *Session) reject(kind RejectKind, format string, args ...interface{}) error {
	reason := fmt.Sprintf(format, args...)
	s.status = reason
	s.log.Printf("session: %s: %s", kind, reason)
	return &RejectedError{Kind: kind, Reason: reason}
}

// finished is the rejection for commands sent after the game ended. It leaves the
// status showing the result.
func (s *Session) finished() error {
	return &RejectedError{Kind: GameFinished, Reason: "Game over: " + s.result.String()}
}

// Mode returns the current mode.
func (s *Session) Mode() Mode { return s.mode }

// Selection returns a copy of the current selection, or nil.
func (s *Session) Selection() *Selection { return s.selection.clone() }

// Board returns the board as of the last refresh.
func (s *Session) Board() types.BoardSnapshot { return s.board }

// Pockets returns a copy of both reserves as of the last refresh.
func (s *Session) Pockets() types.Pockets { return s.pockets.Clone() }

// Status returns the status line.
func (s *Session) Status() string { return s.status }

// GameOver reports whether the game has ended.
func (s *Session) GameOver() bool { return s.gameOver }

// Result returns the outcome; Ongoing until the game ends.
func (s *Session) Result() types.Outcome { return s.result }

// Turn returns the side to act as of the last refresh.
func (s *Session) Turn() types.Color { return s.turn }

// MoveCount returns the completed turns of color as of the last refresh.
func (s *Session) MoveCount(color types.Color) int {
	if color == types.White {
		return s.moveCounts[0]
	}
	return s.moveCounts[1]
}

// DropKind returns the armed kind.
func (s *Session) DropKind() types.PieceKind { return s.dropKind }

// EligibleKinds returns the kinds the armed kind may take in the current mode.
func (s *Session) EligibleKinds() []types.PieceKind { return EligibleKinds(s.mode) }

// LastMove returns the highlighted last action, or nil.
func (s *Session) LastMove() *LastMove {
	if s.lastMove == nil {
		return nil
	}
	out := &LastMove{To: s.lastMove.To}
	if s.lastMove.From != nil {
		from := *s.lastMove.From
		out.From = &from
	}
	return out
}

// LastPromoted returns the kind of the most recent promotion since the last reset.
func (s *Session) LastPromoted() (types.PieceKind, bool) {
	if s.lastPromoted == nil {
		return types.Pawn, false
	}
	return *s.lastPromoted, true
}

// Capabilities returns the optional engine operations resolved at engine start.
func (s *Session) Capabilities() engine.Capabilities { return s.caps }

// Fixtures returns the position table used by LoadPosition.
func (s *Session) Fixtures() *fixtures.Registry { return s.fixtures }
