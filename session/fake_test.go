package session

import (
	"errors"
	"fmt"
	"testing"

	"pocketchess/engine"
	"pocketchess/types"
)

// fakeEngine is an in-memory rules engine. Legal targets are scripted per square,
// and any operation can be forced to fail through refuse.
type fakeEngine struct {
	pieces  map[types.Square]types.PieceSnapshot
	pockets map[types.Color]types.Pocket
	turn    types.Color
	counts  [2]int
	legal   map[types.Square][]types.Square
	refuse  map[string]bool
	calls   map[string]int
	closed  bool
}

func newFake() *fakeEngine {
	return &fakeEngine{
		pieces: make(map[types.Square]types.PieceSnapshot),
		pockets: map[types.Color]types.Pocket{
			types.White: types.DefaultReserves(),
			types.Black: types.DefaultReserves(),
		},
		legal:  make(map[types.Square][]types.Square),
		refuse: make(map[string]bool),
		calls:  make(map[string]int),
	}
}

func sq(file, rank int) types.Square {
	return types.MustSquare(file, rank)
}

// put places a piece directly; kings are royal.
func (f *fakeEngine) put(kind types.PieceKind, color types.Color, at types.Square) *fakeEngine {
	f.pieces[at] = types.PieceSnapshot{Kind: kind, Color: color, Square: at, IsRoyal: kind == types.King}
	return f
}

func (f *fakeEngine) BoardState() []types.PieceSnapshot {
	f.calls["board"]++
	out := make([]types.PieceSnapshot, 0, len(f.pieces))
	for _, p := range f.pieces {
		out = append(out, p)
	}
	return out
}

func (f *fakeEngine) LegalTargets(at types.Square) []types.Square {
	f.calls["legal"]++
	return f.legal[at]
}

func (f *fakeEngine) Place(kind types.PieceKind, color types.Color, at types.Square) bool {
	f.calls["place"]++
	if f.refuse["place"] || f.pockets[color][kind] <= 0 {
		return false
	}
	if _, taken := f.pieces[at]; taken {
		return false
	}
	f.pockets[color][kind]--
	f.put(kind, color, at)
	return true
}

func (f *fakeEngine) Move(from, to types.Square) bool {
	f.calls["move"]++
	p, ok := f.pieces[from]
	if f.refuse["move"] || !ok {
		return false
	}
	legal := false
	for _, t := range f.legal[from] {
		if t == to {
			legal = true
		}
	}
	if !legal {
		return false
	}
	delete(f.pieces, from)
	p.Square = to
	f.pieces[to] = p
	return true
}

func (f *fakeEngine) AddStun(at types.Square, amount int) bool {
	f.calls["stun"]++
	p, ok := f.pieces[at]
	if f.refuse["stun"] || !ok {
		return false
	}
	p.StunStacks += amount
	f.pieces[at] = p
	return true
}

func (f *fakeEngine) Promote(at types.Square, kind types.PieceKind) bool {
	f.calls["promote"]++
	p, ok := f.pieces[at]
	if f.refuse["promote"] || !ok || p.Kind != types.Pawn {
		return false
	}
	p.Kind = kind
	f.pieces[at] = p
	return true
}

func (f *fakeEngine) Pocket(color types.Color) types.Pocket {
	return f.pockets[color].Clone()
}

func (f *fakeEngine) TurnColor() types.Color { return f.turn }

func (f *fakeEngine) MoveCount(color types.Color) int {
	if color == types.White {
		return f.counts[0]
	}
	return f.counts[1]
}

func (f *fakeEngine) EndTurn() {
	f.calls["endturn"]++
	if f.turn == types.White {
		f.counts[0]++
	} else {
		f.counts[1]++
	}
	f.turn = f.turn.Opposite()
}

func (f *fakeEngine) RecomputeMovePatterns() { f.calls["patterns"]++ }

func (f *fakeEngine) SetupPosition(pos types.Position) {
	f.calls["setup"]++
	f.pieces = make(map[types.Square]types.PieceSnapshot)
	for _, p := range pos.Pieces {
		f.pieces[p.Square] = types.PieceSnapshot{
			Kind: p.Kind, Color: p.Color, Square: p.Square,
			StunStacks: p.StunStacks, MoveStackCount: p.MoveStackCount,
			IsRoyal: p.Kind == types.King,
		}
	}
	f.turn = pos.Turn
	f.counts = [2]int{}
	if pos.Pockets != nil {
		f.pockets[types.White] = pos.Pockets.White.Clone()
		f.pockets[types.Black] = pos.Pockets.Black.Clone()
	} else {
		f.pockets[types.White] = types.DefaultReserves()
		f.pockets[types.Black] = types.DefaultReserves()
	}
}

func (f *fakeEngine) Close() { f.closed = true }

// capableFake adds royal succession and disguise.
type capableFake struct {
	*fakeEngine
}

func (f capableFake) SucceedRoyal(at types.Square) bool {
	f.calls["succeed"]++
	p, ok := f.pieces[at]
	if f.refuse["succeed"] || !ok || p.Color != f.turn || p.Kind == types.King {
		return false
	}
	for s, q := range f.pieces {
		if q.Color == p.Color && q.IsRoyal {
			q.IsRoyal = false
			f.pieces[s] = q
		}
	}
	p.IsRoyal = true
	f.pieces[at] = p
	return true
}

func (f capableFake) Disguise(at types.Square, kind types.PieceKind) bool {
	f.calls["disguise"]++
	p, ok := f.pieces[at]
	if f.refuse["disguise"] || !ok || !p.IsRoyal {
		return false
	}
	k := kind
	p.DisguisedAs = &k
	f.pieces[at] = p
	return true
}

// reportingFake counts capability probes.
type reportingFake struct {
	*fakeEngine
	probes int
}

func (f *reportingFake) Capabilities() engine.Capabilities {
	f.probes++
	return engine.Capabilities{SucceedRoyal: capableFake{f.fakeEngine}.SucceedRoyal}
}

func fixedFactory(eng engine.RulesEngine) engine.Factory {
	return func(engine.GameConfig) (engine.RulesEngine, error) { return eng, nil }
}

// queueFactory hands out engines in order and fails once they run out.
func queueFactory(engines ...engine.RulesEngine) engine.Factory {
	return func(engine.GameConfig) (engine.RulesEngine, error) {
		if len(engines) == 0 {
			return nil, errors.New("no engine left")
		}
		e := engines[0]
		engines = engines[1:]
		return e, nil
	}
}

func newSession(t *testing.T, eng engine.RulesEngine, opts ...Option) *Session {
	t.Helper()
	s, err := New(fixedFactory(eng), engine.DefaultConfig(), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

// observed is the state a rejected command must leave untouched.
type observed struct {
	mode      string
	pending   string
	selection string
	pockets   string
	board     string
	dropKind  types.PieceKind
	gameOver  bool
}

func observe(s *Session) observed {
	o := observed{
		mode:     s.Mode().Name(),
		dropKind: s.DropKind(),
		gameOver: s.GameOver(),
	}
	if pm, ok := s.Mode().(PromoteMode); ok {
		o.pending = pm.Pending.String()
	}
	if sel := s.Selection(); sel != nil {
		o.selection = fmt.Sprintf("%s %v", sel.Square, sel.Targets)
	}
	p := s.Pockets()
	o.pockets = pocketLine(p.White) + "|" + pocketLine(p.Black)
	for _, pc := range s.Board().Pieces() {
		o.board += fmt.Sprintf("%+v;", pc)
	}
	return o
}
