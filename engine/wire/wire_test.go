package wire

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"pocketchess/engine"
	"pocketchess/session"
	"pocketchess/types"
)

const baseCommands = "protocol_version\nlist_commands\nnew_game\nboard\nlegal\nplace\nmove\nstun\npromote\npocket\nturn\nmovecount\nendturn\npatterns\nsetup\nquit"

// fakePeer answers protocol commands from an in-process script.
type fakePeer struct {
	in     *bufio.Reader
	out    io.WriteCloser
	reply  func(cmd string) string
	mu     sync.Mutex
	seen   []string
	closed chan struct{}
}

func (p *fakePeer) run() {
	defer close(p.closed)
	for {
		line, err := p.in.ReadString('\n')
		if err != nil {
			return
		}
		cmd := strings.TrimSpace(line)
		p.mu.Lock()
		p.seen = append(p.seen, cmd)
		p.mu.Unlock()
		resp := p.reply(cmd)
		if resp == "" {
			// no answer; simulates a hung engine
			continue
		}
		if _, err := io.WriteString(p.out, resp+"\n\n"); err != nil {
			return
		}
		if cmd == "quit" {
			p.out.Close()
			return
		}
	}
}

func (p *fakePeer) commands() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.seen))
	copy(out, p.seen)
	return out
}

func (p *fakePeer) last() string {
	seen := p.commands()
	if len(seen) == 0 {
		return ""
	}
	return seen[len(seen)-1]
}

// handshakeReply answers the handshake with the given command list and defers
// everything else to next.
func handshakeReply(list string, next func(cmd string) string) func(string) string {
	return func(cmd string) string {
		switch {
		case cmd == "protocol_version":
			return "= 1"
		case cmd == "list_commands":
			return "= " + list
		case strings.HasPrefix(cmd, "new_game"), cmd == "quit":
			return "="
		}
		if next == nil {
			return "="
		}
		return next(cmd)
	}
}

func startPeer(t *testing.T, cfg engine.GameConfig, reply func(string) string) (*Engine, *fakePeer) {
	t.Helper()
	clientR, peerW := io.Pipe()
	peerR, clientW := io.Pipe()
	p := &fakePeer{in: bufio.NewReader(peerR), out: peerW, reply: reply, closed: make(chan struct{})}
	go p.run()
	e := newWithPipes(cfg, clientR, clientW)
	t.Cleanup(func() {
		peerW.Close()
		peerR.Close()
	})
	return e, p
}

func connectPeer(t *testing.T, list string, next func(string) string) (*Engine, *fakePeer) {
	t.Helper()
	e, p := startPeer(t, engine.GameConfig{TimeoutMillis: 2000}, handshakeReply(list, next))
	if err := e.handshake(); err != nil {
		t.Fatalf("handshake: %v", err)
	}
	return e, p
}

func TestHandshakeStartsGameWithReserves(t *testing.T) {
	cfg := engine.GameConfig{
		TimeoutMillis: 2000,
		WhiteReserves: types.Pocket{types.King: 1},
		BlackReserves: types.Pocket{types.King: 1, types.Queen: 2},
	}
	e, p := startPeer(t, cfg, handshakeReply(baseCommands, nil))
	if err := e.handshake(); err != nil {
		t.Fatalf("handshake: %v", err)
	}
	seen := p.commands()
	want := []string{"protocol_version", "list_commands", "new_game K=1 Q=2,K=1"}
	if len(seen) != len(want) {
		t.Fatalf("commands = %q, want %q", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("command %d = %q, want %q", i, seen[i], want[i])
		}
	}
}

func TestHandshakeDefaultReserves(t *testing.T) {
	_, p := connectPeer(t, baseCommands, nil)
	want := "new_game P=8,N=2,B=2,R=2,Q=1,K=1,Cl=1 P=8,N=2,B=2,R=2,Q=1,K=1,Cl=1"
	if got := p.last(); got != want {
		t.Errorf("new_game = %q, want %q", got, want)
	}
}

func TestHandshakeFailures(t *testing.T) {
	tests := []struct {
		name  string
		reply func(string) string
	}{
		{"version mismatch", func(cmd string) string {
			if cmd == "protocol_version" {
				return "= 2"
			}
			return "="
		}},
		{"missing command", handshakeReply("protocol_version\nlist_commands\nnew_game\nboard", nil)},
		{"new game refused", func(cmd string) string {
			if strings.HasPrefix(cmd, "new_game") {
				return "? bad reserves"
			}
			return handshakeReply(baseCommands, nil)(cmd)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := startPeer(t, engine.GameConfig{TimeoutMillis: 2000}, tt.reply)
			if err := e.handshake(); err == nil {
				t.Fatal("expected handshake error")
			}
		})
	}
}

func TestCapabilitiesFromCommandList(t *testing.T) {
	tests := []struct {
		name         string
		extra        string
		wantSucceed  bool
		wantDisguise bool
	}{
		{"none", "", false, false},
		{"succeed only", "\nsucceed", true, false},
		{"both", "\nsucceed\ndisguise", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := connectPeer(t, baseCommands+tt.extra, nil)
			caps := engine.ProbeCapabilities(e)
			if (caps.SucceedRoyal != nil) != tt.wantSucceed {
				t.Errorf("SucceedRoyal present = %v, want %v", caps.SucceedRoyal != nil, tt.wantSucceed)
			}
			if (caps.Disguise != nil) != tt.wantDisguise {
				t.Errorf("Disguise present = %v, want %v", caps.Disguise != nil, tt.wantDisguise)
			}
		})
	}
}

func TestCapabilityCallsSendCommands(t *testing.T) {
	e, p := connectPeer(t, baseCommands+"\nsucceed\ndisguise", func(cmd string) string {
		if cmd == "succeed d4" || cmd == "disguise e1 Q" {
			return "="
		}
		return "? no"
	})
	caps := e.Capabilities()
	if !caps.SucceedRoyal(types.MustSquare(3, 3)) {
		t.Errorf("succeed rejected; last command %q", p.last())
	}
	if !caps.Disguise(types.MustSquare(4, 0), types.Queen) {
		t.Errorf("disguise rejected; last command %q", p.last())
	}
	if caps.Disguise(types.MustSquare(4, 0), types.Rook) {
		t.Error("disguise to rook accepted")
	}
}

func TestBoardState(t *testing.T) {
	e, _ := connectPeer(t, baseCommands, func(cmd string) string {
		if cmd == "board" {
			return "= K white e1 0 0 1 Q\nP black a7 2 1 0 -\ngarbage line\nX white a1 0 0 0 -"
		}
		return "? unexpected"
	})
	pieces := e.BoardState()
	if len(pieces) != 2 {
		t.Fatalf("BoardState() returned %d pieces, want 2", len(pieces))
	}
	k := pieces[0]
	if k.Kind != types.King || k.Color != types.White || k.Square != (types.MustSquare(4, 0)) || !k.IsRoyal {
		t.Errorf("king = %+v", k)
	}
	if k.DisguisedAs == nil || *k.DisguisedAs != types.Queen {
		t.Errorf("king disguise = %v, want Q", k.DisguisedAs)
	}
	p := pieces[1]
	if p.Kind != types.Pawn || p.Color != types.Black || p.StunStacks != 2 || p.MoveStackCount != 1 || p.IsRoyal {
		t.Errorf("pawn = %+v", p)
	}
	if !p.IsStunned() {
		t.Error("pawn should be stunned")
	}
}

func TestActionsEncodeCommands(t *testing.T) {
	e, p := connectPeer(t, baseCommands, func(cmd string) string { return "=" })
	e1 := types.MustSquare(4, 0)
	e2 := types.MustSquare(4, 1)
	e4 := types.MustSquare(4, 3)
	a8 := types.MustSquare(0, 7)

	tests := []struct {
		name string
		call func() bool
		want string
	}{
		{"place", func() bool { return e.Place(types.KnightRider, types.Black, e1) }, "place Kr black e1"},
		{"move", func() bool { return e.Move(e2, e4) }, "move e2 e4"},
		{"stun", func() bool { return e.AddStun(e4, 1) }, "stun e4 1"},
		{"promote", func() bool { return e.Promote(a8, types.Rook) }, "promote a8 R"},
	}
	for _, tt := range tests {
		if !tt.call() {
			t.Errorf("%s: rejected", tt.name)
		}
		if got := p.last(); got != tt.want {
			t.Errorf("%s: sent %q, want %q", tt.name, got, tt.want)
		}
	}

	e.EndTurn()
	if got := p.last(); got != "endturn" {
		t.Errorf("EndTurn sent %q", got)
	}
	e.RecomputeMovePatterns()
	if got := p.last(); got != "patterns" {
		t.Errorf("RecomputeMovePatterns sent %q", got)
	}
}

func TestRejectedActionReturnsFalse(t *testing.T) {
	e, _ := connectPeer(t, baseCommands, func(cmd string) string { return "? illegal move" })
	if e.Move(types.MustSquare(0, 0), types.MustSquare(0, 1)) {
		t.Error("Move should be rejected")
	}
	// a rejection does not break the connection
	if e.Place(types.King, types.White, types.MustSquare(4, 0)) {
		t.Error("Place should be rejected")
	}
	if e.broken != nil {
		t.Errorf("engine marked broken after rejection: %v", e.broken)
	}
}

func TestQueries(t *testing.T) {
	e, _ := connectPeer(t, baseCommands, func(cmd string) string {
		switch cmd {
		case "pocket white":
			return "= K=1 Q=0 P=8"
		case "pocket black":
			return "= -"
		case "turn":
			return "= black"
		case "movecount white":
			return "= 3"
		case "movecount black":
			return "= nope"
		case "legal e2":
			return "= e3 e4 zz"
		}
		return "? unknown"
	})

	white := e.Pocket(types.White)
	if white.Count(types.King) != 1 || white.Count(types.Pawn) != 8 || white.Count(types.Queen) != 0 {
		t.Errorf("white pocket = %v", white)
	}
	if black := e.Pocket(types.Black); len(black) != 0 {
		t.Errorf("black pocket = %v, want empty", black)
	}
	if got := e.TurnColor(); got != types.Black {
		t.Errorf("TurnColor() = %v, want black", got)
	}
	if got := e.MoveCount(types.White); got != 3 {
		t.Errorf("MoveCount(white) = %d, want 3", got)
	}
	if got := e.MoveCount(types.Black); got != 0 {
		t.Errorf("MoveCount(black) = %d, want 0 for malformed answer", got)
	}
	targets := e.LegalTargets(types.MustSquare(4, 1))
	if len(targets) != 2 || targets[0].String() != "e3" || targets[1].String() != "e4" {
		t.Errorf("LegalTargets(e2) = %v", targets)
	}
}

// flakyPeer answers state queries normally and refuses the next query named in
// refuse once.
type flakyPeer struct {
	mu     sync.Mutex
	refuse map[string]bool
}

func (f *flakyPeer) refuseOnce(cmd string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refuse[cmd] = true
}

func (f *flakyPeer) reply(cmd string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.refuse[cmd] {
		delete(f.refuse, cmd)
		return "? engine busy"
	}
	switch {
	case cmd == "board":
		return "= K white e1 0 0 1 -\nK black e8 0 0 1 -"
	case strings.HasPrefix(cmd, "pocket"):
		return "= K=1 Q=1"
	case strings.HasPrefix(cmd, "movecount"):
		return "= 1"
	case cmd == "turn":
		return "= black"
	}
	return "="
}

func TestFailedQueriesReturnLastAnswer(t *testing.T) {
	f := &flakyPeer{refuse: map[string]bool{}}
	e, _ := connectPeer(t, baseCommands, f.reply)

	if n := len(e.BoardState()); n != 2 {
		t.Fatalf("BoardState() returned %d pieces, want 2", n)
	}
	e.Pocket(types.White)
	e.MoveCount(types.Black)
	e.TurnColor()

	f.refuseOnce("board")
	f.refuseOnce("pocket white")
	f.refuseOnce("movecount black")
	f.refuseOnce("turn")

	if n := len(e.BoardState()); n != 2 {
		t.Errorf("refused board: got %d pieces, want the last 2", n)
	}
	if got := e.Pocket(types.White); got.Count(types.King) != 1 || got.Count(types.Queen) != 1 {
		t.Errorf("refused pocket: got %v, want last pocket", got)
	}
	if got := e.MoveCount(types.Black); got != 1 {
		t.Errorf("refused movecount: got %d, want 1", got)
	}
	if got := e.TurnColor(); got != types.Black {
		t.Errorf("refused turn: got %v, want black", got)
	}
}

func TestFailedQueriesWithoutHistoryAreEmpty(t *testing.T) {
	e, _ := connectPeer(t, baseCommands, func(cmd string) string { return "? engine busy" })
	if pieces := e.BoardState(); len(pieces) != 0 {
		t.Errorf("BoardState() = %v, want empty", pieces)
	}
	if p := e.Pocket(types.Black); len(p) != 0 {
		t.Errorf("Pocket(black) = %v, want empty", p)
	}
	if n := e.MoveCount(types.White); n != 0 {
		t.Errorf("MoveCount(white) = %d, want 0", n)
	}
}

func TestRefusedBoardQueryDoesNotEndGame(t *testing.T) {
	f := &flakyPeer{refuse: map[string]bool{}}
	e, _ := connectPeer(t, baseCommands, f.reply)
	factory := func(engine.GameConfig) (engine.RulesEngine, error) { return e, nil }

	s, err := session.New(factory, engine.GameConfig{})
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	if err := s.SwitchMode(session.StunMode{}); err != nil {
		t.Fatalf("SwitchMode: %v", err)
	}

	f.refuseOnce("board")
	if err := s.SelectOrAct(types.MustSquare(4, 7)); err != nil {
		t.Fatalf("stun: %v", err)
	}
	if s.GameOver() {
		t.Fatalf("game ended after one refused board query: %v", s.Result())
	}
	if n := s.Board().Len(); n != 2 {
		t.Errorf("board has %d pieces, want 2", n)
	}

	if err := s.EndTurn(); err != nil {
		t.Errorf("EndTurn after refused query: %v", err)
	}
}

func TestSetupPosition(t *testing.T) {
	e, p := connectPeer(t, baseCommands, nil)
	pos := types.Position{
		Turn: types.Black,
		Pieces: []types.PlacedPiece{
			{Kind: types.King, Color: types.White, Square: types.MustSquare(4, 0)},
			{Kind: types.Pawn, Color: types.Black, Square: types.MustSquare(0, 6), StunStacks: 1, MoveStackCount: 2},
		},
	}
	e.SetupPosition(pos)
	if got, want := p.last(), "setup black K:white:e1:0:0,P:black:a7:1:2"; got != want {
		t.Errorf("setup = %q, want %q", got, want)
	}

	pos.Pockets = &types.Pockets{White: types.Pocket{types.Queen: 1}, Black: types.Pocket{}}
	pos.Pieces = nil
	e.SetupPosition(pos)
	if got, want := p.last(), "setup black - Q=1 -"; got != want {
		t.Errorf("setup = %q, want %q", got, want)
	}
}

func TestTimeoutBreaksEngine(t *testing.T) {
	e, p := startPeer(t, engine.GameConfig{TimeoutMillis: 50}, handshakeReply(baseCommands, func(cmd string) string {
		if cmd == "board" {
			return ""
		}
		return "="
	}))
	if err := e.handshake(); err != nil {
		t.Fatalf("handshake: %v", err)
	}
	if pieces := e.BoardState(); pieces != nil {
		t.Errorf("BoardState() = %v, want nil after timeout", pieces)
	}
	if !errors.Is(e.broken, ErrTimeout) {
		t.Fatalf("broken = %v, want ErrTimeout", e.broken)
	}
	if e.Move(types.MustSquare(0, 0), types.MustSquare(0, 1)) {
		t.Error("broken engine accepted a move")
	}
	if got := p.last(); got != "board" {
		t.Errorf("command sent after timeout: %q", got)
	}
	e.Close()
}

func TestCloseSendsQuit(t *testing.T) {
	e, p := connectPeer(t, baseCommands, nil)
	e.Close()
	<-p.closed
	if got := p.last(); got != "quit" {
		t.Errorf("last command = %q, want quit", got)
	}
	// second close is a no-op
	e.Close()
}

func TestCommandError(t *testing.T) {
	e, _ := startPeer(t, engine.GameConfig{TimeoutMillis: 2000}, func(cmd string) string {
		return "? occupied square"
	})
	e.mu.Lock()
	_, err := e.sendCommand("place K white e1")
	e.mu.Unlock()
	var cerr *CommandError
	if !errors.As(err, &cerr) {
		t.Fatalf("err = %v, want *CommandError", err)
	}
	if cerr.Reason != "occupied square" || cerr.Command != "place K white e1" {
		t.Errorf("CommandError = %+v", cerr)
	}
}
