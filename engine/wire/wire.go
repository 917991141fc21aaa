package wire

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"pocketchess/engine"
	"pocketchess/types"
)

// ProtocolVersion is the protocol revision this client speaks.
const ProtocolVersion = "1"

var debugLog = log.New(io.Discard, "", log.Ltime|log.Lmicroseconds)

// SetDebugLog routes protocol traces to l.
func SetDebugLog(l *log.Logger) {
	if l != nil {
		debugLog = l
	}
}

// ErrTimeout is returned when the engine does not answer in time. The engine is
// unusable afterwards.
var ErrTimeout = errors.New("engine did not respond in time")

// requiredCommands must be advertised by every engine.
var requiredCommands = []string{
	"new_game", "board", "legal", "place", "move", "stun", "promote",
	"pocket", "turn", "movecount", "endturn", "patterns", "setup", "quit",
}

// CommandError is a '?' response from the engine.
type CommandError struct {
	Command string
	Reason  string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("engine rejected %q: %s", e.Command, e.Reason)
}

// Engine implements engine.RulesEngine by talking to a rules engine subprocess.
type Engine struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader

	config   engine.GameConfig
	commands map[string]bool
	broken   error

	// Last good answers to the state queries, returned when a query fails so
	// that one refused read never shows the session an empty game.
	lastBoard  []types.PieceSnapshot
	lastPocket map[types.Color]types.Pocket
	lastCount  map[types.Color]int
	lastTurn   types.Color

	mu sync.Mutex
}

// New creates an engine client for cfg. Call Connect before use.
func New(cfg engine.GameConfig) *Engine {
	return &Engine{config: cfg}
}

// Dial starts and connects an engine. It satisfies engine.Factory.
func Dial(cfg engine.GameConfig) (engine.RulesEngine, error) {
	e := New(cfg)
	if err := e.Connect(); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

// newWithPipes attaches the client to an already running peer.
func newWithPipes(cfg engine.GameConfig, r io.Reader, w io.WriteCloser) *Engine {
	return &Engine{
		config: cfg,
		stdin:  w,
		stdout: bufio.NewReader(r),
	}
}

// Connect starts the engine subprocess and starts a new game.
func (e *Engine) Connect() error {
	e.cmd = exec.Command(e.config.EnginePath, e.config.EngineArgs...)

	var err error
	e.stdin, err = e.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to get stdin pipe: %w", err)
	}

	stdout, err := e.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to get stdout pipe: %w", err)
	}
	e.stdout = bufio.NewReader(stdout)

	// Discard stderr to prevent blocking
	e.cmd.Stderr = nil

	if err := e.cmd.Start(); err != nil {
		return fmt.Errorf("failed to start rules engine: %w", err)
	}
	return e.handshake()
}

// handshake checks the protocol version, records the advertised command set and
// starts a game with the configured reserves.
func (e *Engine) handshake() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	version, err := e.sendCommand("protocol_version")
	if err != nil {
		return fmt.Errorf("failed to read protocol version: %w", err)
	}
	if strings.TrimSpace(version) != ProtocolVersion {
		return fmt.Errorf("unsupported protocol version %q", version)
	}

	list, err := e.sendCommand("list_commands")
	if err != nil {
		return fmt.Errorf("failed to list commands: %w", err)
	}
	e.commands = make(map[string]bool)
	for _, name := range strings.Fields(list) {
		e.commands[name] = true
	}
	for _, name := range requiredCommands {
		if !e.commands[name] {
			return fmt.Errorf("engine lacks required command %q", name)
		}
	}

	white := e.config.WhiteReserves
	if white == nil {
		white = types.DefaultReserves()
	}
	black := e.config.BlackReserves
	if black == nil {
		black = types.DefaultReserves()
	}
	if _, err := e.sendCommand(fmt.Sprintf("new_game %s %s", encodeReserves(white), encodeReserves(black))); err != nil {
		return fmt.Errorf("failed to start game: %w", err)
	}
	return nil
}

// sendCommand sends a command and returns the response payload.
// Must be called while holding the lock.
func (e *Engine) sendCommand(cmd string) (string, error) {
	if e.broken != nil {
		return "", e.broken
	}
	debugLog.Printf("sendCommand: sending '%s'", cmd)

	if _, err := fmt.Fprintf(e.stdin, "%s\n", cmd); err != nil {
		debugLog.Printf("sendCommand: write error: %v", err)
		return "", fmt.Errorf("failed to send command: %w", err)
	}

	type reply struct {
		text string
		err  error
	}
	done := make(chan reply, 1)
	go func() {
		text, err := e.readResponse()
		done <- reply{text, err}
	}()

	var r reply
	if e.config.TimeoutMillis > 0 {
		select {
		case r = <-done:
		case <-time.After(time.Duration(e.config.TimeoutMillis) * time.Millisecond):
			debugLog.Printf("sendCommand: timeout waiting for '%s'", cmd)
			e.broken = ErrTimeout
			e.kill()
			return "", ErrTimeout
		}
	} else {
		r = <-done
	}
	if r.err != nil {
		debugLog.Printf("sendCommand: read error: %v", r.err)
		e.broken = r.err
		return "", r.err
	}

	result := r.text
	debugLog.Printf("sendCommand: complete response '%s'", result)

	// Error response starts with '?'
	if strings.HasPrefix(result, "?") {
		return "", &CommandError{Command: cmd, Reason: strings.TrimSpace(strings.TrimPrefix(result, "?"))}
	}
	if !strings.HasPrefix(result, "=") {
		return "", fmt.Errorf("malformed response to %q: %q", cmd, result)
	}
	return strings.TrimPrefix(strings.TrimPrefix(result, "="), " "), nil
}

// readResponse reads lines until the empty line that ends a response.
func (e *Engine) readResponse() (string, error) {
	var response strings.Builder
	for {
		line, err := e.stdout.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read response: %w", err)
		}
		line = strings.TrimRight(line, "\r\n")

		// Empty line signals end of response
		if line == "" {
			if response.Len() == 0 {
				continue
			}
			break
		}
		if response.Len() > 0 {
			response.WriteString("\n")
		}
		response.WriteString(line)
	}
	return response.String(), nil
}

// accept sends cmd and reports whether the engine accepted it.
func (e *Engine) accept(cmd string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.sendCommand(cmd); err != nil {
		debugLog.Printf("accept: %v", err)
		return false
	}
	return true
}

// query sends cmd and returns its payload, or "" and false on any failure.
func (e *Engine) query(cmd string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	out, err := e.sendCommand(cmd)
	if err != nil {
		debugLog.Printf("query: %v", err)
		return "", false
	}
	return out, true
}

// BoardState returns every piece on the board. Malformed lines are skipped. When
// the query fails, the last board the engine reported is returned.
func (e *Engine) BoardState() []types.PieceSnapshot {
	out, ok := e.query("board")
	if !ok {
		return append([]types.PieceSnapshot(nil), e.lastBoard...)
	}
	var pieces []types.PieceSnapshot
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		p, err := decodePieceLine(line)
		if err != nil {
			debugLog.Printf("BoardState: %v", err)
			continue
		}
		pieces = append(pieces, p)
	}
	e.lastBoard = append([]types.PieceSnapshot(nil), pieces...)
	return pieces
}

// LegalTargets returns the destinations of the piece on sq.
func (e *Engine) LegalTargets(sq types.Square) []types.Square {
	out, ok := e.query("legal " + squareToWire(sq))
	if !ok {
		return nil
	}
	var targets []types.Square
	for _, f := range strings.Fields(out) {
		t, err := wireToSquare(f)
		if err != nil {
			debugLog.Printf("LegalTargets: %v", err)
			continue
		}
		targets = append(targets, t)
	}
	return targets
}

// Place drops a piece from color's reserve.
func (e *Engine) Place(kind types.PieceKind, color types.Color, sq types.Square) bool {
	return e.accept(fmt.Sprintf("place %s %s %s", kindToWire(kind), colorToWire(color), squareToWire(sq)))
}

// Move moves the piece on from to to.
func (e *Engine) Move(from, to types.Square) bool {
	return e.accept(fmt.Sprintf("move %s %s", squareToWire(from), squareToWire(to)))
}

// AddStun adds stun stacks to the piece on sq.
func (e *Engine) AddStun(sq types.Square, amount int) bool {
	return e.accept(fmt.Sprintf("stun %s %d", squareToWire(sq), amount))
}

// Promote replaces the pawn on sq.
func (e *Engine) Promote(sq types.Square, kind types.PieceKind) bool {
	return e.accept(fmt.Sprintf("promote %s %s", squareToWire(sq), kindToWire(kind)))
}

func (e *Engine) succeedRoyal(sq types.Square) bool {
	return e.accept("succeed " + squareToWire(sq))
}

func (e *Engine) disguise(sq types.Square, kind types.PieceKind) bool {
	return e.accept(fmt.Sprintf("disguise %s %s", squareToWire(sq), kindToWire(kind)))
}

// Capabilities exposes the optional operations the engine advertised at handshake.
func (e *Engine) Capabilities() engine.Capabilities {
	e.mu.Lock()
	defer e.mu.Unlock()
	var c engine.Capabilities
	if e.commands["succeed"] {
		c.SucceedRoyal = e.succeedRoyal
	}
	if e.commands["disguise"] {
		c.Disguise = e.disguise
	}
	return c
}

// Pocket returns color's reserves. A failed or unreadable answer yields the last
// pocket read for color, empty if there is none.
func (e *Engine) Pocket(color types.Color) types.Pocket {
	out, ok := e.query("pocket " + colorToWire(color))
	if !ok {
		return e.lastPocket[color].Clone()
	}
	p, err := decodeReserves(out)
	if err != nil {
		debugLog.Printf("Pocket: %v", err)
		return e.lastPocket[color].Clone()
	}
	if e.lastPocket == nil {
		e.lastPocket = make(map[types.Color]types.Pocket, 2)
	}
	e.lastPocket[color] = p.Clone()
	return p
}

// TurnColor returns the side to act, or the last side read when the query fails.
func (e *Engine) TurnColor() types.Color {
	out, ok := e.query("turn")
	if !ok {
		return e.lastTurn
	}
	c, err := wireToColor(out)
	if err != nil {
		debugLog.Printf("TurnColor: %v", err)
		return e.lastTurn
	}
	e.lastTurn = c
	return c
}

// MoveCount returns color's completed turns, or the last count read when the
// query fails.
func (e *Engine) MoveCount(color types.Color) int {
	out, ok := e.query("movecount " + colorToWire(color))
	if !ok {
		return e.lastCount[color]
	}
	n, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil || n < 0 {
		debugLog.Printf("MoveCount: invalid count %q", out)
		return e.lastCount[color]
	}
	if e.lastCount == nil {
		e.lastCount = make(map[types.Color]int, 2)
	}
	e.lastCount[color] = n
	return n
}

// EndTurn closes the current turn.
func (e *Engine) EndTurn() {
	e.accept("endturn")
}

// RecomputeMovePatterns asks the engine to rebuild movement patterns.
func (e *Engine) RecomputeMovePatterns() {
	e.accept("patterns")
}

// SetupPosition installs pos in one command.
func (e *Engine) SetupPosition(pos types.Position) {
	cmd := fmt.Sprintf("setup %s %s", colorToWire(pos.Turn), encodePieces(pos.Pieces))
	if pos.Pockets != nil {
		cmd += fmt.Sprintf(" %s %s", encodeReserves(pos.Pockets.White), encodeReserves(pos.Pockets.Black))
	}
	e.accept(cmd)
}

// Close shuts down the engine subprocess.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stdin != nil {
		if e.broken == nil {
			e.sendCommand("quit")
		}
		e.stdin.Close()
		e.stdin = nil
	}
	if e.cmd != nil && e.cmd.Process != nil {
		e.cmd.Wait()
		e.cmd = nil
	}
}

// kill terminates an unresponsive subprocess. Must be called while holding the lock.
func (e *Engine) kill() {
	if e.stdin != nil {
		e.stdin.Close()
		e.stdin = nil
	}
	if e.cmd != nil && e.cmd.Process != nil {
		e.cmd.Process.Kill()
	}
}
