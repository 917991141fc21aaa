// Package engine defines the interface to the variant-chess rules engine.
package engine

import "pocketchess/types"

// RulesEngine is the rules collaborator consulted by a game session. It owns the
// board, move legality, stun bookkeeping and the reserves; callers never
// reimplement any of that and only read results back.
type RulesEngine interface {
	// BoardState returns every piece currently on the board.
	BoardState() []types.PieceSnapshot

	// LegalTargets returns the squares the piece on sq may move to.
	LegalTargets(sq types.Square) []types.Square

	// Place drops a piece of kind from color's reserve onto sq.
	Place(kind types.PieceKind, color types.Color, sq types.Square) bool

	// Move moves the piece on from to to.
	Move(from, to types.Square) bool

	// AddStun adds amount stun stacks to the piece on sq.
	AddStun(sq types.Square, amount int) bool

	// Promote replaces the pawn on sq with a piece of kind.
	Promote(sq types.Square, kind types.PieceKind) bool

	// Pocket returns color's reserve counts.
	Pocket(color types.Color) types.Pocket

	// TurnColor returns the side to act.
	TurnColor() types.Color

	// MoveCount returns the number of completed turns of color.
	MoveCount(color types.Color) int

	// EndTurn closes the current turn.
	EndTurn()

	// RecomputeMovePatterns rebuilds movement patterns for every piece.
	RecomputeMovePatterns()

	// SetupPosition replaces the board, turn and optionally the reserves.
	SetupPosition(pos types.Position)
}

// RoyalSuccessor is implemented by engines that can move royal status to another piece.
type RoyalSuccessor interface {
	SucceedRoyal(sq types.Square) bool
}

// Disguiser is implemented by engines that let a royal piece take another kind's identity.
type Disguiser interface {
	Disguise(sq types.Square, kind types.PieceKind) bool
}

// CapabilityReporter is implemented by engines whose optional operations are only
// known at runtime, such as a remote engine that advertises its command set.
type CapabilityReporter interface {
	Capabilities() Capabilities
}

// Capabilities holds the optional engine operations. A nil slot means the engine
// does not support the operation.
type Capabilities struct {
	SucceedRoyal func(sq types.Square) bool
	Disguise     func(sq types.Square, kind types.PieceKind) bool
}

// ProbeCapabilities resolves the optional operations of e once.
func ProbeCapabilities(e RulesEngine) Capabilities {
	if r, ok := e.(CapabilityReporter); ok {
		return r.Capabilities()
	}
	var c Capabilities
	if s, ok := e.(RoyalSuccessor); ok {
		c.SucceedRoyal = s.SucceedRoyal
	}
	if d, ok := e.(Disguiser); ok {
		c.Disguise = d.Disguise
	}
	return c
}

// Closer is implemented by engines holding external resources.
type Closer interface {
	Close()
}

// GameConfig holds configuration for starting a new engine instance.
type GameConfig struct {
	EnginePath    string
	EngineArgs    []string
	TimeoutMillis int
	WhiteReserves types.Pocket
	BlackReserves types.Pocket
}

// Factory starts a fresh engine instance for cfg.
type Factory func(cfg GameConfig) (RulesEngine, error)

// DefaultConfig returns a reasonable default configuration.
func DefaultConfig() GameConfig {
	return GameConfig{
		EnginePath:    "pocketchess-engine",
		TimeoutMillis: 5000,
		WhiteReserves: types.DefaultReserves(),
		BlackReserves: types.DefaultReserves(),
	}
}
