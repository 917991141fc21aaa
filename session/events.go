package session

import "pocketchess/types"

// EventKind identifies an accepted action.
type EventKind int

const (
	EventDrop EventKind = iota
	EventMove
	EventStun
	EventPromote
	EventSuccession
	EventDisguise
	EventEndTurn
	EventSetup
	EventReset
	EventGameOver
)

// Event describes an accepted action. Only the fields relevant to Kind are set:
// Piece is the dropped, moved, promoted-to or disguise kind; From is nil for
// actions without an origin square.
type Event struct {
	Kind    EventKind
	Color   types.Color
	Piece   types.PieceKind
	From    *types.Square
	To      types.Square
	Capture bool
	Fixture string
	Outcome types.Outcome
}
