package session

import (
	"strings"

	"pocketchess/types"
)

// Mode is the interaction mode of a session. The set of modes is closed: MoveMode,
// DropMode, StunMode, PromoteMode, SuccessionMode and DisguiseMode.
type Mode interface {
	Name() string
	isMode()
}

// MoveMode selects an own piece, then one of its legal targets.
type MoveMode struct{}

// DropMode places the armed kind from the side's reserve.
type DropMode struct{}

// StunMode adds one stun stack to the clicked piece.
type StunMode struct{}

// PromoteMode waits for the promotion kind of the pawn on Pending.
type PromoteMode struct {
	Pending types.Square
}

// SuccessionMode hands royal status to the clicked piece.
type SuccessionMode struct{}

// DisguiseMode lets the side's King take on the armed kind.
type DisguiseMode struct{}

func (MoveMode) Name() string       { return "move" }
func (DropMode) Name() string       { return "drop" }
func (StunMode) Name() string       { return "stun" }
func (PromoteMode) Name() string    { return "promote" }
func (SuccessionMode) Name() string { return "succession" }
func (DisguiseMode) Name() string   { return "disguise" }

func (MoveMode) isMode()       {}
func (DropMode) isMode()       {}
func (StunMode) isMode()       {}
func (PromoteMode) isMode()    {}
func (SuccessionMode) isMode() {}
func (DisguiseMode) isMode()   {}

// ModeByName returns the player-selectable mode called name. Promote is not
// selectable and is never returned.
func ModeByName(name string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "move":
		return MoveMode{}, true
	case "drop":
		return DropMode{}, true
	case "stun":
		return StunMode{}, true
	case "succession", "succeed":
		return SuccessionMode{}, true
	case "disguise":
		return DisguiseMode{}, true
	}
	return nil, false
}

func modeTitle(m Mode) string {
	n := m.Name()
	return strings.ToUpper(n[:1]) + n[1:] + " mode"
}

// EligibleKinds returns the kinds the armed kind may take in mode m, in cycling order.
func EligibleKinds(m Mode) []types.PieceKind {
	var excluded func(types.PieceKind) bool
	switch m.(type) {
	case PromoteMode:
		excluded = func(k types.PieceKind) bool { return k == types.Pawn || k == types.King }
	case DisguiseMode:
		excluded = func(k types.PieceKind) bool { return k == types.King }
	default:
		out := make([]types.PieceKind, len(types.AllKinds))
		copy(out, types.AllKinds)
		return out
	}
	out := make([]types.PieceKind, 0, len(types.AllKinds))
	for _, k := range types.AllKinds {
		if !excluded(k) {
			out = append(out, k)
		}
	}
	return out
}

func kindEligible(m Mode, kind types.PieceKind) bool {
	for _, k := range EligibleKinds(m) {
		if k == kind {
			return true
		}
	}
	return false
}
