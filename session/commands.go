package session

import (
	"fmt"

	"pocketchess/types"
)

// SwitchMode enters mode m. Promote cannot be entered this way, and a pending
// promotion must be resolved first.
func (s *Session) SwitchMode(m Mode) error {
	if s.gameOver {
		return s.finished()
	}
	if m == nil {
		return s.reject(RejectedAction, "Unknown mode")
	}
	s.log.Printf("session: SwitchMode(%s) from %s", m.Name(), s.mode.Name())
	if _, ok := m.(PromoteMode); ok {
		return s.reject(RejectedAction, "Promotion starts when a pawn reaches the last rank")
	}
	if _, ok := s.mode.(PromoteMode); ok {
		return s.reject(RejectedAction, "Choose promotion (Tab cycle)")
	}
	s.mode = m
	s.selection = nil
	s.status = modeTitle(m)
	return nil
}

// ChooseDropKind arms kind. It must be eligible in the current mode.
func (s *Session) ChooseDropKind(kind types.PieceKind) error {
	if s.gameOver {
		return s.finished()
	}
	if !kind.Valid() {
		return s.reject(RejectedAction, "Unknown piece")
	}
	if !kindEligible(s.mode, kind) {
		return s.reject(RejectedAction, ineligibleReason(s.mode))
	}
	s.dropKind = kind
	s.status = "Selected " + kind.Name()
	return nil
}

// CycleDropKind arms the next (dir > 0) or previous (dir < 0) eligible kind,
// wrapping at either end. When the armed kind is not eligible in the current
// mode, forward starts at the first eligible kind and backward at the last.
func (s *Session) CycleDropKind(dir int) error {
	if s.gameOver {
		return s.finished()
	}
	if dir == 0 {
		return s.reject(RejectedAction, "Invalid cycle direction")
	}
	kinds := EligibleKinds(s.mode)
	n := len(kinds)
	idx := -1
	for i, k := range kinds {
		if k == s.dropKind {
			idx = i
			break
		}
	}
	var next int
	switch {
	case idx < 0 && dir > 0:
		next = 0
	case idx < 0:
		next = n - 1
	case dir > 0:
		next = (idx + 1) % n
	default:
		next = (idx - 1 + n) % n
	}
	s.dropKind = kinds[next]
	s.status = "Selected " + s.dropKind.Name()
	return nil
}

func ineligibleReason(m Mode) string {
	switch m.(type) {
	case PromoteMode:
		return "Cannot promote to Pawn or King"
	case DisguiseMode:
		return "Cannot disguise as King"
	}
	return "Unknown piece"
}

// SelectOrAct applies the current mode to sq.
func (s *Session) SelectOrAct(sq types.Square) error {
	s.log.Printf("session: SelectOrAct(%s) mode=%s", sq, s.mode.Name())
	if s.gameOver {
		return s.finished()
	}
	switch m := s.mode.(type) {
	case DropMode:
		return s.drop(sq)
	case MoveMode:
		return s.moveAt(sq)
	case StunMode:
		return s.stun(sq)
	case PromoteMode:
		return s.promote(m.Pending)
	case SuccessionMode:
		return s.succeed(sq)
	case DisguiseMode:
		return s.disguise(sq)
	}
	return s.reject(RejectedAction, "Unknown mode")
}

// EndTurn closes the current turn in any mode. A pending promotion is abandoned
// and the session returns to drop mode.
func (s *Session) EndTurn() error {
	s.log.Printf("session: EndTurn mode=%s", s.mode.Name())
	if s.gameOver {
		return s.finished()
	}
	color := s.turn
	s.eng.EndTurn()
	s.selection = nil
	s.status = "Turn passed"
	if _, ok := s.mode.(PromoteMode); ok {
		s.mode = DropMode{}
		s.status = "Promotion abandoned, turn passed"
	}
	s.emit(Event{Kind: EventEndTurn, Color: color})
	s.refresh()
	return nil
}

func (s *Session) drop(sq types.Square) error {
	color, kind := s.turn, s.dropKind
	if s.pockets.For(color).Count(kind) <= 0 {
		return s.reject(RejectedAction, "No piece in pocket")
	}
	if !s.eng.Place(kind, color, sq) {
		return s.reject(RejectedAction, "Cannot drop there")
	}
	s.lastMove = &LastMove{To: sq}
	s.status = "Dropped " + kind.String() + " at " + coords(sq)
	s.emit(Event{Kind: EventDrop, Color: color, Piece: kind, To: sq})
	s.eng.RecomputeMovePatterns()
	s.refresh()
	return nil
}

func (s *Session) moveAt(sq types.Square) error {
	if s.selection == nil {
		p, ok := s.board.At(sq)
		if !ok || p.Color != s.turn || p.IsStunned() {
			return s.reject(RejectedAction, "Select your piece")
		}
		targets := s.eng.LegalTargets(sq)
		if len(targets) == 0 {
			return s.reject(RejectedAction, "No legal moves")
		}
		sel := &Selection{Square: sq, Targets: make([]types.Square, len(targets))}
		copy(sel.Targets, targets)
		s.selection = sel
		s.status = "Select destination"
		return nil
	}

	from := s.selection.Square
	if sq == from {
		s.selection = nil
		s.status = "Selection cleared"
		return nil
	}
	if !s.selection.HasTarget(sq) {
		return s.reject(RejectedAction, "Not a legal target")
	}

	mover, _ := s.board.At(from)
	_, capture := s.board.At(sq)
	if !s.eng.Move(from, sq) {
		return s.reject(RejectedAction, "Move rejected")
	}
	s.selection = nil
	s.lastMove = &LastMove{From: &from, To: sq}
	s.emit(Event{Kind: EventMove, Color: mover.Color, Piece: mover.Kind, From: &from, To: sq, Capture: capture})
	s.eng.RecomputeMovePatterns()
	if mover.Kind == types.Pawn && sq.Rank() == mover.Color.TerminalRank() {
		s.mode = PromoteMode{Pending: sq}
		s.status = "Choose promotion (Tab cycle)"
	} else {
		s.status = "Moved"
	}
	s.refresh()
	return nil
}

func (s *Session) stun(sq types.Square) error {
	if !s.eng.AddStun(sq, 1) {
		return s.reject(RejectedAction, "Invalid stun target")
	}
	s.lastMove = &LastMove{To: sq}
	s.status = "Added stun at " + coords(sq)
	s.emit(Event{Kind: EventStun, Color: s.turn, To: sq})
	s.refresh()
	return nil
}

func (s *Session) promote(pending types.Square) error {
	kind := s.dropKind
	if kind == types.Pawn || kind == types.King {
		return s.reject(RejectedAction, "Cannot promote to Pawn or King")
	}
	color := s.turn
	if !s.eng.Promote(pending, kind) {
		return s.reject(RejectedAction, "Cannot promote to this piece")
	}
	s.lastPromoted = &kind
	s.mode = DropMode{}
	s.lastMove = &LastMove{To: pending}
	s.status = "Promoted pawn to " + kind.Name()
	s.emit(Event{Kind: EventPromote, Color: color, Piece: kind, To: pending})
	s.eng.RecomputeMovePatterns()
	s.refresh()
	return nil
}

func (s *Session) succeed(sq types.Square) error {
	if s.caps.SucceedRoyal == nil {
		return s.reject(CapabilityUnavailable, "Engine does not support royal succession")
	}
	p, ok := s.board.At(sq)
	if !ok || p.Color != s.turn || p.IsStunned() || p.Kind == types.King {
		return s.reject(RejectedAction, "Invalid succession target")
	}
	if !s.caps.SucceedRoyal(sq) {
		return s.reject(RejectedAction, "Succession rejected")
	}
	s.lastMove = &LastMove{To: sq}
	s.status = "Royal status passed to " + p.Kind.Name() + " at " + coords(sq)
	s.emit(Event{Kind: EventSuccession, Color: p.Color, Piece: p.Kind, To: sq})
	s.refresh()
	return nil
}

func (s *Session) disguise(sq types.Square) error {
	if s.caps.Disguise == nil {
		return s.reject(CapabilityUnavailable, "Engine does not support disguise")
	}
	p, ok := s.board.At(sq)
	if !ok || p.Color != s.turn || p.Kind != types.King {
		return s.reject(RejectedAction, "Select your King")
	}
	kind := s.dropKind
	if kind == types.King {
		return s.reject(RejectedAction, "Cannot disguise as King")
	}
	if !s.caps.Disguise(sq, kind) {
		return s.reject(RejectedAction, "Disguise rejected")
	}
	s.lastMove = &LastMove{To: sq}
	s.status = "King disguised as " + kind.Name()
	s.emit(Event{Kind: EventDisguise, Color: p.Color, Piece: kind, To: sq})
	s.refresh()
	return nil
}

// coords renders a square the way status lines show it: "file,rank".
func coords(sq types.Square) string {
	return fmt.Sprintf("%d,%d", sq.File(), sq.Rank())
}
