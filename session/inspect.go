package session

import (
	"fmt"
	"strings"

	"pocketchess/types"
)

// Inspect describes the piece on sq, including its current legal targets.
func (s *Session) Inspect(sq types.Square) string {
	p, ok := s.board.At(sq)
	if !ok {
		return fmt.Sprintf("%s (%s): empty", sq, coords(sq))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s): %s %s", sq, coords(sq), p.Color, p.Kind.Name())
	if p.IsRoyal {
		b.WriteString(", royal")
	}
	if p.DisguisedAs != nil {
		fmt.Fprintf(&b, ", disguised as %s", p.DisguisedAs.Name())
	}
	fmt.Fprintf(&b, ", stun %d, move stack %d", p.StunStacks, p.MoveStackCount)
	b.WriteString(", targets: ")
	b.WriteString(squareList(s.eng.LegalTargets(sq)))
	return b.String()
}

// DebugReport dumps the whole session state as plain text.
func (s *Session) DebugReport() string {
	var b strings.Builder
	fmt.Fprintf(&b, "mode: %s\n", s.mode.Name())
	if pm, ok := s.mode.(PromoteMode); ok {
		fmt.Fprintf(&b, "pending promotion: %s\n", pm.Pending)
	}
	fmt.Fprintf(&b, "turn: %s\n", s.turn)
	fmt.Fprintf(&b, "moves: white %d, black %d\n", s.moveCounts[0], s.moveCounts[1])
	fmt.Fprintf(&b, "armed kind: %s (%s)\n", s.dropKind.Name(), s.dropKind)
	if k, ok := s.LastPromoted(); ok {
		fmt.Fprintf(&b, "last promoted: %s\n", k.Name())
	}
	if s.selection != nil {
		fmt.Fprintf(&b, "selection: %s -> %s\n", s.selection.Square, squareList(s.selection.Targets))
	}
	if s.lastMove != nil {
		from := "none"
		if s.lastMove.From != nil {
			from = s.lastMove.From.String()
		}
		fmt.Fprintf(&b, "last move: %s -> %s\n", from, s.lastMove.To)
	}
	fmt.Fprintf(&b, "game over: %v", s.gameOver)
	if s.gameOver {
		fmt.Fprintf(&b, " (%s)", s.result)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "status: %s\n", s.status)
	fmt.Fprintf(&b, "capabilities: succeed=%v disguise=%v\n", s.caps.SucceedRoyal != nil, s.caps.Disguise != nil)

	b.WriteString("pockets:\n")
	fmt.Fprintf(&b, "  white: %s\n", pocketLine(s.pockets.White))
	fmt.Fprintf(&b, "  black: %s\n", pocketLine(s.pockets.Black))

	fmt.Fprintf(&b, "pieces (%d):\n", s.board.Len())
	for _, p := range s.board.Pieces() {
		fmt.Fprintf(&b, "  %s %s %s stun=%d stack=%d", p.Square, p.Color, p.Kind, p.StunStacks, p.MoveStackCount)
		if p.IsRoyal {
			b.WriteString(" royal")
		}
		if p.DisguisedAs != nil {
			fmt.Fprintf(&b, " as=%s", *p.DisguisedAs)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func squareList(sqs []types.Square) string {
	if len(sqs) == 0 {
		return "none"
	}
	parts := make([]string, len(sqs))
	for i, sq := range sqs {
		parts[i] = sq.String()
	}
	return strings.Join(parts, " ")
}

func pocketLine(p types.Pocket) string {
	var parts []string
	for _, k := range types.AllKinds {
		if n := p.Count(k); n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", k, n))
		}
	}
	if len(parts) == 0 {
		return "empty"
	}
	return strings.Join(parts, " ")
}
