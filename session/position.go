package session

import (
	"fmt"

	"pocketchess/fixtures"
	"pocketchess/types"
)

// LoadPosition installs the named fixture into the engine. name may carry a
// ":white" or ":black" suffix; a non-nil turnOverride wins over it. An unknown
// name changes nothing but the status.
//
// The engine's move counters are read back after setup, so a loaded position
// gets a fresh grace period before royal elimination is checked.
func (s *Session) LoadPosition(name string, turnOverride *types.Color) error {
	s.log.Printf("session: LoadPosition(%q)", name)
	if s.gameOver {
		return s.finished()
	}
	pos, err := s.fixtures.Get(name, turnOverride)
	if err != nil {
		base, _ := fixtures.SplitName(name)
		return s.reject(UnknownFixture, "Position not found: %s", base)
	}

	s.eng.SetupPosition(pos)
	s.eng.RecomputeMovePatterns()
	s.selection = nil
	s.lastMove = nil
	if _, ok := s.mode.(PromoteMode); ok {
		s.mode = DropMode{}
	}

	base, _ := fixtures.SplitName(name)
	s.status = fmt.Sprintf("Loaded %s (%s to move)", base, pos.Turn)
	s.emit(Event{Kind: EventSetup, Color: pos.Turn, Fixture: base})
	s.refresh()
	return nil
}
