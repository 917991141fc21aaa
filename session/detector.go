package session

import "pocketchess/types"

// GracePlies is the number of completed turns, both colors together, before royal
// elimination is checked. Boards are still being populated by drops until then.
const GracePlies = 2

// DetectRoyalElimination decides the game state from the board and the number of
// completed turns.
func DetectRoyalElimination(board types.BoardSnapshot, plies int) types.Outcome {
	if plies < GracePlies {
		return types.Ongoing
	}
	white := board.HasRoyal(types.White)
	black := board.HasRoyal(types.Black)
	switch {
	case !white && !black:
		return types.Draw
	case !white:
		return types.WinFor(types.Black)
	case !black:
		return types.WinFor(types.White)
	}
	return types.Ongoing
}
