package ui

import (
	"fmt"

	"github.com/rivo/tview"

	"pocketchess/session"
	"pocketchess/types"
)

// GameInfoPanel displays turn, mode, reserves and the piece under focus alongside the board.
type GameInfoPanel struct {
	box    *tview.TextView
	sess   *session.Session
	cursor types.Square
}

// NewGameInfoPanel creates a new game info panel.
func NewGameInfoPanel() *GameInfoPanel {
	panel := &GameInfoPanel{
		box: tview.NewTextView(),
	}

	panel.box.SetDynamicColors(true)
	panel.box.SetBorder(false)
	panel.box.SetTextAlign(tview.AlignLeft)

	return panel
}

// Box returns the underlying tview component.
func (p *GameInfoPanel) Box() *tview.TextView {
	return p.box
}

// SetSession updates the panel with a new session.
func (p *GameInfoPanel) SetSession(s *session.Session) {
	p.sess = s
	p.refresh()
}

// SetCursor sets the square whose piece is described when nothing is selected.
func (p *GameInfoPanel) SetCursor(sq types.Square) {
	p.cursor = sq
	p.refresh()
}

// refresh updates the panel text.
func (p *GameInfoPanel) refresh() {
	if p.sess == nil {
		p.box.SetText("")
		return
	}
	s := p.sess

	var text string

	text += "[white::b]Game[-:-:-]\n"
	text += "[dimgray]──────────────────────[-:-:-]\n"
	text += fmt.Sprintf("[white]Turn:[-:-:-] %s\n", s.Turn().Title())
	text += fmt.Sprintf("[white]Moves:[-:-:-] W %d  B %d\n", s.MoveCount(types.White), s.MoveCount(types.Black))
	text += fmt.Sprintf("[white]Mode:[-:-:-] %s\n", s.Mode().Name())
	if _, ok := s.Mode().(session.PromoteMode); ok {
		text += fmt.Sprintf("[yellow]Promote to:[-:-:-] %s\n", s.DropKind().Name())
	} else {
		text += fmt.Sprintf("[white]Drop:[-:-:-] %s\n", s.DropKind().Name())
	}
	text += fmt.Sprintf("[white]Status:[-:-:-] %s\n", s.Status())
	if k, ok := s.LastPromoted(); ok {
		text += fmt.Sprintf("[green]✓ Promoted:[-:-:-] %s\n", k.Name())
	}
	if s.GameOver() {
		text += fmt.Sprintf("[red::b]%s[-:-:-]\n", s.Result())
	}

	text += "\n[white::b]Reserves[-:-:-]\n"
	text += "[dimgray]──────────────────────[-:-:-]\n"
	text += "[dimgray]kind        W   B[-]\n"
	pockets := s.Pockets()
	for _, k := range types.AllKinds {
		w, b := pockets.White.Count(k), pockets.Black.Count(k)
		if w == 0 && b == 0 {
			continue
		}
		text += fmt.Sprintf("%-11s %2d  %2d\n", k.Name(), w, b)
	}

	focus := p.cursor
	label := "Cursor"
	if sel := s.Selection(); sel != nil {
		focus = sel.Square
		label = "Selected"
	}
	text += fmt.Sprintf("\n[white::b]%s[-:-:-] %s\n", label, focus)
	text += "[dimgray]──────────────────────[-:-:-]\n"
	text += describePiece(s.Board(), focus)

	if sel := s.Selection(); sel != nil {
		text += fmt.Sprintf("[dimgray]targets:[-] %d\n", len(sel.Targets))
	}

	p.box.SetText(text)
}

// describePiece renders the piece on sq from the current snapshot.
func describePiece(board types.BoardSnapshot, sq types.Square) string {
	pc, ok := board.At(sq)
	if !ok {
		return "[dimgray]  (empty)[-]\n"
	}
	text := fmt.Sprintf("%s %s\n", pc.Color.Title(), pc.Kind.Name())
	if pc.IsRoyal {
		text += "[yellow]royal[-]\n"
	}
	if pc.DisguisedAs != nil {
		text += fmt.Sprintf("disguised as %s\n", pc.DisguisedAs.Name())
	}
	if pc.IsStunned() {
		text += fmt.Sprintf("[red]stunned %d[-]\n", pc.StunStacks)
	}
	if pc.MoveStackCount > 0 {
		text += fmt.Sprintf("move stack %d\n", pc.MoveStackCount)
	}
	return text
}

// CreateGameLayout creates the main game layout with board and side panel.
func CreateGameLayout(board *ChessBoardUI, hint *tview.TextView) *tview.Flex {
	mainFlex := tview.NewFlex()
	RebuildNormalLayout(mainFlex, board, hint)
	return mainFlex
}

// CreateCenteredForm creates a centered form container for the setup screen.
func CreateCenteredForm(form *tview.Flex, maxWidth int) *tview.Flex {
	centered := tview.NewFlex().SetDirection(tview.FlexColumn)
	centered.AddItem(nil, 0, 1, false)        // Left spacer
	centered.AddItem(form, maxWidth, 0, true) // Form with max width
	centered.AddItem(nil, 0, 1, false)        // Right spacer

	return centered
}

// RebuildNormalLayout restores the normal game layout with board, info panel, and hint.
func RebuildNormalLayout(gameFrame *tview.Flex, board *ChessBoardUI, hint *tview.TextView) {
	gameFrame.Clear()

	infoPanel := NewGameInfoPanel()
	board.infoPanel = infoPanel
	infoPanel.cursor = board.Cursor()
	infoPanel.SetSession(board.sess)

	boardRow := tview.NewFlex().SetDirection(tview.FlexColumn)
	boardRow.AddItem(board.Box, 0, 1, true)
	boardRow.AddItem(infoPanel.Box(), 28, 0, false)

	gameFrame.SetDirection(tview.FlexRow)
	gameFrame.AddItem(boardRow, 0, 1, true)
	gameFrame.AddItem(hint, 2, 0, false)
}

// BuildFocusLayout builds the focus mode layout with just the centered board.
func BuildFocusLayout(gameFrame *tview.Flex, board *ChessBoardUI) {
	gameFrame.Clear()

	boardWidth := types.BoardSize*cellWidth + 3
	boardHeight := types.BoardSize + 1

	gameFrame.SetDirection(tview.FlexRow)
	gameFrame.AddItem(nil, 0, 1, false)

	centerRow := tview.NewFlex().SetDirection(tview.FlexColumn)
	centerRow.AddItem(nil, 0, 1, false)
	centerRow.AddItem(board.Box, boardWidth, 0, true)
	centerRow.AddItem(nil, 0, 1, false)

	gameFrame.AddItem(centerRow, boardHeight, 0, true)
	gameFrame.AddItem(nil, 0, 1, false)
}
