// Package ui specifies custom controls for tview to play pocket chess in the terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"pocketchess/config"
	"pocketchess/session"
	"pocketchess/types"
)

// cellWidth is the number of screen columns per board square.
const cellWidth = 3

type ChessBoardUI struct {
	Box       *tview.Box
	sess      *session.Session
	hint      *tview.TextView
	cfg       *config.Config
	curFile   int
	curRank   int
	styles    []tcell.Color
	infoPanel *GameInfoPanel
	focusMode bool
	notice    string
}

// ToggleFocusMode toggles focus mode and returns the new state.
func (g *ChessBoardUI) ToggleFocusMode() bool {
	g.focusMode = !g.focusMode
	g.refreshHint()
	return g.focusMode
}

// SetFocusMode sets focus mode to the given state.
func (g *ChessBoardUI) SetFocusMode(enabled bool) {
	g.focusMode = enabled
	g.refreshHint()
}

// Cursor returns the square under the cursor.
func (g *ChessBoardUI) Cursor() types.Square {
	return types.MustSquare(g.curFile, g.curRank)
}

// MoveCursor shifts the cursor by df files and dr ranks, staying on the board.
func (g *ChessBoardUI) MoveCursor(df, dr int) {
	next, ok := types.NewSquare(g.curFile+df, g.curRank+dr)
	if !ok {
		return
	}
	g.curFile, g.curRank = next.File(), next.Rank()
	g.notice = ""
	g.refreshHint()
}

func NewChessBoard(c *config.Config, hint *tview.TextView) *ChessBoardUI {
	board := &ChessBoardUI{
		Box:     tview.NewBox(),
		hint:    hint,
		curFile: 4,
	}
	board.SetConfig(c)
	board.Box.SetDrawFunc(func(screen tcell.Screen, x int, y int, width int, height int) (int, int, int, int) {
		if board.sess == nil {
			return x, y, 1, 1
		}
		snap := board.sess.Board()
		sel := board.sess.Selection()
		last := board.sess.LastMove()
		var pending *types.Square
		if pm, ok := board.sess.Mode().(session.PromoteMode); ok {
			p := pm.Pending
			pending = &p
		}

		for row := 0; row < types.BoardSize; row++ {
			rank := types.BoardSize - 1 - row
			for file := 0; file < types.BoardSize; file++ {
				sq := types.MustSquare(file, rank)
				bg := board.styles[0]
				if (file+rank)%2 == 1 {
					bg = board.styles[1]
				}
				switch {
				case sq == board.Cursor() && board.cfg.Theme.DrawCursorBackground:
					bg = board.styles[4]
				case pending != nil && *pending == sq:
					bg = board.styles[8]
				case sel != nil && sel.Square == sq:
					bg = board.styles[5]
				case sel != nil && sel.HasTarget(sq):
					bg = board.styles[6]
				case last != nil && board.cfg.Theme.DrawLastMoveBackground && isLastMoveSquare(last, sq):
					bg = board.styles[7]
				}
				style := tcell.StyleDefault.Background(bg)

				cell := [cellWidth]rune{' ', board.cfg.Theme.Symbols.Empty, ' '}
				fg := board.styles[2]
				markStyle := style
				if p, ok := snap.At(sq); ok {
					code := []rune(p.DisplayKind().String())
					if p.Color == types.Black {
						fg = board.styles[3]
						if board.cfg.Theme.LowercaseBlack {
							code = []rune(strings.ToLower(string(code)))
						}
					}
					cell[1] = code[0]
					if len(code) > 1 {
						cell[2] = code[1]
					}
					switch {
					case p.IsStunned():
						cell[0] = board.cfg.Theme.Symbols.Stun
						markStyle = style.Foreground(board.styles[9])
					case p.IsRoyal && p.DisplayKind() != types.King:
						cell[0] = board.cfg.Theme.Symbols.Royal
						markStyle = style.Foreground(board.styles[10])
					}
				}
				if sq == board.Cursor() && !board.cfg.Theme.DrawCursorBackground {
					cell[0] = board.cfg.Theme.Symbols.Cursor
					markStyle = style.Foreground(board.styles[4])
				}
				drawPieceCell(screen, style.Foreground(fg), markStyle, cell, file, row, x+3, y)
			}
		}
		if board.cfg.Theme.ShowCoordinates {
			drawCoordinates(screen, x, y, board)
		}
		return x, y, types.BoardSize*cellWidth + 3, types.BoardSize + 1
	})
	return board
}

func isLastMoveSquare(last *session.LastMove, sq types.Square) bool {
	if last.To == sq {
		return true
	}
	return last.From != nil && *last.From == sq
}

// AttachSession points the board at a running session.
func (g *ChessBoardUI) AttachSession(s *session.Session) {
	g.sess = s
	g.notice = ""
	if g.infoPanel != nil {
		g.infoPanel.SetSession(s)
	}
	g.refreshHint()
}

// run executes one session command and refreshes the hint. Rejections are already
// reflected in the status text; other errors are shown as a notice.
func (g *ChessBoardUI) run(cmd func(*session.Session) error) {
	if g.sess == nil {
		return
	}
	g.notice = ""
	if err := cmd(g.sess); err != nil && !session.IsRejected(err) {
		g.notice = err.Error()
	}
	g.refreshHint()
}

// Act selects or acts on the square under the cursor in the current mode.
func (g *ChessBoardUI) Act() {
	g.run(func(s *session.Session) error { return s.SelectOrAct(g.Cursor()) })
}

// EndTurn passes the turn to the other side.
func (g *ChessBoardUI) EndTurn() {
	g.run(func(s *session.Session) error { return s.EndTurn() })
}

// SwitchMode switches to the named player-selectable mode.
func (g *ChessBoardUI) SwitchMode(name string) {
	m, ok := session.ModeByName(name)
	if !ok {
		return
	}
	g.run(func(s *session.Session) error { return s.SwitchMode(m) })
}

// CycleKind steps the armed drop or promotion kind.
func (g *ChessBoardUI) CycleKind(dir int) {
	g.run(func(s *session.Session) error { return s.CycleDropKind(dir) })
}

// ChooseKind arms a specific drop or promotion kind.
func (g *ChessBoardUI) ChooseKind(kind types.PieceKind) {
	g.run(func(s *session.Session) error { return s.ChooseDropKind(kind) })
}

// Reset restarts the game on a fresh engine.
func (g *ChessBoardUI) Reset() {
	g.run(func(s *session.Session) error { return s.Reset() })
}

// LoadPosition loads a named fixture.
func (g *ChessBoardUI) LoadPosition(name string, turn *types.Color) {
	g.run(func(s *session.Session) error { return s.LoadPosition(name, turn) })
}

// Inspect shows the description of the square under the cursor.
func (g *ChessBoardUI) Inspect() {
	if g.sess == nil {
		return
	}
	g.notice = g.sess.Inspect(g.Cursor())
	g.refreshHint()
}

// CopyDebugReport copies the full session report to the system clipboard.
func (g *ChessBoardUI) CopyDebugReport() {
	if g.sess == nil {
		return
	}
	if err := clipboard.WriteAll(g.sess.DebugReport()); err != nil {
		g.notice = fmt.Sprintf("Clipboard unavailable: %v", err)
	} else {
		g.notice = "Debug report copied"
	}
	g.refreshHint()
}

// Close shuts down the session's engine.
func (g *ChessBoardUI) Close() {
	if g.sess == nil {
		return
	}
	g.sess.Close()
	g.sess = nil
}

func (g *ChessBoardUI) SetConfig(c *config.Config) {
	g.styles = []tcell.Color{
		tcell.PaletteColor(c.Theme.Colors.DarkSquare),  // 0
		tcell.PaletteColor(c.Theme.Colors.LightSquare), // 1
		tcell.PaletteColor(c.Theme.Colors.WhitePiece),  // 2
		tcell.PaletteColor(c.Theme.Colors.BlackPiece),  // 3
		tcell.PaletteColor(c.Theme.Colors.CursorColor), // 4
		tcell.PaletteColor(c.Theme.Colors.SelectedBG),  // 5
		tcell.PaletteColor(c.Theme.Colors.TargetBG),    // 6
		tcell.PaletteColor(c.Theme.Colors.LastMoveBG),  // 7
		tcell.PaletteColor(c.Theme.Colors.PromotionBG), // 8
		tcell.PaletteColor(c.Theme.Colors.StunColor),   // 9
		tcell.PaletteColor(c.Theme.Colors.RoyalColor),  // 10
	}
	g.cfg = c
}

func (g *ChessBoardUI) refreshHint() {
	if g.infoPanel != nil {
		g.infoPanel.SetCursor(g.Cursor())
	}

	if g.focusMode {
		g.hint.SetText("  f to toggle")
		return
	}
	if g.sess == nil {
		g.hint.SetText("")
		return
	}

	var statusLine, controlsLine string
	if g.IsFinished() {
		statusLine = fmt.Sprintf("  %s", g.sess.Status())
		controlsLine = "\n  ⏎/r new game   y copy report   q menu"
	} else {
		statusLine = fmt.Sprintf("  %s · %s to move", g.sess.Status(), g.sess.Turn().Title())
		controlsLine = `
  hjkl move  ␣ act  ⏎ end turn  m/d/s/u/g mode  ⇥ kind  p position  i inspect  r reset  q menu`
	}
	if g.notice != "" {
		statusLine += "  │ " + g.notice
	}
	g.hint.SetText(statusLine + controlsLine)
}

// IsFinished returns true if the game is over.
func (g *ChessBoardUI) IsFinished() bool {
	return g.sess != nil && g.sess.GameOver()
}

// drawPieceCell draws one square: a marker column followed by a two-column piece code.
func drawPieceCell(s tcell.Screen, c, mark tcell.Style, cell [cellWidth]rune, file, row, l, t int) {
	s.SetContent(l+file*cellWidth, t+row, cell[0], nil, mark)
	s.SetContent(l+file*cellWidth+1, t+row, cell[1], nil, c)
	s.SetContent(l+file*cellWidth+2, t+row, cell[2], nil, c)
}

func drawCoordinates(s tcell.Screen, x, y int, ui *ChessBoardUI) {
	style := tcell.StyleDefault
	highlight := tcell.StyleDefault.Background(ui.styles[4])

	for file := 0; file < types.BoardSize; file++ {
		_style := style
		if file == ui.curFile {
			_style = highlight
		}
		for i := 0; i < cellWidth; i++ {
			r := ' '
			if i == 1 {
				r = rune('a' + file)
			}
			s.SetContent(x+3+file*cellWidth+i, y+types.BoardSize, r, nil, _style)
		}
	}

	for row := 0; row < types.BoardSize; row++ {
		rank := types.BoardSize - 1 - row
		_style := style
		if rank == ui.curRank {
			_style = highlight
		}
		s.SetContent(x+1, y+row, rune('1'+rank), nil, _style)
	}
}
