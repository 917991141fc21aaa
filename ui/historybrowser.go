package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"pocketchess/record"
)

// HistoryBrowserUI provides a screen for browsing saved game records.
type HistoryBrowserUI struct {
	flex     *tview.Flex
	gameList *tview.List
	preview  *tview.Box
	hint     *tview.TextView
	dir      string
	games    []record.GameInfo
	selected int
	onDone   func()
}

// NewHistoryBrowser creates a new history browser over the records in dir.
func NewHistoryBrowser(dir string, onDone func()) *HistoryBrowserUI {
	hb := &HistoryBrowserUI{
		dir:    dir,
		onDone: onDone,
	}

	hb.gameList = tview.NewList()
	hb.gameList.SetBorder(true)
	hb.gameList.SetTitle(" Game History ")
	hb.gameList.ShowSecondaryText(false)
	hb.gameList.SetHighlightFullLine(true)
	hb.gameList.SetMainTextStyle(tcell.StyleDefault.Foreground(MenuColors.Label))
	hb.gameList.SetSelectedStyle(tcell.StyleDefault.
		Foreground(MenuColors.ButtonText).
		Background(MenuColors.ButtonFocus))

	hb.preview = tview.NewBox()
	hb.preview.SetBorder(true)
	hb.preview.SetTitle(" Record ")
	hb.preview.SetDrawFunc(hb.drawPreview)

	hb.hint = tview.NewTextView()
	hb.hint.SetDynamicColors(true)
	hb.hint.SetBorder(false)
	hb.hint.SetText("  [dimgray]d[-] delete  [dimgray]q[-] back")

	hb.gameList.SetChangedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		hb.selected = index
	})
	hb.gameList.SetInputCapture(hb.handleInput)

	topRow := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(hb.gameList, 38, 0, true).
		AddItem(hb.preview, 0, 1, false)

	hb.flex = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(topRow, 0, 1, true).
		AddItem(hb.hint, 1, 0, false)

	hb.loadGames()
	return hb
}

// Flex returns the flex container for this UI.
func (hb *HistoryBrowserUI) Flex() *tview.Flex {
	return hb.flex
}

// Refresh reloads the game list from disk.
func (hb *HistoryBrowserUI) Refresh() {
	hb.loadGames()
}

func (hb *HistoryBrowserUI) loadGames() {
	hb.gameList.Clear()
	hb.games = nil
	hb.selected = 0

	games, err := record.ListGames(hb.dir)
	if err != nil || len(games) == 0 {
		hb.gameList.AddItem("[dimgray]No games found[-]", "", 0, nil)
		return
	}

	hb.games = games
	for _, g := range games {
		label := fmt.Sprintf("%s  %3d plies  %s", g.Date, g.Plies, g.Result)
		if g.Setup != "" {
			label += "  " + g.Setup
		}
		hb.gameList.AddItem(label, "", 0, nil)
	}
}

func (hb *HistoryBrowserUI) handleInput(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyEscape:
		if hb.onDone != nil {
			hb.onDone()
		}
		return nil
	case tcell.KeyRune:
		switch event.Rune() {
		case 'q':
			if hb.onDone != nil {
				hb.onDone()
			}
			return nil
		case 'd':
			hb.deleteSelected()
			return nil
		}
	}
	return event
}

func (hb *HistoryBrowserUI) deleteSelected() {
	if hb.selected < 0 || hb.selected >= len(hb.games) {
		return
	}
	os.Remove(hb.games[hb.selected].FilePath)
	hb.loadGames()
}

// drawPreview renders the selected record's tags and wrapped movetext.
func (hb *HistoryBrowserUI) drawPreview(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
	if hb.selected < 0 || hb.selected >= len(hb.games) {
		return x, y, width, height
	}
	game := hb.games[hb.selected]

	startX := x + 2
	lineY := y + 1
	maxY := y + height - 1
	textWidth := width - 4
	if textWidth < 10 {
		return x, y, width, height
	}

	infoStyle := tcell.StyleDefault.Foreground(MenuColors.Label)
	dimStyle := tcell.StyleDefault.Foreground(MenuColors.Hint)

	drawText(screen, startX, lineY, game.FileName, infoStyle)
	lineY++
	drawText(screen, startX, lineY, fmt.Sprintf("Date: %s", game.Date), dimStyle)
	lineY++
	if game.GameID != "" {
		drawText(screen, startX, lineY, fmt.Sprintf("Game: %s", game.GameID), dimStyle)
		lineY++
	}
	if game.Setup != "" {
		drawText(screen, startX, lineY, fmt.Sprintf("Setup: %s", game.Setup), dimStyle)
		lineY++
	}
	drawText(screen, startX, lineY, fmt.Sprintf("Result: %s", resultLabel(game.Result)), tcell.StyleDefault.Foreground(resultColor(game.Result)))
	lineY += 2

	for _, line := range wrapWords(game.Movetext, textWidth) {
		if lineY >= maxY {
			break
		}
		drawText(screen, startX, lineY, line, infoStyle)
		lineY++
	}
	return x, y, width, height
}

func resultLabel(tag string) string {
	switch tag {
	case "1-0":
		return "White wins"
	case "0-1":
		return "Black wins"
	case "1/2-1/2":
		return "Draw"
	}
	return "Unfinished"
}

func resultColor(tag string) tcell.Color {
	switch tag {
	case "1-0", "0-1":
		return MenuColors.Decided
	case "1/2-1/2":
		return MenuColors.Accent
	}
	return MenuColors.Pending
}

// wrapWords breaks text into lines no wider than width.
func wrapWords(text string, width int) []string {
	var lines []string
	var cur string
	for _, w := range strings.Fields(text) {
		if cur != "" && len(cur)+1+len(w) > width {
			lines = append(lines, cur)
			cur = ""
		}
		if cur != "" {
			cur += " "
		}
		cur += w
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}

// drawText writes a string to the screen at the given position.
func drawText(screen tcell.Screen, x, y int, text string, style tcell.Style) {
	i := 0
	for _, ch := range text {
		screen.SetContent(x+i, y, ch, nil, style)
		i++
	}
}
