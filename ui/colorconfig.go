package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"pocketchess/config"
)

// ColorConfigUI provides a square color configuration screen with live preview.
type ColorConfigUI struct {
	flex      *tview.Flex
	colorList *tview.List
	preview   *tview.Box
	cfg       *config.Config
	onDone    func()

	selectedLight int
	selectedDark  int
	editingDark   bool
}

type namedColor struct {
	code int
	name string
}

var lightSquareColors = []namedColor{
	{230, "Light Cream"},
	{229, "Pale Yellow"},
	{223, "Peach"},
	{222, "Gold"},
	{188, "Light Beige"},
	{187, "Wheat"},
	{180, "Tan"},
	{254, "Pale Gray"},
	{252, "Light Gray"},
	{152, "Ice Blue"},
	{151, "Mint"},
	{194, "Pale Green"},
}

var darkSquareColors = []namedColor{
	{137, "Walnut"},
	{136, "Dark Brown"},
	{130, "Rust"},
	{94, "Saddle Brown"},
	{95, "Mauve"},
	{101, "Olive"},
	{65, "Sage"},
	{29, "Tournament Green"},
	{24, "Dark Cyan"},
	{60, "Slate"},
	{240, "Gray"},
	{238, "Charcoal"},
}

// NewColorConfig creates a new square color configuration screen.
func NewColorConfig(cfg *config.Config, onDone func()) *ColorConfigUI {
	cc := &ColorConfigUI{
		cfg:           cfg,
		onDone:        onDone,
		selectedLight: cfg.Theme.Colors.LightSquare,
		selectedDark:  cfg.Theme.Colors.DarkSquare,
	}

	cc.colorList = tview.NewList()
	cc.colorList.SetBorder(true)
	cc.colorList.SetBorderColor(MenuColors.BorderFocus)
	cc.colorList.ShowSecondaryText(false)
	cc.populateColorList()

	cc.colorList.SetChangedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		palette := cc.palette()
		if index < 0 || index >= len(palette) {
			return
		}
		if cc.editingDark {
			cc.selectedDark = palette[index].code
		} else {
			cc.selectedLight = palette[index].code
		}
	})

	cc.colorList.SetSelectedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		if index < 0 || index >= len(cc.palette()) {
			return
		}
		cc.cfg.Theme.Colors.LightSquare = cc.selectedLight
		cc.cfg.Theme.Colors.DarkSquare = cc.selectedDark
		cc.cfg.Save()
		if !cc.editingDark {
			cc.editingDark = true
			cc.populateColorList()
			return
		}
		cc.editingDark = false
		cc.populateColorList()
		onDone()
	})

	cc.preview = tview.NewBox()
	cc.preview.SetBorder(true)
	cc.preview.SetBorderColor(MenuColors.Border)
	cc.preview.SetTitle(" Board Preview ")
	cc.preview.SetDrawFunc(cc.drawPreview)

	cc.flex = tview.NewFlex().
		AddItem(cc.colorList, 34, 0, true).
		AddItem(cc.preview, 0, 1, false)

	return cc
}

func (cc *ColorConfigUI) palette() []namedColor {
	if cc.editingDark {
		return darkSquareColors
	}
	return lightSquareColors
}

// populateColorList fills the list with the palette for the square being edited.
func (cc *ColorConfigUI) populateColorList() {
	cc.colorList.Clear()

	current := cc.selectedLight
	title := " Light Squares (Tab: dark) "
	if cc.editingDark {
		current = cc.selectedDark
		title = " Dark Squares (Tab: light) "
	}
	cc.colorList.SetTitle(title)

	for i, c := range cc.palette() {
		cc.colorList.AddItem(fmt.Sprintf("[#%06x]████[-] %s (%d)",
			tcell.PaletteColor(c.code).Hex(), c.name, c.code),
			"", rune('a'+i), nil)
	}
	for i, c := range cc.palette() {
		if c.code == current {
			cc.colorList.SetCurrentItem(i)
			break
		}
	}
}

// previewPieces is a small sample position drawn in the preview.
var previewPieces = map[[2]int]rune{
	{0, 0}: 'r', {2, 0}: 'b', {3, 0}: 'k',
	{1, 1}: 'p', {2, 1}: 'p',
	{3, 3}: 'Q',
	{1, 4}: 'P', {2, 4}: 'N',
	{2, 5}: 'K', {5, 5}: 'R',
}

func (cc *ColorConfigUI) drawPreview(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
	const size = 6
	if width < size*cellWidth+4 || height < size+4 {
		return x, y, width, height
	}

	light := tcell.PaletteColor(cc.selectedLight)
	dark := tcell.PaletteColor(cc.selectedDark)
	whiteFG := tcell.PaletteColor(cc.cfg.Theme.Colors.WhitePiece)
	blackFG := tcell.PaletteColor(cc.cfg.Theme.Colors.BlackPiece)

	startX := x + 2
	startY := y + 1
	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			bg := dark
			if (row+col)%2 == 0 {
				bg = light
			}
			style := tcell.StyleDefault.Background(bg)
			ch := ' '
			if r, ok := previewPieces[[2]int{col, row}]; ok {
				ch = r
				if r >= 'a' {
					style = style.Foreground(blackFG)
				} else {
					style = style.Foreground(whiteFG)
				}
			}
			sx := startX + col*cellWidth
			screen.SetContent(sx, startY+row, ' ', nil, style)
			screen.SetContent(sx+1, startY+row, ch, nil, style)
			screen.SetContent(sx+2, startY+row, ' ', nil, style)
		}
	}

	info := fmt.Sprintf("Light: %d  Dark: %d", cc.selectedLight, cc.selectedDark)
	drawText(screen, startX, startY+size+1, info, tcell.StyleDefault.Foreground(MenuColors.Label))
	return x, y, width, height
}

// Flex returns the flex container for this UI.
func (cc *ColorConfigUI) Flex() *tview.Flex {
	return cc.flex
}

// SetInputCapture sets the input capture for the color list.
func (cc *ColorConfigUI) SetInputCapture(capture func(event *tcell.EventKey) *tcell.EventKey) {
	cc.colorList.SetInputCapture(capture)
}

// ToggleMode switches between light and dark square editing.
func (cc *ColorConfigUI) ToggleMode() {
	cc.editingDark = !cc.editingDark
	cc.populateColorList()
}
