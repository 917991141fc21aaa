package ui

import "github.com/gdamore/tcell/v2"

// MenuColors is the palette shared by the setup form, the color screen and the history browser.
var MenuColors = struct {
	Border      tcell.Color
	BorderFocus tcell.Color
	Label       tcell.Color
	Hint        tcell.Color
	Accent      tcell.Color
	ButtonBG    tcell.Color
	ButtonFocus tcell.Color
	ButtonText  tcell.Color
	Decided     tcell.Color
	Pending     tcell.Color
}{
	Border:      tcell.PaletteColor(60),
	BorderFocus: tcell.PaletteColor(109),
	Label:       tcell.PaletteColor(250),
	Hint:        tcell.PaletteColor(245),
	Accent:      tcell.PaletteColor(109),
	ButtonBG:    tcell.ColorDarkCyan,
	ButtonFocus: tcell.PaletteColor(109),
	ButtonText:  tcell.ColorWhite,
	Decided:     tcell.PaletteColor(114),
	Pending:     tcell.PaletteColor(174),
}
