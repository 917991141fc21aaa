package ui

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"pocketchess/types"
)

// emptyBoard is the setup option for starting from an empty board with full reserves.
const emptyBoard = "(empty board)"

// SetupChoice is what the player picked on the setup screen.
type SetupChoice struct {
	Fixture    string
	Turn       *types.Color
	EnginePath string
}

// GameSetupUI provides a form for configuring a new game.
type GameSetupUI struct {
	form      *tview.Form
	flex      *tview.Flex
	onStart   func(SetupChoice)
	onCancel  func()
	onColors  func()
	onHistory func()

	choice SetupChoice
}

// NewGameSetup creates a new game setup form listing the given fixture names.
func NewGameSetup(fixtureNames []string, enginePath string, onStart func(SetupChoice), onCancel, onColors, onHistory func()) *GameSetupUI {
	setup := &GameSetupUI{
		onStart:   onStart,
		onCancel:  onCancel,
		onColors:  onColors,
		onHistory: onHistory,
		choice:    SetupChoice{EnginePath: enginePath},
	}

	positions := append([]string{emptyBoard}, fixtureNames...)
	turns := []string{"As position", "White", "Black"}

	form := tview.NewForm()

	form.AddDropDown("Position", positions, 0, func(option string, index int) {
		if index <= 0 {
			setup.choice.Fixture = ""
			return
		}
		setup.choice.Fixture = option
	})

	form.AddDropDown("To Move", turns, 0, func(option string, index int) {
		switch index {
		case 1:
			c := types.White
			setup.choice.Turn = &c
		case 2:
			c := types.Black
			setup.choice.Turn = &c
		default:
			setup.choice.Turn = nil
		}
	})

	form.AddInputField("Engine", enginePath, 32, nil, func(text string) {
		setup.choice.EnginePath = strings.TrimSpace(text)
	})

	form.AddButton("Start Game", func() {
		onStart(setup.choice)
	})

	form.AddButton("Board Color", func() {
		if onColors != nil {
			onColors()
		}
	})

	form.AddButton("History", func() {
		if onHistory != nil {
			onHistory()
		}
	})

	form.AddButton("Quit", func() {
		onCancel()
	})

	form.SetBorder(true)
	form.SetTitle(" New Game ")
	form.SetTitleAlign(tview.AlignCenter)
	form.SetButtonBackgroundColor(MenuColors.ButtonBG)
	form.SetButtonTextColor(MenuColors.ButtonText)

	helpText := tview.NewTextView().
		SetText("Tab/Shift+Tab: navigate fields  |  Arrow keys: change dropdown  |  Enter: confirm").
		SetTextAlign(tview.AlignCenter)
	helpText.SetTextColor(MenuColors.Hint)

	flex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(form, 0, 1, true).
		AddItem(helpText, 1, 0, false)

	setup.form = form
	setup.flex = flex
	return setup
}

// Form returns the flex container with form and help text.
func (s *GameSetupUI) Form() *tview.Flex {
	return s.flex
}

// SetInputCapture sets the input capture function for the form.
func (s *GameSetupUI) SetInputCapture(capture func(event *tcell.EventKey) *tcell.EventKey) {
	s.form.SetInputCapture(capture)
}
