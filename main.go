// pocketchess is a terminal application to play pocket chess against an external rules engine.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/rivo/tview"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"pocketchess/config"
	"pocketchess/engine/wire"
	"pocketchess/fixtures"
	"pocketchess/session"
	"pocketchess/types"
	"pocketchess/ui"
)

var app *tview.Application
var rootPage *tview.Pages
var gameBoard *ui.ChessBoardUI
var gameFrame *tview.Flex
var gameHint *tview.TextView
var cfg *config.Config
var registry *fixtures.Registry
var debugLog *log.Logger
var zlog *zap.Logger
var recorder *gameRecorder

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runPlay builds the terminal UI and runs it until the player quits.
func runPlay(quickStart bool) error {
	var err error
	cfg, err = loadConfig()
	if err != nil {
		return err
	}
	registry, err = loadFixtures(cfg)
	if err != nil {
		return err
	}
	if err := checkFixture(registry, viper.GetString("fixture")); err != nil {
		return err
	}
	if err := checkEngine(cfg); err != nil {
		return err
	}
	turn, err := turnOverride()
	if err != nil {
		return err
	}

	zlog = openDebugLog()
	defer zlog.Sync()

	app = tview.NewApplication()
	rootPage = tview.NewPages()
	rootPage.SetBorder(true).SetTitle(" ♞ pocketchess ")

	gameHint = tview.NewTextView()
	gameHint.SetBorder(true)
	gameHint.SetBorderPadding(0, 0, 1, 1)
	gameHint.SetTitle(" Status ")
	gameHint.SetTitleAlign(tview.AlignLeft)
	gameBoard = ui.NewChessBoard(cfg, gameHint)
	gameFrame = ui.CreateGameLayout(gameBoard, gameHint)
	gameBoard.Box.SetInputCapture(handleBoardKey)

	history := ui.NewHistoryBrowser(config.HistoryDir(), func() {
		rootPage.SwitchToPage("setup")
	})

	setupUI := ui.NewGameSetup(
		registry.Names(),
		cfg.Engine.Path,
		startGame,
		func() {
			app.Stop()
		},
		func() {
			rootPage.SwitchToPage("colors")
		},
		func() {
			history.Refresh()
			rootPage.SwitchToPage("history")
		},
	)

	colorConfig := ui.NewColorConfig(cfg, func() {
		gameBoard.SetConfig(cfg)
		rootPage.SwitchToPage("setup")
	})
	colorConfig.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEsc || (event.Key() == tcell.KeyRune && event.Rune() == 'q') {
			rootPage.SwitchToPage("setup")
			return nil
		}
		if event.Key() == tcell.KeyTab {
			colorConfig.ToggleMode()
			return nil
		}
		return event
	})

	rootPage.AddPage("setup", ui.CreateCenteredForm(setupUI.Form(), 60), true, !quickStart)
	rootPage.AddPage("gameview", gameFrame, true, quickStart)
	rootPage.AddPage("colors", colorConfig.Flex(), true, false)
	rootPage.AddPage("history", history.Flex(), true, false)

	if quickStart {
		startGame(ui.SetupChoice{Fixture: viper.GetString("fixture"), Turn: turn})
		if viper.GetBool("focus") {
			gameBoard.SetFocusMode(true)
			ui.BuildFocusLayout(gameFrame, gameBoard)
		}
	}

	err = app.SetRoot(rootPage, true).Run()
	closeGame()
	return err
}

// handleBoardKey maps keys on the game view to session commands.
func handleBoardKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyUp:
		gameBoard.MoveCursor(0, 1)
	case tcell.KeyDown:
		gameBoard.MoveCursor(0, -1)
	case tcell.KeyLeft:
		gameBoard.MoveCursor(-1, 0)
	case tcell.KeyRight:
		gameBoard.MoveCursor(1, 0)
	case tcell.KeyEnter:
		if gameBoard.IsFinished() {
			gameBoard.Reset()
		} else {
			gameBoard.EndTurn()
		}
	case tcell.KeyTab:
		gameBoard.CycleKind(1)
	case tcell.KeyBacktab:
		gameBoard.CycleKind(-1)
	case tcell.KeyRune:
		r := event.Rune()
		if kind, ok := kindShortcut(r); ok {
			gameBoard.ChooseKind(kind)
			return nil
		}
		switch r {
		case 'q':
			closeGame()
			rootPage.SwitchToPage("setup")
		case ' ':
			gameBoard.Act()
		case 'h':
			gameBoard.MoveCursor(-1, 0)
		case 'j':
			gameBoard.MoveCursor(0, -1)
		case 'k':
			gameBoard.MoveCursor(0, 1)
		case 'l':
			gameBoard.MoveCursor(1, 0)
		case 'm':
			gameBoard.SwitchMode("move")
		case 'd':
			gameBoard.SwitchMode("drop")
		case 's':
			gameBoard.SwitchMode("stun")
		case 'u':
			gameBoard.SwitchMode("succession")
		case 'g':
			gameBoard.SwitchMode("disguise")
		case '.', ']':
			gameBoard.CycleKind(1)
		case ',', '[':
			gameBoard.CycleKind(-1)
		case 'r':
			gameBoard.Reset()
		case 'p':
			showPositionPicker()
		case 'i':
			gameBoard.Inspect()
		case 'y':
			gameBoard.CopyDebugReport()
		case 'f':
			if gameBoard.ToggleFocusMode() {
				ui.BuildFocusLayout(gameFrame, gameBoard)
			} else {
				ui.RebuildNormalLayout(gameFrame, gameBoard, gameHint)
			}
		}
	}
	return nil
}

// kindShortcut maps an uppercase piece letter to its kind.
func kindShortcut(r rune) (types.PieceKind, bool) {
	if r < 'A' || r > 'Z' {
		return 0, false
	}
	return types.ParseKind(string(r))
}

// startGame starts a session with the setup choice and shows the game view.
func startGame(choice ui.SetupChoice) {
	gameCfg := cfg.EngineGameConfig()
	if choice.EnginePath != "" {
		gameCfg.EnginePath = choice.EnginePath
	}

	closeGame()
	sess, err := session.New(wire.Dial, gameCfg,
		session.WithLogger(debugLog),
		session.WithFixtures(registry),
		session.WithDefaultDropKind(cfg.DropKind()),
	)
	if err != nil {
		showError(fmt.Sprintf("Failed to start game:\n%s", err.Error()))
		return
	}
	if cfg.Game.RecordHistory {
		recorder = newRecorder(config.HistoryDir(), zlog)
		recorder.attach(sess)
	}
	if choice.Fixture != "" {
		sess.LoadPosition(choice.Fixture, choice.Turn)
	}
	gameBoard.AttachSession(sess)
	rootPage.SwitchToPage("gameview")
}

// closeGame stops the running engine and finishes its record.
func closeGame() {
	gameBoard.Close()
	if recorder != nil {
		recorder.close()
		recorder = nil
	}
}

// showPositionPicker lists the fixtures and loads the chosen one into the running game.
func showPositionPicker() {
	names := registry.Names()
	closePicker := func() {
		rootPage.RemovePage("positions")
		app.SetFocus(gameBoard.Box)
	}

	list := tview.NewList().ShowSecondaryText(false)
	list.SetBorder(true).SetTitle(" Load position ")
	for _, name := range names {
		name := name
		list.AddItem(name, "", 0, func() {
			closePicker()
			gameBoard.LoadPosition(name, nil)
		})
	}
	list.SetDoneFunc(closePicker)

	column := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(nil, 0, 1, false).
		AddItem(list, len(names)+2, 0, true).
		AddItem(nil, 0, 1, false)
	rootPage.AddPage("positions", ui.CreateCenteredForm(column, 40), true, true)
	app.SetFocus(list)
}

func showError(text string) {
	modal := tview.NewModal().
		SetText(text).
		AddButtons([]string{"OK"}).
		SetDoneFunc(func(buttonIndex int, buttonLabel string) {
			rootPage.RemovePage("error")
		})
	rootPage.AddPage("error", modal, true, true)
}

// openDebugLog points the wire and session loggers at a file in the temp dir.
// Logging is discarded when the file cannot be opened.
func openDebugLog() *zap.Logger {
	path := filepath.Join(os.TempDir(), "pocketchess-debug.log")
	zcfg := zap.NewDevelopmentConfig()
	zcfg.OutputPaths = []string{path}
	zcfg.ErrorOutputPaths = []string{path}
	zcfg.DisableStacktrace = true
	zl, err := zcfg.Build()
	if err != nil {
		zl = zap.NewNop()
	}
	debugLog = zap.NewStdLog(zl)
	wire.SetDebugLog(debugLog)
	zl.Info("pocketchess started", zap.String("version", Version), zap.String("commit", Commit))
	return zl
}
