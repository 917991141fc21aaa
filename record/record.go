// Package record writes pocketchess game records in a PGN-like text format.
package record

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"pocketchess/session"
	"pocketchess/types"
)

// ply is one side's actions between two turn boundaries.
type ply struct {
	color   types.Color
	actions []string
}

// GameRecord tracks a game in progress and keeps its file up to date.
type GameRecord struct {
	FilePath string
	GameID   string
	Event    string
	Date     string
	Setup    string
	Result   string
	plies    []ply
	current  *ply
	file     *os.File
}

// NewGameRecord creates a new record file in dir and writes the initial header.
func NewGameRecord(dir string) (*GameRecord, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	now := time.Now()
	stamp := now.Format("2006-01-02_150405")
	path := filepath.Join(dir, stamp+".pgn")

	// Games started within the same second get a numeric suffix.
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
	for n := 2; os.IsExist(err) && n < 100; n++ {
		path = filepath.Join(dir, fmt.Sprintf("%s-%d.pgn", stamp, n))
		f, err = os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
	}
	if err != nil {
		return nil, fmt.Errorf("create record file: %w", err)
	}

	rec := &GameRecord{
		FilePath: path,
		GameID:   uuid.NewString(),
		Event:    "pocketchess game",
		Date:     now.Format("2006.01.02"),
		Result:   resultTag(types.Ongoing),
		file:     f,
	}

	if err := rec.flush(); err != nil {
		f.Close()
		return nil, err
	}

	return rec, nil
}

// Apply records a session event. Reset events are ignored; a reset game gets a
// new record.
func (r *GameRecord) Apply(ev session.Event) error {
	switch ev.Kind {
	case session.EventEndTurn:
		return r.EndTurn(ev.Color)
	case session.EventSetup:
		return r.SetSetup(ev.Fixture)
	case session.EventGameOver:
		return r.SetResult(ev.Outcome)
	case session.EventPromote:
		return r.addPromotion(ev.Color, ev.To, ev.Piece)
	case session.EventReset:
		return nil
	}
	if n := Notation(ev); n != "" {
		return r.AddAction(ev.Color, n)
	}
	return nil
}

// Notation renders a board action: drops "K@e1", moves "e2-e4" or "e2xe4",
// stuns "~e4", successions "^d4", disguises "e1~Q". Other events have none.
func Notation(ev session.Event) string {
	switch ev.Kind {
	case session.EventDrop:
		return fmt.Sprintf("%s@%s", ev.Piece, ev.To)
	case session.EventMove:
		sep := "-"
		if ev.Capture {
			sep = "x"
		}
		from := "?"
		if ev.From != nil {
			from = ev.From.String()
		}
		return from + sep + ev.To.String()
	case session.EventStun:
		return "~" + ev.To.String()
	case session.EventSuccession:
		return "^" + ev.To.String()
	case session.EventDisguise:
		return fmt.Sprintf("%s~%s", ev.To, ev.Piece)
	case session.EventPromote:
		return fmt.Sprintf("%s=%s", ev.To, ev.Piece)
	}
	return ""
}

// AddAction appends one action of color to the current ply.
func (r *GameRecord) AddAction(color types.Color, notation string) error {
	if r.current == nil {
		r.current = &ply{color: color}
	}
	r.current.actions = append(r.current.actions, notation)
	return r.flush()
}

// addPromotion attaches "=K" to the move that reached sq, or records it on its own.
func (r *GameRecord) addPromotion(color types.Color, sq types.Square, kind types.PieceKind) error {
	if r.current != nil && len(r.current.actions) > 0 {
		last := &r.current.actions[len(r.current.actions)-1]
		if strings.HasSuffix(*last, sq.String()) {
			*last += "=" + kind.String()
			return r.flush()
		}
	}
	return r.AddAction(color, fmt.Sprintf("%s=%s", sq, kind))
}

// EndTurn closes the current ply. A turn without actions is written as "pass".
func (r *GameRecord) EndTurn(color types.Color) error {
	if r.current == nil {
		r.current = &ply{color: color}
	}
	r.plies = append(r.plies, *r.current)
	r.current = nil
	return r.flush()
}

// SetSetup marks the game as started from a named position and drops earlier plies.
func (r *GameRecord) SetSetup(name string) error {
	r.Setup = name
	r.plies = nil
	r.current = nil
	return r.flush()
}

// SetResult sets the Result tag.
func (r *GameRecord) SetResult(outcome types.Outcome) error {
	r.Result = resultTag(outcome)
	return r.flush()
}

// Close performs a final flush and closes the file handle.
func (r *GameRecord) Close() {
	if r.file == nil {
		return
	}
	r.flush()
	r.file.Close()
	r.file = nil
}

// Movetext renders the numbered plies: "1. K@e1 1... K@e8 2. pass".
func (r *GameRecord) Movetext() string {
	all := r.plies
	if r.current != nil && len(r.current.actions) > 0 {
		all = append(append([]ply(nil), r.plies...), *r.current)
	}
	var parts []string
	number := 1
	for _, p := range all {
		body := "pass"
		if len(p.actions) > 0 {
			body = strings.Join(p.actions, " ")
		}
		if p.color == types.White {
			parts = append(parts, fmt.Sprintf("%d. %s", number, body))
		} else {
			parts = append(parts, fmt.Sprintf("%d... %s", number, body))
			number++
		}
	}
	return strings.Join(parts, " ")
}

// flush rewrites the complete record file from scratch.
func (r *GameRecord) flush() error {
	if r.file == nil {
		return fmt.Errorf("file already closed")
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("[Event \"%s\"]\n", r.Event))
	b.WriteString("[Site \"pocketchess\"]\n")
	b.WriteString(fmt.Sprintf("[Date \"%s\"]\n", r.Date))
	b.WriteString(fmt.Sprintf("[GameId \"%s\"]\n", r.GameID))
	if r.Setup != "" {
		b.WriteString(fmt.Sprintf("[Setup \"%s\"]\n", r.Setup))
	}
	b.WriteString(fmt.Sprintf("[Result \"%s\"]\n", r.Result))
	b.WriteString("\n")

	if mt := r.Movetext(); mt != "" {
		b.WriteString(mt)
		b.WriteString(" ")
	}
	b.WriteString(r.Result)
	b.WriteString("\n")

	// Rewrite file from start
	if _, err := r.file.Seek(0, 0); err != nil {
		return err
	}
	if err := r.file.Truncate(0); err != nil {
		return err
	}
	if _, err := r.file.WriteString(b.String()); err != nil {
		return err
	}
	return r.file.Sync()
}

// resultTag converts an outcome to the Result tag value.
func resultTag(o types.Outcome) string {
	switch o {
	case types.WhiteWins:
		return "1-0"
	case types.BlackWins:
		return "0-1"
	case types.Draw:
		return "1/2-1/2"
	}
	return "*"
}
