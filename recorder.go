package main

import (
	"go.uber.org/zap"

	"pocketchess/record"
	"pocketchess/session"
)

// gameRecorder writes one record file per game of a session. A reset starts a new file.
type gameRecorder struct {
	dir string
	rec *record.GameRecord
	log *zap.Logger
}

func newRecorder(dir string, logger *zap.Logger) *gameRecorder {
	return &gameRecorder{dir: dir, log: logger}
}

func (g *gameRecorder) attach(s *session.Session) {
	g.open()
	s.OnEvent(g.handle)
}

func (g *gameRecorder) open() {
	rec, err := record.NewGameRecord(g.dir)
	if err != nil {
		g.log.Warn("record not opened", zap.String("dir", g.dir), zap.Error(err))
		return
	}
	g.log.Info("record opened", zap.String("path", rec.FilePath), zap.String("game_id", rec.GameID))
	g.rec = rec
}

func (g *gameRecorder) handle(ev session.Event) {
	if ev.Kind == session.EventReset {
		g.close()
		g.open()
		return
	}
	if g.rec == nil {
		return
	}
	if err := g.rec.Apply(ev); err != nil {
		g.log.Warn("record write failed", zap.String("path", g.rec.FilePath), zap.Error(err))
	}
}

func (g *gameRecorder) close() {
	if g.rec == nil {
		return
	}
	g.rec.Close()
	g.rec = nil
}
