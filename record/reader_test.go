package record

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocketchess/types"
)

func writeTempRecord(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParseHeader(t *testing.T) {
	path := writeTempRecord(t, t.TempDir(), "g.pgn", `[Event "pocketchess game"]
[Site "pocketchess"]
[Date "2026.01.10"]
[GameId "7f1c2a3e-0000-4000-8000-000000000001"]
[Setup "stun_test"]
[Result "1-0"]

1. K@e1 Q@d1 1... K@e8 2. ~e8 1-0
`)
	info, err := ParseHeader(path)
	require.NoError(t, err)
	assert.Equal(t, "g.pgn", info.FileName)
	assert.Equal(t, "pocketchess game", info.Event)
	assert.Equal(t, "2026.01.10", info.Date)
	assert.Equal(t, "7f1c2a3e-0000-4000-8000-000000000001", info.GameID)
	assert.Equal(t, "stun_test", info.Setup)
	assert.Equal(t, "1-0", info.Result)
	assert.Equal(t, "1. K@e1 Q@d1 1... K@e8 2. ~e8", info.Movetext)
	assert.Equal(t, 3, info.Plies)
}

func TestParseHeaderMissingFile(t *testing.T) {
	_, err := ParseHeader(filepath.Join(t.TempDir(), "missing.pgn"))
	assert.Error(t, err)
}

func TestIsPlyNumber(t *testing.T) {
	assert.True(t, isPlyNumber("1."))
	assert.True(t, isPlyNumber("12..."))
	assert.False(t, isPlyNumber("1-0"))
	assert.False(t, isPlyNumber("K@e1"))
	assert.False(t, isPlyNumber("..."))
	assert.False(t, isPlyNumber("12"))
}

func TestListGames(t *testing.T) {
	dir := t.TempDir()
	writeTempRecord(t, dir, "2026-01-10_100000.pgn", "[Date \"2026.01.10\"]\n[Result \"*\"]\n\n*\n")
	writeTempRecord(t, dir, "2026-01-11_100000.pgn", "[Date \"2026.01.11\"]\n[Result \"0-1\"]\n\n1. pass 0-1\n")
	writeTempRecord(t, dir, "notes.txt", "not a record")

	games, err := ListGames(dir)
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, "2026.01.11", games[0].Date)
	assert.Equal(t, "0-1", games[0].Result)
	assert.Equal(t, 1, games[0].Plies)
	assert.Equal(t, "2026.01.10", games[1].Date)
	assert.Equal(t, "", games[1].Movetext)
}

func TestListGamesNonexistentDir(t *testing.T) {
	games, err := ListGames(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Nil(t, games)
}

func TestWriterThenReader(t *testing.T) {
	dir := t.TempDir()
	rec, err := NewGameRecord(dir)
	require.NoError(t, err)
	require.NoError(t, rec.AddAction(types.White, "K@e1"))
	require.NoError(t, rec.EndTurn(types.White))
	require.NoError(t, rec.SetResult(types.Draw))
	rec.Close()

	games, err := ListGames(dir)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "1/2-1/2", games[0].Result)
	assert.Equal(t, rec.GameID, games[0].GameID)
	assert.Equal(t, "1. K@e1", games[0].Movetext)
	assert.Equal(t, 1, games[0].Plies)
}
