package record

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// GameInfo holds metadata parsed from a record file.
type GameInfo struct {
	FilePath string
	FileName string
	GameID   string
	Event    string
	Date     string
	Setup    string
	Result   string
	Movetext string
	Plies    int
}

// ParseHeader reads a record file and extracts its tags and movetext.
func ParseHeader(filePath string) (*GameInfo, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info := &GameInfo{
		FilePath: filePath,
		FileName: filepath.Base(filePath),
	}
	var body []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if name, value, ok := parseTag(line); ok {
			switch name {
			case "Event":
				info.Event = value
			case "Date":
				info.Date = value
			case "GameId":
				info.GameID = value
			case "Setup":
				info.Setup = value
			case "Result":
				info.Result = value
			}
			continue
		}
		body = append(body, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	tokens := strings.Fields(strings.Join(body, " "))
	if n := len(tokens); n > 0 && tokens[n-1] == info.Result {
		tokens = tokens[:n-1]
	}
	for _, tok := range tokens {
		if isPlyNumber(tok) {
			info.Plies++
		}
	}
	info.Movetext = strings.Join(tokens, " ")
	return info, nil
}

// parseTag splits `[Name "value"]`.
func parseTag(line string) (string, string, bool) {
	if !strings.HasPrefix(line, "[") || !strings.HasSuffix(line, "]") {
		return "", "", false
	}
	inner := line[1 : len(line)-1]
	name, rest, ok := strings.Cut(inner, " ")
	if !ok {
		return "", "", false
	}
	rest = strings.TrimSpace(rest)
	if len(rest) < 2 || rest[0] != '"' || rest[len(rest)-1] != '"' {
		return "", "", false
	}
	return name, rest[1 : len(rest)-1], true
}

// isPlyNumber matches "12." and "12...".
func isPlyNumber(tok string) bool {
	digits := strings.TrimRight(tok, ".")
	if digits == "" || digits == tok {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ListGames scans a directory for .pgn files and returns their parsed headers,
// sorted newest-first (by filename, which contains timestamps).
func ListGames(dir string) ([]GameInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read history dir: %w", err)
	}

	var games []GameInfo
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".pgn") {
			continue
		}
		info, err := ParseHeader(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		games = append(games, *info)
	}

	return games, nil
}
