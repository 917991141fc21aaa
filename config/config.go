package config

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"pocketchess/engine"
	"pocketchess/types"
)

var (
	cfgFile    = "pocketchess/config.json"
	historyDir = "pocketchess/history"
)

type InvalidConfig struct {
	err string
}

func (e *InvalidConfig) Error() string {
	return fmt.Sprintf("Config error: %s", e.err)
}

type ConfigColors struct {
	LightSquare int `json:"light_square"`
	DarkSquare  int `json:"dark_square"`
	WhitePiece  int `json:"white_piece"`
	BlackPiece  int `json:"black_piece"`
	CursorColor int `json:"cursor"`
	SelectedBG  int `json:"selected_bg"`
	TargetBG    int `json:"target_bg"`
	LastMoveBG  int `json:"last_move_bg"`
	PromotionBG int `json:"promotion_bg"`
	StunColor   int `json:"stun"`
	RoyalColor  int `json:"royal"`
}

type ConfigSymbols struct {
	Empty  rune `json:"empty"`
	Stun   rune `json:"stun"`
	Royal  rune `json:"royal"`
	Cursor rune `json:"cursor"`
}

type Theme struct {
	DrawCursorBackground   bool          `json:"draw_cursor_bg"`
	DrawLastMoveBackground bool          `json:"draw_last_move_bg"`
	LowercaseBlack         bool          `json:"lowercase_black"`
	ShowCoordinates        bool          `json:"show_coordinates"`
	Colors                 ConfigColors  `json:"colors"`
	Symbols                ConfigSymbols `json:"symbols"`
}

// EngineConfig holds the rules engine process settings.
type EngineConfig struct {
	Path          string   `json:"path"`
	Args          []string `json:"args"`
	TimeoutMillis int      `json:"timeout_ms"`
}

// GameSettings holds per-game defaults. Reserves map kind codes ("K", "Kr") to counts.
type GameSettings struct {
	WhiteReserves   map[string]int `json:"white_reserves"`
	BlackReserves   map[string]int `json:"black_reserves"`
	DefaultDropKind string         `json:"default_drop_kind"`
	RecordHistory   bool           `json:"record_history"`
	FixturesFile    string         `json:"fixtures_file,omitempty"`
}

type Config struct {
	Theme  Theme        `json:"theme"`
	Engine EngineConfig `json:"engine"`
	Game   GameSettings `json:"game"`
}

func InitConfig() (*Config, error) {
	config := DefaultConfig.Clone()
	absPath, err := xdg.SearchConfigFile(cfgFile)
	if err == nil {
		if err := readCfgFile(absPath, &config); err != nil {
			return nil, err
		}
	}
	if err = config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Clone returns a copy that shares no maps or slices with c.
func (c Config) Clone() Config {
	out := c
	out.Engine.Args = append([]string(nil), c.Engine.Args...)
	out.Game.WhiteReserves = cloneCounts(c.Game.WhiteReserves)
	out.Game.BlackReserves = cloneCounts(c.Game.BlackReserves)
	return out
}

func cloneCounts(m map[string]int) map[string]int {
	if m == nil {
		return nil
	}
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (c *Config) Validate() error {
	for _, r := range []rune{c.Theme.Symbols.Empty, c.Theme.Symbols.Stun, c.Theme.Symbols.Royal, c.Theme.Symbols.Cursor} {
		if r < 32 || (r >= 127 && r <= 159) {
			return &InvalidConfig{"Unicode characters 1-31 and 127-159 are not allowed"}
		}
	}
	if c.Engine.Path == "" {
		return &InvalidConfig{"engine path must not be empty"}
	}
	if c.Engine.TimeoutMillis < 0 {
		return &InvalidConfig{"engine timeout must not be negative"}
	}
	for side, m := range map[string]map[string]int{"white": c.Game.WhiteReserves, "black": c.Game.BlackReserves} {
		if _, err := pocketFromCounts(m); err != nil {
			return &InvalidConfig{fmt.Sprintf("%s reserves: %v", side, err)}
		}
	}
	if c.Game.DefaultDropKind != "" {
		if _, ok := types.ParseKind(c.Game.DefaultDropKind); !ok {
			return &InvalidConfig{fmt.Sprintf("unknown default drop kind %q", c.Game.DefaultDropKind)}
		}
	}
	return nil
}

// DropKind returns the kind armed at the start of a game.
func (c *Config) DropKind() types.PieceKind {
	if k, ok := types.ParseKind(c.Game.DefaultDropKind); ok {
		return k
	}
	return types.King
}

// EngineGameConfig builds the engine start settings. Empty reserve tables fall back
// to the default starting reserves.
func (c *Config) EngineGameConfig() engine.GameConfig {
	cfg := engine.DefaultConfig()
	cfg.EnginePath = c.Engine.Path
	cfg.EngineArgs = append([]string(nil), c.Engine.Args...)
	if c.Engine.TimeoutMillis > 0 {
		cfg.TimeoutMillis = c.Engine.TimeoutMillis
	}
	if p, err := pocketFromCounts(c.Game.WhiteReserves); err == nil && len(p) > 0 {
		cfg.WhiteReserves = p
	}
	if p, err := pocketFromCounts(c.Game.BlackReserves); err == nil && len(p) > 0 {
		cfg.BlackReserves = p
	}
	return cfg
}

func pocketFromCounts(m map[string]int) (types.Pocket, error) {
	out := make(types.Pocket, len(m))
	for code, n := range m {
		k, ok := types.ParseKind(code)
		if !ok {
			return nil, fmt.Errorf("unknown piece kind %q", code)
		}
		if n < 0 {
			return nil, fmt.Errorf("negative count for %s", code)
		}
		out[k] = n
	}
	return out, nil
}

// HistoryDir returns the directory game records are written to.
func HistoryDir() string {
	return filepath.Join(xdg.DataHome, historyDir)
}

func (c *Config) Save() error {
	absPath, err := xdg.ConfigFile(cfgFile)
	if err != nil {
		return err
	}
	return saveCfgFile(absPath, c, 0664)
}

func saveCfgFile(filePath string, a interface{}, perm fs.FileMode) error {
	jsonData, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, jsonData, perm)
}

func readCfgFile(filePath string, a interface{}) error {
	configReader, err := os.ReadFile(filePath)
	if err != nil {
		return nil
	}
	if err := json.Unmarshal(configReader, a); err != nil {
		return &InvalidConfig{fmt.Sprintf("%s: %v", filePath, err)}
	}
	return nil
}
