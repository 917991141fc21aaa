package config

var DefaultConfig Config
var DefaultTheme Theme

func init() {
	DefaultTheme = Theme{
		DrawCursorBackground:   true,
		DrawLastMoveBackground: true,
		LowercaseBlack:         true,
		ShowCoordinates:        true,
		Colors: ConfigColors{
			LightSquare: 180,
			DarkSquare:  137,
			WhitePiece:  255,
			BlackPiece:  232,
			CursorColor: 4,
			SelectedBG:  3,
			TargetBG:    2,
			LastMoveBG:  100,
			PromotionBG: 5,
			StunColor:   196,
			RoyalColor:  220,
		},
		Symbols: ConfigSymbols{
			Empty:  '·',
			Stun:   '*',
			Royal:  '+',
			Cursor: '▸',
		},
	}

	DefaultConfig = Config{
		Theme: DefaultTheme,
		Engine: EngineConfig{
			Path:          "pocketchess-engine",
			TimeoutMillis: 5000,
		},
		Game: GameSettings{
			WhiteReserves:   map[string]int{"K": 1, "Q": 1, "B": 2, "N": 2, "R": 2, "P": 8, "Cl": 1},
			BlackReserves:   map[string]int{"K": 1, "Q": 1, "B": 2, "N": 2, "R": 2, "P": 8, "Cl": 1},
			DefaultDropKind: "K",
			RecordHistory:   true,
		},
	}
}
