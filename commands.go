package main

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pocketchess/config"
	"pocketchess/fixtures"
	"pocketchess/types"
)

var (
	// Version is set at build time via ldflags
	Version = "dev"
	// Commit is set at build time via ldflags
	Commit = "none"
	// BuildDate is set at build time via ldflags
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "pocketchess",
	Short: "Play pocket chess in the terminal",
	Long: `pocketchess is a terminal front end for a pocket chess variant: pieces are
dropped from per-side reserves, can be stunned, promoted, disguised and can
inherit royalty. Rules are decided by an external engine process.

Without a subcommand the setup screen is shown; --fixture starts immediately.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(viper.GetString("fixture") != "")
	},
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start a game immediately",
	Long:  `Starts a game right away, from an empty board or from the position given by --fixture.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(true)
	},
}

var fixturesCmd = &cobra.Command{
	Use:   "fixtures",
	Short: "Inspect the named test positions",
}

var fixturesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the names of all known positions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		reg, err := loadFixtures(cfg)
		if err != nil {
			return err
		}
		for _, name := range reg.Names() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

var fixturesShowCmd = &cobra.Command{
	Use:   "show NAME[:white|:black]",
	Short: "Print a position as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		reg, err := loadFixtures(cfg)
		if err != nil {
			return err
		}
		pos, err := reg.Get(args[0], nil)
		if err != nil {
			return err
		}
		base, _ := fixtures.SplitName(args[0])
		return fixtures.WriteYAML(cmd.OutOrStdout(), base, pos)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the application version",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "pocketchess %s\n", Version)
		fmt.Fprintf(out, "Commit: %s\n", Commit)
		fmt.Fprintf(out, "Build date: %s\n", BuildDate)
		fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	cobra.OnInitialize(initViper)

	pf := rootCmd.PersistentFlags()
	pf.String("engine", "", "path to the rules engine binary")
	pf.StringSlice("engine-arg", nil, "extra argument for the rules engine (repeatable)")
	pf.String("fixtures-file", "", "YAML file with additional named positions")
	pf.String("fixture", "", "start from this named position (NAME or NAME:white|black)")
	pf.String("turn", "", "side to move after loading --fixture (white or black)")
	pf.Bool("no-history", false, "do not write a game record")
	pf.Bool("focus", false, "start in focus mode (board only)")

	viper.BindPFlag("engine.path", pf.Lookup("engine"))
	viper.BindPFlag("engine.args", pf.Lookup("engine-arg"))
	viper.BindPFlag("game.fixtures_file", pf.Lookup("fixtures-file"))
	viper.BindPFlag("fixture", pf.Lookup("fixture"))
	viper.BindPFlag("turn", pf.Lookup("turn"))
	viper.BindPFlag("game.no_history", pf.Lookup("no-history"))
	viper.BindPFlag("focus", pf.Lookup("focus"))

	fixturesCmd.AddCommand(fixturesListCmd)
	fixturesCmd.AddCommand(fixturesShowCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(fixturesCmd)
	rootCmd.AddCommand(versionCmd)
}

// initViper maps POCKETCHESS_ENGINE_PATH, POCKETCHESS_GAME_NO_HISTORY and friends onto the keys above.
func initViper() {
	viper.SetEnvPrefix("pocketchess")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
}

// loadConfig reads the JSON config and layers flag and environment overrides on top.
func loadConfig() (*config.Config, error) {
	cfg, err := config.InitConfig()
	if err != nil {
		return nil, err
	}
	if v := viper.GetString("engine.path"); v != "" {
		cfg.Engine.Path = v
	}
	if v := viper.GetStringSlice("engine.args"); len(v) > 0 {
		cfg.Engine.Args = v
	}
	if v := viper.GetInt("engine.timeout_ms"); v > 0 {
		cfg.Engine.TimeoutMillis = v
	}
	if v := viper.GetString("game.fixtures_file"); v != "" {
		cfg.Game.FixturesFile = v
	}
	if v := viper.GetString("game.default_drop_kind"); v != "" {
		cfg.Game.DefaultDropKind = v
	}
	if viper.GetBool("game.no_history") {
		cfg.Game.RecordHistory = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFixtures returns the built-in positions plus any from the configured fixtures file.
func loadFixtures(cfg *config.Config) (*fixtures.Registry, error) {
	reg := fixtures.Builtin()
	if cfg.Game.FixturesFile == "" {
		return reg, nil
	}
	return reg.LoadFile(cfg.Game.FixturesFile)
}

// checkFixture rejects an unknown --fixture before the UI starts.
func checkFixture(reg *fixtures.Registry, name string) error {
	if name == "" || reg.Has(name) {
		return nil
	}
	base, _ := fixtures.SplitName(name)
	return fmt.Errorf("unknown fixture %q (see \"pocketchess fixtures list\")", base)
}

// turnOverride parses --turn; empty means use the position's own turn.
func turnOverride() (*types.Color, error) {
	v := viper.GetString("turn")
	if v == "" {
		return nil, nil
	}
	c, ok := types.ParseColor(v)
	if !ok {
		return nil, fmt.Errorf("invalid --turn %q: want white or black", v)
	}
	return &c, nil
}

// checkEngine verifies that the rules engine binary is installed and accessible.
func checkEngine(cfg *config.Config) error {
	if _, err := exec.LookPath(cfg.Engine.Path); err != nil {
		return fmt.Errorf("rules engine %q not found (set --engine or POCKETCHESS_ENGINE_PATH): %w", cfg.Engine.Path, err)
	}
	return nil
}
