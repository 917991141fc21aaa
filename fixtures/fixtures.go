// Package fixtures holds the named test positions that can be loaded into a game.
package fixtures

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"pocketchess/types"
)

// ErrNotFound is returned when no fixture has the requested name.
var ErrNotFound = errors.New("fixture not found")

// Registry is an immutable table of named positions. Every accessor returns copies.
type Registry struct {
	positions map[string]types.Position
}

var (
	builtin     *Registry
	builtinOnce sync.Once
)

// Builtin returns the process-wide table of built-in fixtures.
func Builtin() *Registry {
	builtinOnce.Do(func() {
		builtin = &Registry{positions: builtinPositions()}
	})
	return builtin
}

// Names returns the fixture names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.positions))
	for name := range r.positions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a fixture called name exists. A ":white" or ":black"
// suffix is ignored.
func (r *Registry) Has(name string) bool {
	base, _ := SplitName(name)
	_, ok := r.positions[base]
	return ok
}

// Get returns a deep copy of the named fixture. name may carry a ":white" or
// ":black" suffix selecting the side to move; a non-nil turnOverride wins over
// the suffix. Pocket overrides come back with omitted kinds filled in.
func (r *Registry) Get(name string, turnOverride *types.Color) (types.Position, error) {
	base, suffix := SplitName(name)
	pos, ok := r.positions[base]
	if !ok {
		return types.Position{}, fmt.Errorf("%w: %s", ErrNotFound, base)
	}
	out := pos.Clone()
	switch {
	case turnOverride != nil:
		out.Turn = *turnOverride
	case suffix != nil:
		out.Turn = *suffix
	}
	if out.Pockets != nil {
		out.Pockets = &types.Pockets{
			White: types.WithOverrideDefaults(out.Pockets.White),
			Black: types.WithOverrideDefaults(out.Pockets.Black),
		}
	}
	return out, nil
}

// With returns a new registry holding r's fixtures plus extra. Entries in extra
// replace fixtures of the same name.
func (r *Registry) With(extra map[string]types.Position) *Registry {
	out := &Registry{positions: make(map[string]types.Position, len(r.positions)+len(extra))}
	for name, pos := range r.positions {
		out.positions[name] = pos.Clone()
	}
	for name, pos := range extra {
		out.positions[name] = pos.Clone()
	}
	return out
}

// SplitName separates a fixture name from an optional ":white"/":black" suffix.
// Unrecognised suffixes are dropped.
func SplitName(name string) (string, *types.Color) {
	base, suffix, found := strings.Cut(strings.TrimSpace(name), ":")
	if !found {
		return base, nil
	}
	switch strings.ToLower(suffix) {
	case "white":
		c := types.White
		return base, &c
	case "black":
		c := types.Black
		return base, &c
	}
	return base, nil
}

func sq(file, rank int) types.Square {
	return types.MustSquare(file, rank)
}

func piece(kind types.PieceKind, color types.Color, file, rank, stun, stack int) types.PlacedPiece {
	return types.PlacedPiece{Kind: kind, Color: color, Square: sq(file, rank), StunStacks: stun, MoveStackCount: stack}
}

func builtinPositions() map[string]types.Position {
	const (
		w = types.White
		b = types.Black
	)
	orthodox := func(k, q, bi, n, r, p int) types.Pocket {
		return types.Pocket{types.King: k, types.Queen: q, types.Bishop: bi, types.Knight: n, types.Rook: r, types.Pawn: p}
	}

	return map[string]types.Position{
		"move_stack_test": {
			Turn: w,
			Pieces: []types.PlacedPiece{
				piece(types.King, w, 4, 0, 0, 3),
				piece(types.King, b, 4, 7, 0, 3),
				piece(types.Queen, w, 3, 0, 0, 5),
				piece(types.Queen, b, 3, 7, 0, 5),
			},
		},
		"stun_test": {
			Turn: w,
			Pieces: []types.PlacedPiece{
				piece(types.King, w, 4, 0, 0, 1),
				piece(types.King, b, 4, 7, 0, 1),
				piece(types.Rook, w, 0, 0, 3, 0),
				piece(types.Rook, b, 0, 7, 3, 0),
				piece(types.Knight, w, 1, 0, 1, 2),
				piece(types.Knight, b, 1, 7, 1, 2),
			},
		},
		"promotion_test": {
			Turn: b,
			Pieces: []types.PlacedPiece{
				piece(types.King, w, 4, 0, 0, 1),
				piece(types.King, b, 4, 7, 0, 1),
				piece(types.Pawn, w, 0, 6, 0, 1),
				piece(types.Pawn, b, 7, 1, 0, 1),
			},
			Pockets: &types.Pockets{
				White: orthodox(1, 1, 2, 2, 2, 0),
				Black: orthodox(1, 1, 2, 2, 2, 0),
			},
		},
		"complex_test": {
			Turn: w,
			Pieces: []types.PlacedPiece{
				piece(types.King, w, 4, 0, 0, 2),
				piece(types.King, b, 4, 7, 0, 2),
				piece(types.Queen, w, 3, 3, 1, 3),
				piece(types.Rook, w, 0, 0, 0, 2),
				piece(types.Bishop, w, 5, 2, 2, 0),
				piece(types.Knight, w, 6, 2, 0, 1),
				piece(types.Queen, b, 3, 4, 1, 3),
				piece(types.Rook, b, 7, 7, 0, 2),
				piece(types.Bishop, b, 2, 5, 2, 0),
				piece(types.Knight, b, 1, 5, 0, 1),
			},
		},
		// white king on e4 is checked by the black rook on e6
		"royal_check_test": {
			Turn: w,
			Pieces: []types.PlacedPiece{
				piece(types.King, w, 4, 3, 0, 1),
				piece(types.King, b, 4, 7, 0, 1),
				piece(types.Rook, b, 4, 5, 0, 1),
				piece(types.Queen, w, 2, 2, 0, 2),
				piece(types.Knight, w, 6, 2, 0, 2),
				piece(types.Queen, b, 3, 6, 0, 2),
				piece(types.Bishop, b, 5, 5, 0, 1),
			},
			Pockets: &types.Pockets{
				White: orthodox(1, 0, 1, 1, 2, 8),
				Black: orthodox(1, 1, 2, 2, 1, 8),
			},
		},
		"royal_disguise_test": {
			Turn: w,
			Pieces: []types.PlacedPiece{
				piece(types.King, w, 4, 4, 0, 1),
				piece(types.King, b, 4, 7, 0, 1),
				piece(types.Queen, w, 5, 4, 0, 2),
				piece(types.Rook, w, 3, 4, 0, 1),
				piece(types.Bishop, w, 2, 3, 0, 1),
				piece(types.Knight, w, 6, 3, 0, 1),
				piece(types.Queen, b, 4, 6, 0, 1),
				piece(types.Rook, b, 6, 6, 0, 1),
			},
			Pockets: &types.Pockets{
				White: orthodox(1, 0, 1, 1, 1, 8),
				Black: orthodox(1, 1, 2, 2, 1, 8),
			},
		},
		// stunned white king under attack; the queen on d4 is the successor candidate
		"royal_succession_test": {
			Turn: w,
			Pieces: []types.PlacedPiece{
				piece(types.King, w, 4, 4, 1, 0),
				piece(types.King, b, 4, 7, 0, 1),
				piece(types.Queen, w, 3, 3, 0, 2),
				piece(types.Rook, w, 5, 3, 0, 1),
				piece(types.Knight, w, 6, 4, 0, 1),
				piece(types.Rook, b, 4, 5, 0, 1),
				piece(types.Queen, b, 3, 6, 0, 1),
			},
			Pockets: &types.Pockets{
				White: orthodox(1, 0, 2, 2, 1, 8),
				Black: orthodox(1, 1, 2, 2, 1, 8),
			},
		},
	}
}
