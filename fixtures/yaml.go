package fixtures

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"pocketchess/types"
)

// File is the on-disk layout of a fixtures file.
type File struct {
	Positions map[string]PositionDoc `yaml:"positions"`
}

// PositionDoc is one fixture in a fixtures file.
type PositionDoc struct {
	Turn    string      `yaml:"turn,omitempty"`
	Pieces  []PieceDoc  `yaml:"pieces"`
	Pockets *PocketsDoc `yaml:"pockets,omitempty"`
}

// PieceDoc is one placed piece. Square is algebraic ("e1").
type PieceDoc struct {
	Kind      string `yaml:"kind"`
	Color     string `yaml:"color"`
	Square    string `yaml:"square"`
	Stun      int    `yaml:"stun,omitempty"`
	MoveStack int    `yaml:"move_stack,omitempty"`
}

// PocketsDoc maps kind codes to reserve counts per color.
type PocketsDoc struct {
	White map[string]int `yaml:"white"`
	Black map[string]int `yaml:"black"`
}

// LoadFile reads a fixtures file and returns r extended with its positions.
func (r *Registry) LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open fixtures %s: %w", path, err)
	}
	defer f.Close()

	reg, err := r.LoadYAML(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}

// LoadYAML decodes a fixtures document and returns r extended with its positions.
func (r *Registry) LoadYAML(rd io.Reader) (*Registry, error) {
	var doc File
	if err := yaml.NewDecoder(rd).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode fixtures: %w", err)
	}
	extra := make(map[string]types.Position, len(doc.Positions))
	for name, pd := range doc.Positions {
		if base, _ := SplitName(name); base != name || name == "" {
			return nil, fmt.Errorf("invalid fixture name %q", name)
		}
		pos, err := pd.toPosition()
		if err != nil {
			return nil, fmt.Errorf("fixture %s: %w", name, err)
		}
		extra[name] = pos
	}
	return r.With(extra), nil
}

// WriteYAML encodes a single named position in the fixtures file layout.
func WriteYAML(w io.Writer, name string, pos types.Position) error {
	doc := File{Positions: map[string]PositionDoc{name: docFromPosition(pos)}}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

func (pd PositionDoc) toPosition() (types.Position, error) {
	pos := types.Position{Turn: types.White}
	if pd.Turn != "" {
		c, ok := types.ParseColor(pd.Turn)
		if !ok {
			return pos, fmt.Errorf("invalid turn %q", pd.Turn)
		}
		pos.Turn = c
	}

	seen := make(map[types.Square]bool, len(pd.Pieces))
	for i, p := range pd.Pieces {
		kind, ok := types.ParseKind(p.Kind)
		if !ok {
			return pos, fmt.Errorf("piece %d: invalid kind %q", i, p.Kind)
		}
		color, ok := types.ParseColor(p.Color)
		if !ok {
			return pos, fmt.Errorf("piece %d: invalid color %q", i, p.Color)
		}
		sq, ok := types.ParseSquare(p.Square)
		if !ok {
			return pos, fmt.Errorf("piece %d: invalid square %q", i, p.Square)
		}
		if seen[sq] {
			return pos, fmt.Errorf("piece %d: square %s already occupied", i, sq)
		}
		seen[sq] = true
		if p.Stun < 0 || p.MoveStack < 0 {
			return pos, fmt.Errorf("piece %d: negative counter", i)
		}
		pos.Pieces = append(pos.Pieces, types.PlacedPiece{
			Kind: kind, Color: color, Square: sq, StunStacks: p.Stun, MoveStackCount: p.MoveStack,
		})
	}

	if pd.Pockets != nil {
		white, err := pocketFromDoc(pd.Pockets.White)
		if err != nil {
			return pos, fmt.Errorf("white pocket: %w", err)
		}
		black, err := pocketFromDoc(pd.Pockets.Black)
		if err != nil {
			return pos, fmt.Errorf("black pocket: %w", err)
		}
		pos.Pockets = &types.Pockets{White: white, Black: black}
	}
	return pos, nil
}

func pocketFromDoc(m map[string]int) (types.Pocket, error) {
	out := make(types.Pocket, len(m))
	for code, n := range m {
		k, ok := types.ParseKind(code)
		if !ok {
			return nil, fmt.Errorf("invalid kind %q", code)
		}
		if n < 0 {
			return nil, fmt.Errorf("negative count for %s", code)
		}
		out[k] = n
	}
	return out, nil
}

func docFromPosition(pos types.Position) PositionDoc {
	pd := PositionDoc{Turn: pos.Turn.String()}
	for _, p := range pos.Pieces {
		pd.Pieces = append(pd.Pieces, PieceDoc{
			Kind:      p.Kind.String(),
			Color:     p.Color.String(),
			Square:    p.Square.String(),
			Stun:      p.StunStacks,
			MoveStack: p.MoveStackCount,
		})
	}
	if pos.Pockets != nil {
		pd.Pockets = &PocketsDoc{
			White: pocketToDoc(pos.Pockets.White),
			Black: pocketToDoc(pos.Pockets.Black),
		}
	}
	return pd
}

func pocketToDoc(p types.Pocket) map[string]int {
	out := make(map[string]int, len(p))
	for k, n := range p {
		out[k.String()] = n
	}
	return out
}
