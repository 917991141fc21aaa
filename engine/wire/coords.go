// Package wire drives an external rules engine process over a line-oriented
// text protocol modelled on GTP.
package wire

import (
	"fmt"
	"strconv"
	"strings"

	"pocketchess/types"
)

// Wire format:
// - Squares: algebraic, file letter then rank digit ("a1".."h8"), rank 1 is White's back rank.
// - Colors: "white" / "black".
// - Kinds: short codes "P N B R Q K A G Kr W D L F C Tr Cl".
// - Reserves: comma separated KIND=COUNT pairs, "-" for an empty list.
// - Setup pieces: KIND:COLOR:SQUARE:STUN:STACK joined by commas, "-" for none.

// squareToWire converts a board square to its algebraic name.
func squareToWire(sq types.Square) string {
	return sq.String()
}

// wireToSquare parses an algebraic square name.
func wireToSquare(s string) (types.Square, error) {
	sq, ok := types.ParseSquare(s)
	if !ok {
		return types.Square{}, fmt.Errorf("invalid square: %s", s)
	}
	return sq, nil
}

func colorToWire(c types.Color) string {
	return c.String()
}

func wireToColor(s string) (types.Color, error) {
	c, ok := types.ParseColor(s)
	if !ok {
		return types.White, fmt.Errorf("invalid color: %s", s)
	}
	return c, nil
}

func kindToWire(k types.PieceKind) string {
	return k.String()
}

func wireToKind(s string) (types.PieceKind, error) {
	k, ok := types.ParseKind(s)
	if !ok {
		return types.Pawn, fmt.Errorf("invalid kind: %s", s)
	}
	return k, nil
}

// encodeReserves renders a pocket in catalogue order. Kinds missing from p are omitted.
func encodeReserves(p types.Pocket) string {
	var parts []string
	for _, k := range types.AllKinds {
		n, ok := p[k]
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%d", kindToWire(k), n))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ",")
}

// decodeReserves parses KIND=COUNT pairs separated by commas or whitespace.
func decodeReserves(s string) (types.Pocket, error) {
	out := types.Pocket{}
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return out, nil
	}
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	for _, f := range fields {
		code, count, ok := strings.Cut(f, "=")
		if !ok {
			return nil, fmt.Errorf("invalid reserve entry: %s", f)
		}
		k, err := wireToKind(code)
		if err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(count)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid reserve count: %s", f)
		}
		out[k] = n
	}
	return out, nil
}

// encodePieces renders setup pieces for the setup command.
func encodePieces(pieces []types.PlacedPiece) string {
	if len(pieces) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(pieces))
	for _, p := range pieces {
		parts = append(parts, fmt.Sprintf("%s:%s:%s:%d:%d",
			kindToWire(p.Kind), colorToWire(p.Color), squareToWire(p.Square), p.StunStacks, p.MoveStackCount))
	}
	return strings.Join(parts, ",")
}

// decodePieceLine parses one line of the board response:
// KIND COLOR SQUARE STUN STACK ROYAL DISGUISE
func decodePieceLine(line string) (types.PieceSnapshot, error) {
	f := strings.Fields(line)
	if len(f) != 7 {
		return types.PieceSnapshot{}, fmt.Errorf("invalid piece line: %q", line)
	}
	kind, err := wireToKind(f[0])
	if err != nil {
		return types.PieceSnapshot{}, err
	}
	color, err := wireToColor(f[1])
	if err != nil {
		return types.PieceSnapshot{}, err
	}
	sq, err := wireToSquare(f[2])
	if err != nil {
		return types.PieceSnapshot{}, err
	}
	stun, err := strconv.Atoi(f[3])
	if err != nil || stun < 0 {
		return types.PieceSnapshot{}, fmt.Errorf("invalid stun count in %q", line)
	}
	stack, err := strconv.Atoi(f[4])
	if err != nil || stack < 0 {
		return types.PieceSnapshot{}, fmt.Errorf("invalid move stack in %q", line)
	}
	p := types.PieceSnapshot{
		Kind:           kind,
		Color:          color,
		Square:         sq,
		StunStacks:     stun,
		MoveStackCount: stack,
		IsRoyal:        f[5] == "1",
	}
	if f[6] != "-" {
		d, err := wireToKind(f[6])
		if err != nil {
			return types.PieceSnapshot{}, err
		}
		p.DisguisedAs = &d
	}
	return p, nil
}
