// Package types contains shared data structures for pocketchess.
package types

import (
	"fmt"
	"sort"
	"strings"

	"github.com/notnil/chess"
)

// BoardSize is the number of files and ranks on the board.
const BoardSize = 8

// Color is a side of the game.
type Color uint8

const (
	White Color = iota
	Black
)

// Opposite returns the other side.
func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// Title returns the capitalized color name used in status lines.
func (c Color) Title() string {
	if c == White {
		return "White"
	}
	return "Black"
}

// TerminalRank is the rank a pawn of this color promotes on.
func (c Color) TerminalRank() int {
	if c == White {
		return BoardSize - 1
	}
	return 0
}

// ParseColor accepts "white", "w", "black" or "b" in any case.
func ParseColor(s string) (Color, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white", "w":
		return White, true
	case "black", "b":
		return Black, true
	default:
		return White, false
	}
}

// Square is a board coordinate. File 0 is the a-file, rank 0 is White's back rank.
// Squares only come from NewSquare, MustSquare and ParseSquare, so every Square
// is on the board. The zero value is a1.
type Square struct {
	file, rank uint8
}

// NewSquare returns the square at file, rank and whether it is on the board.
func NewSquare(file, rank int) (Square, bool) {
	if file < 0 || file >= BoardSize || rank < 0 || rank >= BoardSize {
		return Square{}, false
	}
	return Square{file: uint8(file), rank: uint8(rank)}, true
}

// MustSquare is like NewSquare but panics when file, rank is off the board.
// It is meant for fixed coordinates.
func MustSquare(file, rank int) Square {
	sq, ok := NewSquare(file, rank)
	if !ok {
		panic(fmt.Sprintf("types: square (%d,%d) is off the board", file, rank))
	}
	return sq
}

// File returns the file index, 0 for the a-file.
func (s Square) File() int { return int(s.file) }

// Rank returns the rank index, 0 for White's back rank.
func (s Square) Rank() int { return int(s.rank) }

// String returns the algebraic name of the square, e.g. "e4".
func (s Square) String() string {
	return chess.NewSquare(chess.File(s.file), chess.Rank(s.rank)).String()
}

var squaresByName = func() map[string]Square {
	m := make(map[string]Square, BoardSize*BoardSize)
	for f := 0; f < BoardSize; f++ {
		for r := 0; r < BoardSize; r++ {
			sq := MustSquare(f, r)
			m[sq.String()] = sq
		}
	}
	return m
}()

// ParseSquare parses an algebraic square name such as "a1" or "H8".
func ParseSquare(s string) (Square, bool) {
	sq, ok := squaresByName[strings.ToLower(strings.TrimSpace(s))]
	return sq, ok
}

// PieceKind identifies a piece's movement family.
type PieceKind uint8

const (
	Pawn PieceKind = iota
	Knight
	Bishop
	Rook
	Queen
	King
	Amazon
	Grasshopper
	KnightRider
	Archbishop
	Dabbaba
	Alfil
	Ferz
	Centaur
	TestRook
	Camel
)

// AllKinds lists every kind in cycling order.
var AllKinds = []PieceKind{
	Pawn, Knight, Bishop, Rook, Queen, King,
	Amazon, Grasshopper, KnightRider, Archbishop, Dabbaba, Alfil, Ferz, Centaur, TestRook, Camel,
}

var kindCodes = map[PieceKind]string{
	Pawn:        "P",
	Knight:      "N",
	Bishop:      "B",
	Rook:        "R",
	Queen:       "Q",
	King:        "K",
	Amazon:      "A",
	Grasshopper: "G",
	KnightRider: "Kr",
	Archbishop:  "W",
	Dabbaba:     "D",
	Alfil:       "L",
	Ferz:        "F",
	Centaur:     "C",
	TestRook:    "Tr",
	Camel:       "Cl",
}

var kindNames = map[PieceKind]string{
	Pawn:        "Pawn",
	Knight:      "Knight",
	Bishop:      "Bishop",
	Rook:        "Rook",
	Queen:       "Queen",
	King:        "King",
	Amazon:      "Amazon",
	Grasshopper: "Grasshopper",
	KnightRider: "KnightRider",
	Archbishop:  "Archbishop",
	Dabbaba:     "Dabbaba",
	Alfil:       "Alfil",
	Ferz:        "Ferz",
	Centaur:     "Centaur",
	TestRook:    "TestRook",
	Camel:       "Camel",
}

// String returns the short code of the kind ("P", "Kr", ...).
func (k PieceKind) String() string {
	if code, ok := kindCodes[k]; ok {
		return code
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Name returns the display name of the kind.
func (k PieceKind) Name() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return k.String()
}

// Valid reports whether k is one of AllKinds.
func (k PieceKind) Valid() bool {
	_, ok := kindCodes[k]
	return ok
}

// ParseKind accepts a kind code ("Kr") or a display name ("knightrider"), case-insensitively.
func ParseKind(s string) (PieceKind, bool) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for _, k := range AllKinds {
		if strings.ToLower(kindCodes[k]) == needle || strings.ToLower(kindNames[k]) == needle {
			return k, true
		}
	}
	return Pawn, false
}

// PieceSnapshot is one piece as reported by the rules engine at refresh time.
type PieceSnapshot struct {
	Kind           PieceKind
	Color          Color
	Square         Square
	StunStacks     int
	MoveStackCount int
	IsRoyal        bool
	DisguisedAs    *PieceKind
}

// IsStunned reports whether the piece carries any stun stacks.
func (p PieceSnapshot) IsStunned() bool {
	return p.StunStacks > 0
}

// DisplayKind is the disguise kind when present, otherwise the real kind.
func (p PieceSnapshot) DisplayKind() PieceKind {
	if p.DisguisedAs != nil {
		return *p.DisguisedAs
	}
	return p.Kind
}

// BoardSnapshot is an immutable copy of every piece on the board.
type BoardSnapshot struct {
	pieces []PieceSnapshot
	index  map[Square]int
}

// NewBoardSnapshot copies pieces into a new snapshot. A later duplicate on the
// same square replaces the earlier one.
func NewBoardSnapshot(pieces []PieceSnapshot) BoardSnapshot {
	b := BoardSnapshot{index: make(map[Square]int, len(pieces))}
	for _, p := range pieces {
		if p.DisguisedAs != nil {
			d := *p.DisguisedAs
			p.DisguisedAs = &d
		}
		if i, ok := b.index[p.Square]; ok {
			b.pieces[i] = p
			continue
		}
		b.index[p.Square] = len(b.pieces)
		b.pieces = append(b.pieces, p)
	}
	sort.SliceStable(b.pieces, func(i, j int) bool {
		a, c := b.pieces[i].Square, b.pieces[j].Square
		if a.rank != c.rank {
			return a.rank < c.rank
		}
		return a.file < c.file
	})
	for i, p := range b.pieces {
		b.index[p.Square] = i
	}
	return b
}

// At returns the piece on sq, if any.
func (b BoardSnapshot) At(sq Square) (PieceSnapshot, bool) {
	i, ok := b.index[sq]
	if !ok {
		return PieceSnapshot{}, false
	}
	return b.pieces[i], true
}

// Pieces returns a copy of all pieces ordered by rank, then file.
func (b BoardSnapshot) Pieces() []PieceSnapshot {
	out := make([]PieceSnapshot, len(b.pieces))
	copy(out, b.pieces)
	return out
}

// Len returns the number of pieces on the board.
func (b BoardSnapshot) Len() int {
	return len(b.pieces)
}

// HasRoyal reports whether color still has a royal piece on the board.
func (b BoardSnapshot) HasRoyal(color Color) bool {
	for _, p := range b.pieces {
		if p.IsRoyal && p.Color == color {
			return true
		}
	}
	return false
}

// Pocket maps each kind to its reserve count for one color.
type Pocket map[PieceKind]int

// Count returns the reserve count of kind, zero when absent.
func (p Pocket) Count(kind PieceKind) int {
	return p[kind]
}

// Clone returns an independent copy. Negative counts are clamped to zero.
func (p Pocket) Clone() Pocket {
	out := make(Pocket, len(p))
	for k, v := range p {
		if v < 0 {
			v = 0
		}
		out[k] = v
	}
	return out
}

// DefaultReserves is the starting reserve of each side when nothing else is configured.
func DefaultReserves() Pocket {
	return Pocket{King: 1, Queen: 1, Bishop: 2, Knight: 2, Rook: 2, Pawn: 8, Camel: 1}
}

// WithOverrideDefaults fills the kinds an override omits: the orthodox set takes
// its usual counts and every fairy kind starts empty.
func WithOverrideDefaults(p Pocket) Pocket {
	out := Pocket{King: 1, Queen: 1, Bishop: 2, Knight: 2, Rook: 2, Pawn: 8}
	for _, k := range AllKinds[6:] {
		out[k] = 0
	}
	for k, v := range p {
		if v < 0 {
			v = 0
		}
		out[k] = v
	}
	return out
}

// Pockets holds both colors' reserves.
type Pockets struct {
	White Pocket
	Black Pocket
}

// For returns the pocket of color.
func (p Pockets) For(c Color) Pocket {
	if c == White {
		return p.White
	}
	return p.Black
}

// Clone deep-copies both pockets.
func (p Pockets) Clone() Pockets {
	return Pockets{White: p.White.Clone(), Black: p.Black.Clone()}
}

// PlacedPiece is one entry of a position fixture.
type PlacedPiece struct {
	Kind           PieceKind
	Color          Color
	Square         Square
	StunStacks     int
	MoveStackCount int
}

// Position is a full board setup handed to the engine in one call.
type Position struct {
	Turn    Color
	Pieces  []PlacedPiece
	Pockets *Pockets
}

// Clone deep-copies the position so callers never share backing arrays.
func (p Position) Clone() Position {
	out := Position{Turn: p.Turn}
	out.Pieces = make([]PlacedPiece, len(p.Pieces))
	copy(out.Pieces, p.Pieces)
	if p.Pockets != nil {
		pk := p.Pockets.Clone()
		out.Pockets = &pk
	}
	return out
}

// Outcome is the result of the game as seen by the royal elimination check.
type Outcome uint8

const (
	Ongoing Outcome = iota
	WhiteWins
	BlackWins
	Draw
)

// Terminal reports whether the outcome ends the game.
func (o Outcome) Terminal() bool {
	return o != Ongoing
}

func (o Outcome) String() string {
	switch o {
	case WhiteWins:
		return "White wins"
	case BlackWins:
		return "Black wins"
	case Draw:
		return "Draw"
	default:
		return "Ongoing"
	}
}

// WinFor returns the outcome in which color wins.
func WinFor(c Color) Outcome {
	if c == White {
		return WhiteWins
	}
	return BlackWins
}
