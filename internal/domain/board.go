package domain

import (
    "errors"
    "fmt"
    "strings"
)

// Cell represents a board cell state.
type Cell uint8

const (
    Empty Cell = iota
    X
    O
)

// Size is the number of rows and columns.
const Size = 3

// Errors returned by board operations.
var (
    ErrOutOfBounds   = errors.New("out of bounds")
    ErrOccupied      = errors.New("cell occupied")
    ErrInvalidPlayer = errors.New("invalid player")
    ErrBadBoard      = errors.New("bad board")
)

func (c Cell) String() string {
    switch c {
    case X:
        return "X"
    case O:
        return "O"
    default:
        return "."
    }
}

// Opponent returns the other side; Empty stays Empty.
func (c Cell) Opponent() Cell {
    switch c {
    case X:
        return O
    case O:
        return X
    default:
        return Empty
    }
}

// ParseCell accepts x/o in either case.
func ParseCell(s string) (Cell, error) {
    switch strings.ToLower(strings.TrimSpace(s)) {
    case "x", "1":
        return X, nil
    case "o", "2":
        return O, nil
    }
    return Empty, fmt.Errorf("%w: %q", ErrInvalidPlayer, s)
}

// Move is a (row, col) pair.
type Move struct {
    Row int
    Col int
}

func (m Move) String() string { return fmt.Sprintf("(%d, %d)", m.Row, m.Col) }

func inBounds(r, c int) bool { return r >= 0 && r < Size && c >= 0 && c < Size }

// Board is a 3x3 grid plus the number of marked squares. It holds no
// references, so assigning a Board copies it.
type Board struct {
    squares [Size][Size]Cell
    marked  int
}

// MarkSquare places player at (row, col). The square must be empty.
func (b *Board) MarkSquare(row, col int, player Cell) error {
    if !inBounds(row, col) {
        return ErrOutOfBounds
    }
    if player != X && player != O {
        return ErrInvalidPlayer
    }
    if b.squares[row][col] != Empty {
        return ErrOccupied
    }
    b.squares[row][col] = player
    b.marked++
    return nil
}

// IsEmptySquare reports whether (row, col) is unmarked. Out-of-range squares
// are never empty.
func (b *Board) IsEmptySquare(row, col int) bool {
    return inBounds(row, col) && b.squares[row][col] == Empty
}

// Cell returns the value at (row, col).
func (b *Board) Cell(row, col int) Cell {
    if !inBounds(row, col) {
        return Empty
    }
    return b.squares[row][col]
}

// EmptySquares lists the empty squares in row-major order. Search relies on
// this order for tie-breaking.
func (b *Board) EmptySquares() []Move {
    out := make([]Move, 0, Size*Size-b.marked)
    for r := 0; r < Size; r++ {
        for c := 0; c < Size; c++ {
            if b.squares[r][c] == Empty {
                out = append(out, Move{Row: r, Col: c})
            }
        }
    }
    return out
}

func (b *Board) Marked() int { return b.marked }
func (b *Board) IsFull() bool { return b.marked == Size*Size }
func (b *Board) IsEmpty() bool { return b.marked == 0 }

// FinalState returns the side holding a complete line, or Empty.
func (b *Board) FinalState() Cell {
    s := &b.squares
    // rows
    for r := 0; r < Size; r++ {
        if s[r][0] != Empty && s[r][0] == s[r][1] && s[r][1] == s[r][2] {
            return s[r][0]
        }
    }
    // cols
    for c := 0; c < Size; c++ {
        if s[0][c] != Empty && s[0][c] == s[1][c] && s[1][c] == s[2][c] {
            return s[0][c]
        }
    }
    // diags
    if s[1][1] != Empty && s[0][0] == s[1][1] && s[1][1] == s[2][2] {
        return s[1][1]
    }
    if s[1][1] != Empty && s[0][2] == s[1][1] && s[1][1] == s[2][0] {
        return s[1][1]
    }
    return Empty
}

// Terminal reports whether the game on this board is decided.
func (b *Board) Terminal() bool {
    return b.FinalState() != Empty || b.IsFull()
}

// String renders the board as three rows joined by '/', e.g. "xx./oo./...".
func (b *Board) String() string {
    var sb strings.Builder
    for r := 0; r < Size; r++ {
        if r > 0 {
            sb.WriteByte('/')
        }
        for c := 0; c < Size; c++ {
            switch b.squares[r][c] {
            case X:
                sb.WriteByte('x')
            case O:
                sb.WriteByte('o')
            default:
                sb.WriteByte('.')
            }
        }
    }
    return sb.String()
}

// ParseBoard reads the String form. Rows may also be separated by newlines,
// and 0/1/2 may be used for empty/X/O.
func ParseBoard(s string) (Board, error) {
    var b Board
    rows := strings.FieldsFunc(s, func(r rune) bool {
        return r == '/' || r == '\n' || r == ' ' || r == '\r'
    })
    if len(rows) != Size {
        return Board{}, fmt.Errorf("%w: want %d rows, got %d", ErrBadBoard, Size, len(rows))
    }
    for r, row := range rows {
        if len(row) != Size {
            return Board{}, fmt.Errorf("%w: row %d has %d cells", ErrBadBoard, r, len(row))
        }
        for c := 0; c < Size; c++ {
            switch row[c] {
            case 'x', 'X', '1':
                b.squares[r][c] = X
                b.marked++
            case 'o', 'O', '2':
                b.squares[r][c] = O
                b.marked++
            case '.', '_', '-', '0':
            default:
                return Board{}, fmt.Errorf("%w: unexpected %q at (%d, %d)", ErrBadBoard, row[c], r, c)
            }
        }
    }
    return b, nil
}
