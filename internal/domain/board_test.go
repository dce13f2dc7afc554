package domain

import (
    "errors"
    "testing"
)

var winningLines = [][3]Move{
    // rows
    {{0, 0}, {0, 1}, {0, 2}},
    {{1, 0}, {1, 1}, {1, 2}},
    {{2, 0}, {2, 1}, {2, 2}},
    // cols
    {{0, 0}, {1, 0}, {2, 0}},
    {{0, 1}, {1, 1}, {2, 1}},
    {{0, 2}, {1, 2}, {2, 2}},
    // diags
    {{0, 0}, {1, 1}, {2, 2}},
    {{0, 2}, {1, 1}, {2, 0}},
}

// helper to mark a sequence of squares for one side
func markAll(t *testing.T, b *Board, player Cell, moves ...Move) {
    t.Helper()
    for i, m := range moves {
        if err := b.MarkSquare(m.Row, m.Col, player); err != nil {
            t.Fatalf("mark %d (%v) failed: %v", i, m, err)
        }
    }
}

func mustParse(t *testing.T, s string) Board {
    t.Helper()
    b, err := ParseBoard(s)
    if err != nil {
        t.Fatalf("ParseBoard(%q): %v", s, err)
    }
    return b
}

func TestNewBoardIsEmpty(t *testing.T) {
    var b Board
    if !b.IsEmpty() || b.IsFull() {
        t.Fatalf("expected empty, not full board")
    }
    if got := len(b.EmptySquares()); got != 9 {
        t.Fatalf("expected 9 empty squares, got %d", got)
    }
    if b.FinalState() != Empty {
        t.Fatalf("expected no winner, got %v", b.FinalState())
    }
}

func TestMarkSquareOutOfBounds(t *testing.T) {
    var b Board
    cases := []Move{{-1, 0}, {0, -1}, {3, 0}, {0, 3}, {5, 5}}
    for _, m := range cases {
        if err := b.MarkSquare(m.Row, m.Col, X); !errors.Is(err, ErrOutOfBounds) {
            t.Fatalf("expected ErrOutOfBounds for %v, got %v", m, err)
        }
        if b.IsEmptySquare(m.Row, m.Col) {
            t.Fatalf("out-of-range square %v reported empty", m)
        }
    }
    if b.Marked() != 0 {
        t.Fatalf("rejected marks must not count, got %d", b.Marked())
    }
}

func TestMarkSquareOccupied(t *testing.T) {
    var b Board
    if err := b.MarkSquare(0, 0, X); err != nil {
        t.Fatalf("first mark failed: %v", err)
    }
    if err := b.MarkSquare(0, 0, O); !errors.Is(err, ErrOccupied) {
        t.Fatalf("expected ErrOccupied on same cell, got %v", err)
    }
    if b.Cell(0, 0) != X || b.Marked() != 1 {
        t.Fatalf("occupied cell must not be overwritten: cell=%v marked=%d", b.Cell(0, 0), b.Marked())
    }
}

func TestMarkSquareRejectsEmpty(t *testing.T) {
    var b Board
    if err := b.MarkSquare(1, 1, Empty); !errors.Is(err, ErrInvalidPlayer) {
        t.Fatalf("expected ErrInvalidPlayer, got %v", err)
    }
}

func TestEmptySquaresRowMajor(t *testing.T) {
    b := mustParse(t, "x.o/.x./o..")
    want := []Move{{0, 1}, {1, 0}, {1, 2}, {2, 1}, {2, 2}}
    got := b.EmptySquares()
    if len(got) != len(want) {
        t.Fatalf("expected %v, got %v", want, got)
    }
    for i := range want {
        if got[i] != want[i] {
            t.Fatalf("expected %v, got %v", want, got)
        }
    }
}

func TestWinConditions(t *testing.T) {
    for _, side := range []Cell{X, O} {
        for _, line := range winningLines {
            var b Board
            markAll(t, &b, side, line[0], line[1])
            if b.FinalState() != Empty {
                t.Fatalf("two in a line is not a win: %s", b.String())
            }
            markAll(t, &b, side, line[2])
            if b.FinalState() != side {
                t.Fatalf("expected %v to win on line %v; board %s", side, line, b.String())
            }
            if !b.Terminal() {
                t.Fatalf("won board should be terminal")
            }
        }
    }
}

func TestMixedLineIsNotAWin(t *testing.T) {
    b := mustParse(t, "xxo/.../...")
    if b.FinalState() != Empty {
        t.Fatalf("mixed row must not win, got %v", b.FinalState())
    }
}

func TestDrawNoWinner(t *testing.T) {
    b := mustParse(t, "xox/xoo/oxx")
    if b.FinalState() != Empty {
        t.Fatalf("expected no winner on draw, got %v", b.FinalState())
    }
    if !b.IsFull() || !b.Terminal() {
        t.Fatalf("expected full terminal board")
    }
    if len(b.EmptySquares()) != 0 {
        t.Fatalf("expected no empty squares, got %v", b.EmptySquares())
    }
}

func TestMarkedCountMatchesEmptySquares(t *testing.T) {
    var b Board
    side := X
    for _, m := range []Move{{1, 1}, {0, 0}, {2, 2}, {0, 2}, {2, 0}, {1, 0}} {
        markAll(t, &b, side, m)
        side = side.Opponent()
        if b.Marked() != 9-len(b.EmptySquares()) {
            t.Fatalf("marked=%d but %d empty squares", b.Marked(), len(b.EmptySquares()))
        }
    }
}

func TestCopyDoesNotAlias(t *testing.T) {
    var b Board
    markAll(t, &b, X, Move{1, 1})
    cp := b
    markAll(t, &cp, O, Move{0, 0})
    if !b.IsEmptySquare(0, 0) || b.Marked() != 1 {
        t.Fatalf("mutating a copy changed the original: %s", b.String())
    }
}

func TestParseBoardRoundTrip(t *testing.T) {
    for _, s := range []string{"xx./oo./...", "...\n.x.\n..o", "120/220/000"} {
        b := mustParse(t, s)
        again := mustParse(t, b.String())
        if again != b {
            t.Fatalf("round trip of %q changed board: %s vs %s", s, b.String(), again.String())
        }
    }
    b := mustParse(t, "120/220/000")
    if b.Cell(0, 0) != X || b.Cell(1, 0) != O || b.Marked() != 4 {
        t.Fatalf("numeric form parsed wrong: %s", b.String())
    }
}

func TestParseBoardErrors(t *testing.T) {
    for _, s := range []string{"", "xx/oo/..", "xxx/ooo", "xq./.../..."} {
        if _, err := ParseBoard(s); !errors.Is(err, ErrBadBoard) {
            t.Fatalf("expected ErrBadBoard for %q, got %v", s, err)
        }
    }
}

func TestParseCell(t *testing.T) {
    if c, err := ParseCell("O"); err != nil || c != O {
        t.Fatalf("expected O, got %v %v", c, err)
    }
    if _, err := ParseCell("z"); !errors.Is(err, ErrInvalidPlayer) {
        t.Fatalf("expected ErrInvalidPlayer, got %v", err)
    }
}
