package ai

import (
    "bytes"
    "encoding/json"
    "fmt"
    "testing"

    "github.com/jaminalder/tictactoe-ai/internal/domain"
    "github.com/rs/zerolog"
    "github.com/stretchr/testify/require"
)

func quiet(opts ...Option) *Engine {
    return New(append([]Option{WithLogger(zerolog.Nop())}, opts...)...)
}

func TestNewDefaults(t *testing.T) {
    e := quiet()
    require.Equal(t, Minimax, e.Level())
    require.Equal(t, domain.O, e.Player())
}

func TestParseLevel(t *testing.T) {
    for in, want := range map[string]Level{"0": Random, "random": Random, "1": Minimax, " Minimax ": Minimax} {
        got, err := ParseLevel(in)
        require.NoError(t, err, in)
        require.Equal(t, want, got, in)
    }
    _, err := ParseLevel("2")
    require.ErrorIs(t, err, ErrUnknownLevel)
}

func TestSetLevelAndPlayer(t *testing.T) {
    e := quiet()
    require.NoError(t, e.SetLevel(Random))
    require.Equal(t, Random, e.Level())
    require.ErrorIs(t, e.SetLevel(Level(7)), ErrUnknownLevel)
    require.Equal(t, Random, e.Level(), "rejected level must not apply")

    require.NoError(t, e.SetPlayer(domain.X))
    require.Equal(t, domain.X, e.Player())
    require.ErrorIs(t, e.SetPlayer(domain.Empty), domain.ErrInvalidPlayer)
}

func TestRandomCoversEveryEmptySquare(t *testing.T) {
    b := parse(t, "x.o/.x./o..")
    e := quiet(WithLevel(Random), WithSeed(42))
    seen := make(map[domain.Move]int)
    for i := 0; i < 500; i++ {
        m, err := e.SelectMove(b)
        require.NoError(t, err)
        require.True(t, b.IsEmptySquare(m.Row, m.Col), "random move %v is not empty", m)
        seen[m]++
    }
    require.Len(t, seen, len(b.EmptySquares()))
}

func TestRandomOnFullBoard(t *testing.T) {
    b := parse(t, "xox/xoo/oxx")
    _, err := quiet(WithLevel(Random)).SelectMove(b)
    require.ErrorIs(t, err, ErrNoMoves)
}

func TestMinimaxOnDecidedBoard(t *testing.T) {
    for _, s := range []string{"xox/xoo/oxx", "xxx/oo./..."} {
        _, err := quiet().SelectMove(parse(t, s))
        require.ErrorIs(t, err, ErrNoMoves, s)
    }
}

func TestSelectMoveLeavesBoardUntouched(t *testing.T) {
    b := parse(t, "x../.../...")
    before := b
    for _, l := range []Level{Random, Minimax} {
        _, err := quiet(WithLevel(l)).SelectMove(b)
        require.NoError(t, err)
        require.Equal(t, before, b)
    }
}

func TestEngineAsXTakesTheWin(t *testing.T) {
    e := quiet(WithPlayer(domain.X))
    res, err := e.Evaluate(parse(t, "xx./oo./..."))
    require.NoError(t, err)
    require.Equal(t, 1, res.Score)
    require.Equal(t, domain.Move{Row: 0, Col: 2}, res.Move)
}

func TestParallelEngineMatchesSequential(t *testing.T) {
    seq := quiet()
    par := quiet(WithParallel(true))
    for _, s := range []string{".../.x./...", "x../.o./..x", "xx./oo./..."} {
        b := parse(t, s)
        a, err := seq.Evaluate(b)
        require.NoError(t, err)
        p, err := par.Evaluate(b)
        require.NoError(t, err)
        require.Equal(t, a, p, s)
    }
}

func TestMinimaxSelfPlayAlwaysTies(t *testing.T) {
    for r := 0; r < domain.Size; r++ {
        for c := 0; c < domain.Size; c++ {
            t.Run(fmt.Sprintf("start(%d,%d)", r, c), func(t *testing.T) {
                var b domain.Board
                require.NoError(t, b.MarkSquare(r, c, domain.X))
                engines := map[domain.Cell]*Engine{
                    domain.X: quiet(WithPlayer(domain.X)),
                    domain.O: quiet(WithPlayer(domain.O)),
                }
                turn := domain.O
                for !b.Terminal() {
                    m, err := engines[turn].SelectMove(b)
                    require.NoError(t, err)
                    require.NoError(t, b.MarkSquare(m.Row, m.Col, turn))
                    turn = turn.Opponent()
                }
                require.Equal(t, domain.Empty, b.FinalState(), "game should always end in a draw, got %s", b.String())
            })
        }
    }
}

func TestMinimaxNeverLosesPlayingSecond(t *testing.T) {
    e := quiet()
    var games int
    var walk func(b domain.Board)
    walk = func(b domain.Board) {
        for _, m := range b.EmptySquares() {
            child := b
            require.NoError(t, child.MarkSquare(m.Row, m.Col, domain.X))
            if child.Terminal() {
                games++
                require.NotEqual(t, domain.X, child.FinalState(), "X won: %s", child.String())
                continue
            }
            reply, err := e.SelectMove(child)
            require.NoError(t, err)
            require.NoError(t, child.MarkSquare(reply.Row, reply.Col, domain.O))
            if child.Terminal() {
                games++
                continue
            }
            walk(child)
        }
    }
    walk(domain.Board{})
    require.Greater(t, games, 0)
}

func TestSelectMoveLogsEvaluation(t *testing.T) {
    var buf bytes.Buffer
    e := New(WithLogger(zerolog.New(&buf)))
    _, err := e.SelectMove(parse(t, ".../.x./..."))
    require.NoError(t, err)

    var entry map[string]any
    require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
    require.Equal(t, "engine chose move", entry["message"])
    require.Equal(t, "(0, 0)", entry["move"])
    require.EqualValues(t, 0, entry["eval"])
    require.Equal(t, "minimax", entry["level"])

    buf.Reset()
    require.NoError(t, e.SetLevel(Random))
    _, err = e.SelectMove(parse(t, ".../.x./..."))
    require.NoError(t, err)
    require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
    require.Equal(t, "random", entry["eval"])
}
