package app

import (
    "testing"

    "github.com/jaminalder/tictactoe-ai/internal/ai"
    "github.com/jaminalder/tictactoe-ai/internal/domain"
    "github.com/rs/zerolog"
    "github.com/stretchr/testify/require"
)

func quietEngine(opts ...ai.Option) *ai.Engine {
    return ai.New(append([]ai.Option{ai.WithLogger(zerolog.Nop())}, opts...)...)
}

// helper to apply a sequence of moves
func playMoves(t *testing.T, m *Match, moves ...domain.Move) {
    t.Helper()
    for i, mv := range moves {
        require.NoError(t, m.Play(mv.Row, mv.Col), "move %d (%v)", i, mv)
    }
}

func TestNewMatchInitialState(t *testing.T) {
    m := NewMatch(quietEngine())
    require.Equal(t, domain.X, m.Turn)
    require.Equal(t, ModeAI, m.Mode)
    require.True(t, m.Running)
    require.Equal(t, ai.Minimax, m.Level)
    require.Equal(t, domain.O, m.EnginePlayer)
    require.True(t, m.Board.IsEmpty())
    require.Equal(t, "", m.Outcome())
}

func TestMatchTurnFlipsAndRejectsOccupied(t *testing.T) {
    m := NewMatch(quietEngine())
    playMoves(t, &m, domain.Move{Row: 1, Col: 1})
    require.Equal(t, domain.O, m.Turn)
    require.ErrorIs(t, m.Play(1, 1), domain.ErrOccupied)
    require.ErrorIs(t, m.Play(3, 0), domain.ErrOutOfBounds)
    require.Equal(t, domain.O, m.Turn, "failed moves keep the turn")
}

func TestMatchWinEndsGame(t *testing.T) {
    m := NewMatch(quietEngine())
    m.ToggleMode()
    playMoves(t, &m,
        domain.Move{Row: 0, Col: 0}, domain.Move{Row: 1, Col: 0},
        domain.Move{Row: 0, Col: 1}, domain.Move{Row: 1, Col: 1},
        domain.Move{Row: 0, Col: 2})
    require.True(t, m.Over())
    require.Equal(t, domain.X, m.Winner)
    require.Equal(t, "X", m.Outcome())
    require.ErrorIs(t, m.Play(2, 2), ErrGameOver)
    _, err := m.EngineMove()
    require.ErrorIs(t, err, ErrGameOver)
}

func TestMatchDraw(t *testing.T) {
    m := NewMatch(quietEngine())
    m.ToggleMode()
    playMoves(t, &m,
        domain.Move{Row: 0, Col: 0}, domain.Move{Row: 0, Col: 1}, domain.Move{Row: 0, Col: 2},
        domain.Move{Row: 1, Col: 1}, domain.Move{Row: 1, Col: 0}, domain.Move{Row: 1, Col: 2},
        domain.Move{Row: 2, Col: 1}, domain.Move{Row: 2, Col: 0}, domain.Move{Row: 2, Col: 2})
    require.True(t, m.Over())
    require.Equal(t, domain.Empty, m.Winner)
    require.Equal(t, "tie", m.Outcome())
}

func TestEngineMoveOnlyOnEngineTurn(t *testing.T) {
    m := NewMatch(quietEngine())
    _, err := m.EngineMove()
    require.ErrorIs(t, err, ErrNotEngineTurn, "X (human) moves first")

    playMoves(t, &m, domain.Move{Row: 1, Col: 1})
    require.True(t, m.EngineTurn())
    mv, err := m.EngineMove()
    require.NoError(t, err)
    require.Equal(t, domain.Move{Row: 0, Col: 0}, mv, "minimax answers the centre with a corner")
    require.Equal(t, domain.O, m.Board.Cell(0, 0))
    require.Equal(t, domain.X, m.Turn)

    m.ToggleMode()
    playMoves(t, &m, domain.Move{Row: 2, Col: 2})
    require.False(t, m.EngineTurn(), "no engine in pvp mode")
}

func TestMatchSettings(t *testing.T) {
    m := NewMatch(quietEngine())
    require.NoError(t, m.SetLevel(ai.Random))
    require.Equal(t, ai.Random, m.Level)
    require.Error(t, m.SetLevel(ai.Level(9)))
    require.Equal(t, ai.Random, m.Level)

    require.NoError(t, m.SetEnginePlayer(domain.X))
    require.True(t, m.EngineTurn(), "engine now plays X, which is to move")
    require.ErrorIs(t, m.SetEnginePlayer(domain.Empty), domain.ErrInvalidPlayer)
    require.Equal(t, domain.X, m.EnginePlayer)
}

func TestMatchResetKeepsSettings(t *testing.T) {
    m := NewMatch(quietEngine())
    require.NoError(t, m.SetLevel(ai.Random))
    m.ToggleMode()
    playMoves(t, &m, domain.Move{Row: 0, Col: 0})
    m.Reset()
    require.True(t, m.Board.IsEmpty())
    require.Equal(t, domain.X, m.Turn)
    require.True(t, m.Running)
    require.Equal(t, ModePvP, m.Mode)
    require.Equal(t, ai.Random, m.Level)
}

func TestRandomEngineFinishesGames(t *testing.T) {
    for i := 0; i < 20; i++ {
        m := NewMatch(quietEngine(ai.WithLevel(ai.Random), ai.WithSeed(uint64(i))))
        for m.Running {
            if m.EngineTurn() {
                _, err := m.EngineMove()
                require.NoError(t, err)
                continue
            }
            free := m.Board.EmptySquares()
            playMoves(t, &m, free[len(free)-1])
        }
        require.True(t, m.Board.Terminal())
    }
}
