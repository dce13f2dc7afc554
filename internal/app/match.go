package app

import (
    "errors"
    "fmt"

    "github.com/jaminalder/tictactoe-ai/internal/ai"
    "github.com/jaminalder/tictactoe-ai/internal/domain"
)

// Mode says who plays the second side.
type Mode int

const (
    ModeAI Mode = iota
    ModePvP
)

func (m Mode) String() string {
    if m == ModePvP {
        return "pvp"
    }
    return "ai"
}

// Errors returned by match operations.
var (
    ErrGameOver      = errors.New("game over")
    ErrNotEngineTurn = errors.New("not the engine's turn")
)

// Match is one game: the board, whose turn it is, and the engine that plays
// in AI mode. Level and EnginePlayer mirror the engine configuration.
type Match struct {
    Board        domain.Board
    Turn         domain.Cell
    Mode         Mode
    Running      bool
    Winner       domain.Cell
    Level        ai.Level
    EnginePlayer domain.Cell

    engine *ai.Engine
}

// NewMatch starts a game in AI mode with X to move.
func NewMatch(engine *ai.Engine) Match {
    if engine == nil {
        engine = ai.New()
    }
    return Match{
        Turn:         domain.X,
        Running:      true,
        Level:        engine.Level(),
        EnginePlayer: engine.Player(),
        engine:       engine,
    }
}

// Play marks (r, c) for the side to move and advances the turn.
func (m *Match) Play(r, c int) error {
    if !m.Running {
        return ErrGameOver
    }
    if err := m.Board.MarkSquare(r, c, m.Turn); err != nil {
        return err
    }
    m.advance()
    return nil
}

func (m *Match) advance() {
    if w := m.Board.FinalState(); w != domain.Empty {
        m.Winner = w
        m.Running = false
        return
    }
    if m.Board.IsFull() {
        m.Running = false
        return
    }
    m.Turn = m.Turn.Opponent()
}

// EngineTurn reports whether the engine is due to move.
func (m *Match) EngineTurn() bool {
    return m.Mode == ModeAI && m.Running && m.Turn == m.EnginePlayer
}

// EngineMove asks the engine for a move and plays it.
func (m *Match) EngineMove() (domain.Move, error) {
    if !m.Running {
        return domain.Move{}, ErrGameOver
    }
    if !m.EngineTurn() {
        return domain.Move{}, ErrNotEngineTurn
    }
    mv, err := m.engine.SelectMove(m.Board)
    if err != nil {
        return domain.Move{}, err
    }
    if !m.Board.IsEmptySquare(mv.Row, mv.Col) {
        return domain.Move{}, fmt.Errorf("engine chose %v: %w", mv, domain.ErrOccupied)
    }
    return mv, m.Play(mv.Row, mv.Col)
}

func (m *Match) SetLevel(l ai.Level) error {
    if err := m.engine.SetLevel(l); err != nil {
        return err
    }
    m.Level = l
    return nil
}

func (m *Match) SetEnginePlayer(p domain.Cell) error {
    if err := m.engine.SetPlayer(p); err != nil {
        return err
    }
    m.EnginePlayer = p
    return nil
}

func (m *Match) ToggleMode() {
    if m.Mode == ModeAI {
        m.Mode = ModePvP
    } else {
        m.Mode = ModeAI
    }
}

// Reset replaces the board and keeps mode and engine settings.
func (m *Match) Reset() {
    m.Board = domain.Board{}
    m.Turn = domain.X
    m.Running = true
    m.Winner = domain.Empty
}

func (m *Match) Over() bool { return !m.Running }

// Outcome is "X" or "O" for a win, "tie" for a draw, "" while running.
func (m *Match) Outcome() string {
    switch {
    case m.Running:
        return ""
    case m.Winner != domain.Empty:
        return m.Winner.String()
    default:
        return "tie"
    }
}
