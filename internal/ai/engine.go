package ai

import (
    "errors"
    "fmt"
    "strings"
    "time"

    "github.com/jaminalder/tictactoe-ai/internal/domain"
    "github.com/rs/zerolog"
    "github.com/rs/zerolog/log"
)

// Level selects the move-selection strategy.
type Level int

const (
    Random Level = iota
    Minimax
)

// Errors returned by the engine.
var (
    ErrNoMoves      = errors.New("no legal moves")
    ErrUnknownLevel = errors.New("unknown level")
)

func (l Level) String() string {
    switch l {
    case Random:
        return "random"
    case Minimax:
        return "minimax"
    default:
        return fmt.Sprintf("level(%d)", int(l))
    }
}

// ParseLevel accepts "0"/"random" and "1"/"minimax".
func ParseLevel(s string) (Level, error) {
    switch strings.ToLower(strings.TrimSpace(s)) {
    case "0", "random", "easy":
        return Random, nil
    case "1", "minimax", "hard":
        return Minimax, nil
    }
    return Random, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
}

// Result is the outcome of one strategy run. Score is +1 when X wins with
// best play, -1 when O wins, 0 for a tie; the random strategy leaves it 0.
// HasMove is false when the board was already decided.
type Result struct {
    Score   int
    Move    domain.Move
    HasMove bool
    Nodes   int
}

// Strategy picks a move for player on b. Implementations never modify b.
type Strategy interface {
    Choose(b domain.Board, player domain.Cell) (Result, error)
}

type Option func(e *Engine)

func WithLevel(l Level) Option {
    return func(e *Engine) {
        if l == Random || l == Minimax {
            e.level = l
        }
    }
}

func WithPlayer(p domain.Cell) Option {
    return func(e *Engine) {
        if p == domain.X || p == domain.O {
            e.player = p
        }
    }
}

// WithSeed makes the random strategy reproducible.
func WithSeed(seed uint64) Option {
    return func(e *Engine) {
        e.random = NewRandomStrategy(seed)
    }
}

// WithParallel fans the root moves of the minimax search out to goroutines.
func WithParallel(parallel bool) Option {
    return func(e *Engine) {
        e.minimax.Parallel = parallel
    }
}

func WithLogger(logger zerolog.Logger) Option {
    return func(e *Engine) {
        e.log = logger
    }
}

// Engine is the computer opponent. Level and player may change between
// moves; a single Engine must not be used from several goroutines at once.
type Engine struct {
    level   Level
    player  domain.Cell
    random  *RandomStrategy
    minimax *MinimaxStrategy
    log     zerolog.Logger
}

// New returns a minimax engine playing O unless configured otherwise.
func New(opts ...Option) *Engine {
    e := &Engine{
        level:   Minimax,
        player:  domain.O,
        random:  NewRandomStrategy(uint64(time.Now().UnixNano())),
        minimax: &MinimaxStrategy{},
        log:     log.Logger,
    }
    for _, opt := range opts {
        opt(e)
    }
    return e
}

func (e *Engine) Level() Level { return e.level }
func (e *Engine) Player() domain.Cell { return e.player }

func (e *Engine) SetLevel(l Level) error {
    if l != Random && l != Minimax {
        return fmt.Errorf("%w: %d", ErrUnknownLevel, int(l))
    }
    e.level = l
    return nil
}

func (e *Engine) SetPlayer(p domain.Cell) error {
    if p != domain.X && p != domain.O {
        return domain.ErrInvalidPlayer
    }
    e.player = p
    return nil
}

func (e *Engine) strategy() Strategy {
    switch e.level {
    case Random:
        return e.random
    default:
        return e.minimax
    }
}

// Evaluate runs the configured strategy and returns its full result.
func (e *Engine) Evaluate(b domain.Board) (Result, error) {
    return e.strategy().Choose(b, e.player)
}

// SelectMove returns the engine's move on b. It fails with ErrNoMoves when
// b offers nothing to play.
func (e *Engine) SelectMove(b domain.Board) (domain.Move, error) {
    res, err := e.Evaluate(b)
    if err != nil {
        return domain.Move{}, err
    }
    if !res.HasMove {
        return domain.Move{}, fmt.Errorf("%w: board %s is decided", ErrNoMoves, b.String())
    }
    ev := e.log.Info().
        Str("level", e.level.String()).
        Stringer("player", e.player).
        Stringer("move", res.Move).
        Int("nodes", res.Nodes)
    if e.level == Minimax {
        ev = ev.Int("eval", res.Score)
    } else {
        ev = ev.Str("eval", "random")
    }
    ev.Msg("engine chose move")
    return res.Move, nil
}
