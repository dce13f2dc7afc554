package main

import (
    "context"
    "flag"
    "fmt"
    "io"
    "os"
    "text/tabwriter"
    "time"

    "github.com/google/subcommands"
    "github.com/jaminalder/tictactoe-ai/internal/ai"
    "github.com/jaminalder/tictactoe-ai/internal/domain"
    "github.com/rs/zerolog"
    "github.com/rs/zerolog/log"
)

type selfplayCmd struct {
    games int
    x     string
    o     string
    seed  uint64

    out io.Writer
}

func (*selfplayCmd) Name() string     { return "selfplay" }
func (*selfplayCmd) Synopsis() string { return "Play the engine against itself and report results" }
func (*selfplayCmd) Usage() string {
    return `selfplay [flags]
`
}

func (c *selfplayCmd) SetFlags(flags *flag.FlagSet) {
    flags.IntVar(&c.games, "games", 10, "number of games to play")
    flags.StringVar(&c.x, "x", "minimax", "level of the engine playing X")
    flags.StringVar(&c.o, "o", "minimax", "level of the engine playing O")
    flags.Uint64Var(&c.seed, "seed", 0, "random seed (default: time)")
}

type tally struct {
    x, o, tie int
}

func (c *selfplayCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
    if c.out == nil {
        c.out = os.Stdout
    }
    lx, err := ai.ParseLevel(c.x)
    if err != nil {
        log.Error().Err(err).Msg("bad -x")
        return subcommands.ExitUsageError
    }
    lo, err := ai.ParseLevel(c.o)
    if err != nil {
        log.Error().Err(err).Msg("bad -o")
        return subcommands.ExitUsageError
    }
    if c.seed == 0 {
        c.seed = uint64(time.Now().UnixNano())
    }

    start := time.Now()
    t, err := selfplay(ctx, c.games, lx, lo, c.seed)
    if err != nil {
        log.Error().Err(err).Msg("selfplay")
        return subcommands.ExitFailure
    }
    w := tabwriter.NewWriter(c.out, 0, 8, 2, ' ', 0)
    fmt.Fprintf(w, "X (%s)\tO (%s)\ttie\tgames\n", lx, lo)
    fmt.Fprintf(w, "%d\t%d\t%d\t%d\n", t.x, t.o, t.tie, t.x+t.o+t.tie)
    w.Flush()
    log.Debug().Dur("elapsed", time.Since(start)).Msg("selfplay done")
    return subcommands.ExitSuccess
}

func selfplay(ctx context.Context, games int, lx, lo ai.Level, seed uint64) (tally, error) {
    engines := map[domain.Cell]*ai.Engine{
        domain.X: ai.New(ai.WithLevel(lx), ai.WithPlayer(domain.X), ai.WithSeed(seed), ai.WithLogger(zerolog.Nop())),
        domain.O: ai.New(ai.WithLevel(lo), ai.WithPlayer(domain.O), ai.WithSeed(seed+1), ai.WithLogger(zerolog.Nop())),
    }
    var t tally
    for i := 0; i < games; i++ {
        if err := ctx.Err(); err != nil {
            return t, err
        }
        var b domain.Board
        turn := domain.X
        for !b.Terminal() {
            mv, err := engines[turn].SelectMove(b)
            if err != nil {
                return t, err
            }
            if err := b.MarkSquare(mv.Row, mv.Col, turn); err != nil {
                return t, err
            }
            turn = turn.Opponent()
        }
        switch b.FinalState() {
        case domain.X:
            t.x++
        case domain.O:
            t.o++
        default:
            t.tie++
        }
        log.Debug().Int("game", i+1).Str("board", b.String()).Msg("selfplay game")
    }
    return t, nil
}
