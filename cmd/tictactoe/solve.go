package main

import (
    "context"
    "flag"
    "fmt"
    "io"
    "os"

    "github.com/google/subcommands"
    "github.com/jaminalder/tictactoe-ai/internal/ai"
    "github.com/jaminalder/tictactoe-ai/internal/domain"
    "github.com/rs/zerolog"
    "github.com/rs/zerolog/log"
)

type solveCmd struct {
    board    string
    turn     string
    parallel bool

    out io.Writer
}

func (*solveCmd) Name() string     { return "solve" }
func (*solveCmd) Synopsis() string { return "Print the minimax move for a position" }
func (*solveCmd) Usage() string {
    return `solve -board "xx./oo./..." -turn o
`
}

func (c *solveCmd) SetFlags(flags *flag.FlagSet) {
    flags.StringVar(&c.board, "board", "", "position as three rows separated by /")
    flags.StringVar(&c.turn, "turn", "o", "side to move: x or o")
    flags.BoolVar(&c.parallel, "parallel", false, "search root moves in parallel")
}

func (c *solveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
    if c.out == nil {
        c.out = os.Stdout
    }
    if err := c.solve(); err != nil {
        log.Error().Err(err).Msg("solve")
        return subcommands.ExitUsageError
    }
    return subcommands.ExitSuccess
}

func (c *solveCmd) solve() error {
    b, err := domain.ParseBoard(c.board)
    if err != nil {
        return err
    }
    turn, err := domain.ParseCell(c.turn)
    if err != nil {
        return err
    }
    e := ai.New(
        ai.WithLevel(ai.Minimax),
        ai.WithPlayer(turn),
        ai.WithParallel(c.parallel),
        ai.WithLogger(zerolog.Nop()),
    )
    res, err := e.Evaluate(b)
    if err != nil {
        return err
    }
    if !res.HasMove {
        fmt.Fprintf(c.out, "decided: eval %d\n", res.Score)
        return nil
    }
    fmt.Fprintf(c.out, "move %d %d eval %d nodes %d\n", res.Move.Row, res.Move.Col, res.Score, res.Nodes)
    return nil
}
