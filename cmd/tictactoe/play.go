package main

import (
    "bufio"
    "context"
    "flag"
    "fmt"
    "io"
    "os"
    "strconv"
    "strings"

    "github.com/google/subcommands"
    "github.com/jaminalder/tictactoe-ai/internal/ai"
    "github.com/jaminalder/tictactoe-ai/internal/app"
    "github.com/jaminalder/tictactoe-ai/internal/domain"
    "github.com/rs/zerolog/log"
)

type playCmd struct {
    level  string
    player string
    pvp    bool

    in  io.Reader
    out io.Writer
}

func (*playCmd) Name() string     { return "play" }
func (*playCmd) Synopsis() string { return "Play in the terminal" }
func (*playCmd) Usage() string {
    return `play [flags]

Enter moves as "row col" (0-2). Other commands:
  reset        start a new board
  mode         toggle between playing the engine and two humans
  level 0|1    switch the engine to random (0) or minimax (1)
  quit         leave
`
}

func (c *playCmd) SetFlags(flags *flag.FlagSet) {
    flags.StringVar(&c.level, "level", "", "engine level: random or minimax")
    flags.StringVar(&c.player, "player", "", "side the engine plays: X or O")
    flags.BoolVar(&c.pvp, "pvp", false, "start in two-player mode")
}

func (c *playCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
    cfg := configArg(args)
    opts := cfg.EngineOptions()
    if c.level != "" {
        l, err := ai.ParseLevel(c.level)
        if err != nil {
            log.Error().Err(err).Msg("bad -level")
            return subcommands.ExitUsageError
        }
        opts = append(opts, ai.WithLevel(l))
    }
    if c.player != "" {
        p, err := domain.ParseCell(c.player)
        if err != nil {
            log.Error().Err(err).Msg("bad -player")
            return subcommands.ExitUsageError
        }
        opts = append(opts, ai.WithPlayer(p))
    }
    if c.in == nil {
        c.in = os.Stdin
    }
    if c.out == nil {
        c.out = os.Stdout
    }

    m := app.NewMatch(ai.New(append(opts, ai.WithLogger(log.Logger))...))
    if c.pvp {
        m.ToggleMode()
    }
    if err := runTerminal(&m, c.in, c.out); err != nil {
        log.Error().Err(err).Msg("play")
        return subcommands.ExitFailure
    }
    return subcommands.ExitSuccess
}

func renderBoard(w io.Writer, b *domain.Board) {
    for r := 0; r < domain.Size; r++ {
        cells := make([]string, domain.Size)
        for c := 0; c < domain.Size; c++ {
            cells[c] = b.Cell(r, c).String()
        }
        fmt.Fprintln(w, " "+strings.Join(cells, " | "))
        if r < domain.Size-1 {
            fmt.Fprintln(w, "---+---+---")
        }
    }
}

func announce(w io.Writer, m *app.Match) {
    switch m.Outcome() {
    case "":
    case "tie":
        fmt.Fprintln(w, "Tie!")
    default:
        fmt.Fprintf(w, "Player %s wins!\n", m.Outcome())
    }
}

// runTerminal drives one match from line-oriented input until quit or EOF.
func runTerminal(m *app.Match, in io.Reader, out io.Writer) error {
    engineTurn := func() error {
        for m.EngineTurn() {
            mv, err := m.EngineMove()
            if err != nil {
                return err
            }
            fmt.Fprintf(out, "engine plays %d %d\n", mv.Row, mv.Col)
            renderBoard(out, &m.Board)
            announce(out, m)
        }
        return nil
    }

    renderBoard(out, &m.Board)
    if err := engineTurn(); err != nil {
        return err
    }
    sc := bufio.NewScanner(in)
    for {
        if m.Running {
            fmt.Fprintf(out, "%s> ", m.Turn)
        } else {
            fmt.Fprint(out, "> ")
        }
        if !sc.Scan() {
            return sc.Err()
        }
        fields := strings.Fields(sc.Text())
        if len(fields) == 0 {
            continue
        }
        switch fields[0] {
        case "quit", "q":
            return nil
        case "reset":
            m.Reset()
            renderBoard(out, &m.Board)
        case "mode":
            m.ToggleMode()
            fmt.Fprintf(out, "mode: %s\n", m.Mode)
        case "level":
            if len(fields) != 2 {
                fmt.Fprintln(out, "usage: level 0|1")
                continue
            }
            l, err := ai.ParseLevel(fields[1])
            if err == nil {
                err = m.SetLevel(l)
            }
            if err != nil {
                fmt.Fprintln(out, err)
                continue
            }
            fmt.Fprintf(out, "level: %s\n", l)
        default:
            if len(fields) != 2 {
                fmt.Fprintln(out, "enter a move as: row col")
                continue
            }
            r, errR := strconv.Atoi(fields[0])
            col, errC := strconv.Atoi(fields[1])
            if errR != nil || errC != nil {
                fmt.Fprintln(out, "enter a move as: row col")
                continue
            }
            if err := m.Play(r, col); err != nil {
                fmt.Fprintln(out, err)
                continue
            }
            renderBoard(out, &m.Board)
            announce(out, m)
        }
        if err := engineTurn(); err != nil {
            return err
        }
    }
}
