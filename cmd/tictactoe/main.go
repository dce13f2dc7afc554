package main

import (
    "context"
    "flag"
    "fmt"
    "os"

    "github.com/google/subcommands"
    "github.com/jaminalder/tictactoe-ai/internal/config"
    "github.com/rs/zerolog"
    "github.com/rs/zerolog/log"
)

var pretty = flag.Bool("pretty", false, "human-readable console logs")

func main() {
    subcommands.Register(subcommands.HelpCommand(), "")
    subcommands.Register(subcommands.FlagsCommand(), "")
    subcommands.Register(subcommands.CommandsCommand(), "")
    subcommands.Register(&serveCmd{}, "")
    subcommands.Register(&playCmd{}, "")
    subcommands.Register(&solveCmd{}, "")
    subcommands.Register(&selfplayCmd{}, "")

    flag.Parse()

    cfg, err := config.Load()
    if err != nil {
        fmt.Fprintf(os.Stderr, "config: %v\n", err)
        os.Exit(int(subcommands.ExitUsageError))
    }
    zerolog.SetGlobalLevel(cfg.LogLevel)
    if *pretty {
        log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
    }

    ctx := context.Background()
    os.Exit(int(subcommands.Execute(ctx, &cfg)))
}

// configArg extracts the config passed to subcommands.Execute.
func configArg(args []interface{}) *config.Config {
    for _, a := range args {
        if cfg, ok := a.(*config.Config); ok {
            return cfg
        }
    }
    cfg, _ := config.LoadFrom(func(string) string { return "" })
    return &cfg
}
