package main

import (
    "context"
    "errors"
    "flag"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/google/subcommands"
    "github.com/jaminalder/tictactoe-ai/internal/ai"
    "github.com/jaminalder/tictactoe-ai/internal/analytics"
    "github.com/jaminalder/tictactoe-ai/internal/app"
    "github.com/jaminalder/tictactoe-ai/internal/domain"
    "github.com/jaminalder/tictactoe-ai/internal/storage"
    "github.com/jaminalder/tictactoe-ai/internal/web"
    "github.com/rs/zerolog/log"
)

type serveCmd struct {
    addr   string
    level  string
    player string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "Serve the game over HTTP" }
func (*serveCmd) Usage() string {
    return `serve [flags]
`
}

func (c *serveCmd) SetFlags(flags *flag.FlagSet) {
    flags.StringVar(&c.addr, "addr", "", "listen address (default from ADDR/PORT)")
    flags.StringVar(&c.level, "level", "", "engine level: random or minimax")
    flags.StringVar(&c.player, "player", "", "side the engine plays: X or O")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
    cfg := configArg(args)
    if c.addr != "" {
        cfg.Addr = c.addr
    }
    if c.level != "" {
        l, err := ai.ParseLevel(c.level)
        if err != nil {
            log.Error().Err(err).Msg("bad -level")
            return subcommands.ExitUsageError
        }
        cfg.Level = l
    }
    if c.player != "" {
        p, err := domain.ParseCell(c.player)
        if err != nil {
            log.Error().Err(err).Msg("bad -player")
            return subcommands.ExitUsageError
        }
        cfg.Player = p
    }

    ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
    defer stop()

    var store storage.Store = storage.NewMemoryStore()
    if cfg.PostgresURL != "" {
        pg, err := storage.NewPostgresStore(ctx, cfg.PostgresURL)
        if err != nil {
            log.Warn().Err(err).Msg("postgres disabled")
        } else {
            defer pg.Close(context.Background())
            if err := pg.EnsureTables(ctx); err != nil {
                log.Warn().Err(err).Msg("postgres ensure tables failed")
            }
            store = pg
        }
    }
    opts := []app.Option{
        app.WithEngineOptions(cfg.EngineOptions()...),
        app.WithStore(store),
    }
    if producer := analytics.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic); producer != nil {
        defer producer.Close()
        opts = append(opts, app.WithPublisher(producer))
    }

    svc := app.NewService(opts...)
    srv := &http.Server{
        Addr:              cfg.Addr,
        Handler:           web.NewServer(svc, web.WithHeartbeat(cfg.Heartbeat)),
        ReadHeaderTimeout: 10 * time.Second,
    }

    errc := make(chan error, 1)
    go func() {
        log.Info().
            Str("addr", cfg.Addr).
            Stringer("level", cfg.Level).
            Stringer("engine", cfg.Player).
            Msg("server listening")
        errc <- srv.ListenAndServe()
    }()

    select {
    case err := <-errc:
        if !errors.Is(err, http.ErrServerClosed) {
            log.Error().Err(err).Msg("server failed")
            return subcommands.ExitFailure
        }
    case <-ctx.Done():
        shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
        defer cancel()
        if err := srv.Shutdown(shutdownCtx); err != nil {
            log.Error().Err(err).Msg("shutdown")
            return subcommands.ExitFailure
        }
        log.Info().Msg("server stopped")
    }
    return subcommands.ExitSuccess
}
